package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File is a Store backed by a single file holding the raw token. The
// file is written with 0600 permissions; its directory is created on
// first Set. Reads are served from an in-process cache loaded at
// construction, so concurrent writers in other processes are
// last-writer-wins without notification.
type File struct {
	path string

	mu    sync.Mutex
	token string
	set   bool
}

// NewFile opens (or prepares) a file-backed store at path. A missing
// file means no credential; an unreadable one is an error.
func NewFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credential file path required")
	}

	f := &File{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		token := strings.TrimSpace(string(data))
		f.token = token
		f.set = token != ""
	case errors.Is(err, os.ErrNotExist):
		// First run.
	default:
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	return f, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.set
}

// Set implements Store.
func (f *File) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}

	f.token = token
	f.set = token != ""
	return nil
}

// Clear implements Store.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.token = ""
	f.set = false

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
