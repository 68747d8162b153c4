// Package ratehint extracts retry hints from rate-limited responses.
// The values are display hints only; the client never uses them to
// schedule a retry on its own.
package ratehint

import (
	"net/http"
	"strconv"
	"time"
)

// RetryAfter parses the Retry-After header, accepting both the
// delta-seconds and HTTP-date forms. Zero means no usable hint.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0
	}

	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(raw); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}
