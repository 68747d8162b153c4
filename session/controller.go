package session

import (
	"context"
	"sync"
	"time"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/jwt"
)

// State is the session lifecycle position.
type State uint8

const (
	// Booting means the startup bootstrap has not finished yet.
	Booting State = iota
	// Unauthenticated means no valid session exists.
	Unauthenticated
	// Authenticated means an identity was confirmed by the backend.
	Authenticated
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is one consistent view of the session. Identity is non-nil
// exactly in the Authenticated state. Err holds the error that kept the
// last transition out of Authenticated: a failed Login or Register
// surfaces its typed error here for display (a wrong password is a
// user mistake, even though it arrives as a 401), while the global
// unauthorized demotion and a rejected boot credential publish no
// error at all.
type Snapshot struct {
	State    State
	Identity *gtindata.Identity
	Err      error
}

// LoggedIn reports whether the snapshot is Authenticated.
func (s Snapshot) LoggedIn() bool { return s.State == Authenticated }

// Backend is the slice of the API client the controller drives.
// *gtindata.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, req gtindata.LoginRequest) (gtindata.Token, error)
	Register(ctx context.Context, req gtindata.RegisterRequest) (gtindata.Token, error)
	Me(ctx context.Context) (gtindata.Identity, error)
	OnUnauthorized(fn func())
}

// Controller is the session state machine. Safe for concurrent use;
// the lock is never held across a network call, so the unauthorized
// signal can land mid-transition without deadlocking.
type Controller struct {
	backend Backend
	creds   credential.Store

	mu       sync.Mutex
	snapshot Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
}

// NewController builds a Controller in the Booting state and registers
// it on the backend's unauthorized signal, so a 401 anywhere demotes
// the session without any call site involvement.
func NewController(backend Backend, creds credential.Store) *Controller {
	c := &Controller{
		backend:  backend,
		creds:    creds,
		snapshot: Snapshot{State: Booting},
		subs:     make(map[int]chan Snapshot),
	}
	backend.OnUnauthorized(c.forceLogout)
	return c
}

// Current returns the latest snapshot.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// LoggedIn reports whether the session is Authenticated right now.
func (c *Controller) LoggedIn() bool {
	return c.Current().LoggedIn()
}

// Subscribe returns a channel of snapshots and a cancel function. The
// channel observes every transition published after the call; a slow
// consumer loses intermediate snapshots rather than blocking the
// controller.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish swaps the snapshot and notifies subscribers. Callers must
// not hold the lock.
func (c *Controller) publish(next Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = next
	for _, sub := range c.subs {
		select {
		case sub <- next:
		default:
			// Drain the stale snapshot and replace it so the
			// subscriber always finds the newest state.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- next:
			default:
			}
		}
	}
}

// Boot reconstructs the session from the stored credential. No
// credential, or a credential the backend rejects with 401, lands in
// Unauthenticated; a transient failure also lands in Unauthenticated
// but keeps the credential and retains the error so the UI can offer a
// retry instead of a login form.
func (c *Controller) Boot(ctx context.Context) Snapshot {
	if _, ok := c.creds.Get(); !ok {
		next := Snapshot{State: Unauthenticated}
		c.publish(next)
		return next
	}

	identity, err := c.backend.Me(ctx)
	switch {
	case err == nil:
		next := Snapshot{State: Authenticated, Identity: &identity}
		c.publish(next)
		return next
	case gtindata.IsUnauthorized(err):
		// Credential already cleared by the engine; session expired,
		// not a user mistake, so no error is retained.
		next := Snapshot{State: Unauthenticated}
		c.publish(next)
		return next
	default:
		next := Snapshot{State: Unauthenticated, Err: err}
		c.publish(next)
		return next
	}
}

// Login authenticates, persists the returned credential, and confirms
// the identity. On any failure the session stays Unauthenticated and
// the typed error is returned for display.
func (c *Controller) Login(ctx context.Context, req gtindata.LoginRequest) (Snapshot, error) {
	token, err := c.backend.Login(ctx, req)
	if err != nil {
		next := Snapshot{State: Unauthenticated, Err: err}
		c.publish(next)
		return next, err
	}
	return c.adopt(ctx, token)
}

// Register creates the account and then behaves exactly like Login.
func (c *Controller) Register(ctx context.Context, req gtindata.RegisterRequest) (Snapshot, error) {
	token, err := c.backend.Register(ctx, req)
	if err != nil {
		next := Snapshot{State: Unauthenticated, Err: err}
		c.publish(next)
		return next, err
	}
	return c.adopt(ctx, token)
}

// adopt stores a fresh token and promotes to Authenticated via an
// identity fetch.
func (c *Controller) adopt(ctx context.Context, token gtindata.Token) (Snapshot, error) {
	if err := c.creds.Set(token.AccessToken); err != nil {
		next := Snapshot{State: Unauthenticated, Err: err}
		c.publish(next)
		return next, err
	}

	identity, err := c.backend.Me(ctx)
	if err != nil {
		// Unauthorized here means the freshly issued token was
		// rejected; the engine cleared it and forceLogout already
		// published. Anything else is transient: keep the stored
		// credential so the next Boot can try again.
		next := Snapshot{State: Unauthenticated}
		if !gtindata.IsUnauthorized(err) {
			next.Err = err
		}
		c.publish(next)
		return next, err
	}

	next := Snapshot{State: Authenticated, Identity: &identity}
	c.publish(next)
	return next, nil
}

// Logout clears the credential and demotes to Unauthenticated. Purely
// local; no network call is made.
func (c *Controller) Logout() {
	_ = c.creds.Clear()
	c.publish(Snapshot{State: Unauthenticated})
}

// forceLogout is the unauthorized-signal handler: demote from any
// state, no user-facing error. The engine has already cleared the
// credential store.
func (c *Controller) forceLogout() {
	c.publish(Snapshot{State: Unauthenticated})
}

// ExpiresWithin reports whether the stored access token expires within
// d. Absent or unparseable tokens report false; the 401 path remains
// the authority either way.
func (c *Controller) ExpiresWithin(d time.Duration) bool {
	token, ok := c.creds.Get()
	if !ok {
		return false
	}
	claims, err := jwt.Peek(token)
	if err != nil {
		return false
	}
	return claims.ExpiresWithin(time.Now(), d)
}
