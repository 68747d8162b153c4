package session

import (
	"context"
	"errors"
	"testing"
	"time"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
)

// fakeBackend scripts the three calls the controller makes and mimics
// the engine's 401 side effects: clear the store, fire the callbacks.
type fakeBackend struct {
	creds credential.Store

	loginToken gtindata.Token
	loginErr   error

	registerToken gtindata.Token
	registerErr   error

	meIdentity gtindata.Identity
	meErr      error

	meCalls        int
	onUnauthorized []func()
}

func (f *fakeBackend) Login(ctx context.Context, req gtindata.LoginRequest) (gtindata.Token, error) {
	if f.loginErr != nil {
		f.fireIfUnauthorized(f.loginErr)
		return gtindata.Token{}, f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeBackend) Register(ctx context.Context, req gtindata.RegisterRequest) (gtindata.Token, error) {
	if f.registerErr != nil {
		f.fireIfUnauthorized(f.registerErr)
		return gtindata.Token{}, f.registerErr
	}
	return f.registerToken, nil
}

func (f *fakeBackend) Me(ctx context.Context) (gtindata.Identity, error) {
	f.meCalls++
	if f.meErr != nil {
		f.fireIfUnauthorized(f.meErr)
		return gtindata.Identity{}, f.meErr
	}
	return f.meIdentity, nil
}

func (f *fakeBackend) OnUnauthorized(fn func()) {
	f.onUnauthorized = append(f.onUnauthorized, fn)
}

func (f *fakeBackend) fireIfUnauthorized(err error) {
	if !gtindata.IsUnauthorized(err) {
		return
	}
	if f.creds != nil {
		_ = f.creds.Clear()
	}
	for _, fn := range f.onUnauthorized {
		fn()
	}
}

func newTestController(t *testing.T) (*Controller, *fakeBackend, *credential.Memory) {
	t.Helper()
	store := credential.NewMemory()
	backend := &fakeBackend{creds: store}
	return NewController(backend, store), backend, store
}

func TestControllerStartsBooting(t *testing.T) {
	c, _, _ := newTestController(t)

	snap := c.Current()
	if snap.State != Booting {
		t.Fatalf("expected Booting, got %v", snap.State)
	}
	if c.LoggedIn() {
		t.Fatal("booting session must not report logged in")
	}
}

func TestBootWithoutCredential(t *testing.T) {
	c, backend, _ := newTestController(t)

	snap := c.Boot(context.Background())
	if snap.State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", snap.State)
	}
	if backend.meCalls != 0 {
		t.Fatal("no credential means no identity fetch")
	}
}

func TestBootWithValidCredential(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stored-token")
	backend.meIdentity = gtindata.Identity{ID: 1, Email: "user@example.com", Plan: "pro"}

	snap := c.Boot(context.Background())
	if snap.State != Authenticated {
		t.Fatalf("expected Authenticated, got %v", snap.State)
	}
	if snap.Identity == nil || snap.Identity.Email != "user@example.com" {
		t.Fatalf("unexpected identity %+v", snap.Identity)
	}
	if !c.LoggedIn() {
		t.Fatal("expected logged in after boot")
	}
}

func TestBootWithStaleCredential(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stale-token")
	backend.meErr = &gtindata.APIError{Kind: gtindata.KindUnauthorized, Status: 401}

	snap := c.Boot(context.Background())
	if snap.State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", snap.State)
	}
	if snap.Err != nil {
		t.Fatalf("an expired session is not a user-facing error, got %v", snap.Err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("expected stale credential cleared")
	}
}

func TestBootTransientFailureKeepsCredential(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stored-token")
	backend.meErr = &gtindata.APIError{Kind: gtindata.KindConnection, Status: 0, Message: "dial tcp: refused"}

	snap := c.Boot(context.Background())
	if snap.State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", snap.State)
	}
	if snap.Err == nil {
		t.Fatal("expected retained transient error for retry UI")
	}
	if _, ok := store.Get(); !ok {
		t.Fatal("transient failure must keep the credential for the next boot")
	}
}

func TestLoginPromotesAndStoresCredential(t *testing.T) {
	c, backend, store := newTestController(t)
	backend.loginToken = gtindata.Token{AccessToken: "fresh-token", TokenType: "bearer"}
	backend.meIdentity = gtindata.Identity{ID: 2, Email: "user@example.com"}

	snap, err := c.Login(context.Background(), gtindata.LoginRequest{Email: "user@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if snap.State != Authenticated {
		t.Fatalf("expected Authenticated, got %v", snap.State)
	}

	token, ok := store.Get()
	if !ok || token != "fresh-token" {
		t.Fatalf("expected stored credential, got %q ok=%v", token, ok)
	}
}

func TestLoginFailureStaysUnauthenticated(t *testing.T) {
	c, backend, store := newTestController(t)
	backend.loginErr = &gtindata.APIError{Kind: gtindata.KindUnauthorized, Status: 401, Detail: "Incorrect email or password"}

	snap, err := c.Login(context.Background(), gtindata.LoginRequest{Email: "user@example.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected login error")
	}
	if snap.State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", snap.State)
	}
	// A wrong password is a user mistake worth showing, so the 401
	// stays in the snapshot here, unlike the global demotion signal.
	if !gtindata.IsUnauthorized(snap.Err) {
		t.Fatalf("expected the typed login error retained for display, got %v", snap.Err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("failed login must not leave a credential behind")
	}
}

func TestRegisterBehavesLikeLogin(t *testing.T) {
	c, backend, store := newTestController(t)
	backend.registerToken = gtindata.Token{AccessToken: "new-account-token"}
	backend.meIdentity = gtindata.Identity{ID: 3, Email: "new@example.com"}

	snap, err := c.Register(context.Background(), gtindata.RegisterRequest{
		Email:            "new@example.com",
		Password:         "longenough",
		OrganizationName: "Acme",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if snap.State != Authenticated {
		t.Fatalf("expected Authenticated, got %v", snap.State)
	}
	if token, _ := store.Get(); token != "new-account-token" {
		t.Fatalf("expected stored credential, got %q", token)
	}
}

func TestLogoutIsLocal(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stored-token")
	backend.meIdentity = gtindata.Identity{ID: 1}
	c.Boot(context.Background())

	backend.meCalls = 0
	c.Logout()

	if backend.meCalls != 0 {
		t.Fatal("logout must not call the backend")
	}
	if _, ok := store.Get(); ok {
		t.Fatal("expected credential cleared on logout")
	}
	if c.Current().State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", c.Current().State)
	}
}

func TestForcedDemotionOnUnauthorizedSignal(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stored-token")
	backend.meIdentity = gtindata.Identity{ID: 1}
	c.Boot(context.Background())

	if !c.LoggedIn() {
		t.Fatal("expected logged in before the signal")
	}

	// A 401 on any later call lands here through the engine's callback.
	backend.meErr = &gtindata.APIError{Kind: gtindata.KindUnauthorized, Status: 401}
	_, _ = backend.Me(context.Background())

	snap := c.Current()
	if snap.State != Unauthenticated {
		t.Fatalf("expected forced demotion, got %v", snap.State)
	}
	if snap.Err != nil {
		t.Fatalf("forced demotion carries no user-facing error, got %v", snap.Err)
	}
}

func TestSubscribeObservesTransitions(t *testing.T) {
	c, backend, store := newTestController(t)
	_ = store.Set("stored-token")
	backend.meIdentity = gtindata.Identity{ID: 1}

	ch, cancel := c.Subscribe()
	defer cancel()

	c.Boot(context.Background())

	select {
	case snap := <-ch:
		if snap.State != Authenticated {
			t.Fatalf("expected Authenticated snapshot, got %v", snap.State)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestSubscribeSlowConsumerSeesNewestState(t *testing.T) {
	c, _, _ := newTestController(t)

	ch, cancel := c.Subscribe()
	defer cancel()

	// Two publishes without a read in between; the buffered slot must
	// hold the newest snapshot, not the first.
	c.publish(Snapshot{State: Unauthenticated})
	c.publish(Snapshot{State: Authenticated, Identity: &gtindata.Identity{ID: 9}})

	select {
	case snap := <-ch:
		if snap.State != Authenticated {
			t.Fatalf("expected newest snapshot, got %v", snap.State)
		}
	default:
		t.Fatal("expected a buffered snapshot")
	}
}

func TestSubscribeCancelTwiceSafe(t *testing.T) {
	c, _, _ := newTestController(t)

	_, cancel := c.Subscribe()
	cancel()
	cancel()
}

func TestAdoptTransientMeFailureKeepsCredential(t *testing.T) {
	c, backend, store := newTestController(t)
	backend.loginToken = gtindata.Token{AccessToken: "fresh-token"}
	backend.meErr = errors.New("read tcp: timeout")

	snap, err := c.Login(context.Background(), gtindata.LoginRequest{Email: "user@example.com", Password: "pw"})
	if err == nil {
		t.Fatal("expected error from identity fetch")
	}
	if snap.State != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", snap.State)
	}
	if snap.Err == nil {
		t.Fatal("expected transient error retained")
	}
	if token, ok := store.Get(); !ok || token != "fresh-token" {
		t.Fatal("transient failure after login must keep the credential")
	}
}
