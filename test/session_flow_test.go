package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/guard"
	"github.com/gtindata/gtindata-go/session"
)

// stubBackend is a scriptable stand-in for the platform API with one
// seeded account.
type stubBackend struct {
	mu    sync.Mutex
	token string

	meCalls      atomic.Int64
	summaryCalls atomic.Int64

	summaryStatus int
	summaryGate   chan struct{} // when non-nil, summary blocks until closed
}

func newStubBackend() *stubBackend {
	return &stubBackend{token: "issued-token", summaryStatus: http.StatusOK}
}

func (s *stubBackend) revokeToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = "rotated-" + s.token
}

func (s *stubBackend) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-horse" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"access_token": s.currentToken(), "token_type": "bearer"})
	})

	requireAuth := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+s.currentToken() {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return false
		}
		return true
	}

	mux.HandleFunc("/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.meCalls.Add(1)
		if !requireAuth(w, r) {
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"id": 1, "email": "alice@example.com",
			"organization_id": 1, "organization_name": "Acme Foods",
			"plan": "pro", "daily_limit": 10000, "is_active": true,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/v1/metrics/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.summaryCalls.Add(1)
		if !requireAuth(w, r) {
			return
		}
		if gate := s.summaryGate; gate != nil {
			<-gate
		}
		if s.summaryStatus != http.StatusOK {
			reply(w, s.summaryStatus, map[string]string{"detail": "usage aggregation unavailable"})
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"period_days": 7,
			"start_date":  "2026-08-25", "end_date": "2026-08-31",
			"total_success": 90, "total_error": 10, "total_calls": 100,
			"by_api_key": []any{},
		})
	})

	return mux
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newSessionUnderTest(t *testing.T) (*stubBackend, *gtindata.Client, *session.Controller, *credential.Memory) {
	t.Helper()

	backend := newStubBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store := credential.NewMemory()
	client, err := gtindata.New().
		WithBaseURL(srv.URL).
		WithCredentials(store).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(client.Close)

	return backend, client, session.NewController(client, store), store
}

func TestFullLifecycleBootLoginLogout(t *testing.T) {
	_, _, ctrl, store := newSessionUnderTest(t)

	if snap := ctrl.Boot(context.Background()); snap.State != session.Unauthenticated {
		t.Fatalf("fresh boot: expected Unauthenticated, got %v", snap.State)
	}

	snap, err := ctrl.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if snap.State != session.Authenticated || snap.Identity.Plan != "pro" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if token, ok := store.Get(); !ok || token != "issued-token" {
		t.Fatalf("expected issued token stored, got %q ok=%v", token, ok)
	}

	ctrl.Logout()
	if _, ok := store.Get(); ok {
		t.Fatal("expected credential cleared on logout")
	}
	if ctrl.LoggedIn() {
		t.Fatal("expected logged out")
	}
}

func TestExpiredSessionDemotesGlobally(t *testing.T) {
	backend, client, ctrl, store := newSessionUnderTest(t)

	if _, err := ctrl.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// The backend rotates its accepted token; the stored one is stale.
	backend.revokeToken()

	_, err := client.UsageSummary(context.Background(), 7)
	if !gtindata.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if _, ok := store.Get(); ok {
		t.Fatal("expected stale credential cleared")
	}
	if ctrl.Current().State != session.Unauthenticated {
		t.Fatalf("expected forced demotion, got %v", ctrl.Current().State)
	}
	if ctrl.Current().Err != nil {
		t.Fatalf("forced demotion carries no user-facing error, got %v", ctrl.Current().Err)
	}
}

func TestTransientMetricsFailureKeepsSession(t *testing.T) {
	backend, client, ctrl, store := newSessionUnderTest(t)

	if _, err := ctrl.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	backend.summaryStatus = http.StatusInternalServerError

	_, err := client.UsageSummary(context.Background(), 7)
	if !gtindata.IsKind(err, gtindata.KindServer) {
		t.Fatalf("expected server error, got %v", err)
	}

	// A 500 on one widget's load never touches the session.
	if !ctrl.LoggedIn() {
		t.Fatal("expected session to survive a server error")
	}
	if _, ok := store.Get(); !ok {
		t.Fatal("expected credential kept after a server error")
	}
}

func TestFanOutDeduplicatesConcurrentLoads(t *testing.T) {
	backend, client, ctrl, _ := newSessionUnderTest(t)

	if _, err := ctrl.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	gate := make(chan struct{})
	backend.summaryGate = gate
	backend.summaryCalls.Store(0)

	g := guard.NewGroup()
	var delivered atomic.Int64

	load := func() (gtindata.UsageSummaryData, error) {
		return client.UsageSummary(context.Background(), 7)
	}
	deliver := func(gtindata.UsageSummaryData, error) { delivered.Add(1) }

	if !guard.Do(g, "usage", load, deliver) {
		t.Fatal("expected first load to start")
	}
	for backend.summaryCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if guard.Do(g, "usage", load, deliver) {
		t.Fatal("expected duplicate load to be dropped while pending")
	}

	close(gate)
	g.Wait()

	if backend.summaryCalls.Load() != 1 {
		t.Fatalf("expected exactly one network call, got %d", backend.summaryCalls.Load())
	}
	if delivered.Load() != 1 {
		t.Fatalf("expected exactly one delivery, got %d", delivered.Load())
	}
}

func TestTeardownDiscardsLateResponse(t *testing.T) {
	backend, client, ctrl, _ := newSessionUnderTest(t)

	if _, err := ctrl.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	gate := make(chan struct{})
	backend.summaryGate = gate

	g := guard.NewGroup()
	var delivered atomic.Int64

	guard.Do(g, "usage",
		func() (gtindata.UsageSummaryData, error) {
			return client.UsageSummary(context.Background(), 7)
		},
		func(gtindata.UsageSummaryData, error) { delivered.Add(1) })

	// Screen unmounts while the request is still in flight.
	g.Close()
	close(gate)
	g.Wait()

	if delivered.Load() != 0 {
		t.Fatalf("expected late response discarded, got %d deliveries", delivered.Load())
	}
}
