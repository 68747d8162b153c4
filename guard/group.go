package guard

import "sync"

// Group tracks the pending loads of one consumer, keyed by a logical
// request name ("usage-summary", "keys-page-2"). A Group is cheap;
// create one per view or screen instance and Close it on teardown.
//
// Within one key, starts are serialized by construction: a second Do
// for a key is dropped while the first is still pending, so at most
// one underlying call runs and completion order questions do not
// arise. Distinct keys run concurrently and settle independently.
type Group struct {
	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewGroup returns an open Group with no pending loads.
func NewGroup() *Group {
	return &Group{
		pending: make(map[string]struct{}),
	}
}

// Do starts fn for key on a new goroutine unless a load for that key is
// already pending, in which case the call is dropped and Do returns
// false. When fn settles, deliver runs under the group's lock, unless
// Close won the race, in which case the result is discarded and deliver
// never runs. That lock is the teardown guarantee: once Close returns,
// no deliver is running or will run.
//
// deliver must be fast and must not call back into the Group.
func (g *Group) Do(key string, fn func() (any, error), deliver func(any, error)) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	if _, inFlight := g.pending[key]; inFlight {
		g.mu.Unlock()
		return false
	}
	g.pending[key] = struct{}{}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()

		value, err := fn()

		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.pending, key)
		if g.closed || deliver == nil {
			return
		}
		deliver(value, err)
	}()

	return true
}

// InFlight returns the number of pending loads.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Close marks the group stale. Loads already in flight keep running
// (the underlying requests are not aborted) but their results are
// discarded on arrival. Close does not wait for them; use Wait when
// teardown needs to.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// Wait blocks until every load started before the call has settled.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Do is the typed variant of [Group.Do] for callers that want their
// deliver callback to see concrete types instead of any.
func Do[T any](g *Group, key string, fn func() (T, error), deliver func(T, error)) bool {
	return g.Do(key,
		func() (any, error) {
			return fn()
		},
		func(value any, err error) {
			if deliver == nil {
				return
			}
			typed, _ := value.(T)
			deliver(typed, err)
		})
}
