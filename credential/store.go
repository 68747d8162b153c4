package credential

// Store is the single source of truth for the bearer credential.
//
// Get never fails: a backend that cannot be reached reports the
// credential as absent. Set and Clear persist before returning, so a
// Get after process restart observes the last write.
type Store interface {
	// Get returns the current credential and whether one is present.
	Get() (string, bool)
	// Set replaces the credential.
	Set(token string) error
	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear() error
}
