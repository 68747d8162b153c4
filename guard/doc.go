// Package guard provides the single-flight load discipline every
// data-fetching consumer of the API client uses: at most one load in
// flight per key, overlapping starts dropped, and nothing delivered
// after the owning consumer is gone.
//
// It replaces the ad hoc "in-flight flag plus mounted flag" pair that
// otherwise gets reimplemented per screen, and it is deliberately not a
// cache: a settled load leaves no state behind.
package guard
