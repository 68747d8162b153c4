// Package jwt inspects the backend's access tokens without verifying
// them. The client treats the credential as opaque for authentication
// purposes; signature checks belong to the backend. Peeking at the
// registered claims is still useful to the session layer, which can
// tell the UI when the session is about to expire instead of waiting
// for the first 401.
package jwt
