// Package session owns "who is logged in right now". A Controller is a
// small state machine over {Booting, Unauthenticated, Authenticated}:
// it bootstraps from the stored credential at startup, runs the
// login/register/logout transitions, and collapses to Unauthenticated
// whenever the API client reports a 401, from any call, at any time.
//
// Centralizing the 401 reaction here means call sites only ever see
// three outcomes: the call succeeded, the call failed with a typed
// error worth showing, or the session ended (observed through the
// controller, not the error).
package session
