// Package gtindata is the Go client for the GTIN data platform dashboard
// API: authentication, API key management, usage metrics, billing, and
// product lookups over one authenticated HTTP engine.
//
// The package is designed for long-lived consumers: Client methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// gtindata is the public surface. It exposes [Client], [Builder],
// [Config], the [APIError] taxonomy, and the resource value types
// (Identity, APIKeyPage, UsageSummaryData, etc.). Session lifecycle
// lives in the session sub-package, credential persistence in
// credential, and load deduplication in guard; none of them touch the
// wire except through [Client].
//
// # What this package must NOT do
//
//   - Return raw *http.Response values or unclassified errors from
//     resource methods; every failure is an *APIError with a Kind.
//   - Clear or write the credential store outside the single 401 path
//     in Client.send and the session controller's explicit transitions.
//   - Retry any request on its own. Rate-limit and retry hints are
//     surfaced to the caller, never acted on.
//
// # Error contract
//
// Resource methods return (zero value, *APIError) on failure. A 401
// clears the credential store and fires the OnUnauthorized callbacks
// before the error reaches the caller, so UI code never branches on
// status codes.
package gtindata
