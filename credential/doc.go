// Package credential holds the bearer token that authenticates dashboard
// calls. Exactly one Store instance is authoritative per process; the
// engine reads it on every authenticated request and clears it when the
// backend answers 401.
//
// Three implementations are provided: Memory for tests and ephemeral
// sessions, File for durable single-machine storage (the CLI default),
// and Redis for deployments where several processes share one session.
// All of them are last-writer-wins; no cross-writer reconciliation is
// attempted.
package credential
