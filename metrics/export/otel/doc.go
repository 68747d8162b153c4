// Package otel bridges the client's counters into an OpenTelemetry
// meter via observable instruments: nothing is pushed, the registered
// callback snapshots the client on each collection.
package otel
