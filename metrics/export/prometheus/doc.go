// Package prometheus renders the client's counters in Prometheus text
// exposition format, with no dependency on the Prometheus client
// library: the snapshot is small and the format is stable.
package prometheus
