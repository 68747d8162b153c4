package internaldefs

import (
	gtindata "github.com/gtindata/gtindata-go"
)

// CounterDef binds a MetricID to its exported counter name.
type CounterDef struct {
	ID   gtindata.MetricID
	Name string
	Help string
}

// HistogramDef binds a MetricID to its exported histogram name.
type HistogramDef struct {
	ID   gtindata.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter, in MetricID order.
var CounterDefs = []CounterDef{
	{ID: gtindata.MetricRequestSuccess, Name: "gtindata_request_success_total", Help: "Backend calls answered with a 2xx status."},
	{ID: gtindata.MetricConnectionError, Name: "gtindata_connection_error_total", Help: "Backend calls that never reached a response."},
	{ID: gtindata.MetricUnauthorized, Name: "gtindata_unauthorized_total", Help: "Backend calls answered with 401."},
	{ID: gtindata.MetricForbidden, Name: "gtindata_forbidden_total", Help: "Backend calls answered with 403."},
	{ID: gtindata.MetricNotFound, Name: "gtindata_not_found_total", Help: "Backend calls answered with 404."},
	{ID: gtindata.MetricValidationRejected, Name: "gtindata_validation_rejected_total", Help: "Calls rejected as invalid, client side or with 400."},
	{ID: gtindata.MetricRateLimited, Name: "gtindata_rate_limited_total", Help: "Backend calls answered with 429."},
	{ID: gtindata.MetricServerError, Name: "gtindata_server_error_total", Help: "Backend calls answered with any other non-2xx status."},
	{ID: gtindata.MetricLoginSuccess, Name: "gtindata_login_success_total", Help: "Successful logins."},
	{ID: gtindata.MetricLoginFailure, Name: "gtindata_login_failure_total", Help: "Failed logins."},
	{ID: gtindata.MetricRegisterSuccess, Name: "gtindata_register_success_total", Help: "Successful registrations."},
	{ID: gtindata.MetricSessionExpired, Name: "gtindata_session_expired_total", Help: "Forced logouts triggered by a 401 on an authenticated call."},
	{ID: gtindata.MetricKeyCreated, Name: "gtindata_key_created_total", Help: "Created API keys."},
	{ID: gtindata.MetricKeyRevoked, Name: "gtindata_key_revoked_total", Help: "Revoked API keys."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: gtindata.MetricRequestLatency, Name: "gtindata_request_latency_seconds", Help: "Request round-trip latency histogram."},
}

// HistogramBounds are the upper bounds of the latency buckets, in
// seconds, as Prometheus le label values.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets widens a raw snapshot slice to the fixed bucket
// array, tolerating short or missing slices.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
