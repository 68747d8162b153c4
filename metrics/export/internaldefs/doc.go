// Package internaldefs carries the shared metric definitions the
// exporters render: one stable name and help string per MetricID, plus
// the histogram bucket layout. It exists so the Prometheus and OTel
// exporters cannot drift apart.
package internaldefs
