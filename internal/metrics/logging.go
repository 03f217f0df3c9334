package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the non-blocking log file writer
var (
	LogRecordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ra_multiplex_log_records_written_total",
		Help: "The total number of log records written to the log file",
	})

	LogRecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ra_multiplex_log_records_dropped_total",
		Help: "The total number of log records overwritten in the queue before being written",
	})

	LogWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ra_multiplex_log_write_errors_total",
		Help: "The total number of failed log file writes",
	})

	// Startup metrics
	ConfigLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ra_multiplex_config_loads_total",
		Help: "Configuration load attempts by result",
	}, []string{"result"}) // "ok", or an error code

	LogMode = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ra_multiplex_log_mode",
		Help: "Set to 1 for the logging backend that was installed",
	}, []string{"mode"})
)

// RegisterMetrics pre-registers label values so they are exported as zero
func RegisterMetrics() {
	for _, mode := range []string{"terminal", "file"} {
		LogMode.WithLabelValues(mode)
	}
	ConfigLoads.WithLabelValues("ok")
}
