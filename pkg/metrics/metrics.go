package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	// Dashboard metrics
	snapshotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_snapshot_loads_total",
			Help: "Snapshot fetches by outcome",
		},
		[]string{"status"},
	)

	writes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_writes_total",
			Help: "Write operations by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_backend_request_duration_seconds",
			Help:    "Backend call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	snapshotVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_snapshot_version",
			Help: "Version of the snapshot currently displayed",
		},
	)

	layoutColumns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_layout_columns",
			Help: "Column count of the last layout decision",
		},
	)

	// Kafka metrics
	kafkaMessagesProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total number of Kafka messages produced",
		},
		[]string{"topic", "status"},
	)
)

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(httpRequestsTotal)
	registry.MustRegister(httpRequestDuration)

	registry.MustRegister(snapshotLoads)
	registry.MustRegister(writes)
	registry.MustRegister(backendDuration)
	registry.MustRegister(snapshotVersion)
	registry.MustRegister(layoutColumns)

	registry.MustRegister(kafkaMessagesProduced)
}

// Registry returns the prometheus registry
func Registry() *prometheus.Registry {
	return registry
}

// Handler returns a Fiber handler for the /metrics endpoint
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}

// Config holds metrics middleware configuration
type Config struct {
	ServiceName string
	SkipPaths   []string
}

// Middleware returns Fiber middleware that records HTTP metrics
func Middleware(cfg Config) fiber.Handler {
	skipPaths := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *fiber.Ctx) error {
		if skipPaths[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		method := c.Method()
		path := c.Route().Path

		httpRequestsTotal.WithLabelValues(cfg.ServiceName, method, path, status).Inc()
		httpRequestDuration.WithLabelValues(cfg.ServiceName, method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSnapshotLoad records a snapshot fetch
func RecordSnapshotLoad(err error, duration time.Duration) {
	snapshotLoads.WithLabelValues(outcome(err)).Inc()
	backendDuration.WithLabelValues("load").Observe(duration.Seconds())
}

// RecordWrite records a write operation. status is one of success, error,
// invalid or busy.
func RecordWrite(operation, status string) {
	writes.WithLabelValues(operation, status).Inc()
}

// RecordBackendCall records the duration of a backend write call
func RecordBackendCall(operation string, duration time.Duration) {
	backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSnapshotVersion records the version now being displayed
func SetSnapshotVersion(v uint64) {
	snapshotVersion.Set(float64(v))
}

// SetLayoutColumns records the latest layout decision
func SetLayoutColumns(n int) {
	layoutColumns.Set(float64(n))
}

// RecordKafkaMessageProduced records a Kafka publish attempt
func RecordKafkaMessageProduced(topic string, err error) {
	kafkaMessagesProduced.WithLabelValues(topic, outcome(err)).Inc()
}
