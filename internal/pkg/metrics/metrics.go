package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vertiwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vertiwatch",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Frame loop
	PollBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "frameloop",
		Name:      "poll_batches_total",
		Help:      "Poll batches issued, by result (ok, error)",
	}, []string{"result"})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vertiwatch",
		Subsystem: "frameloop",
		Name:      "poll_duration_seconds",
		Help:      "Time to fetch and join one poll batch",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	FramesThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "frameloop",
		Name:      "frames_throttled_total",
		Help:      "Refresh ticks skipped because the frame interval had not elapsed",
	})

	SnapshotsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "frameloop",
		Name:      "snapshots_published_total",
		Help:      "Snapshots that replaced the published view state",
	})

	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "frameloop",
		Name:      "publish_errors_total",
		Help:      "Failed snapshot or viewport deliveries to a publisher",
	})

	// Fleet backend client
	FleetRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vertiwatch",
		Subsystem: "fleet",
		Name:      "request_duration_seconds",
		Help:      "Latency of fleet backend GETs",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"endpoint"})

	FleetRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "fleet",
		Name:      "request_errors_total",
		Help:      "Failed fleet backend GETs",
	}, []string{"endpoint"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vertiwatch",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	WebSocketDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "ws",
		Name:      "dropped_messages_total",
		Help:      "Messages dropped because a client's send buffer was full",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Recorder
	TrackPointsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vertiwatch",
		Subsystem: "recorder",
		Name:      "track_points_total",
		Help:      "Drone track points persisted",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vertiwatch",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vertiwatch",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vertiwatch",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool statistics into the gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
