package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var (
	once                           sync.Once
	metricsRouter                  *chi.Mux
	rpcClientLatency               *prometheus.HistogramVec
	rpcEndpointFailureCounter      *prometheus.CounterVec
	rpcBreakerOpenCounter          *prometheus.CounterVec
	multicallPathCounter           *prometheus.CounterVec
	scannerChunkCounter            *prometheus.CounterVec
	cacheLookupCounter             *prometheus.CounterVec
	clientRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram        *prometheus.HistogramVec
	refreshDurationHistogram       *prometheus.HistogramVec
	txSubmittedCounter             *prometheus.CounterVec
	dbLatency                      *prometheus.HistogramVec
)

func init() {
	newCollectors()
}

// Init registers the collectors and starts the metrics server.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// newCollectors builds the collectors without registering them, so recording
// works in tests that never call Init.
func newCollectors() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// client requests are the ones sending to other service
	clientRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"baseurl", "method", "path", "status"},
	)

	rpcClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_client_latency_seconds",
			Help:    "Histogram of json-rpc client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	rpcEndpointFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_endpoint_failure_count",
			Help: "Number of transport level failures per rpc endpoint",
		},
		[]string{"endpoint"},
	)

	rpcBreakerOpenCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_breaker_open_count",
			Help: "Number of times the circuit breaker of an rpc endpoint opened",
		},
		[]string{"endpoint"},
	)

	multicallPathCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multicall_path_count",
			Help: "Number of batched reads split by the path that served them",
		},
		[]string{"path", "status"},
	)

	scannerChunkCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_chunk_count",
			Help: "Number of log scan chunks split by outcome",
		},
		[]string{"status"},
	)

	cacheLookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookup_count",
			Help: "Number of cache lookups split by kind and result",
		},
		[]string{"kind", "result"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	refreshDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Histogram of view-model refresh durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"domain", "status"},
	)

	txSubmittedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tx_submitted_count",
			Help: "Number of submitted transactions split by method and outcome",
		},
		[]string{"method", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
}

func registerMetrics() {
	prometheus.MustRegister(
		rpcClientLatency,
		rpcEndpointFailureCounter,
		rpcBreakerOpenCounter,
		multicallPathCounter,
		scannerChunkCounter,
		cacheLookupCounter,
		clientRequestDurationHistogram,
		pollerDurationHistogram,
		refreshDurationHistogram,
		txSubmittedCounter,
		dbLatency,
	)
}

func RecordRPCClientLatency(d time.Duration, method string, failure bool) {
	rpcClientLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func IncRPCEndpointFailures(endpoint string) {
	rpcEndpointFailureCounter.WithLabelValues(endpoint).Inc()
}

func IncRPCBreakerOpen(endpoint string) {
	rpcBreakerOpenCounter.WithLabelValues(endpoint).Inc()
}

func RecordMulticallPath(path string, failure bool) {
	multicallPathCounter.WithLabelValues(path, outcome(failure).String()).Inc()
}

func RecordScannerChunk(failure bool) {
	scannerChunkCounter.WithLabelValues(outcome(failure).String()).Inc()
}

func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupCounter.WithLabelValues(kind, result).Inc()
}

func RecordRefreshDuration(d time.Duration, domain string, failure bool) {
	refreshDurationHistogram.WithLabelValues(domain, outcome(failure).String()).Observe(d.Seconds())
}

func RecordTxSubmitted(method string, failure bool) {
	txSubmittedCounter.WithLabelValues(method, outcome(failure).String()).Inc()
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

// StartClientRequestDurationTimer starts a timer to measure outgoing client request duration.
func StartClientRequestDurationTimer(baseUrl, method, path string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		clientRequestDurationHistogram.WithLabelValues(
			baseUrl,
			method,
			path,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}
