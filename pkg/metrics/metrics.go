package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all booking-service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// External collaborator metrics
	ExternalCalls        *prometheus.CounterVec
	ExternalCallDuration *prometheus.HistogramVec

	// Business metrics
	SessionsCreated     *prometheus.CounterVec
	StopsAdded          *prometheus.CounterVec
	ItemsAdded          *prometheus.CounterVec
	LinksToggled        *prometheus.CounterVec
	StepSubmissions     *prometheus.CounterVec
	MirrorDivergences   prometheus.Counter
	DanglingLinksPruned prometheus.Counter

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
	Subsystem   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "morevans",
		Subsystem:   serviceName,
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	// HTTP metrics
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	// MongoDB metrics
	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	// External collaborator metrics
	m.ExternalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "external_calls_total",
			Help:      "Total number of calls to external collaborators",
		},
		[]string{"service", "target", "operation", "status"},
	)

	m.ExternalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "external_call_duration_seconds",
			Help:      "External collaborator call duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "target", "operation"},
	)

	// Business metrics
	m.SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "wizard_sessions_created_total",
			Help:      "Total number of wizard sessions created",
		},
		[]string{"service", "mode"},
	)

	m.StopsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "journey_stops_added_total",
			Help:      "Total number of journey stops added",
		},
		[]string{"service", "stop_type"},
	)

	m.ItemsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "moving_items_added_total",
			Help:      "Total number of moving items registered at pickup stops",
		},
		[]string{"service", "category", "source"},
	)

	m.LinksToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "item_links_toggled_total",
			Help:      "Total number of item link toggle operations",
		},
		[]string{"service", "scope"},
	)

	m.StepSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "step_submissions_total",
			Help:      "Total number of wizard step submissions",
		},
		[]string{"service", "step", "outcome"},
	)

	m.MirrorDivergences = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "session_mirror_divergences_total",
			Help:        "Times the active form diverged from the persisted mirror and was overwritten",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.DanglingLinksPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "dangling_links_pruned_total",
			Help:        "Linked-item references pruned because the owning item no longer exists",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	// Circuit breaker metrics
	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.ExternalCalls,
		m.ExternalCallDuration,
		m.SessionsCreated,
		m.StopsAdded,
		m.ItemsAdded,
		m.LinksToggled,
		m.StepSubmissions,
		m.MirrorDivergences,
		m.DanglingLinksPruned,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// ServiceName returns the configured service name
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// Handler returns an http.Handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records metrics for a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordMongoDBOperation records metrics for a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordExternalCall records metrics for a call to an external collaborator
func (m *Metrics) RecordExternalCall(target, operation string, status int, duration time.Duration) {
	m.ExternalCalls.WithLabelValues(m.serviceName, target, operation, strconv.Itoa(status)).Inc()
	m.ExternalCallDuration.WithLabelValues(m.serviceName, target, operation).Observe(duration.Seconds())
}

// RecordSessionCreated records a new wizard session
func (m *Metrics) RecordSessionCreated(mode string) {
	m.SessionsCreated.WithLabelValues(m.serviceName, mode).Inc()
}

// RecordStopAdded records a stop added to a journey
func (m *Metrics) RecordStopAdded(stopType string) {
	m.StopsAdded.WithLabelValues(m.serviceName, stopType).Inc()
}

// RecordItemAdded records an item registered at a pickup stop
func (m *Metrics) RecordItemAdded(category, source string) {
	m.ItemsAdded.WithLabelValues(m.serviceName, category, source).Inc()
}

// RecordLinkToggle records a link toggle operation
func (m *Metrics) RecordLinkToggle(scope string) {
	m.LinksToggled.WithLabelValues(m.serviceName, scope).Inc()
}

// RecordStepSubmission records a wizard step submission outcome
func (m *Metrics) RecordStepSubmission(step int, outcome string) {
	m.StepSubmissions.WithLabelValues(m.serviceName, strconv.Itoa(step), outcome).Inc()
}

// RecordMirrorDivergence records an active-form/mirror divergence
func (m *Metrics) RecordMirrorDivergence() {
	m.MirrorDivergences.Inc()
}

// RecordDanglingLinksPruned records pruned dangling link references
func (m *Metrics) RecordDanglingLinksPruned(count int) {
	m.DanglingLinksPruned.Add(float64(count))
}

// SetCircuitBreakerState sets the state gauge for a circuit breaker
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
