package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects storefront counters. A nil *Metrics is a no-op.
type Metrics struct {
	cacheLookups    *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	cartOperations  *prometheus.CounterVec
	orderOperations *prometheus.CounterVec
}

// New registers the storefront metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		cacheLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cache_lookups_total",
			Help: "Cache lookups by cache name and result (hit, miss)",
		}, []string{"cache", "result"}),
		fallbacks: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_fallbacks_total",
			Help: "Operations answered locally because the backend failed",
		}, []string{"operation"}),
		backendRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_backend_requests_total",
			Help: "Outbound backend requests by method and status code",
		}, []string{"method", "status"}),
		backendDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_backend_request_duration_seconds",
			Help:    "Duration of outbound backend requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"method"}),
		cartOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		orderOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_operations_total",
			Help: "Order submissions and updates by operation and outcome",
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (m *Metrics) Fallback(operation string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation).Inc()
}

// ObserveBackend records one outbound request. Status 0 means no response.
func (m *Metrics) ObserveBackend(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.backendDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) CartOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) OrderOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.orderOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
