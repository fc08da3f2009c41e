package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
	ordersPlaced    *prometheus.CounterVec
	stockUnits      *prometheus.CounterVec
	discountCodes   *prometheus.CounterVec
	tasksDropped    *prometheus.CounterVec
	tasksFinished   *prometheus.CounterVec
}

func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		gatherer: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_domain_events_total",
			Help: "Domain events dispatched by type",
		}, []string{"type"}),
		ordersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed, split by whether a discount code was applied",
		}, []string{"discount"}),
		stockUnits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_stock_units_adjusted_total",
			Help: "Stock units moved by direction",
		}, []string{"direction"}),
		discountCodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_discount_codes_total",
			Help: "Discount codes by lifecycle action",
		}, []string{"action"}),
		tasksDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_background_tasks_dropped_total",
			Help: "Background tasks dropped because the queue was full or closed",
		}, []string{"task"}),
		tasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_background_tasks_finished_total",
			Help: "Background tasks finished by result",
		}, []string{"task", "result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the matched route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) TaskDropped(name string) {
	m.tasksDropped.WithLabelValues(name).Inc()
}

func (m *Metrics) TaskFinished(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasksFinished.WithLabelValues(name, result).Inc()
}

// Dispatcher counts domain events before handing them to the next dispatcher.
func (m *Metrics) Dispatcher(next service.EventDispatcher) service.EventDispatcher {
	return &countingDispatcher{metrics: m, next: next}
}

type countingDispatcher struct {
	metrics *Metrics
	next    service.EventDispatcher
}

func (d *countingDispatcher) Dispatch(event service.Event) error {
	m := d.metrics
	m.eventsTotal.WithLabelValues(event.Type()).Inc()

	switch e := event.(type) {
	case model.OrderPlaced:
		m.ordersPlaced.WithLabelValues(strconv.FormatBool(e.DiscountApplied)).Inc()
	case model.StockAdjusted:
		if e.Delta < 0 {
			m.stockUnits.WithLabelValues("out").Add(float64(-e.Delta))
		} else {
			m.stockUnits.WithLabelValues("in").Add(float64(e.Delta))
		}
	case model.DiscountCodeIssued:
		m.discountCodes.WithLabelValues("issued").Inc()
	case model.DiscountCodeRedeemed:
		m.discountCodes.WithLabelValues("redeemed").Inc()
	}
	return d.next.Dispatch(event)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
