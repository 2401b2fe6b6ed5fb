// Package telemetry holds business-level Prometheus metrics: the
// marketplace funnel from signup through listing, cart and order.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level
// observability, separate from the HTTP metrics in middleware.
// A nil *BusinessMetrics is valid and records nothing, so handlers can
// run without metrics in tests.
type BusinessMetrics struct {
	// Accounts
	signups     prometheus.Counter
	logins      prometheus.Counter
	loginFailed prometheus.Counter

	// Listings
	itemsCreated     prometheus.Counter
	itemViews        prometheus.Counter
	ratingsRecorded  prometheus.Counter
	stockAdjustments prometheus.Counter

	// Cart and checkout funnel
	cartAdds            prometheus.Counter
	cartUpdates         prometheus.Counter
	checkoutValidations prometheus.Counter
	stockConflicts      prometheus.Counter

	// Orders
	ordersCreated  prometheus.Counter
	orderLineCount prometheus.Histogram
	dispatches     prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "sellorama"
	}

	subsystem := "business"

	counter := func(name, help string) prometheus.Counter {
		return promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &BusinessMetrics{
		signups:     counter("signups_total", "Total successful signups"),
		logins:      counter("logins_total", "Total successful logins"),
		loginFailed: counter("login_failed_total", "Total rejected login attempts"),

		itemsCreated:     counter("items_created_total", "Total items listed"),
		itemViews:        counter("item_views_total", "Total item detail views"),
		ratingsRecorded:  counter("ratings_recorded_total", "Total item ratings recorded"),
		stockAdjustments: counter("stock_adjustments_total", "Total owner stock edits"),

		cartAdds:            counter("cart_adds_total", "Total add-to-cart actions"),
		cartUpdates:         counter("cart_updates_total", "Total cart quantity updates"),
		checkoutValidations: counter("checkout_validations_total", "Total checkout pre-flight validations"),
		stockConflicts:      counter("stock_conflicts_total", "Total checkouts blocked by insufficient stock"),

		ordersCreated: counter("orders_created_total", "Total orders created"),
		orderLineCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_line_count",
			Help:      "Number of lines per created order",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		dispatches: counter("dispatches_total", "Total order lines marked dispatched"),
	}
}

func (m *BusinessMetrics) RecordSignup() {
	if m != nil {
		m.signups.Inc()
	}
}

func (m *BusinessMetrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	if success {
		m.logins.Inc()
	} else {
		m.loginFailed.Inc()
	}
}

func (m *BusinessMetrics) RecordItemCreated() {
	if m != nil {
		m.itemsCreated.Inc()
	}
}

func (m *BusinessMetrics) RecordItemView() {
	if m != nil {
		m.itemViews.Inc()
	}
}

func (m *BusinessMetrics) RecordRating() {
	if m != nil {
		m.ratingsRecorded.Inc()
	}
}

func (m *BusinessMetrics) RecordStockAdjustment() {
	if m != nil {
		m.stockAdjustments.Inc()
	}
}

func (m *BusinessMetrics) RecordCartAdd() {
	if m != nil {
		m.cartAdds.Inc()
	}
}

func (m *BusinessMetrics) RecordCartUpdate() {
	if m != nil {
		m.cartUpdates.Inc()
	}
}

func (m *BusinessMetrics) RecordCheckoutValidation(conflicted bool) {
	if m == nil {
		return
	}
	m.checkoutValidations.Inc()
	if conflicted {
		m.stockConflicts.Inc()
	}
}

func (m *BusinessMetrics) RecordStockConflict() {
	if m != nil {
		m.stockConflicts.Inc()
	}
}

func (m *BusinessMetrics) RecordOrderCreated(lineCount int) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderLineCount.Observe(float64(lineCount))
}

func (m *BusinessMetrics) RecordDispatch() {
	if m != nil {
		m.dispatches.Inc()
	}
}
