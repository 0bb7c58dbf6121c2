package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	DirectionEnter   = "enter"
	DirectionRecover = "recover"

	ReasonQuota       = "quota_exceeded"
	ReasonUnavailable = "unavailable"
	ReasonNone        = "none"

	SourceDurable  = "durable"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

// CartMetrics records persistence and action activity for carts.
// A nil *CartMetrics is valid and records nothing.
type CartMetrics struct {
	writes     *prometheus.CounterVec
	fallback   *prometheus.CounterVec
	hydrations *prometheus.CounterVec
	actions    *prometheus.CounterVec
}

// NewCartMetrics registers the cart collectors on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_writes_total",
		Help: "Cart writes to durable storage by result.",
	}, []string{"result"})
	fallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_fallback_transitions_total",
		Help: "Transitions into and out of in-memory fallback mode.",
	}, []string{"direction", "reason"})
	hydrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_hydrations_total",
		Help: "Cart loads at session start by source.",
	}, []string{"source"})
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_actions_total",
		Help: "Cart actions applied by type.",
	}, []string{"action"})
	reg.MustRegister(writes, fallback, hydrations, actions)
	return &CartMetrics{
		writes:     writes,
		fallback:   fallback,
		hydrations: hydrations,
		actions:    actions,
	}
}

func (m *CartMetrics) ObserveWrite(result string) {
	if m == nil || m.writes == nil {
		return
	}
	m.writes.WithLabelValues(result).Inc()
}

func (m *CartMetrics) ObserveFallback(direction, reason string) {
	if m == nil || m.fallback == nil {
		return
	}
	m.fallback.WithLabelValues(direction, reason).Inc()
}

func (m *CartMetrics) ObserveHydration(source string) {
	if m == nil || m.hydrations == nil {
		return
	}
	m.hydrations.WithLabelValues(source).Inc()
}

func (m *CartMetrics) ObserveAction(action string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
