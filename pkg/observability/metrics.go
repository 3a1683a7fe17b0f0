// Package observability provides a Prometheus metrics collector wired into
// the engine lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/shift/pkg/domain"
)

// Metrics counts engine activity. Attach it to a controller via Hooks().
type Metrics struct {
	stateChanges *prometheus.CounterVec
	triggers     *prometheus.CounterVec
	suppressed   *prometheus.CounterVec
	progress     *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shift",
			Name:      "state_changes_total",
			Help:      "State transitions, by element and trigger source.",
		}, []string{"element", "source"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shift",
			Name:      "triggers_total",
			Help:      "Trigger firings that passed the active-space gate.",
		}, []string{"element", "source"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shift",
			Name:      "triggers_suppressed_total",
			Help:      "Trigger firings suppressed by the active-space gate.",
		}, []string{"element", "source"}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "shift",
			Name:      "scroll_progress",
			Help:      "Normalized scroll position within the occupied range.",
		}, []string{"element"}),
	}
	reg.MustRegister(m.stateChanges, m.triggers, m.suppressed, m.progress)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateChange: func(_ context.Context, evt *domain.StateChangedEvent) {
			m.stateChanges.WithLabelValues(evt.ElementID, string(evt.Source)).Inc()
		},
		OnTriggerFired: func(_ context.Context, evt *domain.TriggerEvent) {
			m.triggers.WithLabelValues(evt.ElementID, string(evt.Source)).Inc()
		},
		OnTriggerSuppressed: func(_ context.Context, evt *domain.TriggerEvent) {
			m.suppressed.WithLabelValues(evt.ElementID, string(evt.Source)).Inc()
		},
		OnScrollProgress: func(_ context.Context, evt *domain.ProgressEvent) {
			m.progress.WithLabelValues(evt.ElementID).Set(evt.Progress)
		},
	}
}
