package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "beep"

var phases = []countdown.Phase{
	countdown.PhaseIdle,
	countdown.PhaseRunning,
	countdown.PhasePaused,
	countdown.PhaseCompleted,
}

// BridgeStats exposes delivery counters of the observer bridge.
type BridgeStats interface {
	Subscribers() int
	Dropped() uint64
}

// Metrics holds all countdown metrics
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal    *prometheus.CounterVec
	CompletionsTotal prometheus.Counter
	RemainingSeconds prometheus.Gauge
	TotalSeconds     prometheus.Gauge
	Phase            *prometheus.GaugeVec
}

// New creates countdown metrics on a dedicated registry.
func New(stats BridgeStats) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Timer commands by command and result",
		}, []string{"command", "result"}),

		CompletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Countdowns that reached zero",
		}),

		RemainingSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_seconds",
			Help:      "Seconds left on the countdown",
		}),

		TotalSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_seconds",
			Help:      "Configured countdown length in seconds",
		}),

		Phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase",
			Help:      "1 for the current countdown phase, 0 otherwise",
		}, []string{"phase"}),
	}

	registry.MustRegister(m.CommandsTotal, m.CompletionsTotal, m.RemainingSeconds, m.TotalSeconds, m.Phase)

	if stats != nil {
		registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bridge",
				Name:      "dropped_events_total",
				Help:      "Events discarded for slow observers",
			}, func() float64 { return float64(stats.Dropped()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "bridge",
				Name:      "subscribers",
				Help:      "Attached observers",
			}, func() float64 { return float64(stats.Subscribers()) }),
		)
	}

	return m
}

// Observe updates gauges and counters from an engine event.
func (m *Metrics) Observe(event countdown.Event) {
	m.RemainingSeconds.Set(float64(event.Remaining))
	m.TotalSeconds.Set(float64(event.Total))
	m.setPhase(event.Phase)
	if event.Type == countdown.EventCompleted {
		m.CompletionsTotal.Inc()
	}
}

// ObserveSnapshot seeds the gauges from the current state.
func (m *Metrics) ObserveSnapshot(snapshot countdown.Snapshot) {
	m.RemainingSeconds.Set(float64(snapshot.Remaining))
	m.TotalSeconds.Set(float64(snapshot.Total))
	m.setPhase(snapshot.Phase)
}

// Run consumes the subscription until it closes or ctx is done.
func (m *Metrics) Run(ctx context.Context, subscription *bridge.Subscription) {
	defer subscription.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-subscription.Events():
			if !ok {
				return
			}
			m.Observe(event)
		}
	}
}

// RecordCommand counts a command outcome.
func (m *Metrics) RecordCommand(command string, err error) {
	m.CommandsTotal.WithLabelValues(command, resultLabel(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) setPhase(current countdown.Phase) {
	for _, phase := range phases {
		value := 0.0
		if phase == current {
			value = 1
		}
		m.Phase.WithLabelValues(string(phase)).Set(value)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, countdown.ErrInvalidConfiguration):
		return "invalid"
	case errors.Is(err, countdown.ErrLockFailure):
		return "lock_failure"
	case errors.Is(err, bridge.ErrNotBound):
		return "not_bound"
	default:
		return "error"
	}
}
