// Package metrics exposes Prometheus counters for the review workflow and the
// borehole edit lock.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Lock event labels.
const (
	LockAcquired   = "acquired"
	LockRefreshed  = "refreshed"
	LockStolen     = "stolen"
	LockRejected   = "rejected"
	LockReleased   = "released"
	LockNotHolder  = "not_holder"
	LockSweptStale = "swept"
)

type Metrics struct {
	TransitionsTotal *prometheus.CounterVec // by from, to, result
	TabUpdatesTotal  *prometheus.CounterVec // by tab, result
	LockEventsTotal  *prometheus.CounterVec // by event
	ConflictsTotal   prometheus.Counter
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_transitions_total",
				Help: "Workflow status transition requests by from status, to status and result",
			},
			[]string{"from", "to", "result"},
		),
		TabUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_tab_updates_total",
				Help: "Tab status checklist updates by tab and result",
			},
			[]string{"tab", "result"},
		),
		LockEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "borehole_lock_events_total",
				Help: "Borehole edit lock events",
			},
			[]string{"event"},
		),
		ConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workflow_version_conflicts_total",
				Help: "Optimistic concurrency conflicts on the workflow head row",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.TransitionsTotal, m.TabUpdatesTotal, m.LockEventsTotal, m.ConflictsTotal} {
		if err := registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register workflow metrics")
		}
	}
	return m, nil
}

// The helpers below accept a nil receiver so services can run without metrics.

func (m *Metrics) Transition(from, to, result string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *Metrics) TabUpdate(tab, result string) {
	if m == nil {
		return
	}
	m.TabUpdatesTotal.WithLabelValues(tab, result).Inc()
}

func (m *Metrics) Lock(event string) {
	m.LockN(event, 1)
}

func (m *Metrics) LockN(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.LockEventsTotal.WithLabelValues(event).Add(float64(n))
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.ConflictsTotal.Inc()
}
