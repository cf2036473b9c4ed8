// Package observability turns survey lifecycle events into prometheus
// metrics. Hosts register the collectors once and hand the resulting
// hooks to the runner; the HTTP adapter serves them on /metrics.
package observability

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the survey collectors.
type Metrics struct {
	projectsVisited  prometheus.Counter
	projectsReported prometheus.Counter
	projectsSkipped  prometheus.Counter
	reportLines      prometheus.Counter
	queryFaults      *prometheus.CounterVec
	panesCreated     prometheus.Counter
	droppedWrites    prometheus.Counter
	passes           *prometheus.CounterVec
	passDuration     prometheus.Histogram
}

// NewMetrics creates and registers the survey collectors. A nil registerer
// falls back to the prometheus default.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		projectsVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_projects_visited_total",
			Help: "Total number of workspace nodes yielded by the cursor",
		}),
		projectsReported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_projects_reported_total",
			Help: "Total number of projects that produced report lines",
		}),
		projectsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_projects_skipped_total",
			Help: "Total number of nodes skipped for lacking the query capability",
		}),
		reportLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_report_lines_total",
			Help: "Total number of report lines appended to the pane",
		}),
		queryFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_query_faults_total",
			Help: "Total number of contained attribute query faults",
		}, []string{"stage"}),
		panesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_panes_created_total",
			Help: "Total number of output panes created",
		}),
		droppedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_dropped_writes_total",
			Help: "Total number of report writes dropped by an unavailable sink",
		}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_passes_total",
			Help: "Total number of survey passes by outcome",
		}, []string{"outcome"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "canopy_pass_duration_seconds",
			Help: "Duration of survey passes",
		}),
	}

	reg.MustRegister(
		m.projectsVisited,
		m.projectsReported,
		m.projectsSkipped,
		m.reportLines,
		m.queryFaults,
		m.panesCreated,
		m.droppedWrites,
		m.passes,
		m.passDuration,
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors. Counter
// increments are cheap enough for the coordinating loop.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProjectEnter: func(ctx context.Context, e *domain.ProjectEvent) {
			m.projectsVisited.Inc()
		},
		OnProjectReport: func(ctx context.Context, e *domain.ProjectEvent) {
			m.projectsReported.Inc()
			m.reportLines.Add(float64(e.Lines))
		},
		OnProjectSkip: func(ctx context.Context, e *domain.ProjectEvent) {
			m.projectsSkipped.Inc()
		},
		OnQueryFault: func(ctx context.Context, e *domain.FaultEvent) {
			m.queryFaults.WithLabelValues(string(e.Stage)).Inc()
		},
		OnPaneCreate: func(ctx context.Context, e *domain.PaneEvent) {
			if e.Created {
				m.panesCreated.Inc()
			}
		},
		OnPassEnd: func(ctx context.Context, e *domain.PassEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.passes.WithLabelValues(outcome).Inc()
			m.droppedWrites.Add(float64(e.Summary.Dropped))
			m.passDuration.Observe(e.Summary.Duration.Seconds())
		},
	}
}
