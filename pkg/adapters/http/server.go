// Package http exposes the survey core over a small JSON API: trigger a
// pass, inspect the workspace, read a pane, and stream workspace change
// events. It drives the core through the Surveyor interface and never
// touches providers or sinks directly.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Surveyor is the part of the survey core the HTTP surface drives.
type Surveyor interface {
	Survey(ctx context.Context) (domain.PassSummary, error)
	Inspect(ctx context.Context) ([]*domain.ProjectReport, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server holds the handlers behind the router.
type Server struct {
	surveyor Surveyor
	panes    ports.PaneReader
	metrics  prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the HTTP surface.
type Option func(*Server)

// WithPaneReader enables GET /panes/{name} backed by the given reader.
// Without it the route answers 501.
func WithPaneReader(pr ports.PaneReader) Option {
	return func(s *Server) { s.panes = pr }
}

// WithMetrics mounts GET /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the survey core.
func NewHandler(surveyor Surveyor, opts ...Option) http.Handler {
	s := &Server{
		surveyor: surveyor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/survey", s.runSurvey)
	r.Get("/projects", s.listProjects)
	r.Get("/panes/{name}", s.readPane)
	r.Get("/events", s.subscribeEvents)
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// runSurvey handles the POST /survey request. A pass already in flight
// answers 409 so callers can retry instead of piling up.
func (s *Server) runSurvey(w http.ResponseWriter, r *http.Request) {
	summary, err := s.surveyor.Survey(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPassInFlight):
			http.Error(w, "a survey pass is already running", http.StatusConflict)
		case errors.Is(err, domain.ErrNoWorkspace):
			http.Error(w, fmt.Sprintf("workspace unavailable: %v", err), http.StatusServiceUnavailable)
			s.logger.Error("survey failed", "err", err)
		default:
			http.Error(w, fmt.Sprintf("survey error: %v", err), http.StatusInternalServerError)
			s.logger.Error("survey failed", "err", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(mapSummaryFromDomain(summary)); err != nil {
		s.logger.Error("survey response encode failed", "err", err)
	}
}

// listProjects handles the GET /projects request. It inspects the
// workspace without writing anything to the sink.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	reports, err := s.surveyor.Inspect(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoWorkspace) {
			http.Error(w, fmt.Sprintf("workspace unavailable: %v", err), http.StatusServiceUnavailable)
		} else {
			http.Error(w, fmt.Sprintf("inspect error: %v", err), http.StatusInternalServerError)
		}
		s.logger.Error("inspect failed", "err", err)
		return
	}

	resp := make([]ProjectSummary, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, mapReportFromDomain(rep))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("projects response encode failed", "err", err)
	}
}

// readPane handles the GET /panes/{name} request.
func (s *Server) readPane(w http.ResponseWriter, r *http.Request) {
	if s.panes == nil {
		http.Error(w, "pane reads not supported by this sink", http.StatusNotImplemented)
		return
	}

	name := chi.URLParam(r, "name")
	text, err := s.panes.Contents(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaneNotFound):
			http.Error(w, fmt.Sprintf("pane %q not found", name), http.StatusNotFound)
		case errors.Is(err, domain.ErrSinkUnavailable):
			http.Error(w, fmt.Sprintf("sink unavailable: %v", err), http.StatusServiceUnavailable)
			s.logger.Error("pane read failed", "pane", name, "err", err)
		default:
			http.Error(w, fmt.Sprintf("pane read error: %v", err), http.StatusInternalServerError)
			s.logger.Error("pane read failed", "pane", name, "err", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// subscribeEvents handles the GET /events request (SSE). It streams
// workspace change notifications so hosts can re-survey on save.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, err := s.surveyor.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("watch error: %v", err), http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// getHealth handles the GET /health request.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// getInfo handles the GET /info request.
func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "canopy-http",
		"version": strings.TrimSpace(canopy.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// -- Wire types --

// SurveySummary is the wire form of a finished pass.
type SurveySummary struct {
	Visited    int   `json:"visited"`
	Reported   int   `json:"reported"`
	Skipped    int   `json:"skipped"`
	Faulted    int   `json:"faulted"`
	Dropped    int   `json:"dropped"`
	DurationMS int64 `json:"duration_ms"`
}

// ProjectSummary is the wire form of one inspected project. Fields that
// came back unsupported are omitted rather than sent empty.
type ProjectSummary struct {
	Name       *string  `json:"name,omitempty"`
	Directory  *string  `json:"directory,omitempty"`
	InstanceID *string  `json:"instance_id,omitempty"`
	TypeID     *string  `json:"type_id,omitempty"`
	Skipped    bool     `json:"skipped"`
	Faults     []string `json:"faults,omitempty"`
}

// -- Helpers --

func ptr[T any](v T) *T {
	return &v
}

func mapSummaryFromDomain(s domain.PassSummary) SurveySummary {
	return SurveySummary{
		Visited:    s.Visited,
		Reported:   s.Reported,
		Skipped:    s.Skipped,
		Faulted:    s.Faulted,
		Dropped:    s.Dropped,
		DurationMS: s.Duration.Milliseconds(),
	}
}

func mapReportFromDomain(rep *domain.ProjectReport) ProjectSummary {
	p := ProjectSummary{Skipped: rep.Skipped}
	if res, ok := rep.Scalar(domain.FieldName); ok && res.Status == domain.FieldOK {
		p.Name = ptr(res.Value)
	}
	if res, ok := rep.Scalar(domain.FieldDirectory); ok && res.Status == domain.FieldOK {
		p.Directory = ptr(res.Value)
	}
	if res, ok := rep.Identity(domain.FieldInstanceID); ok && res.Status == domain.FieldOK {
		p.InstanceID = ptr(res.Value.String())
	}
	if res, ok := rep.Identity(domain.FieldTypeID); ok && res.Status == domain.FieldOK {
		p.TypeID = ptr(res.Value.String())
	}
	for _, f := range rep.Faults {
		p.Faults = append(p.Faults, f.Error())
	}
	return p
}
