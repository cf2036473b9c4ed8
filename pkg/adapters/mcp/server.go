package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// SurveyResult aligns with the HTTP summary shape so hosts see one format
// regardless of transport.
type SurveyResult struct {
	Visited    int   `json:"visited" jsonschema_description:"Nodes yielded by the workspace cursor"`
	Reported   int   `json:"reported" jsonschema_description:"Projects that produced report lines"`
	Skipped    int   `json:"skipped" jsonschema_description:"Nodes lacking the attribute query capability"`
	Faulted    int   `json:"faulted" jsonschema_description:"Nodes with a contained query fault"`
	Dropped    int   `json:"dropped" jsonschema_description:"Writes lost to an unavailable sink"`
	DurationMS int64 `json:"duration_ms" jsonschema_description:"Pass duration in milliseconds"`
}

// PaneContents is the structured result of the read_pane tool.
type PaneContents struct {
	Name string `json:"name" jsonschema_description:"Pane name"`
	Text string `json:"text" jsonschema_description:"Accumulated pane text"`
}

// ProjectInfo is the wire form of one inspected project. Unsupported
// fields are omitted.
type ProjectInfo struct {
	Name       string `json:"name,omitempty"`
	Directory  string `json:"directory,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	TypeID     string `json:"type_id,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// Surveyor defines the interface required by the MCP server to drive the
// survey core.
type Surveyor interface {
	Survey(ctx context.Context) (domain.PassSummary, error)
	Inspect(ctx context.Context) ([]*domain.ProjectReport, error)
}

// Server wraps the survey core and exposes it as an MCP Server.
type Server struct {
	surveyor  Surveyor
	panes     ports.PaneReader
	mcpServer *server.MCPServer
}

// Option configures the MCP server.
type Option func(*Server)

// WithPaneReader enables the read_pane tool backed by the given reader.
func WithPaneReader(pr ports.PaneReader) Option {
	return func(s *Server) { s.panes = pr }
}

// NewServer creates a new MCP Server instance.
func NewServer(surveyor Surveyor, opts ...Option) *Server {
	s := &Server{
		surveyor:  surveyor,
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(canopy.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: survey_workspace
	surveyTool := mcp.NewTool("survey_workspace",
		mcp.WithDescription("Run one survey pass: enumerate workspace projects, query their attributes, and append the report to the output pane."),
		mcp.WithOutputSchema[SurveyResult](),
	)
	s.mcpServer.AddTool(surveyTool, mcp.NewStructuredToolHandler(s.handleSurvey))

	// TOOL: read_pane
	readTool := mcp.NewTool("read_pane",
		mcp.WithDescription("Read the accumulated text of an output pane."),
		mcp.WithString("name", mcp.Description("Pane name (defaults to the report pane)")),
		mcp.WithOutputSchema[PaneContents](),
	)
	s.mcpServer.AddTool(readTool, mcp.NewStructuredToolHandler(s.handleReadPane))

	// TOOL: list_projects
	s.mcpServer.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("Inspect the workspace without writing to the pane; returns every project's attributes."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reports, err := s.surveyor.Inspect(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(mapProjects(reports))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleSurvey(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SurveyResult, error) {
	summary, err := s.surveyor.Survey(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPassInFlight) {
			return SurveyResult{}, fmt.Errorf("a survey pass is already running")
		}
		return SurveyResult{}, fmt.Errorf("survey failed: %w", err)
	}

	return SurveyResult{
		Visited:    summary.Visited,
		Reported:   summary.Reported,
		Skipped:    summary.Skipped,
		Faulted:    summary.Faulted,
		Dropped:    summary.Dropped,
		DurationMS: summary.Duration.Milliseconds(),
	}, nil
}

type readPaneArgs struct {
	Name string `mapstructure:"name"`
}

func (s *Server) handleReadPane(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PaneContents, error) {
	if s.panes == nil {
		return PaneContents{}, fmt.Errorf("pane reads not supported by this sink")
	}

	var parsed readPaneArgs
	if err := mapstructure.Decode(args, &parsed); err != nil {
		return PaneContents{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.Name == "" {
		parsed.Name = report.DefaultPaneName
	}

	text, err := s.panes.Contents(ctx, parsed.Name)
	if err != nil {
		if errors.Is(err, domain.ErrPaneNotFound) {
			return PaneContents{}, fmt.Errorf("pane %q not found", parsed.Name)
		}
		return PaneContents{}, fmt.Errorf("pane read failed: %w", err)
	}

	return PaneContents{Name: parsed.Name, Text: text}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: canopy://workspace
	s.mcpServer.AddResource(mcp.NewResource("canopy://workspace", "Workspace Projects",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		reports, err := s.surveyor.Inspect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect workspace: %w", err)
		}
		jsonBytes, _ := json.Marshal(mapProjects(reports))

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canopy://workspace",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func mapProjects(reports []*domain.ProjectReport) []ProjectInfo {
	infos := make([]ProjectInfo, 0, len(reports))
	for _, rep := range reports {
		info := ProjectInfo{Skipped: rep.Skipped}
		if res, ok := rep.Scalar(domain.FieldName); ok && res.Status == domain.FieldOK {
			info.Name = res.Value
		}
		if res, ok := rep.Scalar(domain.FieldDirectory); ok && res.Status == domain.FieldOK {
			info.Directory = res.Value
		}
		if res, ok := rep.Identity(domain.FieldInstanceID); ok && res.Status == domain.FieldOK {
			info.InstanceID = res.Value.String()
		}
		if res, ok := rep.Identity(domain.FieldTypeID); ok && res.Status == domain.FieldOK {
			info.TypeID = res.Value.String()
		}
		infos = append(infos, info)
	}
	return infos
}
