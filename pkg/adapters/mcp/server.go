package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
)

const (
	toolsURI  = "enlyst://tools"
	eventsURI = "enlyst://events"

	recentEvents = 20
)

// Runner is what the MCP server needs from the action node.
type Runner interface {
	Tools() []domain.Tool
	Run(ctx context.Context, resource, operation string, params map[string]any) ([]domain.Item, error)
}

// Server exposes every node operation as an MCP tool.
type Server struct {
	runner    Runner
	store     ports.EventStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*options)

type options struct {
	version string
	store   ports.EventStore
	logger  *slog.Logger
}

// WithVersion sets the version advertised during initialization.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithEventStore publishes received webhook events as the enlyst://events resource.
func WithEventStore(s ports.EventStore) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(runner Runner, opts ...Option) *Server {
	o := options{version: "dev", logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		runner:    runner,
		store:     o.store,
		logger:    o.logger,
		mcpServer: server.NewMCPServer("enlyst-mcp", o.version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
	for _, t := range s.runner.Tools() {
		schema, err := json.Marshal(t.Parameters)
		if err != nil {
			s.logger.Error("Skipping tool with unencodable schema", "tool", t.Name, "err", err)
			continue
		}
		tool := mcp.NewToolWithRawSchema(t.Name, t.Description, schema)
		s.mcpServer.AddTool(tool, s.toolHandler(t.Resource, t.Operation))
	}
}

func (s *Server) toolHandler(resource, operation string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := s.runner.Run(ctx, resource, operation, req.GetArguments())
		if err != nil {
			s.logger.Warn("MCP tool failed", "resource", resource, "operation", operation, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := make([]domain.Object, len(items))
		for i, item := range items {
			out[i] = item.JSON
		}
		return marshalToolResult(out)
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(toolsURI, "Enlyst Operations",
		mcp.WithResourceDescription("Every resource/operation pair with its parameter schema."),
		mcp.WithMIMEType("application/json"),
	), s.handleToolsResource)

	if s.store != nil {
		s.mcpServer.AddResource(mcp.NewResource(eventsURI, "Recent Webhook Events",
			mcp.WithResourceDescription("The most recent Enlyst webhook deliveries, newest first."),
			mcp.WithMIMEType("application/json"),
		), s.handleEventsResource)
	}
}

func (s *Server) handleToolsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(toolsURI, s.runner.Tools())
}

func (s *Server) handleEventsResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	events, err := s.store.List(ctx, recentEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return jsonResource(eventsURI, events)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func marshalToolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("internal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
