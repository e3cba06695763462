package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/ports"
	"github.com/aretw0/enlyst/pkg/trigger"
)

// WebhookPath is where Enlyst posts its deliveries.
const WebhookPath = "/webhook/enlyst"

const (
	defaultListLimit = 50
	maxBodyBytes     = 1 << 20
)

// Server hosts the trigger webhook and exposes the received events.
type Server struct {
	Trigger *trigger.Trigger
	Store   ports.EventStore
	Streams *StreamManager
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// NewHandler creates the HTTP handler for the server.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post(WebhookPath, s.ReceiveWebhook)
	r.Get("/events", s.ListEvents)
	r.Get("/events/stream", s.SubscribeEvents)
	r.Get("/events/{id}", s.GetEvent)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		if _, err := w.Write(trigger.OpenAPISpec()); err != nil {
			s.Logger.Error("Failed to write OpenAPI spec", "err", err)
		}
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Enlyst Webhook Host</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ReceiveWebhook handles POST /webhook/enlyst.
func (s *Server) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.Logger.Warn("ReceiveWebhook: failed to read body", "err", err)
		writeJSON(w, s.Logger, http.StatusBadRequest, domain.Object{"error": trigger.MsgInvalidPayload})
		return
	}

	res := s.Trigger.Handle(r.Context(), r.Header, body)
	writeJSON(w, s.Logger, res.Status, res.Body)
}

// ListEvents handles GET /events.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter limit: %v", err), http.StatusBadRequest)
		return
	}
	if limit < 1 {
		http.Error(w, "limit must be at least 1", http.StatusBadRequest)
		return
	}

	events, err := s.Store.List(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("ListEvents failed", "err", err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, err := s.Store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("GetEvent failed", "err", err, "event_id", id)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, ev)
}

// SubscribeEvents handles GET /events/stream (SSE). With ?projectId= only that
// project's deliveries are streamed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var projectID string
	if err := runtime.BindQueryParameter("form", true, false, "projectId", r.URL.Query(), &projectID); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter projectId: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(projectID)
	defer cancel()

	s.Logger.Info("SSE: Subscribing to webhook events", "project_id", projectID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: webhook\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := trigger.OpenAPI(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	cfg := s.Trigger.Config()
	writeJSON(w, s.Logger, http.StatusOK, map[string]any{
		"app":            "enlyst-webhook",
		"version":        strings.TrimSpace(s.Version),
		"api_version":    apiVersion,
		"authentication": cfg.Authentication,
		"events":         cfg.Events,
		"project_filter": cfg.ProjectFilter,
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
