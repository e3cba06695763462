package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/enlyst/pkg/adapters/http"
	"github.com/aretw0/enlyst/pkg/trigger"
)

const shutdownTimeout = 5 * time.Second

// NewWebhookHandler builds the trigger and the HTTP host around it.
func NewWebhookHandler(app *App, version string) (http.Handler, error) {
	handler, _, err := newWebhookHost(app, version)
	return handler, err
}

func newWebhookHost(app *App, version string) (http.Handler, *httpAdapter.StreamManager, error) {
	streams := httpAdapter.NewStreamManager(app.Logger)
	tr, err := trigger.New(app.Config.TriggerSettings(),
		trigger.WithEventStore(app.Store),
		trigger.WithEmitter(streams),
		trigger.WithLogger(app.Logger),
		trigger.WithLifecycleHooks(app.Hooks()),
	)
	if err != nil {
		return nil, nil, err
	}

	return httpAdapter.NewHandler(&httpAdapter.Server{
		Trigger: tr,
		Store:   app.Store,
		Streams: streams,
		Metrics: app.Metrics.Handler(),
		Version: version,
		Logger:  app.Logger,
	}), streams, nil
}

// newServer creates the webhook HTTP server. Open event streams are closed
// when the server shuts down.
func newServer(app *App, addr, version string) (*http.Server, error) {
	handler, streams, err := newWebhookHost(app, version)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(streams.Close)
	return srv, nil
}

// Serve runs the webhook host on addr until ctx is cancelled. Status lines are
// written to out, which may be nil.
func Serve(ctx context.Context, app *App, addr, version string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	srv, err := newServer(app, addr, version)
	if err != nil {
		return err
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting webhook server", "address", addr, "path", httpAdapter.WebhookPath)
		serverErrors <- srv.ListenAndServe()
	}()
	printSystemMessage(out, "Receiving Enlyst webhooks on %s%s", addr, httpAdapter.WebhookPath)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.Logger.Info("Shutdown signal received, stopping webhook server")
		printSystemMessage(out, "Stopping webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}
