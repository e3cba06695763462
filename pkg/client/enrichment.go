package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/enlyst/pkg/domain"
)

const (
	// DefaultPollInterval is the pause between enrichment status checks.
	DefaultPollInterval = 10 * time.Second
	// DefaultPollTimeout bounds WaitForEnrichment.
	DefaultPollTimeout = time.Hour
)

// EnrichmentStatus returns the current enrichment progress of a project.
func (c *Client) EnrichmentStatus(ctx context.Context, projectID string) (*domain.EnrichmentStatus, error) {
	var status domain.EnrichmentStatus
	err := c.callInto(ctx, request{
		op:     "lead.enrichmentStatus",
		method: http.MethodGet,
		path:   projectPath(projectID, "/enrich/status"),
	}, &status)
	if err != nil {
		return nil, err
	}
	if status.ProjectID == "" {
		status.ProjectID = projectID
	}
	return &status, nil
}

type waitConfig struct {
	interval time.Duration
	timeout  time.Duration
}

// WaitOption adjusts a single WaitForEnrichment call.
type WaitOption func(*waitConfig)

// WaitInterval sets the pause between status checks.
func WaitInterval(d time.Duration) WaitOption {
	return func(w *waitConfig) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WaitTimeout sets how long to wait before giving up.
func WaitTimeout(d time.Duration) WaitOption {
	return func(w *waitConfig) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WaitForEnrichment polls the enrichment status until the active count reaches zero.
// The first check happens immediately. When the timeout elapses first, the last
// status is returned together with an error wrapping domain.ErrEnrichmentTimeout.
func (c *Client) WaitForEnrichment(ctx context.Context, projectID string, opts ...WaitOption) (*domain.EnrichmentStatus, error) {
	cfg := waitConfig{interval: c.pollInterval, timeout: c.pollTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	deadline := time.NewTimer(cfg.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		status, err := c.EnrichmentStatus(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("poll enrichment status: %w", err)
		}
		if status.Done() {
			c.logger.Info("Enrichment finished", "project_id", projectID)
			return status, nil
		}
		c.logger.Debug("Enrichment still active", "project_id", projectID, "active", status.ActiveCount)

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-deadline.C:
			return status, fmt.Errorf("project %s: %w (%d rows still active after %s)",
				projectID, domain.ErrEnrichmentTimeout, status.ActiveCount, cfg.timeout)
		case <-ticker.C:
		}
	}
}
