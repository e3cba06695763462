package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/enlyst/pkg/domain"
)

// ProjectInput is the body for creating or updating a project.
// Zero values other than Name are omitted from the request.
type ProjectInput struct {
	Name                 string `json:"name" mapstructure:"name"`
	Description          string `json:"description,omitempty" mapstructure:"description"`
	PitchlaneIntegration bool   `json:"pitchlaneIntegration,omitempty" mapstructure:"pitchlaneIntegration"`
	CustomPrompt1        string `json:"customPrompt1,omitempty" mapstructure:"customPrompt1"`
	CustomPrompt2        string `json:"customPrompt2,omitempty" mapstructure:"customPrompt2"`
	TargetLanguage       string `json:"targetLanguage,omitempty" mapstructure:"targetLanguage"`
	GeneralWebhooks      bool   `json:"generalWebhooks,omitempty" mapstructure:"generalWebhooks"`
	EnrichmentWebhookURL string `json:"enrichmentWebhookUrl,omitempty" mapstructure:"enrichmentWebhookUrl"`
}

// ListProjects returns GET /projects as-is.
func (c *Client) ListProjects(ctx context.Context) (any, error) {
	return c.call(ctx, request{op: "project.getAll", method: http.MethodGet, path: "/projects"})
}

// Projects returns the typed project list.
func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	var list domain.ProjectList
	if err := c.callInto(ctx, request{op: "project.getAll", method: http.MethodGet, path: "/projects"}, &list); err != nil {
		return nil, err
	}
	return list.Projects, nil
}

// FindProjectByName looks a project up by name, ignoring case.
func (c *Client) FindProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, name) {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrProjectNotFound, name)
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (any, error) {
	return c.call(ctx, request{op: "project.getById", method: http.MethodGet, path: projectPath(projectID)})
}

// CreateProject creates a project with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (any, error) {
	return c.call(ctx, request{
		op:     "project.create",
		method: http.MethodPost,
		path:   "/projects",
		body:   map[string]string{"name": name},
	})
}

// UpdateProject patches a project.
func (c *Client) UpdateProject(ctx context.Context, projectID string, in ProjectInput) (any, error) {
	return c.call(ctx, request{op: "project.update", method: http.MethodPatch, path: projectPath(projectID), body: in})
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) (any, error) {
	return c.call(ctx, request{op: "project.delete", method: http.MethodDelete, path: projectPath(projectID)})
}

// WebhookURL is the enrichment webhook address Enlyst assigns to a project.
func (c *Client) WebhookURL(projectID string) string {
	return c.creds.BaseURL + "/webhooks/n8n/" + projectID
}

// CreateOrUpdateProject upserts a project by name (case-insensitive) with webhooks
// enabled, then points its enrichment webhook at WebhookURL. The response of the
// final webhook update is returned.
func (c *Client) CreateOrUpdateProject(ctx context.Context, in ProjectInput) (any, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	body := in
	body.GeneralWebhooks = true
	body.EnrichmentWebhookURL = ""

	var projectID string
	for _, p := range projects {
		if strings.EqualFold(p.Name, in.Name) {
			projectID = p.ID
			break
		}
	}

	if projectID != "" {
		c.logger.Debug("Updating existing project", "project_id", projectID, "name", in.Name)
		if _, err := c.UpdateProject(ctx, projectID, body); err != nil {
			return nil, fmt.Errorf("update project %s: %w", projectID, err)
		}
	} else {
		var created struct {
			Project domain.Project `json:"project"`
		}
		err := c.callInto(ctx, request{op: "project.create", method: http.MethodPost, path: "/projects", body: body}, &created)
		if err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		if created.Project.ID == "" {
			return nil, fmt.Errorf("create project %q: response carried no project id", in.Name)
		}
		projectID = created.Project.ID
		c.logger.Debug("Created project", "project_id", projectID, "name", in.Name)
	}

	return c.UpdateProject(ctx, projectID, ProjectInput{
		Name:                 in.Name,
		GeneralWebhooks:      true,
		EnrichmentWebhookURL: c.WebhookURL(projectID),
	})
}
