package node

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/registry"
)

const binaryPrefix = "binary:"

type projectRef struct {
	ProjectID string `mapstructure:"projectId"`
}

type pollParams struct {
	ProjectID string `mapstructure:"projectId"`
	// Seconds.
	Interval int `mapstructure:"pollInterval"`
	Timeout  int `mapstructure:"pollTimeout"`
}

func (p pollParams) options() []client.WaitOption {
	return []client.WaitOption{
		client.WaitInterval(time.Duration(p.Interval) * time.Second),
		client.WaitTimeout(time.Duration(p.Timeout) * time.Second),
	}
}

func (n *Node) registerHandlers(reg *registry.Registry) {
	reg.Register(ResourceProject, OpGetAll, n.listProjects)
	reg.Register(ResourceProject, OpGetByID, n.getProject)
	reg.Register(ResourceProject, OpCreate, n.createProject)
	reg.Register(ResourceProject, OpCreateOrUpdate, n.createOrUpdateProject)
	reg.Register(ResourceProject, OpUpdate, n.updateProject)
	reg.Register(ResourceProject, OpDelete, n.deleteProject)

	reg.Register(ResourceLead, OpGetProjectData, n.getProjectData)
	reg.Register(ResourceLead, OpEnrichLeads, n.enrichLeads)
	reg.Register(ResourceLead, OpUploadCSV, n.uploadCSV)
	reg.Register(ResourceLead, OpDownloadCSV, n.downloadCSV)
	reg.Register(ResourceLead, OpWaitForEnrichment, n.waitForEnrichment)

	reg.Register(ResourceReferral, OpGetStats, n.referralStats)
}

func (n *Node) listProjects(ctx context.Context, _ registry.Call) (any, error) {
	return n.client.ListProjects(ctx)
}

func (n *Node) getProject(ctx context.Context, call registry.Call) (any, error) {
	var p projectRef
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	return n.client.GetProject(ctx, p.ProjectID)
}

func (n *Node) deleteProject(ctx context.Context, call registry.Call) (any, error) {
	var p projectRef
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	return n.client.DeleteProject(ctx, p.ProjectID)
}

func (n *Node) createProject(ctx context.Context, call registry.Call) (any, error) {
	var in client.ProjectInput
	if err := decode(call.Params, &in); err != nil {
		return nil, err
	}
	return n.client.CreateProject(ctx, in.Name)
}

func (n *Node) createOrUpdateProject(ctx context.Context, call registry.Call) (any, error) {
	var in client.ProjectInput
	if err := decode(call.Params, &in); err != nil {
		return nil, err
	}
	return n.client.CreateOrUpdateProject(ctx, in)
}

func (n *Node) updateProject(ctx context.Context, call registry.Call) (any, error) {
	var p struct {
		ProjectID           string `mapstructure:"projectId"`
		UpdateName          string `mapstructure:"updateName"`
		client.ProjectInput `mapstructure:",squash"`
	}
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	p.Name = p.UpdateName
	return n.client.UpdateProject(ctx, p.ProjectID, p.ProjectInput)
}

func (n *Node) getProjectData(ctx context.Context, call registry.Call) (any, error) {
	var p struct {
		ProjectID        string `mapstructure:"projectId"`
		client.DataQuery `mapstructure:",squash"`
	}
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	return n.client.GetProjectData(ctx, p.ProjectID, p.DataQuery)
}

func (n *Node) enrichLeads(ctx context.Context, call registry.Call) (any, error) {
	var p struct {
		client.EnrichRequest `mapstructure:",squash"`
		Wait                 bool       `mapstructure:"waitForCompletion"`
		Poll                 pollParams `mapstructure:",squash"`
	}
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	if !p.Wait || p.Type == client.EnrichDryRun {
		return n.client.Enrich(ctx, p.Poll.ProjectID, p.EnrichRequest)
	}
	projectID := p.Poll.ProjectID

	unlock, err := n.lockProject(ctx, projectID, time.Duration(p.Poll.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}
	defer unlock()

	started, err := n.client.Enrich(ctx, projectID, p.EnrichRequest)
	if err != nil {
		return nil, err
	}
	n.logger.Info("Enrichment started, waiting for completion", "project_id", projectID)
	status, err := n.client.WaitForEnrichment(ctx, projectID, p.Poll.options()...)
	// On timeout the started job and the last status are kept with the error.
	result := domain.Object{"enrichment": started}
	if status != nil {
		result["status"] = statusObject(status)
	}
	return result, err
}

func (n *Node) waitForEnrichment(ctx context.Context, call registry.Call) (any, error) {
	var p pollParams
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	status, err := n.client.WaitForEnrichment(ctx, p.ProjectID, p.options()...)
	if status == nil {
		return nil, err
	}
	return statusObject(status), err
}

func statusObject(s *domain.EnrichmentStatus) domain.Object {
	return domain.Object{
		"projectId":   s.ProjectID,
		"activeCount": s.ActiveCount,
		"queued":      s.Queued,
		"processing":  s.Processing,
		"completed":   s.Completed,
		"failed":      s.Failed,
	}
}

// lockProject serialises enrich-and-wait runs on one project across replicas.
// Without a locker it is a no-op.
func (n *Node) lockProject(ctx context.Context, projectID string, ttl time.Duration) (func(), error) {
	if n.locker == nil {
		return func() {}, nil
	}
	if ttl <= 0 {
		ttl = client.DefaultPollTimeout
	}
	key := "enrich:" + projectID
	release, err := n.locker.Lock(ctx, key, ttl+time.Minute)
	if err != nil {
		return nil, fmt.Errorf("lock project %s: %w", projectID, err)
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			n.logger.Warn("Failed to release enrichment lock", "project_id", projectID, "err", err)
		}
	}, nil
}

func (n *Node) uploadCSV(ctx context.Context, call registry.Call) (any, error) {
	var p struct {
		ProjectID     string `mapstructure:"projectId"`
		CSVFile       string `mapstructure:"csvFile"`
		CompanyColumn string `mapstructure:"companyColumn"`
		WebsiteColumn string `mapstructure:"websiteColumn"`
		Mode          string `mapstructure:"mode"`
		Delimiter     string `mapstructure:"delimiter"`
	}
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}

	up := client.CSVUpload{
		ProjectID:     p.ProjectID,
		CompanyColumn: p.CompanyColumn,
		WebsiteColumn: p.WebsiteColumn,
		Mode:          p.Mode,
		Delimiter:     p.Delimiter,
	}

	if key, ok := strings.CutPrefix(p.CSVFile, binaryPrefix); ok {
		bin, found := call.Item.Binary[key]
		if !found {
			return nil, fmt.Errorf("upload csv: input item has no binary property %q", key)
		}
		up.FileName = bin.FileName
		up.File = bytes.NewReader(bin.Data)
		return n.client.UploadCSV(ctx, up)
	}

	if n.fileRoot == "" {
		return nil, fmt.Errorf("upload csv: %w: csvFile must be %s<property>, got %q", domain.ErrLocalFile, binaryPrefix, p.CSVFile)
	}
	root, err := os.OpenRoot(n.fileRoot)
	if err != nil {
		return nil, fmt.Errorf("upload csv: %w", err)
	}
	defer root.Close()
	f, err := root.Open(p.CSVFile)
	if err != nil {
		return nil, fmt.Errorf("upload csv: %w", err)
	}
	defer f.Close()
	up.FileName = filepath.Base(p.CSVFile)
	up.File = f
	return n.client.UploadCSV(ctx, up)
}

func (n *Node) downloadCSV(ctx context.Context, call registry.Call) (any, error) {
	var p struct {
		ProjectID             string `mapstructure:"projectId"`
		client.DownloadFilter `mapstructure:",squash"`
	}
	if err := decode(call.Params, &p); err != nil {
		return nil, err
	}
	return n.client.DownloadCSV(ctx, p.ProjectID, p.DownloadFilter)
}

func (n *Node) referralStats(ctx context.Context, _ registry.Call) (any, error) {
	return n.client.ReferralStats(ctx)
}
