package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
)

// DataQuery filters GET /projects/{id}/data.
// Page and Limit are sent only when positive; with both omitted the API returns every row.
// Statuses are sent as repeated "status" parameters unless empty or containing "all".
type DataQuery struct {
	Page     int      `mapstructure:"page"`
	Limit    int      `mapstructure:"limit"`
	Statuses []string `mapstructure:"status"`
}

func (q DataQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, "all") {
		for _, s := range q.Statuses {
			v.Add("status", s)
		}
	}
	return v
}

// GetProjectData returns the lead rows of a project.
func (c *Client) GetProjectData(ctx context.Context, projectID string, q DataQuery) (any, error) {
	return c.call(ctx, request{
		op:     "lead.getProjectData",
		method: http.MethodGet,
		path:   projectPath(projectID, "/data"),
		query:  q.values(),
	})
}

// EnrichmentType selects how rows are picked for enrichment.
type EnrichmentType string

const (
	EnrichAll      EnrichmentType = "all"
	EnrichFiltered EnrichmentType = "filtered"
	EnrichDryRun   EnrichmentType = "dryRun"
)

// EnrichRequest parameterises POST /projects/{id}/enrich.
// The filter fields are only sent for EnrichFiltered.
type EnrichRequest struct {
	Type            EnrichmentType `mapstructure:"enrichmentType"`
	IncludeStatuses []string       `mapstructure:"includeStatuses"`
	ExcludeErrors   bool           `mapstructure:"excludeErrors"`
	StartRow        int            `mapstructure:"startRow"`
	MaxRows         int            `mapstructure:"maxRows"`
}

func (r EnrichRequest) body() (map[string]any, error) {
	switch r.Type {
	case EnrichAll, "":
		return map[string]any{}, nil
	case EnrichFiltered:
		statuses := r.IncludeStatuses
		if statuses == nil {
			statuses = []string{}
		}
		return map[string]any{
			"includeStatuses": statuses,
			"excludeErrors":   r.ExcludeErrors,
			"startRow":        r.StartRow,
			"maxRows":         r.MaxRows,
		}, nil
	case EnrichDryRun:
		return map[string]any{"dryRun": true}, nil
	default:
		return nil, fmt.Errorf("unknown enrichment type %q", r.Type)
	}
}

// Enrich starts (or, for a dry run, estimates) an enrichment job.
func (c *Client) Enrich(ctx context.Context, projectID string, req EnrichRequest) (any, error) {
	body, err := req.body()
	if err != nil {
		return nil, err
	}
	return c.call(ctx, request{
		op:     "lead.enrichLeads",
		method: http.MethodPost,
		path:   projectPath(projectID, "/enrich"),
		body:   body,
	})
}

// CSVUpload describes a CSV import into a project.
type CSVUpload struct {
	ProjectID     string
	FileName      string
	File          io.Reader
	CompanyColumn string
	WebsiteColumn string
	// Mode is "append" or "replace".
	Mode string
	// Delimiter is "," or ";".
	Delimiter string
}

// UploadCSV posts a CSV file as multipart form data to /projects/upload-csv.
func (c *Client) UploadCSV(ctx context.Context, up CSVUpload) (any, error) {
	if up.File == nil {
		return nil, errors.New("upload csv: no file content")
	}
	if up.FileName == "" {
		up.FileName = "leads.csv"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"projectId", up.ProjectID},
		{"companyColumn", up.CompanyColumn},
		{"websiteColumn", up.WebsiteColumn},
		{"mode", up.Mode},
		{"delimiter", up.Delimiter},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("upload csv: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", up.FileName)
	if err != nil {
		return nil, fmt.Errorf("upload csv: %w", err)
	}
	if _, err := io.Copy(part, up.File); err != nil {
		return nil, fmt.Errorf("upload csv: read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload csv: %w", err)
	}

	return c.call(ctx, request{
		op:          "lead.uploadCsv",
		method:      http.MethodPost,
		path:        "/projects/upload-csv",
		raw:         &buf,
		contentType: w.FormDataContentType(),
	})
}

// DownloadFilter selects rows for a CSV export.
type DownloadFilter struct {
	Statuses []string `json:"status" mapstructure:"downloadStatusFilter"`
	HasEmail bool     `json:"hasEmail" mapstructure:"hasEmailFilter"`
}

// DownloadCSV requests a CSV export of a project.
func (c *Client) DownloadCSV(ctx context.Context, projectID string, f DownloadFilter) (any, error) {
	if f.Statuses == nil {
		f.Statuses = []string{}
	}
	return c.call(ctx, request{
		op:     "lead.downloadCsv",
		method: http.MethodPost,
		path:   projectPath(projectID, "/download-csv"),
		body:   map[string]any{"filters": f},
	})
}
