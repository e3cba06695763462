package node_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/node"
	"github.com/aretw0/enlyst/pkg/ports"
	"github.com/aretw0/enlyst/pkg/schema"
)

type call struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Form   map[string]string
	File   string
}

type fakeAPI struct {
	*httptest.Server
	mu    sync.Mutex
	calls []call
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"projects": []any{
			map[string]any{"id": "p1", "name": "Alpha"},
		}})
	})
	mux.HandleFunc("GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Project not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id")})
	})
	mux.HandleFunc("PATCH /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"updated": r.PathValue("id")})
	})
	mux.HandleFunc("GET /projects/{id}/data", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, []any{
			map[string]any{"row": 1.0},
			map[string]any{"row": 2.0},
		})
	})
	mux.HandleFunc("POST /projects/{id}/enrich", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"queued": 5.0})
	})
	mux.HandleFunc("GET /projects/{id}/enrich/status", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("id") == "busy" {
			writeJSON(w, http.StatusOK, map[string]any{"activeCount": 3, "processing": 3})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activeCount": 0})
	})
	mux.HandleFunc("POST /projects/upload-csv", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"imported": 2.0})
	})
	mux.HandleFunc("GET /referrals/stats", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"referrals": 3.0})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) record(r *http.Request) {
	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			c.Form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				c.Form[k] = v[0]
			}
			if fh, ok := r.MultipartForm.File["file"]; ok {
				file, _ := fh[0].Open()
				data, _ := io.ReadAll(file)
				_ = file.Close()
				c.File = string(data)
			}
		}
	} else if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &c.Body)
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeAPI) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newNode(t *testing.T, api *fakeAPI, opts ...node.Option) *node.Node {
	t.Helper()
	c, err := client.New(client.Credentials{BaseURL: api.URL, AccessToken: "tok"},
		client.WithPollInterval(10*time.Millisecond),
		client.WithPollTimeout(time.Second),
	)
	require.NoError(t, err)
	return node.New(c, opts...)
}

func TestExecute_DefaultsToGetAllProjects(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	out, err := n.Execute(context.Background(), nil, node.StaticParams{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].PairedItem)
	assert.Contains(t, out[0].JSON, "projects")

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "GET", calls[0].Method)
	assert.Equal(t, "/projects", calls[0].Path)
}

func TestExecute_ArrayResponseIsSplit(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	out, err := n.Run(context.Background(), node.ResourceLead, node.OpGetProjectData, map[string]any{
		"projectId": "p1",
		"status":    []any{"completed", "failed"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[1].JSON["row"])

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/projects/p1/data", calls[0].Path)
	// page defaults to 0 and is omitted; limit defaults to 50.
	assert.Equal(t, "limit=50&status=completed&status=failed", calls[0].Query)
}

func TestExecute_PerItemParameters(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	items := []domain.Item{
		domain.NewItem(domain.Object{"projectId": "a"}, 0),
		domain.NewItem(domain.Object{"projectId": "b"}, 1),
	}
	out, err := n.Execute(context.Background(), items, node.ItemParams(map[string]any{
		"resource":  node.ResourceProject,
		"operation": node.OpGetByID,
	}))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].JSON["id"])
	assert.Equal(t, 1, out[1].PairedItem)
	assert.Equal(t, "b", out[1].JSON["id"])
}

func TestExecute_UnknownOperation(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	_, err := n.Run(context.Background(), node.ResourceLead, "explode", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
	assert.Contains(t, err.Error(), "explode for resource: lead")
	assert.Empty(t, api.recorded())
}

func TestExecute_ValidationFailure(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	_, err := n.Run(context.Background(), node.ResourceProject, node.OpGetByID, nil)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 1)
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "projectId", verr.Key)
	assert.Empty(t, api.recorded())
}

func TestExecute_ContinueOnFail(t *testing.T) {
	api := newFakeAPI(t)
	items := []domain.Item{
		domain.NewItem(domain.Object{"projectId": "missing"}, 0),
		domain.NewItem(domain.Object{"projectId": "p1"}, 1),
	}
	params := node.ItemParams(map[string]any{"resource": "project", "operation": "getById"})

	t.Run("enabled", func(t *testing.T) {
		n := newNode(t, api, node.WithContinueOnFail(true))
		out, err := n.Execute(context.Background(), items, params)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Contains(t, out[0].JSON["error"], "Project not found")
		assert.Equal(t, "p1", out[1].JSON["id"])
	})

	t.Run("disabled", func(t *testing.T) {
		n := newNode(t, api)
		_, err := n.Execute(context.Background(), items, params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "item 0")
		assert.True(t, client.IsNotFound(err))
	})
}

func TestExecute_UpdateProject(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	_, err := n.Run(context.Background(), node.ResourceProject, node.OpUpdate, map[string]any{
		"projectId":   "p9",
		"updateName":  "Renamed",
		"description": "",
	})
	require.NoError(t, err)

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "PATCH", calls[0].Method)
	assert.Equal(t, "/projects/p9", calls[0].Path)
	assert.Equal(t, map[string]any{"name": "Renamed", "targetLanguage": "de"}, calls[0].Body)
}

func TestExecute_EnrichFilteredDefaults(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	_, err := n.Run(context.Background(), node.ResourceLead, node.OpEnrichLeads, map[string]any{
		"projectId":      "p1",
		"enrichmentType": "filtered",
	})
	require.NoError(t, err)

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"includeStatuses": []any{"stopped"},
		"excludeErrors":   true,
		"startRow":        1.0,
		"maxRows":         100.0,
	}, calls[0].Body)
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestExecute_EnrichAndWait(t *testing.T) {
	api := newFakeAPI(t)
	locker := &recordingLocker{}
	n := newNode(t, api, node.WithLocker(locker))

	out, err := n.Run(context.Background(), node.ResourceLead, node.OpEnrichLeads, map[string]any{
		"projectId":         "p1",
		"waitForCompletion": true,
		"pollInterval":      1,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"queued": 5.0}, out[0].JSON["enrichment"])
	status, ok := out[0].JSON["status"].(domain.Object)
	require.True(t, ok)
	assert.Equal(t, 0, status["activeCount"])

	assert.Equal(t, []string{"enrich:p1"}, locker.keys)
	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "/projects/p1/enrich/status", calls[1].Path)
}

func TestExecute_EnrichAndWaitTimeoutKeepsJob(t *testing.T) {
	api := newFakeAPI(t)
	params := map[string]any{"projectId": "busy", "waitForCompletion": true, "pollInterval": 1, "pollTimeout": 1}

	t.Run("continue on fail", func(t *testing.T) {
		n := newNode(t, api, node.WithContinueOnFail(true))
		out, err := n.Run(context.Background(), node.ResourceLead, node.OpEnrichLeads, params)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Contains(t, out[0].JSON["error"], domain.ErrEnrichmentTimeout.Error())
		assert.Equal(t, map[string]any{"queued": 5.0}, out[0].JSON["enrichment"])
		status, ok := out[0].JSON["status"].(domain.Object)
		require.True(t, ok)
		assert.Equal(t, 3, status["activeCount"])
	})

	t.Run("abort", func(t *testing.T) {
		n := newNode(t, api)
		_, err := n.Run(context.Background(), node.ResourceLead, node.OpEnrichLeads, params)
		assert.ErrorIs(t, err, domain.ErrEnrichmentTimeout)
	})
}

func TestExecute_WaitForEnrichment(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	out, err := n.Run(context.Background(), node.ResourceLead, node.OpWaitForEnrichment, map[string]any{
		"projectId": "p1",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].JSON["projectId"])
}

func TestExecute_UploadCSVFromBinary(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	item := domain.Item{
		JSON: domain.Object{},
		Binary: map[string]domain.BinaryData{
			"data": {FileName: "leads.csv", Data: []byte("Firmenname,Website\nAcme,acme.io\n")},
		},
	}
	out, err := n.Execute(context.Background(), []domain.Item{item}, node.StaticParams{
		"resource":  "lead",
		"operation": "uploadCsv",
		"projectId": "p1",
		"csvFile":   "binary:data",
		"delimiter": ";",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "Firmenname,Website\nAcme,acme.io\n", calls[0].File)
	assert.Equal(t, map[string]string{
		"projectId":     "p1",
		"companyColumn": "Firmenname",
		"websiteColumn": "Website",
		"mode":          "append",
		"delimiter":     ";",
	}, calls[0].Form)
}

func TestExecute_UploadCSVMissingBinary(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	_, err := n.Run(context.Background(), "lead", "uploadCsv", map[string]any{
		"projectId": "p1",
		"csvFile":   "binary:data",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no binary property "data"`)
}

func TestExecute_UploadCSVRejectsLocalPath(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	path := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(path, []byte("PRIVATE KEY MATERIAL"), 0o600))

	_, err := n.Run(context.Background(), "lead", "uploadCsv", map[string]any{
		"projectId": "p1",
		"csvFile":   path,
	})
	assert.ErrorIs(t, err, domain.ErrLocalFile)
	assert.Empty(t, api.recorded())
}

func TestExecute_UploadCSVFromFileRoot(t *testing.T) {
	api := newFakeAPI(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leads.csv"), []byte("Firmenname,Website\nAcme,acme.io\n"), 0o600))
	n := newNode(t, api, node.WithFileRoot(dir))

	_, err := n.Run(context.Background(), "lead", "uploadCsv", map[string]any{
		"projectId": "p1",
		"csvFile":   "leads.csv",
	})
	require.NoError(t, err)
	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "Firmenname,Website\nAcme,acme.io\n", calls[0].File)

	_, err = n.Run(context.Background(), "lead", "uploadCsv", map[string]any{
		"projectId": "p1",
		"csvFile":   "../outside.csv",
	})
	assert.Error(t, err)
	assert.Len(t, api.recorded(), 1)
}

func TestExecute_Hooks(t *testing.T) {
	api := newFakeAPI(t)
	var started, done []domain.OperationEvent
	n := newNode(t, api, node.WithLifecycleHooks(domain.LifecycleHooks{
		OnOperationStart: func(_ context.Context, ev *domain.OperationEvent) { started = append(started, *ev) },
		OnOperationDone:  func(_ context.Context, ev *domain.OperationEvent) { done = append(done, *ev) },
	}))

	_, err := n.Run(context.Background(), node.ResourceReferral, node.OpGetStats, nil)
	require.NoError(t, err)
	require.Len(t, started, 1)
	require.Len(t, done, 1)
	assert.Equal(t, "referral", done[0].Resource)
	assert.Equal(t, "getStats", done[0].Operation)
	assert.NoError(t, done[0].Err)
}

func TestTools(t *testing.T) {
	api := newFakeAPI(t)
	n := newNode(t, api)

	tools := n.Tools()
	assert.Len(t, tools, 12)

	byName := map[string]domain.Tool{}
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	enrich, ok := byName["enlyst_lead_enrichLeads"]
	require.True(t, ok)
	assert.Equal(t, "lead", enrich.Resource)
	assert.Equal(t, []string{"projectId"}, enrich.Parameters["required"])
	props := enrich.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "enrichmentType")
	assert.Contains(t, props, "waitForCompletion")
	assert.NotContains(t, props, "resource")
	assert.NotContains(t, props, "dryRun")

	stats := byName["enlyst_referral_getStats"]
	assert.Empty(t, stats.Parameters["properties"])
}
