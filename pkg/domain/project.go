package domain

// Project is the subset of an Enlyst project the node needs to reason about.
type Project struct {
	ID                   string `json:"id" mapstructure:"id"`
	Name                 string `json:"name" mapstructure:"name"`
	Description          string `json:"description,omitempty" mapstructure:"description"`
	GeneralWebhooks      bool   `json:"generalWebhooks,omitempty" mapstructure:"generalWebhooks"`
	EnrichmentWebhookURL string `json:"enrichmentWebhookUrl,omitempty" mapstructure:"enrichmentWebhookUrl"`
}

// ProjectList is the body returned by GET /projects.
type ProjectList struct {
	Projects []Project `json:"projects"`
}

// EnrichmentStatus is the body returned by the enrichment status endpoint.
// ActiveCount reaches zero once no rows are queued or processing.
type EnrichmentStatus struct {
	ProjectID   string `json:"projectId,omitempty"`
	ActiveCount int    `json:"activeCount"`
	Queued      int    `json:"queued,omitempty"`
	Processing  int    `json:"processing,omitempty"`
	Completed   int    `json:"completed,omitempty"`
	Failed      int    `json:"failed,omitempty"`
}

// Done reports whether the enrichment job has no active rows left.
func (s EnrichmentStatus) Done() bool {
	return s.ActiveCount <= 0
}
