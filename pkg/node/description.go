package node

import "github.com/aretw0/enlyst/pkg/schema"

// Resources.
const (
	ResourceProject  = "project"
	ResourceLead     = "lead"
	ResourceReferral = "referral"
)

// Operations.
const (
	OpCreate         = "create"
	OpCreateOrUpdate = "createOrUpdate"
	OpDelete         = "delete"
	OpGetByID        = "getById"
	OpGetAll         = "getAll"
	OpUpdate         = "update"

	OpGetProjectData    = "getProjectData"
	OpEnrichLeads       = "enrichLeads"
	OpUploadCSV         = "uploadCsv"
	OpDownloadCSV       = "downloadCsv"
	OpWaitForEnrichment = "waitForEnrichment"

	OpGetStats = "getStats"
)

// Default poll settings, in seconds, as exposed to users.
const (
	defaultPollIntervalSeconds = 10
	defaultPollTimeoutSeconds  = 3600
)

func show(resource string, operations ...string) schema.Show {
	s := schema.Show{"resource": {resource}}
	if len(operations) > 0 {
		ops := make([]any, len(operations))
		for i, op := range operations {
			ops[i] = op
		}
		s["operation"] = ops
	}
	return s
}

func withShow(s schema.Show, key string, values ...any) schema.Show {
	s[key] = values
	return s
}

var statusOptions = []schema.Option{
	{Name: "Completed", Value: "completed"},
	{Name: "Failed", Value: "failed"},
	{Name: "Pending", Value: "pending"},
	{Name: "Processing", Value: "processing"},
	{Name: "Stopped", Value: "stopped"},
}

// Description returns the parameter table of the Enlyst node.
// Controlling properties (resource, operation, enrichmentType, waitForCompletion)
// precede the properties whose visibility depends on them.
func Description() schema.Collection {
	var c schema.Collection
	c = append(c, schema.Property{
		Name:        "resource",
		DisplayName: "Resource",
		Type:        schema.FieldOptions,
		Default:     ResourceProject,
		Options: []schema.Option{
			{Name: "Project", Value: ResourceProject},
			{Name: "Lead", Value: ResourceLead},
			{Name: "Referral", Value: ResourceReferral},
		},
	})
	c = append(c, projectProperties()...)
	c = append(c, leadProperties()...)
	c = append(c, referralProperties()...)
	return c
}

func projectProperties() schema.Collection {
	return schema.Collection{
		{
			Name:        "operation",
			DisplayName: "Operation",
			Type:        schema.FieldOptions,
			Show:        show(ResourceProject),
			Default:     OpGetAll,
			Options: []schema.Option{
				{Name: "Create", Value: OpCreate, Description: "Create a new project", Action: "Create a project"},
				{Name: "Create or Update", Value: OpCreateOrUpdate, Description: "Create a project, or update the one with the same name, and enable its enrichment webhook", Action: "Create or update a project"},
				{Name: "Delete", Value: OpDelete, Description: "Delete a project", Action: "Delete a project"},
				{Name: "Get by ID", Value: OpGetByID, Description: "Retrieve a project by ID", Action: "Get a project by ID"},
				{Name: "Get Many", Value: OpGetAll, Description: "Retrieve many projects", Action: "Get many projects"},
				{Name: "Update", Value: OpUpdate, Description: "Update a project", Action: "Update a project"},
			},
		},
		{
			Name:        "name",
			DisplayName: "Name",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "",
			Show:        show(ResourceProject, OpCreate, OpCreateOrUpdate),
			Description: "Name of the project",
		},
		{
			Name:        "projectId",
			DisplayName: "Project ID",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "",
			Show:        show(ResourceProject, OpGetByID, OpUpdate, OpDelete),
			Description: "ID of the project",
		},
		{
			Name:        "updateName",
			DisplayName: "Name",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "",
			Show:        show(ResourceProject, OpUpdate),
			Description: "New name of the project",
		},
		{
			Name:        "description",
			DisplayName: "Description",
			Type:        schema.FieldString,
			Default:     "",
			Show:        show(ResourceProject, OpUpdate, OpCreateOrUpdate),
			Description: "Description of the project",
		},
		{
			Name:        "pitchlaneIntegration",
			DisplayName: "Pitchlane Integration",
			Type:        schema.FieldBoolean,
			Default:     false,
			Show:        show(ResourceProject, OpUpdate, OpCreateOrUpdate),
			Description: "Whether to enable the Pitchlane integration",
		},
		{
			Name:        "customPrompt1",
			DisplayName: "Custom Prompt 1",
			Type:        schema.FieldString,
			Default:     "",
			Show:        show(ResourceProject, OpUpdate, OpCreateOrUpdate),
		},
		{
			Name:        "customPrompt2",
			DisplayName: "Custom Prompt 2",
			Type:        schema.FieldString,
			Default:     "",
			Show:        show(ResourceProject, OpUpdate, OpCreateOrUpdate),
		},
		{
			Name:        "targetLanguage",
			DisplayName: "Target Language",
			Type:        schema.FieldString,
			Default:     "de",
			Show:        show(ResourceProject, OpUpdate, OpCreateOrUpdate),
			Description: "Language of generated texts (ISO code)",
		},
		{
			Name:        "generalWebhooks",
			DisplayName: "General Webhooks",
			Type:        schema.FieldBoolean,
			Default:     false,
			Show:        show(ResourceProject, OpUpdate),
			Description: "Whether the project sends webhooks",
		},
		{
			Name:        "enrichmentWebhookUrl",
			DisplayName: "Enrichment Webhook URL",
			Type:        schema.FieldString,
			Default:     "",
			Show:        show(ResourceProject, OpUpdate),
			Description: "URL notified when an enrichment batch completes",
		},
	}
}

func leadProperties() schema.Collection {
	allLeadOps := []string{OpGetProjectData, OpEnrichLeads, OpUploadCSV, OpDownloadCSV, OpWaitForEnrichment}
	filtered := func() schema.Show {
		return withShow(show(ResourceLead, OpEnrichLeads), "enrichmentType", "filtered")
	}
	waiting := func() schema.Show {
		return withShow(show(ResourceLead, OpEnrichLeads), "waitForCompletion", true)
	}

	return schema.Collection{
		{
			Name:        "operation",
			DisplayName: "Operation",
			Type:        schema.FieldOptions,
			Show:        show(ResourceLead),
			Default:     OpGetProjectData,
			Options: []schema.Option{
				{Name: "Get Leads", Value: OpGetProjectData, Description: "Get leads with pagination and filtering", Action: "Get leads"},
				{Name: "Enrich Leads", Value: OpEnrichLeads, Description: "Enrich leads (single or bulk enrichment)", Action: "Enrich leads"},
				{Name: "Upload CSV", Value: OpUploadCSV, Description: "Upload CSV file to project", Action: "Upload CSV file"},
				{Name: "Download CSV", Value: OpDownloadCSV, Description: "Download project data as CSV", Action: "Download CSV file"},
				{Name: "Wait for Enrichment", Value: OpWaitForEnrichment, Description: "Poll until no rows of the project are being enriched", Action: "Wait for enrichment"},
			},
		},
		{
			Name:        "projectId",
			DisplayName: "Project ID",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "",
			Show:        show(ResourceLead, allLeadOps...),
			Description: "ID of the project to work with",
		},

		// getProjectData
		{
			Name:        "page",
			DisplayName: "Page",
			Type:        schema.FieldNumber,
			Default:     0,
			Show:        show(ResourceLead, OpGetProjectData),
			Description: "Page number for pagination (0 = get all leads)",
		},
		{
			Name:        "limit",
			DisplayName: "Limit",
			Type:        schema.FieldNumber,
			Default:     50,
			MinValue:    schema.Min(1),
			Show:        show(ResourceLead, OpGetProjectData),
			Description: "Max number of results to return",
		},
		{
			Name:        "status",
			DisplayName: "Status Filter",
			Type:        schema.FieldMultiOptions,
			Default:     []any{},
			Show:        show(ResourceLead, OpGetProjectData),
			Options:     append([]schema.Option{{Name: "All", Value: "all"}}, statusOptions...),
			Description: "Filter by processing status (multiple selection possible)",
		},

		// enrichLeads
		{
			Name:        "enrichmentType",
			DisplayName: "Enrichment Type",
			Type:        schema.FieldOptions,
			Default:     "all",
			Show:        show(ResourceLead, OpEnrichLeads),
			Options: []schema.Option{
				{Name: "All Eligible Rows", Value: "all", Description: "Enrich all eligible rows in the project"},
				{Name: "Filtered Enrichment", Value: "filtered", Description: "Enrich with specific filters and criteria"},
				{Name: "Dry Run (Estimate)", Value: "dryRun", Description: "Estimate costs without processing"},
			},
		},
		{
			Name:        "includeStatuses",
			DisplayName: "Include Statuses",
			Type:        schema.FieldMultiOptions,
			Default:     []any{"stopped"},
			Show:        filtered(),
			Options: []schema.Option{
				{Name: "Stopped", Value: "stopped", Description: "Rows that are stopped (default)"},
				{Name: "Pending", Value: "pending", Description: "Rows waiting to be processed"},
				{Name: "Failed", Value: "failed", Description: "Rows that failed enrichment"},
				{Name: "Empty/Null Status", Value: "", Description: "Rows with no status set (empty or null)"},
				{Name: "Processing", Value: "processing", Description: "Rows currently being processed"},
				{Name: "Completed", Value: "completed", Description: "Successfully enriched rows"},
			},
			Description: "Which statuses to include in enrichment (default: stopped only)",
		},
		{
			Name:        "excludeErrors",
			DisplayName: "Exclude Errors",
			Type:        schema.FieldBoolean,
			Default:     true,
			Show:        filtered(),
			Description: "Whether to skip rows with errors",
		},
		{
			Name:        "startRow",
			DisplayName: "Start Row",
			Type:        schema.FieldNumber,
			Default:     1,
			Show:        filtered(),
			Description: "Starting row number (1-based)",
		},
		{
			Name:        "maxRows",
			DisplayName: "Max Rows",
			Type:        schema.FieldNumber,
			Default:     100,
			Show:        filtered(),
			Description: "Maximum number of rows to process",
		},
		{
			Name:        "dryRun",
			DisplayName: "Dry Run",
			Type:        schema.FieldHidden,
			Default:     true,
			Show:        withShow(show(ResourceLead, OpEnrichLeads), "enrichmentType", "dryRun"),
		},
		{
			Name:        "waitForCompletion",
			DisplayName: "Wait for Completion",
			Type:        schema.FieldBoolean,
			Default:     false,
			Show:        withShow(show(ResourceLead, OpEnrichLeads), "enrichmentType", "all", "filtered"),
			Description: "Whether to poll until the started enrichment has finished",
		},
		{
			Name:        "pollInterval",
			DisplayName: "Poll Interval",
			Type:        schema.FieldNumber,
			Default:     defaultPollIntervalSeconds,
			MinValue:    schema.Min(1),
			Show:        waiting(),
			Description: "Seconds between status checks",
		},
		{
			Name:        "pollTimeout",
			DisplayName: "Poll Timeout",
			Type:        schema.FieldNumber,
			Default:     defaultPollTimeoutSeconds,
			MinValue:    schema.Min(1),
			Show:        waiting(),
			Description: "Seconds to wait before failing with a timeout",
		},

		// uploadCsv
		{
			Name:        "csvFile",
			DisplayName: "CSV File",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "",
			Placeholder: "binary:data",
			Show:        show(ResourceLead, OpUploadCSV),
			Description: "The CSV file to upload: binary:<property> of the input item (file paths only where the host allows them)",
		},
		{
			Name:        "companyColumn",
			DisplayName: "Company Column",
			Type:        schema.FieldString,
			Required:    true,
			Default:     "Firmenname",
			Show:        show(ResourceLead, OpUploadCSV),
			Description: "Name of the column containing company names",
		},
		{
			Name:        "websiteColumn",
			DisplayName: "Website Column",
			Type:        schema.FieldString,
			Default:     "Website",
			Show:        show(ResourceLead, OpUploadCSV),
			Description: "Name of the column containing website URLs",
		},
		{
			Name:        "mode",
			DisplayName: "Import Mode",
			Type:        schema.FieldOptions,
			Default:     "append",
			Show:        show(ResourceLead, OpUploadCSV),
			Options: []schema.Option{
				{Name: "Append", Value: "append", Description: "Add rows to existing data"},
				{Name: "Replace", Value: "replace", Description: "Replace all existing data"},
			},
			Description: "How to handle existing project data",
		},
		{
			Name:        "delimiter",
			DisplayName: "Delimiter",
			Type:        schema.FieldOptions,
			Default:     ",",
			Show:        show(ResourceLead, OpUploadCSV),
			Options: []schema.Option{
				{Name: "Comma (,)", Value: ","},
				{Name: "Semicolon (;)", Value: ";"},
			},
			Description: "CSV delimiter character",
		},

		// downloadCsv
		{
			Name:        "downloadStatusFilter",
			DisplayName: "Filter by Status",
			Type:        schema.FieldMultiOptions,
			Default:     []any{"completed"},
			Show:        show(ResourceLead, OpDownloadCSV),
			Options:     statusOptions,
			Description: "Which statuses to include in the export",
		},
		{
			Name:        "hasEmailFilter",
			DisplayName: "Has Email Filter",
			Type:        schema.FieldBoolean,
			Default:     false,
			Show:        show(ResourceLead, OpDownloadCSV),
			Description: "Whether to include only rows that have an email address",
		},

		// waitForEnrichment
		{
			Name:        "pollInterval",
			DisplayName: "Poll Interval",
			Type:        schema.FieldNumber,
			Default:     defaultPollIntervalSeconds,
			MinValue:    schema.Min(1),
			Show:        show(ResourceLead, OpWaitForEnrichment),
			Description: "Seconds between status checks",
		},
		{
			Name:        "pollTimeout",
			DisplayName: "Poll Timeout",
			Type:        schema.FieldNumber,
			Default:     defaultPollTimeoutSeconds,
			MinValue:    schema.Min(1),
			Show:        show(ResourceLead, OpWaitForEnrichment),
			Description: "Seconds to wait before failing with a timeout",
		},
	}
}

func referralProperties() schema.Collection {
	return schema.Collection{
		{
			Name:        "operation",
			DisplayName: "Operation",
			Type:        schema.FieldOptions,
			Show:        show(ResourceReferral),
			Default:     OpGetStats,
			Options: []schema.Option{
				{Name: "Get Stats", Value: OpGetStats, Description: "Get referral statistics", Action: "Get referral statistics"},
			},
		},
	}
}
