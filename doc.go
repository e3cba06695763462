/*
Package enlyst exposes the Enlyst lead-enrichment API as workflow steps.

It provides two pieces a workflow host can embed:

  - an action node (package node) that turns input items into API calls, one
    resource/operation pair per batch, with per-item parameters, continue-on-fail
    semantics and an optional wait for enrichment jobs to finish;
  - a webhook trigger (package trigger) that validates Enlyst deliveries and
    forwards the accepted ones to the host.

Both describe their parameters as data (package schema), so hosts can render
forms, build tool-calling schemas (package adapters/mcp) or document them
(the enlyst CLI's describe command).

# Usage

	n, err := enlyst.New(client.Credentials{AccessToken: os.Getenv("ENLYST_ACCESS_TOKEN")})
	if err != nil {
		log.Fatal(err)
	}

	items, err := n.Run(ctx, "lead", "enrichLeads", map[string]any{
		"projectId":         "proj_123",
		"enrichmentType":    "filtered",
		"waitForCompletion": true,
	})

Received webhooks are kept in an EventStore (in memory or Redis) and can be
listed through the HTTP host in package adapters/http.
*/
package enlyst
