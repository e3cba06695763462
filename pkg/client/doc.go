/*
Package client is an HTTP client for the Enlyst lead-enrichment REST API.

Every request is authenticated with a bearer access token and exchanges JSON,
except the CSV upload which is sent as multipart form data. Responses are
returned as decoded JSON (domain.Object, []any or a scalar) so callers can
pass them through unchanged; the few responses the node reasons about
(project lists, enrichment status) also have typed accessors.

	c, err := client.New(client.Credentials{
	    BaseURL:     "https://enlyst.app/api",
	    AccessToken: os.Getenv("ENLYST_ACCESS_TOKEN"),
	})
	if err != nil {
	    return err
	}
	if _, err := c.Enrich(ctx, projectID, client.EnrichRequest{Type: client.EnrichAll}); err != nil {
	    return err
	}
	status, err := c.WaitForEnrichment(ctx, projectID)

Non-2xx responses are reported as *APIError.
*/
package client
