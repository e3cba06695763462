/*
Package domain contains the core models shared by the Enlyst action node and trigger node.

It is kept free of I/O so the client, dispatcher, trigger and adapters can all depend on it.

# Key Entities

  - Item: A unit of work flowing through a workflow step (JSON payload + paired input index).
  - Project, EnrichmentStatus: Typed views of the Enlyst API responses the node inspects.
  - WebhookPayload, StoredEvent: Inbound trigger deliveries and their persisted form.
  - Tool: Metadata describing an operation exposed to tool-calling hosts (MCP).
*/
package domain
