// Package trigger implements the Enlyst webhook trigger.
//
// Enlyst posts an "enrichment.completed" delivery when a batch finishes. A
// Trigger checks the delivery (optional bearer authentication, subscribed
// event, project filter, payload shape described by the embedded OpenAPI
// document) and answers with the HTTP status and body the sender expects.
// Accepted deliveries are turned into an item, handed to an Emitter and
// recorded in an event store.
package trigger
