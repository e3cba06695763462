package domain

import "errors"

// ErrUnknownOperation is returned when a resource/operation pair has no handler.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrEnrichmentTimeout is returned when an enrichment job is still active after the poll timeout.
var ErrEnrichmentTimeout = errors.New("enrichment did not complete before timeout")

// ErrEventNotFound is returned when a trigger event ID cannot be found in the store.
var ErrEventNotFound = errors.New("event not found")

// ErrProjectNotFound is returned when a project lookup by name yields nothing.
var ErrProjectNotFound = errors.New("project not found")

// ErrLocalFile is returned when an operation names a local file the host does not allow reading.
var ErrLocalFile = errors.New("local files are not allowed")
