// Package auditlog defines the domain types for the invoice mutation log.
//
// The audit log is a durable trail of every state transition a multi-step
// invoice write goes through. It serves two purposes:
//
//  1. Observability: you can query the DB to see exactly how far a write got
//     (or where it failed) and correlate it with the HTTP request via the
//     request_id field.
//
//  2. Forensics: the in-memory store has no transactional rollback, so when a
//     compensation itself fails the log is the only record of what was left
//     behind.
package auditlog

import "time"

// Status represents the lifecycle state of a multi-step write.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the audit log.
// It captures a point-in-time snapshot of one write workflow.
type Entry struct {
	// OpID identifies the workflow execution. It is the invoice number for
	// creations (the id does not exist yet when the workflow starts) and the
	// invoice id for updates and deletions.
	OpID string

	// Status is the current lifecycle state.
	Status Status

	// CurrentStep is the name of the step that was just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised input that started the workflow.
	// Stored once on STARTED so the write can be reconstructed from the log.
	Payload string

	// ErrorMessages accumulates failure details, one per failed step or
	// failed compensation. Stored as a JSON array of strings.
	ErrorMessages string

	// RequestID is the HTTP request ID that triggered the workflow, taken
	// from the context. Lets you jump from a log row to the request logs.
	RequestID string

	// UpdatedAt is the wall-clock time of this log entry.
	UpdatedAt time.Time
}
