// Package coordinator executes multi-step invoice writes with compensation.
//
// The in-memory store has no transactions, so "create invoice then create its
// line items" and "update invoice then replace its line items" are not atomic
// on their own. The orchestrator closes that gap: if a step fails, every
// previously completed step is compensated in LIFO order, and each transition
// is appended to the audit log.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/catering-invoices/internal/coordinator/auditlog"
)

// Step represents a single unit of work in a write workflow.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	opID    string
	payload string
	steps   []Step
	log     auditlog.Repository // nil-safe: logging skipped if nil
}

// NewOrchestrator builds an orchestrator for one workflow execution.
// payload is the JSON-serialised input, written to the audit log on STARTED.
// repo may be nil — in that case transitions are not persisted.
func NewOrchestrator(opID, payload string, steps []Step, repo auditlog.Repository) *Orchestrator {
	return &Orchestrator{
		opID:    opID,
		payload: payload,
		steps:   steps,
		log:     repo,
	}
}

// Run executes the workflow steps sequentially.
// If a step fails, it triggers the compensation of all previously successful
// steps and returns the original step error unwrapped, so callers can still
// classify it with errors.Is.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.record(ctx, auditlog.StatusStarted, "", nil)

	var successfulSteps []Step
	var failures []string

	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "workflow step failed, rolling back",
				"op_id", o.opID, "step", step.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("%s failed: %v", step.Name(), err))
			o.record(ctx, auditlog.StatusCompensating, step.Name(), failures)

			failures = append(failures, o.rollback(ctx, successfulSteps)...)
			o.record(ctx, auditlog.StatusFailed, step.Name(), failures)
			return err
		}
		// Track successful step for potential compensation (LIFO).
		successfulSteps = append(successfulSteps, step)
		o.record(ctx, auditlog.StatusStepDone, step.Name(), nil)
	}

	o.record(ctx, auditlog.StatusCompleted, "", nil)
	return nil
}

// rollback compensates the given steps in reverse order. Compensation
// failures are logged and collected, never raised: there is nothing further
// to unwind at that point.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var failures []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step",
				"op_id", o.opID, "step", step.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return failures
}

func (o *Orchestrator) record(ctx context.Context, status auditlog.Status, step string, errs []string) {
	if o.log == nil {
		return
	}
	payload := ""
	if status == auditlog.StatusStarted {
		payload = o.payload
	}
	entry := auditlog.NewEntry(ctx, o.opID, status, step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to save audit log entry",
			"op_id", o.opID, "status", status, "error", err)
	}
}
