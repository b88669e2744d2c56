package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jcmexdev/catering-invoices/internal/pkg/constants"
)

// RequestIDFromContext reads the HTTP request ID attached by the router
// middleware. Returns the empty string when the context carries none
// (e.g. in unit tests) — callers should handle that gracefully.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// NewEntry is a convenience constructor that builds an Entry with the
// request ID automatically extracted from ctx.
//
// Usage in the orchestrator:
//
//	entry := auditlog.NewEntry(ctx, invoiceID, auditlog.StatusStepDone, "Replace_Line_Items_Step", "", nil)
//	_ = repo.Save(ctx, entry)
func NewEntry(
	ctx context.Context,
	opID string,
	status Status,
	currentStep string,
	payload string,
	errs []string,
) *Entry {
	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		OpID:          opID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		RequestID:     RequestIDFromContext(ctx),
		UpdatedAt:     time.Now().UTC(),
	}
}
