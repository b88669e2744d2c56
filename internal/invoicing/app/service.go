// Package app implements the invoice workflows on top of ports.Storage.
//
// The service owns the arithmetic invariants: whenever a request carries line
// items, every amount is recomputed from quantity*rate and the invoice
// subtotal/taxAmount/total are recomputed from the items. The store itself
// trusts whatever it is given.
package app

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/catering-invoices/internal/coordinator"
	"github.com/jcmexdev/catering-invoices/internal/coordinator/auditlog"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/money"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// defaultTaxRate applies when an invoice is created without one (8.25%).
var defaultTaxRate = decimal.RequireFromString("0.0825")

// Ensure Service implements the port at compile time.
var _ ports.InvoiceService = (*Service)(nil)

// Service orchestrates create/update/delete across the aggregate store.
// Multi-step writes run through the coordinator so a mid-sequence failure
// compensates instead of leaving a half-written aggregate.
type Service struct {
	store ports.Storage
	seq   ports.NumberSequence
	audit auditlog.Repository // nil-safe: auditing skipped if nil
}

// NewService wires the service. audit may be nil.
func NewService(store ports.Storage, seq ports.NumberSequence, audit auditlog.Repository) *Service {
	return &Service{
		store: store,
		seq:   seq,
		audit: audit,
	}
}

func (s *Service) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, data ports.NewCustomer) (*entity.Customer, error) {
	return s.store.CreateCustomer(ctx, data)
}

func (s *Service) ListInvoices(ctx context.Context) ([]entity.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*entity.InvoiceWithLineItems, error) {
	return s.store.GetInvoice(ctx, id)
}

// GenerateInvoiceNumber returns the next number from the injected sequence.
func (s *Service) GenerateInvoiceNumber() string {
	return s.seq.Next()
}

// CreateInvoice creates the invoice and, when items is non-nil, its line
// items in input order (Order = index). The whole write is compensated on
// failure: a created invoice is deleted again if its line items cannot be
// persisted. The complete aggregate is re-read from the store on success.
func (s *Service) CreateInvoice(ctx context.Context, in ports.InvoiceInput, items []ports.LineItemInput) (*entity.InvoiceWithLineItems, error) {
	number := in.Number
	if number == "" {
		number = s.seq.Next()
	}

	taxRate := defaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}

	status := in.Status
	if status == "" {
		status = entity.StatusDraft
	}

	draft := ports.NewInvoice{
		Number:          number,
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerAddress: in.CustomerAddress,
		EventDate:       in.EventDate,
		EventType:       in.EventType,
		TaxRate:         taxRate,
		Status:          status,
		Notes:           in.Notes,
		Subtotal:        valueOr(in.Subtotal, decimal.Zero),
		TaxAmount:       valueOr(in.TaxAmount, decimal.Zero),
		Total:           valueOr(in.Total, decimal.Zero),
	}

	newItems := buildLineItems(items)
	if items != nil {
		totals := money.ComputeTotals(amountsOf(newItems), taxRate)
		draft.Subtotal = totals.Subtotal
		draft.TaxAmount = totals.TaxAmount
		draft.Total = totals.Total
	}

	createStep := coordinator.NewCreateInvoiceStep(s.store, draft)
	steps := []coordinator.Step{createStep}
	if len(newItems) > 0 {
		steps = append(steps, coordinator.NewCreateLineItemsStepAfter(s.store, createStep, newItems))
	}

	orch := coordinator.NewOrchestrator(number, marshalPayload(draft), steps, s.audit)
	if err := orch.Run(ctx); err != nil {
		return nil, err
	}

	return s.store.GetInvoice(ctx, createStep.InvoiceID())
}

// UpdateInvoice merges the patch onto the invoice. When items is non-nil the
// existing line items are replaced by exactly the given rows (delete-all then
// recreate, Order = index) and the totals are recomputed; a nil items slice
// leaves the line items untouched. Failures roll back to the previous state.
func (s *Service) UpdateInvoice(ctx context.Context, id string, patch ports.InvoicePatch, items []ports.LineItemInput) (*entity.InvoiceWithLineItems, error) {
	update := ports.InvoiceUpdate{
		Number:          patch.Number,
		CustomerID:      patch.CustomerID,
		CustomerName:    patch.CustomerName,
		CustomerEmail:   patch.CustomerEmail,
		CustomerAddress: patch.CustomerAddress,
		EventDate:       patch.EventDate,
		EventType:       patch.EventType,
		Subtotal:        patch.Subtotal,
		TaxRate:         patch.TaxRate,
		TaxAmount:       patch.TaxAmount,
		Total:           patch.Total,
		Status:          patch.Status,
		Notes:           patch.Notes,
	}

	var newItems []ports.NewLineItem
	if items != nil {
		// Fail fast on an unknown id before any mutation, and pick up the
		// effective tax rate for the recomputation.
		current, err := s.store.GetInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		taxRate := current.TaxRate
		if patch.TaxRate != nil {
			taxRate = *patch.TaxRate
		}

		newItems = buildLineItems(items)
		totals := money.ComputeTotals(amountsOf(newItems), taxRate)
		update.Subtotal = &totals.Subtotal
		update.TaxAmount = &totals.TaxAmount
		update.Total = &totals.Total
	}

	steps := []coordinator.Step{coordinator.NewUpdateInvoiceStep(s.store, id, update)}
	if items != nil {
		steps = append(steps,
			coordinator.NewDeleteLineItemsStep(s.store, id),
			coordinator.NewCreateLineItemsStep(s.store, id, newItems),
		)
	}

	orch := coordinator.NewOrchestrator(id, marshalPayload(update), steps, s.audit)
	if err := orch.Run(ctx); err != nil {
		return nil, err
	}

	return s.store.GetInvoice(ctx, id)
}

// DeleteInvoice removes the invoice and cascades to its line items.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ports.ErrNotFound
	}
	if s.audit != nil {
		entry := auditlog.NewEntry(ctx, id, auditlog.StatusCompleted, "Delete_Invoice_Cascade", "", nil)
		_ = s.audit.Save(ctx, entry)
	}
	return nil
}

// buildLineItems derives the persisted rows from the request: Amount from
// quantity*rate, Order from the slice index. InvoiceID is filled in by the
// coordinator step once the owning invoice id is known.
func buildLineItems(items []ports.LineItemInput) []ports.NewLineItem {
	out := make([]ports.NewLineItem, len(items))
	for i, item := range items {
		out[i] = ports.NewLineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      money.LineAmount(item.Quantity, item.Rate),
			Order:       i,
		}
	}
	return out
}

func amountsOf(items []ports.NewLineItem) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(items))
	for i, item := range items {
		amounts[i] = item.Amount
	}
	return amounts
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return fallback
}

// marshalPayload serialises the workflow input for the audit log.
// Best effort: an empty payload is fine, the log row still records the
// transition.
func marshalPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
