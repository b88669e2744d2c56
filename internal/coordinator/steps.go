package coordinator

import (
	"context"
	"fmt"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// --- CreateInvoiceStep ---

type CreateInvoiceStep struct {
	store     ports.Storage
	data      ports.NewInvoice
	invoiceID string
}

// NewCreateInvoiceStep is the constructor for CreateInvoiceStep.
func NewCreateInvoiceStep(store ports.Storage, data ports.NewInvoice) *CreateInvoiceStep {
	return &CreateInvoiceStep{
		store: store,
		data:  data,
	}
}

func (s *CreateInvoiceStep) Name() string { return "Create_Invoice_Step" }

// InvoiceID returns the id generated by the store. Empty until Execute succeeds.
func (s *CreateInvoiceStep) InvoiceID() string { return s.invoiceID }

func (s *CreateInvoiceStep) Execute(ctx context.Context) error {
	created, err := s.store.CreateInvoice(ctx, s.data)
	if err != nil {
		return err
	}
	s.invoiceID = created.ID
	return nil
}

func (s *CreateInvoiceStep) Compensate(ctx context.Context) error {
	_, err := s.store.DeleteInvoice(ctx, s.invoiceID)
	return err
}

// --- CreateLineItemsStep ---

// CreateLineItemsStep creates the given line items in input order. The
// invoice id is resolved at Execute time: either fixed (update flow) or read
// from the preceding CreateInvoiceStep (create flow).
type CreateLineItemsStep struct {
	store      ports.Storage
	invoiceID  string
	created    *CreateInvoiceStep
	items      []ports.NewLineItem
	createdIDs []string
}

// NewCreateLineItemsStep builds the step for a known invoice id.
func NewCreateLineItemsStep(store ports.Storage, invoiceID string, items []ports.NewLineItem) *CreateLineItemsStep {
	return &CreateLineItemsStep{
		store:     store,
		invoiceID: invoiceID,
		items:     items,
	}
}

// NewCreateLineItemsStepAfter builds the step for an invoice that the given
// CreateInvoiceStep will have created by the time this step runs.
func NewCreateLineItemsStepAfter(store ports.Storage, created *CreateInvoiceStep, items []ports.NewLineItem) *CreateLineItemsStep {
	return &CreateLineItemsStep{
		store:   store,
		created: created,
		items:   items,
	}
}

func (s *CreateLineItemsStep) Name() string { return "Create_Line_Items_Step" }

func (s *CreateLineItemsStep) Execute(ctx context.Context) error {
	invoiceID := s.invoiceID
	if s.created != nil {
		invoiceID = s.created.InvoiceID()
	}

	for _, item := range s.items {
		item.InvoiceID = invoiceID
		created, err := s.store.CreateLineItem(ctx, item)
		if err != nil {
			// The orchestrator only compensates previously successful
			// steps, so this step cleans up its own partial creations.
			s.deleteCreated(ctx)
			return fmt.Errorf("create line item %q: %w", item.Description, err)
		}
		s.createdIDs = append(s.createdIDs, created.ID)
	}
	return nil
}

func (s *CreateLineItemsStep) Compensate(ctx context.Context) error {
	s.deleteCreated(ctx)
	return nil
}

func (s *CreateLineItemsStep) deleteCreated(ctx context.Context) {
	for _, id := range s.createdIDs {
		_, _ = s.store.DeleteLineItem(ctx, id)
	}
	s.createdIDs = nil
}

// --- UpdateInvoiceStep ---

// UpdateInvoiceStep merges the partial update onto the invoice and keeps a
// snapshot of the previous scalar fields for compensation.
type UpdateInvoiceStep struct {
	store     ports.Storage
	invoiceID string
	data      ports.InvoiceUpdate
	prev      *entity.Invoice
}

func NewUpdateInvoiceStep(store ports.Storage, invoiceID string, data ports.InvoiceUpdate) *UpdateInvoiceStep {
	return &UpdateInvoiceStep{
		store:     store,
		invoiceID: invoiceID,
		data:      data,
	}
}

func (s *UpdateInvoiceStep) Name() string { return "Update_Invoice_Step" }

func (s *UpdateInvoiceStep) Execute(ctx context.Context) error {
	current, err := s.store.GetInvoice(ctx, s.invoiceID)
	if err != nil {
		return err
	}
	snapshot := current.Invoice
	s.prev = &snapshot

	if _, err := s.store.UpdateInvoice(ctx, s.invoiceID, s.data); err != nil {
		return err
	}
	return nil
}

// Compensate writes every scalar field back from the snapshot. UpdatedAt is
// refreshed by the store; the audit log records that a rollback happened.
func (s *UpdateInvoiceStep) Compensate(ctx context.Context) error {
	if s.prev == nil {
		return nil
	}
	p := s.prev
	status := p.Status
	_, err := s.store.UpdateInvoice(ctx, s.invoiceID, ports.InvoiceUpdate{
		Number:          &p.Number,
		CustomerID:      &p.CustomerID,
		CustomerName:    &p.CustomerName,
		CustomerEmail:   &p.CustomerEmail,
		CustomerAddress: &p.CustomerAddress,
		EventDate:       &p.EventDate,
		EventType:       &p.EventType,
		Subtotal:        &p.Subtotal,
		TaxRate:         &p.TaxRate,
		TaxAmount:       &p.TaxAmount,
		Total:           &p.Total,
		Status:          &status,
		Notes:           &p.Notes,
	})
	return err
}

// --- DeleteLineItemsStep ---

// DeleteLineItemsStep snapshots and removes all line items of an invoice.
// Compensation recreates the snapshot rows (with fresh ids, same order).
type DeleteLineItemsStep struct {
	store     ports.Storage
	invoiceID string
	snapshot  []entity.LineItem
}

func NewDeleteLineItemsStep(store ports.Storage, invoiceID string) *DeleteLineItemsStep {
	return &DeleteLineItemsStep{
		store:     store,
		invoiceID: invoiceID,
	}
}

func (s *DeleteLineItemsStep) Name() string { return "Delete_Line_Items_Step" }

func (s *DeleteLineItemsStep) Execute(ctx context.Context) error {
	items, err := s.store.ListLineItemsByInvoice(ctx, s.invoiceID)
	if err != nil {
		return err
	}
	s.snapshot = items
	return s.store.DeleteLineItemsByInvoice(ctx, s.invoiceID)
}

func (s *DeleteLineItemsStep) Compensate(ctx context.Context) error {
	for _, item := range s.snapshot {
		_, err := s.store.CreateLineItem(ctx, ports.NewLineItem{
			InvoiceID:   item.InvoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			Order:       item.Order,
		})
		if err != nil {
			return fmt.Errorf("restore line item %q: %w", item.Description, err)
		}
	}
	return nil
}
