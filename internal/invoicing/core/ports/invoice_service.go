package ports

import (
	"context"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/shopspring/decimal"
)

// LineItemInput is one requested line item. The amount and display order are
// derived server-side: amount from quantity*rate, order from the slice index.
type LineItemInput struct {
	Description string
	Quantity    int
	Rate        decimal.Decimal
}

// InvoiceInput is the input for InvoiceService.CreateInvoice. Zero values
// mean "not provided": an empty Number is generated, a nil TaxRate falls
// back to the default rate, an empty Status becomes draft.
type InvoiceInput struct {
	Number          string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	EventDate       string
	EventType       string
	TaxRate         *decimal.Decimal
	Subtotal        *decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           *decimal.Decimal
	Status          entity.Status
	Notes           string
}

// InvoicePatch is a partial update of invoice scalar fields; nil means
// "leave unchanged".
type InvoicePatch struct {
	Number          *string
	CustomerID      *string
	CustomerName    *string
	CustomerEmail   *string
	CustomerAddress *string
	EventDate       *string
	EventType       *string
	TaxRate         *decimal.Decimal
	Subtotal        *decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           *decimal.Decimal
	Status          *entity.Status
	Notes           *string
}

// NumberSequence issues human-readable invoice numbers. The counter is
// process-wide, monotonically increasing and never reused; it resets only on
// process restart, so numbers are not unique across concurrent processes.
type NumberSequence interface {
	Next() string
}

// InvoiceService orchestrates the invoice workflows on top of Storage.
//
// For CreateInvoice and UpdateInvoice, a nil items slice means the request
// carried no lineItems key; a non-nil (possibly empty) slice replaces the
// invoice's line items with exactly the given rows, assigning Order by index
// and recomputing amounts and invoice totals.
type InvoiceService interface {
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	GetCustomer(ctx context.Context, id string) (*entity.Customer, error)
	CreateCustomer(ctx context.Context, data NewCustomer) (*entity.Customer, error)

	ListInvoices(ctx context.Context) ([]entity.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*entity.InvoiceWithLineItems, error)
	CreateInvoice(ctx context.Context, in InvoiceInput, items []LineItemInput) (*entity.InvoiceWithLineItems, error)
	UpdateInvoice(ctx context.Context, id string, patch InvoicePatch, items []LineItemInput) (*entity.InvoiceWithLineItems, error)
	DeleteInvoice(ctx context.Context, id string) error

	GenerateInvoiceNumber() string
}
