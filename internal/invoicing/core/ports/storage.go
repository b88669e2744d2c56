package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an id or number references nothing.
// Empty result sets are not an error.
var ErrNotFound = errors.New("not found")

// ErrNumberConflict is returned when creating or renumbering an invoice
// would violate the global uniqueness of invoice numbers.
var ErrNumberConflict = errors.New("invoice number already in use")

// NewCustomer is the input for Storage.CreateCustomer. The id and creation
// timestamp are generated by the store.
type NewCustomer struct {
	Name    string
	Email   string
	Address string
}

// NewInvoice is the input for Storage.CreateInvoice. The store generates the
// id and timestamps; everything else, including the money fields, is trusted
// as given (the service layer owns the arithmetic invariants).
type NewInvoice struct {
	Number          string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	EventDate       string
	EventType       string
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Status          entity.Status
	Notes           string
}

// InvoiceUpdate is a partial update: nil fields are left untouched.
type InvoiceUpdate struct {
	Number          *string
	CustomerID      *string
	CustomerName    *string
	CustomerEmail   *string
	CustomerAddress *string
	EventDate       *string
	EventType       *string
	Subtotal        *decimal.Decimal
	TaxRate         *decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           *decimal.Decimal
	Status          *entity.Status
	Notes           *string
}

// NewLineItem is the input for Storage.CreateLineItem.
type NewLineItem struct {
	InvoiceID   string
	Description string
	Quantity    int
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	Order       int
}

// Storage owns the authoritative collections of customers, invoices and line
// items. Implementations must be safe for concurrent use and must make each
// operation appear atomic to callers.
type Storage interface {
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	GetCustomer(ctx context.Context, id string) (*entity.Customer, error)
	CreateCustomer(ctx context.Context, data NewCustomer) (*entity.Customer, error)

	// ListInvoices returns invoices without line items, most recent first.
	ListInvoices(ctx context.Context) ([]entity.Invoice, error)
	// GetInvoice returns the full aggregate, line items ordered by Order.
	GetInvoice(ctx context.Context, id string) (*entity.InvoiceWithLineItems, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*entity.InvoiceWithLineItems, error)
	CreateInvoice(ctx context.Context, data NewInvoice) (*entity.Invoice, error)
	// UpdateInvoice merges non-nil fields and refreshes UpdatedAt.
	// It never touches line items.
	UpdateInvoice(ctx context.Context, id string, data InvoiceUpdate) (*entity.Invoice, error)
	// DeleteInvoice cascades to the invoice's line items. The bool reports
	// whether an invoice was actually removed; false is not an error.
	DeleteInvoice(ctx context.Context, id string) (bool, error)

	ListLineItemsByInvoice(ctx context.Context, invoiceID string) ([]entity.LineItem, error)
	CreateLineItem(ctx context.Context, data NewLineItem) (*entity.LineItem, error)
	DeleteLineItem(ctx context.Context, id string) (bool, error)
	// DeleteLineItemsByInvoice removes all matching items; no-op if none.
	DeleteLineItemsByInvoice(ctx context.Context, invoiceID string) error
}
