package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an invoice. The set is closed: anything
// outside these three values is rejected at validation.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Valid reports whether s is one of the recognised states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid:
		return true
	}
	return false
}

// Invoice carries denormalized customer fields so it stays renderable even
// when CustomerID is empty (no linked customer record).
type Invoice struct {
	ID              string
	Number          string
	CustomerID      string // empty when not linked to a Customer record
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	EventDate       string // free text, empty when absent
	EventType       string
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LineItem is one billable row. InvoiceID is always set: line items only
// exist as part of an invoice aggregate.
type LineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    int
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	Order       int // display/print position within the invoice
}

// InvoiceWithLineItems is the fully resolved aggregate: the invoice plus its
// line items ordered ascending by Order.
type InvoiceWithLineItems struct {
	Invoice
	LineItems []LineItem
}
