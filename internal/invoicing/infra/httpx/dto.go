package httpx

import (
	"time"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/money"
)

// Decimal fields travel as strings at fixed scale (2 for currency, 4 for the
// tax rate) so precision survives the wire. Optional text fields render as
// JSON null when empty, matching the persisted shape.

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}

type LineItemDTO struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Rate        string  `json:"rate"`
	Amount      *string `json:"amount,omitempty"` // accepted for compatibility, recomputed server-side
}

type CreateInvoiceRequest struct {
	Number          string        `json:"number"`
	CustomerID      *string       `json:"customerId"`
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	CustomerAddress string        `json:"customerAddress"`
	EventDate       *string       `json:"eventDate"`
	EventType       *string       `json:"eventType"`
	Subtotal        *string       `json:"subtotal"`
	TaxRate         *string       `json:"taxRate"`
	TaxAmount       *string       `json:"taxAmount"`
	Total           *string       `json:"total"`
	Status          *string       `json:"status"`
	Notes           *string       `json:"notes"`
	LineItems       []LineItemDTO `json:"lineItems"` // nil when the key is absent
}

type UpdateInvoiceRequest struct {
	Number          *string       `json:"number"`
	CustomerID      *string       `json:"customerId"`
	CustomerName    *string       `json:"customerName"`
	CustomerEmail   *string       `json:"customerEmail"`
	CustomerAddress *string       `json:"customerAddress"`
	EventDate       *string       `json:"eventDate"`
	EventType       *string       `json:"eventType"`
	Subtotal        *string       `json:"subtotal"`
	TaxRate         *string       `json:"taxRate"`
	TaxAmount       *string       `json:"taxAmount"`
	Total           *string       `json:"total"`
	Status          *string       `json:"status"`
	Notes           *string       `json:"notes"`
	LineItems       []LineItemDTO `json:"lineItems"` // nil = leave untouched, [] = replace with nothing
}

type LineItemResponse struct {
	ID          string `json:"id"`
	InvoiceID   string `json:"invoiceId"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
	Order       int    `json:"order"`
}

type InvoiceResponse struct {
	ID              string  `json:"id"`
	Number          string  `json:"number"`
	CustomerID      *string `json:"customerId"`
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerAddress string  `json:"customerAddress"`
	EventDate       *string `json:"eventDate"`
	EventType       *string `json:"eventType"`
	Subtotal        string  `json:"subtotal"`
	TaxRate         string  `json:"taxRate"`
	TaxAmount       string  `json:"taxAmount"`
	Total           string  `json:"total"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type InvoiceWithLineItemsResponse struct {
	InvoiceResponse
	LineItems []LineItemResponse `json:"lineItems"`
}

type GeneratedNumberResponse struct {
	Number string `json:"number"`
}

type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func mapCustomerToResponse(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func mapInvoiceToResponse(inv entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		CustomerID:      nullable(inv.CustomerID),
		CustomerName:    inv.CustomerName,
		CustomerEmail:   inv.CustomerEmail,
		CustomerAddress: inv.CustomerAddress,
		EventDate:       nullable(inv.EventDate),
		EventType:       nullable(inv.EventType),
		Subtotal:        inv.Subtotal.StringFixed(money.CurrencyScale),
		TaxRate:         inv.TaxRate.StringFixed(money.RateScale),
		TaxAmount:       inv.TaxAmount.StringFixed(money.CurrencyScale),
		Total:           inv.Total.StringFixed(money.CurrencyScale),
		Status:          string(inv.Status),
		Notes:           nullable(inv.Notes),
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       inv.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAggregateToResponse(agg *entity.InvoiceWithLineItems) InvoiceWithLineItemsResponse {
	items := make([]LineItemResponse, len(agg.LineItems))
	for i, item := range agg.LineItems {
		items[i] = LineItemResponse{
			ID:          item.ID,
			InvoiceID:   item.InvoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate.StringFixed(money.CurrencyScale),
			Amount:      item.Amount.StringFixed(money.CurrencyScale),
			Order:       item.Order,
		}
	}
	return InvoiceWithLineItemsResponse{
		InvoiceResponse: mapInvoiceToResponse(agg.Invoice),
		LineItems:       items,
	}
}

// nullable renders an optional text field: empty means absent means null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
