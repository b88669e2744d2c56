package httpx

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field failure of a request so the client
// gets them all at once. It always maps to a 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateCustomer(req CreateCustomerRequest) error {
	var v ValidationError
	if strings.TrimSpace(req.Name) == "" {
		v.add("name", "is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		v.add("email", "is required")
	} else if !strings.Contains(req.Email, "@") {
		v.add("email", "must be a valid email address")
	}
	if strings.TrimSpace(req.Address) == "" {
		v.add("address", "is required")
	}
	return v.orNil()
}

// parseInvoiceCreate validates the request and converts it into the service
// input. Validation happens before any mutation: a rejected request leaves
// no partial writes behind.
func parseInvoiceCreate(req CreateInvoiceRequest) (ports.InvoiceInput, []ports.LineItemInput, error) {
	var v ValidationError

	in := ports.InvoiceInput{
		Number:          req.Number,
		CustomerID:      deref(req.CustomerID),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		EventDate:       deref(req.EventDate),
		EventType:       deref(req.EventType),
		Notes:           deref(req.Notes),
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		v.add("customerName", "is required")
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		v.add("customerEmail", "is required")
	}
	if strings.TrimSpace(req.CustomerAddress) == "" {
		v.add("customerAddress", "is required")
	}

	if req.Status != nil {
		status := entity.Status(*req.Status)
		if !status.Valid() {
			v.add("status", "must be one of draft, pending, paid")
		} else {
			in.Status = status
		}
	}

	in.TaxRate = parseOptionalDecimal(&v, "taxRate", req.TaxRate)
	in.Subtotal = parseOptionalDecimal(&v, "subtotal", req.Subtotal)
	in.TaxAmount = parseOptionalDecimal(&v, "taxAmount", req.TaxAmount)
	in.Total = parseOptionalDecimal(&v, "total", req.Total)

	items := parseLineItems(&v, req.LineItems)

	if err := v.orNil(); err != nil {
		return ports.InvoiceInput{}, nil, err
	}
	return in, items, nil
}

func parseInvoiceUpdate(req UpdateInvoiceRequest) (ports.InvoicePatch, []ports.LineItemInput, error) {
	var v ValidationError

	patch := ports.InvoicePatch{
		Number:          req.Number,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		EventDate:       req.EventDate,
		EventType:       req.EventType,
		Notes:           req.Notes,
	}

	requireNonEmpty(&v, "customerName", req.CustomerName)
	requireNonEmpty(&v, "customerEmail", req.CustomerEmail)
	requireNonEmpty(&v, "customerAddress", req.CustomerAddress)
	if req.Number != nil && strings.TrimSpace(*req.Number) == "" {
		v.add("number", "must not be empty")
	}

	if req.Status != nil {
		status := entity.Status(*req.Status)
		if !status.Valid() {
			v.add("status", "must be one of draft, pending, paid")
		} else {
			patch.Status = &status
		}
	}

	patch.TaxRate = parseOptionalDecimal(&v, "taxRate", req.TaxRate)
	patch.Subtotal = parseOptionalDecimal(&v, "subtotal", req.Subtotal)
	patch.TaxAmount = parseOptionalDecimal(&v, "taxAmount", req.TaxAmount)
	patch.Total = parseOptionalDecimal(&v, "total", req.Total)

	items := parseLineItems(&v, req.LineItems)

	if err := v.orNil(); err != nil {
		return ports.InvoicePatch{}, nil, err
	}
	return patch, items, nil
}

// parseLineItems preserves nil-ness: nil in means nil out (no lineItems key).
func parseLineItems(v *ValidationError, in []LineItemDTO) []ports.LineItemInput {
	if in == nil {
		return nil
	}
	items := make([]ports.LineItemInput, 0, len(in))
	for i, dto := range in {
		field := func(name string) string { return fmt.Sprintf("lineItems[%d].%s", i, name) }

		if strings.TrimSpace(dto.Description) == "" {
			v.add(field("description"), "is required")
		}
		if dto.Quantity < 1 {
			v.add(field("quantity"), "must be at least 1")
		}
		rate, err := decimal.NewFromString(dto.Rate)
		if err != nil {
			v.add(field("rate"), "must be a decimal string")
		} else if rate.IsNegative() {
			v.add(field("rate"), "must not be negative")
		}

		items = append(items, ports.LineItemInput{
			Description: dto.Description,
			Quantity:    dto.Quantity,
			Rate:        rate,
		})
	}
	return items
}

func parseOptionalDecimal(v *ValidationError, field string, s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		v.add(field, "must be a decimal string")
		return nil
	}
	if d.IsNegative() {
		v.add(field, "must not be negative")
		return nil
	}
	return &d
}

func requireNonEmpty(v *ValidationError, field string, s *string) {
	if s != nil && strings.TrimSpace(*s) == "" {
		v.add(field, "must not be empty")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
