// Package memstore is the in-memory implementation of ports.Storage.
//
// All three collections live behind a single RWMutex, so every operation is
// atomic from the caller's point of view. Contention is negligible at this
// system's scale; a real persistent backend can replace this package without
// touching the service layer.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// Ensure Store implements the port at compile time.
var _ ports.Storage = (*Store)(nil)

// records carry an insertion sequence so list results stay deterministic
// even when timestamps collide.
type customerRecord struct {
	entity.Customer
	seq uint64
}

type invoiceRecord struct {
	entity.Invoice
	seq uint64
}

type lineItemRecord struct {
	entity.LineItem
	seq uint64
}

// Store holds the authoritative in-memory collections.
type Store struct {
	mu        sync.RWMutex
	customers map[string]customerRecord
	invoices  map[string]invoiceRecord
	lineItems map[string]lineItemRecord
	seq       uint64

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		customers: make(map[string]customerRecord),
		invoices:  make(map[string]invoiceRecord),
		lineItems: make(map[string]lineItemRecord),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Store) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]customerRecord, 0, len(s.customers))
	for _, rec := range s.customers {
		records = append(records, rec)
	}
	// Insertion order: map iteration alone is not stable across calls.
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	out := make([]entity.Customer, len(records))
	for i, rec := range records {
		out[i] = rec.Customer
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	c := rec.Customer
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, data ports.NewCustomer) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer := entity.Customer{
		ID:        uuid.NewString(),
		Name:      data.Name,
		Email:     data.Email,
		Address:   data.Address,
		CreatedAt: s.now(),
	}
	s.customers[customer.ID] = customerRecord{Customer: customer, seq: s.nextSeq()}
	return &customer, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]invoiceRecord, 0, len(s.invoices))
	for _, rec := range s.invoices {
		records = append(records, rec)
	}
	// Most recent first; insertion sequence breaks timestamp ties so the
	// ordering is deterministic.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].seq > records[j].seq
	})

	out := make([]entity.Invoice, len(records))
	for i, rec := range records {
		out[i] = rec.Invoice
	}
	return out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*entity.InvoiceWithLineItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.invoices[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return s.resolveLocked(rec.Invoice), nil
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*entity.InvoiceWithLineItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.invoices {
		if rec.Number == number {
			return s.resolveLocked(rec.Invoice), nil
		}
	}
	return nil, ports.ErrNotFound
}

// resolveLocked builds the full aggregate. Callers must hold at least the
// read lock.
func (s *Store) resolveLocked(inv entity.Invoice) *entity.InvoiceWithLineItems {
	return &entity.InvoiceWithLineItems{
		Invoice:   inv,
		LineItems: s.lineItemsForLocked(inv.ID),
	}
}

func (s *Store) lineItemsForLocked(invoiceID string) []entity.LineItem {
	records := make([]lineItemRecord, 0)
	for _, rec := range s.lineItems {
		if rec.InvoiceID == invoiceID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Order != records[j].Order {
			return records[i].Order < records[j].Order
		}
		return records[i].seq < records[j].seq
	})

	out := make([]entity.LineItem, len(records))
	for i, rec := range records {
		out[i] = rec.LineItem
	}
	return out
}

func (s *Store) CreateInvoice(ctx context.Context, data ports.NewInvoice) (*entity.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numberTakenLocked(data.Number, "") {
		return nil, ports.ErrNumberConflict
	}

	now := s.now()
	invoice := entity.Invoice{
		ID:              uuid.NewString(),
		Number:          data.Number,
		CustomerID:      data.CustomerID,
		CustomerName:    data.CustomerName,
		CustomerEmail:   data.CustomerEmail,
		CustomerAddress: data.CustomerAddress,
		EventDate:       data.EventDate,
		EventType:       data.EventType,
		Subtotal:        data.Subtotal,
		TaxRate:         data.TaxRate,
		TaxAmount:       data.TaxAmount,
		Total:           data.Total,
		Status:          data.Status,
		Notes:           data.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if invoice.Status == "" {
		invoice.Status = entity.StatusDraft
	}
	s.invoices[invoice.ID] = invoiceRecord{Invoice: invoice, seq: s.nextSeq()}
	return &invoice, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, data ports.InvoiceUpdate) (*entity.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.invoices[id]
	if !ok {
		return nil, ports.ErrNotFound
	}

	if data.Number != nil && s.numberTakenLocked(*data.Number, id) {
		return nil, ports.ErrNumberConflict
	}

	inv := rec.Invoice
	applyString(&inv.Number, data.Number)
	applyString(&inv.CustomerID, data.CustomerID)
	applyString(&inv.CustomerName, data.CustomerName)
	applyString(&inv.CustomerEmail, data.CustomerEmail)
	applyString(&inv.CustomerAddress, data.CustomerAddress)
	applyString(&inv.EventDate, data.EventDate)
	applyString(&inv.EventType, data.EventType)
	applyString(&inv.Notes, data.Notes)
	if data.Subtotal != nil {
		inv.Subtotal = *data.Subtotal
	}
	if data.TaxRate != nil {
		inv.TaxRate = *data.TaxRate
	}
	if data.TaxAmount != nil {
		inv.TaxAmount = *data.TaxAmount
	}
	if data.Total != nil {
		inv.Total = *data.Total
	}
	if data.Status != nil {
		inv.Status = *data.Status
	}
	inv.UpdatedAt = s.now()

	rec.Invoice = inv
	s.invoices[id] = rec
	return &inv, nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return false, nil
	}
	delete(s.invoices, id)
	s.deleteLineItemsLocked(id)
	return true, nil
}

func (s *Store) ListLineItemsByInvoice(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lineItemsForLocked(invoiceID), nil
}

func (s *Store) CreateLineItem(ctx context.Context, data ports.NewLineItem) (*entity.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := entity.LineItem{
		ID:          uuid.NewString(),
		InvoiceID:   data.InvoiceID,
		Description: data.Description,
		Quantity:    data.Quantity,
		Rate:        data.Rate,
		Amount:      data.Amount,
		Order:       data.Order,
	}
	s.lineItems[item.ID] = lineItemRecord{LineItem: item, seq: s.nextSeq()}
	return &item, nil
}

func (s *Store) DeleteLineItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lineItems[id]; !ok {
		return false, nil
	}
	delete(s.lineItems, id)
	return true, nil
}

func (s *Store) DeleteLineItemsByInvoice(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLineItemsLocked(invoiceID)
	return nil
}

func (s *Store) deleteLineItemsLocked(invoiceID string) {
	for id, rec := range s.lineItems {
		if rec.InvoiceID == invoiceID {
			delete(s.lineItems, id)
		}
	}
}

// numberTakenLocked reports whether another invoice already uses number.
// excludeID lets renumbering an invoice to its own number pass.
func (s *Store) numberTakenLocked(number, excludeID string) bool {
	for id, rec := range s.invoices {
		if id != excludeID && rec.Number == number {
			return true
		}
	}
	return false
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
