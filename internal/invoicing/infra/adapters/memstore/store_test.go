package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/domain/entity"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// newTestStore returns a store whose clock advances one second per call, so
// ordering by CreatedAt is observable in tests.
func newTestStore() *Store {
	s := New()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func newInvoice(number string) ports.NewInvoice {
	return ports.NewInvoice{
		Number:          number,
		CustomerName:    "Acme Events",
		CustomerEmail:   "events@acme.test",
		CustomerAddress: "1 Main St",
		TaxRate:         decimal.RequireFromString("0.0825"),
		Status:          entity.StatusDraft,
	}
}

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	created, err := store.CreateCustomer(ctx, ports.NewCustomer{
		Name:    "Jane Smith",
		Email:   "jane@example.test",
		Address: "2 Oak Ave",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := store.GetCustomer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = store.GetCustomer(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	second, err := store.CreateCustomer(ctx, ports.NewCustomer{Name: "B", Email: "b@x.test", Address: "3"})
	require.NoError(t, err)

	// Stable insertion order across calls.
	for i := 0; i < 3; i++ {
		list, err := store.ListCustomers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, created.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	}
}

func TestCreateAndGetInvoice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	created, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", got.Number)
	assert.Empty(t, got.LineItems)

	byNumber, err := store.GetInvoiceByNumber(ctx, "INV-2024-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	_, err = store.GetInvoice(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = store.GetInvoiceByNumber(ctx, "INV-9999-999")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreateInvoiceNumberConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	_, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)

	_, err = store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	assert.ErrorIs(t, err, ports.ErrNumberConflict)
}

func TestListInvoicesMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	first, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)
	second, err := store.CreateInvoice(ctx, newInvoice("INV-2024-002"))
	require.NoError(t, err)
	third, err := store.CreateInvoice(ctx, newInvoice("INV-2024-003"))
	require.NoError(t, err)

	list, err := store.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, first.ID, list[2].ID)
}

func TestUpdateInvoice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	created, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)

	status := entity.StatusPaid
	updated, err := store.UpdateInvoice(ctx, created.ID, ports.InvoiceUpdate{Status: &status})
	require.NoError(t, err)

	// Only the patched field and UpdatedAt change.
	assert.Equal(t, entity.StatusPaid, updated.Status)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, created.CustomerName, updated.CustomerName)
	assert.True(t, updated.TaxRate.Equal(created.TaxRate))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = store.UpdateInvoice(ctx, "missing", ports.InvoiceUpdate{Status: &status})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdateInvoiceNumberConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	_, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)
	second, err := store.CreateInvoice(ctx, newInvoice("INV-2024-002"))
	require.NoError(t, err)

	taken := "INV-2024-001"
	_, err = store.UpdateInvoice(ctx, second.ID, ports.InvoiceUpdate{Number: &taken})
	assert.ErrorIs(t, err, ports.ErrNumberConflict)

	// Renumbering to its own number is fine.
	own := "INV-2024-002"
	_, err = store.UpdateInvoice(ctx, second.ID, ports.InvoiceUpdate{Number: &own})
	assert.NoError(t, err)
}

func TestLineItemsOrderedByOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	inv, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)

	// Created out of order on purpose.
	for _, order := range []int{2, 0, 1} {
		_, err := store.CreateLineItem(ctx, ports.NewLineItem{
			InvoiceID:   inv.ID,
			Description: "Row",
			Quantity:    1,
			Rate:        decimal.RequireFromString("10.00"),
			Amount:      decimal.RequireFromString("10.00"),
			Order:       order,
		})
		require.NoError(t, err)
	}

	items, err := store.ListLineItemsByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.Order)
	}

	got, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 3)
	assert.Equal(t, 0, got.LineItems[0].Order)
}

func TestDeleteInvoiceCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	inv, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)
	_, err = store.CreateLineItem(ctx, ports.NewLineItem{
		InvoiceID:   inv.ID,
		Description: "Catering",
		Quantity:    10,
		Rate:        decimal.RequireFromString("25.00"),
		Amount:      decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)

	deleted, err := store.DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	items, err := store.ListLineItemsByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	deleted, err = store.DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteLineItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	inv, err := store.CreateInvoice(ctx, newInvoice("INV-2024-001"))
	require.NoError(t, err)
	item, err := store.CreateLineItem(ctx, ports.NewLineItem{
		InvoiceID:   inv.ID,
		Description: "Row",
		Quantity:    1,
		Rate:        decimal.RequireFromString("5.00"),
		Amount:      decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)

	existed, err := store.DeleteLineItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.DeleteLineItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	// Unconditional bulk delete is a no-op when nothing matches.
	require.NoError(t, store.DeleteLineItemsByInvoice(ctx, inv.ID))
	require.NoError(t, store.DeleteLineItemsByInvoice(ctx, "missing"))
}
