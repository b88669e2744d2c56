package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
	"github.com/jcmexdev/catering-invoices/internal/pkg/cache"
)

// invoiceCacheTTL bounds staleness for cached invoice reads. Writes
// invalidate eagerly; the TTL only covers entries orphaned by a crash
// between invalidation and response.
const invoiceCacheTTL = 5 * time.Minute

// Handler handles incoming HTTP requests for the invoicing domain.
type Handler struct {
	service ports.InvoiceService
	cache   cache.Cache // nil-safe: caching skipped if nil
}

// NewHandler initializes the handler with its required domain service.
// c may be nil — in that case invoice reads always hit the store.
func NewHandler(service ports.InvoiceService, c cache.Cache) *Handler {
	return &Handler{
		service: service,
		cache:   c,
	}
}

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch customers", nil)
		return
	}

	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = mapCustomerToResponse(&customers[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCustomer validates the payload and persists a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer data", nil)
		return
	}
	if err := validateCustomer(req); err != nil {
		h.writeDomainError(w, r, err, "Failed to create customer")
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), ports.NewCustomer{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to create customer")
		return
	}

	slog.InfoContext(r.Context(), "customer created", "customer_id", created.ID)
	writeJSON(w, http.StatusCreated, mapCustomerToResponse(created))
}

// ListInvoices returns all invoices without line items, most recent first.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch invoices", nil)
		return
	}

	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = mapInvoiceToResponse(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetInvoiceByID returns the full aggregate, served from the cache when
// a fresh entry exists.
func (h *Handler) GetInvoiceByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), h.invoiceCacheKey(id)); err == nil && cached != "" {
			writeRawJSON(w, http.StatusOK, []byte(cached))
			return
		}
	}

	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to fetch invoice")
		return
	}

	body, err := json.Marshal(mapAggregateToResponse(invoice))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch invoice", nil)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), h.invoiceCacheKey(id), string(body), invoiceCacheTTL); err != nil {
			slog.WarnContext(r.Context(), "failed to cache invoice", "invoice_id", id, "error", err)
		}
	}
	writeRawJSON(w, http.StatusOK, body)
}

// CreateInvoice creates an invoice and, when provided, its line items.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice data", nil)
		return
	}

	in, items, err := parseInvoiceCreate(req)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to create invoice")
		return
	}

	created, err := h.service.CreateInvoice(r.Context(), in, items)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to create invoice")
		return
	}

	slog.InfoContext(r.Context(), "invoice created",
		"invoice_id", created.ID, "number", created.Number, "line_items", len(created.LineItems))
	writeJSON(w, http.StatusCreated, mapAggregateToResponse(created))
}

// UpdateInvoice applies a partial update; a lineItems array in the body
// replaces the invoice's line items wholesale.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice data", nil)
		return
	}

	patch, items, err := parseInvoiceUpdate(req)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to update invoice")
		return
	}

	h.invalidateInvoice(r, id)

	updated, err := h.service.UpdateInvoice(r.Context(), id, patch, items)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to update invoice")
		return
	}

	slog.InfoContext(r.Context(), "invoice updated", "invoice_id", id)
	writeJSON(w, http.StatusOK, mapAggregateToResponse(updated))
}

// DeleteInvoice removes an invoice and cascades to its line items.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.invalidateInvoice(r, id)

	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err, "Failed to delete invoice")
		return
	}

	slog.InfoContext(r.Context(), "invoice deleted", "invoice_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GenerateNumber hands out the next invoice number without creating anything.
func (h *Handler) GenerateNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GeneratedNumberResponse{Number: h.service.GenerateInvoiceNumber()})
}

func (h *Handler) invoiceCacheKey(id string) string {
	return h.cache.GenerateKey("invoice", id)
}

// invalidateInvoice drops the cached aggregate before the mutation is
// acknowledged so readers never see a stale entry after a write.
func (h *Handler) invalidateInvoice(r *http.Request, id string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(r.Context(), h.invoiceCacheKey(id)); err != nil {
		slog.WarnContext(r.Context(), "failed to invalidate invoice cache", "invoice_id", id, "error", err)
	}
}

// writeDomainError maps service errors to the HTTP taxonomy: validation →
// 400 with field detail, unknown id → 404, number conflicts → 400, anything
// else → 500 with no internal detail leaked.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "Invalid data", vErr.Fields)
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
	case errors.Is(err, ports.ErrNumberConflict):
		writeError(w, http.StatusBadRequest, "Invoice number already in use", nil)
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, fields []FieldError) {
	writeJSON(w, status, ErrorResponse{
		Message: msg,
		Errors:  fields,
	})
}
