package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/customers", handler.ListCustomers)
		r.Post("/customers", handler.CreateCustomer)

		r.Get("/invoices", handler.ListInvoices)
		r.Post("/invoices", handler.CreateInvoice)
		r.Get("/invoices/generate/number", handler.GenerateNumber)
		r.Get("/invoices/{id}", handler.GetInvoiceByID)
		r.Put("/invoices/{id}", handler.UpdateInvoice)
		r.Delete("/invoices/{id}", handler.DeleteInvoice)
	})
	return r
}
