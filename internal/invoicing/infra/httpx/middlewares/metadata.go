package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/catering-invoices/internal/pkg/constants"
)

// AttachRequestMetadata copies the request ID generated by chi's RequestID
// middleware into the context under our typed key (so the logger and the
// audit log can read it) and echoes it back to the client.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		w.Header().Set(constants.HeaderXRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
