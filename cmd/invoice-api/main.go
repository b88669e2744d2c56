package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/jcmexdev/catering-invoices/internal/coordinator/auditlog"
	auditsqlite "github.com/jcmexdev/catering-invoices/internal/coordinator/auditlog/sqlite"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/app"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/infra/adapters/memstore"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/infra/httpx"
	"github.com/jcmexdev/catering-invoices/internal/pkg/cache"
	"github.com/jcmexdev/catering-invoices/internal/pkg/telemetry"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	telemetry.InitLogger()

	store := memstore.New()
	sequence := app.NewNumberSequence()

	var audit auditlog.Repository
	if path := getEnv("AUDIT_DB_PATH", ""); path != "" {
		repo, err := auditsqlite.Open(path)
		if err != nil {
			slog.Error("failed to open audit log", "path", path, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		audit = repo
	}

	var invoiceCache cache.Cache
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		invoiceCache = cache.NewRedisCache(addr, "invoice-api")
	}

	service := app.NewService(store, sequence, audit)
	handler := httpx.NewHandler(service, invoiceCache)
	router := httpx.NewRouter(handler)

	addr := getEnv("HTTP_ADDR", ":8080")
	slog.Info("invoice API running", "addr", addr,
		"audit_log", audit != nil, "cache", invoiceCache != nil)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
