package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/app"
	"github.com/jcmexdev/catering-invoices/internal/invoicing/infra/adapters/memstore"
	"github.com/jcmexdev/catering-invoices/internal/pkg/cache"
)

func newTestServer(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	store := memstore.New()
	seq := app.NewNumberSequenceWithClock(1, func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	})
	service := app.NewService(store, seq, nil)
	srv := httptest.NewServer(NewRouter(NewHandler(service, c)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })

	var decoded map[string]any
	if res.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(res.Body).Decode(&decoded)
	}
	return res, decoded
}

const createInvoiceBody = `{
	"customerName": "Acme Events",
	"customerEmail": "events@acme.test",
	"customerAddress": "1 Main St",
	"taxRate": "0.0825",
	"lineItems": [
		{"description": "Catering", "quantity": 10, "rate": "25.00"}
	]
}`

func TestCreateAndGetCustomer(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/customers",
		`{"name":"Jane","email":"jane@example.test","address":"2 Oak Ave"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "Jane", body["name"])

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/customers", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCreateCustomerValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/customers",
		`{"name":"","email":"not-an-email","address":""}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, errs, 3)
}

func TestCreateInvoiceWithLineItems(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	assert.Equal(t, "INV-2024-001", body["number"])
	assert.Equal(t, "draft", body["status"])
	assert.Equal(t, "250.00", body["subtotal"])
	assert.Equal(t, "20.63", body["taxAmount"])
	assert.Equal(t, "270.63", body["total"])
	assert.Nil(t, body["customerId"])
	assert.Nil(t, body["notes"])

	items, ok := body["lineItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "250.00", item["amount"])
	assert.Equal(t, float64(0), item["order"])
}

func TestCreateInvoiceValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/invoices",
		`{"customerName":"","customerEmail":"","customerAddress":"","status":"archived","lineItems":[{"description":"","quantity":0,"rate":"abc"}]}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid data", body["message"])

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	// customerName, customerEmail, customerAddress, status, and three
	// line-item field failures.
	assert.Len(t, errs, 7)
}

func TestGetInvoice(t *testing.T) {
	srv := newTestServer(t, nil)

	res, created := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := created["id"].(string)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, id, body["id"])
	assert.Len(t, body["lineItems"].([]any), 1)

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/missing", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestListInvoicesOmitsLineItems(t *testing.T) {
	srv := newTestServer(t, nil)

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/invoices", nil)
	require.NoError(t, err)
	listRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listRes.Body.Close()
	require.Equal(t, http.StatusOK, listRes.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(listRes.Body).Decode(&list))
	require.Len(t, list, 1)
	_, hasItems := list[0]["lineItems"]
	assert.False(t, hasItems)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	srv := newTestServer(t, nil)

	res, created := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := created["id"].(string)

	res, body := doJSON(t, http.MethodPut, srv.URL+"/api/invoices/"+id, `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "paid", body["status"])
	// Untouched fields survive the partial update.
	assert.Equal(t, created["number"], body["number"])
	assert.Equal(t, "270.63", body["total"])
	assert.Len(t, body["lineItems"].([]any), 1)

	res, _ = doJSON(t, http.MethodPut, srv.URL+"/api/invoices/missing", `{"status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpdateInvoiceReplacesLineItems(t *testing.T) {
	srv := newTestServer(t, nil)

	res, created := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := created["id"].(string)

	res, body := doJSON(t, http.MethodPut, srv.URL+"/api/invoices/"+id,
		`{"lineItems":[{"description":"Setup fee","quantity":1,"rate":"75.00"},{"description":"Staff","quantity":4,"rate":"18.00"}]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	items := body["lineItems"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Setup fee", items[0].(map[string]any)["description"])
	assert.Equal(t, "147.00", body["subtotal"])
}

func TestDeleteInvoice(t *testing.T) {
	srv := newTestServer(t, nil)

	res, created := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := created["id"].(string)

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/invoices/"+id, "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/invoices/"+id, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGenerateNumber(t *testing.T) {
	srv := newTestServer(t, nil)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/invoices/generate/number", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "INV-2024-001", body["number"])

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/generate/number", "")
	assert.Equal(t, "INV-2024-002", body["number"])
}

// mapCache is an in-memory cache.Cache for exercising the caching paths.
type mapCache struct {
	entries map[string]string
	gets    int
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value.(string)
	return nil
}

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	c.gets++
	if v, ok := c.entries[key]; ok {
		c.hits++
		return v, nil
	}
	return "", nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *mapCache) GenerateKey(operation, key string) string {
	return strings.Join([]string{"test", operation, key}, ":")
}

func TestGetInvoiceUsesCache(t *testing.T) {
	c := newMapCache()
	srv := newTestServer(t, c)

	res, created := doJSON(t, http.MethodPost, srv.URL+"/api/invoices", createInvoiceBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := created["id"].(string)

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0, c.hits)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, "270.63", body["total"])

	// A write invalidates the cached aggregate.
	res, _ = doJSON(t, http.MethodPut, srv.URL+"/api/invoices/"+id, `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, "")
	assert.Equal(t, "paid", body["status"])
}
