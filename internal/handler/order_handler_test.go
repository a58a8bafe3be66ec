package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/config"
	"dlex-orders/internal/diagnostics"
	"dlex-orders/internal/model"
	"dlex-orders/internal/repository"
	"dlex-orders/internal/service"
)

type fixture struct {
	router   http.Handler
	messages config.Messages
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>dlex</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(static, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "js", "app.js"), []byte("// app"), 0o600))

	logger := log.New(io.Discard, "", 0)
	messages := config.Default().Messages
	svc := service.NewOrderService(repository.NewMemoryOrderRepository(), 0)
	h := NewOrderHandler(svc, messages, diagnostics.NewMetrics(), logger)

	return fixture{
		router:   Routes(h, "/dlex", static, logger),
		messages: messages,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, model.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env model.Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestGetOrder_EmptyList(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/dlex/getorder", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Result)
	assert.Equal(t, model.ResultOK, *env.Result)
	assert.Equal(t, f.messages.ListEmpty, env.Message)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestAddThenGetOrder(t *testing.T) {
	f := newFixture(t)

	_, env := f.do(t, http.MethodPost, "/dlex/addorder", `{"orderName":"o1","customerName":"Alice","productName":"Tea"}`)
	require.True(t, env.Succeeded())
	assert.Equal(t, f.messages.AddOK, env.Message)

	_, env = f.do(t, http.MethodGet, "/dlex/getorder", "")
	require.True(t, env.Succeeded())
	assert.Equal(t, f.messages.ListOK, env.Message)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "o1", env.Data[0].OrderName)
	assert.Equal(t, "Alice", env.Data[0].CustomerName)
	assert.Equal(t, "Tea", env.Data[0].ProductName)
	assert.NotEmpty(t, env.Data[0].Datetime)
}

func TestAddOrder_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"orderName":`},
		{name: "unknown field", body: `{"orderName":"o1","customerName":"A","productName":"B","extra":1}`},
		{name: "missing field", body: `{"orderName":"o1","customerName":"A"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			rec, env := f.do(t, http.MethodPost, "/dlex/addorder", tc.body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, env.Result)
			assert.Equal(t, model.ResultError, *env.Result)
			assert.Equal(t, f.messages.AddFailed, env.Message)
		})
	}
}

func TestAddOrder_Duplicate(t *testing.T) {
	f := newFixture(t)
	body := `{"orderName":"o1","customerName":"Alice","productName":"Tea"}`

	_, env := f.do(t, http.MethodPost, "/dlex/addorder", body)
	require.True(t, env.Succeeded())

	_, env = f.do(t, http.MethodPost, "/dlex/addorder", body)
	assert.False(t, env.Succeeded())
	assert.Equal(t, f.messages.AddFailed, env.Message)
}

func TestOperation(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/dlex/addorder", `{"orderName":"o1","customerName":"Alice","productName":"Tea"}`)
	f.do(t, http.MethodPost, "/dlex/addorder", `{"orderName":"o2","customerName":"Bob","productName":"Milk"}`)

	_, env := f.do(t, http.MethodPost, "/dlex/operation",
		`[{"orderName":"o1","productName":"Coffee"},{"orderName":"o2","productName":"Juice"}]`)
	require.True(t, env.Succeeded())
	assert.Equal(t, f.messages.OperationOK, env.Message)

	_, env = f.do(t, http.MethodGet, "/dlex/getorder", "")
	require.Len(t, env.Data, 2)
	assert.Equal(t, "Coffee", env.Data[0].ProductName)
	assert.Equal(t, "Juice", env.Data[1].ProductName)
}

func TestOperation_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown order", body: `[{"orderName":"o1","productName":"Coffee"},{"orderName":"nope","productName":"Juice"}]`},
		{name: "single order", body: `[{"orderName":"o1","productName":"Coffee"}]`},
		{name: "not an array", body: `{"orderName":"o1","productName":"Coffee"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.do(t, http.MethodPost, "/dlex/addorder", `{"orderName":"o1","customerName":"Alice","productName":"Tea"}`)

			_, env := f.do(t, http.MethodPost, "/dlex/operation", tc.body)
			require.NotNil(t, env.Result)
			assert.Equal(t, model.ResultError, *env.Result)
			assert.Equal(t, f.messages.OperationFailed, env.Message)
		})
	}
}

func TestDeleteOrders(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/dlex/addorder", `{"orderName":"o1","customerName":"Alice","productName":"Tea"}`)

	_, env := f.do(t, http.MethodPost, "/dlex/delete", "")
	require.True(t, env.Succeeded())
	assert.Equal(t, f.messages.DeleteOK, env.Message)

	_, env = f.do(t, http.MethodGet, "/dlex/getorder", "")
	assert.Empty(t, env.Data)
	assert.Equal(t, f.messages.ListEmpty, env.Message)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	for method, path := range map[string]string{
		http.MethodPost: "/dlex/getorder",
		http.MethodGet:  "/dlex/addorder",
		http.MethodPut:  "/dlex/operation",
	} {
		rec, _ := f.do(t, method, path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", method, path)
	}
	rec, _ := f.do(t, http.MethodGet, "/dlex/delete", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticSite(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dlex/top", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dlex")

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dlex/js/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "// app", rec.Body.String())

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dlex/top", rec.Header().Get("Location"))
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))
}

type deadlockRepo struct {
	*repository.MemoryOrderRepository
}

func (deadlockRepo) UpdateProducts(context.Context, model.OperationOrder, model.OperationOrder, func() string, func(context.Context) error) error {
	return fmt.Errorf("update order name=o2: %w", apperr.ErrDeadlock)
}

func TestOperation_DeadlockIsReportedAndCounted(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	messages := config.Default().Messages
	metrics := diagnostics.NewMetrics()
	svc := service.NewOrderService(deadlockRepo{repository.NewMemoryOrderRepository()}, 0)
	router := Routes(NewOrderHandler(svc, messages, metrics, logger), "/dlex", t.TempDir(), logger)

	req := httptest.NewRequest(http.MethodPost, "/dlex/operation",
		strings.NewReader(`[{"orderName":"o1","productName":"Coffee"},{"orderName":"o2","productName":"Juice"}]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env model.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Result)
	assert.Equal(t, model.ResultError, *env.Result)
	assert.Equal(t, messages.OperationFailed, env.Message)

	rec = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "dlex_deadlocks_total 1")
	assert.Contains(t, body, `dlex_requests_total{endpoint="operation",result="-1"} 1`)
}
