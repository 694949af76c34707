package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactevin2u/orderops-console/internal/domain"
	"github.com/contactevin2u/orderops-console/internal/domain/entity"
	"github.com/contactevin2u/orderops-console/internal/infrastructure/backend"
)

func newClient(srv *httptest.Server) *backend.Client {
	return backend.NewClient(srv.URL, 5*time.Second)
}

func TestParse_SendsRawTextVerbatimAsPlainText(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/parse", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"customer":"John","qty":2,"monthly":150.00}`))
	}))
	defer srv.Close()

	raw := "John, 2 units, RM150/mo\nCOD esok"
	draft, err := newClient(srv).Parse(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, raw, gotBody, "the raw text travels verbatim")
	assert.Equal(t, "text/plain", gotContentType)

	out, err := json.Marshal(draft)
	require.NoError(t, err)
	assert.Equal(t, `{"customer":"John","qty":2,"monthly":150.00}`, string(out),
		"the parser's draft decodes structurally unchanged")
}

func TestParse_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(srv).Parse(context.Background(), "anything")
	require.Error(t, err)
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "parse", te.Op)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
}

func TestParse_UnreachableBackendIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing is listening any more

	_, err := newClient(srv).Parse(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, domain.IsTransport(err))
}

func TestCreateOrder_WrapsDraftAndCarriesIdempotencyKey(t *testing.T) {
	var gotBody []byte
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"code":"ORD-1001","id":7}`))
	}))
	defer srv.Close()

	draft := &entity.Draft{}
	require.NoError(t, json.Unmarshal([]byte(`{"customer":"John","qty":3}`), draft))

	code, err := newClient(srv).CreateOrder(context.Background(), draft, "idem-123")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", code)
	assert.Equal(t, "idem-123", gotKey)
	assert.Equal(t, `{"parsed":{"customer":"John","qty":3}}`, string(gotBody))
}

func TestCreateOrder_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	_, err := newClient(srv).CreateOrder(context.Background(), entity.NewDraft(), "")
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusConflict, te.Status)
}

func TestListOrders_QueryParameterAndDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "john tan", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":2,"code":"ORD-2","customer_name":"John Tan","order_type":"RENTAL","status":"CONFIRMED","total":2800,"rental_monthly_total":380,"instalment_monthly_amount":0,"outstanding_estimate":760},
			{"id":1,"code":"ORD-1","customer_name":"Johnny","order_type":"OUTRIGHT","status":"CONFIRMED","total":500,"rental_monthly_total":0,"instalment_monthly_amount":0,"outstanding_estimate":0}
		]`))
	}))
	defer srv.Close()

	orders, err := newClient(srv).ListOrders(context.Background(), "john tan")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-2", orders[0].Code, "backend order preserved")
	assert.True(t, orders[0].OutstandingEstimate.Equal(decimal.NewFromInt(760)))
}

func TestListOrders_OmitsQWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has := r.URL.Query()["q"]
		assert.False(t, has, "no q parameter for the unfiltered list")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	orders, err := newClient(srv).ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRecordPayment_PostsBareNumberAmount(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/7/payments", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := entity.Payment{
		Amount:    decimal.RequireFromString("150.50"),
		Method:    entity.MethodTNG,
		Reference: "rcpt-88",
	}
	require.NoError(t, newClient(srv).RecordPayment(context.Background(), 7, p))
	assert.Equal(t, `{"amount":150.50,"method":"TNG","reference":"rcpt-88"}`, string(gotBody))
}

func TestRecordPayment_OmitsEmptyReference(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := entity.Payment{Amount: decimal.NewFromInt(100), Method: entity.MethodCash}
	require.NoError(t, newClient(srv).RecordPayment(context.Background(), 3, p))
	assert.Equal(t, `{"amount":100,"method":"CASH"}`, string(gotBody))
}

func TestDocumentLocators(t *testing.T) {
	c := backend.NewClient("http://backend:8000", time.Second)
	assert.Equal(t, "http://backend:8000/orders/42/invoice.pdf", c.InvoiceURL(42))
	assert.Equal(t, "http://backend:8000/export/cash.xlsx?end=2025-01-31&start=2025-01-01",
		c.CashExportURL("2025-01-01", "2025-01-31"))
}
