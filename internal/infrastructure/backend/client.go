package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/contactevin2u/orderops-console/internal/application/ports"
	"github.com/contactevin2u/orderops-console/internal/domain"
	"github.com/contactevin2u/orderops-console/internal/domain/entity"
)

// Compile-time checks that Client implements the gateway ports.
var (
	_ ports.Parser          = (*Client)(nil)
	_ ports.OrderService    = (*Client)(nil)
	_ ports.DocumentLocator = (*Client)(nil)
)

// Client is the HTTP adapter for the order backend boundary. It uses Go's
// standard net/http client; the base URL is resolved once at process start.
// No retries and no local timeouts beyond the transport-level one: a request,
// once issued, runs to completion or failure exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds the adapter. baseURL must not end with a slash.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Parse sends the raw message text verbatim as a text/plain body and decodes
// the parser's structured draft.
func (c *Client) Parse(ctx context.Context, rawText string) (*entity.Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", strings.NewReader(rawText))
	if err != nil {
		return nil, fmt.Errorf("parse: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	body, err := c.do("parse", req)
	if err != nil {
		return nil, err
	}
	draft := &entity.Draft{}
	if err := json.Unmarshal(body, draft); err != nil {
		return nil, &domain.TransportError{Op: "parse", Err: fmt.Errorf("decode draft: %w", err)}
	}
	return draft, nil
}

type createOrderRequest struct {
	Parsed *entity.Draft `json:"parsed"`
}

type createOrderResponse struct {
	Code string `json:"code"`
}

// CreateOrder submits the reviewed draft as {"parsed": ...} and returns the
// backend-assigned order code. idemKey, when present, travels as the
// Idempotency-Key header so the backend can reject a double submission.
func (c *Client) CreateOrder(ctx context.Context, draft *entity.Draft, idemKey string) (string, error) {
	payload, err := json.Marshal(createOrderRequest{Parsed: draft})
	if err != nil {
		return "", fmt.Errorf("create order: encode draft: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create order: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	body, err := c.do("create_order", req)
	if err != nil {
		return "", err
	}
	var out createOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &domain.TransportError{Op: "create_order", Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Code, nil
}

// ListOrders fetches the order collection, optionally narrowed by q. The
// backend's ordering is preserved as decoded.
func (c *Client) ListOrders(ctx context.Context, query string) ([]entity.Order, error) {
	u := c.baseURL + "/orders"
	if query != "" {
		u += "?q=" + url.QueryEscape(query)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list orders: build request: %w", err)
	}

	body, err := c.do("list_orders", req)
	if err != nil {
		return nil, err
	}
	var out []entity.Order
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.TransportError{Op: "list_orders", Err: fmt.Errorf("decode orders: %w", err)}
	}
	return out, nil
}

// paymentPayload is the wire shape of a payment; amount is a bare JSON number.
type paymentPayload struct {
	Amount    json.Number `json:"amount"`
	Method    string      `json:"method"`
	Reference string      `json:"reference,omitempty"`
}

// RecordPayment appends one payment fact to the order. The response body is
// an acknowledgement only; the caller observes the updated balance by
// re-fetching the list.
func (c *Client) RecordPayment(ctx context.Context, orderID int64, p entity.Payment) error {
	payload, err := json.Marshal(paymentPayload{
		Amount:    json.Number(p.Amount.String()),
		Method:    string(p.Method),
		Reference: p.Reference,
	})
	if err != nil {
		return fmt.Errorf("record payment: encode: %w", err)
	}
	u := fmt.Sprintf("%s/orders/%d/payments", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("record payment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do("record_payment", req)
	return err
}

// InvoiceURL is the locator of the backend-rendered invoice PDF.
func (c *Client) InvoiceURL(orderID int64) string {
	return fmt.Sprintf("%s/orders/%d/invoice.pdf", c.baseURL, orderID)
}

// CashExportURL is the locator of the cash-basis spreadsheet for a range.
func (c *Client) CashExportURL(start, end string) string {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	return c.baseURL + "/export/cash.xlsx?" + q.Encode()
}

// do executes the request and returns the body on any 2xx status. Everything
// else becomes a TransportError tagged with op.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Op: op, Status: resp.StatusCode}
	}
	return body, nil
}
