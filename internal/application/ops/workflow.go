package ops

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/contactevin2u/orderops-console/internal/application/dto"
	"github.com/contactevin2u/orderops-console/internal/application/ports"
	"github.com/contactevin2u/orderops-console/internal/domain"
	"github.com/contactevin2u/orderops-console/internal/domain/entity"
)

// Operator-facing status lines for the operations screen.
const (
	msgLoadFailed = "Gagal memuat senarai order"
	msgPayFailed  = "Gagal rekod payment"
	msgPaid       = "Payment direkod ✓"
)

// Workflow drives one operator's operations screen: list/search orders, record
// payments, and hand off invoice / cash-basis export locators. One instance
// per session.
//
// The displayed list is always the backend's latest answer, in the backend's
// order. After a successful payment the whole list is re-fetched; the console
// never patches outstanding_estimate locally, because proration and fee rules
// live behind the boundary and a local guess would drift.
type Workflow struct {
	orders ports.OrderService
	docs   ports.DocumentLocator
	log    zerolog.Logger

	mu           sync.Mutex
	list         []entity.Order
	filter       string
	message      string
	loadInFlight bool
	payInFlight  map[int64]bool
}

// NewWorkflow builds an operations workflow with an empty list.
func NewWorkflow(orders ports.OrderService, docs ports.DocumentLocator, log zerolog.Logger) *Workflow {
	return &Workflow{
		orders:      orders,
		docs:        docs,
		log:         log.With().Str("workflow", "ops").Logger(),
		payInFlight: make(map[int64]bool),
	}
}

// Orders returns the displayed list (a copy, backend order preserved) and the
// current status line.
func (w *Workflow) Orders() ([]entity.Order, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]entity.Order, len(w.list))
	copy(out, w.list)
	return out, w.message
}

// Load fetches the order collection, optionally narrowed by a free-text
// filter (matching semantics are the backend's). Every successful invocation
// fully replaces the displayed set. On failure the prior list stays on screen
// with a warning — stale data beats a blank screen for front-of-house staff.
func (w *Workflow) Load(ctx context.Context, filter string) error {
	w.mu.Lock()
	if w.loadInFlight {
		w.mu.Unlock()
		return domain.ErrInvalidState
	}
	w.loadInFlight = true
	w.mu.Unlock()

	list, err := w.orders.ListOrders(ctx, filter)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loadInFlight = false
	if err != nil {
		w.message = msgLoadFailed
		w.log.Warn().Err(err).Str("filter", filter).Msg("list orders failed")
		return err
	}
	w.list = list
	w.filter = filter
	w.message = ""
	return nil
}

// RecordPayment collects the prompt input for one order row and submits a
// single payment creation request. A blank, non-numeric or non-positive
// amount abandons the action with zero requests issued; a blank method
// defaults to CASH. On success the entire list is reloaded under the current
// filter; on failure nothing changes and retry is a fresh explicit action.
func (w *Workflow) RecordPayment(ctx context.Context, orderID int64, in dto.RecordPaymentRequest) error {
	amount, method, err := coercePayment(in)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.payInFlight[orderID] {
		w.mu.Unlock()
		return domain.ErrPayInFlight
	}
	w.payInFlight[orderID] = true
	filter := w.filter
	w.mu.Unlock()

	p := entity.Payment{
		Amount:    amount,
		Method:    method,
		Reference: strings.TrimSpace(in.Reference),
	}
	err = w.orders.RecordPayment(ctx, orderID, p)

	w.mu.Lock()
	delete(w.payInFlight, orderID)
	if err != nil {
		w.message = msgPayFailed
		w.mu.Unlock()
		w.log.Warn().Err(err).Int64("order_id", orderID).Msg("record payment failed")
		return err
	}
	w.mu.Unlock()
	w.log.Info().Int64("order_id", orderID).Str("method", string(method)).Msg("payment recorded")

	// Re-fetch so the displayed balance is the backend's computation, never a
	// local decrement. A failed reload keeps the prior list with its warning.
	if lerr := w.Load(ctx, filter); lerr == nil {
		w.mu.Lock()
		w.message = msgPaid
		w.mu.Unlock()
	}
	return nil
}

// coercePayment turns the prompt text into a payment amount and method.
// Any coercion failure is an operator abandon, not a transport call.
func coercePayment(in dto.RecordPaymentRequest) (decimal.Decimal, entity.PaymentMethod, error) {
	raw := strings.TrimSpace(in.Amount)
	if raw == "" {
		return decimal.Zero, "", domain.ErrAbandoned
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "", domain.ErrAbandoned
	}
	if !amount.IsPositive() {
		return decimal.Zero, "", domain.ErrAbandoned
	}
	method, ok := entity.ParsePaymentMethod(in.Method)
	if !ok {
		return decimal.Zero, "", domain.ErrAbandoned
	}
	return amount, method, nil
}

// InvoiceURL builds the locator of the backend-rendered invoice for an order.
// Handoff only: nothing is fetched, rendered or cached here.
func (w *Workflow) InvoiceURL(orderID int64) string {
	return w.docs.InvoiceURL(orderID)
}

// ExportCashBasisURL builds the cash-basis export locator for a date range.
// Both bounds are required: a missing or malformed bound abandons the action
// and no locator is handed out. Present bounds travel unmodified.
func (w *Workflow) ExportCashBasisURL(start, end string) (string, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" || end == "" {
		return "", domain.ErrAbandoned
	}
	for _, bound := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return "", domain.ErrAbandoned
		}
	}
	return w.docs.CashExportURL(start, end), nil
}
