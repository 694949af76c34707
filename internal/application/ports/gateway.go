package ports

import (
	"context"

	"github.com/contactevin2u/orderops-console/internal/domain/entity"
)

// Parser is the external collaborator that turns a pasted message into a
// structured draft. The raw text travels verbatim; the draft shape is opaque.
type Parser interface {
	Parse(ctx context.Context, rawText string) (*entity.Draft, error)
}

// OrderService is the order backend: creation, listing and payment recording.
// All balances are computed behind this boundary.
type OrderService interface {
	// CreateOrder submits the reviewed draft and returns the backend-assigned
	// order code. idemKey is sent as an Idempotency-Key header so a retried
	// submission after a transport failure cannot double-create.
	CreateOrder(ctx context.Context, draft *entity.Draft, idemKey string) (code string, err error)

	// ListOrders fetches the current order collection, optionally narrowed by
	// a free-text query matched by the backend against name/phone/code.
	// Result order is the backend's; callers must not resort or drop entries.
	ListOrders(ctx context.Context, query string) ([]entity.Order, error)

	// RecordPayment appends one payment fact to the given order.
	RecordPayment(ctx context.Context, orderID int64, p entity.Payment) error
}

// DocumentLocator builds backend document URLs. The console neither renders
// nor caches the artifacts; it only constructs the locator and hands off.
type DocumentLocator interface {
	InvoiceURL(orderID int64) string
	CashExportURL(start, end string) string
}
