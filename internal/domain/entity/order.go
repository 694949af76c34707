package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Order types assigned by the backend.
const (
	OrderTypeOutright   = "OUTRIGHT"
	OrderTypeInstalment = "INSTALMENT"
	OrderTypeRental     = "RENTAL"
)

// Order is the durable business entity as the backend reports it. The console
// never computes any of these figures itself; every field is decoded from the
// latest list response. OutstandingEstimate in particular is a server-side
// projection (proration and fee rules live behind the boundary) and must never
// be adjusted locally after a payment.
type Order struct {
	ID                      int64           `json:"id"`
	Code                    string          `json:"code"`
	CustomerName            string          `json:"customer_name"`
	Phone                   string          `json:"phone,omitempty"`
	OrderType               string          `json:"order_type"`
	Status                  string          `json:"status"`
	Total                   decimal.Decimal `json:"total"`
	RentalMonthlyTotal      decimal.Decimal `json:"rental_monthly_total"`
	InstalmentMonthlyAmount decimal.Decimal `json:"instalment_monthly_amount"`
	OutstandingEstimate     decimal.Decimal `json:"outstanding_estimate"`
}

// PaymentMethod is the fixed categorical set for recorded payments.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodTNG      PaymentMethod = "TNG"
	MethodCheque   PaymentMethod = "CHEQUE"
	MethodCard     PaymentMethod = "CARD"
	MethodOther    PaymentMethod = "OTHER"
)

// ParsePaymentMethod normalizes operator input. Blank defaults to CASH; a
// value outside the fixed set is rejected.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return MethodCash, true
	case MethodCash:
		return MethodCash, true
	case MethodTransfer:
		return MethodTransfer, true
	case MethodTNG:
		return MethodTNG, true
	case MethodCheque:
		return MethodCheque, true
	case MethodCard:
		return MethodCard, true
	case MethodOther:
		return MethodOther, true
	}
	return "", false
}

// Payment is an immutable append-only fact attached to exactly one order.
// The console submits it once and never edits or deletes it; the updated
// balance is observed by re-fetching the order list, not by arithmetic here.
type Payment struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
}
