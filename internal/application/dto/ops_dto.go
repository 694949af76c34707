package dto

import "github.com/contactevin2u/orderops-console/internal/domain/entity"

// RecordPaymentRequest is the operator's payment prompt input. Amount arrives
// as typed text; coercion happens in the workflow so a blank or non-numeric
// amount abandons the action instead of reaching the backend.
type RecordPaymentRequest struct {
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
}

// OrdersResponse is the displayed order list plus the operator status line.
type OrdersResponse struct {
	Orders  []entity.Order `json:"orders"`
	Message string         `json:"message,omitempty"`
}
