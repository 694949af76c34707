package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contactevin2u/orderops-console/internal/application/dto"
	"github.com/contactevin2u/orderops-console/internal/domain"
)

// OpsHandler serves the operations screen: list/search orders, record
// payments, and hand off invoice and cash-basis export locators.
type OpsHandler struct{}

// NewOpsHandler builds the handler.
func NewOpsHandler() *OpsHandler {
	return &OpsHandler{}
}

// List GET /api/ops/orders?q=
//
// Runs a fresh Load on every call (first entry and every explicit search).
// When the backend is unreachable the previously displayed list is returned
// with a warning instead of a blank screen; the HTTP status stays 200 because
// the screen still has something valid to show.
func (h *OpsHandler) List(c *fiber.Ctx) error {
	wf := SessionFrom(c).Ops
	err := wf.Load(c.Context(), c.Query("q"))
	if err != nil && !domain.IsTransport(err) {
		return respondWorkflowError(c, err)
	}
	orders, message := wf.Orders()
	return c.JSON(dto.OrdersResponse{Orders: orders, Message: message})
}

// RecordPayment POST /api/ops/orders/:id/payments
func (h *OpsHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "order id must be a positive integer"})
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	wf := SessionFrom(c).Ops
	if err := wf.RecordPayment(c.Context(), int64(id), in); err != nil {
		return respondWorkflowError(c, err)
	}
	orders, message := wf.Orders()
	return c.JSON(dto.OrdersResponse{Orders: orders, Message: message})
}

// Invoice GET /api/ops/orders/:id/invoice — locator handoff only.
func (h *OpsHandler) Invoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "order id must be a positive integer"})
	}
	wf := SessionFrom(c).Ops
	return c.JSON(dto.DocumentResponse{URL: wf.InvoiceURL(int64(id))})
}

// ExportCash GET /api/ops/export/cash?start=&end= — both bounds required.
func (h *OpsHandler) ExportCash(c *fiber.Ctx) error {
	wf := SessionFrom(c).Ops
	u, err := wf.ExportCashBasisURL(c.Query("start"), c.Query("end"))
	if err != nil {
		return respondWorkflowError(c, err)
	}
	return c.JSON(dto.DocumentResponse{URL: u})
}
