package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/contactevin2u/orderops-console/internal/application/dto"
	"github.com/contactevin2u/orderops-console/internal/application/intake"
	"github.com/contactevin2u/orderops-console/internal/domain"
	"github.com/contactevin2u/orderops-console/internal/domain/entity"
)

// IntakeHandler serves the intake screen: paste → parse → review/edit → save.
// The workflow lives in the session; the handler only translates HTTP.
type IntakeHandler struct{}

// NewIntakeHandler builds the handler.
func NewIntakeHandler() *IntakeHandler {
	return &IntakeHandler{}
}

// State GET /api/intake
func (h *IntakeHandler) State(c *fiber.Ctx) error {
	return respondIntakeState(c, SessionFrom(c).Intake)
}

// SetText PUT /api/intake/text
func (h *IntakeHandler) SetText(c *fiber.Ctx) error {
	var in dto.SetTextRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	wf := SessionFrom(c).Intake
	if err := wf.SetText(in.Text); err != nil {
		return respondWorkflowError(c, err)
	}
	return respondIntakeState(c, wf)
}

// Parse POST /api/intake/parse
func (h *IntakeHandler) Parse(c *fiber.Ctx) error {
	wf := SessionFrom(c).Intake
	if err := wf.Parse(c.Context()); err != nil {
		return respondWorkflowError(c, err)
	}
	return respondIntakeState(c, wf)
}

// ReplaceDraft PUT /api/intake/draft — the body is the edited draft JSON.
func (h *IntakeHandler) ReplaceDraft(c *fiber.Ctx) error {
	draft := &entity.Draft{}
	if err := json.Unmarshal(c.Body(), draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DRAFT", Message: "draft must be a JSON object"})
	}
	wf := SessionFrom(c).Intake
	if err := wf.ReplaceDraft(draft); err != nil {
		return respondWorkflowError(c, err)
	}
	return respondIntakeState(c, wf)
}

type setFieldRequest struct {
	Path  []string        `json:"path"`
	Value json.RawMessage `json:"value"`
}

// SetField PATCH /api/intake/draft — replace one field of the draft in place.
func (h *IntakeHandler) SetField(c *fiber.Ctx) error {
	var in setFieldRequest
	if err := c.BodyParser(&in); err != nil || len(in.Path) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "path and value are required"})
	}
	value, err := entity.ValueFromJSON(in.Value)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_VALUE", Message: "value is not valid JSON"})
	}
	wf := SessionFrom(c).Intake
	if err := wf.SetField(in.Path, value); err != nil {
		return respondWorkflowError(c, err)
	}
	return respondIntakeState(c, wf)
}

// Save POST /api/intake/save
func (h *IntakeHandler) Save(c *fiber.Ctx) error {
	wf := SessionFrom(c).Intake
	if err := wf.Save(c.Context()); err != nil {
		return respondWorkflowError(c, err)
	}
	return respondIntakeState(c, wf)
}

// Reset POST /api/intake/reset — the explicit way out of Saved.
func (h *IntakeHandler) Reset(c *fiber.Ctx) error {
	wf := SessionFrom(c).Intake
	wf.Reset()
	return respondIntakeState(c, wf)
}

func respondIntakeState(c *fiber.Ctx, wf *intake.Workflow) error {
	snap := wf.Snapshot()
	out := dto.IntakeStateResponse{
		State:   string(snap.State),
		Text:    snap.Text,
		Code:    snap.Code,
		Message: snap.Message,
	}
	if snap.Draft != nil {
		raw, err := json.Marshal(snap.Draft)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		out.Draft = raw
	}
	return c.JSON(out)
}

// respondWorkflowError maps workflow errors to HTTP statuses: operator
// abandons are no-ops, guard rejections are conflicts, backend trouble is a
// bad gateway. The workflow has already preserved its state in every case.
func respondWorkflowError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAbandoned):
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, domain.ErrParseInFlight),
		errors.Is(err, domain.ErrSaveInFlight),
		errors.Is(err, domain.ErrPayInFlight),
		errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case domain.IsTransport(err):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "BACKEND", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
