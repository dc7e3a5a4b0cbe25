package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/pagination"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// FineHandler handles fine ledger endpoints
type FineHandler struct {
	fines *services.FineService
}

// NewFineHandler creates a new fine handler
func NewFineHandler(fines *services.FineService) *FineHandler {
	return &FineHandler{fines: fines}
}

// Create records a standalone fine (damage, lost, other)
func (h *FineHandler) Create(c *fiber.Ctx) error {
	var input services.CreateFineInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fine, err := h.fines.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Fine recorded", fine)
}

// Get returns a fine
func (h *FineHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	fine, err := h.fines.GetFine(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", fine)
}

// List lists fines, optionally filtered by state
func (h *FineHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	state := domain.FineState(c.Query("state"))

	fines, total, err := h.fines.ListFines(c.Context(), state, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(fines, params, total))
}

// PayRequest is a payment against a fine. Omitting amount settles the
// remaining balance in full.
type PayRequest struct {
	Amount    float64              `json:"amount,omitempty"`
	Method    domain.PaymentMethod `json:"method,omitempty"`
	Reference string               `json:"reference,omitempty"`
}

// Pay applies a payment to a fine
func (h *FineHandler) Pay(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req PayRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if req.Amount == 0 {
		fine, err := h.fines.MarkPaid(c.Context(), id)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Success(c, "Fine paid in full", fine)
	}

	fine, err := h.fines.PartialPay(c.Context(), id, &services.PartialPayInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Payment recorded", fine)
}

// WaiveRequest forgives a fine
type WaiveRequest struct {
	Reason string `json:"reason"`
}

// Waive forgives a fine
func (h *FineHandler) Waive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req WaiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "reason is required")
	}

	fine, err := h.fines.Waive(c.Context(), id, req.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Fine waived", fine)
}
