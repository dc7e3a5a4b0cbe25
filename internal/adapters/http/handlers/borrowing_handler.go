package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/pagination"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// BorrowingHandler handles loan endpoints
type BorrowingHandler struct {
	borrowings *services.BorrowingService
}

// NewBorrowingHandler creates a new borrowing handler
func NewBorrowingHandler(borrowings *services.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{borrowings: borrowings}
}

// Create grants a loan
func (h *BorrowingHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBorrowingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.MemberID == 0 || input.BookID == 0 {
		return response.BadRequest(c, "member_id and book_id are required")
	}

	borrowing, err := h.borrowings.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Loan granted", borrowing)
}

// Renew extends a loan by one borrow period
func (h *BorrowingHandler) Renew(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	borrowing, err := h.borrowings.Renew(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Loan renewed", borrowing)
}

// Return closes a loan
func (h *BorrowingHandler) Return(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.ReturnInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	borrowing, err := h.borrowings.Return(c.Context(), id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Book returned", borrowing)
}

// MarkLost marks a loan's copy as lost
func (h *BorrowingHandler) MarkLost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	borrowing, err := h.borrowings.MarkLost(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Loan marked lost", borrowing)
}

// Get returns a loan
func (h *BorrowingHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	borrowing, err := h.borrowings.GetBorrowing(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", borrowing)
}

// List lists loans, optionally filtered by state
func (h *BorrowingHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	state := domain.BorrowingState(c.Query("state"))

	borrowings, total, err := h.borrowings.ListBorrowings(c.Context(), state, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(borrowings, params, total))
}

// OverdueSweep runs the overdue sweep on demand
func (h *BorrowingHandler) OverdueSweep(c *fiber.Ctx) error {
	swept, err := h.borrowings.OverdueSweep(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Overdue sweep completed", fiber.Map{"swept": swept})
}
