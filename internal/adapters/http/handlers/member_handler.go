package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/pagination"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// MemberHandler handles membership endpoints
type MemberHandler struct {
	members    *services.MemberService
	borrowings *services.BorrowingService
	fines      *services.FineService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	members *services.MemberService,
	borrowings *services.BorrowingService,
	fines *services.FineService,
) *MemberHandler {
	return &MemberHandler{
		members:    members,
		borrowings: borrowings,
		fines:      fines,
	}
}

// Register creates a new member
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.members.Register(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Member registered", member)
}

// Get returns a member
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	member, err := h.members.GetMember(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", member)
}

// List lists members
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	members, total, err := h.members.ListMembers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(members, params, total))
}

// Eligibility evaluates whether a member may borrow right now
func (h *MemberHandler) Eligibility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	eligibility, err := h.members.CanBorrow(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", eligibility)
}

// Suspend suspends a member
func (h *MemberHandler) Suspend(c *fiber.Ctx) error {
	return h.statusAction(c, h.members.Suspend, "Member suspended")
}

// Activate activates a member
func (h *MemberHandler) Activate(c *fiber.Ctx) error {
	return h.statusAction(c, h.members.Activate, "Member activated")
}

// Block blocks a member
func (h *MemberHandler) Block(c *fiber.Ctx) error {
	return h.statusAction(c, h.members.Block, "Member blocked")
}

func (h *MemberHandler) statusAction(
	c *fiber.Ctx,
	action func(ctx context.Context, memberID uint) (*models.Member, error),
	message string,
) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	member, err := action(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, message, member)
}

// RenewMembershipRequest extends a membership
type RenewMembershipRequest struct {
	Months int `json:"months"`
}

// RenewMembership extends a member's expiry date
func (h *MemberHandler) RenewMembership(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req RenewMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Months == 0 {
		req.Months = 12
	}

	member, err := h.members.RenewMembership(c.Context(), id, req.Months)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Membership renewed", member)
}

// Borrowings lists a member's loan history
func (h *MemberHandler) Borrowings(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	params := pagination.GetParams(c)
	borrowings, total, err := h.borrowings.ListMemberBorrowings(c.Context(), id, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(borrowings, params, total))
}

// Fines lists a member's fines
func (h *MemberHandler) Fines(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	params := pagination.GetParams(c)
	fines, total, err := h.fines.ListMemberFines(c.Context(), id, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(fines, params, total))
}
