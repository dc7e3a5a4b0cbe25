package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// PolicyHandler handles borrowing policy endpoints
type PolicyHandler struct {
	policy *services.PolicyService
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policy *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policy: policy}
}

// Get returns the policy, creating defaults on first access
func (h *PolicyHandler) Get(c *fiber.Ctx) error {
	policy, err := h.policy.Get(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", policy)
}

// Update applies a partial policy update
func (h *PolicyHandler) Update(c *fiber.Ctx) error {
	var input services.UpdatePolicyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	policy, err := h.policy.Update(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Policy updated", policy)
}
