package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/config"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// parseID extracts a positive numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// HealthHandler handles health and info endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Root returns a service banner
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "library-backend", fiber.Map{
		"service": "library-backend",
		"docs":    "/api/v1",
	})
}

// HealthCheck reports service and database health
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	if err := config.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unreachable")
	}
	return response.Success(c, "healthy", nil)
}

// APIInfo lists the command surface
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return response.Success(c, "library-backend API v1", fiber.Map{
		"commands": []string{
			"POST /borrowings", "POST /borrowings/:id/renew", "POST /borrowings/:id/return",
			"POST /borrowings/:id/lost", "POST /reservations", "POST /reservations/:id/fulfill",
			"POST /reservations/:id/cancel", "POST /fines/:id/pay", "POST /fines/:id/waive",
		},
		"queries": []string{
			"GET /books/:id/availability", "GET /members/:id/eligibility", "GET /reservations/:id/position",
		},
	})
}
