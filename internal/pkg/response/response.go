package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// DomainError maps a core error to its HTTP status. The wrapped reason
// string travels to the caller untouched.
func DomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateLoan),
		errors.Is(err, domain.ErrDuplicateReservation):
		return Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrIneligibleMember),
		errors.Is(err, domain.ErrBookUnavailable),
		errors.Is(err, domain.ErrRenewalNotAllowed),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrReservationNotActive),
		errors.Is(err, domain.ErrReservationNotAllowed),
		errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrConstraintViolation):
		return UnprocessableEntity(c, err.Error())
	default:
		return InternalServerError(c, err.Error())
	}
}
