package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/pagination"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// ReservationHandler handles reservation queue endpoints
type ReservationHandler struct {
	reservations *services.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservations *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Create queues a reservation
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var input services.CreateReservationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.MemberID == 0 || input.BookID == 0 {
		return response.BadRequest(c, "member_id and book_id are required")
	}

	reservation, err := h.reservations.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Reservation queued", reservation)
}

// Get returns a reservation
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	reservation, err := h.reservations.GetReservation(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", reservation)
}

// List lists reservations, optionally filtered by state
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	state := domain.ReservationState(c.Query("state"))

	reservations, total, err := h.reservations.ListReservations(c.Context(), state, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(reservations, params, total))
}

// Position returns the reservation's 1-based queue position
func (h *ReservationHandler) Position(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	position, err := h.reservations.QueuePosition(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", fiber.Map{
		"reservation_id": id,
		"queue_position": position,
	})
}

// Fulfill turns an active reservation into a borrowing
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	reservation, err := h.reservations.Fulfill(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Reservation fulfilled", reservation)
}

// Cancel cancels an active reservation
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	reservation, err := h.reservations.Cancel(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Reservation cancelled", reservation)
}

// BookQueue lists a book's reservation queue
func (h *ReservationHandler) BookQueue(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	params := pagination.GetParams(c)
	reservations, total, err := h.reservations.ListBookQueue(c.Context(), id, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(reservations, params, total))
}

// ExpirySweep runs the expiry sweep on demand
func (h *ReservationHandler) ExpirySweep(c *fiber.Ctx) error {
	swept, err := h.reservations.ExpirySweep(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Expiry sweep completed", fiber.Map{"swept": swept})
}

// NotifySweep runs the notify sweep on demand
func (h *ReservationHandler) NotifySweep(c *fiber.Ctx) error {
	notified, err := h.reservations.NotifySweep(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Notify sweep completed", fiber.Map{"notified": notified})
}
