package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
	"github.com/ibrahim99035/library-backend/internal/core/services"
	"github.com/ibrahim99035/library-backend/internal/pkg/pagination"
	"github.com/ibrahim99035/library-backend/internal/pkg/response"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	catalog *services.CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalog *services.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// Create adds a book to the catalog
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalog.CreateBook(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Book created", book)
}

// Get returns a book
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	book, err := h.catalog.GetBook(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", book)
}

// List lists the catalog
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	books, total, err := h.catalog.ListBooks(c.Context(), c.Query("q"), params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(pagination.NewResponse(books, params, total))
}

// Availability returns the derived copy availability
func (h *BookHandler) Availability(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	availability, err := h.catalog.Availability(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", availability)
}

// SetCopiesRequest changes the total copy count
type SetCopiesRequest struct {
	TotalCopies int `json:"total_copies"`
}

// SetCopies changes the total copy count
func (h *BookHandler) SetCopies(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req SetCopiesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalog.SetTotalCopies(c.Context(), id, req.TotalCopies)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Total copies updated", book)
}

// SetStateRequest changes a book's state
type SetStateRequest struct {
	State domain.BookState `json:"state"`
}

// SetState moves a book between available/maintenance/lost/damaged
func (h *BookHandler) SetState(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req SetStateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalog.SetState(c.Context(), id, req.State)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Book state updated", book)
}

// AddReviewRequest records a rating
type AddReviewRequest struct {
	MemberID uint   `json:"member_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// AddReview records a member's rating of a book
func (h *BookHandler) AddReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	review, err := h.catalog.AddReview(c.Context(), req.MemberID, id, req.Rating, req.Comment)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Review recorded", review)
}

// Rating returns the derived average rating
func (h *BookHandler) Rating(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	average, count, err := h.catalog.BookRating(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "", fiber.Map{
		"book_id":        id,
		"average_rating": average,
		"review_count":   count,
	})
}
