package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
	"github.com/ibrahim99035/library-backend/internal/pkg/isbn"
)

// CatalogService tracks copy availability and book state. Availability
// is a pure derivation: total copies minus borrowed-state loans, never
// an independently stored counter.
type CatalogService struct {
	db            *gorm.DB
	bookRepo      *repositories.BookRepository
	borrowingRepo *repositories.BorrowingRepository
	reviewRepo    *repositories.ReviewRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	db *gorm.DB,
	bookRepo *repositories.BookRepository,
	borrowingRepo *repositories.BorrowingRepository,
	reviewRepo *repositories.ReviewRepository,
) *CatalogService {
	return &CatalogService{
		db:            db,
		bookRepo:      bookRepo,
		borrowingRepo: borrowingRepo,
		reviewRepo:    reviewRepo,
	}
}

// withTx returns a catalog service bound to the given transaction
func (s *CatalogService) withTx(tx *gorm.DB) *CatalogService {
	return &CatalogService{
		db:            tx,
		bookRepo:      s.bookRepo.WithTx(tx),
		borrowingRepo: s.borrowingRepo.WithTx(tx),
		reviewRepo:    s.reviewRepo,
	}
}

// lockBook locks the book row within the given transaction so loan
// inserts against the same title serialize
func (s *CatalogService) lockBook(ctx context.Context, tx *gorm.DB, bookID uint) (*models.Book, error) {
	return s.bookRepo.WithTx(tx).GetByIDForUpdate(ctx, bookID)
}

// Availability derives the copy availability of a book
func (s *CatalogService) Availability(ctx context.Context, bookID uint) (*domain.Availability, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.availabilityOf(ctx, book)
}

func (s *CatalogService) availabilityOf(ctx context.Context, book *models.Book) (*domain.Availability, error) {
	borrowed, err := s.borrowingRepo.CountBorrowedByBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	available := book.TotalCopies - int(borrowed)
	return &domain.Availability{
		BookID:          book.ID,
		State:           book.State,
		TotalCopies:     book.TotalCopies,
		BorrowedCopies:  int(borrowed),
		AvailableCopies: available,
		Available:       available > 0 && book.State == domain.BookAvailable,
	}, nil
}

// CreateBookInput represents a new catalog entry
type CreateBookInput struct {
	Title       string  `json:"title"`
	ISBN        string  `json:"isbn"`
	ISBN13      string  `json:"isbn13,omitempty"`
	Author      string  `json:"author"`
	Publisher   string  `json:"publisher,omitempty"`
	Category    string  `json:"category,omitempty"`
	Language    string  `json:"language,omitempty"`
	Edition     string  `json:"edition,omitempty"`
	Pages       int     `json:"pages,omitempty"`
	Location    string  `json:"location,omitempty"`
	Price       float64 `json:"price,omitempty"`
	TotalCopies int     `json:"total_copies"`
}

// CreateBook adds a title to the catalog
func (s *CatalogService) CreateBook(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !isbn.Valid(input.ISBN) {
		return nil, fmt.Errorf("%w: invalid ISBN format", domain.ErrInvalidInput)
	}
	if input.TotalCopies <= 0 {
		return nil, fmt.Errorf("%w: total copies must be positive", domain.ErrConstraintViolation)
	}

	language := input.Language
	if language == "" {
		language = "en"
	}

	book := &models.Book{
		Title:       input.Title,
		ISBN:        input.ISBN,
		ISBN13:      input.ISBN13,
		Author:      input.Author,
		Publisher:   input.Publisher,
		Category:    input.Category,
		Language:    language,
		Edition:     input.Edition,
		Pages:       input.Pages,
		Location:    input.Location,
		Price:       input.Price,
		TotalCopies: input.TotalCopies,
		State:       domain.BookAvailable,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return book, nil
}

// SetTotalCopies changes the copy count of a title. Reductions below the
// live borrowed count are rejected so available copies never go negative.
func (s *CatalogService) SetTotalCopies(ctx context.Context, bookID uint, totalCopies int) (*models.Book, error) {
	if totalCopies <= 0 {
		return nil, fmt.Errorf("%w: total copies must be positive", domain.ErrConstraintViolation)
	}

	var book *models.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		catalog := s.withTx(tx)

		var err error
		book, err = catalog.bookRepo.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		borrowed, err := catalog.borrowingRepo.CountBorrowedByBook(ctx, bookID)
		if err != nil {
			return err
		}
		if int64(totalCopies) < borrowed {
			return fmt.Errorf("%w: total copies (%d) cannot be less than borrowed copies (%d)",
				domain.ErrConstraintViolation, totalCopies, borrowed)
		}

		book.TotalCopies = totalCopies
		return catalog.bookRepo.Save(ctx, book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// SetState moves a book between available/maintenance/lost/damaged
func (s *CatalogService) SetState(ctx context.Context, bookID uint, state domain.BookState) (*models.Book, error) {
	switch state {
	case domain.BookAvailable, domain.BookMaintenance, domain.BookLost, domain.BookDamaged:
	default:
		return nil, fmt.Errorf("%w: unknown book state %q", domain.ErrInvalidInput, state)
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book.State = state
	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns a book by ID
func (s *CatalogService) GetBook(ctx context.Context, bookID uint) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, bookID)
}

// ListBooks lists the catalog with pagination
func (s *CatalogService) ListBooks(ctx context.Context, search string, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, search, offset, limit)
}

// AddReview records a member's rating of a book. Ratings are bounded 1..5.
func (s *CatalogService) AddReview(ctx context.Context, memberID, bookID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrConstraintViolation)
	}
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	review := &models.Review{
		MemberID: memberID,
		BookID:   bookID,
		Rating:   rating,
		Comment:  comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// BookRating returns the derived average rating and review count
func (s *CatalogService) BookRating(ctx context.Context, bookID uint) (float64, int64, error) {
	return s.reviewRepo.AverageRating(ctx, bookID)
}
