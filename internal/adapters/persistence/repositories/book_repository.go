package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// BookRepository handles catalog data access
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *BookRepository) WithTx(tx *gorm.DB) *BookRepository {
	return &BookRepository{db: tx}
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &book, err
}

// GetByIDForUpdate locks the book row for the duration of the enclosing
// transaction. Grant and copy-count mutations go through this so the
// availability check and the write are one atomic unit. SQLite has no
// row locks (its transactions serialize writers anyway), so the clause
// is only applied on MySQL.
func (r *BookRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Book, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var book models.Book
	err := query.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &book, err
}

// GetByISBN gets a book by ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &book, err
}

// List lists books with pagination, optionally filtered by title/category
func (r *BookRepository) List(ctx context.Context, search string, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR category LIKE ?", like, like, like)
	}

	query.Count(&total)

	err := query.
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Save persists all fields of a book
func (r *BookRepository) Save(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete soft deletes a book
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// ReviewRepository handles review data access
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListByBook returns all reviews for a book
func (r *ReviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// AverageRating returns the average rating and review count for a book
func (r *ReviewRepository) AverageRating(ctx context.Context, bookID uint) (float64, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var avg float64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("book_id = ?", bookID).
		Select("AVG(rating)").
		Scan(&avg).Error
	return avg, count, err
}
