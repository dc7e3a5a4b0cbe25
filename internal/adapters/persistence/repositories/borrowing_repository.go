package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// BorrowingRepository handles loan data access
type BorrowingRepository struct {
	db *gorm.DB
}

// NewBorrowingRepository creates a new borrowing repository
func NewBorrowingRepository(db *gorm.DB) *BorrowingRepository {
	return &BorrowingRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *BorrowingRepository) WithTx(tx *gorm.DB) *BorrowingRepository {
	return &BorrowingRepository{db: tx}
}

// Create creates a new borrowing
func (r *BorrowingRepository) Create(ctx context.Context, borrowing *models.Borrowing) error {
	return r.db.WithContext(ctx).Create(borrowing).Error
}

// GetByID gets a borrowing by ID with relations
func (r *BorrowingRepository) GetByID(ctx context.Context, id uint) (*models.Borrowing, error) {
	var borrowing models.Borrowing
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		First(&borrowing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &borrowing, err
}

// GetActiveByMemberAndBook returns the member's borrowed-state loan for
// a book, or nil when there is none. At most one can exist by invariant.
func (r *BorrowingRepository) GetActiveByMemberAndBook(ctx context.Context, memberID, bookID uint) (*models.Borrowing, error) {
	var borrowing models.Borrowing
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND book_id = ? AND state = ?", memberID, bookID, domain.BorrowingBorrowed).
		First(&borrowing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// CountBorrowedByMember counts a member's borrowed-state loans
func (r *BorrowingRepository) CountBorrowedByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Borrowing{}).
		Where("member_id = ? AND state = ?", memberID, domain.BorrowingBorrowed).
		Count(&count).Error
	return count, err
}

// CountBorrowedByBook counts borrowed-state loans holding copies of a book
func (r *BorrowingRepository) CountBorrowedByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Borrowing{}).
		Where("book_id = ? AND state = ?", bookID, domain.BorrowingBorrowed).
		Count(&count).Error
	return count, err
}

// ListOverdueCandidates returns borrowed-state loans whose due date has
// passed. Input to the overdue sweep.
func (r *BorrowingRepository) ListOverdueCandidates(ctx context.Context, today time.Time) ([]*models.Borrowing, error) {
	var borrowings []*models.Borrowing
	err := r.db.WithContext(ctx).
		Where("state = ? AND due_date < ?", domain.BorrowingBorrowed, today).
		Find(&borrowings).Error
	return borrowings, err
}

// ListDueSoon returns borrowed-state loans due within the given window,
// inclusive on both ends. Input to due-date reminders.
func (r *BorrowingRepository) ListDueSoon(ctx context.Context, from, to time.Time) ([]*models.Borrowing, error) {
	var borrowings []*models.Borrowing
	err := r.db.WithContext(ctx).
		Where("state = ? AND due_date >= ? AND due_date <= ?", domain.BorrowingBorrowed, from, to).
		Find(&borrowings).Error
	return borrowings, err
}

// ListByMember returns a member's loan history with pagination
func (r *BorrowingRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Borrowing, int64, error) {
	var borrowings []*models.Borrowing
	var total int64

	r.db.WithContext(ctx).Model(&models.Borrowing{}).Where("member_id = ?", memberID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("member_id = ?", memberID).
		Order("borrow_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&borrowings).Error

	return borrowings, total, err
}

// List lists all borrowings with pagination, optionally filtered by state
func (r *BorrowingRepository) List(ctx context.Context, state domain.BorrowingState, offset, limit int) ([]*models.Borrowing, int64, error) {
	var borrowings []*models.Borrowing
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Borrowing{})
	if state != "" {
		query = query.Where("state = ?", state)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Book").
		Order("borrow_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&borrowings).Error

	return borrowings, total, err
}

// Save persists all fields of a borrowing
func (r *BorrowingRepository) Save(ctx context.Context, borrowing *models.Borrowing) error {
	return r.db.WithContext(ctx).Save(borrowing).Error
}
