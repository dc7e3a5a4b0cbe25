package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// FineRepository handles fine ledger data access
type FineRepository struct {
	db *gorm.DB
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB) *FineRepository {
	return &FineRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *FineRepository) WithTx(tx *gorm.DB) *FineRepository {
	return &FineRepository{db: tx}
}

// Create creates a new fine
func (r *FineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

// GetByID gets a fine by ID with relations
func (r *FineRepository) GetByID(ctx context.Context, id uint) (*models.Fine, error) {
	var fine models.Fine
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Borrowing").
		First(&fine, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &fine, err
}

// SumPendingByMember sums the amounts of a member's pending fines.
// Partially paid fines are no longer "pending", matching the ledger's
// outstanding-fines derivation.
func (r *FineRepository) SumPendingByMember(ctx context.Context, memberID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Fine{}).
		Where("member_id = ? AND state = ?", memberID, domain.FinePending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ListByMember returns a member's fines with pagination
func (r *FineRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Fine, int64, error) {
	var fines []*models.Fine
	var total int64

	r.db.WithContext(ctx).Model(&models.Fine{}).Where("member_id = ?", memberID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("date_created DESC").
		Offset(offset).
		Limit(limit).
		Find(&fines).Error

	return fines, total, err
}

// List lists all fines with pagination, optionally filtered by state
func (r *FineRepository) List(ctx context.Context, state domain.FineState, offset, limit int) ([]*models.Fine, int64, error) {
	var fines []*models.Fine
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Fine{})
	if state != "" {
		query = query.Where("state = ?", state)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Order("date_created DESC").
		Offset(offset).
		Limit(limit).
		Find(&fines).Error

	return fines, total, err
}

// Save persists all fields of a fine
func (r *FineRepository) Save(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Save(fine).Error
}
