package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// ReservationRepository handles reservation queue data access
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ReservationRepository) WithTx(tx *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// GetByID gets a reservation by ID with relations
func (r *ReservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Book").
		First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &reservation, err
}

// GetActiveByMemberAndBook returns the member's active reservation for a
// book, or nil when there is none
func (r *ReservationRepository) GetActiveByMemberAndBook(ctx context.Context, memberID, bookID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND book_id = ? AND state = ?", memberID, bookID, domain.ReservationActive).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountActiveByBook counts active reservations queued on a book
func (r *ReservationRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("book_id = ? AND state = ?", bookID, domain.ReservationActive).
		Count(&count).Error
	return count, err
}

// CountAhead counts the active reservations served before the given one:
// higher priority, then earlier reservation date, then lower id so
// same-day arrivals still rank strictly. Queue position is this count
// plus one.
func (r *ReservationRepository) CountAhead(ctx context.Context, reservation *models.Reservation) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("book_id = ? AND state = ? AND id <> ?", reservation.BookID, domain.ReservationActive, reservation.ID).
		Where("priority > ? OR (priority = ? AND reservation_date < ?) OR (priority = ? AND reservation_date = ? AND id < ?)",
			reservation.Priority,
			reservation.Priority, reservation.ReservationDate,
			reservation.Priority, reservation.ReservationDate, reservation.ID).
		Count(&count).Error
	return count, err
}

// ListExpiredActive returns active reservations whose expiry date has
// passed. Input to the expiry sweep.
func (r *ReservationRepository) ListExpiredActive(ctx context.Context, today time.Time) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Where("state = ? AND expiry_date < ?", domain.ReservationActive, today).
		Find(&reservations).Error
	return reservations, err
}

// ListUnnotifiedActive returns active reservations that have not been
// notified yet. Input to the notify sweep.
func (r *ReservationRepository) ListUnnotifiedActive(ctx context.Context) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Where("state = ? AND notification_sent = ?", domain.ReservationActive, false).
		Order("book_id ASC, priority DESC, reservation_date ASC, id ASC").
		Find(&reservations).Error
	return reservations, err
}

// ListByBook returns a book's reservations with pagination
func (r *ReservationRepository) ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	r.db.WithContext(ctx).Model(&models.Reservation{}).Where("book_id = ?", bookID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("book_id = ?", bookID).
		Order("priority DESC, reservation_date ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error

	return reservations, total, err
}

// List lists all reservations with pagination, optionally filtered by state
func (r *ReservationRepository) List(ctx context.Context, state domain.ReservationState, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if state != "" {
		query = query.Where("state = ?", state)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Book").
		Order("reservation_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error

	return reservations, total, err
}

// Save persists all fields of a reservation
func (r *ReservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}
