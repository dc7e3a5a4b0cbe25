package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
)

// PolicyService supplies the borrowing policy constants. The policy
// lives in a single database row created lazily with its defaults, so
// every operation reads the same record instead of ambient globals.
type PolicyService struct {
	db *gorm.DB
}

// NewPolicyService creates a new policy service
func NewPolicyService(db *gorm.DB) *PolicyService {
	return &PolicyService{db: db}
}

// Get returns the policy row, creating it with defaults if absent
func (s *PolicyService) Get(ctx context.Context) (*models.LibraryPolicy, error) {
	var policy models.LibraryPolicy
	err := s.db.WithContext(ctx).First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		policy = models.LibraryPolicy{LibraryName: "Default Library"}
		if err := s.db.WithContext(ctx).Create(&policy).Error; err != nil {
			return nil, err
		}
		// Re-read so the column defaults land in the struct
		if err := s.db.WithContext(ctx).First(&policy, policy.ID).Error; err != nil {
			return nil, err
		}
		return &policy, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// UpdatePolicyInput represents a policy update. Nil fields are left as is.
type UpdatePolicyInput struct {
	LibraryName             *string  `json:"library_name,omitempty"`
	MaxBorrowDays           *int     `json:"max_borrow_days,omitempty"`
	MaxRenewals             *int     `json:"max_renewals,omitempty"`
	FinePerDay              *float64 `json:"fine_per_day,omitempty"`
	MaxBooksStudent         *int     `json:"max_books_student,omitempty"`
	MaxBooksFaculty         *int     `json:"max_books_faculty,omitempty"`
	MaxBooksPublic          *int     `json:"max_books_public,omitempty"`
	ReservationExpiryDays   *int     `json:"reservation_expiry_days,omitempty"`
	OverdueNotificationDays *int     `json:"overdue_notification_days,omitempty"`
	FineDueDays             *int     `json:"fine_due_days,omitempty"`
	LostBookDefaultFine     *float64 `json:"lost_book_default_fine,omitempty"`
}

// Update applies a partial policy update
func (s *PolicyService) Update(ctx context.Context, input *UpdatePolicyInput) (*models.LibraryPolicy, error) {
	policy, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.LibraryName != nil {
		policy.LibraryName = *input.LibraryName
	}
	if input.MaxBorrowDays != nil {
		policy.MaxBorrowDays = *input.MaxBorrowDays
	}
	if input.MaxRenewals != nil {
		policy.MaxRenewals = *input.MaxRenewals
	}
	if input.FinePerDay != nil {
		policy.FinePerDay = *input.FinePerDay
	}
	if input.MaxBooksStudent != nil {
		policy.MaxBooksStudent = *input.MaxBooksStudent
	}
	if input.MaxBooksFaculty != nil {
		policy.MaxBooksFaculty = *input.MaxBooksFaculty
	}
	if input.MaxBooksPublic != nil {
		policy.MaxBooksPublic = *input.MaxBooksPublic
	}
	if input.ReservationExpiryDays != nil {
		policy.ReservationExpiryDays = *input.ReservationExpiryDays
	}
	if input.OverdueNotificationDays != nil {
		policy.OverdueNotificationDays = *input.OverdueNotificationDays
	}
	if input.FineDueDays != nil {
		policy.FineDueDays = *input.FineDueDays
	}
	if input.LostBookDefaultFine != nil {
		policy.LostBookDefaultFine = *input.LostBookDefaultFine
	}

	if err := s.db.WithContext(ctx).Save(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}
