package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// FineService is the fine ledger. State derives from (paid_amount,
// amount) except when explicitly waived; remaining = amount -
// paid_amount stays >= 0 because payments above the balance are
// rejected.
type FineService struct {
	db         *gorm.DB
	fineRepo   *repositories.FineRepository
	memberRepo *repositories.MemberRepository
	policy     *PolicyService
}

// NewFineService creates a new fine service
func NewFineService(
	db *gorm.DB,
	fineRepo *repositories.FineRepository,
	memberRepo *repositories.MemberRepository,
	policy *PolicyService,
) *FineService {
	return &FineService{
		db:         db,
		fineRepo:   fineRepo,
		memberRepo: memberRepo,
		policy:     policy,
	}
}

// CreateFineInput represents a standalone fine (damage, lost, other).
// Late-return fines are emitted by the borrowing state machine instead.
type CreateFineInput struct {
	MemberID    uint              `json:"member_id"`
	BorrowingID *uint             `json:"borrowing_id,omitempty"`
	Amount      float64           `json:"amount"`
	Reason      domain.FineReason `json:"reason"`
	Notes       string            `json:"notes,omitempty"`
}

// Create records a new pending fine against a member
func (s *FineService) Create(ctx context.Context, input *CreateFineInput) (*models.Fine, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: fine amount must be positive", domain.ErrInvalidInput)
	}
	switch input.Reason {
	case domain.FineLateReturn, domain.FineDamage, domain.FineLost, domain.FineOther:
	default:
		return nil, fmt.Errorf("%w: unknown fine reason %q", domain.ErrInvalidInput, input.Reason)
	}
	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		return nil, err
	}

	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	created := today()
	fine := &models.Fine{
		MemberID:    input.MemberID,
		BorrowingID: input.BorrowingID,
		Amount:      input.Amount,
		Reason:      input.Reason,
		State:       domain.FinePending,
		DateCreated: created,
		DueDate:     created.AddDate(0, 0, policy.FineDueDays),
	}
	if err := s.fineRepo.Create(ctx, fine); err != nil {
		return nil, err
	}
	return fine, nil
}

// MarkPaid settles a fine in full
func (s *FineService) MarkPaid(ctx context.Context, fineID uint) (*models.Fine, error) {
	var fine *models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fines := s.fineRepo.WithTx(tx)

		var err error
		fine, err = fines.GetByID(ctx, fineID)
		if err != nil {
			return err
		}

		paid := today()
		fine.PaidAmount = fine.Amount
		fine.State = domain.FinePaid
		fine.DatePaid = &paid
		return fines.Save(ctx, fine)
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}

// Waive forgives a fine. The paid amount is left untouched so partial
// payments taken before the waiver stay on record.
func (s *FineService) Waive(ctx context.Context, fineID uint, reason string) (*models.Fine, error) {
	var fine *models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fines := s.fineRepo.WithTx(tx)

		var err error
		fine, err = fines.GetByID(ctx, fineID)
		if err != nil {
			return err
		}

		fine.State = domain.FineWaived
		fine.WaivedReason = reason
		return fines.Save(ctx, fine)
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}

// PartialPayInput represents a payment against a fine
type PartialPayInput struct {
	Amount    float64              `json:"amount"`
	Method    domain.PaymentMethod `json:"method"`
	Reference string               `json:"reference,omitempty"`
}

// PartialPay applies a payment to a fine. Rejects non-positive amounts
// and amounts above the remaining balance. The fine flips to paid once
// the balance hits zero; date_paid is only set then.
func (s *FineService) PartialPay(ctx context.Context, fineID uint, input *PartialPayInput) (*models.Fine, error) {
	var fine *models.Fine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fines := s.fineRepo.WithTx(tx)

		var err error
		fine, err = fines.GetByID(ctx, fineID)
		if err != nil {
			return err
		}

		if input.Amount <= 0 {
			return fmt.Errorf("%w: payment must be positive", domain.ErrInvalidPayment)
		}
		if input.Amount > fine.Remaining() {
			return fmt.Errorf("%w: payment %.2f exceeds remaining %.2f",
				domain.ErrInvalidPayment, input.Amount, fine.Remaining())
		}

		reference := input.Reference
		if reference == "" {
			reference = uuid.NewString()
		}

		fine.PaidAmount += input.Amount
		fine.PaymentMethod = input.Method
		fine.PaymentReference = reference

		if fine.PaidAmount >= fine.Amount {
			paid := today()
			fine.State = domain.FinePaid
			fine.DatePaid = &paid
		} else {
			fine.State = domain.FinePartial
		}
		return fines.Save(ctx, fine)
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}

// GetFine returns a fine by ID
func (s *FineService) GetFine(ctx context.Context, fineID uint) (*models.Fine, error) {
	return s.fineRepo.GetByID(ctx, fineID)
}

// ListFines lists fines with pagination, optionally filtered by state
func (s *FineService) ListFines(ctx context.Context, state domain.FineState, offset, limit int) ([]*models.Fine, int64, error) {
	return s.fineRepo.List(ctx, state, offset, limit)
}

// ListMemberFines lists a member's fines
func (s *FineService) ListMemberFines(ctx context.Context, memberID uint, offset, limit int) ([]*models.Fine, int64, error) {
	return s.fineRepo.ListByMember(ctx, memberID, offset, limit)
}
