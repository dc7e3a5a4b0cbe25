package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// BorrowingService is the loan state machine: create, renew, return and
// mark-lost transitions plus the periodic overdue sweep. Every mutation
// runs as one transaction; the grant path locks the book row so the
// eligibility/availability/duplicate checks and the insert are atomic.
type BorrowingService struct {
	db              *gorm.DB
	borrowingRepo   *repositories.BorrowingRepository
	bookRepo        *repositories.BookRepository
	fineRepo        *repositories.FineRepository
	reservationRepo *repositories.ReservationRepository
	members         *MemberService
	policy          *PolicyService
	notifier        Notifier
}

// NewBorrowingService creates a new borrowing service
func NewBorrowingService(
	db *gorm.DB,
	borrowingRepo *repositories.BorrowingRepository,
	bookRepo *repositories.BookRepository,
	fineRepo *repositories.FineRepository,
	reservationRepo *repositories.ReservationRepository,
	members *MemberService,
	policy *PolicyService,
	notifier Notifier,
) *BorrowingService {
	return &BorrowingService{
		db:              db,
		borrowingRepo:   borrowingRepo,
		bookRepo:        bookRepo,
		fineRepo:        fineRepo,
		reservationRepo: reservationRepo,
		members:         members,
		policy:          policy,
		notifier:        notifier,
	}
}

// CreateBorrowingInput represents a loan grant request
type CreateBorrowingInput struct {
	MemberID          uint                 `json:"member_id"`
	BookID            uint                 `json:"book_id"`
	ConditionAtBorrow domain.BookCondition `json:"condition_at_borrow,omitempty"`
}

// Create grants a loan. Preconditions, checked in order inside the
// transaction: member eligible, book available, no existing
// borrowed-state loan for the (member, book) pair.
func (s *BorrowingService) Create(ctx context.Context, input *CreateBorrowingInput) (*models.Borrowing, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	condition := input.ConditionAtBorrow
	if condition == "" {
		condition = domain.ConditionGood
	}

	var borrowing *models.Borrowing
	err = s.db.Transaction(func(tx *gorm.DB) error {
		books := s.bookRepo.WithTx(tx)
		borrowings := s.borrowingRepo.WithTx(tx)

		// Lock the book row: availability stays true until commit
		book, err := books.GetByIDForUpdate(ctx, input.BookID)
		if err != nil {
			return err
		}

		eligibility, err := s.members.withTx(tx).CanBorrow(ctx, input.MemberID)
		if err != nil {
			return err
		}
		if !eligibility.Allowed {
			return fmt.Errorf("%w: %s", domain.ErrIneligibleMember, eligibility.Reason)
		}

		borrowed, err := borrowings.CountBorrowedByBook(ctx, input.BookID)
		if err != nil {
			return err
		}
		if book.State != domain.BookAvailable || book.TotalCopies-int(borrowed) <= 0 {
			return fmt.Errorf("%w: %q has no free copies", domain.ErrBookUnavailable, book.Title)
		}

		existing, err := borrowings.GetActiveByMemberAndBook(ctx, input.MemberID, input.BookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: loan %d is still active", domain.ErrDuplicateLoan, existing.ID)
		}

		borrowDate := today()
		borrowing = &models.Borrowing{
			MemberID:          input.MemberID,
			BookID:            input.BookID,
			BorrowDate:        borrowDate,
			DueDate:           borrowDate.AddDate(0, 0, policy.MaxBorrowDays),
			State:             domain.BorrowingBorrowed,
			ConditionAtBorrow: condition,
		}
		return borrowings.Create(ctx, borrowing)
	})
	if err != nil {
		return nil, err
	}

	return s.borrowingRepo.GetByID(ctx, borrowing.ID)
}

// Renew extends a loan by one borrow period. Only borrowed-state loans
// with renewals left and no active reservation on the book qualify; an
// overdue loan is not renewable.
func (s *BorrowingService) Renew(ctx context.Context, borrowingID uint) (*models.Borrowing, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		borrowings := s.borrowingRepo.WithTx(tx)

		borrowing, err := borrowings.GetByID(ctx, borrowingID)
		if err != nil {
			return err
		}

		if borrowing.State != domain.BorrowingBorrowed {
			return fmt.Errorf("%w: loan is %s", domain.ErrRenewalNotAllowed, borrowing.State)
		}
		if borrowing.RenewalCount >= policy.MaxRenewals {
			return fmt.Errorf("%w: maximum renewals reached (%d)", domain.ErrRenewalNotAllowed, policy.MaxRenewals)
		}

		reserved, err := s.reservationRepo.WithTx(tx).CountActiveByBook(ctx, borrowing.BookID)
		if err != nil {
			return err
		}
		if reserved > 0 {
			return fmt.Errorf("%w: book has active reservations", domain.ErrRenewalNotAllowed)
		}

		borrowing.RenewalCount++
		borrowing.DueDate = borrowing.DueDate.AddDate(0, 0, policy.MaxBorrowDays)
		return borrowings.Save(ctx, borrowing)
	})
	if err != nil {
		return nil, err
	}

	return s.borrowingRepo.GetByID(ctx, borrowingID)
}

// ReturnInput carries the copy condition observed at return
type ReturnInput struct {
	ConditionAtReturn domain.BookCondition `json:"condition_at_return,omitempty"`
}

// Return closes a borrowed or overdue loan. Whole days past the due
// date become a late-return fine at the policy rate.
func (s *BorrowingService) Return(ctx context.Context, borrowingID uint, input *ReturnInput) (*models.Borrowing, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		borrowings := s.borrowingRepo.WithTx(tx)

		borrowing, err := borrowings.GetByID(ctx, borrowingID)
		if err != nil {
			return err
		}
		if !borrowing.State.IsActive() {
			return fmt.Errorf("%w: only borrowed or overdue loans can be returned, got %s",
				domain.ErrInvalidStateTransition, borrowing.State)
		}

		returnDate := today()
		borrowing.ReturnDate = &returnDate
		borrowing.State = domain.BorrowingReturned
		if input != nil && input.ConditionAtReturn != "" {
			borrowing.ConditionAtReturn = input.ConditionAtReturn
		}
		if err := borrowings.Save(ctx, borrowing); err != nil {
			return err
		}

		fineAmount := float64(borrowing.DaysOverdue(returnDate)) * policy.FinePerDay
		if fineAmount > 0 {
			fine := &models.Fine{
				MemberID:    borrowing.MemberID,
				BorrowingID: &borrowing.ID,
				Amount:      fineAmount,
				Reason:      domain.FineLateReturn,
				State:       domain.FinePending,
				DateCreated: returnDate,
				DueDate:     returnDate.AddDate(0, 0, policy.FineDueDays),
			}
			return s.fineRepo.WithTx(tx).Create(ctx, fine)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.borrowingRepo.GetByID(ctx, borrowingID)
}

// MarkLost moves an active loan to lost and issues a fine for the book
// price, falling back to the policy default when no price is set.
func (s *BorrowingService) MarkLost(ctx context.Context, borrowingID uint) (*models.Borrowing, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		borrowings := s.borrowingRepo.WithTx(tx)

		borrowing, err := borrowings.GetByID(ctx, borrowingID)
		if err != nil {
			return err
		}
		if !borrowing.State.IsActive() {
			return fmt.Errorf("%w: only borrowed or overdue loans can be marked lost, got %s",
				domain.ErrInvalidStateTransition, borrowing.State)
		}

		borrowing.State = domain.BorrowingLost
		if err := borrowings.Save(ctx, borrowing); err != nil {
			return err
		}

		book, err := s.bookRepo.WithTx(tx).GetByID(ctx, borrowing.BookID)
		if err != nil {
			return err
		}
		amount := book.Price
		if amount <= 0 {
			amount = policy.LostBookDefaultFine
		}

		issued := today()
		fine := &models.Fine{
			MemberID:    borrowing.MemberID,
			BorrowingID: &borrowing.ID,
			Amount:      amount,
			Reason:      domain.FineLost,
			State:       domain.FinePending,
			DateCreated: issued,
			DueDate:     issued.AddDate(0, 0, policy.FineDueDays),
		}
		return s.fineRepo.WithTx(tx).Create(ctx, fine)
	})
	if err != nil {
		return nil, err
	}

	return s.borrowingRepo.GetByID(ctx, borrowingID)
}

// OverdueSweep moves borrowed-state loans past their due date to
// overdue. It is the only writer of the overdue state, idempotent, and
// tolerant of per-record failure: a failing loan is logged and retried
// on the next interval. Returns the number of loans transitioned.
func (s *BorrowingService) OverdueSweep(ctx context.Context) (int, error) {
	now := today()
	candidates, err := s.borrowingRepo.ListOverdueCandidates(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, borrowing := range candidates {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.WithContext(ctx).Model(&models.Borrowing{}).
				Where("id = ? AND state = ?", borrowing.ID, domain.BorrowingBorrowed).
				Update("state", domain.BorrowingOverdue).Error
		})
		if err != nil {
			log.Printf("❌ Overdue sweep: loan %d skipped: %v", borrowing.ID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("⏰ Overdue sweep: %d loans moved to overdue", swept)
	}

	s.sendDueDateReminders(ctx, now)
	return swept, nil
}

// sendDueDateReminders emits due-soon events for loans approaching
// their due date. At-least-once: the sweep runs daily and the external
// notifier tolerates repeats.
func (s *BorrowingService) sendDueDateReminders(ctx context.Context, now time.Time) {
	policy, err := s.policy.Get(ctx)
	if err != nil || policy.OverdueNotificationDays <= 0 {
		return
	}

	dueSoon, err := s.borrowingRepo.ListDueSoon(ctx, now, now.AddDate(0, 0, policy.OverdueNotificationDays))
	if err != nil {
		log.Printf("❌ Due-date reminder query error: %v", err)
		return
	}

	for _, borrowing := range dueSoon {
		s.notifier.Notify(ctx, domain.NotificationEvent{
			Type:     domain.EventDueDateReminder,
			MemberID: borrowing.MemberID,
			BookID:   borrowing.BookID,
			Message:  fmt.Sprintf("Loan %d is due on %s", borrowing.ID, borrowing.DueDate.Format("2006-01-02")),
		})
	}
}

// GetBorrowing returns a borrowing by ID
func (s *BorrowingService) GetBorrowing(ctx context.Context, borrowingID uint) (*models.Borrowing, error) {
	return s.borrowingRepo.GetByID(ctx, borrowingID)
}

// ListBorrowings lists borrowings with pagination, optionally by state
func (s *BorrowingService) ListBorrowings(ctx context.Context, state domain.BorrowingState, offset, limit int) ([]*models.Borrowing, int64, error) {
	return s.borrowingRepo.List(ctx, state, offset, limit)
}

// ListMemberBorrowings lists a member's loan history
func (s *BorrowingService) ListMemberBorrowings(ctx context.Context, memberID uint, offset, limit int) ([]*models.Borrowing, int64, error) {
	return s.borrowingRepo.ListByMember(ctx, memberID, offset, limit)
}
