package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// ReservationService manages the per-book reservation queue: FIFO
// within a priority level, higher priority served first. Positions are
// computed, fulfillment creates the linked borrowing, and two sweeps
// expire stale reservations and notify the head of queue when copies
// free up.
type ReservationService struct {
	db              *gorm.DB
	reservationRepo *repositories.ReservationRepository
	borrowingRepo   *repositories.BorrowingRepository
	catalog         *CatalogService
	members         *MemberService
	policy          *PolicyService
	notifier        Notifier
}

// NewReservationService creates a new reservation service
func NewReservationService(
	db *gorm.DB,
	reservationRepo *repositories.ReservationRepository,
	borrowingRepo *repositories.BorrowingRepository,
	catalog *CatalogService,
	members *MemberService,
	policy *PolicyService,
	notifier Notifier,
) *ReservationService {
	return &ReservationService{
		db:              db,
		reservationRepo: reservationRepo,
		borrowingRepo:   borrowingRepo,
		catalog:         catalog,
		members:         members,
		policy:          policy,
		notifier:        notifier,
	}
}

// CreateReservationInput represents a reservation request
type CreateReservationInput struct {
	MemberID uint `json:"member_id"`
	BookID   uint `json:"book_id"`
	Priority int  `json:"priority,omitempty"`
}

// Create queues a reservation. Only books with zero free copies can be
// reserved (a free copy should simply be borrowed), and a member holds
// at most one active reservation per book.
func (s *ReservationService) Create(ctx context.Context, input *CreateReservationInput) (*models.Reservation, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority <= 0 {
		priority = 1
	}

	var reservation *models.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)

		availability, err := s.catalog.withTx(tx).Availability(ctx, input.BookID)
		if err != nil {
			return err
		}
		if availability.AvailableCopies > 0 {
			return fmt.Errorf("%w: book has %d free copies, borrow it directly",
				domain.ErrReservationNotAllowed, availability.AvailableCopies)
		}

		if _, err := s.members.withTx(tx).GetMember(ctx, input.MemberID); err != nil {
			return err
		}

		existing, err := reservations.GetActiveByMemberAndBook(ctx, input.MemberID, input.BookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: reservation %d is still active", domain.ErrDuplicateReservation, existing.ID)
		}

		reservationDate := today()
		reservation = &models.Reservation{
			MemberID:        input.MemberID,
			BookID:          input.BookID,
			ReservationDate: reservationDate,
			ExpiryDate:      reservationDate.AddDate(0, 0, policy.ReservationExpiryDays),
			Priority:        priority,
			State:           domain.ReservationActive,
		}
		return reservations.Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// QueuePosition computes the 1-based rank of a reservation among the
// active reservations for its book, ordered by priority descending then
// reservation date ascending. Inactive reservations rank zero.
func (s *ReservationService) QueuePosition(ctx context.Context, reservationID uint) (int, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	return s.positionOf(ctx, reservation)
}

func (s *ReservationService) positionOf(ctx context.Context, reservation *models.Reservation) (int, error) {
	if reservation.State != domain.ReservationActive {
		return 0, nil
	}
	ahead, err := s.reservationRepo.CountAhead(ctx, reservation)
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// Fulfill turns an active reservation into a borrowing. The copy is
// already being held for this member, so the availability check is
// bypassed; member eligibility and the single-active-loan invariant
// still apply. The book row is locked so the duplicate check and the
// insert serialize against concurrent grants.
func (s *ReservationService) Fulfill(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)
		borrowings := s.borrowingRepo.WithTx(tx)

		reservation, err := reservations.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.State != domain.ReservationActive {
			return fmt.Errorf("%w: reservation is %s", domain.ErrReservationNotActive, reservation.State)
		}

		if _, err := s.catalog.lockBook(ctx, tx, reservation.BookID); err != nil {
			return err
		}

		eligibility, err := s.members.withTx(tx).CanBorrow(ctx, reservation.MemberID)
		if err != nil {
			return err
		}
		if !eligibility.Allowed {
			return fmt.Errorf("%w: %s", domain.ErrIneligibleMember, eligibility.Reason)
		}

		existing, err := borrowings.GetActiveByMemberAndBook(ctx, reservation.MemberID, reservation.BookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: loan %d is still active", domain.ErrDuplicateLoan, existing.ID)
		}

		borrowDate := today()
		borrowing := &models.Borrowing{
			MemberID:          reservation.MemberID,
			BookID:            reservation.BookID,
			BorrowDate:        borrowDate,
			DueDate:           borrowDate.AddDate(0, 0, policy.MaxBorrowDays),
			State:             domain.BorrowingBorrowed,
			ConditionAtBorrow: domain.ConditionGood,
		}
		if err := borrowings.Create(ctx, borrowing); err != nil {
			return err
		}

		fulfilled := today()
		reservation.State = domain.ReservationFulfilled
		reservation.FulfilledDate = &fulfilled
		reservation.BorrowingID = &borrowing.ID
		return reservations.Save(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	return s.reservationRepo.GetByID(ctx, reservationID)
}

// Cancel cancels an active reservation
func (s *ReservationService) Cancel(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	var reservation *models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)

		var err error
		reservation, err = reservations.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.State != domain.ReservationActive {
			return fmt.Errorf("%w: reservation is %s", domain.ErrReservationNotActive, reservation.State)
		}

		reservation.State = domain.ReservationCancelled
		return reservations.Save(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// ExpirySweep moves active reservations past their expiry date to
// expired. Idempotent; per-record failures are logged and retried next
// interval. Returns the number of reservations expired.
func (s *ReservationService) ExpirySweep(ctx context.Context) (int, error) {
	candidates, err := s.reservationRepo.ListExpiredActive(ctx, today())
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, reservation := range candidates {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.WithContext(ctx).Model(&models.Reservation{}).
				Where("id = ? AND state = ?", reservation.ID, domain.ReservationActive).
				Update("state", domain.ReservationExpired).Error
		})
		if err != nil {
			log.Printf("❌ Expiry sweep: reservation %d skipped: %v", reservation.ID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("⏰ Expiry sweep: %d reservations expired", swept)
	}
	return swept, nil
}

// NotifySweep tells the head of each queue that a copy is free. Only
// active, unnotified reservations at position 1 whose book has free
// copies are signalled; the sent flag makes the signal at-least-once
// rather than repeating every interval. Returns notifications emitted.
func (s *ReservationService) NotifySweep(ctx context.Context) (int, error) {
	candidates, err := s.reservationRepo.ListUnnotifiedActive(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, reservation := range candidates {
		availability, err := s.catalog.Availability(ctx, reservation.BookID)
		if err != nil {
			log.Printf("❌ Notify sweep: reservation %d skipped: %v", reservation.ID, err)
			continue
		}
		if availability.AvailableCopies <= 0 {
			continue
		}

		position, err := s.positionOf(ctx, reservation)
		if err != nil {
			log.Printf("❌ Notify sweep: reservation %d skipped: %v", reservation.ID, err)
			continue
		}
		if position != 1 {
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			return tx.WithContext(ctx).Model(&models.Reservation{}).
				Where("id = ? AND state = ?", reservation.ID, domain.ReservationActive).
				Update("notification_sent", true).Error
		})
		if err != nil {
			log.Printf("❌ Notify sweep: reservation %d skipped: %v", reservation.ID, err)
			continue
		}

		s.notifier.Notify(ctx, domain.NotificationEvent{
			Type:     domain.EventBookAvailable,
			MemberID: reservation.MemberID,
			BookID:   reservation.BookID,
			Message:  fmt.Sprintf("Reserved book %d is now available, reservation %d is first in queue", reservation.BookID, reservation.ID),
		})
		notified++
	}

	if notified > 0 {
		log.Printf("🔔 Notify sweep: %d members notified", notified)
	}
	return notified, nil
}

// GetReservation returns a reservation by ID
func (s *ReservationService) GetReservation(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, reservationID)
}

// ListReservations lists reservations with pagination, optionally by state
func (s *ReservationService) ListReservations(ctx context.Context, state domain.ReservationState, offset, limit int) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.List(ctx, state, offset, limit)
}

// ListBookQueue lists a book's reservations in queue order
func (s *ReservationService) ListBookQueue(ctx context.Context, bookID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.ListByBook(ctx, bookID, offset, limit)
}
