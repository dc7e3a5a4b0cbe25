package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database per test. The named
// shared-cache DSN keeps all pooled connections on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// captureNotifier records emitted events instead of delivering them
type captureNotifier struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (n *captureNotifier) Notify(_ context.Context, event domain.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) Events() []domain.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.NotificationEvent(nil), n.events...)
}

// testEnv bundles the full service graph over one test database
type testEnv struct {
	db           *gorm.DB
	notifier     *captureNotifier
	policy       *PolicyService
	catalog      *CatalogService
	members      *MemberService
	borrowings   *BorrowingService
	fines        *FineService
	reservations *ReservationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)

	bookRepo := repositories.NewBookRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	borrowingRepo := repositories.NewBorrowingRepository(db)
	fineRepo := repositories.NewFineRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)

	notifier := &captureNotifier{}
	policy := NewPolicyService(db)
	catalog := NewCatalogService(db, bookRepo, borrowingRepo, reviewRepo)
	members := NewMemberService(memberRepo, borrowingRepo, fineRepo, policy)
	borrowings := NewBorrowingService(db, borrowingRepo, bookRepo, fineRepo, reservationRepo, members, policy, notifier)
	fines := NewFineService(db, fineRepo, memberRepo, policy)
	reservations := NewReservationService(db, reservationRepo, borrowingRepo, catalog, members, policy, notifier)

	return &testEnv{
		db:           db,
		notifier:     notifier,
		policy:       policy,
		catalog:      catalog,
		members:      members,
		borrowings:   borrowings,
		fines:        fines,
		reservations: reservations,
	}
}

var testISBNSeq atomic.Int64

// testISBN generates a unique, checksum-valid ISBN-13
func testISBN() string {
	body := fmt.Sprintf("978030640%03d", testISBNSeq.Add(1)%1000)
	sum := 0
	for i, r := range body {
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(r-'0') * weight
	}
	return fmt.Sprintf("%s%d", body, (10-sum%10)%10)
}

func (e *testEnv) createBook(t *testing.T, copies int) *models.Book {
	t.Helper()

	book, err := e.catalog.CreateBook(context.Background(), &CreateBookInput{
		Title:       fmt.Sprintf("Test Book %d", testDBSeq.Load()),
		ISBN:        testISBN(),
		Author:      "Test Author",
		TotalCopies: copies,
	})
	require.NoError(t, err)
	return book
}

var testEmailSeq atomic.Int64

func (e *testEnv) createMember(t *testing.T, membershipType domain.MembershipType) *models.Member {
	t.Helper()

	member, err := e.members.Register(context.Background(), &RegisterMemberInput{
		Name:           "Test Member",
		Email:          fmt.Sprintf("member%d@example.org", testEmailSeq.Add(1)),
		MembershipType: membershipType,
	})
	require.NoError(t, err)
	return member
}

// backdateDueDate shifts a loan's due date into the past
func (e *testEnv) backdateDueDate(t *testing.T, borrowingID uint, days int) {
	t.Helper()

	err := e.db.Model(&models.Borrowing{}).
		Where("id = ?", borrowingID).
		Update("due_date", today().AddDate(0, 0, -days)).Error
	require.NoError(t, err)
}

// backdateReservation shifts a reservation's queue date into the past
func (e *testEnv) backdateReservation(t *testing.T, reservationID uint, days int) {
	t.Helper()

	err := e.db.Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Update("reservation_date", today().AddDate(0, 0, -days)).Error
	require.NoError(t, err)
}
