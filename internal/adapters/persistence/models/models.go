package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// ============================================================
// Policy: single-row borrowing policy configuration
// ============================================================

// LibraryPolicy holds the policy constants every operation consults.
// Exactly one row exists; PolicyService creates it with defaults on
// first access.
type LibraryPolicy struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	LibraryName             string    `gorm:"size:100;not null;default:'Default Library'" json:"library_name"`
	MaxBorrowDays           int       `gorm:"default:14" json:"max_borrow_days"`
	MaxRenewals             int       `gorm:"default:2" json:"max_renewals"`
	FinePerDay              float64   `gorm:"type:decimal(8,2);default:1.0" json:"fine_per_day"`
	MaxBooksStudent         int       `gorm:"default:5" json:"max_books_student"`
	MaxBooksFaculty         int       `gorm:"default:10" json:"max_books_faculty"`
	MaxBooksPublic          int       `gorm:"default:3" json:"max_books_public"`
	ReservationExpiryDays   int       `gorm:"default:7" json:"reservation_expiry_days"`
	OverdueNotificationDays int       `gorm:"default:3" json:"overdue_notification_days"`
	FineDueDays             int       `gorm:"default:30" json:"fine_due_days"`
	LostBookDefaultFine     float64   `gorm:"type:decimal(8,2);default:50.0" json:"lost_book_default_fine"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LibraryPolicy) TableName() string {
	return "library_policy"
}

// MaxBooksFor resolves the borrow limit for a membership type
func (p *LibraryPolicy) MaxBooksFor(membershipType domain.MembershipType) int {
	switch membershipType {
	case domain.MembershipStudent:
		return p.MaxBooksStudent
	case domain.MembershipFaculty, domain.MembershipStaff:
		return p.MaxBooksFaculty
	default:
		return p.MaxBooksPublic
	}
}

// ============================================================
// Catalog
// ============================================================

// Book represents a catalog title. Copy availability is never stored:
// available = total_copies - count of borrowed-state loans.
type Book struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"size:255;not null;index" json:"title"`
	ISBN        string           `gorm:"size:20;uniqueIndex;not null" json:"isbn"`
	ISBN13      string           `gorm:"size:20" json:"isbn13,omitempty"`
	Author      string           `gorm:"size:255" json:"author"`
	Publisher   string           `gorm:"size:255" json:"publisher"`
	Category    string           `gorm:"size:100;index" json:"category"`
	Language    string           `gorm:"size:10;default:'en'" json:"language"`
	Edition     string           `gorm:"size:50" json:"edition"`
	Pages       int              `json:"pages,omitempty"`
	Location    string           `gorm:"size:50" json:"location"`
	Price       float64          `gorm:"type:decimal(10,2)" json:"price"`
	TotalCopies int              `gorm:"not null;default:1" json:"total_copies"`
	State       domain.BookState `gorm:"size:20;default:'available';index" json:"state"`
	Notes       string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ============================================================
// Membership
// ============================================================

// Member represents a library member. MaxBooks and the outstanding fine
// total are derived from policy and pending fines on every read.
type Member struct {
	ID             uint                  `gorm:"primaryKey" json:"id"`
	CardNo         string                `gorm:"size:40;uniqueIndex;not null" json:"card_no"`
	Name           string                `gorm:"size:100;not null" json:"name"`
	Email          string                `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone          string                `gorm:"size:20" json:"phone,omitempty"`
	MembershipType domain.MembershipType `gorm:"size:20;not null;default:'public'" json:"membership_type"`
	Status         domain.MemberStatus   `gorm:"size:20;not null;default:'active';index" json:"status"`
	JoinDate       time.Time             `gorm:"type:date;not null" json:"join_date"`
	ExpiryDate     time.Time             `gorm:"type:date" json:"expiry_date"`
	CreatedAt      time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt        `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// MembershipTerm returns how long a fresh membership of the given type
// lasts: one year for student/faculty/staff, two years otherwise.
func MembershipTerm(membershipType domain.MembershipType) time.Duration {
	switch membershipType {
	case domain.MembershipStudent, domain.MembershipFaculty, domain.MembershipStaff:
		return 365 * 24 * time.Hour
	default:
		return 730 * 24 * time.Hour
	}
}

// ============================================================
// Borrowing
// ============================================================

// Borrowing is one checkout of one copy by one member. Records are
// historical and never deleted. DueDate is fixed at creation; fines are
// derived at return time, not stored here.
type Borrowing struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	MemberID            uint                 `gorm:"not null;index:idx_borrowings_member_book" json:"member_id"`
	BookID              uint                 `gorm:"not null;index:idx_borrowings_member_book;index" json:"book_id"`
	BorrowDate          time.Time            `gorm:"type:date;not null" json:"borrow_date"`
	DueDate             time.Time            `gorm:"type:date;not null;index" json:"due_date"`
	ReturnDate          *time.Time           `gorm:"type:date" json:"return_date,omitempty"`
	State               domain.BorrowingState `gorm:"size:20;not null;default:'borrowed';index" json:"state"`
	RenewalCount        int                  `gorm:"default:0" json:"renewal_count"`
	ConditionAtBorrow   domain.BookCondition `gorm:"size:20;default:'good'" json:"condition_at_borrow"`
	ConditionAtReturn   domain.BookCondition `gorm:"size:20" json:"condition_at_return,omitempty"`
	Notes               string               `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt           time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	Member              Member               `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Book                Book                 `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Borrowing) TableName() string {
	return "borrowings"
}

// DaysOverdue returns the whole-day overdue count against the given end
// date (return date or today), never negative.
func (b *Borrowing) DaysOverdue(end time.Time) int {
	days := int(end.Sub(b.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ============================================================
// Fines
// ============================================================

// Fine is a ledger entry against a member. BorrowingID is optional:
// damage and lost fines may stand alone. State derives from
// (paid_amount, amount) except when explicitly waived.
type Fine struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	MemberID         uint                 `gorm:"not null;index" json:"member_id"`
	BorrowingID      *uint                `gorm:"index" json:"borrowing_id,omitempty"`
	Amount           float64              `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAmount       float64              `gorm:"type:decimal(10,2);default:0" json:"paid_amount"`
	Reason           domain.FineReason    `gorm:"size:20;not null" json:"reason"`
	State            domain.FineState     `gorm:"size:20;not null;default:'pending';index" json:"state"`
	DateCreated      time.Time            `gorm:"type:date;not null" json:"date_created"`
	DueDate          time.Time            `gorm:"type:date" json:"due_date"`
	DatePaid         *time.Time           `gorm:"type:date" json:"date_paid,omitempty"`
	PaymentMethod    domain.PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	PaymentReference string               `gorm:"size:64" json:"payment_reference,omitempty"`
	WaivedReason     string               `gorm:"type:text" json:"waived_reason,omitempty"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	Member           Member               `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Borrowing        *Borrowing           `gorm:"foreignKey:BorrowingID" json:"borrowing,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}

// Remaining returns the unpaid balance, always >= 0 by invariant
func (f *Fine) Remaining() float64 {
	return f.Amount - f.PaidAmount
}

// ============================================================
// Reservations
// ============================================================

// Reservation is a queued claim on a book with no free copies. Queue
// position is computed, never stored.
type Reservation struct {
	ID               uint                   `gorm:"primaryKey" json:"id"`
	MemberID         uint                   `gorm:"not null;index" json:"member_id"`
	BookID           uint                   `gorm:"not null;index" json:"book_id"`
	ReservationDate  time.Time              `gorm:"type:date;not null" json:"reservation_date"`
	ExpiryDate       time.Time              `gorm:"type:date;not null;index" json:"expiry_date"`
	Priority         int                    `gorm:"default:1" json:"priority"`
	State            domain.ReservationState `gorm:"size:20;not null;default:'active';index" json:"state"`
	NotificationSent bool                   `gorm:"default:false" json:"notification_sent"`
	FulfilledDate    *time.Time             `gorm:"type:date" json:"fulfilled_date,omitempty"`
	BorrowingID      *uint                  `json:"borrowing_id,omitempty"`
	Notes            string                 `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
	Member           Member                 `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Book             Book                   `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Borrowing        *Borrowing             `gorm:"foreignKey:BorrowingID" json:"borrowing,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// ============================================================
// Reviews
// ============================================================

// Review is a member's rating of a book. Ratings are bounded 1..5 at
// write time; the book's average rating is derived on read.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;index" json:"member_id"`
	BookID    uint      `gorm:"not null;index" json:"book_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Member    Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&LibraryPolicy{},
		&Book{},
		&Member{},
		&Borrowing{},
		&Fine{},
		&Reservation{},
		&Review{},
	)
}
