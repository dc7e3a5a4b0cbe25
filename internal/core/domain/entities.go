package domain

// MembershipType classifies a member for borrow-limit and expiry purposes
type MembershipType string

const (
	MembershipStudent MembershipType = "student"
	MembershipFaculty MembershipType = "faculty"
	MembershipStaff   MembershipType = "staff"
	MembershipPublic  MembershipType = "public"
	MembershipSenior  MembershipType = "senior"
)

// MemberStatus represents the member lifecycle status
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberSuspended MemberStatus = "suspended"
	MemberExpired   MemberStatus = "expired"
	MemberBlocked   MemberStatus = "blocked"
)

// BookState represents the catalog state of a book title
type BookState string

const (
	BookAvailable   BookState = "available"
	BookMaintenance BookState = "maintenance"
	BookLost        BookState = "lost"
	BookDamaged     BookState = "damaged"
)

// BorrowingState is the loan state machine state.
// borrowed -> {returned, overdue, lost}; overdue -> {returned, lost}.
// returned and lost are terminal.
type BorrowingState string

const (
	BorrowingBorrowed BorrowingState = "borrowed"
	BorrowingReturned BorrowingState = "returned"
	BorrowingOverdue  BorrowingState = "overdue"
	BorrowingLost     BorrowingState = "lost"
)

// IsActive reports whether the loan still holds a copy (borrowed or overdue)
func (s BorrowingState) IsActive() bool {
	return s == BorrowingBorrowed || s == BorrowingOverdue
}

// BookCondition grades a copy at borrow/return time
type BookCondition string

const (
	ConditionExcellent BookCondition = "excellent"
	ConditionGood      BookCondition = "good"
	ConditionFair      BookCondition = "fair"
	ConditionPoor      BookCondition = "poor"
	ConditionDamaged   BookCondition = "damaged"
)

// FineState represents the payment state of a fine
type FineState string

const (
	FinePending FineState = "pending"
	FinePartial FineState = "partial"
	FinePaid    FineState = "paid"
	FineWaived  FineState = "waived"
)

// FineReason categorizes why a fine was issued
type FineReason string

const (
	FineLateReturn FineReason = "late_return"
	FineDamage     FineReason = "damage"
	FineLost       FineReason = "lost"
	FineOther      FineReason = "other"
)

// PaymentMethod is how a fine payment was collected
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentOnline       PaymentMethod = "online"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// ReservationState represents the reservation lifecycle state
type ReservationState string

const (
	ReservationActive    ReservationState = "active"
	ReservationFulfilled ReservationState = "fulfilled"
	ReservationExpired   ReservationState = "expired"
	ReservationCancelled ReservationState = "cancelled"
)

// Eligibility is the result of the member eligibility evaluation
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Availability is the derived copy availability of a book
type Availability struct {
	BookID          uint      `json:"book_id"`
	State           BookState `json:"state"`
	TotalCopies     int       `json:"total_copies"`
	BorrowedCopies  int       `json:"borrowed_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
}

// NotificationEvent is emitted to the external notifier collaborator.
// Delivery guarantees are the notifier's problem, not the core's.
type NotificationEvent struct {
	Type     string `json:"type"`
	MemberID uint   `json:"member_id"`
	BookID   uint   `json:"book_id,omitempty"`
	Message  string `json:"message"`
}

// Notification event types
const (
	EventBookAvailable   = "book_available"
	EventDueDateReminder = "due_date_reminder"
)
