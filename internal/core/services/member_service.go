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

// MemberService evaluates borrowing eligibility and manages the member
// lifecycle. Eligibility rules run in order, first failure wins:
// status, borrow limit, outstanding fines.
type MemberService struct {
	memberRepo    *repositories.MemberRepository
	borrowingRepo *repositories.BorrowingRepository
	fineRepo      *repositories.FineRepository
	policy        *PolicyService
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo *repositories.MemberRepository,
	borrowingRepo *repositories.BorrowingRepository,
	fineRepo *repositories.FineRepository,
	policy *PolicyService,
) *MemberService {
	return &MemberService{
		memberRepo:    memberRepo,
		borrowingRepo: borrowingRepo,
		fineRepo:      fineRepo,
		policy:        policy,
	}
}

// withTx returns a member service bound to the given transaction
func (s *MemberService) withTx(tx *gorm.DB) *MemberService {
	return &MemberService{
		memberRepo:    s.memberRepo.WithTx(tx),
		borrowingRepo: s.borrowingRepo.WithTx(tx),
		fineRepo:      s.fineRepo.WithTx(tx),
		policy:        s.policy,
	}
}

// RegisterMemberInput represents a new member registration
type RegisterMemberInput struct {
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone,omitempty"`
	MembershipType domain.MembershipType `json:"membership_type"`
}

// Register creates a new active member. Expiry is one year from join
// for student/faculty/staff memberships, two years otherwise.
func (s *MemberService) Register(ctx context.Context, input *RegisterMemberInput) (*models.Member, error) {
	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}

	membershipType := input.MembershipType
	if membershipType == "" {
		membershipType = domain.MembershipPublic
	}
	switch membershipType {
	case domain.MembershipStudent, domain.MembershipFaculty, domain.MembershipStaff,
		domain.MembershipPublic, domain.MembershipSenior:
	default:
		return nil, fmt.Errorf("%w: unknown membership type %q", domain.ErrInvalidInput, membershipType)
	}

	joinDate := today()
	member := &models.Member{
		CardNo:         "LIB-" + uuid.NewString()[:8],
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		MembershipType: membershipType,
		Status:         domain.MemberActive,
		JoinDate:       joinDate,
		ExpiryDate:     joinDate.Add(models.MembershipTerm(membershipType)),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return member, nil
}

// CanBorrow evaluates whether a member may borrow right now.
// Membership expiry is deliberately not consulted here, matching the
// established policy: an expired-but-active member may still borrow
// until an admin flips the status.
func (s *MemberService) CanBorrow(ctx context.Context, memberID uint) (*domain.Eligibility, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if member.Status != domain.MemberActive {
		return &domain.Eligibility{Allowed: false, Reason: fmt.Sprintf("member is %s", member.Status)}, nil
	}

	policy, err := s.policy.Get(ctx)
	if err != nil {
		return nil, err
	}
	maxBooks := policy.MaxBooksFor(member.MembershipType)

	borrowed, err := s.borrowingRepo.CountBorrowedByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if int(borrowed) >= maxBooks {
		return &domain.Eligibility{Allowed: false, Reason: fmt.Sprintf("maximum books limit reached (%d)", maxBooks)}, nil
	}

	outstanding, err := s.fineRepo.SumPendingByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if outstanding > 0 {
		return &domain.Eligibility{Allowed: false, Reason: fmt.Sprintf("outstanding fines: %.2f", outstanding)}, nil
	}

	return &domain.Eligibility{Allowed: true, Reason: "can borrow"}, nil
}

// OutstandingFines returns the sum of a member's pending fines
func (s *MemberService) OutstandingFines(ctx context.Context, memberID uint) (float64, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return 0, err
	}
	return s.fineRepo.SumPendingByMember(ctx, memberID)
}

// MaxBooks resolves the member's borrow limit from policy
func (s *MemberService) MaxBooks(ctx context.Context, member *models.Member) (int, error) {
	policy, err := s.policy.Get(ctx)
	if err != nil {
		return 0, err
	}
	return policy.MaxBooksFor(member.MembershipType), nil
}

// Suspend sets a member's status to suspended
func (s *MemberService) Suspend(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.setStatus(ctx, memberID, domain.MemberSuspended)
}

// Activate sets a member's status to active
func (s *MemberService) Activate(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.setStatus(ctx, memberID, domain.MemberActive)
}

// Block sets a member's status to blocked
func (s *MemberService) Block(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.setStatus(ctx, memberID, domain.MemberBlocked)
}

func (s *MemberService) setStatus(ctx context.Context, memberID uint, status domain.MemberStatus) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member.Status = status
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RenewMembership extends a member's expiry date by the given number of
// months, counted from the current expiry (or from today when the
// membership already lapsed).
func (s *MemberService) RenewMembership(ctx context.Context, memberID uint, months int) (*models.Member, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: renewal period must be positive", domain.ErrInvalidInput)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	base := member.ExpiryDate
	if base.IsZero() || base.Before(today()) {
		base = today()
	}
	member.ExpiryDate = base.AddDate(0, months, 0)

	if member.Status == domain.MemberExpired {
		member.Status = domain.MemberActive
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetMember returns a member by ID
func (s *MemberService) GetMember(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.memberRepo.GetByID(ctx, memberID)
}

// ListMembers lists members with pagination
func (s *MemberService) ListMembers(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit)
}
