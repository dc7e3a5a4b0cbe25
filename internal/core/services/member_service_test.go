package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

func TestRegisterSetsCardAndExpiry(t *testing.T) {
	env := newTestEnv(t)

	student := env.createMember(t, domain.MembershipStudent)
	assert.True(t, strings.HasPrefix(student.CardNo, "LIB-"))
	assert.Equal(t, domain.MemberActive, student.Status)
	assert.Equal(t, student.JoinDate.AddDate(0, 0, 365), student.ExpiryDate)

	public := env.createMember(t, domain.MembershipPublic)
	assert.Equal(t, public.JoinDate.AddDate(0, 0, 730), public.ExpiryDate)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.members.Register(ctx, &RegisterMemberInput{Email: "x@example.org"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.members.Register(ctx, &RegisterMemberInput{
		Name:           "No Type",
		Email:          "notype@example.org",
		MembershipType: "alien",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCanBorrowStatusRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)

	eligibility, err := env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, eligibility.Allowed)

	_, err = env.members.Suspend(ctx, member.ID)
	require.NoError(t, err)

	eligibility, err = env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligibility.Allowed)
	assert.Equal(t, "member is suspended", eligibility.Reason)

	_, err = env.members.Block(ctx, member.ID)
	require.NoError(t, err)

	eligibility, err = env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligibility.Allowed)
	assert.Equal(t, "member is blocked", eligibility.Reason)

	_, err = env.members.Activate(ctx, member.ID)
	require.NoError(t, err)

	eligibility, err = env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, eligibility.Allowed)
}

func TestCanBorrowLimitRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	for i := 0; i < 3; i++ {
		book := env.createBook(t, 1)
		_, err := env.borrowings.Create(ctx, &CreateBorrowingInput{MemberID: member.ID, BookID: book.ID})
		require.NoError(t, err)
	}

	eligibility, err := env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligibility.Allowed)
	assert.Contains(t, eligibility.Reason, "limit reached (3)")
}

func TestCanBorrowFinesRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	_, err := env.fines.Create(ctx, &CreateFineInput{
		MemberID: member.ID,
		Amount:   12.5,
		Reason:   domain.FineDamage,
	})
	require.NoError(t, err)

	eligibility, err := env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, eligibility.Allowed)
	assert.Equal(t, "outstanding fines: 12.50", eligibility.Reason)

	outstanding, err := env.members.OutstandingFines(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, outstanding)
}

// Membership expiry is not an eligibility rule: a lapsed but active
// member keeps borrowing until an admin changes the status.
func TestCanBorrowIgnoresMembershipExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	err := env.db.Model(member).Update("expiry_date", today().AddDate(-1, 0, 0)).Error
	require.NoError(t, err)

	eligibility, err := env.members.CanBorrow(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, eligibility.Allowed)
}

func TestRenewMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipStudent)

	// Current membership extends from its expiry date
	renewed, err := env.members.RenewMembership(ctx, member.ID, 12)
	require.NoError(t, err)
	assert.WithinDuration(t, member.ExpiryDate.AddDate(0, 12, 0), renewed.ExpiryDate, time.Second)

	// Lapsed membership extends from today and reactivates
	require.NoError(t, env.db.Model(member).Updates(map[string]interface{}{
		"expiry_date": today().AddDate(-1, 0, 0),
		"status":      domain.MemberExpired,
	}).Error)

	renewed, err = env.members.RenewMembership(ctx, member.ID, 6)
	require.NoError(t, err)
	assert.WithinDuration(t, today().AddDate(0, 6, 0), renewed.ExpiryDate, time.Second)
	assert.Equal(t, domain.MemberActive, renewed.Status)

	_, err = env.members.RenewMembership(ctx, member.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMaxBooksByMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		membershipType domain.MembershipType
		want           int
	}{
		{domain.MembershipStudent, 5},
		{domain.MembershipFaculty, 10},
		{domain.MembershipStaff, 10},
		{domain.MembershipPublic, 3},
		{domain.MembershipSenior, 3},
	}
	for _, tc := range cases {
		t.Run(string(tc.membershipType), func(t *testing.T) {
			member := env.createMember(t, tc.membershipType)
			maxBooks, err := env.members.MaxBooks(ctx, member)
			require.NoError(t, err)
			assert.Equal(t, tc.want, maxBooks)
		})
	}
}

func TestGetMemberNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.members.GetMember(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.members.CanBorrow(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMembersPagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		env.createMember(t, domain.MembershipPublic)
	}

	page, total, err := env.members.ListMembers(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, int64(5), total)
}
