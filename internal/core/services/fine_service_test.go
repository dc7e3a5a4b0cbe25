package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

func TestCreateFineValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)

	_, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 0, Reason: domain.FineDamage})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 5, Reason: "revenge"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.fines.Create(ctx, &CreateFineInput{MemberID: 9999, Amount: 5, Reason: domain.FineDamage})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 5, Reason: domain.FineDamage})
	require.NoError(t, err)
	assert.Equal(t, domain.FinePending, fine.State)
	assert.Equal(t, 5.0, fine.Remaining())
	assert.Equal(t, fine.DateCreated.AddDate(0, 0, 30), fine.DueDate)
}

func TestPartialPayLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 10, Reason: domain.FineOther})
	require.NoError(t, err)

	paid, err := env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 4, Method: domain.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, domain.FinePartial, paid.State)
	assert.Equal(t, 6.0, paid.Remaining())
	assert.Nil(t, paid.DatePaid)
	assert.NotEmpty(t, paid.PaymentReference)

	paid, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 6, Method: domain.PaymentCard, Reference: "rcpt-42"})
	require.NoError(t, err)
	assert.Equal(t, domain.FinePaid, paid.State)
	assert.Zero(t, paid.Remaining())
	assert.NotNil(t, paid.DatePaid)
	assert.Equal(t, "rcpt-42", paid.PaymentReference)

	// Settled fine accepts no further payments
	_, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestPartialPayRejectsBadAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 10, Reason: domain.FineOther})
	require.NoError(t, err)

	_, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 10.01})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	// Balance untouched by the rejected attempts
	refreshed, err := env.fines.GetFine(ctx, fine.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, refreshed.Remaining())
	assert.Equal(t, domain.FinePending, refreshed.State)
}

func TestMarkPaidSettlesInFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 7.5, Reason: domain.FineDamage})
	require.NoError(t, err)

	paid, err := env.fines.MarkPaid(ctx, fine.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FinePaid, paid.State)
	assert.Equal(t, 7.5, paid.PaidAmount)
	assert.NotNil(t, paid.DatePaid)
}

func TestWaiveKeepsPartialPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 10, Reason: domain.FineOther})
	require.NoError(t, err)

	_, err = env.fines.PartialPay(ctx, fine.ID, &PartialPayInput{Amount: 3, Method: domain.PaymentCash})
	require.NoError(t, err)

	waived, err := env.fines.Waive(ctx, fine.ID, "goodwill")
	require.NoError(t, err)
	assert.Equal(t, domain.FineWaived, waived.State)
	assert.Equal(t, "goodwill", waived.WaivedReason)
	assert.Equal(t, 3.0, waived.PaidAmount)

	// Waived fines no longer count against eligibility
	outstanding, err := env.members.OutstandingFines(ctx, member.ID)
	require.NoError(t, err)
	assert.Zero(t, outstanding)
}

func TestOutstandingSumsOnlyPendingFines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)

	first, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 4, Reason: domain.FineOther})
	require.NoError(t, err)
	_, err = env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 6, Reason: domain.FineDamage})
	require.NoError(t, err)

	outstanding, err := env.members.OutstandingFines(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, outstanding)

	// A partial payment moves the fine out of pending entirely
	_, err = env.fines.PartialPay(ctx, first.ID, &PartialPayInput{Amount: 1, Method: domain.PaymentCash})
	require.NoError(t, err)

	outstanding, err = env.members.OutstandingFines(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, outstanding)
}

func TestListFinesByState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createMember(t, domain.MembershipPublic)
	fine, err := env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 4, Reason: domain.FineOther})
	require.NoError(t, err)
	_, err = env.fines.Create(ctx, &CreateFineInput{MemberID: member.ID, Amount: 6, Reason: domain.FineDamage})
	require.NoError(t, err)

	_, err = env.fines.MarkPaid(ctx, fine.ID)
	require.NoError(t, err)

	pending, total, err := env.fines.ListFines(ctx, domain.FinePending, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, 6.0, pending[0].Amount)

	all, total, err := env.fines.ListFines(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}
