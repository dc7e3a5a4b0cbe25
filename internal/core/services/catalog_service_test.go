package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

func TestAvailabilityIsDerived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, 3)

	availability, err := env.catalog.Availability(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, availability.TotalCopies)
	assert.Equal(t, 0, availability.BorrowedCopies)
	assert.Equal(t, 3, availability.AvailableCopies)
	assert.True(t, availability.Available)

	for i := 0; i < 2; i++ {
		member := env.createMember(t, domain.MembershipPublic)
		_, err := env.borrowings.Create(ctx, &CreateBorrowingInput{MemberID: member.ID, BookID: book.ID})
		require.NoError(t, err)
	}

	availability, err = env.catalog.Availability(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, availability.BorrowedCopies)
	assert.Equal(t, 1, availability.AvailableCopies)
	assert.True(t, availability.Available)
}

func TestAvailabilityRespectsBookState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, 2)

	_, err := env.catalog.SetState(ctx, book.ID, domain.BookMaintenance)
	require.NoError(t, err)

	availability, err := env.catalog.Availability(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, availability.AvailableCopies)
	assert.False(t, availability.Available)

	_, err = env.catalog.SetState(ctx, book.ID, "broken")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateBookValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateBook(ctx, &CreateBookInput{ISBN: testISBN(), TotalCopies: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.catalog.CreateBook(ctx, &CreateBookInput{Title: "Bad ISBN", ISBN: "not-an-isbn", TotalCopies: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.catalog.CreateBook(ctx, &CreateBookInput{Title: "No Copies", ISBN: testISBN(), TotalCopies: 0})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	book, err := env.catalog.CreateBook(ctx, &CreateBookInput{
		Title:       "Good Book",
		ISBN:        "0306406152",
		Author:      "Someone",
		TotalCopies: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookAvailable, book.State)
	assert.Equal(t, "en", book.Language)
}

func TestSetTotalCopiesRejectsBelowBorrowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, 2)
	for i := 0; i < 2; i++ {
		member := env.createMember(t, domain.MembershipPublic)
		_, err := env.borrowings.Create(ctx, &CreateBorrowingInput{MemberID: member.ID, BookID: book.ID})
		require.NoError(t, err)
	}

	_, err := env.catalog.SetTotalCopies(ctx, book.ID, 1)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	updated, err := env.catalog.SetTotalCopies(ctx, book.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)

	availability, err := env.catalog.Availability(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, availability.AvailableCopies)
}

func TestReviewsAndRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, 1)
	member := env.createMember(t, domain.MembershipPublic)

	_, err := env.catalog.AddReview(ctx, member.ID, book.ID, 0, "")
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	_, err = env.catalog.AddReview(ctx, member.ID, book.ID, 6, "")
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = env.catalog.AddReview(ctx, member.ID, book.ID, 4, "solid")
	require.NoError(t, err)
	other := env.createMember(t, domain.MembershipPublic)
	_, err = env.catalog.AddReview(ctx, other.ID, book.ID, 5, "great")
	require.NoError(t, err)

	avg, count, err := env.catalog.BookRating(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.InDelta(t, 4.5, avg, 0.001)
}

func TestBookRatingEmpty(t *testing.T) {
	env := newTestEnv(t)

	book := env.createBook(t, 1)
	avg, count, err := env.catalog.BookRating(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)
}
