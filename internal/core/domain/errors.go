package domain

import "errors"

// Common domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Borrowing errors
var (
	ErrIneligibleMember       = errors.New("member is not eligible to borrow")
	ErrBookUnavailable        = errors.New("book is not available for borrowing")
	ErrDuplicateLoan          = errors.New("member already has an active loan for this book")
	ErrRenewalNotAllowed      = errors.New("renewal not allowed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Fine errors
var (
	ErrInvalidPayment = errors.New("invalid payment amount")
)

// Reservation errors
var (
	ErrDuplicateReservation  = errors.New("member already has an active reservation for this book")
	ErrReservationNotActive  = errors.New("only active reservations can be processed")
	ErrReservationNotAllowed = errors.New("reservation not allowed")
)
