// Package store holds the booking store adapters. Every adapter keys
// bookings by identity and implements the pending -> completed transition
// as a conditional write, so at most one caller can win it.
package store

import (
	"context"
	"errors"
	"vbs/src/models"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrConflict is returned by Complete when the booking is no longer pending.
	ErrConflict = errors.New("booking is not pending")
)

const (
	BookingsCollection = "bookings"
	PaymentsCollection = "payments"
)

type BookingStore interface {
	Get(ctx context.Context, identity string) (*models.Booking, error)
	FindByBookingID(ctx context.Context, bookingID string) (*models.Booking, error)
	// Complete atomically moves a pending booking to completed and stores
	// the credential pair. It never overwrites a completed booking.
	Complete(ctx context.Context, identity string, c models.Completion) error
	CreatePayment(ctx context.Context, p *models.Payment) error
	Close() error
}
