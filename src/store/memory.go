package store

import (
	"context"
	"sync"
	"vbs/src/models"
	"vbs/src/types"
)

// MemoryStore is a process-local BookingStore used for local runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	payments map[string]models.Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: map[string]models.Booking{},
		payments: map[string]models.Payment{},
	}
}

// Put stores a copy of b, replacing any booking with the same identity.
func (s *MemoryStore) Put(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Status == "" {
		b.Status = types.BOOKING_PENDING
	}
	s.bookings[b.Identity] = cloneBooking(b)
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[identity]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.BookingID != nil && *b.BookingID == bookingID {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Complete(ctx context.Context, identity string, c models.Completion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[identity]
	if !ok {
		return ErrNotFound
	}
	if b.Status != types.BOOKING_PENDING {
		return ErrConflict
	}
	c.Apply(&b)
	s.bookings[identity] = b
	return nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.BookingID]; ok {
		return nil
	}
	s.payments[p.BookingID] = *p
	return nil
}

// Payments returns a snapshot of the audit records.
func (s *MemoryStore) Payments() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	return out
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneBooking(b models.Booking) models.Booking {
	if b.BookingID != nil {
		id := *b.BookingID
		b.BookingID = &id
	}
	if b.VerificationHash != nil {
		hash := *b.VerificationHash
		b.VerificationHash = &hash
	}
	return b
}
