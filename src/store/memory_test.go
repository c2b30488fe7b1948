package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"vbs/src/models"
	"vbs/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCompleteOnce(t *testing.T) {
	s := NewMemoryStore()
	s.Put(models.Booking{Identity: "a_at_b_com", Email: "a@b.com", Tickets: 2, Amount: 500, ValidUntil: time.Now().Add(time.Hour)})

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Complete(context.Background(), "a_at_b_com", models.Completion{
				BookingID:        "ID" + string(rune('A'+i)),
				VerificationHash: "HASH",
				UpdatedAt:        time.Now(),
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrConflict))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	b, err := s.Get(context.Background(), "a_at_b_com")
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_COMPLETED, b.Status)
	assert.True(t, b.HasCredential())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	s.Put(models.Booking{Identity: "x"})
	b, err := s.Get(context.Background(), "x")
	require.Nil(t, err)
	b.Status = types.BOOKING_COMPLETED

	again, err := s.Get(context.Background(), "x")
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_PENDING, again.Status)
}

func TestMemoryStoreFindByBookingID(t *testing.T) {
	s := NewMemoryStore()
	s.Put(models.Booking{Identity: "x"})
	_, err := s.FindByBookingID(context.Background(), "ATH1")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.Nil(t, s.Complete(context.Background(), "x", models.Completion{BookingID: "ATH1", VerificationHash: "H"}))
	b, err := s.FindByBookingID(context.Background(), "ATH1")
	require.Nil(t, err)
	assert.Equal(t, "x", b.Identity)
}

func TestMemoryStorePaymentsAppendOnly(t *testing.T) {
	s := NewMemoryStore()
	p := &models.Payment{BookingID: "ATH1", Identity: "x", Status: types.PAYMENT_COMPLETED}
	require.Nil(t, s.CreatePayment(context.Background(), p))
	require.Nil(t, s.CreatePayment(context.Background(), p))
	assert.Len(t, s.Payments(), 1)
}

func TestMemoryStoreHonoursCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Get(ctx, "x")
	assert.True(t, errors.Is(err, context.Canceled))
}
