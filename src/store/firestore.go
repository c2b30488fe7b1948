package store

import (
	"context"
	"errors"
	"log"
	"vbs/src/models"
	"vbs/src/types"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per identity in the bookings collection
// and one document per booking id in the payments collection.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) bookings() *firestore.CollectionRef {
	return s.client.Collection(BookingsCollection)
}

func (s *FirestoreStore) Get(ctx context.Context, identity string) (*models.Booking, error) {
	snap, err := s.bookings().Doc(identity).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeBooking(snap)
}

func (s *FirestoreStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	iter := s.bookings().Where("booking_id", "==", bookingID).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeBooking(snap)
}

func (s *FirestoreStore) Complete(ctx context.Context, identity string, c models.Completion) error {
	ref := s.bookings().Doc(identity)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		if !completable(snap.Data()) {
			return ErrConflict
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(types.BOOKING_COMPLETED)},
			{Path: "booking_id", Value: c.BookingID},
			{Path: "hash", Value: c.VerificationHash},
			{Path: "updated_at", Value: c.UpdatedAt},
		})
	})
}

func (s *FirestoreStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	_, err := s.client.Collection(PaymentsCollection).Doc(p.BookingID).Create(ctx, p)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		log.Printf("[store] Error creating payment record %s: %s\n", p.BookingID, err.Error())
		return err
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func decodeBooking(snap *firestore.DocumentSnapshot) (*models.Booking, error) {
	var booking models.Booking
	if err := snap.DataTo(&booking); err != nil {
		return nil, err
	}
	booking.Identity = snap.Ref.ID
	booking.Status = normalizeStatus(booking.Status)
	return &booking, nil
}

// Documents written before the status field existed are pending.
func normalizeStatus(st types.BookingStatus) types.BookingStatus {
	if st == "" {
		return types.BOOKING_PENDING
	}
	return st
}

func completable(data map[string]interface{}) bool {
	v, ok := data["status"]
	if !ok || v == nil {
		return true
	}
	st, ok := v.(string)
	return ok && normalizeStatus(types.BookingStatus(st)) == types.BOOKING_PENDING
}
