// Package lifecycle owns the booking payment state machine:
//
//	pending --[CompletePayment, not expired]--> completed
//
// completed is terminal. Expiry is never stored; it is derived from the
// booking's validity and a single clock reading per call.
package lifecycle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"vbs/src/credential"
	"vbs/src/lib"
	"vbs/src/models"
	"vbs/src/store"
	"vbs/src/types"
)

type TokenGenerator interface {
	Generate(identity string, now time.Time) (bookingID string, hash string, err error)
}

type Notifier interface {
	NotifyCompleted(ctx context.Context, v *View) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Result struct {
	BookingID        string
	VerificationHash string
	Credential       string
	// AlreadyCompleted is set when the call found the booking completed and
	// returned the existing credential instead of issuing one.
	AlreadyCompleted bool
}

type Manager struct {
	store     store.BookingStore
	tokens    TokenGenerator
	notifier  Notifier
	locker    Locker
	namespace string
	now       func() time.Time
	location  *time.Location

	storeTimeout  time.Duration
	notifyTimeout time.Duration

	wg sync.WaitGroup
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

func WithLocker(l Locker) Option {
	return func(m *Manager) {
		m.locker = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithNamespace(ns string) Option {
	return func(m *Manager) {
		m.namespace = ns
	}
}

func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.location = loc
		}
	}
}

func WithStoreTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.storeTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.notifyTimeout = d
		}
	}
}

func NewManager(s store.BookingStore, tokens TokenGenerator, opts ...Option) *Manager {
	m := &Manager{
		store:         s,
		tokens:        tokens,
		namespace:     credential.DefaultNamespace,
		now:           time.Now,
		location:      time.UTC,
		storeTimeout:  5 * time.Second,
		notifyTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close waits for in-flight notifications.
func (m *Manager) Close() {
	m.wg.Wait()
}

func (m *Manager) Namespace() string {
	return m.namespace
}

// Lookup returns the booking with its derived fields. It never writes.
func (m *Manager) Lookup(ctx context.Context, identity string) (*View, error) {
	now := m.now()
	b, err := m.get(ctx, identity)
	if err != nil {
		return nil, err
	}
	return m.view(b, now), nil
}

// CompletePayment moves a pending booking to completed and issues its
// credential. Repeated calls return the credential issued by the first.
func (m *Manager) CompletePayment(ctx context.Context, identity string) (*Result, error) {
	now := m.now()

	if m.locker != nil {
		lctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
		unlock, err := m.locker.Lock(lctx, lib.LockKey(identity))
		cancel()
		if err != nil {
			log.Printf("[lifecycle] Proceeding without lock for %s: %s\n", identity, err.Error())
		} else {
			defer unlock()
		}
	}

	b, err := m.get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if b.IsCompleted() {
		return m.existing(b)
	}
	if !b.IsValidAt(now) {
		return nil, fmt.Errorf("%w: %s", ErrExpired, identity)
	}

	bookingID, hash, err := m.tokens.Generate(identity, now)
	if err != nil {
		return nil, fmt.Errorf("could not issue credential: %w", err)
	}
	completion := models.Completion{
		BookingID:        bookingID,
		VerificationHash: hash,
		UpdatedAt:        now,
	}

	sctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	err = m.store.Complete(sctx, identity, completion)
	cancel()
	switch {
	case err == nil:
	case errors.Is(err, store.ErrConflict):
		winner, err := m.get(ctx, identity)
		if err != nil {
			return nil, err
		}
		if !winner.IsCompleted() {
			return nil, fmt.Errorf("%w: booking %s changed concurrently", ErrStorage, identity)
		}
		return m.existing(winner)
	case errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identity)
	default:
		log.Printf("[lifecycle] Error completing booking %s: %s\n", identity, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	log.Printf("[lifecycle] Booking %s completed with id %s\n", identity, bookingID)

	m.audit(ctx, identity, b.Email, bookingID, now)

	updated, err := m.get(ctx, identity)
	if err != nil {
		log.Printf("[lifecycle] Could not re-read booking %s, using local copy: %s\n", identity, err.Error())
		completion.Apply(b)
		updated = b
	}
	v := m.view(updated, now)
	m.notify(ctx, v)

	return &Result{
		BookingID:        bookingID,
		VerificationHash: hash,
		Credential:       credential.Encode(m.namespace, bookingID, hash),
	}, nil
}

// VerifyCredential checks a scanned payload against the stored booking.
func (m *Manager) VerifyCredential(ctx context.Context, payload string) (*View, error) {
	now := m.now()
	bookingID, hash, err := credential.Decode(m.namespace, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	sctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	b, err := m.store.FindByBookingID(sctx, bookingID)
	if err != nil {
		return nil, m.storeError(err, bookingID)
	}
	if !b.IsCompleted() || !b.HasCredential() ||
		subtle.ConstantTimeCompare([]byte(*b.VerificationHash), []byte(hash)) != 1 {
		return nil, fmt.Errorf("%w: hash mismatch for %s", ErrInvalidCredential, bookingID)
	}
	return m.view(b, now), nil
}

func (m *Manager) get(ctx context.Context, identity string) (*models.Booking, error) {
	sctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	b, err := m.store.Get(sctx, identity)
	if err != nil {
		return nil, m.storeError(err, identity)
	}
	return b, nil
}

func (m *Manager) storeError(err error, key string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	log.Printf("[lifecycle] Store error for %s: %s\n", key, err.Error())
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func (m *Manager) existing(b *models.Booking) (*Result, error) {
	if !b.HasCredential() {
		return nil, fmt.Errorf("%w: completed booking %s has no credential", ErrStorage, b.Identity)
	}
	return &Result{
		BookingID:        *b.BookingID,
		VerificationHash: *b.VerificationHash,
		Credential:       credential.Encode(m.namespace, *b.BookingID, *b.VerificationHash),
		AlreadyCompleted: true,
	}, nil
}

func (m *Manager) audit(ctx context.Context, identity string, email string, bookingID string, now time.Time) {
	sctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	err := m.store.CreatePayment(sctx, &models.Payment{
		BookingID: bookingID,
		Identity:  identity,
		Email:     email,
		Status:    types.PAYMENT_COMPLETED,
		CreatedAt: now,
	})
	if err != nil {
		log.Printf("[lifecycle] Payment record for %s was not saved: %s\n", bookingID, err.Error())
	}
}

func (m *Manager) notify(ctx context.Context, v *View) {
	if m.notifier == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
		defer cancel()
		if err := m.notifier.NotifyCompleted(nctx, v); err != nil {
			err = fmt.Errorf("%w: %w", ErrNotification, err)
			log.Printf("[lifecycle] Confirmation for %s not delivered: %s\n", v.Booking.Identity, err.Error())
		}
	}()
}
