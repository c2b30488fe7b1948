package lifecycle

import "errors"

var (
	ErrNotFound = errors.New("booking not found")
	// ErrExpired means the booking exists but its validity window has passed.
	ErrExpired = errors.New("booking has expired")
	// ErrStorage wraps store failures and timeouts. Retrying is safe.
	ErrStorage           = errors.New("booking storage failure")
	ErrNotification      = errors.New("notification failure")
	ErrInvalidCredential = errors.New("invalid credential")
)
