package utils

import (
	"fmt"
	"os"
	"strings"
	"time"
	"vbs/src/config"
)

// FormatValidity renders a validity timestamp for visitors, e.g.
// "05 Mar 2025, 18:00 (2h 15m remaining)" or "05 Mar 2025, 18:00 (EXPIRED)".
func FormatValidity(validUntil time.Time, now time.Time, loc *time.Location) string {
	if validUntil.IsZero() {
		return "Not set"
	}
	if loc == nil {
		loc = time.UTC
	}
	formatted := validUntil.In(loc).Format(config.VALIDITY_DISPLAY_FORMAT)
	if !now.Before(validUntil) {
		return formatted + " (EXPIRED)"
	}
	return fmt.Sprintf("%s (%s remaining)", formatted, FormatRemaining(validUntil.Sub(now)))
}

// FormatRemaining truncates to whole minutes.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "prod"
}

// WithSuffix appends the environment to queue names outside production so
// shared accounts do not mix messages.
func WithSuffix(name string) string {
	env := os.Getenv("API_ENV")
	if env == "" || IsProd() {
		return name
	}
	return fmt.Sprintf("%s_%s", name, strings.ToLower(env))
}
