package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadBookingIDPrefix(t *testing.T) {
	t.Setenv("BOOKING_ID_PREFIX", "GAL")
	assert.Equal(t, "GAL", Load().BookingIDPrefix)

	t.Setenv("BOOKING_ID_PREFIX", "ATH-")
	assert.Equal(t, DEFAULT_BOOKING_ID_PREFIX, Load().BookingIDPrefix)

	t.Setenv("BOOKING_ID_PREFIX", "MUS EUM")
	assert.Equal(t, DEFAULT_BOOKING_ID_PREFIX, Load().BookingIDPrefix)
}

func TestLoadCurrency(t *testing.T) {
	t.Setenv("CURRENCY_SYMBOL", "")
	assert.Equal(t, DEFAULT_CURRENCY_SYMBOL, Load().Currency)

	t.Setenv("CURRENCY_SYMBOL", "$")
	assert.Equal(t, "$", Load().Currency)
}

func TestValidBookingIDPrefix(t *testing.T) {
	assert.True(t, ValidBookingIDPrefix("ATH"))
	assert.False(t, ValidBookingIDPrefix(""))
	assert.False(t, ValidBookingIDPrefix("A-B"))
	assert.False(t, ValidBookingIDPrefix("A\tB"))
}
