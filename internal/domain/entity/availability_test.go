package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityOverlapsWindow(t *testing.T) {
	window := &Availability{StartTime: "09:00", EndTime: "13:00"}

	assert.True(t, window.OverlapsWindow("09:00", "13:00"))
	assert.True(t, window.OverlapsWindow("08:00", "09:30"))
	assert.True(t, window.OverlapsWindow("12:30", "14:00"))
	assert.True(t, window.OverlapsWindow("10:00", "11:00"))

	// Shared boundaries do not overlap.
	assert.False(t, window.OverlapsWindow("13:00", "17:00"))
	assert.False(t, window.OverlapsWindow("08:00", "09:00"))
	assert.False(t, window.OverlapsWindow("14:00", "15:00"))
}
