package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_Overlaps(t *testing.T) {
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: base, EndTime: base.Add(time.Hour)}

	assert.True(t, b.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.False(t, b.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)), "touching intervals do not overlap")
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base))
}

func TestBooking_ConsumesQuota(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusConfirmed}).ConsumesQuota())
	assert.True(t, (&Booking{Status: StatusCancelledLate}).ConsumesQuota())
	assert.False(t, (&Booking{Status: StatusCancelled}).ConsumesQuota())
}

func TestMonthBounds(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	start, end := MonthBounds(time.Date(2026, 12, 15, 8, 0, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, loc), end)
}
