package domain

import "time"

// Default studio configuration
const (
	DefaultOpenTime        = "10:00"
	DefaultCloseTime       = "21:00"
	DefaultSlotStepMinutes = 15
	DefaultMinNotice       = 24 * time.Hour
	DefaultTimezone        = "Asia/Tokyo"
)

// Business validation constants
const (
	MaxNotesLength       = 500
	MaxChatMessageLength = 5000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// QuotaStatuses statuses counted toward the monthly session quota
var QuotaStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCancelledLate,
}

// ReliefReasons cancellation reasons eligible for relief
var ReliefReasons = []CancellationReason{
	ReasonSickness,
	ReasonBereavement,
}

// StartOfDay returns midnight of t in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthBounds returns [first day of month, first day of next month) of t in its location
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
