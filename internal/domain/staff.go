package domain

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Staff represents a trainer
type Staff struct {
	ID        int64
	Name      string
	UnitPrice int64 // price per session, used as the prepaid debit amount
	IsActive  bool
}

// Shift recurring weekly working interval of a staff member
type Shift struct {
	ID        int64
	StaffID   int64
	DayOfWeek time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ShiftOverride working interval for a specific date that supersedes the recurring shifts.
// IsClosed marks the staff as unavailable for the whole day.
type ShiftOverride struct {
	ID        int64
	StaffID   int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	IsClosed  bool
}

// WorkingInterval half-open interval [Start, End) of a working day
type WorkingInterval struct {
	Start types.TimeString
	End   types.TimeString
}

// IsValid returns true if the interval is well-formed and non-empty
func (w WorkingInterval) IsValid() bool {
	return w.Start.Validate() == nil && w.End.Validate() == nil && w.Start.IsBefore(w.End)
}

// On returns absolute bounds of the interval on the given date
func (w WorkingInterval) On(date time.Time) (time.Time, time.Time) {
	return w.Start.OnDate(date), w.End.OnDate(date)
}
