package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed     BookingStatus = "confirmed"
	StatusCancelled     BookingStatus = "cancelled"      // not counted toward the quota
	StatusCancelledLate BookingStatus = "cancelled_late" // counted toward the quota
)

// CancellationReason reason supplied on cancellation
type CancellationReason string

const (
	ReasonNormal      CancellationReason = "NORMAL"
	ReasonSickness    CancellationReason = "SICKNESS"
	ReasonBereavement CancellationReason = "BEREAVEMENT"
	ReasonOther       CancellationReason = "OTHER"
)

// IsValid returns true for a known reason
func (r CancellationReason) IsValid() bool {
	switch r {
	case ReasonNormal, ReasonSickness, ReasonBereavement, ReasonOther:
		return true
	}
	return false
}

// QualifiesForRelief returns true for reasons that may forgive a late cancellation
func (r CancellationReason) QualifiesForRelief() bool {
	return r == ReasonSickness || r == ReasonBereavement
}

// Booking represents a session booked by a member with a staff member
type Booking struct {
	ID                 int64
	MemberID           int64
	StaffID            int64
	ServiceMenuID      *int64
	StartTime          time.Time
	EndTime            time.Time
	Status             BookingStatus
	CancellationReason *CancellationReason
	PaidFromPrepaid    int64 // immutable after creation
	ReliefApplied      bool
	Notes              *string
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Denormalized for reads
	MemberName      string
	MemberLineID    *string
	StaffName       string
	ServiceMenuName *string
}

// IsActive returns true if the booking occupies the staff calendar
func (b *Booking) IsActive() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking is in a terminal state
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled || b.Status == StatusCancelledLate
}

// ConsumesQuota returns true if the booking counts toward the monthly quota
func (b *Booking) ConsumesQuota() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCancelledLate
}

// Overlaps returns true if [start, end) intersects the booking interval
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && b.StartTime.Before(end)
}
