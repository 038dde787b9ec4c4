package domain

import "github.com/m04kA/SMC-StudioBooking/pkg/types"

// AvailableSlot a candidate start time with the staff whose calendar admits it
type AvailableSlot struct {
	StartTime types.TimeString
	StaffIDs  []int64
}

// AnyStaffFree returns true if at least one staff member can take the slot
func (s *AvailableSlot) AnyStaffFree() bool {
	return len(s.StaffIDs) > 0
}

