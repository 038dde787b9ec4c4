package domain

import "time"

// ServiceMenu a bookable session type
type ServiceMenu struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           int64
	IsActive        bool
}

// Duration returns how long a booking of this menu occupies a staff calendar
func (m *ServiceMenu) Duration() time.Duration {
	return time.Duration(m.DurationMinutes) * time.Minute
}
