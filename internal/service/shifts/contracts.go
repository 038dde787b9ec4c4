package shifts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// StaffRepository источник смен и исключений из расписания
type StaffRepository interface {
	GetShifts(ctx context.Context, staffID int64, weekday time.Weekday) ([]domain.Shift, error)
	GetOverrides(ctx context.Context, staffID int64, date time.Time) ([]domain.ShiftOverride, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
