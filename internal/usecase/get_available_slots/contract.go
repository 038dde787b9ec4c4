package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/cache/availability"
)

// MenuRepository интерфейс репозитория меню услуг
type MenuRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ServiceMenu, error)
}

// StaffRepository интерфейс репозитория тренеров
type StaffRepository interface {
	ListActive(ctx context.Context) ([]*domain.Staff, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetStaffBookings(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error)
}

// ShiftResolver вычисляет рабочие интервалы тренера на дату
type ShiftResolver interface {
	Resolve(ctx context.Context, staffID int64, date time.Time) ([]domain.WorkingInterval, error)
}

// Cache кэш рассчитанной доступности
type Cache interface {
	Get(ctx context.Context, key availability.Key) (*availability.Snapshot, int64, error)
	Set(ctx context.Context, key availability.Key, version int64, snapshot *availability.Snapshot) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
