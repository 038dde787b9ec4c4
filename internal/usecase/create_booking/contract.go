package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// MemberRepository интерфейс репозитория участников
type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	AdjustPrepaidBalance(ctx context.Context, memberID, delta int64, kind domain.PrepaidTransactionKind, bookingID *int64) (int64, error)
}

// MenuRepository интерфейс репозитория меню услуг
type MenuRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ServiceMenu, error)
}

// StaffRepository интерфейс репозитория тренеров
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	ListActive(ctx context.Context) ([]*domain.Staff, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetStaffBookings(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error)
	CountQuotaBookings(ctx context.Context, memberID int64, from, to time.Time) (int, error)
}

// ShiftResolver вычисляет рабочие интервалы тренера на дату
type ShiftResolver interface {
	Resolve(ctx context.Context, staffID int64, date time.Time) ([]domain.WorkingInterval, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache кэш доступности, сбрасываемый после записи
type AvailabilityCache interface {
	Invalidate(ctx context.Context, date time.Time) error
}

// EventPublisher издатель событий бронирования
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *domain.Booking) error
}

// Metrics бизнес-метрики бронирований
type Metrics interface {
	BookingCreated(autoAssigned bool, prepaid bool)
	BookingRejected(code string)
	PrepaidMoved(direction string, amount int64)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
