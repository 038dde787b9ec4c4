package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	HasReliefCancellation(ctx context.Context, memberID int64, from, to time.Time) (bool, error)
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason domain.CancellationReason, reliefApplied bool, cancelledAt time.Time) error
}

// MemberRepository интерфейс репозитория участников
type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	AdjustPrepaidBalance(ctx context.Context, memberID, delta int64, kind domain.PrepaidTransactionKind, bookingID *int64) (int64, error)
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
	PublishBookingCancelled(ctx context.Context, b *domain.Booking, refunded int64) error
}

// Metrics бизнес-метрики отмен
type Metrics interface {
	BookingCancelled(status string, relief bool)
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
