package bookings

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByMemberID(ctx context.Context, memberID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

// MenuRepository интерфейс репозитория меню услуг
type MenuRepository interface {
	ListActive(ctx context.Context) ([]*domain.ServiceMenu, error)
}

// MemberRepository интерфейс журнала предоплаченного баланса
type MemberRepository interface {
	GetTransactions(ctx context.Context, memberID int64) ([]*domain.PrepaidTransaction, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
