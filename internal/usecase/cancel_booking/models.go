package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Settings правила студии, применяемые при отмене
type Settings struct {
	Location  *time.Location // Часовой пояс студии: границы месяца для льготы
	MinNotice time.Duration  // Порог бесплатной отмены
}

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64                      // ID бронирования
	MemberID  int64                      // ID участника (из заголовка авторизации)
	Reason    *domain.CancellationReason // Причина отмены (опционально)
}

// Response результат отмены
type Response struct {
	BookingID     int64
	Status        string
	Reason        string
	ReliefApplied bool
	Refunded      int64
	BalanceAfter  *int64
	CancelledAt   time.Time
}
