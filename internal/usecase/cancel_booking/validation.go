package cancel_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}

	if req.Reason != nil && !req.Reason.IsValid() {
		return fmt.Errorf("%w: unknown cancellation reason %q", ErrInvalidInput, *req.Reason)
	}

	return nil
}

// decideStatus определяет статус отмены по времени до начала занятия
func decideStatus(start, now time.Time, minNotice time.Duration) domain.BookingStatus {
	if start.Sub(now) >= minNotice {
		return domain.StatusCancelled
	}
	return domain.StatusCancelledLate
}

// effectiveReason подставляет причину по умолчанию для итогового статуса
func effectiveReason(reason *domain.CancellationReason, status domain.BookingStatus) domain.CancellationReason {
	if reason != nil {
		return *reason
	}
	if status == domain.StatusCancelled {
		return domain.ReasonNormal
	}
	return domain.ReasonOther
}
