package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	cancelBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model. Тело необязательно
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"` // NORMAL | SICKNESS | BEREAVEMENT | OTHER
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID     int64  `json:"bookingId"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	ReliefApplied bool   `json:"reliefApplied"`
	Refunded      int64  `json:"refunded"`
	BalanceAfter  *int64 `json:"balanceAfter,omitempty"`
	CancelledAt   string `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, memberID int64) *cancelBooking.Request {
	req := &cancelBooking.Request{
		BookingID: bookingID,
		MemberID:  memberID,
	}
	if r.Reason != nil && *r.Reason != "" {
		reason := domain.CancellationReason(*r.Reason)
		req.Reason = &reason
	}
	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:     resp.BookingID,
		Status:        resp.Status,
		Reason:        resp.Reason,
		ReliefApplied: resp.ReliefApplied,
		Refunded:      resp.Refunded,
		BalanceAfter:  resp.BalanceAfter,
		CancelledAt:   resp.CancelledAt.Format(time.RFC3339),
	}
}
