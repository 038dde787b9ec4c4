package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceMenuID int64   `json:"serviceMenuId"`
	StartTime     string  `json:"startTime"` // RFC3339, "2025-10-15T10:00:00+09:00"
	StaffID       *int64  `json:"staffId,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	MemberID        int64   `json:"memberId"`
	StaffID         int64   `json:"staffId"`
	ServiceMenuID   *int64  `json:"serviceMenuId,omitempty"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Status          string  `json:"status"`
	PaidFromPrepaid int64   `json:"paidFromPrepaid"`
	BalanceAfter    *int64  `json:"balanceAfter,omitempty"`
	AutoAssigned    bool    `json:"autoAssigned"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(memberID int64) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		MemberID:      memberID,
		ServiceMenuID: r.ServiceMenuID,
		StartTime:     startTime,
		StaffID:       r.StaffID,
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		MemberID:        resp.MemberID,
		StaffID:         resp.StaffID,
		ServiceMenuID:   resp.ServiceMenuID,
		StartTime:       resp.StartTime.Format(time.RFC3339),
		EndTime:         resp.EndTime.Format(time.RFC3339),
		Status:          resp.Status,
		PaidFromPrepaid: resp.PaidFromPrepaid,
		BalanceAfter:    resp.BalanceAfter,
		AutoAssigned:    resp.AutoAssigned,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
