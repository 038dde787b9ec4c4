package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// StatusAll значение фильтра, возвращающее бронирования в любом статусе
const StatusAll = "all"

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetMemberBookingsRequest запрос на получение бронирований участника
type GetMemberBookingsRequest struct {
	CallerID int64   `json:"callerId"`
	MemberID int64   `json:"memberId"`
	Status   *string `json:"status,omitempty"` // по умолчанию confirmed, "all" - все
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64   `json:"id"`
	MemberID           int64   `json:"memberId"`
	StaffID            int64   `json:"staffId"`
	StaffName          string  `json:"staffName"`
	ServiceMenuID      *int64  `json:"serviceMenuId,omitempty"`
	ServiceMenuName    *string `json:"serviceMenuName,omitempty"`
	StartTime          string  `json:"startTime"` // RFC3339
	EndTime            string  `json:"endTime"`   // RFC3339
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	PaidFromPrepaid    int64   `json:"paidFromPrepaid"`
	ReliefApplied      bool    `json:"reliefApplied"`
	Notes              *string `json:"notes,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ServiceMenuResponse меню услуги
type ServiceMenuResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	Price           int64  `json:"price"`
}

// ServiceMenuListResponse список активных меню
type ServiceMenuListResponse struct {
	Menus []ServiceMenuResponse `json:"menus"`
}

// PrepaidTransactionResponse запись журнала предоплаченного баланса
type PrepaidTransactionResponse struct {
	ID           int64     `json:"id"`
	BookingID    *int64    `json:"bookingId,omitempty"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"` // отрицательная для списаний
	BalanceAfter int64     `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PrepaidTransactionListResponse журнал движения баланса
type PrepaidTransactionListResponse struct {
	Transactions []PrepaidTransactionResponse `json:"transactions"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		MemberID:        b.MemberID,
		StaffID:         b.StaffID,
		StaffName:       b.StaffName,
		ServiceMenuID:   b.ServiceMenuID,
		ServiceMenuName: b.ServiceMenuName,
		StartTime:       b.StartTime.Format(time.RFC3339),
		EndTime:         b.EndTime.Format(time.RFC3339),
		Status:          string(b.Status),
		PaidFromPrepaid: b.PaidFromPrepaid,
		ReliefApplied:   b.ReliefApplied,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.CancellationReason != nil {
		reason := string(*b.CancellationReason)
		resp.CancellationReason = &reason
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}
	return resp
}

// FromDomainMenuList конвертирует список меню в DTO
func FromDomainMenuList(menus []*domain.ServiceMenu) *ServiceMenuListResponse {
	resp := &ServiceMenuListResponse{
		Menus: make([]ServiceMenuResponse, 0, len(menus)),
	}
	for _, m := range menus {
		resp.Menus = append(resp.Menus, ServiceMenuResponse{
			ID:              m.ID,
			Name:            m.Name,
			DurationMinutes: m.DurationMinutes,
			Price:           m.Price,
		})
	}
	return resp
}

// FromDomainTransactionList конвертирует журнал баланса в DTO
func FromDomainTransactionList(txs []*domain.PrepaidTransaction) *PrepaidTransactionListResponse {
	resp := &PrepaidTransactionListResponse{
		Transactions: make([]PrepaidTransactionResponse, 0, len(txs)),
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, PrepaidTransactionResponse{
			ID:           tx.ID,
			BookingID:    tx.BookingID,
			Kind:         string(tx.Kind),
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			CreatedAt:    tx.CreatedAt,
		})
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку фильтра в статус.
// nil означает "все статусы"
func ToDomainBookingStatus(status *string) (*domain.BookingStatus, error) {
	if status == nil || *status == "" {
		s := domain.StatusConfirmed
		return &s, nil
	}
	if *status == StatusAll {
		return nil, nil
	}

	s := domain.BookingStatus(*status)
	switch s {
	case domain.StatusConfirmed, domain.StatusCancelled, domain.StatusCancelledLate:
		return &s, nil
	}
	return nil, ErrInvalidStatus
}
