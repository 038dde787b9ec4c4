package create_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Settings правила студии, применяемые при бронировании
type Settings struct {
	Location          *time.Location // Часовой пояс студии
	MinNotice         time.Duration  // Минимальный срок до начала занятия
	PlanLookaheadDays map[string]int // Переопределения горизонта бронирования по планам

	OpenTime        types.TimeString // Первое время сетки слотов
	CloseTime       types.TimeString // Последнее время сетки слотов
	SlotStepMinutes int              // Шаг сетки слотов
}

// Request модель запроса на создание бронирования
type Request struct {
	MemberID      int64     // ID участника (из заголовка авторизации)
	ServiceMenuID int64     // ID меню услуги
	StartTime     time.Time // Начало занятия
	StaffID       *int64    // Желаемый тренер (опционально)
	Notes         *string   // Заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	MemberID        int64
	StaffID         int64
	ServiceMenuID   *int64
	StartTime       time.Time
	EndTime         time.Time
	Status          string
	PaidFromPrepaid int64
	BalanceAfter    *int64 // Остаток предоплаты, только для предоплаченных планов
	AutoAssigned    bool   // Тренер выбран автоматически
	Notes           *string
	CreatedAt       time.Time
}

func toResponse(b *domain.Booking, balanceAfter *int64, autoAssigned bool) *Response {
	return &Response{
		ID:              b.ID,
		MemberID:        b.MemberID,
		StaffID:         b.StaffID,
		ServiceMenuID:   b.ServiceMenuID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		PaidFromPrepaid: b.PaidFromPrepaid,
		BalanceAfter:    balanceAfter,
		AutoAssigned:    autoAssigned,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
	}
}
