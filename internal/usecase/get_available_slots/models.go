package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Settings часы работы студии и шаг сетки слотов
type Settings struct {
	Location        *time.Location
	OpenTime        types.TimeString
	CloseTime       types.TimeString
	SlotStepMinutes int
}

// Request модель запроса на получение доступных слотов
type Request struct {
	Date          time.Time // Дата (время суток игнорируется)
	ServiceMenuID int64     // ID меню услуги
	StaffID       *int64    // Фильтр по тренеру (опционально)
}

// Slot время начала и тренеры, которые могут его принять
type Slot struct {
	StartTime    types.TimeString
	StaffIDs     []int64
	AnyStaffFree bool
}

// Response модель ответа с доступными слотами.
// Сроки уведомления и горизонт плана здесь не применяются
type Response struct {
	Date            time.Time
	ServiceMenuID   int64
	DurationMinutes int
	Slots           []Slot                       // Только времена, где свободен хотя бы один тренер
	StaffSlots      map[int64][]types.TimeString // Свободные времена каждого рассмотренного тренера
	Cached          bool
}
