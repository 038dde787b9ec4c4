package get_available_slots

import (
	"strconv"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string              `json:"date"`
	ServiceMenuID   int64               `json:"serviceMenuId"`
	DurationMinutes int                 `json:"durationMinutes"`
	Slots           []AvailableSlot     `json:"slots"`
	StaffSlots      map[string][]string `json:"staffSlots"` // ID тренера -> свободные времена
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime    string  `json:"startTime"`
	StaffIDs     []int64 `json:"staffIds"`
	AnyStaffFree bool    `json:"anyStaffFree"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:    slot.StartTime.String(),
			StaffIDs:     slot.StaffIDs,
			AnyStaffFree: slot.AnyStaffFree,
		}
	}

	staffSlots := make(map[string][]string, len(resp.StaffSlots))
	for id, free := range resp.StaffSlots {
		times := make([]string, len(free))
		for i, t := range free {
			times[i] = t.String()
		}
		staffSlots[strconv.FormatInt(id, 10)] = times
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceMenuID:   resp.ServiceMenuID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
		StaffSlots:      staffSlots,
	}
}
