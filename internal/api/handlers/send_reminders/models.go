package send_reminders

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	sendReminders "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
)

// RemindersResponse HTTP response model
type RemindersResponse struct {
	Success   bool           `json:"success"`
	Date      string         `json:"date"`
	Processed int            `json:"processed"`
	Sent      int            `json:"sent"`
	Details   []ReminderInfo `json:"details"`
}

// ReminderInfo результат по одному бронированию
type ReminderInfo struct {
	BookingID int64  `json:"bookingId"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *sendReminders.Response) *RemindersResponse {
	details := make([]ReminderInfo, len(resp.Details))
	for i, d := range resp.Details {
		details[i] = ReminderInfo{BookingID: d.BookingID, Recipient: d.Recipient, Status: d.Status}
	}
	return &RemindersResponse{
		Success:   true,
		Date:      resp.Date.Format(domain.DateFormat),
		Processed: resp.Processed,
		Sent:      resp.Sent,
		Details:   details,
	}
}
