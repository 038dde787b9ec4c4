package send_reminders

import (
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const defaultMenuName = "ご予約"

// buildMessage текст напоминания о завтрашнем занятии
func buildMessage(b *domain.Booking) string {
	menuName := defaultMenuName
	if b.ServiceMenuName != nil && *b.ServiceMenuName != "" {
		menuName = *b.ServiceMenuName
	}

	return fmt.Sprintf(
		"🌟 明日のご予約リマインド 🌟\n\n明日 %s より、以下のご予約を承っております。\n\n📋 内容: %s\n👤 担当: %s\n\nご来店をお待ちしております！",
		b.StartTime.Format("15:04"), menuName, b.StaffName,
	)
}
