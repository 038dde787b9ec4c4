package send_reminders

import "time"

// Результаты отправки по бронированию
const (
	ResultSent     = "sent"
	ResultFailed   = "failed"
	ResultNoLineID = "no_line_id"
)

// Settings параметры рассылки
type Settings struct {
	Location    *time.Location // Часовой пояс студии: "завтра" считается в нём
	Concurrency int            // Максимум одновременных отправок
}

// Detail результат по одному бронированию
type Detail struct {
	BookingID int64
	Recipient string
	Status    string
}

// Response итог рассылки
type Response struct {
	Date      time.Time
	Processed int
	Sent      int
	Details   []Detail
}
