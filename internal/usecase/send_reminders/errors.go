package send_reminders

import "errors"

// ErrStoreUnavailable возвращается, если не удалось получить бронирования
var ErrStoreUnavailable = errors.New("send_reminders: store unavailable")
