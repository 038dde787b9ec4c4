package create_booking

import "errors"

var (
	// ErrMemberNotFound возвращается, когда участник не найден
	ErrMemberNotFound = errors.New("create_booking: member not found")

	// ErrMenuInvalid возвращается, когда меню не найдено или неактивно
	ErrMenuInvalid = errors.New("create_booking: service menu is invalid")

	// ErrLookaheadExceeded возвращается, когда начало позже горизонта бронирования плана
	ErrLookaheadExceeded = errors.New("create_booking: start time is beyond the plan lookahead")

	// ErrNoticeTooShort возвращается, когда до начала меньше минимального срока уведомления
	ErrNoticeTooShort = errors.New("create_booking: notice is too short")

	// ErrQuotaExceeded возвращается, когда исчерпан месячный лимит занятий
	ErrQuotaExceeded = errors.New("create_booking: monthly quota exceeded")

	// ErrNoStaffAvailable возвращается, когда ни один тренер не может принять бронирование
	ErrNoStaffAvailable = errors.New("create_booking: no staff available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrStoreUnavailable возвращается при ошибке хранилища (транзакция откатывается)
	ErrStoreUnavailable = errors.New("create_booking: store unavailable")
)

// Коды отказов для метрик и API
const (
	CodeMemberNotFound    = "MemberNotFound"
	CodeMenuInvalid       = "MenuInvalid"
	CodeLookaheadExceeded = "LookaheadExceeded"
	CodeNoticeTooShort    = "NoticeTooShort"
	CodeQuotaExceeded     = "QuotaExceeded"
	CodeNoStaffAvailable  = "NoStaffAvailable"
	CodeInvalidInput      = "InvalidInput"
	CodeStoreUnavailable  = "StoreUnavailable"
)

// ErrorCode возвращает код отказа для ошибки use case
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		return CodeMemberNotFound
	case errors.Is(err, ErrMenuInvalid):
		return CodeMenuInvalid
	case errors.Is(err, ErrLookaheadExceeded):
		return CodeLookaheadExceeded
	case errors.Is(err, ErrNoticeTooShort):
		return CodeNoticeTooShort
	case errors.Is(err, ErrQuotaExceeded):
		return CodeQuotaExceeded
	case errors.Is(err, ErrNoStaffAvailable):
		return CodeNoStaffAvailable
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeStoreUnavailable
	}
}
