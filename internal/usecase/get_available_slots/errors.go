package get_available_slots

import "errors"

var (
	// ErrMenuInvalid возвращается, когда меню не найдено или неактивно
	ErrMenuInvalid = errors.New("get_available_slots: service menu is invalid")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrStoreUnavailable возвращается при ошибке чтения расписания или бронирований
	ErrStoreUnavailable = errors.New("get_available_slots: store unavailable")
)
