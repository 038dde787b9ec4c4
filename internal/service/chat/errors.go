package chat

import "errors"

var (
	// ErrMemberNotFound возвращается, когда участник не найден
	ErrMemberNotFound = errors.New("chat: member not found")

	// ErrNoLineID возвращается, если у участника не привязан LINE
	ErrNoLineID = errors.New("chat: member has no LINE id")

	// ErrInvalidInput возвращается при некорректном тексте сообщения
	ErrInvalidInput = errors.New("chat: invalid input data")

	// ErrDeliveryFailed возвращается, если LINE не принял сообщение
	ErrDeliveryFailed = errors.New("chat: message delivery failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("chat: internal error")
)
