package line

import "errors"

var (
	// ErrNotConfigured возвращается, если не задан channel access token
	ErrNotConfigured = errors.New("line client: channel access token is not configured")

	// ErrEmptyRecipient возвращается, если не указан получатель
	ErrEmptyRecipient = errors.New("line client: empty recipient")

	// ErrUnauthorized возвращается при отклонённом токене
	ErrUnauthorized = errors.New("line client: unauthorized")

	// ErrInvalidRequest возвращается, если LINE отклонил запрос (400)
	ErrInvalidRequest = errors.New("line client: invalid request")

	// ErrUnavailable возвращается при недоступности LINE API
	ErrUnavailable = errors.New("line client: service unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("line client: internal error")
)
