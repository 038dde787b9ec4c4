package chat

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// MemberRepository интерфейс репозитория участников
type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
}

// ChatRepository интерфейс журнала чата
type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	CountUnread(ctx context.Context) (int, error)
}

// Messenger канал доставки сообщений участнику
type Messenger interface {
	PushText(ctx context.Context, to, text string) error
	PushSticker(ctx context.Context, to, packageID, stickerID string) error
	PushImage(ctx context.Context, to, originalURL, previewURL string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
