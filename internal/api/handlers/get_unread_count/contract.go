package get_unread_count

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/service/chat/models"
)

type ChatService interface {
	UnreadCount(ctx context.Context) (*models.UnreadCountResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
