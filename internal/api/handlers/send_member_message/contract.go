package send_member_message

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/service/chat/models"
)

type ChatService interface {
	SendToMember(ctx context.Context, memberID int64, text string) (*models.MessageResponse, error)
	SendStickerToMember(ctx context.Context, memberID int64, packageID, stickerID string) (*models.MessageResponse, error)
	SendImageToMember(ctx context.Context, memberID int64, originalURL, previewURL string) (*models.MessageResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
