package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	memberRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/member"
	"github.com/m04kA/SMC-StudioBooking/internal/service/chat/models"
)

// Service сервис переписки администратора с участниками через LINE
type Service struct {
	memberRepo MemberRepository
	chatRepo   ChatRepository
	messenger  Messenger
	logger     Logger
}

// NewService создает новый экземпляр сервиса чата
func NewService(memberRepo MemberRepository, chatRepo ChatRepository, messenger Messenger, logger Logger) *Service {
	return &Service{
		memberRepo: memberRepo,
		chatRepo:   chatRepo,
		messenger:  messenger,
		logger:     logger,
	}
}

// Текст, сохраняемый в журнал чата вместо нетекстовых сообщений
const (
	stickerLogText = "[スタンプ送信]"
	imageLogText   = "[画像送信]"
)

// SendToMember отправляет сообщение участнику и сохраняет его в журнал чата.
// В журнал попадают только доставленные сообщения
func (s *Service) SendToMember(ctx context.Context, memberID int64, text string) (*models.MessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > domain.MaxChatMessageLength {
		return nil, fmt.Errorf("%w: message must be 1..%d characters", ErrInvalidInput, domain.MaxChatMessageLength)
	}

	return s.deliver(ctx, "SendToMember", memberID, text, func(to string) error {
		return s.messenger.PushText(ctx, to, text)
	})
}

// SendStickerToMember отправляет стикер LINE участнику
func (s *Service) SendStickerToMember(ctx context.Context, memberID int64, packageID, stickerID string) (*models.MessageResponse, error) {
	packageID, stickerID = strings.TrimSpace(packageID), strings.TrimSpace(stickerID)
	if packageID == "" || stickerID == "" {
		return nil, fmt.Errorf("%w: packageId and stickerId are required", ErrInvalidInput)
	}

	return s.deliver(ctx, "SendStickerToMember", memberID, stickerLogText, func(to string) error {
		return s.messenger.PushSticker(ctx, to, packageID, stickerID)
	})
}

// SendImageToMember отправляет изображение участнику. Без превью используется оригинал
func (s *Service) SendImageToMember(ctx context.Context, memberID int64, originalURL, previewURL string) (*models.MessageResponse, error) {
	if previewURL == "" {
		previewURL = originalURL
	}
	for _, raw := range []string{originalURL, previewURL} {
		if err := validateImageURL(raw); err != nil {
			return nil, err
		}
	}

	return s.deliver(ctx, "SendImageToMember", memberID, imageLogText, func(to string) error {
		return s.messenger.PushImage(ctx, to, originalURL, previewURL)
	})
}

// validateImageURL LINE принимает только HTTPS-ссылки на изображения
func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: image url must be an absolute https url", ErrInvalidInput)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, op string, memberID int64, logText string, push func(to string) error) (*models.MessageResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, memberRepo.ErrMemberNotFound) {
			s.logger.Warn("%s: member=%d not found", op, memberID)
			return nil, ErrMemberNotFound
		}
		s.logger.Error("%s: failed to get member=%d: %v", op, memberID, err)
		return nil, fmt.Errorf("%w: %s - get member: %v", ErrInternal, op, err)
	}

	if !member.HasLineID() {
		s.logger.Warn("%s: member=%d has no LINE id", op, memberID)
		return nil, ErrNoLineID
	}

	if err := push(*member.LineUserID); err != nil {
		s.logger.Error("%s: failed to push message to member=%d: %v", op, memberID, err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	msg, err := s.chatRepo.Create(ctx, &domain.ChatMessage{
		MemberID: memberID,
		Sender:   domain.SenderAdmin,
		Content:  logText,
		IsRead:   true,
	})
	if err != nil {
		// Сообщение уже доставлено, повторять отправку нельзя
		s.logger.Error("%s: message delivered to member=%d but not logged: %v", op, memberID, err)
		return nil, fmt.Errorf("%w: %s - save message: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: message id=%d sent to member=%d", op, msg.ID, memberID)
	return models.FromDomainMessage(msg), nil
}

// UnreadCount возвращает количество непрочитанных сообщений от участников
func (s *Service) UnreadCount(ctx context.Context) (*models.UnreadCountResponse, error) {
	count, err := s.chatRepo.CountUnread(ctx)
	if err != nil {
		s.logger.Error("UnreadCount: repository error: %v", err)
		return nil, fmt.Errorf("%w: UnreadCount - repository error: %v", ErrInternal, err)
	}
	return &models.UnreadCountResponse{Count: count}, nil
}
