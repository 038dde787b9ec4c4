package send_member_message

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/service/chat"
	"github.com/m04kA/SMC-StudioBooking/internal/service/chat/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

const (
	msgInvalidMemberID    = "некорректный ID участника"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidText        = "текст сообщения пуст или слишком длинный"
	msgInvalidSticker     = "не указан packageId или stickerId"
	msgInvalidImage       = "ссылка на изображение должна быть https"
	msgInvalidType        = "некорректный тип сообщения, ожидается text, sticker или image"
	msgMemberNotFound     = "участник не найден"
	msgNoLineID           = "у участника не привязан LINE"
	msgDeliveryFailed     = "не удалось доставить сообщение"
)

type Handler struct {
	service ChatService
	logger  Logger
}

func NewHandler(service ChatService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/members/{memberId}/messages
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["memberId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /members/{memberId}/messages - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	var req SendMessageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /members/{memberId}/messages - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var (
		msg        *models.MessageResponse
		invalidMsg string
	)
	switch kind := ptr.Deref(req.Type, messageTypeText); kind {
	case messageTypeText:
		invalidMsg = msgInvalidText
		msg, err = h.service.SendToMember(r.Context(), memberID, req.Text)
	case messageTypeSticker:
		invalidMsg = msgInvalidSticker
		msg, err = h.service.SendStickerToMember(r.Context(), memberID, req.PackageID, req.StickerID)
	case messageTypeImage:
		invalidMsg = msgInvalidImage
		msg, err = h.service.SendImageToMember(r.Context(), memberID, req.OriginalContentURL, ptr.Deref(req.PreviewImageURL, ""))
	default:
		h.logger.Warn("POST /members/{memberId}/messages - Unknown message type: %s", kind)
		handlers.RespondBadRequest(w, msgInvalidType)
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			h.logger.Warn("POST /members/{memberId}/messages - Invalid message: member_id=%d, error=%v", memberID, err)
			handlers.RespondBadRequest(w, invalidMsg)

		case errors.Is(err, chat.ErrMemberNotFound):
			h.logger.Warn("POST /members/{memberId}/messages - Member not found: member_id=%d", memberID)
			handlers.RespondNotFound(w, msgMemberNotFound)

		case errors.Is(err, chat.ErrNoLineID):
			h.logger.Warn("POST /members/{memberId}/messages - No LINE id: member_id=%d", memberID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNoLineID)

		case errors.Is(err, chat.ErrDeliveryFailed):
			h.logger.Error("POST /members/{memberId}/messages - Delivery failed: member_id=%d, error=%v", memberID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgDeliveryFailed)

		default:
			h.logger.Error("POST /members/{memberId}/messages - Failed to send message: member_id=%d, error=%v", memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /members/{memberId}/messages - Message sent: member_id=%d, message_id=%d", memberID, msg.ID)
	handlers.RespondJSON(w, http.StatusCreated, msg)
}
