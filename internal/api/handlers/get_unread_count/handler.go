package get_unread_count

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
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

// Handle GET /api/v1/messages/unread-count
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.UnreadCount(r.Context())
	if err != nil {
		h.logger.Error("GET /messages/unread-count - Failed to count unread messages: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /messages/unread-count - Unread messages: count=%d", result.Count)
	handlers.RespondJSON(w, http.StatusOK, result)
}
