package send_reminders

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	sendReminders "github.com/m04kA/SMC-StudioBooking/internal/usecase/send_reminders"
)

const msgStoreUnavailable = "хранилище временно недоступно"

type Handler struct {
	useCase SendRemindersUseCase
	logger  Logger
}

func NewHandler(useCase SendRemindersUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/internal/cron/reminders
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		if errors.Is(err, sendReminders.ErrStoreUnavailable) {
			h.logger.Error("GET /internal/cron/reminders - Store unavailable: %v", err)
			handlers.RespondErrorCode(w, http.StatusServiceUnavailable, handlers.CodeUnavailable, msgStoreUnavailable)
			return
		}
		h.logger.Error("GET /internal/cron/reminders - Failed to send reminders: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /internal/cron/reminders - Reminders processed: date=%s, processed=%d, sent=%d",
		result.Date.Format(domain.DateFormat), result.Processed, result.Sent)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
