package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
)

const (
	msgMissingDate          = "дата обязательна"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingServiceMenuID = "ID меню услуги обязателен"
	msgInvalidServiceMenuID = "некорректный ID меню услуги"
	msgInvalidStaffID       = "некорректный ID тренера"
	msgMenuInvalid          = "меню услуги не найдено или неактивно"
	msgStoreUnavailable     = "хранилище временно недоступно"
)

const codeMenuInvalid = "MenuInvalid"

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/available-slots
// Query params: date (required, YYYY-MM-DD), serviceMenuId (required), staffId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	menuIDStr := query.Get("serviceMenuId")
	if menuIDStr == "" {
		h.logger.Warn("GET /available-slots - Missing serviceMenuId")
		handlers.RespondBadRequest(w, msgMissingServiceMenuID)
		return
	}
	menuID, err := strconv.ParseInt(menuIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid serviceMenuId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceMenuID)
		return
	}

	var staffID *int64
	if staffIDStr := query.Get("staffId"); staffIDStr != "" {
		id, err := strconv.ParseInt(staffIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /available-slots - Invalid staffId: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStaffID)
			return
		}
		staffID = &id
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		Date:          date,
		ServiceMenuID: menuID,
		StaffID:       staffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrMenuInvalid):
			h.logger.Warn("GET /available-slots - Menu invalid: menu_id=%d", menuID)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, codeMenuInvalid, msgMenuInvalid)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceMenuID)

		case errors.Is(err, getAvailableSlots.ErrStoreUnavailable):
			h.logger.Error("GET /available-slots - Store unavailable: date=%s, error=%v", dateStr, err)
			handlers.RespondErrorCode(w, http.StatusServiceUnavailable, handlers.CodeUnavailable, msgStoreUnavailable)

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: date=%s, menu_id=%d, error=%v", dateStr, menuID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Slots calculated: date=%s, menu_id=%d, slots=%d, cached=%t",
		dateStr, menuID, len(result.Slots), result.Cached)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
