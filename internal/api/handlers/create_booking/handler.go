package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartTime   = "некорректное время начала, ожидается RFC3339"
	msgMissingUserID      = "отсутствует ID участника"
	msgMemberNotFound     = "участник не найден"
	msgMenuInvalid        = "меню услуги не найдено или неактивно"
	msgLookaheadExceeded  = "дата занятия за пределами горизонта бронирования плана"
	msgNoticeTooShort     = "до начала занятия осталось меньше 24 часов"
	msgQuotaExceeded      = "исчерпан месячный лимит занятий"
	msgNoStaffAvailable   = "нет свободного тренера на выбранное время"
	msgInvalidInput       = "некорректные данные бронирования"
	msgStoreUnavailable   = "хранилище временно недоступно"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(memberID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		code := createBooking.ErrorCode(err)
		switch {
		case errors.Is(err, createBooking.ErrMemberNotFound):
			h.logger.Warn("POST /bookings - Member not found: member_id=%d", memberID)
			handlers.RespondErrorCode(w, http.StatusNotFound, code, msgMemberNotFound)

		case errors.Is(err, createBooking.ErrMenuInvalid):
			h.logger.Warn("POST /bookings - Menu invalid: member_id=%d, menu_id=%d", memberID, req.ServiceMenuID)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, code, msgMenuInvalid)

		case errors.Is(err, createBooking.ErrLookaheadExceeded):
			h.logger.Warn("POST /bookings - Lookahead exceeded: member_id=%d, start=%s", memberID, req.StartTime)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, code, msgLookaheadExceeded)

		case errors.Is(err, createBooking.ErrNoticeTooShort):
			h.logger.Warn("POST /bookings - Notice too short: member_id=%d, start=%s", memberID, req.StartTime)
			handlers.RespondErrorCode(w, http.StatusUnprocessableEntity, code, msgNoticeTooShort)

		case errors.Is(err, createBooking.ErrQuotaExceeded):
			h.logger.Warn("POST /bookings - Quota exceeded: member_id=%d", memberID)
			handlers.RespondErrorCode(w, http.StatusConflict, code, msgQuotaExceeded)

		case errors.Is(err, createBooking.ErrNoStaffAvailable):
			h.logger.Warn("POST /bookings - No staff available: member_id=%d, start=%s", memberID, req.StartTime)
			handlers.RespondErrorCode(w, http.StatusConflict, code, msgNoStaffAvailable)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: member_id=%d, error=%v", memberID, err)
			handlers.RespondErrorCode(w, http.StatusBadRequest, code, msgInvalidInput)

		case errors.Is(err, createBooking.ErrStoreUnavailable):
			h.logger.Error("POST /bookings - Store unavailable: member_id=%d, error=%v", memberID, err)
			handlers.RespondErrorCode(w, http.StatusServiceUnavailable, code, msgStoreUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: member_id=%d, error=%v", memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, member_id=%d, staff_id=%d",
		result.ID, memberID, result.StaffID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
