package get_prepaid_transactions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgMissingUserID   = "отсутствует ID участника"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/members/{memberId}/prepaid-transactions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["memberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /members/{memberId}/prepaid-transactions - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /members/{memberId}/prepaid-transactions - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetPrepaidTransactions(r.Context(), callerID, memberID)
	if err != nil {
		if errors.Is(err, bookings.ErrAccessDenied) {
			h.logger.Warn("GET /members/{memberId}/prepaid-transactions - Access denied: caller=%d, member_id=%d", callerID, memberID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /members/{memberId}/prepaid-transactions - Failed to get transactions: member_id=%d, error=%v",
			memberID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /members/{memberId}/prepaid-transactions - Transactions retrieved: member_id=%d, count=%d",
		memberID, len(result.Transactions))
	handlers.RespondJSON(w, http.StatusOK, result.Transactions)
}
