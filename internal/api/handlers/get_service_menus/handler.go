package get_service_menus

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
)

type Handler struct {
	service MenuService
	logger  Logger
}

func NewHandler(service MenuService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/service-menus
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListServiceMenus(r.Context())
	if err != nil {
		h.logger.Error("GET /service-menus - Failed to list menus: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /service-menus - Menus retrieved successfully: count=%d", len(result.Menus))
	handlers.RespondJSON(w, http.StatusOK, result.Menus)
}
