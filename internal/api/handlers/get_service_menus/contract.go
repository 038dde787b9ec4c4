package get_service_menus

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
)

type MenuService interface {
	ListServiceMenus(ctx context.Context) (*models.ServiceMenuListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
