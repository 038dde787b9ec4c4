package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	cache "github.com/m04kA/SMC-StudioBooking/internal/infra/cache/availability"
	menuRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/servicemenu"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots")

// maxParallelStaff ограничение параллельных запросов к хранилищу
const maxParallelStaff = 8

// UseCase use case для получения доступных слотов
type UseCase struct {
	menuRepo    MenuRepository
	staffRepo   StaffRepository
	bookingRepo BookingRepository
	shifts      ShiftResolver
	cache       Cache
	settings    Settings
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	menuRepo MenuRepository,
	staffRepo StaffRepository,
	bookingRepo BookingRepository,
	shifts ShiftResolver,
	cache Cache,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.OpenTime.IsZero() {
		settings.OpenTime = domain.DefaultOpenTime
	}
	if settings.CloseTime.IsZero() {
		settings.CloseTime = domain.DefaultCloseTime
	}
	if settings.SlotStepMinutes <= 0 {
		settings.SlotStepMinutes = domain.DefaultSlotStepMinutes
	}
	return &UseCase{
		menuRepo:    menuRepo,
		staffRepo:   staffRepo,
		bookingRepo: bookingRepo,
		shifts:      shifts,
		cache:       cache,
		settings:    settings,
		logger:      logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "GetAvailableSlots")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	y, m, d := req.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, uc.settings.Location)
	span.SetAttributes(
		attribute.String("date", date.Format(domain.DateFormat)),
		attribute.Int64("service_menu.id", req.ServiceMenuID),
	)

	uc.logger.Info("GetAvailableSlots: date=%s, menu=%d, staff=%v",
		date.Format(domain.DateFormat), req.ServiceMenuID, req.StaffID)

	// 2. Меню
	menu, err := uc.menuRepo.GetByID(ctx, req.ServiceMenuID)
	if err != nil {
		if errors.Is(err, menuRepo.ErrMenuNotFound) {
			uc.logger.Warn("GetAvailableSlots: menu id=%d not found", req.ServiceMenuID)
			return nil, ErrMenuInvalid
		}
		uc.logger.Error("GetAvailableSlots: failed to get menu id=%d: %v", req.ServiceMenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu: %v", ErrStoreUnavailable, err)
	}
	if !menu.IsActive || menu.DurationMinutes <= 0 {
		uc.logger.Warn("GetAvailableSlots: menu id=%d is inactive", req.ServiceMenuID)
		return nil, ErrMenuInvalid
	}

	// 3. Кэш
	key := cache.Key{Date: date, MenuID: menu.ID, StaffID: req.StaffID}
	snapshot, version, err := uc.cache.Get(ctx, key)
	cacheable := true
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return uc.toResponse(date, menu, snapshot, true), nil
	case !errors.Is(err, cache.ErrMiss):
		uc.logger.Warn("GetAvailableSlots: cache unavailable, computing: %v", err)
		cacheable = false
	}

	// 4. Расчёт
	snapshot, err = uc.compute(ctx, date, menu, req.StaffID)
	if err != nil {
		return nil, err
	}

	// Без прочитанной версии даты результат не кэшируется
	if cacheable {
		if err := uc.cache.Set(ctx, key, version, snapshot); err != nil {
			uc.logger.Warn("GetAvailableSlots: failed to cache availability for %s: %v", date.Format(domain.DateFormat), err)
		}
	}

	uc.logger.Info("GetAvailableSlots: %d slots for date=%s, menu=%d",
		len(snapshot.Slots), date.Format(domain.DateFormat), menu.ID)
	return uc.toResponse(date, menu, snapshot, false), nil
}

// compute рассчитывает доступность по всем подходящим тренерам параллельно
func (uc *UseCase) compute(ctx context.Context, date time.Time, menu *domain.ServiceMenu, staffID *int64) (*cache.Snapshot, error) {
	grid, err := availability.Grid(uc.settings.OpenTime, uc.settings.CloseTime, uc.settings.SlotStepMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid slot grid: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	staff, err := uc.staffRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list active staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrStoreUnavailable, err)
	}
	staff = filterStaff(staff, staffID)

	perStaff := make([][]types.TimeString, len(staff))
	dayEnd := date.AddDate(0, 0, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelStaff)
	for i, st := range staff {
		i, st := i, st
		g.Go(func() error {
			intervals, err := uc.shifts.Resolve(gctx, st.ID, date)
			if err != nil {
				return fmt.Errorf("resolve shifts of staff=%d: %w", st.ID, err)
			}
			if len(intervals) == 0 {
				perStaff[i] = []types.TimeString{}
				return nil
			}

			bookings, err := uc.bookingRepo.GetStaffBookings(gctx, st.ID, date, dayEnd)
			if err != nil {
				return fmt.Errorf("get bookings of staff=%d: %w", st.ID, err)
			}

			perStaff[i] = availability.StaffSlots(date, grid, menu.Duration(), intervals, bookings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("GetAvailableSlots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	staffSlots := make(map[int64][]types.TimeString, len(staff))
	for i, st := range staff {
		staffSlots[st.ID] = perStaff[i]
	}

	return &cache.Snapshot{
		Slots:      availability.Aggregate(grid, staffSlots),
		StaffSlots: staffSlots,
	}, nil
}

func filterStaff(staff []*domain.Staff, staffID *int64) []*domain.Staff {
	if staffID == nil {
		return staff
	}
	for _, st := range staff {
		if st.ID == *staffID {
			return []*domain.Staff{st}
		}
	}
	return []*domain.Staff{}
}

func (uc *UseCase) toResponse(date time.Time, menu *domain.ServiceMenu, snapshot *cache.Snapshot, cached bool) *Response {
	slots := make([]Slot, 0, len(snapshot.Slots))
	for i := range snapshot.Slots {
		s := &snapshot.Slots[i]
		slots = append(slots, Slot{
			StartTime:    s.StartTime,
			StaffIDs:     s.StaffIDs,
			AnyStaffFree: s.AnyStaffFree(),
		})
	}

	staffSlots := snapshot.StaffSlots
	if staffSlots == nil {
		staffSlots = map[int64][]types.TimeString{}
	}

	return &Response{
		Date:            date,
		ServiceMenuID:   menu.ID,
		DurationMinutes: menu.DurationMinutes,
		Slots:           slots,
		StaffSlots:      staffSlots,
		Cached:          cached,
	}
}
