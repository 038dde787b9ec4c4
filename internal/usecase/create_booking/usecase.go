package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	memberRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/member"
	menuRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/servicemenu"
	staffRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/staff"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking")

// errStaffBusy кандидат не может принять бронирование, пробуем следующего
var errStaffBusy = errors.New("create_booking: staff calendar does not admit the slot")

// UseCase use case для создания бронирования
type UseCase struct {
	memberRepo   MemberRepository
	menuRepo     MenuRepository
	staffRepo    StaffRepository
	bookingRepo  BookingRepository
	shifts       ShiftResolver
	txManager    TransactionManager
	cache        AvailabilityCache
	publisher    EventPublisher
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	memberRepo MemberRepository,
	menuRepo MenuRepository,
	staffRepo StaffRepository,
	bookingRepo BookingRepository,
	shifts ShiftResolver,
	txManager TransactionManager,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MinNotice == 0 {
		settings.MinNotice = domain.DefaultMinNotice
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
		memberRepo:   memberRepo,
		menuRepo:     menuRepo,
		staffRepo:    staffRepo,
		bookingRepo:  bookingRepo,
		shifts:       shifts,
		txManager:    txManager,
		cache:        cache,
		publisher:    publisher,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// attempt данные одной попытки записи на конкретного тренера
type attempt struct {
	member *domain.Member
	menu   *domain.ServiceMenu
	staff  *domain.Staff
	policy domain.PlanPolicy
	start  time.Time
	end    time.Time
	notes  *string
}

// Execute выполняет use case создания бронирования.
// Все проверки участника выполняются до любой записи; каждый кандидат-тренер
// проверяется и записывается в отдельной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateBooking", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			code := ErrorCode(err)
			uc.metrics.BookingRejected(code)
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
		}
		span.End()
	}()

	uc.logger.Info("CreateBooking: member=%d, menu=%d, start=%s, staff=%v",
		req.MemberID, req.ServiceMenuID, req.StartTime.Format(time.RFC3339), req.StaffID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("member.id", req.MemberID),
		attribute.Int64("service_menu.id", req.ServiceMenuID),
	)

	now := uc.timeProvider.Now().In(uc.settings.Location)
	start := req.StartTime.In(uc.settings.Location)

	// 2. Участник
	member, err := uc.memberRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, memberRepo.ErrMemberNotFound) {
			uc.logger.Warn("CreateBooking: member id=%d not found", req.MemberID)
			return nil, ErrMemberNotFound
		}
		uc.logger.Error("CreateBooking: failed to get member id=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: failed to get member: %v", ErrStoreUnavailable, err)
	}

	// 3. Меню
	menu, err := uc.menuRepo.GetByID(ctx, req.ServiceMenuID)
	if err != nil {
		if errors.Is(err, menuRepo.ErrMenuNotFound) {
			uc.logger.Warn("CreateBooking: menu id=%d not found", req.ServiceMenuID)
			return nil, ErrMenuInvalid
		}
		uc.logger.Error("CreateBooking: failed to get menu id=%d: %v", req.ServiceMenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu: %v", ErrStoreUnavailable, err)
	}
	if !menu.IsActive || menu.DurationMinutes <= 0 {
		uc.logger.Warn("CreateBooking: menu id=%d is inactive", req.ServiceMenuID)
		return nil, ErrMenuInvalid
	}

	// 4. Горизонт бронирования плана и срок уведомления
	policy := domain.PolicyFor(member.Plan, uc.settings.PlanLookaheadDays)
	if err := validateLookahead(start, now, policy); err != nil {
		uc.logger.Warn("CreateBooking: member=%d: %v", member.ID, err)
		return nil, err
	}
	if err := validateNotice(start, now, uc.settings.MinNotice); err != nil {
		uc.logger.Warn("CreateBooking: member=%d: %v", member.ID, err)
		return nil, err
	}

	// Только времена сетки: иначе занятие никогда не появится среди свободных слотов
	if err := validateSlot(start, uc.settings); err != nil {
		uc.logger.Warn("CreateBooking: member=%d: %v", member.ID, err)
		return nil, err
	}

	// 5. Месячный лимит (повторно проверяется внутри транзакции)
	monthFrom, monthTo := domain.MonthBounds(start)
	used, err := uc.bookingRepo.CountQuotaBookings(ctx, member.ID, monthFrom, monthTo)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to count bookings for member=%d: %v", member.ID, err)
		return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrStoreUnavailable, err)
	}
	if err := validateQuota(used, member); err != nil {
		uc.logger.Warn("CreateBooking: member=%d: %v", member.ID, err)
		return nil, err
	}

	// 6. Кандидаты
	candidates, err := uc.candidates(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}

	// 7. Пробуем записать по очереди; первый успешный кандидат выигрывает
	for _, staff := range candidates {
		a := &attempt{
			member: member,
			menu:   menu,
			staff:  staff,
			policy: policy,
			start:  start,
			end:    start.Add(menu.Duration()),
			notes:  req.Notes,
		}

		booking, balanceAfter, err := uc.commit(ctx, a)
		switch {
		case err == nil:
			autoAssigned := req.StaffID == nil
			uc.afterCommit(ctx, booking, autoAssigned, policy.Prepaid)
			span.SetAttributes(attribute.Int64("booking.id", booking.ID), attribute.Int64("staff.id", staff.ID))
			return toResponse(booking, balanceAfter, autoAssigned), nil
		case errors.Is(err, errStaffBusy):
			uc.logger.Info("CreateBooking: staff=%d cannot take %s", staff.ID, start.Format(time.RFC3339))
		case txmanager.IsConflict(err):
			uc.logger.Warn("CreateBooking: staff=%d lost a concurrent race: %v", staff.ID, err)
		case errors.Is(err, ErrQuotaExceeded):
			uc.logger.Warn("CreateBooking: member=%d: %v", member.ID, err)
			return nil, err
		default:
			uc.logger.Error("CreateBooking: failed to commit booking on staff=%d: %v", staff.ID, err)
			return nil, fmt.Errorf("%w: failed to commit booking: %v", ErrStoreUnavailable, err)
		}
	}

	uc.logger.Warn("CreateBooking: no staff available for member=%d at %s (%d candidates)",
		member.ID, start.Format(time.RFC3339), len(candidates))
	return nil, ErrNoStaffAvailable
}

// candidates возвращает тренеров для перебора: указанного или всех активных по возрастанию ID
func (uc *UseCase) candidates(ctx context.Context, staffID *int64) ([]*domain.Staff, error) {
	if staffID != nil {
		staff, err := uc.staffRepo.GetByID(ctx, *staffID)
		if err != nil {
			if errors.Is(err, staffRepo.ErrStaffNotFound) {
				uc.logger.Warn("CreateBooking: requested staff id=%d not found", *staffID)
				return nil, ErrNoStaffAvailable
			}
			uc.logger.Error("CreateBooking: failed to get staff id=%d: %v", *staffID, err)
			return nil, fmt.Errorf("%w: failed to get staff: %v", ErrStoreUnavailable, err)
		}
		if !staff.IsActive {
			uc.logger.Warn("CreateBooking: requested staff id=%d is inactive", *staffID)
			return nil, ErrNoStaffAvailable
		}
		return []*domain.Staff{staff}, nil
	}

	staff, err := uc.staffRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list active staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrStoreUnavailable, err)
	}
	sort.SliceStable(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	return staff, nil
}

// commit проверяет календарь кандидата и записывает бронирование вместе со списанием предоплаты
func (uc *UseCase) commit(ctx context.Context, a *attempt) (*domain.Booking, *int64, error) {
	var (
		result       *domain.Booking
		balanceAfter *int64
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Блокируем участника: баланс и лимит читаются из согласованного снимка
		member, err := uc.memberRepo.GetByID(txCtx, a.member.ID)
		if err != nil {
			return fmt.Errorf("lock member: %w", err)
		}

		monthFrom, monthTo := domain.MonthBounds(a.start)
		used, err := uc.bookingRepo.CountQuotaBookings(txCtx, member.ID, monthFrom, monthTo)
		if err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}
		if err := validateQuota(used, member); err != nil {
			return err
		}

		day := domain.StartOfDay(a.start)
		intervals, err := uc.shifts.Resolve(txCtx, a.staff.ID, day)
		if err != nil {
			return fmt.Errorf("resolve shifts: %w", err)
		}

		bookings, err := uc.bookingRepo.GetStaffBookings(txCtx, a.staff.ID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("get staff bookings: %w", err)
		}

		if !availability.Fits(a.start, a.end, intervals, bookings) {
			return errStaffBusy
		}

		var debit int64
		if a.policy.Prepaid {
			debit = domain.PrepaidDebit(member.PrepaidBalance, a.staff.UnitPrice)
		}

		menuID := a.menu.ID
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			MemberID:        member.ID,
			StaffID:         a.staff.ID,
			ServiceMenuID:   &menuID,
			StartTime:       a.start,
			EndTime:         a.end,
			Status:          domain.StatusConfirmed,
			PaidFromPrepaid: debit,
			Notes:           a.notes,
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if a.policy.Prepaid {
			balance := member.PrepaidBalance
			if debit > 0 {
				balance, err = uc.memberRepo.AdjustPrepaidBalance(txCtx, member.ID, -debit, domain.TxBookingDebit, &created.ID)
				if err != nil {
					return fmt.Errorf("debit prepaid balance: %w", err)
				}
			}
			balanceAfter = &balance
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, balanceAfter, nil
}

// afterCommit сбрасывает кэш и публикует событие; ошибки только логируются
func (uc *UseCase) afterCommit(ctx context.Context, b *domain.Booking, autoAssigned, prepaid bool) {
	uc.logger.Info("CreateBooking: successfully created booking id=%d, staff=%d, paidFromPrepaid=%d",
		b.ID, b.StaffID, b.PaidFromPrepaid)

	uc.metrics.BookingCreated(autoAssigned, prepaid)
	uc.metrics.PrepaidMoved("debit", b.PaidFromPrepaid)

	if err := uc.cache.Invalidate(ctx, domain.StartOfDay(b.StartTime)); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate availability cache for booking id=%d: %v", b.ID, err)
	}
	if err := uc.publisher.PublishBookingCreated(ctx, b); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}
