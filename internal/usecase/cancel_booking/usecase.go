package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_booking")

// UseCase use case для отмены бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	memberRepo   MemberRepository
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
	bookingRepo BookingRepository,
	memberRepo MemberRepository,
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
	return &UseCase{
		bookingRepo:  bookingRepo,
		memberRepo:   memberRepo,
		txManager:    txManager,
		cache:        cache,
		publisher:    publisher,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования.
// Проверка статуса, поиск льготы, смена статуса и возврат предоплаты выполняются
// в одной сериализуемой транзакции; строка участника блокируется, поэтому две
// параллельные поздние отмены одного участника не получат льготу обе
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CancelBooking", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("CancelBooking: booking=%d, member=%d, reason=%v", req.BookingID, req.MemberID, req.Reason)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("booking.id", req.BookingID), attribute.Int64("member.id", req.MemberID))

	now := uc.timeProvider.Now().In(uc.settings.Location)

	var (
		booking      *domain.Booking
		result       *Response
		balanceAfter *int64
	)

	// 2. Транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Бронирование (FOR UPDATE)
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("get booking: %w", err)
		}

		// Чужое бронирование не раскрывается
		if b.MemberID != req.MemberID {
			uc.logger.Warn("CancelBooking: member=%d tried to cancel booking id=%d of member=%d",
				req.MemberID, b.ID, b.MemberID)
			return ErrBookingNotFound
		}

		// 2.2. Терминальные статусы
		if b.IsCancelled() {
			return ErrAlreadyCancelled
		}

		// 2.3. Блокируем участника: сериализует льготы внутри месяца
		if _, err := uc.memberRepo.GetByID(txCtx, b.MemberID); err != nil {
			return fmt.Errorf("lock member: %w", err)
		}

		// 2.4. Статус по времени до начала
		status := decideStatus(b.StartTime, now, uc.settings.MinNotice)
		relief := false

		// 2.5. Льгота: поздняя отмена по болезни/утрате раз в календарный месяц
		if status == domain.StatusCancelledLate && req.Reason != nil && req.Reason.QualifiesForRelief() {
			monthFrom, monthTo := domain.MonthBounds(now)
			used, err := uc.bookingRepo.HasReliefCancellation(txCtx, b.MemberID, monthFrom, monthTo)
			if err != nil {
				return fmt.Errorf("check relief: %w", err)
			}
			if !used {
				status = domain.StatusCancelled
				relief = true
			}
		}

		reason := effectiveReason(req.Reason, status)

		// 2.6. Смена статуса
		if err := uc.bookingRepo.Cancel(txCtx, b.ID, status, reason, relief, now); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotConfirmed) {
				return ErrAlreadyCancelled
			}
			return fmt.Errorf("cancel booking: %w", err)
		}

		// 2.7. Возврат предоплаты ровно на сумму, списанную при записи
		refund := domain.RefundFor(b, status)
		if refund > 0 {
			balance, err := uc.memberRepo.AdjustPrepaidBalance(txCtx, b.MemberID, refund, domain.TxCancellationRefund, &b.ID)
			if err != nil {
				return fmt.Errorf("refund prepaid balance: %w", err)
			}
			balanceAfter = &balance
		}

		b.Status = status
		b.CancellationReason = &reason
		b.ReliefApplied = relief
		b.CancelledAt = &now
		booking = b

		result = &Response{
			BookingID:     b.ID,
			Status:        string(status),
			Reason:        string(reason),
			ReliefApplied: relief,
			Refunded:      refund,
			BalanceAfter:  balanceAfter,
			CancelledAt:   now,
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			uc.logger.Warn("CancelBooking: booking id=%d not found for member=%d", req.BookingID, req.MemberID)
			return nil, ErrBookingNotFound
		case errors.Is(err, ErrAlreadyCancelled):
			uc.logger.Warn("CancelBooking: booking id=%d is already cancelled", req.BookingID)
			return nil, ErrAlreadyCancelled
		default:
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: failed to cancel booking: %v", ErrStoreUnavailable, err)
		}
	}

	uc.logger.Info("CancelBooking: booking id=%d -> %s (reason=%s, relief=%t, refunded=%d)",
		result.BookingID, result.Status, result.Reason, result.ReliefApplied, result.Refunded)

	uc.metrics.BookingCancelled(result.Status, result.ReliefApplied)
	uc.metrics.PrepaidMoved("refund", result.Refunded)

	if err := uc.cache.Invalidate(ctx, domain.StartOfDay(booking.StartTime.In(uc.settings.Location))); err != nil {
		uc.logger.Warn("CancelBooking: failed to invalidate availability cache for booking id=%d: %v", booking.ID, err)
	}
	if err := uc.publisher.PublishBookingCancelled(ctx, booking, result.Refunded); err != nil {
		uc.logger.Warn("CancelBooking: failed to publish event for booking id=%d: %v", booking.ID, err)
	}

	return result, nil
}
