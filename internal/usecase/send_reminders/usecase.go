package send_reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const defaultConcurrency = 4

// UseCase рассылка напоминаний о занятиях следующего дня
type UseCase struct {
	bookingRepo  BookingRepository
	messenger    Messenger
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	messenger Messenger,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = defaultConcurrency
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		messenger:    messenger,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute отправляет напоминания по всем подтверждённым бронированиям на завтра.
// Ошибка доставки одному участнику логируется и не прерывает рассылку
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now().In(uc.settings.Location)
	from := domain.StartOfDay(now).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	uc.logger.Info("SendReminders: fetching bookings between %s and %s",
		from.Format(time.RFC3339), to.Format(time.RFC3339))

	bookings, err := uc.bookingRepo.GetConfirmedStartingBetween(ctx, from, to)
	if err != nil {
		uc.logger.Error("SendReminders: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	uc.logger.Info("SendReminders: found %d confirmed bookings for %s", len(bookings), from.Format(domain.DateFormat))

	details := make([]Detail, len(bookings))
	var (
		mu   sync.Mutex
		sent int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.settings.Concurrency)
	for i, b := range bookings {
		i, b := i, b
		g.Go(func() error {
			status := uc.remind(gctx, b)
			details[i] = Detail{BookingID: b.ID, Recipient: b.MemberName, Status: status}
			if uc.metrics != nil {
				uc.metrics.ReminderDispatched(status)
			}
			if status == ResultSent {
				mu.Lock()
				sent++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	uc.logger.Info("SendReminders: processed=%d, sent=%d", len(bookings), sent)
	return &Response{
		Date:      from,
		Processed: len(bookings),
		Sent:      sent,
		Details:   details,
	}, nil
}

func (uc *UseCase) remind(ctx context.Context, b *domain.Booking) string {
	if b.MemberLineID == nil || *b.MemberLineID == "" {
		return ResultNoLineID
	}

	b.StartTime = b.StartTime.In(uc.settings.Location)
	if err := uc.messenger.PushText(ctx, *b.MemberLineID, buildMessage(b)); err != nil {
		uc.logger.Warn("SendReminders: failed to send reminder for booking id=%d: %v", b.ID, err)
		return ResultFailed
	}
	return ResultSent
}
