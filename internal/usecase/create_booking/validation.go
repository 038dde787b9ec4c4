package create_booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}

	if req.ServiceMenuID <= 0 {
		return fmt.Errorf("%w: serviceMenuID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateSlot проверяет, что начало лежит на сетке студии:
// от открытия до закрытия включительно с шагом SlotStepMinutes.
// start должен быть уже переведён в часовой пояс студии
func validateSlot(start time.Time, settings Settings) error {
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return fmt.Errorf("%w: startTime %s is not on the slot grid", ErrInvalidInput, start.Format(time.RFC3339))
	}

	minutes := start.Hour()*60 + start.Minute()
	openAt, closeAt := settings.OpenTime.Minutes(), settings.CloseTime.Minutes()
	if minutes < openAt || minutes > closeAt {
		return fmt.Errorf("%w: startTime %s is outside studio hours %s-%s",
			ErrInvalidInput, types.NewTimeString(start), settings.OpenTime, settings.CloseTime)
	}
	if (minutes-openAt)%settings.SlotStepMinutes != 0 {
		return fmt.Errorf("%w: startTime %s is not a multiple of %d minutes from %s",
			ErrInvalidInput, types.NewTimeString(start), settings.SlotStepMinutes, settings.OpenTime)
	}
	return nil
}

// validateLookahead проверяет горизонт бронирования плана.
// Граница: начало текущих суток + limitDays + 1 день
func validateLookahead(start, now time.Time, policy domain.PlanPolicy) error {
	maxAllowed := domain.StartOfDay(now).AddDate(0, 0, policy.LimitDays+1)
	if start.After(maxAllowed) {
		return fmt.Errorf("%w: plan %s allows booking %d days ahead", ErrLookaheadExceeded, policy.Plan, policy.LimitDays)
	}
	return nil
}

// validateNotice проверяет, что до начала не меньше minNotice
func validateNotice(start, now time.Time, minNotice time.Duration) error {
	if start.Before(now.Add(minNotice)) {
		return fmt.Errorf("%w: must book at least %s in advance", ErrNoticeTooShort, minNotice)
	}
	return nil
}

// validateQuota проверяет месячный лимит занятий участника
func validateQuota(used int, member *domain.Member) error {
	if used >= member.ContractedSessions {
		return fmt.Errorf("%w: %d of %d sessions used", ErrQuotaExceeded, used, member.ContractedSessions)
	}
	return nil
}
