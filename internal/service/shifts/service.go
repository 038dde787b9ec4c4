package shifts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Service вычисляет рабочие интервалы тренера на дату
type Service struct {
	repo   StaffRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса смен
func NewService(repo StaffRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve возвращает упорядоченные непересекающиеся рабочие интервалы тренера на дату.
// Исключения на дату полностью заменяют регулярные смены; закрытое исключение даёт пустой результат.
// Неизвестный тренер или отсутствие смен - пустой результат. Ошибки хранилища возвращаются
func (s *Service) Resolve(ctx context.Context, staffID int64, date time.Time) ([]domain.WorkingInterval, error) {
	overrides, err := s.repo.GetOverrides(ctx, staffID, date)
	if err != nil {
		s.logger.Error("Resolve: failed to get overrides for staff=%d, date=%s: %v",
			staffID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Resolve - get overrides: %w", ErrInternal, err)
	}

	if len(overrides) > 0 {
		return fromOverrides(overrides), nil
	}

	shifts, err := s.repo.GetShifts(ctx, staffID, date.Weekday())
	if err != nil {
		s.logger.Error("Resolve: failed to get shifts for staff=%d, weekday=%s: %v", staffID, date.Weekday(), err)
		return nil, fmt.Errorf("%w: Resolve - get shifts: %w", ErrInternal, err)
	}

	intervals := make([]domain.WorkingInterval, 0, len(shifts))
	for _, sh := range shifts {
		intervals = append(intervals, domain.WorkingInterval{Start: sh.StartTime, End: sh.EndTime})
	}
	return Normalize(intervals), nil
}

func fromOverrides(overrides []domain.ShiftOverride) []domain.WorkingInterval {
	intervals := make([]domain.WorkingInterval, 0, len(overrides))
	for _, o := range overrides {
		if o.IsClosed {
			return []domain.WorkingInterval{}
		}
		intervals = append(intervals, domain.WorkingInterval{Start: o.StartTime, End: o.EndTime})
	}
	return Normalize(intervals)
}

// Normalize отбрасывает некорректные интервалы, сортирует и склеивает пересекающиеся и смежные
func Normalize(intervals []domain.WorkingInterval) []domain.WorkingInterval {
	valid := make([]domain.WorkingInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.IsValid() {
			valid = append(valid, iv)
		}
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.IsBefore(valid[j].Start)
	})

	merged := make([]domain.WorkingInterval, 0, len(valid))
	for _, iv := range valid {
		last := len(merged) - 1
		if last >= 0 && !iv.Start.IsAfter(merged[last].End) {
			if iv.End.IsAfter(merged[last].End) {
				merged[last].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
