// Package availability содержит чистые функции расчёта свободных слотов
package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Grid возвращает кандидатов на начало слота от open до close включительно с шагом step минут
func Grid(open, close types.TimeString, step int) ([]types.TimeString, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidGrid, step)
	}
	from, to := open.Minutes(), close.Minutes()
	if from < 0 || to < 0 || from > to {
		return nil, fmt.Errorf("%w: open=%s, close=%s", ErrInvalidGrid, open, close)
	}

	grid := make([]types.TimeString, 0, (to-from)/step+1)
	for m := from; m <= to; m += step {
		grid = append(grid, types.FromMinutes(m))
	}
	return grid, nil
}

// Fits проверяет, что [start, end) целиком лежит в одном рабочем интервале
// и не пересекается ни с одним подтверждённым бронированием
func Fits(start, end time.Time, intervals []domain.WorkingInterval, bookings []*domain.Booking) bool {
	if !start.Before(end) {
		return false
	}

	inside := false
	for _, iv := range intervals {
		from, to := iv.On(start)
		if !start.Before(from) && !end.After(to) {
			inside = true
			break
		}
	}
	if !inside {
		return false
	}

	for _, b := range bookings {
		if b.IsActive() && b.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// StaffSlots возвращает времена сетки, в которые тренер может провести занятие длительностью duration
func StaffSlots(date time.Time, grid []types.TimeString, duration time.Duration,
	intervals []domain.WorkingInterval, bookings []*domain.Booking) []types.TimeString {
	slots := make([]types.TimeString, 0)
	if len(intervals) == 0 {
		return slots
	}
	for _, t := range grid {
		start := t.OnDate(date)
		if Fits(start, start.Add(duration), intervals, bookings) {
			slots = append(slots, t)
		}
	}
	return slots
}

// Aggregate собирает слоты по времени: для каждого времени - список тренеров, которые свободны.
// Времена без свободных тренеров не попадают в результат
func Aggregate(grid []types.TimeString, staffSlots map[int64][]types.TimeString) []domain.AvailableSlot {
	byTime := make(map[types.TimeString][]int64, len(grid))
	for staffID, slots := range staffSlots {
		for _, t := range slots {
			byTime[t] = append(byTime[t], staffID)
		}
	}

	result := make([]domain.AvailableSlot, 0, len(byTime))
	for _, t := range grid {
		ids, ok := byTime[t]
		if !ok {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		result = append(result, domain.AvailableSlot{StartTime: t, StaffIDs: ids})
	}
	return result
}
