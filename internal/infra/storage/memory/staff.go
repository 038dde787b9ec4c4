package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	menuRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/servicemenu"
	staffRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/staff"
)

// StaffRepository тренеры и смены в памяти
type StaffRepository struct {
	s *Store
}

// GetByID получает тренера по ID
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("staff.GetByID"); err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan staff: %w", staffRepo.ErrScanRow, err)
	}

	st, ok := r.s.st.staff[id]
	if !ok {
		return nil, staffRepo.ErrStaffNotFound
	}
	return &st, nil
}

// ListActive возвращает активных тренеров по возрастанию ID
func (r *StaffRepository) ListActive(ctx context.Context) ([]*domain.Staff, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("staff.ListActive"); err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", staffRepo.ErrExecQuery, err)
	}

	out := make([]*domain.Staff, 0)
	for _, st := range r.s.st.staff {
		if st.IsActive {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetShifts возвращает регулярные смены тренера на день недели
func (r *StaffRepository) GetShifts(ctx context.Context, staffID int64, weekday time.Weekday) ([]domain.Shift, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("staff.GetShifts"); err != nil {
		return nil, fmt.Errorf("%w: GetShifts - execute query: %w", staffRepo.ErrExecQuery, err)
	}

	out := make([]domain.Shift, 0)
	for _, sh := range r.s.st.shifts {
		if sh.StaffID == staffID && sh.DayOfWeek == weekday {
			out = append(out, sh)
		}
	}
	return out, nil
}

// GetOverrides возвращает исключения из расписания тренера на дату
func (r *StaffRepository) GetOverrides(ctx context.Context, staffID int64, date time.Time) ([]domain.ShiftOverride, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("staff.GetOverrides"); err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - execute query: %w", staffRepo.ErrExecQuery, err)
	}

	day := date.Format(domain.DateFormat)
	out := make([]domain.ShiftOverride, 0)
	for _, o := range r.s.st.overrides {
		if o.StaffID == staffID && o.Date.Format(domain.DateFormat) == day {
			out = append(out, o)
		}
	}
	return out, nil
}

// MenuRepository меню услуг в памяти
type MenuRepository struct {
	s *Store
}

// GetByID получает меню по ID
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceMenu, error) {
	defer r.s.lock(ctx)()

	if err := r.s.failure("menus.GetByID"); err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan menu: %w", menuRepo.ErrScanRow, err)
	}

	m, ok := r.s.st.menus[id]
	if !ok {
		return nil, menuRepo.ErrMenuNotFound
	}
	return &m, nil
}

// ListActive возвращает активные меню по возрастанию длительности
func (r *MenuRepository) ListActive(ctx context.Context) ([]*domain.ServiceMenu, error) {
	defer r.s.lock(ctx)()

	out := make([]*domain.ServiceMenu, 0)
	for _, m := range r.s.st.menus {
		if m.IsActive {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationMinutes == out[j].DurationMinutes {
			return out[i].ID < out[j].ID
		}
		return out[i].DurationMinutes < out[j].DurationMinutes
	})
	return out, nil
}
