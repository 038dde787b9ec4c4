package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Repository репозиторий тренеров, их смен и исключений из расписания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория тренеров
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает тренера по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "unit_price", "is_active").
		From("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var s domain.Staff
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Name, &s.UnitPrice, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan staff: %w", ErrScanRow, err)
	}

	return &s, nil
}

// ListActive возвращает активных тренеров в порядке возрастания ID
// Порядок стабилен: по нему перебираются кандидаты при автоматическом выборе тренера
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "unit_price", "is_active").
		From("staff").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.Staff, 0)
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.UnitPrice, &s.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %w", ErrScanRow, err)
		}
		staff = append(staff, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows iteration: %w", ErrScanRow, err)
	}

	return staff, nil
}

// GetShifts возвращает регулярные смены тренера на день недели
func (r *Repository) GetShifts(ctx context.Context, staffID int64, weekday time.Weekday) ([]domain.Shift, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "staff_id", "day_of_week", "start_time", "end_time").
		From("shifts").
		Where(squirrel.Eq{"staff_id": staffID, "day_of_week": int(weekday)}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetShifts - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetShifts - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0)
	for rows.Next() {
		var (
			s   domain.Shift
			day int
		)
		if err := rows.Scan(&s.ID, &s.StaffID, &day, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("%w: GetShifts - scan row: %w", ErrScanRow, err)
		}
		s.DayOfWeek = time.Weekday(day)
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetShifts - rows iteration: %w", ErrScanRow, err)
	}

	return shifts, nil
}

// GetOverrides возвращает исключения из расписания тренера на календарную дату
func (r *Repository) GetOverrides(ctx context.Context, staffID int64, date time.Time) ([]domain.ShiftOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "staff_id", "date", "start_time", "end_time", "is_closed").
		From("shift_overrides").
		Where(squirrel.Eq{"staff_id": staffID, "date": date.Format(domain.DateFormat)}).
		OrderBy("start_time ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]domain.ShiftOverride, 0)
	for rows.Next() {
		var (
			o          domain.ShiftOverride
			start, end types.TimeString
		)
		if err := rows.Scan(&o.ID, &o.StaffID, &o.Date, &start, &end, &o.IsClosed); err != nil {
			return nil, fmt.Errorf("%w: GetOverrides - scan row: %w", ErrScanRow, err)
		}
		o.StartTime = start
		o.EndTime = end
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - rows iteration: %w", ErrScanRow, err)
	}

	return overrides, nil
}
