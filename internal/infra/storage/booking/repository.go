package booking

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
)

// Ошибки оборачиваются через %w дважды: причина (в т.ч. *pq.Error) должна
// оставаться доступной для txmanager.IsConflict

var bookingColumns = []string{
	"b.id",
	"b.member_id",
	"b.staff_id",
	"b.service_menu_id",
	"b.start_time",
	"b.end_time",
	"b.status",
	"b.cancellation_reason",
	"b.paid_from_prepaid",
	"b.relief_applied",
	"b.notes",
	"b.cancelled_at",
	"b.created_at",
	"b.updated_at",
	"m.name",
	"m.line_user_id",
	"s.name",
	"sm.name",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func selectBookings() squirrel.SelectBuilder {
	return psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Join("members m ON m.id = b.member_id").
		Join("staff s ON s.id = b.staff_id").
		LeftJoin("service_menus sm ON sm.id = b.service_menu_id")
}

// Create создает новое бронирование
// Пересечение с другим подтверждённым бронированием того же тренера отклоняется
// exclusion constraint'ом (SQLSTATE 23P01)
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"member_id",
			"staff_id",
			"service_menu_id",
			"start_time",
			"end_time",
			"status",
			"paid_from_prepaid",
			"notes",
		).
		Values(
			booking.MemberID,
			booking.StaffID,
			booking.ServiceMenuID,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.PaidFromPrepaid,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectBookings().Where(squirrel.Eq{"b.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF b")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetByMemberID получает бронирования участника, отсортированные по времени начала
// Опционально фильтрует по статусу
func (r *Repository) GetByMemberID(ctx context.Context, memberID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectBookings().
		Where(squirrel.Eq{"b.member_id": memberID}).
		OrderBy("b.start_time ASC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMemberID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMemberID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetStaffBookings получает подтверждённые бронирования тренера, пересекающиеся с [from, to)
// В транзакции строки блокируются (FOR UPDATE) - используется при проверке слота перед вставкой
func (r *Repository) GetStaffBookings(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectBookings().
		Where(squirrel.Eq{"b.staff_id": staffID, "b.status": domain.StatusConfirmed}).
		Where(squirrel.Lt{"b.start_time": to}).
		Where(squirrel.Gt{"b.end_time": from}).
		OrderBy("b.start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF b")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffBookings - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffBookings - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetConfirmedStartingBetween получает подтверждённые бронирования с началом в [from, to)
// Используется рассылкой напоминаний
func (r *Repository) GetConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.status": domain.StatusConfirmed}).
		Where(squirrel.GtOrEq{"b.start_time": from}).
		Where(squirrel.Lt{"b.start_time": to}).
		OrderBy("b.start_time ASC", "b.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedStartingBetween - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedStartingBetween - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountQuotaBookings считает бронирования участника, расходующие квоту
// (confirmed и cancelled_late), с началом в [from, to)
func (r *Repository) CountQuotaBookings(ctx context.Context, memberID int64, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"member_id": memberID, "status": statusStrings(domain.QuotaStatuses)}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.Lt{"start_time": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountQuotaBookings - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountQuotaBookings - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// HasReliefCancellation проверяет, есть ли у участника отмена со статусом cancelled
// и причиной SICKNESS/BEREAVEMENT, выполненная в [from, to)
func (r *Repository) HasReliefCancellation(ctx context.Context, memberID int64, from, to time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	reasons := make([]string, len(domain.ReliefReasons))
	for i, reason := range domain.ReliefReasons {
		reasons[i] = string(reason)
	}

	query, args, err := psqlbuilder.Select("id").
		From("bookings").
		Where(squirrel.Eq{
			"member_id":           memberID,
			"status":              domain.StatusCancelled,
			"cancellation_reason": reasons,
		}).
		Where(squirrel.GtOrEq{"cancelled_at": from}).
		Where(squirrel.Lt{"cancelled_at": to}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasReliefCancellation - build select query: %w", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasReliefCancellation - scan row: %w", ErrScanRow, err)
	}

	return true, nil
}

// Cancel переводит подтверждённое бронирование в терминальный статус
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason domain.CancellationReason, reliefApplied bool, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("relief_applied", reliefApplied).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", cancelledAt).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrBookingNotConfirmed
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b           domain.Booking
		menuID      sql.NullInt64
		reason      sql.NullString
		notes       sql.NullString
		cancelledAt sql.NullTime
		lineID      sql.NullString
		menuName    sql.NullString
	)

	err := row.Scan(
		&b.ID,
		&b.MemberID,
		&b.StaffID,
		&menuID,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&reason,
		&b.PaidFromPrepaid,
		&b.ReliefApplied,
		&notes,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.MemberName,
		&lineID,
		&b.StaffName,
		&menuName,
	)
	if err != nil {
		return nil, err
	}

	if menuID.Valid {
		b.ServiceMenuID = &menuID.Int64
	}
	if reason.Valid {
		r := domain.CancellationReason(reason.String)
		b.CancellationReason = &r
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if lineID.Valid {
		b.MemberLineID = &lineID.String
	}
	if menuName.Valid {
		b.ServiceMenuName = &menuName.String
	}

	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows iteration: %w", ErrScanRow, err)
	}
	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
