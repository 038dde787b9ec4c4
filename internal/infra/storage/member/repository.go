package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

// Repository репозиторий участников и журнала предоплаченного баланса
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория участников
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает участника по ID
// В транзакции строка блокируется (FOR UPDATE): так сериализуются списания баланса,
// проверка квоты и проверка льготной отмены одного участника
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"name",
		"plan",
		"contracted_sessions",
		"prepaid_balance",
		"main_trainer_id",
		"line_user_id",
		"join_date",
		"birth_date",
		"created_at",
		"updated_at",
	).
		From("members").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var (
		m             domain.Member
		mainTrainerID sql.NullInt64
		lineUserID    sql.NullString
		joinDate      sql.NullTime
		birthDate     sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&m.ID,
		&m.Name,
		&m.Plan,
		&m.ContractedSessions,
		&m.PrepaidBalance,
		&mainTrainerID,
		&lineUserID,
		&joinDate,
		&birthDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan member: %w", ErrScanRow, err)
	}

	if mainTrainerID.Valid {
		m.MainTrainerID = &mainTrainerID.Int64
	}
	if lineUserID.Valid {
		m.LineUserID = &lineUserID.String
	}
	if joinDate.Valid {
		m.JoinDate = &joinDate.Time
	}
	if birthDate.Valid {
		m.BirthDate = &birthDate.Time
	}

	return &m, nil
}

// AdjustPrepaidBalance изменяет баланс на delta и добавляет запись в журнал prepaid_transactions
// Баланс не может стать отрицательным. Возвращает баланс после изменения.
// Должен вызываться внутри транзакции вместе с изменением бронирования
func (r *Repository) AdjustPrepaidBalance(ctx context.Context, memberID, delta int64, kind domain.PrepaidTransactionKind, bookingID *int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("members").
		Set("prepaid_balance", squirrel.Expr("prepaid_balance + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": memberID}).
		Where(squirrel.Expr("prepaid_balance + ? >= 0", delta)).
		Suffix("RETURNING prepaid_balance").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: AdjustPrepaidBalance - build update query: %w", ErrBuildQuery, err)
	}

	var balance int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: member id=%d, delta=%d", ErrInsufficientBalance, memberID, delta)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: AdjustPrepaidBalance - execute update: %w", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Insert("prepaid_transactions").
		Columns("member_id", "booking_id", "kind", "amount", "balance_after").
		Values(memberID, bookingID, kind, delta, balance).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: AdjustPrepaidBalance - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%w: AdjustPrepaidBalance - insert ledger entry: %w", ErrExecQuery, err)
	}

	return balance, nil
}

// GetTransactions возвращает журнал движения баланса участника (сначала новые)
func (r *Repository) GetTransactions(ctx context.Context, memberID int64) ([]*domain.PrepaidTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "member_id", "booking_id", "kind", "amount", "balance_after", "created_at").
		From("prepaid_transactions").
		Where(squirrel.Eq{"member_id": memberID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTransactions - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTransactions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	txs := make([]*domain.PrepaidTransaction, 0)
	for rows.Next() {
		var (
			tx        domain.PrepaidTransaction
			bookingID sql.NullInt64
		)
		if err := rows.Scan(&tx.ID, &tx.MemberID, &bookingID, &tx.Kind, &tx.Amount, &tx.BalanceAfter, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetTransactions - scan row: %w", ErrScanRow, err)
		}
		if bookingID.Valid {
			tx.BookingID = &bookingID.Int64
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTransactions - rows iteration: %w", ErrScanRow, err)
	}

	return txs, nil
}
