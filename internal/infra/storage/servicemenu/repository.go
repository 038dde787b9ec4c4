package servicemenu

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

var menuColumns = []string{"id", "name", "duration_minutes", "price", "is_active"}

// Repository репозиторий меню услуг
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория меню услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает меню услуги по ID (включая неактивные)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ServiceMenu, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(menuColumns...).
		From("service_menus").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var m domain.ServiceMenu
	err = executor.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.Name, &m.DurationMinutes, &m.Price, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan menu: %w", ErrScanRow, err)
	}

	return &m, nil
}

// ListActive возвращает активные меню, отсортированные по длительности
func (r *Repository) ListActive(ctx context.Context) ([]*domain.ServiceMenu, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(menuColumns...).
		From("service_menus").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("duration_minutes ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	menus := make([]*domain.ServiceMenu, 0)
	for rows.Next() {
		var m domain.ServiceMenu
		if err := rows.Scan(&m.ID, &m.Name, &m.DurationMinutes, &m.Price, &m.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %w", ErrScanRow, err)
		}
		menus = append(menus, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows iteration: %w", ErrScanRow, err)
	}

	return menus, nil
}
