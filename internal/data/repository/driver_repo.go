package repository

import (
	"context"
	"errors"
	"fmt"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DriverRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error)
	List(ctx context.Context, status *entity.DriverStatus) ([]*entity.Driver, error)
}

type driverRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewDriverRepository(db database.Querier, log *zap.Logger) DriverRepository {
	return &driverRepository{
		db:  db,
		log: log.With(zap.String("repository", "driver")),
	}
}

const driverColumns = `id, name, phone, status, telegram_chat_id, created_at, updated_at`

func scanDriver(row pgx.Row) (*entity.Driver, error) {
	var d entity.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.Status, &d.TelegramChatID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	driver, err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find driver by ID", zap.Error(err), zap.String("driver_id", id.String()))
		return nil, fmt.Errorf("find driver by ID %s: %w", id, err)
	}
	return driver, nil
}

func (r *driverRepository) List(ctx context.Context, status *entity.DriverStatus) ([]*entity.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list drivers", zap.Error(err))
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*entity.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
