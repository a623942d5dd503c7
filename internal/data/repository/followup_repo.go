package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type FollowUpFilter struct {
	Status    *entity.FollowUpStatus
	Priority  *entity.FollowUpPriority
	Type      *entity.FollowUpType
	BookingID *uuid.UUID
	Search    string
}

type FollowUpRepository interface {
	Create(ctx context.Context, task *entity.FollowUpTask) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FollowUpTask, error)
	List(ctx context.Context, filter FollowUpFilter) ([]*entity.FollowUpTask, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type followUpRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewFollowUpRepository(db database.Querier, log *zap.Logger) FollowUpRepository {
	return &followUpRepository{
		db:  db,
		log: log.With(zap.String("repository", "followup")),
	}
}

const followUpColumns = `id, booking_id, customer_name, customer_email, customer_phone, type, priority, status,
	due_date, notes, completed_at, created_at`

func scanFollowUp(row pgx.Row) (*entity.FollowUpTask, error) {
	var f entity.FollowUpTask
	err := row.Scan(
		&f.ID,
		&f.BookingID,
		&f.CustomerName,
		&f.CustomerEmail,
		&f.CustomerPhone,
		&f.Type,
		&f.Priority,
		&f.Status,
		&f.DueDate,
		&f.Notes,
		&f.CompletedAt,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *followUpRepository) Create(ctx context.Context, task *entity.FollowUpTask) error {
	query := `
		INSERT INTO followups (` + followUpColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		task.ID,
		task.BookingID,
		task.CustomerName,
		task.CustomerEmail,
		task.CustomerPhone,
		task.Type,
		task.Priority,
		task.Status,
		task.DueDate.Format(entity.DateLayout),
		task.Notes,
		task.CompletedAt,
		task.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create follow-up", zap.Error(err), zap.String("followup_id", task.ID.String()))
		return fmt.Errorf("create follow-up %s: %w", task.ID, err)
	}
	return nil
}

func (r *followUpRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FollowUpTask, error) {
	task, err := scanFollowUp(r.db.QueryRow(ctx, `SELECT `+followUpColumns+` FROM followups WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find follow-up", zap.Error(err), zap.String("followup_id", id.String()))
		return nil, fmt.Errorf("find follow-up %s: %w", id, err)
	}
	return task, nil
}

func (r *followUpRepository) List(ctx context.Context, filter FollowUpFilter) ([]*entity.FollowUpTask, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Priority != nil {
		add("priority = $%d", *filter.Priority)
	}
	if filter.Type != nil {
		add("type = $%d", *filter.Type)
	}
	if filter.BookingID != nil {
		add("booking_id = $%d", *filter.BookingID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add("(customer_name ILIKE $%[1]d OR customer_email ILIKE $%[1]d OR notes ILIKE $%[1]d)", "%"+s+"%")
	}

	query := `SELECT ` + followUpColumns + ` FROM followups`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY due_date ASC, created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list follow-ups", zap.Error(err))
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.FollowUpTask
	for rows.Next() {
		task, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan follow-up row: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *followUpRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE followups SET status = $2, completed_at = $3 WHERE id = $1`,
		id, entity.FollowUpStatusCompleted, at)
	if err != nil {
		r.log.Error("Failed to complete follow-up", zap.Error(err), zap.String("followup_id", id.String()))
		return fmt.Errorf("complete follow-up %s: %w", id, err)
	}
	return checkAffected(tag)
}

func (r *followUpRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM followups WHERE booking_id = $1`, bookingID)
	if err != nil {
		r.log.Error("Failed to delete booking follow-ups", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return 0, fmt.Errorf("delete follow-ups of booking %s: %w", bookingID, err)
	}
	return tag.RowsAffected(), nil
}
