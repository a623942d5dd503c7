package repository

import (
	"context"
	"fmt"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AlertRepository interface {
	// Record stores the marker; recording the same (booking, day) twice is a no-op.
	Record(ctx context.Context, alert *entity.BookingAlert) error
	ListForDay(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type alertRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewAlertRepository(db database.Querier, log *zap.Logger) AlertRepository {
	return &alertRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_alert")),
	}
}

func (r *alertRepository) Record(ctx context.Context, alert *entity.BookingAlert) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO booking_alerts (booking_id, alert_day, alerted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (booking_id, alert_day) DO NOTHING
	`, alert.BookingID, alert.AlertDay.Format(entity.DateLayout), alert.AlertedAt)
	if err != nil {
		r.log.Error("Failed to record booking alert", zap.Error(err), zap.String("booking_id", alert.BookingID.String()))
		return fmt.Errorf("record alert for booking %s: %w", alert.BookingID, err)
	}
	return nil
}

func (r *alertRepository) ListForDay(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id FROM booking_alerts WHERE alert_day = $1`, day.Format(entity.DateLayout))
	if err != nil {
		r.log.Error("Failed to list booking alerts", zap.Error(err))
		return nil, fmt.Errorf("list alerts for %s: %w", day.Format(entity.DateLayout), err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *alertRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM booking_alerts WHERE booking_id = $1`, bookingID)
	if err != nil {
		r.log.Error("Failed to delete booking alerts", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return 0, fmt.Errorf("delete alerts of booking %s: %w", bookingID, err)
	}
	return tag.RowsAffected(), nil
}
