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

// BookingFilter composes: every set field narrows the result.
type BookingFilter struct {
	Statuses        []entity.BookingStatus
	ExcludeStatuses []entity.BookingStatus
	DateFrom        *time.Time
	DateTo          *time.Time
	DriverID        *uuid.UUID
	Search          string
	Limit           int
	Offset          int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Field updates; each bumps updated_at
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error
	UpdateDriver(ctx context.Context, id uuid.UUID, driverID uuid.UUID, at time.Time) error
	UpdateAmount(ctx context.Context, id uuid.UUID, amount entity.Amount, at time.Time) error
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, customer_name, customer_email, customer_phone, pickup_location, dropoff_location,
	pickup_date, pickup_time, vehicle_type, service_type, amount, status, driver_id, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.PickupLocation,
		&b.DropoffLocation,
		&b.PickupDate,
		&b.PickupTime,
		&b.VehicleType,
		&b.ServiceType,
		&b.Amount,
		&b.Status,
		&b.DriverID,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if !booking.Status.IsValid() {
		return fmt.Errorf("create booking: invalid status %q", booking.Status)
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.PickupLocation,
		booking.DropoffLocation,
		booking.PickupDate,
		booking.PickupTime,
		booking.VehicleType,
		booking.ServiceType,
		booking.Amount,
		booking.Status,
		booking.DriverID,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("customer_email", booking.CustomerEmail),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	return booking, nil
}

// where renders the filter as a WHERE clause with positional args.
func (f BookingFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		conds = append(conds, "status = ANY("+arg(statusStrings(f.Statuses))+")")
	}
	if len(f.ExcludeStatuses) > 0 {
		conds = append(conds, "NOT (status = ANY("+arg(statusStrings(f.ExcludeStatuses))+"))")
	}
	if f.DateFrom != nil {
		conds = append(conds, "pickup_date >= "+arg(f.DateFrom.Format(entity.DateLayout))+"::date")
	}
	if f.DateTo != nil {
		conds = append(conds, "pickup_date <= "+arg(f.DateTo.Format(entity.DateLayout))+"::date")
	}
	if f.DriverID != nil {
		conds = append(conds, "driver_id = "+arg(*f.DriverID))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf(`(customer_name ILIKE %[1]s OR customer_email ILIKE %[1]s
			OR customer_phone ILIKE %[1]s OR pickup_location ILIKE %[1]s
			OR dropoff_location ILIKE %[1]s OR pickup_date::text ILIKE %[1]s)`, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error) {
	where, args := filter.where()
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		` ORDER BY pickup_date ASC, pickup_time ASC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := filter.where()

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	return checkAffected(tag)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("update booking status: invalid status %q", status)
	}

	tag, err := r.db.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking status %s: %w", id, err)
	}
	return checkAffected(tag)
}

func (r *bookingRepository) UpdateDriver(ctx context.Context, id uuid.UUID, driverID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE bookings SET driver_id = $2, updated_at = $3 WHERE id = $1`, id, driverID, at)
	if err != nil {
		r.log.Error("Failed to assign driver",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("driver_id", driverID.String()),
		)
		return fmt.Errorf("assign driver to booking %s: %w", id, err)
	}
	return checkAffected(tag)
}

func (r *bookingRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount entity.Amount, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE bookings SET amount = $2, updated_at = $3 WHERE id = $1`, id, amount, at)
	if err != nil {
		r.log.Error("Failed to update booking amount", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("update booking amount %s: %w", id, err)
	}
	return checkAffected(tag)
}
