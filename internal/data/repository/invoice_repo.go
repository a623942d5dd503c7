package repository

import (
	"context"
	"encoding/json"
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

// Constraint names from the initial migration.
const (
	InvoiceBookingUnique = "invoices_booking_id_key"
	InvoiceNumberUnique  = "invoices_invoice_number_key"
)

type InvoiceFilter struct {
	PaymentStatus *entity.PaymentStatus
	// OverdueBefore keeps unpaid invoices due before the given day
	OverdueBefore *time.Time
	Search        string
	Limit         int
	Offset        int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	MarkPaid(ctx context.Context, id uuid.UUID, method string, at time.Time) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewInvoiceRepository(db database.Querier, log *zap.Logger) InvoiceRepository {
	return &invoiceRepository{
		db:  db,
		log: log.With(zap.String("repository", "invoice")),
	}
}

const invoiceColumns = `id, booking_id, customer_name, customer_email, customer_phone, invoice_number,
	issue_date, due_date, subtotal, tax_amount, total_amount, payment_status, payment_method, paid_at,
	line_items, created_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv       entity.Invoice
		lineItems []byte
	)
	err := row.Scan(
		&inv.ID,
		&inv.BookingID,
		&inv.CustomerName,
		&inv.CustomerEmail,
		&inv.CustomerPhone,
		&inv.InvoiceNumber,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Subtotal,
		&inv.TaxAmount,
		&inv.TotalAmount,
		&inv.PaymentStatus,
		&inv.PaymentMethod,
		&inv.PaidAt,
		&lineItems,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
	}
	return &inv, nil
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	lineItems, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.db.Exec(ctx, query,
		invoice.ID,
		invoice.BookingID,
		invoice.CustomerName,
		invoice.CustomerEmail,
		invoice.CustomerPhone,
		invoice.InvoiceNumber,
		invoice.IssueDate.Format(entity.DateLayout),
		invoice.DueDate.Format(entity.DateLayout),
		invoice.Subtotal,
		invoice.TaxAmount,
		invoice.TotalAmount,
		invoice.PaymentStatus,
		invoice.PaymentMethod,
		invoice.PaidAt,
		lineItems,
		invoice.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create invoice",
			zap.Error(err),
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("booking_id", invoice.BookingID.String()),
		)
		return fmt.Errorf("create invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return nil
}

func (r *invoiceRepository) findOne(ctx context.Context, where string, arg any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find invoice", zap.Error(err), zap.Any("key", arg))
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return inv, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *invoiceRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, "booking_id = $1", bookingID)
}

func (f InvoiceFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.PaymentStatus != nil {
		args = append(args, *f.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if f.OverdueBefore != nil {
		args = append(args, entity.PaymentStatusUnpaid, *f.OverdueBefore)
		conds = append(conds, fmt.Sprintf("payment_status = $%d AND due_date < $%d", len(args)-1, len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf(
			"(invoice_number ILIKE $%[1]d OR customer_name ILIKE $%[1]d OR customer_email ILIKE $%[1]d)", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error) {
	where, args := filter.where()
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where + ` ORDER BY issue_date DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepository) Count(ctx context.Context, filter InvoiceFilter) (int64, error) {
	where, args := filter.where()
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count invoices", zap.Error(err))
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, method string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET payment_status = $2, payment_method = $3, paid_at = $4 WHERE id = $1`,
		id, entity.PaymentStatusPaid, method, at)
	if err != nil {
		r.log.Error("Failed to mark invoice paid", zap.Error(err), zap.String("invoice_id", id.String()))
		return fmt.Errorf("mark invoice %s paid: %w", id, err)
	}
	return checkAffected(tag)
}

func (r *invoiceRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE booking_id = $1`, bookingID)
	if err != nil {
		r.log.Error("Failed to delete booking invoices", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return 0, fmt.Errorf("delete invoices of booking %s: %w", bookingID, err)
	}
	return tag.RowsAffected(), nil
}
