package repository

import (
	"context"
	"errors"
	"fmt"

	"chauffeur-booking/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrNoRows is returned by updates and deletes that matched nothing.
var ErrNoRows = errors.New("no rows affected")

type Repository struct {
	Booking       BookingRepository
	Driver        DriverRepository
	PricingRule   PricingRuleRepository
	FollowUp      FollowUpRepository
	Invoice       InvoiceRepository
	EmailTemplate EmailTemplateRepository
	Customer      CustomerRepository
	Alert         AlertRepository

	Transactor Transactor
}

// Transactor runs fn against repositories bound to one transaction.
// fn's error rolls everything back; a nil return commits.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepositories(db, log)
	repo.Transactor = &pgxTransactor{db: db, log: log.With(zap.String("repository", "tx"))}
	return repo
}

func newRepositories(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Booking:       NewBookingRepository(q, log),
		Driver:        NewDriverRepository(q, log),
		PricingRule:   NewPricingRuleRepository(q, log),
		FollowUp:      NewFollowUpRepository(q, log),
		Invoice:       NewInvoiceRepository(q, log),
		EmailTemplate: NewEmailTemplateRepository(q, log),
		Customer:      NewCustomerRepository(q, log),
		Alert:         NewAlertRepository(q, log),
	}
}

type pgxTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgxTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	scoped := newRepositories(tx, t.log)
	scoped.Transactor = nestedTransactor{repo: scoped}

	if err := fn(scoped); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		t.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// nestedTransactor reuses the outer transaction.
type nestedTransactor struct {
	repo *Repository
}

func (n nestedTransactor) WithinTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(n.repo)
}

// IsUniqueViolation reports a PostgreSQL unique_violation (23505), optionally on a named constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}

func checkAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
