package repository

import (
	"context"
	"fmt"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/database"

	"go.uber.org/zap"
)

type CustomerRepository interface {
	// Upsert inserts the customer or refreshes name and phone of the row with the same email.
	Upsert(ctx context.Context, customer *entity.Customer) error
}

type customerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCustomerRepository(db database.Querier, log *zap.Logger) CustomerRepository {
	return &customerRepository{
		db:  db,
		log: log.With(zap.String("repository", "customer")),
	}
}

func (r *customerRepository) Upsert(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, full_name, email, phone, status, notes, created_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		customer.ID,
		customer.FullName,
		customer.Email,
		customer.Phone,
		customer.Status,
		customer.Notes,
		customer.CreatedAt,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		r.log.Error("Failed to upsert customer", zap.Error(err), zap.String("email", customer.Email))
		return fmt.Errorf("upsert customer %s: %w", customer.Email, err)
	}
	return nil
}
