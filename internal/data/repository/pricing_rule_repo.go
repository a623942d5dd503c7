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

type PricingRuleRepository interface {
	Create(ctx context.Context, rule *entity.PricingRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PricingRule, error)
	FindByServiceAndVehicle(ctx context.Context, serviceType entity.ServiceType, vehicleType string) (*entity.PricingRule, error)
	List(ctx context.Context) ([]*entity.PricingRule, error)
	Update(ctx context.Context, rule *entity.PricingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pricingRuleRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPricingRuleRepository(db database.Querier, log *zap.Logger) PricingRuleRepository {
	return &pricingRuleRepository{
		db:  db,
		log: log.With(zap.String("repository", "pricing_rule")),
	}
}

const pricingRuleColumns = `id, service_type, vehicle_type, rate_per_km, base_fare, hourly_rate, min_hours, notes, created_at, updated_at`

func scanPricingRule(row pgx.Row) (*entity.PricingRule, error) {
	var p entity.PricingRule
	err := row.Scan(
		&p.ID,
		&p.ServiceType,
		&p.VehicleType,
		&p.RatePerKm,
		&p.BaseFare,
		&p.HourlyRate,
		&p.MinHours,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pricingRuleRepository) Create(ctx context.Context, rule *entity.PricingRule) error {
	query := `
		INSERT INTO pricing_rules (` + pricingRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		rule.ID,
		rule.ServiceType,
		rule.VehicleType,
		rule.RatePerKm,
		rule.BaseFare,
		rule.HourlyRate,
		rule.MinHours,
		rule.Notes,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create pricing rule",
			zap.Error(err),
			zap.String("service_type", string(rule.ServiceType)),
			zap.String("vehicle_type", rule.VehicleType),
		)
		return fmt.Errorf("create pricing rule %s/%s: %w", rule.ServiceType, rule.VehicleType, err)
	}
	return nil
}

func (r *pricingRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PricingRule, error) {
	rule, err := scanPricingRule(r.db.QueryRow(ctx, `SELECT `+pricingRuleColumns+` FROM pricing_rules WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pricing rule", zap.Error(err), zap.String("rule_id", id.String()))
		return nil, fmt.Errorf("find pricing rule %s: %w", id, err)
	}
	return rule, nil
}

func (r *pricingRuleRepository) FindByServiceAndVehicle(ctx context.Context, serviceType entity.ServiceType, vehicleType string) (*entity.PricingRule, error) {
	query := `SELECT ` + pricingRuleColumns + ` FROM pricing_rules WHERE service_type = $1 AND vehicle_type = $2`

	rule, err := scanPricingRule(r.db.QueryRow(ctx, query, serviceType, vehicleType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to look up pricing rule",
			zap.Error(err),
			zap.String("service_type", string(serviceType)),
			zap.String("vehicle_type", vehicleType),
		)
		return nil, fmt.Errorf("find pricing rule %s/%s: %w", serviceType, vehicleType, err)
	}
	return rule, nil
}

func (r *pricingRuleRepository) List(ctx context.Context) ([]*entity.PricingRule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pricingRuleColumns+` FROM pricing_rules ORDER BY service_type, vehicle_type`)
	if err != nil {
		r.log.Error("Failed to list pricing rules", zap.Error(err))
		return nil, fmt.Errorf("list pricing rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.PricingRule
	for rows.Next() {
		rule, err := scanPricingRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pricing rule row: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *pricingRuleRepository) Update(ctx context.Context, rule *entity.PricingRule) error {
	query := `
		UPDATE pricing_rules
		SET service_type = $2, vehicle_type = $3, rate_per_km = $4, base_fare = $5,
		    hourly_rate = $6, min_hours = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		rule.ID,
		rule.ServiceType,
		rule.VehicleType,
		rule.RatePerKm,
		rule.BaseFare,
		rule.HourlyRate,
		rule.MinHours,
		rule.Notes,
		rule.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update pricing rule", zap.Error(err), zap.String("rule_id", rule.ID.String()))
		return fmt.Errorf("update pricing rule %s: %w", rule.ID, err)
	}
	return checkAffected(tag)
}

func (r *pricingRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pricing_rules WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete pricing rule", zap.Error(err), zap.String("rule_id", id.String()))
		return fmt.Errorf("delete pricing rule %s: %w", id, err)
	}
	return checkAffected(tag)
}
