package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type EstimateInput struct {
	ServiceType *entity.ServiceType
	VehicleType string
	Pickup      string
	Dropoff     string
	Hours       *float64
	DistanceKm  *float64
}

// Estimate is a price suggestion. Price is nil when a custom quote is required.
type Estimate struct {
	Price               *entity.Amount
	RequiresCustomQuote bool
	ServiceType         entity.ServiceType
	VehicleClass        string
	LowConfidence       bool
}

type PricingService interface {
	Estimate(ctx context.Context, in EstimateInput) (*Estimate, error)
	// EstimateOrFallback never fails on store errors; it returns the configured fallback flagged low confidence.
	EstimateOrFallback(ctx context.Context, in EstimateInput) (*Estimate, error)
	EstimateQuote(ctx context.Context, req *request.EstimateRequest) (*response.EstimateResponse, error)

	// Rule administration
	ListRules(ctx context.Context) ([]response.PricingRuleResponse, error)
	CreateRule(ctx context.Context, req *request.PricingRuleRequest) (*response.PricingRuleResponse, error)
	UpdateRule(ctx context.Context, id string, req *request.PricingRuleRequest) (*response.PricingRuleResponse, error)
	DeleteRule(ctx context.Context, id string) error
}

type pricingService struct {
	rules    repository.PricingRuleRepository
	fallback float64
	timeout  time.Duration
	now      Clock
	log      *zap.Logger
}

func NewPricingService(rules repository.PricingRuleRepository, config *utils.Config, now Clock, log *zap.Logger) PricingService {
	fallback := config.Pricing.FallbackEstimate
	if fallback <= 0 {
		fallback = 150
	}
	return &pricingService{
		rules:    rules,
		fallback: fallback,
		timeout:  config.App.RequestTimeout,
		now:      now,
		log:      log.With(zap.String("service", "pricing")),
	}
}

// ClassifyService infers the service type from the locations when the caller gave none.
func ClassifyService(pickup, dropoff string) entity.ServiceType {
	if strings.Contains(strings.ToLower(pickup), "airport") || strings.Contains(strings.ToLower(dropoff), "airport") {
		return entity.ServiceAirportTransfer
	}
	return entity.ServiceLongDistance
}

func (s *pricingService) resolveInput(in EstimateInput) (entity.ServiceType, string, error) {
	serviceType := ClassifyService(in.Pickup, in.Dropoff)
	if in.ServiceType != nil && *in.ServiceType != "" {
		if !in.ServiceType.IsValid() {
			return "", "", apperr.Validation("service_type", "unknown service type "+string(*in.ServiceType))
		}
		serviceType = *in.ServiceType
	}

	class, err := FleetClass(in.VehicleType)
	if err != nil {
		return "", "", err
	}
	return serviceType, class, nil
}

func (s *pricingService) Estimate(ctx context.Context, in EstimateInput) (*Estimate, error) {
	serviceType, class, err := s.resolveInput(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rule, err := s.rules.FindByServiceAndVehicle(ctx, serviceType, class)
	if err != nil {
		return nil, storeErr("look up pricing rule", err)
	}

	est := &Estimate{ServiceType: serviceType, VehicleClass: class}
	if rule == nil {
		est.RequiresCustomQuote = true
		return est, nil
	}

	price := entity.EstimatedAmount(rule.Price(in.Hours, in.DistanceKm))
	est.Price = &price
	return est, nil
}

func (s *pricingService) EstimateOrFallback(ctx context.Context, in EstimateInput) (*Estimate, error) {
	est, err := s.Estimate(ctx, in)
	if err == nil {
		return est, nil
	}
	if apperr.IsValidation(err) {
		return nil, err
	}

	s.log.Warn("Pricing unavailable, using fallback estimate",
		zap.Error(err),
		zap.Float64("fallback", s.fallback),
	)
	serviceType, class, _ := s.resolveInput(in)
	price := entity.EstimatedAmount(s.fallback)
	return &Estimate{
		Price:         &price,
		ServiceType:   serviceType,
		VehicleClass:  class,
		LowConfidence: true,
	}, nil
}

func (s *pricingService) EstimateQuote(ctx context.Context, req *request.EstimateRequest) (*response.EstimateResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	in := EstimateInput{
		VehicleType: req.VehicleType,
		Pickup:      req.PickupLocation,
		Dropoff:     req.DropoffLocation,
		Hours:       req.Hours,
		DistanceKm:  req.DistanceKm,
	}
	if req.ServiceType != "" {
		st := entity.ServiceType(req.ServiceType)
		in.ServiceType = &st
	}

	est, err := s.EstimateOrFallback(ctx, in)
	if err != nil {
		return nil, err
	}
	resp := EstimateToResponse(est)
	return &resp, nil
}

func EstimateToResponse(est *Estimate) response.EstimateResponse {
	resp := response.EstimateResponse{
		RequiresCustomQuote: est.RequiresCustomQuote,
		ServiceType:         string(est.ServiceType),
		VehicleClass:        est.VehicleClass,
		LowConfidence:       est.LowConfidence,
		Display:             "Custom Quote Required",
	}
	if est.Price != nil {
		v := est.Price.Float64()
		resp.Price = &v
		resp.Display = est.Price.Display()
	}
	return resp
}

func (s *pricingService) ListRules(ctx context.Context) ([]response.PricingRuleResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, storeErr("list pricing rules", err)
	}

	out := make([]response.PricingRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, response.PricingRuleToResponse(r))
	}
	return out, nil
}

func (s *pricingService) ruleFromRequest(req *request.PricingRuleRequest) (*entity.PricingRule, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	class, err := FleetClass(req.VehicleType)
	if err != nil {
		return nil, err
	}
	return &entity.PricingRule{
		ServiceType: entity.ServiceType(req.ServiceType),
		VehicleType: class,
		RatePerKm:   req.RatePerKm,
		BaseFare:    req.BaseFare,
		HourlyRate:  req.HourlyRate,
		MinHours:    req.MinHours,
		Notes:       req.Notes,
	}, nil
}

func (s *pricingService) CreateRule(ctx context.Context, req *request.PricingRuleRequest) (*response.PricingRuleResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rule, err := s.ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rule.ID = utils.GenerateUUID()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.rules.Create(ctx, rule); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.ConflictError{Resource: "pricing rule", Msg: "a rule for this service and vehicle already exists"}
		}
		return nil, storeErr("create pricing rule", err)
	}

	s.log.Info("Pricing rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("service_type", string(rule.ServiceType)),
		zap.String("vehicle_type", rule.VehicleType),
	)
	resp := response.PricingRuleToResponse(rule)
	return &resp, nil
}

func (s *pricingService) UpdateRule(ctx context.Context, id string, req *request.PricingRuleRequest) (*response.PricingRuleResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ruleID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	rule, err := s.ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return nil, storeErr("find pricing rule", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("pricing rule", id)
	}

	rule.ID = ruleID
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = s.now()

	if err := s.rules.Update(ctx, rule); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoRows):
			return nil, apperr.NotFound("pricing rule", id)
		case repository.IsUniqueViolation(err):
			return nil, apperr.ConflictError{Resource: "pricing rule", Msg: "a rule for this service and vehicle already exists"}
		}
		return nil, storeErr("update pricing rule", err)
	}

	resp := response.PricingRuleToResponse(rule)
	return &resp, nil
}

func (s *pricingService) DeleteRule(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ruleID, err := parseID("id", id)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, ruleID); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.NotFound("pricing rule", id)
		}
		return storeErr("delete pricing rule", err)
	}
	s.log.Info("Pricing rule deleted", zap.String("rule_id", id))
	return nil
}
