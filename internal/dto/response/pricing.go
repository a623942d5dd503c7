package response

import (
	"time"

	"chauffeur-booking/internal/data/entity"
)

type PricingRuleResponse struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"service_type"`
	VehicleType string    `json:"vehicle_type"`
	RatePerKm   float64   `json:"rate_per_km"`
	BaseFare    float64   `json:"base_fare"`
	HourlyRate  float64   `json:"hourly_rate"`
	MinHours    float64   `json:"min_hours"`
	Notes       string    `json:"notes,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func PricingRuleToResponse(r *entity.PricingRule) PricingRuleResponse {
	return PricingRuleResponse{
		ID:          r.ID.String(),
		ServiceType: string(r.ServiceType),
		VehicleType: r.VehicleType,
		RatePerKm:   r.RatePerKm,
		BaseFare:    r.BaseFare,
		HourlyRate:  r.HourlyRate,
		MinHours:    r.MinHours,
		Notes:       r.Notes,
		UpdatedAt:   r.UpdatedAt,
	}
}
