package request

type PricingRuleRequest struct {
	ServiceType string  `json:"service_type" validate:"required,oneof=airport_transfer long_distance hourly special_event"`
	VehicleType string  `json:"vehicle_type" validate:"required"`
	RatePerKm   float64 `json:"rate_per_km" validate:"gte=0"`
	BaseFare    float64 `json:"base_fare" validate:"gte=0"`
	HourlyRate  float64 `json:"hourly_rate" validate:"gte=0"`
	MinHours    float64 `json:"min_hours" validate:"gte=0"`
	Notes       string  `json:"notes" validate:"omitempty,max=1000"`
}
