package entity

type PricingRule struct {
	Base
	ServiceType ServiceType `db:"service_type"`
	VehicleType string      `db:"vehicle_type"`
	RatePerKm   float64     `db:"rate_per_km"`
	BaseFare    float64     `db:"base_fare"`
	HourlyRate  float64     `db:"hourly_rate"`
	MinHours    float64     `db:"min_hours"`
	Notes       string      `db:"notes"`
}

// Price applies the rule. Hourly bookings bill at least MinHours; other services add
// the per-km rate only when the distance is known.
func (r *PricingRule) Price(hours, distanceKm *float64) float64 {
	if r.ServiceType == ServiceHourly {
		billed := r.MinHours
		if hours != nil && *hours > billed {
			billed = *hours
		}
		return r.HourlyRate * billed
	}

	price := r.BaseFare
	if distanceKm != nil && *distanceKm > 0 {
		price += r.RatePerKm * *distanceKm
	}
	return price
}
