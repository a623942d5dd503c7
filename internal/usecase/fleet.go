package usecase

import (
	"strconv"
	"strings"

	"chauffeur-booking/pkg/apperr"
)

// Fleet classes; pricing rules are keyed by these names.
const (
	FleetExecutiveSedans = "Executive Sedans"
	FleetPremiumSedans   = "Premium Sedans"
	FleetPremiumSUVs     = "Premium SUVs"
	FleetPeopleMovers    = "People Movers"
	FleetMinibuses       = "Minibuses & Coaches"
)

var fleetAliases = map[string]string{
	"executive sedans":    FleetExecutiveSedans,
	"executive sedan":     FleetExecutiveSedans,
	"executive":           FleetExecutiveSedans,
	"ex. sedan":           FleetExecutiveSedans,
	"premium sedans":      FleetPremiumSedans,
	"premium sedan":       FleetPremiumSedans,
	"luxury sedan":        FleetPremiumSedans,
	"luxury sedans":       FleetPremiumSedans,
	"premium suvs":        FleetPremiumSUVs,
	"premium suv":         FleetPremiumSUVs,
	"suv":                 FleetPremiumSUVs,
	"people movers":       FleetPeopleMovers,
	"people mover":        FleetPeopleMovers,
	"van":                 FleetPeopleMovers,
	"minibuses & coaches": FleetMinibuses,
	"minibuses":           FleetMinibuses,
	"minibus":             FleetMinibuses,
	"coach":               FleetMinibuses,
	"coaches":             FleetMinibuses,
}

// FleetClass maps a customer-facing vehicle name to its fleet class.
func FleetClass(vehicle string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(vehicle), " "))
	if class, ok := fleetAliases[key]; ok {
		return class, nil
	}
	return "", apperr.Validation("vehicle_type", "unknown vehicle type "+strconv.Quote(vehicle))
}

func FleetClasses() []string {
	return []string{FleetExecutiveSedans, FleetPremiumSedans, FleetPremiumSUVs, FleetPeopleMovers, FleetMinibuses}
}

