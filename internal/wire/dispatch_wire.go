package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireDispatch(r chi.Router, driverHandler *adaptor.DriverHandler) {
	// GET /api/admin/drivers?status=Available
	r.Get("/drivers", driverHandler.ListDrivers)
}

func wireFollowUp(r chi.Router, followUpHandler *adaptor.FollowUpHandler) {
	r.Route("/followups", func(r chi.Router) {
		r.Get("/", followUpHandler.ListFollowUps)
		r.Put("/{id}/complete", followUpHandler.CompleteFollowUp)
	})
}

// wireAlert exposes the live alert stream; browsers pass the token as ?token=.
func wireAlert(r chi.Router, alertHandler *adaptor.AlertHandler) {
	r.Get("/alerts/ws", alertHandler.Stream)
}
