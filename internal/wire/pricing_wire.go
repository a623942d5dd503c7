package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePricing(r chi.Router, pricingHandler *adaptor.PricingHandler) {
	r.Route("/pricing-rules", func(r chi.Router) {
		r.Get("/", pricingHandler.ListRules)
		r.Post("/", pricingHandler.CreateRule)
		r.Put("/{id}", pricingHandler.UpdateRule)
		r.Delete("/{id}", pricingHandler.DeleteRule)
	})
}
