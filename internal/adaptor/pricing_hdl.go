package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PricingHandler struct {
	service usecase.PricingService
	log     *zap.Logger
}

func NewPricingHandler(service usecase.PricingService, log *zap.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		log:     log.With(zap.String("handler", "pricing")),
	}
}

// ListRules handles GET /api/admin/pricing-rules
func (h *PricingHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.ListRules(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list pricing rules")
		return
	}

	utils.ResponseSuccess(w, "success", rules)
}

// CreateRule handles POST /api/admin/pricing-rules
func (h *PricingHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req request.PricingRuleRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	rule, err := h.service.CreateRule(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create pricing rule")
		return
	}

	utils.ResponseCreated(w, "Pricing rule created", rule)
}

// UpdateRule handles PUT /api/admin/pricing-rules/{id}
func (h *PricingHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req request.PricingRuleRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	rule, err := h.service.UpdateRule(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update pricing rule")
		return
	}

	utils.ResponseSuccess(w, "Pricing rule updated", rule)
}

// DeleteRule handles DELETE /api/admin/pricing-rules/{id}
func (h *PricingHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete pricing rule")
		return
	}

	utils.ResponseSuccess(w, "Pricing rule deleted", nil)
}
