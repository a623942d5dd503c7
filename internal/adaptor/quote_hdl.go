package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

// QuoteHandler serves the public quote form.
type QuoteHandler struct {
	booking usecase.BookingService
	pricing usecase.PricingService
	log     *zap.Logger
}

func NewQuoteHandler(booking usecase.BookingService, pricing usecase.PricingService, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		booking: booking,
		pricing: pricing,
		log:     log.With(zap.String("handler", "quote")),
	}
}

// SubmitQuote handles POST /api/quotes (public)
func (h *QuoteHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	resp, err := h.booking.SubmitQuote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit quote")
		return
	}

	utils.ResponseCreated(w, "Quote request received", resp)
}

// Estimate handles POST /api/quotes/estimate (public)
func (h *QuoteHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req request.EstimateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	resp, err := h.pricing.EstimateQuote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "estimate quote")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
