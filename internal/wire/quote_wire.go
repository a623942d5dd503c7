package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireQuote(r chi.Router, quoteHandler *adaptor.QuoteHandler) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/quotes - Customer quote form
	r.Post("/api/quotes", quoteHandler.SubmitQuote)

	// POST /api/quotes/estimate - Live price preview while the form is filled in
	r.Post("/api/quotes/estimate", quoteHandler.Estimate)
}
