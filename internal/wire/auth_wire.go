package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/admin/login - Login admin (tanpa auth middleware), returns a bearer token
	r.Post("/login", authHandler.Login)
}
