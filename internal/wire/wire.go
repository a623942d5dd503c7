// internal/wire/wire.go
package wire

import (
	"net/http"

	"chauffeur-booking/internal/adaptor"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/notifier"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/middleware"
	"chauffeur-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies. hub may be nil when live alerts are off.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	deps usecase.Dependencies,
	hub *notifier.Hub,
	logger *zap.Logger,
) *App {
	if deps.Tokens == nil {
		deps.Tokens = utils.NewTokenManager(config.Admin)
	}

	// Initialize services dan handlers
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, hub, logger)

	// Setup router
	router := setupRouter(handler, deps.Tokens, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	tokens *utils.TokenManager,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	// Apply routes
	wireQuote(r, handler.Quote)

	r.Route("/api/admin", func(r chi.Router) {
		wireAuth(r, handler.Auth)

		// ==================== ADMIN ROUTES (require bearer token) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminJWT(tokens, logger))

			wireBooking(r, handler.Booking)
			wirePricing(r, handler.Pricing)
			wireDispatch(r, handler.Driver)
			wireFollowUp(r, handler.FollowUp)
			wireInvoice(r, handler.Invoice)
			wireAlert(r, handler.Alert)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
