package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireBooking mounts under /api/admin; auth is applied by the parent route.
func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/bookings", func(r chi.Router) {
		// GET /api/admin/bookings?view=&status=&date_from=&date_to=&search=
		r.Get("/", bookingHandler.ListBookings)

		// POST /api/admin/bookings - Manual booking, created as Confirmed
		r.Post("/", bookingHandler.CreateBooking)

		r.Get("/{id}", bookingHandler.GetBooking)
		r.Delete("/{id}", bookingHandler.DeleteBooking)

		// PUT /api/admin/bookings/{id}/amount - Accepts "$150.00", "150" or "TBD"
		r.Put("/{id}/amount", bookingHandler.UpdateAmount)

		// PUT /api/admin/bookings/{id}/status - Guarded by the transition table
		r.Put("/{id}/status", bookingHandler.UpdateStatus)

		// POST /api/admin/bookings/{id}/send-quote - Email first, then Quote Sent + follow-up
		r.Post("/{id}/send-quote", bookingHandler.SendQuote)

		r.Put("/{id}/driver", bookingHandler.AssignDriver)

		// POST /api/admin/bookings/{id}/invoice - Completed bookings only
		r.Post("/{id}/invoice", bookingHandler.GenerateInvoice)
	})

	r.Get("/email-templates", bookingHandler.ListEmailTemplates)
}
