package adaptor

import (
	"net/http"
	"strings"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookingHandler serves the admin booking screens.
type BookingHandler struct {
	booking  usecase.BookingService
	status   usecase.StatusService
	dispatch usecase.DispatchService
	invoice  usecase.InvoiceService
	log      *zap.Logger
}

func NewBookingHandler(service *usecase.Service, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		booking:  service.Booking,
		status:   service.Status,
		dispatch: service.Dispatch,
		invoice:  service.Invoice,
		log:      log.With(zap.String("handler", "booking")),
	}
}

// ListBookings handles GET /api/admin/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.BookingListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
		View:     strings.ToLower(query.Get("view")),
		Status:   query.Get("status"),
		DateFrom: query.Get("date_from"),
		DateTo:   query.Get("date_to"),
		Search:   query.Get("search"),
	}

	bookings, err := h.booking.ListBookings(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CreateBooking handles POST /api/admin/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	booking, err := h.booking.CreateBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetBooking handles GET /api/admin/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.booking.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// DeleteBooking handles DELETE /api/admin/bookings/{id}
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	result, err := h.booking.DeleteBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking deleted", result)
}

// UpdateAmount handles PUT /api/admin/bookings/{id}/amount
func (h *BookingHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateAmountRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	booking, err := h.booking.UpdateAmount(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking amount")
		return
	}

	utils.ResponseSuccess(w, "Amount updated", booking)
}

// UpdateStatus handles PUT /api/admin/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatusRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.status.Transition(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "Status updated", result)
}

// SendQuote handles POST /api/admin/bookings/{id}/send-quote; the body is optional.
func (h *BookingHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	var req request.SendQuoteRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	result, err := h.status.SendQuote(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "send quote")
		return
	}

	utils.ResponseSuccess(w, "Quote sent", result)
}

// AssignDriver handles PUT /api/admin/bookings/{id}/driver
func (h *BookingHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	var req request.AssignDriverRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.dispatch.Assign(r.Context(), chi.URLParam(r, "id"), req.DriverID)
	if err != nil {
		handleServiceError(w, h.log, err, "assign driver")
		return
	}

	utils.ResponseSuccess(w, "Driver assigned", booking)
}

// GenerateInvoice handles POST /api/admin/bookings/{id}/invoice
func (h *BookingHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoice.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "generate invoice")
		return
	}

	utils.ResponseCreated(w, "Invoice generated", invoice)
}

// ListEmailTemplates handles GET /api/admin/email-templates
func (h *BookingHandler) ListEmailTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.booking.ListEmailTemplates(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list email templates")
		return
	}

	utils.ResponseSuccess(w, "success", templates)
}
