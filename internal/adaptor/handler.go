package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"chauffeur-booking/internal/notifier"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Quote    *QuoteHandler
	Booking  *BookingHandler
	Pricing  *PricingHandler
	Driver   *DriverHandler
	FollowUp *FollowUpHandler
	Invoice  *InvoiceHandler
	Alert    *AlertHandler
}

func NewHandler(service *usecase.Service, hub *notifier.Hub, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Quote:    NewQuoteHandler(service.Booking, service.Pricing, log),
		Booking:  NewBookingHandler(service, log),
		Pricing:  NewPricingHandler(service.Pricing, log),
		Driver:   NewDriverHandler(service.Dispatch, log),
		FollowUp: NewFollowUpHandler(service.FollowUp, log),
		Invoice:  NewInvoiceHandler(service.Invoice, log),
		Alert:    NewAlertHandler(hub, log),
	}
}

// decodeBody reads a JSON body into dst. An empty body is accepted when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// handleServiceError maps service errors onto HTTP responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validation apperr.ValidationError
		conflict   apperr.ConflictError
		partial    apperr.PartialFailureError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), validation.Fields)

	case apperr.IsUnauthorized(err):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case apperr.IsNotFound(err):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case apperr.IsInvalidState(err):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.As(err, &conflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, conflict.Error())

	case apperr.IsQuoteNotSent(err):
		log.Warn(operation+" failed - email not sent", zap.Error(err))
		utils.ResponseBadGateway(w, "Quote email could not be sent; the booking was not changed")

	case errors.As(err, &partial):
		log.Error(operation+" partially failed", zap.Error(err))
		utils.ResponseInternalError(w, partial.Msg)

	case apperr.IsUnavailable(err):
		log.Error(operation+" failed - dependency unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
