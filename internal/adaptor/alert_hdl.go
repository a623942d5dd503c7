package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/notifier"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

// AlertHandler streams upcoming-trip alerts to the admin dashboard.
type AlertHandler struct {
	hub *notifier.Hub
	log *zap.Logger
}

func NewAlertHandler(hub *notifier.Hub, log *zap.Logger) *AlertHandler {
	return &AlertHandler{
		hub: hub,
		log: log.With(zap.String("handler", "alert")),
	}
}

// Stream handles GET /api/admin/alerts/ws
func (h *AlertHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		utils.ResponseServiceUnavailable(w, "Live alerts are disabled")
		return
	}

	user, _ := utils.GetAdminFromContext(r.Context())
	h.hub.ServeWS(w, r, user)
}
