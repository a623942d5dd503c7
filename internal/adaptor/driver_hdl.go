package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type DriverHandler struct {
	service usecase.DispatchService
	log     *zap.Logger
}

func NewDriverHandler(service usecase.DispatchService, log *zap.Logger) *DriverHandler {
	return &DriverHandler{
		service: service,
		log:     log.With(zap.String("handler", "driver")),
	}
}

// ListDrivers handles GET /api/admin/drivers?status=
func (h *DriverHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.ListDrivers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, h.log, err, "list drivers")
		return
	}

	utils.ResponseSuccess(w, "success", drivers)
}
