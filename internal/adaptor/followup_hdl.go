package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FollowUpHandler struct {
	service usecase.FollowUpService
	log     *zap.Logger
}

func NewFollowUpHandler(service usecase.FollowUpService, log *zap.Logger) *FollowUpHandler {
	return &FollowUpHandler{
		service: service,
		log:     log.With(zap.String("handler", "followup")),
	}
}

// ListFollowUps handles GET /api/admin/followups
func (h *FollowUpHandler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.FollowUpListRequest{
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Type:     query.Get("type"),
		Search:   query.Get("search"),
	}

	tasks, err := h.service.List(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list follow-ups")
		return
	}

	utils.ResponseSuccess(w, "success", tasks)
}

// CompleteFollowUp handles PUT /api/admin/followups/{id}/complete
func (h *FollowUpHandler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "complete follow-up")
		return
	}

	utils.ResponseSuccess(w, "Follow-up completed", task)
}
