package adaptor

import (
	"net/http"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/usecase"
	"chauffeur-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	service usecase.InvoiceService
	log     *zap.Logger
}

func NewInvoiceHandler(service usecase.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log.With(zap.String("handler", "invoice")),
	}
}

// ListInvoices handles GET /api/admin/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.InvoiceListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
		PaymentStatus: query.Get("payment_status"),
		Search:        query.Get("search"),
	}

	invoices, err := h.service.List(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list invoices")
		return
	}

	utils.ResponseSuccess(w, "success", invoices)
}

// GetInvoice handles GET /api/admin/invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get invoice")
		return
	}

	utils.ResponseSuccess(w, "success", invoice)
}

// DownloadPDF handles GET /api/admin/invoices/{id}/pdf
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	body, filename, err := h.service.RenderPDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "render invoice pdf")
		return
	}

	utils.ResponseFile(w, "application/pdf", filename, body)
}

// MarkPaid handles PUT /api/admin/invoices/{id}/paid
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req request.MarkPaidRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	invoice, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "mark invoice paid")
		return
	}

	utils.ResponseSuccess(w, "Invoice marked as paid", invoice)
}

// SendInvoice handles POST /api/admin/invoices/{id}/send
func (h *InvoiceHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "send invoice")
		return
	}

	utils.ResponseSuccess(w, "Invoice sent", invoice)
}
