package wire

import (
	"chauffeur-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireInvoice(r chi.Router, invoiceHandler *adaptor.InvoiceHandler) {
	r.Route("/invoices", func(r chi.Router) {
		// GET /api/admin/invoices?payment_status=overdue&search=
		r.Get("/", invoiceHandler.ListInvoices)
		r.Get("/{id}", invoiceHandler.GetInvoice)
		r.Get("/{id}/pdf", invoiceHandler.DownloadPDF)
		r.Put("/{id}/paid", invoiceHandler.MarkPaid)
		r.Post("/{id}/send", invoiceHandler.SendInvoice)
	})
}
