package response

import (
	"time"

	"chauffeur-booking/internal/data/entity"
)

type InvoiceResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	InvoiceNumber string               `json:"invoice_number"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	CustomerPhone string               `json:"customer_phone"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	Subtotal      float64              `json:"subtotal"`
	TaxAmount     float64              `json:"tax_amount"`
	TotalAmount   float64              `json:"total_amount"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	PaymentMethod *string              `json:"payment_method,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	LineItems     []entity.LineItem    `json:"line_items"`
	CreatedAt     time.Time            `json:"created_at"`
}

// InvoiceToResponse reports unpaid invoices past due as overdue relative to today.
func InvoiceToResponse(inv *entity.Invoice, today time.Time) InvoiceResponse {
	items := inv.LineItems
	if items == nil {
		items = []entity.LineItem{}
	}
	return InvoiceResponse{
		ID:            inv.ID.String(),
		BookingID:     inv.BookingID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		CustomerPhone: inv.CustomerPhone,
		IssueDate:     inv.IssueDate.Format(entity.DateLayout),
		DueDate:       inv.DueDate.Format(entity.DateLayout),
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		PaymentStatus: inv.EffectiveStatus(today),
		PaymentMethod: inv.PaymentMethod,
		PaidAt:        inv.PaidAt,
		LineItems:     items,
		CreatedAt:     inv.CreatedAt,
	}
}
