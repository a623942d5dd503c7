package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	BaseSimple
	BookingID     uuid.UUID     `db:"booking_id"`
	CustomerName  string        `db:"customer_name"`
	CustomerEmail string        `db:"customer_email"`
	CustomerPhone string        `db:"customer_phone"`
	InvoiceNumber string        `db:"invoice_number"`
	IssueDate     time.Time     `db:"issue_date"`
	DueDate       time.Time     `db:"due_date"`
	Subtotal      float64       `db:"subtotal"`
	TaxAmount     float64       `db:"tax_amount"`
	TotalAmount   float64       `db:"total_amount"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentMethod *string       `db:"payment_method"`
	PaidAt        *time.Time    `db:"paid_at"`
	LineItems     []LineItem    `db:"line_items"`
}

// EffectiveStatus reports overdue for unpaid invoices past their due date.
func (i *Invoice) EffectiveStatus(today time.Time) PaymentStatus {
	if i.PaymentStatus == PaymentStatusUnpaid && DateOnly(today).After(DateOnly(i.DueDate)) {
		return PaymentStatusOverdue
	}
	return i.PaymentStatus
}
