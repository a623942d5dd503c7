package request

type InvoiceListRequest struct {
	PaginatedRequest
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=unpaid paid overdue"`
	Search        string `json:"search" validate:"omitempty,max=100"`
}

type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=40"`
}
