package response

import (
	"time"

	"chauffeur-booking/internal/data/entity"
)

type FollowUpResponse struct {
	ID            string                  `json:"id"`
	BookingID     *string                 `json:"booking_id"`
	CustomerName  string                  `json:"customer_name"`
	CustomerEmail string                  `json:"customer_email"`
	CustomerPhone string                  `json:"customer_phone"`
	Type          entity.FollowUpType     `json:"type"`
	Priority      entity.FollowUpPriority `json:"priority"`
	Status        entity.FollowUpStatus   `json:"status"`
	DueDate       string                  `json:"due_date"`
	Notes         string                  `json:"notes"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func FollowUpToResponse(f *entity.FollowUpTask) FollowUpResponse {
	resp := FollowUpResponse{
		ID:            f.ID.String(),
		CustomerName:  f.CustomerName,
		CustomerEmail: f.CustomerEmail,
		CustomerPhone: f.CustomerPhone,
		Type:          f.Type,
		Priority:      f.Priority,
		Status:        f.Status,
		DueDate:       f.DueDate.Format(entity.DateLayout),
		Notes:         f.Notes,
		CompletedAt:   f.CompletedAt,
		CreatedAt:     f.CreatedAt,
	}
	if f.BookingID != nil {
		id := f.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
