package entity

import (
	"time"

	"github.com/google/uuid"
)

type FollowUpType string

const (
	FollowUpTypeQuote    FollowUpType = "quote"
	FollowUpTypeBooking  FollowUpType = "booking"
	FollowUpTypeFeedback FollowUpType = "feedback"
	FollowUpTypeGeneral  FollowUpType = "general"
)

type FollowUpPriority string

const (
	FollowUpPriorityLow    FollowUpPriority = "low"
	FollowUpPriorityMedium FollowUpPriority = "medium"
	FollowUpPriorityHigh   FollowUpPriority = "high"
	FollowUpPriorityUrgent FollowUpPriority = "urgent"
)

type FollowUpStatus string

const (
	FollowUpStatusPending   FollowUpStatus = "pending"
	FollowUpStatusCompleted FollowUpStatus = "completed"
	FollowUpStatusCancelled FollowUpStatus = "cancelled"
)

// FollowUpTask is a reminder for staff; BookingID is a back-reference and does not own the booking.
type FollowUpTask struct {
	BaseSimple
	BookingID     *uuid.UUID       `db:"booking_id"`
	CustomerName  string           `db:"customer_name"`
	CustomerEmail string           `db:"customer_email"`
	CustomerPhone string           `db:"customer_phone"`
	Type          FollowUpType     `db:"type"`
	Priority      FollowUpPriority `db:"priority"`
	Status        FollowUpStatus   `db:"status"`
	DueDate       time.Time        `db:"due_date"`
	Notes         string           `db:"notes"`
	CompletedAt   *time.Time       `db:"completed_at"`
}
