package response

import (
	"time"

	"chauffeur-booking/internal/data/entity"
)

type BookingResponse struct {
	ID                 string               `json:"id"`
	CustomerName       string               `json:"customer_name"`
	CustomerEmail      string               `json:"customer_email"`
	CustomerPhone      string               `json:"customer_phone"`
	PickupLocation     string               `json:"pickup_location"`
	DropoffLocation    string               `json:"dropoff_location"`
	PickupDate         string               `json:"pickup_date"`
	PickupTime         string               `json:"pickup_time"`
	VehicleType        string               `json:"vehicle_type"`
	ServiceType        string               `json:"service_type,omitempty"`
	Amount             string               `json:"amount"`
	AmountValue        *float64             `json:"amount_value"`
	AmountEstimated    bool                 `json:"amount_estimated"`
	Status             entity.BookingStatus `json:"status"`
	Stage              string               `json:"stage"`
	AllowedTransitions []string             `json:"allowed_transitions"`
	DriverID           *string              `json:"driver_id"`
	Notes              string               `json:"notes,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type EstimateResponse struct {
	Price               *float64 `json:"price"`
	Display             string   `json:"display"`
	RequiresCustomQuote bool     `json:"requires_custom_quote"`
	ServiceType         string   `json:"service_type"`
	VehicleClass        string   `json:"vehicle_class"`
	LowConfidence       bool     `json:"low_confidence"`
}

type QuoteSubmittedResponse struct {
	Booking  BookingResponse  `json:"booking"`
	Estimate EstimateResponse `json:"estimate"`
}

// TransitionResponse carries the follow-up created by a quote send.
type TransitionResponse struct {
	Booking  BookingResponse   `json:"booking"`
	FollowUp *FollowUpResponse `json:"followup,omitempty"`
}

type DeleteBookingResponse struct {
	BookingID        string `json:"booking_id"`
	InvoicesRemoved  int64  `json:"invoices_removed"`
	FollowUpsRemoved int64  `json:"followups_removed"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		PickupDate:      b.PickupDate.Format(entity.DateLayout),
		PickupTime:      b.PickupTime,
		VehicleType:     b.VehicleType,
		Amount:          b.Amount.Display(),
		AmountEstimated: b.Amount.IsEstimated(),
		Status:          b.Status,
		Stage:           b.Status.Stage().String(),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.ServiceType != nil {
		resp.ServiceType = string(*b.ServiceType)
	}
	if !b.Amount.IsPending() {
		v := b.Amount.Float64()
		resp.AmountValue = &v
	}
	if b.DriverID != nil {
		id := b.DriverID.String()
		resp.DriverID = &id
	}
	resp.AllowedTransitions = make([]string, 0, 3)
	for _, s := range b.Status.AllowedTargets() {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(s))
	}
	return resp
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
