package request

// QuoteRequest is the public quote form submission.
type QuoteRequest struct {
	CustomerName    string   `json:"customer_name" validate:"required,max=160"`
	CustomerEmail   string   `json:"customer_email" validate:"required,email"`
	CustomerPhone   string   `json:"customer_phone" validate:"omitempty,max=40"`
	PickupLocation  string   `json:"pickup_location" validate:"required"`
	DropoffLocation string   `json:"dropoff_location" validate:"required"`
	PickupDate      string   `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime      string   `json:"pickup_time" validate:"required"`
	VehicleType     string   `json:"vehicle_type" validate:"required"`
	ServiceType     string   `json:"service_type" validate:"omitempty,oneof=airport_transfer long_distance hourly special_event"`
	Hours           *float64 `json:"hours,omitempty" validate:"omitempty,gt=0"`
	DistanceKm      *float64 `json:"distance_km,omitempty" validate:"omitempty,gt=0"`
	Notes           string   `json:"notes" validate:"omitempty,max=2000"`
}

type EstimateRequest struct {
	ServiceType     string   `json:"service_type" validate:"omitempty,oneof=airport_transfer long_distance hourly special_event"`
	VehicleType     string   `json:"vehicle_type" validate:"required"`
	PickupLocation  string   `json:"pickup_location"`
	DropoffLocation string   `json:"dropoff_location"`
	Hours           *float64 `json:"hours,omitempty" validate:"omitempty,gt=0"`
	DistanceKm      *float64 `json:"distance_km,omitempty" validate:"omitempty,gt=0"`
}

// CreateBookingRequest is a staff-entered booking; it starts Confirmed with a firm amount.
type CreateBookingRequest struct {
	CustomerName    string   `json:"customer_name" validate:"required,max=160"`
	CustomerEmail   string   `json:"customer_email" validate:"required,email"`
	CustomerPhone   string   `json:"customer_phone" validate:"omitempty,max=40"`
	PickupLocation  string   `json:"pickup_location" validate:"required"`
	DropoffLocation string   `json:"dropoff_location" validate:"required"`
	PickupDate      string   `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime      string   `json:"pickup_time" validate:"required"`
	VehicleType     string   `json:"vehicle_type" validate:"required"`
	ServiceType     string   `json:"service_type" validate:"omitempty,oneof=airport_transfer long_distance hourly special_event"`
	Amount          *float64 `json:"amount" validate:"required,gte=0"`
	DriverID        string   `json:"driver_id" validate:"omitempty,uuid"`
	Notes           string   `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SendQuoteRequest overrides the stored template when Subject or Body are set.
type SendQuoteRequest struct {
	TemplateID string `json:"template_id" validate:"omitempty,uuid"`
	Subject    string `json:"subject" validate:"omitempty,max=200"`
	Body       string `json:"body"`
}

type AssignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required,uuid"`
}

// UpdateAmountRequest takes "150", "150.00 (Est)" or "TBD".
type UpdateAmountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type BookingListRequest struct {
	PaginatedRequest
	View     string `json:"view" validate:"omitempty,oneof=quotes upcoming completed active all"`
	Status   string `json:"status"`
	DateFrom string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Search   string `json:"search" validate:"omitempty,max=100"`
}
