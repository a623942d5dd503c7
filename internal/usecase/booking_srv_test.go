package usecase

import (
	"context"
	"testing"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/pkg/apperr"

	"github.com/google/uuid"
)

func quoteRequest() *request.QuoteRequest {
	return &request.QuoteRequest{
		CustomerName:    "Sam Lee",
		CustomerEmail:   "sam@example.com",
		CustomerPhone:   "0411 111 111",
		PickupLocation:  "Melbourne Airport",
		DropoffLocation: "Docklands",
		PickupDate:      testDay(5).Format(entity.DateLayout),
		PickupTime:      "07:15",
		VehicleType:     "Executive Sedan",
		DistanceKm:      ptr(10.0),
	}
}

func TestSubmitQuoteStoresRoundedEstimate(t *testing.T) {
	env := newTestEnv()
	env.store.addRule(entity.PricingRule{
		ServiceType: entity.ServiceAirportTransfer,
		VehicleType: FleetExecutiveSedans,
		BaseFare:    120,
		RatePerKm:   2.25,
	})

	resp, err := env.svc.Booking.SubmitQuote(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if resp.Booking.Status != entity.BookingStatusQuoteRequest {
		t.Fatalf("status = %q, want Quote Request", resp.Booking.Status)
	}
	if resp.Booking.Amount != "$143.00 (Est)" {
		t.Fatalf("amount = %q, want $143.00 (Est)", resp.Booking.Amount)
	}
	if resp.Estimate.Price == nil || *resp.Estimate.Price != 142.5 {
		t.Fatalf("estimate = %+v", resp.Estimate)
	}
	if resp.Booking.ServiceType != string(entity.ServiceAirportTransfer) {
		t.Fatalf("service type = %q", resp.Booking.ServiceType)
	}
}

func TestSubmitQuoteWithoutRuleIsPending(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.Booking.SubmitQuote(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if resp.Booking.Amount != "TBD" || resp.Booking.AmountValue != nil {
		t.Fatalf("amount = %q / %v, want TBD", resp.Booking.Amount, resp.Booking.AmountValue)
	}
	if !resp.Estimate.RequiresCustomQuote {
		t.Fatalf("estimate should require a custom quote")
	}
}

func TestSubmitQuoteRejectsBadInput(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	past := quoteRequest()
	past.PickupDate = testDay(-1).Format(entity.DateLayout)
	if _, err := env.svc.Booking.SubmitQuote(ctx, past); !apperr.IsValidation(err) {
		t.Fatalf("past pickup date should be rejected, got %v", err)
	}

	badTime := quoteRequest()
	badTime.PickupTime = "quarter past seven"
	if _, err := env.svc.Booking.SubmitQuote(ctx, badTime); !apperr.IsValidation(err) {
		t.Fatalf("bad pickup time should be rejected, got %v", err)
	}

	missing := quoteRequest()
	missing.CustomerEmail = ""
	if _, err := env.svc.Booking.SubmitQuote(ctx, missing); !apperr.IsValidation(err) {
		t.Fatalf("missing email should be rejected, got %v", err)
	}
}

func TestQuoteAndManualBookingShareFleetClass(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	quote := quoteRequest()
	quote.VehicleType = "Luxury Sedan"
	submitted, err := env.svc.Booking.SubmitQuote(ctx, quote)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	manual, err := env.svc.Booking.CreateBooking(ctx, &request.CreateBookingRequest{
		CustomerName:    "Sam Lee",
		CustomerEmail:   "sam@example.com",
		PickupLocation:  "Melbourne Airport",
		DropoffLocation: "Docklands",
		PickupDate:      testDay(5).Format(entity.DateLayout),
		PickupTime:      "07:15",
		VehicleType:     "premium sedan",
		Amount:          ptr(150.0),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if submitted.Booking.VehicleType != FleetPremiumSedans || manual.VehicleType != FleetPremiumSedans {
		t.Fatalf("vehicle types = %q / %q, want both %q", submitted.Booking.VehicleType, manual.VehicleType, FleetPremiumSedans)
	}
	stored, _ := env.store.booking(uuid.MustParse(submitted.Booking.ID))
	if stored.VehicleType != FleetPremiumSedans {
		t.Fatalf("stored vehicle type = %q", stored.VehicleType)
	}
}

func TestCreateBookingIsConfirmedWithFirmAmount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	driver := env.store.addDriver(entity.Driver{Name: "Alex", Status: entity.DriverStatusAvailable})

	req := &request.CreateBookingRequest{
		CustomerName:    "Corporate Client",
		CustomerEmail:   "travel@corp.example",
		PickupLocation:  "Collins St",
		DropoffLocation: "Tullamarine Airport",
		PickupDate:      testDay(1).Format(entity.DateLayout),
		PickupTime:      "05:00",
		VehicleType:     "luxury sedan",
		Amount:          ptr(210.0),
		DriverID:        driver.ID.String(),
	}
	resp, err := env.svc.Booking.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if resp.Status != entity.BookingStatusConfirmed || resp.Amount != "$210.00" || resp.AmountEstimated {
		t.Fatalf("unexpected booking %+v", resp)
	}
	if resp.VehicleType != FleetPremiumSedans || resp.DriverID == nil || *resp.DriverID != driver.ID.String() {
		t.Fatalf("vehicle/driver not set: %+v", resp)
	}
	if _, ok := env.store.data.customers["travel@corp.example"]; !ok {
		t.Fatalf("customer was not recorded")
	}

	req.DriverID = "0b7e8d1a-54b4-4b63-9a0c-3f7f2a1d9e11"
	if _, err := env.svc.Booking.CreateBooking(ctx, req); !apperr.IsNotFound(err) {
		t.Fatalf("unknown driver should be NotFound, got %v", err)
	}
}

func TestCreateBookingRollsBackOnFailure(t *testing.T) {
	env := newTestEnv()
	env.store.failOn("booking.create", errStoreDown)

	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		CustomerName:    "Corporate Client",
		CustomerEmail:   "travel@corp.example",
		PickupLocation:  "Collins St",
		DropoffLocation: "Airport",
		PickupDate:      testDay(1).Format(entity.DateLayout),
		PickupTime:      "05:00",
		VehicleType:     "SUV",
		Amount:          ptr(180.0),
	})
	if !apperr.IsUnavailable(err) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if len(env.store.data.customers) != 0 {
		t.Fatalf("customer upsert should have rolled back")
	}
}

func seedListFixture(env *testEnv) {
	add := func(status entity.BookingStatus, day int, name string) {
		b := seedQuoteRequest(env)
		b.Status = status
		b.PickupDate = testDay(day)
		b.CustomerName = name
		env.store.addBooking(b)
	}
	add(entity.BookingStatusQuoteRequest, 1, "Quinn")
	add(entity.BookingStatusPending, 1, "Pat")
	add(entity.BookingStatusConfirmed, 2, "Casey")
	add(entity.BookingStatusConfirmed, -1, "Morgan")
	add(entity.BookingStatusCompleted, -3, "Drew")
	add(entity.BookingStatusCancelled, 4, "Robin")
}

func TestListBookingsViews(t *testing.T) {
	env := newTestEnv()
	seedListFixture(env)
	page := request.PaginatedRequest{Page: 1, PerPage: 20}

	tests := []struct {
		name   string
		req    request.BookingListRequest
		expect int64
	}{
		{"default hides raw quote requests", request.BookingListRequest{PaginatedRequest: page}, 5},
		{"quotes", request.BookingListRequest{PaginatedRequest: page, View: ViewQuotes}, 2},
		{"upcoming skips past trips", request.BookingListRequest{PaginatedRequest: page, View: ViewUpcoming}, 1},
		{"completed", request.BookingListRequest{PaginatedRequest: page, View: ViewCompleted}, 1},
		{"all", request.BookingListRequest{PaginatedRequest: page, View: ViewAll}, 6},
		{"status inside view", request.BookingListRequest{PaginatedRequest: page, View: ViewQuotes, Status: "pending"}, 1},
		{"status outside view", request.BookingListRequest{PaginatedRequest: page, View: ViewQuotes, Status: "Confirmed"}, 0},
		{"search", request.BookingListRequest{PaginatedRequest: page, View: ViewAll, Search: "case"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := env.svc.Booking.ListBookings(context.Background(), &req)
			if err != nil {
				t.Fatalf("ListBookings: %v", err)
			}
			if resp.Pagination.Total != tt.expect || int64(len(resp.Data)) != tt.expect {
				t.Fatalf("got total %d / %d rows, want %d", resp.Pagination.Total, len(resp.Data), tt.expect)
			}
		})
	}

	if _, err := env.svc.Booking.ListBookings(context.Background(), &request.BookingListRequest{Status: "Archived"}); !apperr.IsValidation(err) {
		t.Fatalf("unknown status filter should be a validation error, got %v", err)
	}
}

func TestUpdateAmount(t *testing.T) {
	env := newTestEnv()
	b := seedQuoteRequest(env)
	ctx := context.Background()

	resp, err := env.svc.Booking.UpdateAmount(ctx, b.ID.String(), &request.UpdateAmountRequest{Amount: "$1,250 (Est)"})
	if err != nil {
		t.Fatalf("UpdateAmount: %v", err)
	}
	if resp.Amount != "$1250.00 (Est)" {
		t.Fatalf("amount = %q", resp.Amount)
	}

	if _, err := env.svc.Booking.UpdateAmount(ctx, b.ID.String(), &request.UpdateAmountRequest{Amount: "TBD"}); err != nil {
		t.Fatalf("UpdateAmount TBD: %v", err)
	}
	stored, _ := env.store.booking(b.ID)
	if !stored.Amount.IsPending() {
		t.Fatalf("amount should be pending, got %s", stored.Amount.Display())
	}

	if _, err := env.svc.Booking.UpdateAmount(ctx, b.ID.String(), &request.UpdateAmountRequest{Amount: "-5"}); !apperr.IsValidation(err) {
		t.Fatalf("negative amount should be rejected, got %v", err)
	}
}

func TestDeleteBookingRemovesDependents(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedQuoteTemplate(env)
	b := seedQuoteRequest(env)
	if _, err := env.svc.Status.SendQuote(ctx, b.ID.String(), nil); err != nil {
		t.Fatalf("SendQuote: %v", err)
	}
	for _, s := range []string{"Confirmed", "Completed"} {
		if _, err := env.svc.Status.Transition(ctx, b.ID.String(), s); err != nil {
			t.Fatalf("transition %s: %v", s, err)
		}
	}
	if _, err := env.svc.Invoice.Generate(ctx, b.ID.String()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	resp, err := env.svc.Booking.DeleteBooking(ctx, b.ID.String())
	if err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if resp.InvoicesRemoved != 1 || resp.FollowUpsRemoved != 1 {
		t.Fatalf("unexpected cascade %+v", resp)
	}
	if _, ok := env.store.booking(b.ID); ok {
		t.Fatalf("booking still stored")
	}
	if len(env.store.data.invoices) != 0 {
		t.Fatalf("invoice still stored")
	}

	if _, err := env.svc.Booking.DeleteBooking(ctx, b.ID.String()); !apperr.IsNotFound(err) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}
