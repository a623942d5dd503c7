package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/pkg/apperr"
)

func seedQuoteRequest(env *testEnv) entity.Booking {
	st := entity.ServiceAirportTransfer
	return env.store.addBooking(entity.Booking{
		CustomerName:    "Jane Citizen",
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "0400 000 000",
		PickupLocation:  "Melbourne Airport",
		DropoffLocation: "Southbank",
		PickupDate:      testDay(3),
		PickupTime:      "14:30:00",
		VehicleType:     FleetExecutiveSedans,
		ServiceType:     &st,
		Amount:          entity.EstimatedAmount(150),
		Status:          entity.BookingStatusQuoteRequest,
	})
}

func seedQuoteTemplate(env *testEnv) {
	env.store.addTemplate(entity.EmailTemplate{
		TemplateName: entity.TemplateQuoteSent,
		Subject:      "Your quote: {amount}",
		BodyHTML:     "<p>Hi {customer_name}, your {vehicle_type} from {pickup_location} is {amount}.</p>",
		IsActive:     true,
	})
}

func TestSendQuoteCommitsStatusAndFollowUp(t *testing.T) {
	env := newTestEnv()
	seedQuoteTemplate(env)
	b := seedQuoteRequest(env)

	resp, err := env.svc.Status.SendQuote(context.Background(), b.ID.String(), &request.SendQuoteRequest{})
	if err != nil {
		t.Fatalf("SendQuote returned error: %v", err)
	}
	if resp.Booking.Status != entity.BookingStatusQuoteSent {
		t.Fatalf("response status = %q, want Quote Sent", resp.Booking.Status)
	}

	stored, _ := env.store.booking(b.ID)
	if stored.Status != entity.BookingStatusQuoteSent {
		t.Fatalf("stored status = %q, want Quote Sent", stored.Status)
	}

	sent := env.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].To != "jane@example.com" || sent[0].Subject != "Your quote: $150.00 (Est)" {
		t.Fatalf("unexpected email %+v", sent[0])
	}
	if !strings.Contains(sent[0].HTML, "Hi Jane Citizen") {
		t.Fatalf("body not rendered: %s", sent[0].HTML)
	}

	tasks := env.store.followupsFor(b.ID)
	if len(tasks) != 1 {
		t.Fatalf("got %d follow-ups, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Type != entity.FollowUpTypeQuote || task.Priority != entity.FollowUpPriorityHigh || task.Status != entity.FollowUpStatusPending {
		t.Fatalf("unexpected follow-up %+v", task)
	}
	if !task.DueDate.Equal(testDay(2)) {
		t.Fatalf("due date = %s, want %s", task.DueDate, testDay(2))
	}
	want := "Follow up on sent quote for Executive Sedans trip. Amount: $150.00 (Est)"
	if task.Notes != want {
		t.Fatalf("notes = %q, want %q", task.Notes, want)
	}
	if resp.FollowUp == nil || resp.FollowUp.ID != task.ID.String() {
		t.Fatalf("response follow-up = %+v", resp.FollowUp)
	}
}

func TestSendQuoteEmailFailureLeavesBookingUnchanged(t *testing.T) {
	env := newTestEnv()
	seedQuoteTemplate(env)
	b := seedQuoteRequest(env)
	env.mailer.err = errors.New("550 mailbox unavailable")

	_, err := env.svc.Status.SendQuote(context.Background(), b.ID.String(), nil)
	if !apperr.IsQuoteNotSent(err) {
		t.Fatalf("expected QuoteNotSentError, got %v", err)
	}

	stored, _ := env.store.booking(b.ID)
	if stored.Status != entity.BookingStatusQuoteRequest {
		t.Fatalf("status changed to %q", stored.Status)
	}
	if n := len(env.store.followupsFor(b.ID)); n != 0 {
		t.Fatalf("got %d follow-ups, want none", n)
	}
}

func TestSendQuoteStoreFailureAfterEmailIsPartial(t *testing.T) {
	env := newTestEnv()
	seedQuoteTemplate(env)
	b := seedQuoteRequest(env)
	env.store.failOn("followup.create", errStoreDown)

	_, err := env.svc.Status.SendQuote(context.Background(), b.ID.String(), nil)
	if !apperr.IsPartialFailure(err) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if len(env.mailer.messages()) != 1 {
		t.Fatalf("email should have been sent once")
	}

	// status update ran inside the failed transaction and must not survive it
	stored, _ := env.store.booking(b.ID)
	if stored.Status != entity.BookingStatusQuoteRequest {
		t.Fatalf("status = %q, want Quote Request", stored.Status)
	}
	if n := len(env.store.followupsFor(b.ID)); n != 0 {
		t.Fatalf("got %d follow-ups, want none", n)
	}
}

func TestSendQuoteExplicitContentNeedsNoTemplate(t *testing.T) {
	env := newTestEnv()
	b := seedQuoteRequest(env)

	_, err := env.svc.Status.SendQuote(context.Background(), b.ID.String(), &request.SendQuoteRequest{
		Subject: "Quote for {customer_name}",
		Body:    "<p>{amount}</p>",
	})
	if err != nil {
		t.Fatalf("SendQuote returned error: %v", err)
	}
	sent := env.mailer.messages()
	if len(sent) != 1 || sent[0].Subject != "Quote for Jane Citizen" || sent[0].HTML != "<p>$150.00 (Est)</p>" {
		t.Fatalf("unexpected email %+v", sent)
	}
}

func TestSendQuoteWithoutTemplateIsValidationError(t *testing.T) {
	env := newTestEnv()
	b := seedQuoteRequest(env)

	_, err := env.svc.Status.Transition(context.Background(), b.ID.String(), "Quote Sent")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(env.mailer.messages()) != 0 {
		t.Fatalf("no email should be sent")
	}
}

func TestTransitionRules(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.BookingStatus
		to      string
		wantErr bool
	}{
		{"confirm quote request", entity.BookingStatusQuoteRequest, "Confirmed", false},
		{"confirm pending", entity.BookingStatusPending, "confirmed", false},
		{"start trip", entity.BookingStatusConfirmed, "In Progress", false},
		{"complete without start", entity.BookingStatusConfirmed, "Completed", false},
		{"cancel in progress", entity.BookingStatusInProgress, "Cancelled", false},
		{"same stage", entity.BookingStatusPending, "Quote Request", true},
		{"self", entity.BookingStatusConfirmed, "Confirmed", true},
		{"backwards", entity.BookingStatusInProgress, "Confirmed", true},
		{"completed is final", entity.BookingStatusCompleted, "Cancelled", true},
		{"cancelled is final", entity.BookingStatusCancelled, "Confirmed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			b := seedQuoteRequest(env)
			b.Status = tt.from
			env.store.addBooking(b)

			resp, err := env.svc.Status.Transition(context.Background(), b.ID.String(), tt.to)
			stored, _ := env.store.booking(b.ID)
			if tt.wantErr {
				if !apperr.IsInvalidState(err) {
					t.Fatalf("expected InvalidStateError, got %v", err)
				}
				if stored.Status != tt.from {
					t.Fatalf("status changed to %q", stored.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition returned error: %v", err)
			}
			if !strings.EqualFold(string(stored.Status), tt.to) || resp.Booking.Status != stored.Status {
				t.Fatalf("stored %q, response %q, want %q", stored.Status, resp.Booking.Status, tt.to)
			}
		})
	}
}

func TestTransitionUnknownStatusAndBooking(t *testing.T) {
	env := newTestEnv()
	b := seedQuoteRequest(env)

	if _, err := env.svc.Status.Transition(context.Background(), b.ID.String(), "Archived"); !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := env.svc.Status.Transition(context.Background(), "6f1c1f3e-3f8e-4a51-9d7a-0d0e5b1b2c3d", "Confirmed"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestQuoteToInvoiceLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedQuoteTemplate(env)
	b := seedQuoteRequest(env)
	id := b.ID.String()

	if _, err := env.svc.Status.Transition(ctx, id, "Quote Sent"); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	if _, err := env.svc.Booking.UpdateAmount(ctx, id, &request.UpdateAmountRequest{Amount: "165"}); err != nil {
		t.Fatalf("firm amount: %v", err)
	}
	for _, status := range []string{"Confirmed", "In Progress", "Completed"} {
		if _, err := env.svc.Status.Transition(ctx, id, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	inv, err := env.svc.Invoice.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate invoice: %v", err)
	}
	if inv.TotalAmount != 165 || inv.PaymentStatus != entity.PaymentStatusUnpaid {
		t.Fatalf("unexpected invoice %+v", inv)
	}

	if _, err := env.svc.Status.Transition(ctx, id, "Cancelled"); !apperr.IsInvalidState(err) {
		t.Fatalf("completed booking must stay completed, got %v", err)
	}
}
