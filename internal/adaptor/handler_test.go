package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func TestHandleServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("amount", "must not be negative"), http.StatusBadRequest},
		{"unauthorized", apperr.UnauthorizedError{Msg: "invalid credentials"}, http.StatusUnauthorized},
		{"not found", apperr.NotFound("booking", "b-1"), http.StatusNotFound},
		{"invalid state", apperr.InvalidState("cannot move from %s", "Completed"), http.StatusConflict},
		{"conflict", apperr.ConflictError{Resource: "invoice", Msg: "already exists"}, http.StatusConflict},
		{"quote not sent", apperr.QuoteNotSentError{Err: errors.New("smtp refused")}, http.StatusBadGateway},
		{"partial failure", apperr.PartialFailureError{Msg: "Quote emailed but status not updated"}, http.StatusInternalServerError},
		{"unavailable", apperr.Unavailable("find booking", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"wrapped not found", errorsJoin(apperr.NotFound("driver", "d-9")), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zaptest.NewLogger(t), tc.err, "test op")

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if env := decodeEnvelope(t, rec); env.Status {
				t.Fatal("error response must carry status=false")
			}
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestPartialFailureKeepsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	msg := "Quote emailed to customer, but the booking status could not be updated"
	handleServiceError(rec, zaptest.NewLogger(t), apperr.PartialFailureError{Msg: msg, Err: errors.New("tx aborted")}, "send quote")

	if env := decodeEnvelope(t, rec); env.Message != msg {
		t.Fatalf("message = %q, want %q", env.Message, msg)
	}
}

type fakeStatusService struct {
	gotID     string
	gotTarget string
	gotQuote  *request.SendQuoteRequest
	err       error
}

func (f *fakeStatusService) Transition(_ context.Context, id, target string) (*response.TransitionResponse, error) {
	f.gotID, f.gotTarget = id, target
	if f.err != nil {
		return nil, f.err
	}
	return &response.TransitionResponse{Booking: response.BookingResponse{ID: id, Status: entity.BookingStatus(target)}}, nil
}

func (f *fakeStatusService) SendQuote(_ context.Context, id string, req *request.SendQuoteRequest) (*response.TransitionResponse, error) {
	f.gotID, f.gotQuote = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &response.TransitionResponse{
		Booking:  response.BookingResponse{ID: id, Status: entity.BookingStatusQuoteSent},
		FollowUp: &response.FollowUpResponse{},
	}, nil
}

func newStatusRouter(t *testing.T, status *fakeStatusService) *chi.Mux {
	h := &BookingHandler{status: status, log: zaptest.NewLogger(t)}
	r := chi.NewRouter()
	r.Put("/bookings/{id}/status", h.UpdateStatus)
	r.Post("/bookings/{id}/send-quote", h.SendQuote)
	return r
}

func TestUpdateStatusPassesTargetThrough(t *testing.T) {
	status := &fakeStatusService{}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPut, "/bookings/b-42/status", strings.NewReader(`{"status":"Confirmed"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if status.gotID != "b-42" || status.gotTarget != "Confirmed" {
		t.Fatalf("service called with (%q, %q)", status.gotID, status.gotTarget)
	}

	var body response.TransitionResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body.Booking.Status != entity.BookingStatusConfirmed {
		t.Fatalf("booking status = %q", body.Booking.Status)
	}
}

func TestUpdateStatusRequiresStatus(t *testing.T) {
	status := &fakeStatusService{}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPut, "/bookings/b-42/status", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if status.gotID != "" {
		t.Fatal("service must not be called for an invalid body")
	}
}

func TestUpdateStatusRejectedTransition(t *testing.T) {
	status := &fakeStatusService{err: apperr.InvalidState("cannot move booking from Completed to Pending")}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPut, "/bookings/b-42/status", strings.NewReader(`{"status":"Pending"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSendQuoteAcceptsEmptyBody(t *testing.T) {
	status := &fakeStatusService{}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b-7/send-quote", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if status.gotQuote == nil || status.gotQuote.TemplateID != "" {
		t.Fatalf("expected an empty quote request, got %+v", status.gotQuote)
	}
}

func TestSendQuoteEmailFailureIsBadGateway(t *testing.T) {
	status := &fakeStatusService{err: apperr.QuoteNotSentError{Err: errors.New("mailbox unavailable")}}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b-7/send-quote", strings.NewReader(`{"subject":"Your quote"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if status.gotQuote.Subject != "Your quote" {
		t.Fatalf("subject = %q", status.gotQuote.Subject)
	}
}

func TestDecodeBodyRejectsMalformedJSON(t *testing.T) {
	status := &fakeStatusService{}
	r := newStatusRouter(t, status)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b-7/send-quote", strings.NewReader(`{"subject":`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAlertStreamWithoutHub(t *testing.T) {
	h := NewAlertHandler(nil, zaptest.NewLogger(t))
	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/admin/alerts/ws", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
