package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

const (
	// InvoicePaymentTerms is the gap between issue and due date.
	InvoicePaymentTerms = 7 * 24 * time.Hour

	invoiceNumberAttempts = 3
)

type InvoiceService interface {
	Generate(ctx context.Context, bookingID string) (*response.InvoiceResponse, error)
	List(ctx context.Context, req *request.InvoiceListRequest) (*response.PaginatedResponse[response.InvoiceResponse], error)
	Get(ctx context.Context, id string) (*response.InvoiceResponse, error)
	MarkPaid(ctx context.Context, id string, req *request.MarkPaidRequest) (*response.InvoiceResponse, error)
	// RenderPDF returns the invoice document and a download filename.
	RenderPDF(ctx context.Context, id string) ([]byte, string, error)
	// Send emails the invoice to the customer with the PDF attached.
	Send(ctx context.Context, id string) (*response.InvoiceResponse, error)
}

type invoiceService struct {
	repo     *repository.Repository
	mailer   mailer.Sender
	business string
	now      Clock
	loc      *time.Location
	timeout  time.Duration
	log      *zap.Logger
}

func NewInvoiceService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) InvoiceService {
	return &invoiceService{
		repo:     repo,
		mailer:   deps.Mailer,
		business: config.App.Name,
		now:      deps.Now,
		loc:      config.App.Location(),
		timeout:  config.App.RequestTimeout,
		log:      log.With(zap.String("service", "invoice")),
	}
}

func (s *invoiceService) today() time.Time {
	return entity.DateOnly(s.now().In(s.loc))
}

// ServiceDescription is the single line item describing a trip.
func ServiceDescription(b *entity.Booking) string {
	return fmt.Sprintf("Chauffeur Service: %s - %s to %s", b.VehicleType, b.PickupLocation, b.DropoffLocation)
}

func (s *invoiceService) Generate(ctx context.Context, bookingID string) (*response.InvoiceResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	id, err := parseID("booking_id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find booking", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking", bookingID)
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, apperr.InvalidState("only completed bookings can be invoiced, booking is %s", booking.Status)
	}
	if booking.Amount.IsPending() {
		return nil, apperr.Validation("amount", "booking has no amount yet")
	}

	existing, err := s.repo.Invoice.FindByBookingID(ctx, id)
	if err != nil {
		return nil, storeErr("find invoice", err)
	}
	if existing != nil {
		return nil, duplicateInvoice(existing.InvoiceNumber)
	}

	now := s.now()
	issue := entity.DateOnly(now.In(s.loc))
	total := booking.Amount.Float64()
	invoice := &entity.Invoice{
		BaseSimple:    entity.BaseSimple{CreatedAt: now},
		BookingID:     booking.ID,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		CustomerPhone: booking.CustomerPhone,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, int(InvoicePaymentTerms/(24*time.Hour))),
		Subtotal:      total,
		TaxAmount:     0,
		TotalAmount:   total,
		PaymentStatus: entity.PaymentStatusUnpaid,
		LineItems: []entity.LineItem{{
			Description: ServiceDescription(booking),
			Amount:      total,
		}},
	}

	for attempt := 1; ; attempt++ {
		invoice.ID = utils.GenerateUUID()
		invoice.InvoiceNumber = utils.GenerateInvoiceNumber(now)

		err = s.repo.Invoice.Create(ctx, invoice)
		if err == nil {
			break
		}
		switch {
		case repository.IsUniqueViolation(err, repository.InvoiceBookingUnique):
			// lost a race with a concurrent generate
			return nil, duplicateInvoice("")
		case repository.IsUniqueViolation(err, repository.InvoiceNumberUnique) && attempt < invoiceNumberAttempts:
			s.log.Warn("Invoice number collision, retrying", zap.String("invoice_number", invoice.InvoiceNumber))
			continue
		}
		return nil, storeErr("create invoice", err)
	}

	s.log.Info("Invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("booking_id", bookingID),
		zap.Float64("total", total),
	)

	resp := response.InvoiceToResponse(invoice, issue)
	return &resp, nil
}

func duplicateInvoice(number string) error {
	msg := "booking already has an invoice"
	if number != "" {
		msg += " " + number
	}
	return apperr.ConflictError{Resource: "invoice", Msg: msg}
}

func (s *invoiceService) List(ctx context.Context, req *request.InvoiceListRequest) (*response.PaginatedResponse[response.InvoiceResponse], error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	today := s.today()
	filter := repository.InvoiceFilter{Search: strings.TrimSpace(req.Search)}
	switch entity.PaymentStatus(req.PaymentStatus) {
	case entity.PaymentStatusOverdue:
		filter.OverdueBefore = &today
	case entity.PaymentStatusPaid, entity.PaymentStatusUnpaid:
		st := entity.PaymentStatus(req.PaymentStatus)
		filter.PaymentStatus = &st
	}

	total, err := s.repo.Invoice.Count(ctx, filter)
	if err != nil {
		return nil, storeErr("count invoices", err)
	}

	filter.Limit = req.Limit()
	filter.Offset = req.Offset()
	invoices, err := s.repo.Invoice.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list invoices", err)
	}

	out := make([]response.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, response.InvoiceToResponse(inv, today))
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *invoiceService) load(ctx context.Context, id string) (*entity.Invoice, error) {
	invoiceID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.Invoice.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, storeErr("find invoice", err)
	}
	if invoice == nil {
		return nil, apperr.NotFound("invoice", id)
	}
	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*response.InvoiceResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := response.InvoiceToResponse(invoice, s.today())
	return &resp, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id string, req *request.MarkPaidRequest) (*response.InvoiceResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.PaymentStatus == entity.PaymentStatusPaid {
		return nil, apperr.InvalidState("invoice %s is already paid", invoice.InvoiceNumber)
	}

	now := s.now()
	method := strings.TrimSpace(req.PaymentMethod)
	if err := s.repo.Invoice.MarkPaid(ctx, invoice.ID, method, now); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("invoice", id)
		}
		return nil, storeErr("mark invoice paid", err)
	}
	invoice.PaymentStatus = entity.PaymentStatusPaid
	invoice.PaymentMethod = &method
	invoice.PaidAt = &now

	s.log.Info("Invoice paid", zap.String("invoice_number", invoice.InvoiceNumber), zap.String("method", method))
	resp := response.InvoiceToResponse(invoice, s.today())
	return &resp, nil
}

func (s *invoiceService) RenderPDF(ctx context.Context, id string) ([]byte, string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := BuildInvoicePDF(s.business, invoice, s.today())
	if err != nil {
		s.log.Error("Failed to render invoice PDF", zap.String("invoice_id", id), zap.Error(err))
		return nil, "", fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return doc, invoice.InvoiceNumber + ".pdf", nil
}

func invoiceVars(inv *entity.Invoice) map[string]string {
	description := ""
	if len(inv.LineItems) > 0 {
		description = inv.LineItems[0].Description
	}
	return map[string]string{
		"invoice_number":      inv.InvoiceNumber,
		"issue_date":          inv.IssueDate.Format(entity.DateLayout),
		"due_date":            inv.DueDate.Format(entity.DateLayout),
		"service_description": description,
		"total_amount":        money(inv.TotalAmount),
		"invoice_id":          inv.ID.String(),
		"customer_name":       inv.CustomerName,
	}
}

func (s *invoiceService) Send(ctx context.Context, id string) (*response.InvoiceResponse, error) {
	storeCtx, cancelStore := withTimeout(ctx, s.timeout)
	defer cancelStore()

	invoice, err := s.load(storeCtx, id)
	if err != nil {
		return nil, err
	}

	tpl, err := s.repo.EmailTemplate.FindByName(storeCtx, entity.TemplateInvoiceSent)
	if err != nil {
		return nil, storeErr("load invoice template", err)
	}
	if tpl == nil || !tpl.IsActive {
		return nil, apperr.InvalidState("email template %q is missing or inactive", entity.TemplateInvoiceSent)
	}

	doc, err := BuildInvoicePDF(s.business, invoice, s.today())
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	subject, body := tpl.Render(invoiceVars(invoice))
	sendCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	err = s.mailer.Send(sendCtx, mailer.Message{
		To:          invoice.CustomerEmail,
		Subject:     subject,
		HTML:        body,
		Attachments: []mailer.Attachment{{Name: invoice.InvoiceNumber + ".pdf", Content: doc}},
	})
	if err != nil {
		s.log.Warn("Invoice email failed", zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
		return nil, apperr.Unavailable("send invoice email", err)
	}

	s.log.Info("Invoice emailed",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("to", invoice.CustomerEmail))
	resp := response.InvoiceToResponse(invoice, s.today())
	return &resp, nil
}
