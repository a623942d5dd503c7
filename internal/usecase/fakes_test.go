package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/pkg/events"
	"chauffeur-booking/pkg/mailer"
	"chauffeur-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("connection refused")

// memData is the in-memory database behind the fake repositories.
type memData struct {
	bookings  map[uuid.UUID]entity.Booking
	drivers   map[uuid.UUID]entity.Driver
	rules     map[uuid.UUID]entity.PricingRule
	followups map[uuid.UUID]entity.FollowUpTask
	invoices  map[uuid.UUID]entity.Invoice
	templates map[uuid.UUID]entity.EmailTemplate
	customers map[string]entity.Customer
	alerts    map[string]entity.BookingAlert
}

func newMemData() *memData {
	return &memData{
		bookings:  map[uuid.UUID]entity.Booking{},
		drivers:   map[uuid.UUID]entity.Driver{},
		rules:     map[uuid.UUID]entity.PricingRule{},
		followups: map[uuid.UUID]entity.FollowUpTask{},
		invoices:  map[uuid.UUID]entity.Invoice{},
		templates: map[uuid.UUID]entity.EmailTemplate{},
		customers: map[string]entity.Customer{},
		alerts:    map[string]entity.BookingAlert{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		bookings:  cloneMap(d.bookings),
		drivers:   cloneMap(d.drivers),
		rules:     cloneMap(d.rules),
		followups: cloneMap(d.followups),
		invoices:  cloneMap(d.invoices),
		templates: cloneMap(d.templates),
		customers: cloneMap(d.customers),
		alerts:    cloneMap(d.alerts),
	}
}

// memStore owns the data and the injected failures, keyed "<repo>.<method>".
type memStore struct {
	mu    sync.Mutex
	data  *memData
	fail  map[string]error
	txErr error
}

func newMemStore() *memStore {
	return &memStore{data: newMemData(), fail: map[string]error{}}
}

func (s *memStore) failOn(op string, err error) { s.fail[op] = err }

func (s *memStore) check(op string) error { return s.fail[op] }

// repo returns repositories reading and writing d, plus a copy-on-write transactor.
func (s *memStore) repo() *repository.Repository {
	r := s.repoOver(func() *memData { return s.data })
	r.Transactor = &memTransactor{store: s}
	return r
}

func (s *memStore) repoOver(data func() *memData) *repository.Repository {
	return &repository.Repository{
		Booking:       &memBookingRepo{s: s, d: data},
		Driver:        &memDriverRepo{s: s, d: data},
		PricingRule:   &memRuleRepo{s: s, d: data},
		FollowUp:      &memFollowUpRepo{s: s, d: data},
		Invoice:       &memInvoiceRepo{s: s, d: data},
		EmailTemplate: &memTemplateRepo{s: s, d: data},
		Customer:      &memCustomerRepo{s: s, d: data},
		Alert:         &memAlertRepo{s: s, d: data},
	}
}

type memTransactor struct {
	store *memStore
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if t.store.txErr != nil {
		return t.store.txErr
	}
	t.store.mu.Lock()
	draft := t.store.data.clone()
	t.store.mu.Unlock()

	scoped := t.store.repoOver(func() *memData { return draft })
	scoped.Transactor = t
	if err := fn(scoped); err != nil {
		return err
	}

	t.store.mu.Lock()
	t.store.data = draft
	t.store.mu.Unlock()
	return nil
}

func (s *memStore) booking(id uuid.UUID) (entity.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.bookings[id]
	return b, ok
}

func (s *memStore) followupsFor(id uuid.UUID) []entity.FollowUpTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.FollowUpTask
	for _, f := range s.data.followups {
		if f.BookingID != nil && *f.BookingID == id {
			out = append(out, f)
		}
	}
	return out
}

func (s *memStore) addBooking(b entity.Booking) entity.Booking {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.data.bookings[b.ID] = b
	return b
}

func (s *memStore) addDriver(d entity.Driver) entity.Driver {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.data.drivers[d.ID] = d
	return d
}

func (s *memStore) addTemplate(t entity.EmailTemplate) entity.EmailTemplate {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.data.templates[t.ID] = t
	return t
}

func (s *memStore) addRule(r entity.PricingRule) entity.PricingRule {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.data.rules[r.ID] = r
	return r
}

type memBookingRepo struct {
	s *memStore
	d func() *memData
}

func (r *memBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	if err := r.s.check("booking.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.d().bookings[b.ID] = *b
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	if err := r.s.check("booking.find"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.d().bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func statusIn(s entity.BookingStatus, set []entity.BookingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (r *memBookingRepo) match(f repository.BookingFilter) []*entity.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.d().bookings {
		b := b
		if len(f.Statuses) > 0 && !statusIn(b.Status, f.Statuses) {
			continue
		}
		if statusIn(b.Status, f.ExcludeStatuses) {
			continue
		}
		if f.DateFrom != nil && b.PickupDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && b.PickupDate.After(*f.DateTo) {
			continue
		}
		if f.DriverID != nil && (b.DriverID == nil || *b.DriverID != *f.DriverID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(b.CustomerName+" "+b.CustomerEmail), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PickupDate.Equal(out[j].PickupDate) {
			return out[i].PickupDate.Before(out[j].PickupDate)
		}
		return out[i].PickupTime < out[j].PickupTime
	})
	return out
}

func (r *memBookingRepo) List(_ context.Context, f repository.BookingFilter) ([]*entity.Booking, error) {
	if err := r.s.check("booking.list"); err != nil {
		return nil, err
	}
	out := r.match(f)
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memBookingRepo) Count(_ context.Context, f repository.BookingFilter) (int64, error) {
	if err := r.s.check("booking.count"); err != nil {
		return 0, err
	}
	return int64(len(r.match(f))), nil
}

func (r *memBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.s.check("booking.delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.d().bookings[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.d().bookings, id)
	return nil
}

func (r *memBookingRepo) update(op string, id uuid.UUID, fn func(b *entity.Booking)) error {
	if err := r.s.check(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.d().bookings[id]
	if !ok {
		return repository.ErrNoRows
	}
	fn(&b)
	r.d().bookings[id] = b
	return nil
}

func (r *memBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	return r.update("booking.update_status", id, func(b *entity.Booking) { b.Status = status; b.UpdatedAt = at })
}

func (r *memBookingRepo) UpdateDriver(_ context.Context, id uuid.UUID, driverID uuid.UUID, at time.Time) error {
	return r.update("booking.update_driver", id, func(b *entity.Booking) { b.DriverID = &driverID; b.UpdatedAt = at })
}

func (r *memBookingRepo) UpdateAmount(_ context.Context, id uuid.UUID, amount entity.Amount, at time.Time) error {
	return r.update("booking.update_amount", id, func(b *entity.Booking) { b.Amount = amount; b.UpdatedAt = at })
}

type memDriverRepo struct {
	s *memStore
	d func() *memData
}

func (r *memDriverRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.d().drivers[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memDriverRepo) List(_ context.Context, status *entity.DriverStatus) ([]*entity.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Driver
	for _, d := range r.d().drivers {
		d := d
		if status == nil || d.Status == *status {
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memRuleRepo struct {
	s *memStore
	d func() *memData
}

func (r *memRuleRepo) Create(_ context.Context, rule *entity.PricingRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.d().rules {
		if existing.ServiceType == rule.ServiceType && existing.VehicleType == rule.VehicleType {
			return &pgconn.PgError{Code: "23505", ConstraintName: "pricing_rules_service_type_vehicle_type_key"}
		}
	}
	r.d().rules[rule.ID] = *rule
	return nil
}

func (r *memRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.d().rules[id]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

func (r *memRuleRepo) FindByServiceAndVehicle(_ context.Context, st entity.ServiceType, vehicle string) (*entity.PricingRule, error) {
	if err := r.s.check("rule.find"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rule := range r.d().rules {
		if rule.ServiceType == st && rule.VehicleType == vehicle {
			rule := rule
			return &rule, nil
		}
	}
	return nil, nil
}

func (r *memRuleRepo) List(_ context.Context) ([]*entity.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PricingRule
	for _, rule := range r.d().rules {
		rule := rule
		out = append(out, &rule)
	}
	return out, nil
}

func (r *memRuleRepo) Update(_ context.Context, rule *entity.PricingRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.d().rules[rule.ID]; !ok {
		return repository.ErrNoRows
	}
	r.d().rules[rule.ID] = *rule
	return nil
}

func (r *memRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.d().rules[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.d().rules, id)
	return nil
}

type memFollowUpRepo struct {
	s *memStore
	d func() *memData
}

func (r *memFollowUpRepo) Create(_ context.Context, task *entity.FollowUpTask) error {
	if err := r.s.check("followup.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.d().followups[task.ID] = *task
	return nil
}

func (r *memFollowUpRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.FollowUpTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.d().followups[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memFollowUpRepo) List(_ context.Context, f repository.FollowUpFilter) ([]*entity.FollowUpTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.FollowUpTask
	for _, t := range r.d().followups {
		t := t
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memFollowUpRepo) MarkCompleted(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.d().followups[id]
	if !ok {
		return repository.ErrNoRows
	}
	t.Status = entity.FollowUpStatusCompleted
	t.CompletedAt = &at
	r.d().followups[id] = t
	return nil
}

func (r *memFollowUpRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.d().followups {
		if t.BookingID != nil && *t.BookingID == bookingID {
			delete(r.d().followups, id)
			n++
		}
	}
	return n, nil
}

type memInvoiceRepo struct {
	s *memStore
	d func() *memData
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if err := r.s.check("invoice.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.d().invoices {
		if existing.BookingID == inv.BookingID {
			return &pgconn.PgError{Code: "23505", ConstraintName: repository.InvoiceBookingUnique}
		}
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: repository.InvoiceNumberUnique}
		}
	}
	r.d().invoices[inv.ID] = *inv
	return nil
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.d().invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *memInvoiceRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.d().invoices {
		if inv.BookingID == bookingID {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) match(f repository.InvoiceFilter) []*entity.Invoice {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.d().invoices {
		inv := inv
		if f.PaymentStatus != nil && inv.PaymentStatus != *f.PaymentStatus {
			continue
		}
		if f.OverdueBefore != nil && (inv.PaymentStatus != entity.PaymentStatusUnpaid || !inv.DueDate.Before(*f.OverdueBefore)) {
			continue
		}
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out
}

func (r *memInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	return r.match(f), nil
}

func (r *memInvoiceRepo) Count(_ context.Context, f repository.InvoiceFilter) (int64, error) {
	return int64(len(r.match(f))), nil
}

func (r *memInvoiceRepo) MarkPaid(_ context.Context, id uuid.UUID, method string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.d().invoices[id]
	if !ok {
		return repository.ErrNoRows
	}
	inv.PaymentStatus = entity.PaymentStatusPaid
	inv.PaymentMethod = &method
	inv.PaidAt = &at
	r.d().invoices[id] = inv
	return nil
}

func (r *memInvoiceRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, inv := range r.d().invoices {
		if inv.BookingID == bookingID {
			delete(r.d().invoices, id)
			n++
		}
	}
	return n, nil
}

type memTemplateRepo struct {
	s *memStore
	d func() *memData
}

func (r *memTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.d().templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTemplateRepo) FindByName(_ context.Context, name string) (*entity.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.d().templates {
		if t.TemplateName == name {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTemplateRepo) FindFirstActiveContaining(_ context.Context, fragment string) (*entity.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.d().templates {
		if t.IsActive && strings.Contains(t.TemplateName, fragment) {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTemplateRepo) List(_ context.Context) ([]*entity.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.EmailTemplate
	for _, t := range r.d().templates {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

type memCustomerRepo struct {
	s *memStore
	d func() *memData
}

func (r *memCustomerRepo) Upsert(_ context.Context, c *entity.Customer) error {
	if err := r.s.check("customer.upsert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.d().customers[c.Email]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	r.d().customers[c.Email] = *c
	return nil
}

type memAlertRepo struct {
	s *memStore
	d func() *memData
}

func (r *memAlertRepo) Record(_ context.Context, a *entity.BookingAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := a.BookingID.String() + a.AlertDay.Format(entity.DateLayout)
	if _, ok := r.d().alerts[key]; !ok {
		r.d().alerts[key] = *a
	}
	return nil
}

func (r *memAlertRepo) ListForDay(_ context.Context, day time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []uuid.UUID
	for _, a := range r.d().alerts {
		if a.AlertDay.Format(entity.DateLayout) == day.Format(entity.DateLayout) {
			out = append(out, a.BookingID)
		}
	}
	return out, nil
}

func (r *memAlertRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, a := range r.d().alerts {
		if a.BookingID == bookingID {
			delete(r.d().alerts, k)
			n++
		}
	}
	return n, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) Close() {}

var testLoc = time.UTC

// testNow is a Wednesday morning in the business timezone.

func testNow() time.Time {
	return time.Date(2025, 3, 12, 9, 30, 0, 0, testLoc)
}

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{
			Name:           "Test Chauffeurs",
			Timezone:       "UTC",
			RequestTimeout: time.Second,
		},
		Pricing: utils.PricingConfig{FallbackEstimate: 150},
		Email:   utils.EmailConfig{AdminInbox: "ops@example.com"},
	}
}

type testEnv struct {
	store     *memStore
	mailer    *fakeMailer
	publisher *fakePublisher
	svc       *Service
}

func newTestEnv() *testEnv {
	store := newMemStore()
	m := &fakeMailer{}
	p := &fakePublisher{}
	deps := Dependencies{
		Mailer: m,
		Events: p,
		Now:    testNow,
	}
	cfg := testConfig()
	return &testEnv{
		store:     store,
		mailer:    m,
		publisher: p,
		svc:       NewService(store.repo(), cfg, deps, zap.NewNop()),
	}
}

func testDay(offset int) time.Time {
	return entity.DateOnly(testNow()).AddDate(0, 0, offset)
}
