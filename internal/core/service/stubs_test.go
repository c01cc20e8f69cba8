package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests
// ---------------------------------------------------------------------------

type stubApplicationRepo struct {
	byID map[string]*domain.Application
	seq  int

	createErr error
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{byID: make(map[string]*domain.Application)}
}

func (r *stubApplicationRepo) Create(_ context.Context, app *domain.Application) (*domain.Application, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *app
	clone.ID = fmt.Sprintf("app-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubApplicationRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	app, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

func (r *stubApplicationRepo) List(_ context.Context) ([]*domain.Application, error) {
	out := make([]*domain.Application, 0, len(r.byID))
	for _, app := range r.byID {
		clone := *app
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubApplicationRepo) Transition(_ context.Context, id string, from domain.ApplicationStatus, d ports.ApplicationDecision) (*domain.Application, error) {
	app, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	// Mirrors the conditional Mongo write: no match means the application
	// moved on concurrently.
	if app.Status != from {
		return nil, domain.ErrApplicationResolved
	}
	app.Status = d.Status
	app.MembershipType = d.MembershipType
	app.ResolutionNote = d.ResolutionNote
	decidedAt := d.DecidedAt
	app.DecidedAt = &decidedAt
	clone := *app
	return &clone, nil
}

type stubAccountRepo struct {
	byID map[string]*domain.Account
	seq  int

	createErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.seq++
	clone := *a
	clone.ID = fmt.Sprintf("acct-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.MembershipType != nil {
		a.MembershipType = *u.MembershipType
	}
	if u.PaymentStatus != nil {
		a.PaymentStatus = *u.PaymentStatus
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) SetPaymentStatus(_ context.Context, id string, status domain.PaymentStatus) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.PaymentStatus = status
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	a.InitialPassword = ""
	return nil
}

type stubSequences struct {
	counters map[string]int64
	nextErr  error
}

func newStubSequences() *stubSequences {
	return &stubSequences{counters: make(map[string]int64)}
}

func (s *stubSequences) Next(_ context.Context, name string) (int64, error) {
	if s.nextErr != nil {
		return 0, s.nextErr
	}
	s.counters[name]++
	return s.counters[name], nil
}

// stubTx runs the function directly; the stores above are not
// transactional, which is fine for unit tests.
type stubTx struct {
	err error
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

type stubOfferingRepo struct {
	byID map[string]*domain.Offering
	seq  int
}

func newStubOfferingRepo() *stubOfferingRepo {
	return &stubOfferingRepo{byID: make(map[string]*domain.Offering)}
}

func (r *stubOfferingRepo) Create(_ context.Context, o *domain.Offering) (*domain.Offering, error) {
	r.seq++
	clone := *o
	clone.ID = fmt.Sprintf("off-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubOfferingRepo) FindByID(_ context.Context, id string) (*domain.Offering, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOfferingNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOfferingRepo) List(_ context.Context, filter ports.ListOfferingsFilter) ([]*domain.Offering, error) {
	var out []*domain.Offering
	for _, o := range r.byID {
		if filter.Format != "" && o.Format != filter.Format {
			continue
		}
		if filter.Past {
			if o.StartDate == nil || !o.StartDate.Before(filter.Now) {
				continue
			}
		} else {
			if !o.IsActive {
				continue
			}
			if o.StartDate != nil && o.StartDate.Before(filter.Now) {
				continue
			}
		}
		clone := *o
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOfferingRepo) Update(_ context.Context, id string, u ports.OfferingUpdate) (*domain.Offering, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOfferingNotFound
	}
	if u.Title != nil {
		o.Title = *u.Title
	}
	if u.Description != nil {
		o.Description = *u.Description
	}
	if u.Content != nil {
		o.Content = *u.Content
	}
	if u.Instructor != nil {
		o.Instructor = *u.Instructor
	}
	if u.DurationHours != nil {
		o.DurationHours = *u.DurationHours
	}
	if u.Format != nil {
		o.Format = *u.Format
	}
	if u.Location != nil {
		o.Location = *u.Location
	}
	if u.ClearMaxSeats {
		o.MaxSeats = nil
	} else if u.MaxSeats != nil {
		o.MaxSeats = u.MaxSeats
	}
	if u.PriceMember != nil {
		o.PriceMember = *u.PriceMember
	}
	if u.PriceNonMember != nil {
		o.PriceNonMember = *u.PriceNonMember
	}
	if u.PriceYoung != nil {
		o.PriceYoung = *u.PriceYoung
	}
	if u.PriceFree != nil {
		o.PriceFree = *u.PriceFree
	}
	if u.StartDate != nil {
		o.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		o.EndDate = u.EndDate
	}
	if u.RegistrationDeadline != nil {
		o.RegistrationDeadline = u.RegistrationDeadline
	}
	if u.IsActive != nil {
		o.IsActive = *u.IsActive
	}
	if u.ImageURL != nil {
		o.ImageURL = *u.ImageURL
	}
	o.UpdatedAt = time.Now().UTC()
	clone := *o
	return &clone, nil
}

func (r *stubOfferingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOfferingNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubEnrollmentRepo struct {
	byID  map[string]*domain.Enrollment
	order []string
	seq   int

	createErr error
}

func newStubEnrollmentRepo() *stubEnrollmentRepo {
	return &stubEnrollmentRepo{byID: make(map[string]*domain.Enrollment)}
}

func (r *stubEnrollmentRepo) Create(_ context.Context, e *domain.Enrollment) (*domain.Enrollment, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *e
	clone.ID = fmt.Sprintf("enr-%d", r.seq)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubEnrollmentRepo) FindByID(_ context.Context, id string) (*domain.Enrollment, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEnrollmentRepo) CountActive(_ context.Context, offeringID string) (int64, error) {
	var n int64
	for _, e := range r.byID {
		if e.OfferingID == offeringID && e.PaymentStatus != domain.EnrollmentCancelled {
			n++
		}
	}
	return n, nil
}

func (r *stubEnrollmentRepo) FindActiveByEmail(_ context.Context, offeringID, email string) (*domain.Enrollment, error) {
	for _, id := range r.order {
		e := r.byID[id]
		if e.OfferingID == offeringID && e.Email == strings.ToLower(email) && e.PaymentStatus != domain.EnrollmentCancelled {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domain.ErrEnrollmentNotFound
}

func (r *stubEnrollmentRepo) ListByOffering(_ context.Context, offeringID string) ([]*domain.Enrollment, error) {
	var out []*domain.Enrollment
	for _, id := range r.order {
		e := r.byID[id]
		if e.OfferingID == offeringID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubEnrollmentRepo) ListByAccount(_ context.Context, accountID string) ([]*domain.Enrollment, error) {
	var out []*domain.Enrollment
	for _, id := range r.order {
		e := r.byID[id]
		if e.AccountID == accountID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubEnrollmentRepo) ConfirmPayment(_ context.Context, id string, paidAt time.Time) (*domain.Enrollment, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	if e.PaymentStatus != domain.EnrollmentPending {
		return nil, domain.ErrEnrollmentProcessed
	}
	e.PaymentStatus = domain.EnrollmentPaid
	e.PaymentDate = &paidAt
	clone := *e
	return &clone, nil
}

type stubNewsRepo struct {
	byID  map[string]*domain.NewsItem
	order []string
	seq   int
}

func newStubNewsRepo() *stubNewsRepo {
	return &stubNewsRepo{byID: make(map[string]*domain.NewsItem)}
}

func (r *stubNewsRepo) Create(_ context.Context, n *domain.NewsItem) (*domain.NewsItem, error) {
	r.seq++
	clone := *n
	clone.ID = fmt.Sprintf("news-%d", r.seq)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubNewsRepo) FindByID(_ context.Context, id string) (*domain.NewsItem, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNewsNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *stubNewsRepo) List(_ context.Context, filter ports.ListNewsFilter) ([]*domain.NewsItem, error) {
	var out []*domain.NewsItem
	for _, id := range r.order {
		n := r.byID[id]
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *stubNewsRepo) ListAll(_ context.Context) ([]*domain.NewsItem, error) {
	var out []*domain.NewsItem
	for _, id := range r.order {
		clone := *r.byID[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubNewsRepo) SetStatus(_ context.Context, id string, status domain.NewsStatus) (*domain.NewsItem, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNewsNotFound
	}
	n.Status = status
	clone := *n
	return &clone, nil
}

func (r *stubNewsRepo) Update(_ context.Context, id string, u ports.NewsUpdate) (*domain.NewsItem, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNewsNotFound
	}
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Excerpt != nil {
		n.Excerpt = *u.Excerpt
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Category != nil {
		n.Category = *u.Category
	}
	if u.ImageURL != nil {
		n.ImageURL = *u.ImageURL
	}
	clone := *n
	return &clone, nil
}

func (r *stubNewsRepo) FindByOrderIndex(_ context.Context, index int, excludeID string) (*domain.NewsItem, error) {
	for _, id := range r.order {
		n := r.byID[id]
		if n.ID != excludeID && n.OrderIndex == index {
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNewsNotFound
}

func (r *stubNewsRepo) SetOrderIndex(_ context.Context, id string, index int) error {
	n, ok := r.byID[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.OrderIndex = index
	return nil
}

// ---------------------------------------------------------------------------
// Reservation guard stubs
// ---------------------------------------------------------------------------

// openGuard always grants the lease.
type openGuard struct {
	acquired []string
	released []string
}

func (g *openGuard) Acquire(_ context.Context, offeringID, email string) (bool, error) {
	g.acquired = append(g.acquired, offeringID+"/"+email)
	return true, nil
}

func (g *openGuard) Release(_ context.Context, offeringID, email string) error {
	g.released = append(g.released, offeringID+"/"+email)
	return nil
}

// heldGuard simulates another in-flight attempt holding the lease.
type heldGuard struct{}

func (heldGuard) Acquire(context.Context, string, string) (bool, error) { return false, nil }
func (heldGuard) Release(context.Context, string, string) error        { return nil }

// downGuard simulates a guard outage.
type downGuard struct{}

func (downGuard) Acquire(context.Context, string, string) (bool, error) {
	return false, fmt.Errorf("guard unavailable")
}
func (downGuard) Release(context.Context, string, string) error { return nil }
