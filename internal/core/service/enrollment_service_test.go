package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

func seedOffering(t *testing.T, repo *stubOfferingRepo, mutate func(*domain.Offering)) *domain.Offering {
	t.Helper()
	o := &domain.Offering{
		Title:          "Echocardiography Workshop",
		Format:         domain.FormatWebinar,
		PriceMember:    50,
		PriceNonMember: 120,
		PriceYoung:     30,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if mutate != nil {
		mutate(o)
	}
	created, err := repo.Create(context.Background(), o)
	if err != nil {
		t.Fatalf("seed offering: %v", err)
	}
	return created
}

func memberCaller(tier domain.MembershipType) *ports.Caller {
	return &ports.Caller{
		AccountID:      "acct-member",
		Email:          "member@example.com",
		Role:           domain.RoleMember,
		MembershipType: tier,
		IsActive:       true,
		PaymentStatus:  domain.PaymentPaid,
	}
}

// ---------------------------------------------------------------------------
// Enroll: pricing
// ---------------------------------------------------------------------------

func TestEnrollAnonymousPaysNonMemberPrice(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	created, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID,
		Name:       "Juan Pérez",
		Email:      " Juan.Perez@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if created.PaymentAmount != 120 {
		t.Errorf("PaymentAmount = %v, want non-member price 120", created.PaymentAmount)
	}
	if created.IsMember {
		t.Error("IsMember = true, want false for anonymous enrollee")
	}
	if created.AccountID != "" {
		t.Errorf("AccountID = %q, want empty for anonymous enrollee", created.AccountID)
	}
	if created.Email != "juan.perez@example.com" {
		t.Errorf("Email = %q, want lower-cased trimmed email", created.Email)
	}
	if created.PaymentStatus != domain.EnrollmentPending {
		t.Errorf("PaymentStatus = %q, want %q", created.PaymentStatus, domain.EnrollmentPending)
	}
}

func TestEnrollMemberPricing(t *testing.T) {
	tests := []struct {
		name   string
		tier   domain.MembershipType
		mutate func(*domain.Offering)
		want   float64
	}{
		{name: "normal member", tier: domain.MembershipNormal, want: 50},
		{name: "young member", tier: domain.MembershipYoung, want: 30},
		{
			name: "young member without young price",
			tier: domain.MembershipYoung,
			mutate: func(o *domain.Offering) {
				o.PriceYoung = 0
			},
			want: 50,
		},
		{
			name: "free tier with free price",
			tier: domain.MembershipFree,
			mutate: func(o *domain.Offering) {
				o.PriceFree = 10
			},
			want: 10,
		},
		{name: "free tier without free price", tier: domain.MembershipFree, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offerings := newStubOfferingRepo()
			enrollments := newStubEnrollmentRepo()
			svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
			offering := seedOffering(t, offerings, tt.mutate)

			created, err := svc.Enroll(context.Background(), ports.EnrollInput{
				OfferingID: offering.ID,
				Name:       "Member",
				Email:      "member@example.com",
				Caller:     memberCaller(tt.tier),
			})
			if err != nil {
				t.Fatalf("Enroll() error = %v", err)
			}
			if created.PaymentAmount != tt.want {
				t.Errorf("PaymentAmount = %v, want %v", created.PaymentAmount, tt.want)
			}
			if !created.IsMember {
				t.Error("IsMember = false, want true for paying member")
			}
			if created.AccountID != "acct-member" {
				t.Errorf("AccountID = %q, want caller's account", created.AccountID)
			}
		})
	}
}

func TestEnrollLapsedMemberPaysNonMemberPrice(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	caller := memberCaller(domain.MembershipNormal)
	caller.PaymentStatus = domain.PaymentDue

	created, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID,
		Name:       "Lapsed",
		Email:      "member@example.com",
		Caller:     caller,
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if created.PaymentAmount != 120 {
		t.Errorf("PaymentAmount = %v, want non-member price for a lapsed member", created.PaymentAmount)
	}
	if created.IsMember {
		t.Error("IsMember = true, want false while the fee is unpaid")
	}
	// Still linked to the account for the "my enrollments" view.
	if created.AccountID != "acct-member" {
		t.Errorf("AccountID = %q, want caller's account", created.AccountID)
	}
}

// ---------------------------------------------------------------------------
// Enroll: gates
// ---------------------------------------------------------------------------

func TestEnrollOfferingNotFound(t *testing.T) {
	svc := NewEnrollmentService(newStubOfferingRepo(), newStubEnrollmentRepo(), &openGuard{}, zerolog.Nop())

	_, err := svc.Enroll(context.Background(), ports.EnrollInput{OfferingID: "missing", Email: "a@b.c"})
	if err != domain.ErrOfferingNotFound {
		t.Errorf("Enroll() error = %v, want ErrOfferingNotFound", err)
	}
}

func TestEnrollInactiveOffering(t *testing.T) {
	offerings := newStubOfferingRepo()
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, func(o *domain.Offering) { o.IsActive = false })

	_, err := svc.Enroll(context.Background(), ports.EnrollInput{OfferingID: offering.ID, Email: "a@b.c"})
	if err != domain.ErrOfferingInactive {
		t.Errorf("Enroll() error = %v, want ErrOfferingInactive", err)
	}
}

func TestEnrollDeadlinePassed(t *testing.T) {
	offerings := newStubOfferingRepo()
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), &openGuard{}, zerolog.Nop())
	past := time.Now().UTC().Add(-24 * time.Hour)
	offering := seedOffering(t, offerings, func(o *domain.Offering) { o.RegistrationDeadline = &past })

	_, err := svc.Enroll(context.Background(), ports.EnrollInput{OfferingID: offering.ID, Email: "a@b.c"})
	if err != domain.ErrDeadlinePassed {
		t.Errorf("Enroll() error = %v, want ErrDeadlinePassed", err)
	}
}

func TestEnrollCapacity(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	one := int64(1)
	offering := seedOffering(t, offerings, func(o *domain.Offering) { o.MaxSeats = &one })

	first, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "First", Email: "first@example.com",
	})
	if err != nil {
		t.Fatalf("first Enroll() error = %v", err)
	}

	// The first enrollment is still pending, yet it holds the seat.
	_, err = svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "Second", Email: "second@example.com",
	})
	if err != domain.ErrCapacityExceeded {
		t.Errorf("second Enroll() error = %v, want ErrCapacityExceeded", err)
	}

	// Cancelling frees the seat.
	enrollments.byID[first.ID].PaymentStatus = domain.EnrollmentCancelled
	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "Second", Email: "second@example.com",
	}); err != nil {
		t.Errorf("Enroll() after cancellation error = %v", err)
	}
}

func TestEnrollDuplicateEmail(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "Juan", Email: "juan@example.com",
	}); err != nil {
		t.Fatalf("first Enroll() error = %v", err)
	}

	// Same email, different casing.
	_, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "Juan", Email: "JUAN@example.com",
	})
	if err != domain.ErrDuplicateEnrollment {
		t.Errorf("duplicate Enroll() error = %v, want ErrDuplicateEnrollment", err)
	}
}

// ---------------------------------------------------------------------------
// Enroll: reservation lease
// ---------------------------------------------------------------------------

func TestEnrollLeaseHeld(t *testing.T) {
	offerings := newStubOfferingRepo()
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), heldGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	_, err := svc.Enroll(context.Background(), ports.EnrollInput{OfferingID: offering.ID, Email: "a@b.c"})
	if err != domain.ErrDuplicateEnrollment {
		t.Errorf("Enroll() with held lease error = %v, want ErrDuplicateEnrollment", err)
	}
}

func TestEnrollGuardOutageDegrades(t *testing.T) {
	offerings := newStubOfferingRepo()
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), downGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Name: "Juan", Email: "juan@example.com",
	}); err != nil {
		t.Errorf("Enroll() during guard outage error = %v, want success", err)
	}
}

func TestEnrollReleasesLeaseOnRejection(t *testing.T) {
	offerings := newStubOfferingRepo()
	guard := &openGuard{}
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), guard, zerolog.Nop())
	zero := int64(0)
	offering := seedOffering(t, offerings, func(o *domain.Offering) { o.MaxSeats = &zero })

	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Email: "juan@example.com",
	}); err != domain.ErrCapacityExceeded {
		t.Fatalf("Enroll() error = %v, want ErrCapacityExceeded", err)
	}
	if len(guard.released) != 1 {
		t.Errorf("released leases = %d, want 1 after a rejected attempt", len(guard.released))
	}
}

func TestEnrollKeepsLeaseOnSuccess(t *testing.T) {
	offerings := newStubOfferingRepo()
	guard := &openGuard{}
	svc := NewEnrollmentService(offerings, newStubEnrollmentRepo(), guard, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Email: "juan@example.com",
	}); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if len(guard.released) != 0 {
		t.Errorf("released leases = %d, want 0 after success (lease expires on its own)", len(guard.released))
	}
}

// ---------------------------------------------------------------------------
// ConfirmPayment / Roster / ListByAccount
// ---------------------------------------------------------------------------

func TestConfirmEnrollmentPayment(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	created, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID, Email: "juan@example.com",
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	paid, err := svc.ConfirmPayment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if paid.PaymentStatus != domain.EnrollmentPaid {
		t.Errorf("PaymentStatus = %q, want %q", paid.PaymentStatus, domain.EnrollmentPaid)
	}
	if paid.PaymentDate == nil {
		t.Error("PaymentDate is nil, want payment timestamp")
	}

	if _, err := svc.ConfirmPayment(context.Background(), created.ID); err != domain.ErrEnrollmentProcessed {
		t.Errorf("second ConfirmPayment() error = %v, want ErrEnrollmentProcessed", err)
	}
}

func TestRoster(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
			OfferingID: offering.ID, Email: email,
		}); err != nil {
			t.Fatalf("Enroll(%s) error = %v", email, err)
		}
	}

	roster, err := svc.Roster(context.Background(), offering.ID)
	if err != nil {
		t.Fatalf("Roster() error = %v", err)
	}
	if roster.Offering.ID != offering.ID {
		t.Errorf("Offering.ID = %q, want %q", roster.Offering.ID, offering.ID)
	}
	if len(roster.Enrollments) != 2 {
		t.Errorf("len(Enrollments) = %d, want 2", len(roster.Enrollments))
	}
}

func TestListByAccountEmbedsOfferings(t *testing.T) {
	offerings := newStubOfferingRepo()
	enrollments := newStubEnrollmentRepo()
	svc := NewEnrollmentService(offerings, enrollments, &openGuard{}, zerolog.Nop())
	offering := seedOffering(t, offerings, nil)

	if _, err := svc.Enroll(context.Background(), ports.EnrollInput{
		OfferingID: offering.ID,
		Email:      "member@example.com",
		Caller:     memberCaller(domain.MembershipNormal),
	}); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	list, err := svc.ListByAccount(context.Background(), "acct-member")
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Offering == nil || list[0].Offering.ID != offering.ID {
		t.Errorf("Offering not embedded, got %+v", list[0].Offering)
	}
}
