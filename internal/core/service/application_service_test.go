package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

func newApplicationFixture() (*ApplicationService, *stubApplicationRepo, *stubAccountRepo, *stubSequences) {
	apps := newStubApplicationRepo()
	accounts := newStubAccountRepo()
	sequences := newStubSequences()
	svc := NewApplicationService(apps, accounts, sequences, &stubTx{}, zerolog.Nop())
	return svc, apps, accounts, sequences
}

func submitApplication(t *testing.T, svc *ApplicationService, email string) *domain.Application {
	t.Helper()
	app, err := svc.Submit(context.Background(), ports.SubmitApplicationInput{
		Name:           "Dr. Ana Ruiz",
		Email:          email,
		Specialization: "Cardiology",
		DocumentRefs:   []string{"applications/diploma.pdf"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return app
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmitApplicationDefaults(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()

	app := submitApplication(t, svc, "  Ana.Ruiz@Example.COM ")

	if app.Status != domain.ApplicationPending {
		t.Errorf("Status = %q, want %q", app.Status, domain.ApplicationPending)
	}
	if app.Email != "ana.ruiz@example.com" {
		t.Errorf("Email = %q, want lower-cased trimmed email", app.Email)
	}
	if app.MembershipType != domain.MembershipNormal {
		t.Errorf("MembershipType = %q, want %q", app.MembershipType, domain.MembershipNormal)
	}
	if len(app.Attachments) != 1 || app.Attachments[0].FileRef != "applications/diploma.pdf" {
		t.Errorf("Attachments = %+v, want one attachment with the submitted ref", app.Attachments)
	}
	if app.DecidedAt != nil {
		t.Errorf("DecidedAt = %v, want nil for a fresh submission", app.DecidedAt)
	}
}

// ---------------------------------------------------------------------------
// Approve / Reject
// ---------------------------------------------------------------------------

func TestApproveApplication(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")

	updated, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{
		ApplicationID:  app.ID,
		MembershipType: domain.MembershipYoung,
	})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if updated.Status != domain.ApplicationPaymentPending {
		t.Errorf("Status = %q, want %q", updated.Status, domain.ApplicationPaymentPending)
	}
	if updated.MembershipType != domain.MembershipYoung {
		t.Errorf("MembershipType = %q, want %q", updated.MembershipType, domain.MembershipYoung)
	}
	if updated.ResolutionNote == "" {
		t.Error("ResolutionNote is empty, want default approval note")
	}
	if updated.DecidedAt == nil {
		t.Error("DecidedAt is nil, want decision timestamp")
	}
}

func TestApproveApplicationTwice(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")

	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}
	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != domain.ErrApplicationResolved {
		t.Errorf("second Approve() error = %v, want ErrApplicationResolved", err)
	}
}

func TestRejectApplication(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")

	updated, err := svc.Reject(context.Background(), app.ID, "incomplete documentation")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if updated.Status != domain.ApplicationRejected {
		t.Errorf("Status = %q, want %q", updated.Status, domain.ApplicationRejected)
	}
	if updated.ResolutionNote != "incomplete documentation" {
		t.Errorf("ResolutionNote = %q, want the given note", updated.ResolutionNote)
	}

	// Rejection is terminal.
	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != domain.ErrApplicationResolved {
		t.Errorf("Approve() after reject error = %v, want ErrApplicationResolved", err)
	}
}

func TestRejectAfterApprove(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")

	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := svc.Reject(context.Background(), app.ID, ""); err != domain.ErrApplicationResolved {
		t.Errorf("Reject() after approve error = %v, want ErrApplicationResolved", err)
	}
}

// ---------------------------------------------------------------------------
// ConfirmPayment
// ---------------------------------------------------------------------------

func TestConfirmPaymentCreatesAccount(t *testing.T) {
	svc, apps, accounts, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")
	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{
		ApplicationID:  app.ID,
		MembershipType: domain.MembershipYoung,
	}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	result, err := svc.ConfirmPayment(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}

	if result.Application.Status != domain.ApplicationPaid {
		t.Errorf("Status = %q, want %q", result.Application.Status, domain.ApplicationPaid)
	}
	if !strings.Contains(result.Application.ResolutionNote, "Payment confirmed") {
		t.Errorf("ResolutionNote = %q, want payment confirmation appended", result.Application.ResolutionNote)
	}
	if result.Credentials.Email != "ana@example.com" {
		t.Errorf("Credentials.Email = %q, want application email", result.Credentials.Email)
	}
	if result.Credentials.Password != "soc-00001" {
		t.Errorf("Credentials.Password = %q, want first sequential credential", result.Credentials.Password)
	}
	if result.Credentials.MembershipType != domain.MembershipYoung {
		t.Errorf("Credentials.MembershipType = %q, want the approved tier", result.Credentials.MembershipType)
	}

	account, err := accounts.FindByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if account.Role != domain.RoleMember {
		t.Errorf("account Role = %q, want %q", account.Role, domain.RoleMember)
	}
	if account.MembershipType != domain.MembershipYoung {
		t.Errorf("account MembershipType = %q, want %q", account.MembershipType, domain.MembershipYoung)
	}
	if account.PaymentStatus != domain.PaymentPaid {
		t.Errorf("account PaymentStatus = %q, want %q", account.PaymentStatus, domain.PaymentPaid)
	}
	if account.InitialPassword != result.Credentials.Password {
		t.Errorf("InitialPassword = %q, want the issued credential", account.InitialPassword)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(result.Credentials.Password)) != nil {
		t.Error("stored hash does not verify against the issued credential")
	}

	stored, _ := apps.FindByID(context.Background(), app.ID)
	if stored.Status != domain.ApplicationPaid {
		t.Errorf("persisted Status = %q, want %q", stored.Status, domain.ApplicationPaid)
	}
}

func TestConfirmPaymentSequentialCredentials(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()

	for i, email := range []string{"first@example.com", "second@example.com"} {
		app := submitApplication(t, svc, email)
		if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		result, err := svc.ConfirmPayment(context.Background(), app.ID)
		if err != nil {
			t.Fatalf("ConfirmPayment() error = %v", err)
		}
		want := []string{"soc-00001", "soc-00002"}[i]
		if result.Credentials.Password != want {
			t.Errorf("Credentials.Password = %q, want %q", result.Credentials.Password, want)
		}
	}
}

func TestConfirmPaymentRequiresApproval(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")

	if _, err := svc.ConfirmPayment(context.Background(), app.ID); err != domain.ErrApplicationNotPaymentPending {
		t.Errorf("ConfirmPayment() on pending error = %v, want ErrApplicationNotPaymentPending", err)
	}
}

func TestConfirmPaymentTwice(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")
	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), app.ID); err != nil {
		t.Fatalf("first ConfirmPayment() error = %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), app.ID); err != domain.ErrApplicationNotPaymentPending {
		t.Errorf("second ConfirmPayment() error = %v, want ErrApplicationNotPaymentPending", err)
	}
}

func TestConfirmPaymentExistingAccount(t *testing.T) {
	svc, _, accounts, _ := newApplicationFixture()
	app := submitApplication(t, svc, "ana@example.com")
	if _, err := svc.Approve(context.Background(), ports.ApproveApplicationInput{ApplicationID: app.ID}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := accounts.Create(context.Background(), &domain.Account{
		Email: "ana@example.com",
		Role:  domain.RoleMember,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), app.ID); err != domain.ErrAccountExists {
		t.Errorf("ConfirmPayment() error = %v, want ErrAccountExists", err)
	}
}
