package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/colmedica/association-api/internal/core/domain"
)

const testSecret = "test-secret"

func seedAccount(t *testing.T, repo *stubAccountRepo, email, password string, mutate func(*domain.Account)) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	a := &domain.Account{
		Email:        email,
		Name:         "Test Account",
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(a)
	}
	created, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return created
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := NewAuthService(accounts, testSecret, time.Hour)
	seedAccount(t, accounts, "ana@example.com", "secret123", func(a *domain.Account) {
		a.Role = domain.RoleAdmin
	})

	token, account, err := svc.Login(context.Background(), " Ana@Example.COM ", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if account.Email != "ana@example.com" {
		t.Errorf("account.Email = %q, want %q", account.Email, "ana@example.com")
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != account.ID {
		t.Errorf("claim sub = %v, want %q", claims["sub"], account.ID)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Errorf("claim role = %v, want %q", claims["role"], domain.RoleAdmin)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := NewAuthService(accounts, testSecret, time.Hour)
	seedAccount(t, accounts, "ana@example.com", "secret123", nil)

	if _, _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newStubAccountRepo(), testSecret, time.Hour)

	// Unknown accounts look exactly like a wrong password.
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123"); err != domain.ErrInvalidCredentials {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

// ---------------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------------

func TestChangePasswordRotatesCredential(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := NewAuthService(accounts, testSecret, time.Hour)
	account := seedAccount(t, accounts, "ana@example.com", "soc-00001", func(a *domain.Account) {
		a.InitialPassword = "soc-00001"
	})

	if err := svc.ChangePassword(context.Background(), account.ID, "soc-00001", "hunter2good"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	stored, _ := accounts.FindByID(context.Background(), account.ID)
	if stored.InitialPassword != "" {
		t.Errorf("InitialPassword = %q, want cleared after rotation", stored.InitialPassword)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2good")) != nil {
		t.Error("stored hash does not verify against the new password")
	}
	if _, _, err := svc.Login(context.Background(), "ana@example.com", "soc-00001"); err != domain.ErrInvalidCredentials {
		t.Errorf("Login() with rotated credential error = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := NewAuthService(accounts, testSecret, time.Hour)
	account := seedAccount(t, accounts, "ana@example.com", "secret123", nil)

	if err := svc.ChangePassword(context.Background(), account.ID, "wrong", "hunter2good"); err != domain.ErrInvalidCredentials {
		t.Errorf("ChangePassword() error = %v, want ErrInvalidCredentials", err)
	}
}
