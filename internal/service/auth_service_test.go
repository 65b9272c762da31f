package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	activity := NewActivityService(nil, users, time.Minute, zap.NewNop())
	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		Activity:   activity,
		BcryptCost: 4,
		Logger:     zap.NewNop(),
	})
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	result, err := svc.Register(context.Background(), "Maria Silva", "Maria@Example.com", "segredo1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Email != "maria@example.com" {
		t.Errorf("email not normalized: %q", result.User.Email)
	}
	if result.User.Role != domain.RoleUsuario {
		t.Errorf("role = %v, want Usuário", result.User.Role)
	}
	if result.Token == "" {
		t.Error("expected a signed token")
	}
	if result.User.PasswordHash == "segredo1" {
		t.Error("password stored in plaintext")
	}

	login, err := svc.Login(context.Background(), "maria@example.com", "segredo1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.LastLoginAt == nil || login.User.LastActivityAt == nil {
		t.Error("login should stamp last login and activity")
	}

	if _, err := svc.Login(context.Background(), "maria@example.com", "errada"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Errorf("wrong password: got %v, want UNAUTHORIZED", err)
	}
	if _, err := svc.Login(context.Background(), "ninguem@example.com", "segredo1"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Errorf("unknown account: got %v, want UNAUTHORIZED", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), "", "a@b.com", "segredo1"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("empty name: got %v", err)
	}
	if _, err := svc.Register(context.Background(), "Ana", "a@b.com", "curta"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("short password: got %v", err)
	}

	if _, err := svc.Register(context.Background(), "Ana", "a@b.com", "segredo1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), "Outra Ana", "A@B.com", "segredo2"); !apperrors.IsCode(err, "CONFLICT") {
		t.Errorf("duplicate email: got %v, want CONFLICT", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, users := newAuthFixture()
	result, err := svc.Register(context.Background(), "Ana", "a@b.com", "segredo1")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(context.Background(), result.User, "errada", "novasenha"); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Errorf("wrong current password: got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), result.User, "segredo1", "abc"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("short new password: got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), result.User, "segredo1", "novasenha"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	stored, err := users.GetByID(context.Background(), result.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := auth.ComparePassword(stored.PasswordHash, "novasenha"); err != nil {
		t.Error("new password does not verify against stored hash")
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "segredo1"); err == nil {
		t.Error("old password still accepted")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthFixture()
	first, err := svc.Register(context.Background(), "Ana", "a@b.com", "segredo1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), "Beto", "b@b.com", "segredo1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateProfile(context.Background(), first.User, "Ana Maria", "b@b.com"); !apperrors.IsCode(err, "CONFLICT") {
		t.Errorf("email in use: got %v, want CONFLICT", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), first.User, "Ana Maria", "ana@b.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ana Maria" || updated.Email != "ana@b.com" {
		t.Errorf("profile = %+v", updated)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()
	registered, err := svc.Register(context.Background(), "Ana", "a@b.com", "segredo1")
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), registered.User)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	claims, err := svc.TokenManager().ParseToken(refreshed.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != registered.User.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, registered.User.ID)
	}
}
