package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/printhaus/portal/internal/auth/domain"
	"github.com/printhaus/portal/internal/auth/events"
	"github.com/printhaus/portal/internal/auth/repository"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/pkg/db"
	"go.uber.org/zap"
)

type captureMail struct {
	to       string
	resetURL string
}

func (m *captureMail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (m *captureMail) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	m.to = to
	m.resetURL = resetURL
	return nil
}

func newTestService(t *testing.T) (authdomain.Service, *captureMail, *events.Hub) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&authdomain.PasswordResetToken{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo, resetRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	holder := config.NewStaticPortalConfigHolder(config.DefaultPortalConfig())
	mail := &captureMail{}
	hub := events.NewHub()

	svc := New(zap.NewNop(), repo, sessionRepo, resetRepo, node, holder, mail, hub, config.Config{
		ResetBaseURL: "http://localhost:8080/reset",
	})
	return svc, mail, hub
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, hub := newTestService(t)
	sub := hub.Subscribe()
	defer sub.Close()

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:       "bob@example.com",
		Password:    "strong-password",
		DisplayName: "Bob",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "bob@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected session token")
	}

	select {
	case event := <-sub.Events():
		if event.Type != events.SignedIn || event.UserID != user.ID {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected signed_in event")
	}

	session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("expected session for user %v, got %v", user.ID, session.UserID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "carol@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "carol@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	if !errors.Is(err, authdomain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestDuplicateSignupRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err = svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "dave@example.com",
		Password: "another-password",
	})
	if !errors.Is(err, authdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mail, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "erin@example.com",
		Password: "original-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	login, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "original-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "erin@example.com"); err != nil {
		t.Fatalf("failed to request reset: %v", err)
	}
	if mail.to != "erin@example.com" {
		t.Fatalf("expected reset mail to erin@example.com, got %q", mail.to)
	}

	parsed, err := url.Parse(mail.resetURL)
	if err != nil {
		t.Fatalf("failed to parse reset url: %v", err)
	}
	rawToken := parsed.Query().Get("token")
	if rawToken == "" {
		t.Fatal("expected token in reset url")
	}

	if err := svc.ResetPassword(context.Background(), rawToken, "brand-new-password"); err != nil {
		t.Fatalf("failed to reset password: %v", err)
	}

	// Token is single use.
	err = svc.ResetPassword(context.Background(), rawToken, "yet-another-password")
	if !errors.Is(err, authdomain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}

	// Old sessions die with the old password.
	_, err = svc.Authenticate(context.Background(), login.RawToken)
	if !errors.Is(err, authdomain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "original-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}

	if _, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "brand-new-password",
	}); err != nil {
		t.Fatalf("failed to login with new password: %v", err)
	}
}

func TestResetForUnknownEmailIsSilent(t *testing.T) {
	svc, mail, _ := newTestService(t)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if mail.to != "" {
		t.Fatalf("expected no mail, got one to %q", mail.to)
	}
}
