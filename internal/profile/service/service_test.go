package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/printhaus/portal/internal/auth/domain"
	authrepo "github.com/printhaus/portal/internal/auth/repository"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/internal/profile/domain"
	"github.com/printhaus/portal/internal/profile/repository"
	"github.com/printhaus/portal/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, authdomain.Repository, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &domain.Profile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	users, _, _ := authrepo.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.New(dbConn),
		Users:  users,
		Holder: config.NewStaticPortalConfigHolder(config.DefaultPortalConfig()),
	})
	return svc, users, node
}

func seedUser(t *testing.T, users authdomain.Repository, node *snowflake.Node, email, displayName string) *authdomain.User {
	t.Helper()
	user := &authdomain.User{
		ID:          node.Generate(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestResolveWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), 0)
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestResolveCreatesProfileOnFirstSight(t *testing.T) {
	svc, users, node := newTestService(t)
	user := seedUser(t, users, node, "frank@example.com", "")

	profile, err := svc.Resolve(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if profile.UserID != user.ID {
		t.Fatalf("expected profile keyed by user %v, got %v", user.ID, profile.UserID)
	}
	if profile.Name != "frank" {
		t.Fatalf("expected fallback name from email local part, got %q", profile.Name)
	}
	if profile.TotalOrders != 0 || profile.TotalSpent != 0 {
		t.Fatalf("expected zeroed counters, got orders=%d spent=%d", profile.TotalOrders, profile.TotalSpent)
	}

	again, err := svc.Resolve(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve again: %v", err)
	}
	if again.ID != profile.ID {
		t.Fatalf("expected same profile, got %v and %v", profile.ID, again.ID)
	}
}

func TestResolvePrefersDisplayName(t *testing.T) {
	svc, users, node := newTestService(t)
	user := seedUser(t, users, node, "grace@example.com", "Grace Hopper")

	profile, err := svc.Resolve(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if profile.Name != "Grace Hopper" {
		t.Fatalf("expected display name, got %q", profile.Name)
	}
}

func TestResolveTimesOut(t *testing.T) {
	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &domain.Profile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	users, _, _ := authrepo.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	cfg := config.DefaultPortalConfig()
	cfg.ProfileLookupTimeout = time.Nanosecond
	svc := New(Params{
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.New(dbConn),
		Users:  users,
		Holder: config.NewStaticPortalConfigHolder(cfg),
	})
	user := seedUser(t, users, node, "ivan@example.com", "Ivan")

	_, err = svc.Resolve(context.Background(), user.ID)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestResolveUnknownUser(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Resolve(context.Background(), node.Generate())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, users, node := newTestService(t)
	user := seedUser(t, users, node, "heidi@example.com", "Heidi")

	if _, err := svc.Resolve(context.Background(), user.ID); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	company := "Printhaus GmbH"
	updated, err := svc.Update(context.Background(), user.ID, domain.UpdateProfileRequest{
		Company: &company,
	})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Company != company {
		t.Fatalf("expected company %q, got %q", company, updated.Company)
	}
	if updated.Name != "Heidi" {
		t.Fatalf("expected untouched name, got %q", updated.Name)
	}
	if updated.Email != "heidi@example.com" {
		t.Fatalf("expected untouched email, got %q", updated.Email)
	}
}

func TestUpdateWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	name := "nobody"
	_, err := svc.Update(context.Background(), 0, domain.UpdateProfileRequest{Name: &name})
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
