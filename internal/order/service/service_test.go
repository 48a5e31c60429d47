package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/order/domain"
	"github.com/printhaus/portal/internal/order/repository"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	statusrepo "github.com/printhaus/portal/internal/orderstatus/repository"
	statusservice "github.com/printhaus/portal/internal/orderstatus/service"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	profilerepo "github.com/printhaus/portal/internal/profile/repository"
	"github.com/printhaus/portal/pkg/db"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	statuses statusdomain.Service
	profiles profiledomain.Repository
	node     *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&profiledomain.Profile{},
		&domain.Order{},
		&statusdomain.StatusEvent{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	profiles := profilerepo.New(dbConn)
	statuses := statusservice.New(statusservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  statusrepo.New(dbConn),
	})

	svc := New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.New(dbConn),
		Profiles: profiles,
		Statuses: statuses,
	})

	return &fixture{svc: svc, statuses: statuses, profiles: profiles, node: node}
}

func (f *fixture) seedProfile(t *testing.T) *profiledomain.Profile {
	t.Helper()
	profile := &profiledomain.Profile{
		ID:        f.node.Generate(),
		UserID:    f.node.Generate(),
		Name:      "Ivy",
		Email:     "ivy@example.com",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.profiles.Insert(context.Background(), profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func TestCreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	profile := f.seedProfile(t)

	view, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType:      "Business Cards",
		Quantity:       500,
		Rate:           20,
		AmountReceived: 4000,
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if view.Order.TotalAmount != 10000 {
		t.Fatalf("expected total 10000, got %d", view.Order.TotalAmount)
	}
	if view.Order.BalanceAmount != 6000 {
		t.Fatalf("expected balance 6000, got %d", view.Order.BalanceAmount)
	}
	if view.Status != "Pending" {
		t.Fatalf("expected new order Pending, got %s", view.Status)
	}
	if view.DisplayID != "ORD-"+view.Order.ID.String() {
		t.Fatalf("unexpected display id %q", view.DisplayID)
	}

	updated, err := f.profiles.FindByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if updated.TotalOrders != 1 || updated.TotalSpent != 10000 {
		t.Fatalf("expected counters (1, 10000), got (%d, %d)", updated.TotalOrders, updated.TotalSpent)
	}
}

func TestSoftDeleteHidesOrder(t *testing.T) {
	f := newFixture(t)
	profile := f.seedProfile(t)

	view, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Flyers",
		Quantity:  100,
		Rate:      50,
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if err := f.svc.SoftDelete(context.Background(), profile.ID, view.Order.ID.String()); err != nil {
		t.Fatalf("failed to delete order: %v", err)
	}

	_, err = f.svc.Get(context.Background(), profile.ID, view.Order.ID.String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	resp, err := f.svc.List(context.Background(), profile.ID, domain.ListOrdersRequest{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Orders) != 0 {
		t.Fatalf("expected deleted order excluded, got %d orders", len(resp.Orders))
	}

	updated, err := f.profiles.FindByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if updated.TotalOrders != 0 || updated.TotalSpent != 0 {
		t.Fatalf("expected counters back to zero, got (%d, %d)", updated.TotalOrders, updated.TotalSpent)
	}
}

func TestListSearchByDisplayID(t *testing.T) {
	f := newFixture(t)
	profile := f.seedProfile(t)

	first, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Posters",
		Quantity:  10,
		Rate:      300,
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Stickers",
		Quantity:  1000,
		Rate:      2,
	}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	resp, err := f.svc.List(context.Background(), profile.ID, domain.ListOrdersRequest{
		Search: "ORD-" + first.Order.ID.String(),
	})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("expected one match, got %d", len(resp.Orders))
	}
	if resp.Orders[0].Order.ID != first.Order.ID {
		t.Fatalf("expected order %v, got %v", first.Order.ID, resp.Orders[0].Order.ID)
	}
}

func TestListFilterByStatus(t *testing.T) {
	f := newFixture(t)
	profile := f.seedProfile(t)

	printing, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Banners",
		Quantity:  2,
		Rate:      5000,
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Leaflets",
		Quantity:  500,
		Rate:      4,
	}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	if _, err := f.statuses.Append(context.Background(), printing.Order.ID, statusdomain.StatusPrinting, "ops"); err != nil {
		t.Fatalf("failed to append status: %v", err)
	}

	resp, err := f.svc.List(context.Background(), profile.ID, domain.ListOrdersRequest{Status: "Printing"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("expected one Printing order, got %d", len(resp.Orders))
	}
	if resp.Orders[0].Order.ID != printing.Order.ID {
		t.Fatalf("expected order %v, got %v", printing.Order.ID, resp.Orders[0].Order.ID)
	}

	if _, err := f.svc.List(context.Background(), profile.ID, domain.ListOrdersRequest{Status: "Shipped"}); !errors.Is(err, statusdomain.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestUpdateRecomputesBalance(t *testing.T) {
	f := newFixture(t)
	profile := f.seedProfile(t)

	view, err := f.svc.Create(context.Background(), profile.ID, domain.CreateOrderRequest{
		OrderType: "Brochures",
		Quantity:  100,
		Rate:      100,
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	received := int64(2500)
	quantity := int64(200)
	updated, err := f.svc.Update(context.Background(), profile.ID, view.Order.ID.String(), domain.UpdateOrderRequest{
		Quantity:       &quantity,
		AmountReceived: &received,
	})
	if err != nil {
		t.Fatalf("failed to update order: %v", err)
	}
	if updated.Order.TotalAmount != 20000 {
		t.Fatalf("expected total 20000, got %d", updated.Order.TotalAmount)
	}
	if updated.Order.BalanceAmount != 17500 {
		t.Fatalf("expected balance 17500, got %d", updated.Order.BalanceAmount)
	}

	reloaded, err := f.profiles.FindByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if reloaded.TotalSpent != 20000 {
		t.Fatalf("expected spent 20000 after update, got %d", reloaded.TotalSpent)
	}
}
