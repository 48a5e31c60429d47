// Package seed loads a demo account so a fresh install has something to
// click through.
package seed

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/printhaus/portal/internal/auth/domain"
	invoicedomain "github.com/printhaus/portal/internal/invoice/domain"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	demoEmail    = "demo@printhaus.local"
	demoPassword = "demo-portal-123"
	demoDisplay  = "Printhaus Demo"
)

type Deps struct {
	fx.In

	Log      *zap.Logger
	Auth     authdomain.Service
	Profiles profiledomain.Service
	Orders   orderdomain.Service
	Statuses statusdomain.Service
	Invoices invoicedomain.Service
}

// EnsureDemoData is idempotent: the demo account's existence short-
// circuits the whole load.
func EnsureDemoData(ctx context.Context, d Deps) error {
	log := d.Log.Named("seed")

	user, err := d.Auth.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:       demoEmail,
		Password:    demoPassword,
		DisplayName: demoDisplay,
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrUserExists) {
			return nil
		}
		return err
	}

	profile, err := d.Profiles.Resolve(ctx, user.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	lastMonth := now.AddDate(0, -1, 0)

	delivered, err := d.Orders.Create(ctx, profile.ID, orderdomain.CreateOrderRequest{
		OrderDate:      &lastMonth,
		OrderType:      "Business Cards",
		Quantity:       500,
		Rate:           20,
		AmountReceived: 10000,
		Notes:          "Matte finish, double sided",
	})
	if err != nil {
		return err
	}
	for _, status := range []statusdomain.Status{
		statusdomain.StatusDesign,
		statusdomain.StatusPrinting,
		statusdomain.StatusDelivered,
	} {
		if _, err := d.Statuses.Append(ctx, delivered.Order.ID, status, "ops"); err != nil {
			return err
		}
	}

	inProgress, err := d.Orders.Create(ctx, profile.ID, orderdomain.CreateOrderRequest{
		OrderDate: &now,
		OrderType: "Roll-up Banner",
		Quantity:  2,
		Rate:      45000,
		Notes:     "Event branding",
	})
	if err != nil {
		return err
	}
	if _, err := d.Statuses.Append(ctx, inProgress.Order.ID, statusdomain.StatusDesign, "ops"); err != nil {
		return err
	}

	if _, err := d.Invoices.Create(ctx, profile.ID, invoicedomain.CreateInvoiceRequest{
		OrderID:     delivered.Order.ID.String(),
		TotalAmount: delivered.Order.TotalAmount,
		AmountPaid:  delivered.Order.TotalAmount,
	}); err != nil {
		return err
	}
	due := now.AddDate(0, 0, 14)
	if _, err := d.Invoices.Create(ctx, profile.ID, invoicedomain.CreateInvoiceRequest{
		OrderID:     inProgress.Order.ID.String(),
		TotalAmount: inProgress.Order.TotalAmount,
		DueDate:     &due,
	}); err != nil {
		return err
	}

	log.Info("demo data seeded", zap.String("email", demoEmail))
	return nil
}
