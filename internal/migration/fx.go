package migration

import (
	"github.com/printhaus/portal/internal/auth/domain"
	"github.com/printhaus/portal/internal/config"
	invoicedomain "github.com/printhaus/portal/internal/invoice/domain"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// SQLite and MySQL deployments rely on gorm's schema sync;
			// the versioned SQL migrations target Postgres only.
			return conn.AutoMigrate(
				&domain.User{},
				&domain.Session{},
				&domain.PasswordResetToken{},
				&profiledomain.Profile{},
				&orderdomain.Order{},
				&statusdomain.StatusEvent{},
				&invoicedomain.Invoice{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
