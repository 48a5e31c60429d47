package profile

import (
	"context"

	"github.com/printhaus/portal/internal/auth/events"
	"github.com/printhaus/portal/internal/profile/domain"
	"github.com/printhaus/portal/internal/profile/repository"
	"github.com/printhaus/portal/internal/profile/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("profile",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Invoke(registerListener),
)

func registerListener(lc fx.Lifecycle, log *zap.Logger, svc domain.Service, hub *events.Hub) {
	l := newListener(log, svc, hub)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go l.run()
			return nil
		},
		OnStop: func(context.Context) error {
			l.stop()
			return nil
		},
	})
}
