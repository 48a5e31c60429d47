package auth

import (
	"github.com/printhaus/portal/internal/auth/events"
	"github.com/printhaus/portal/internal/auth/repository"
	"github.com/printhaus/portal/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(events.NewHub),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
