package orderstatus

import (
	"github.com/printhaus/portal/internal/orderstatus/repository"
	"github.com/printhaus/portal/internal/orderstatus/service"
	"go.uber.org/fx"
)

var Module = fx.Module("orderstatus",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
