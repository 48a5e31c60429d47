package order

import (
	"github.com/printhaus/portal/internal/order/repository"
	"github.com/printhaus/portal/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
