package invoice

import (
	"github.com/printhaus/portal/internal/invoice/repository"
	"github.com/printhaus/portal/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
