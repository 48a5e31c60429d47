package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/clock"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/internal/migration"
	"github.com/printhaus/portal/internal/observability"
	"github.com/printhaus/portal/internal/server"
	"github.com/printhaus/portal/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
