package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/spotledger/taxcore/internal/config"
	"github.com/spotledger/taxcore/internal/invoice"
	"github.com/spotledger/taxcore/internal/logger"
	"github.com/spotledger/taxcore/internal/migration"
	"github.com/spotledger/taxcore/internal/refdata"
	"github.com/spotledger/taxcore/internal/server"
	"github.com/spotledger/taxcore/internal/taxengine"
	"github.com/spotledger/taxcore/internal/withholding"
	"github.com/spotledger/taxcore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		refdata.Module,
		taxengine.Module,
		invoice.Module,
		withholding.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
