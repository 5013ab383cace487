package withholding

import (
	"github.com/spotledger/taxcore/internal/withholding/repository"
	"github.com/spotledger/taxcore/internal/withholding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("withholding.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
