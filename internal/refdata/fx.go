package refdata

import (
	"time"

	"github.com/spotledger/taxcore/internal/config"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	"github.com/spotledger/taxcore/internal/refdata/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("refdata",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) time.Duration {
				return time.Duration(cfg.RefDataCacheTTLSeconds) * time.Second
			},
			fx.ResultTags(`name:"refdata_cache_ttl"`),
		),
		repository.NewRepository,
		func(repo refdomain.Repository) refdomain.Fetcher { return repo },
	),
)
