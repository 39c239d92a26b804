package script_warm_stats

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	modelcache "exusiai.dev/boxstats/internal/model/cache"
)

func run(ctx *cli.Context, deps CommandDeps) error {
	log.Info().Msg("running script")
	start := time.Now()

	if name := ctx.String("flush"); name != "" {
		if name == "all" {
			name = ""
		}
		if err := modelcache.Flush(ctx.Context, name); err != nil {
			return errors.Wrap(err, "failed to flush cache")
		}
		log.Info().Str("cache", ctx.String("flush")).Msg("cache flushed")
	}

	count, err := deps.StatsService.WarmAll(ctx.Context, ctx.Int("concurrency"))
	if err != nil {
		return errors.Wrap(err, "failed to warm statistics")
	}

	log.Info().
		Int("owners", count).
		Dur("took", time.Since(start)).
		Msg("script finished")
	return nil
}
