package script_archive_seasons

import (
	"net/http"
	"time"

	"github.com/felixge/fgprof"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func run(ctx *cli.Context, deps CommandDeps, dateStr string) error {
	if ctx.Bool("profile") {
		http.DefaultServeMux.Handle("/debug/fgprof", fgprof.Handler())
		go func() {
			log.Print(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}

	log.Info().Str("date", dateStr).Msg("running script")

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return errors.Wrap(err, "failed to parse date")
	}

	count, err := deps.ArchiveService.ArchiveSeasons(ctx.Context, date)
	if err != nil {
		return errors.Wrap(err, "failed to run archiveSeasons")
	}

	log.Info().Int("count", count).Msg("script finished")
	return nil
}
