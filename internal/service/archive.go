package service

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"exusiai.dev/boxstats/internal/app/appconfig"
	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/pkg/archiver"
	"exusiai.dev/boxstats/internal/repo"
)

const archivePageSize = 500

// seasonRecord is the archived form of a season. The owner is kept so a
// snapshot can be restored.
type seasonRecord struct {
	AccountID int `json:"account_id"`
	*model.Season
	Version int `json:"version"`
}

type Archive struct {
	SeasonRepo *repo.Season
	archiver   *archiver.Archiver
	lock       *redsync.Mutex
}

func NewArchive(conf *appconfig.Config, seasonRepo *repo.Season, rs *redsync.Redsync, s3Client *s3.Client) *Archive {
	return &Archive{
		SeasonRepo: seasonRepo,
		archiver:   archiver.New(s3Client, conf.ArchiveS3Bucket, conf.ArchiveS3Prefix, "seasons"),
		lock:       rs.NewMutex("mutex:archiver:seasons", redsync.WithExpiry(30*time.Minute), redsync.WithTries(2)),
	}
}

// ArchiveSeasons snapshots every stored season into the archive object of
// date. It refuses to overwrite an existing snapshot.
func (s *Archive) ArchiveSeasons(ctx context.Context, date time.Time) (int, error) {
	if err := s.lock.LockContext(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to acquire lock")
	}
	defer func() {
		if _, err := s.lock.Unlock(); err != nil {
			log.Warn().Err(err).Str("evt.name", "archive.unlock.failed").Msg("failed to release archive lock")
		}
	}()

	eg, ectx := errgroup.WithContext(ctx)
	records := make(chan any, archivePageSize)

	eg.Go(func() error {
		defer close(records)
		return s.SeasonRepo.IterateSeasons(ectx, archivePageSize, func(seasons []*model.Season) error {
			for _, season := range seasons {
				select {
				case records <- &seasonRecord{AccountID: season.AccountID, Season: season, Version: season.Version}:
				case <-ectx.Done():
					return ectx.Err()
				}
			}
			return nil
		})
	})

	var count int
	eg.Go(func() error {
		var err error
		count, err = s.archiver.Archive(ectx, date, records)
		return err
	})

	if err := eg.Wait(); err != nil {
		return count, err
	}

	log.Info().
		Str("evt.name", "archive.seasons.done").
		Str("key", s.archiver.Key(date)).
		Int("count", count).
		Msg("archived seasons")
	return count, nil
}
