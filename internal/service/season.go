package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"exusiai.dev/boxstats/internal/app/appconfig"
	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/observability"
	"exusiai.dev/boxstats/internal/repo"
	"exusiai.dev/boxstats/internal/util/seasonutil"
)

const (
	opCreateOrMerge   = "create_or_merge"
	opReplaceOrDelete = "replace_or_delete"
)

// SeasonStore is the season persistence the ingestion and listing paths
// depend on. Writes take the season row lock inside RunInTx.
type SeasonStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	GetSeasonNumbers(ctx context.Context, accountID int) ([]int, error)
	GetSeasons(ctx context.Context, accountID int) ([]*model.Season, error)
	GetSeasonByNumber(ctx context.Context, accountID, seasonNumber int) (*model.Season, error)
	LockSeasonByNumber(ctx context.Context, tx bun.Tx, accountID, seasonNumber int) (*model.Season, error)
	LockSeasonByID(ctx context.Context, tx bun.Tx, accountID int, seasonID string) (*model.Season, error)
	InsertSeason(ctx context.Context, tx bun.Tx, accountID, seasonNumber int, boxes []*model.Box) (*model.Season, error)
	UpdateSeasonBoxes(ctx context.Context, tx bun.Tx, season *model.Season, boxes []*model.Box) error
	DeleteSeason(ctx context.Context, tx bun.Tx, season *model.Season) error
}

type Season struct {
	Config     *appconfig.Config
	SeasonRepo SeasonStore
	RedSync    *redsync.Redsync
	Stats      *Stats
	Event      *Event
}

func NewSeason(conf *appconfig.Config, seasonRepo *repo.Season, rs *redsync.Redsync, stats *Stats, event *Event) *Season {
	return &Season{
		Config:     conf,
		SeasonRepo: seasonRepo,
		RedSync:    rs,
		Stats:      stats,
		Event:      event,
	}
}

func (s *Season) GetSeasons(ctx context.Context, accountID int) ([]*types.SeasonListItem, error) {
	seasons, err := s.SeasonRepo.GetSeasons(ctx, accountID)
	if err != nil {
		return nil, err
	}
	items := make([]*types.SeasonListItem, 0, len(seasons))
	if err := copier.Copy(&items, &seasons); err != nil {
		return nil, errors.Wrap(err, "failed to copy seasons")
	}
	return items, nil
}

// GetCompletedSeasonNumbers returns the owner's season numbers ascending. No seasons is an empty list.
func (s *Season) GetCompletedSeasonNumbers(ctx context.Context, accountID int) ([]int, error) {
	numbers, err := s.SeasonRepo.GetSeasonNumbers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if numbers == nil {
		numbers = []int{}
	}
	return numbers, nil
}

func (s *Season) GetSeasonBoxes(ctx context.Context, accountID, seasonNumber int) (*types.SeasonBoxes, error) {
	season, err := s.SeasonRepo.GetSeasonByNumber(ctx, accountID, seasonNumber)
	if errors.Is(err, bserr.ErrNotFound) {
		return nil, bserr.ErrSeasonNotFound.Msg("season %d not found", seasonNumber)
	} else if err != nil {
		return nil, err
	}
	return &types.SeasonBoxes{
		SeasonID: season.SeasonID,
		Boxes:    season.Boxes,
	}, nil
}

// CreateOrMerge stores a homogeneous batch of boxes into the owner's season,
// creating the season when it does not exist yet.
func (s *Season) CreateOrMerge(ctx context.Context, accountID, seasonNumber int, boxes []*model.Box) (result *types.SeasonWriteResult, err error) {
	defer s.observe(opCreateOrMerge, time.Now(), &err)

	if err := seasonutil.ValidateBoxes(boxes, true); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, accountID, seasonNumber)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result = &types.SeasonWriteResult{}
	err = s.SeasonRepo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.SeasonRepo.LockSeasonByNumber(ctx, tx, accountID, seasonNumber)
		if errors.Is(err, bserr.ErrNotFound) {
			season, err := s.SeasonRepo.InsertSeason(ctx, tx, accountID, seasonNumber, boxes)
			if err != nil {
				return err
			}
			result.Season = season
			result.Created = true
			return nil
		} else if err != nil {
			return err
		}

		merged, err := seasonutil.MergeBoxes(existing.Boxes, boxes)
		if err != nil {
			return err
		}
		if err := s.SeasonRepo.UpdateSeasonBoxes(ctx, tx, existing, merged); err != nil {
			return err
		}
		result.Season = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, result.Season, false)
	return result, nil
}

// ReplaceOrDelete replaces the boxes of a season owned by accountID. An
// empty list deletes the season.
func (s *Season) ReplaceOrDelete(ctx context.Context, accountID int, seasonID string, boxes []*model.Box) (result *types.SeasonWriteResult, err error) {
	defer s.observe(opReplaceOrDelete, time.Now(), &err)

	deleting := len(boxes) == 0
	if !deleting {
		if err := seasonutil.ValidateBoxes(boxes, false); err != nil {
			return nil, err
		}
	}

	// the season number keys the write lock, so resolve it before locking
	var seasonNumber int
	err = s.SeasonRepo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		season, err := s.SeasonRepo.LockSeasonByID(ctx, tx, accountID, seasonID)
		if err != nil {
			return err
		}
		seasonNumber = season.SeasonNumber
		return nil
	})
	if errors.Is(err, bserr.ErrNotFound) {
		return nil, bserr.ErrSeasonNotFound.Msg("season %s not found", seasonID)
	} else if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, accountID, seasonNumber)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result = &types.SeasonWriteResult{Deleted: deleting}
	err = s.SeasonRepo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		season, err := s.SeasonRepo.LockSeasonByID(ctx, tx, accountID, seasonID)
		if err != nil {
			return err
		}
		if deleting {
			result.Season = season
			return s.SeasonRepo.DeleteSeason(ctx, tx, season)
		}
		if err := s.SeasonRepo.UpdateSeasonBoxes(ctx, tx, season, boxes); err != nil {
			return err
		}
		result.Season = season
		return nil
	})
	if errors.Is(err, bserr.ErrNotFound) {
		return nil, bserr.ErrSeasonNotFound.Msg("season %s not found", seasonID)
	} else if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, result.Season, deleting)
	if deleting {
		result.Season = nil
	}
	return result, nil
}

func (s *Season) lock(ctx context.Context, accountID, seasonNumber int) (func(), error) {
	name := "mutex:season:" + strconv.Itoa(accountID) + ":" + strconv.Itoa(seasonNumber)
	mutex := s.RedSync.NewMutex(name,
		redsync.WithExpiry(s.Config.SeasonLockExpiry),
		redsync.WithTries(32),
		redsync.WithRetryDelay(time.Millisecond*50),
	)
	if err := mutex.LockContext(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "season.lock.failed").
			Str("mutex", name).
			Msg("failed to acquire season write lock")
		return nil, bserr.ErrInternalError.Msg("season is being written by another request, please retry")
	}

	return func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "season.unlock.failed").
				Str("mutex", name).
				Msg("failed to release season write lock")
		}
	}, nil
}

// afterWrite drops the owner's cached statistics and announces the change.
func (s *Season) afterWrite(ctx context.Context, season *model.Season, deleted bool) {
	if err := s.Stats.Invalidate(ctx, season.AccountID); err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "season.cache.invalidate").
			Int("accountId", season.AccountID).
			Msg("failed to invalidate statistics cache")
	}
	s.Event.PublishSeasonChanged(ctx, season, deleted)
}

func (s *Season) observe(operation string, start time.Time, err *error) {
	observability.SeasonWriteDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	result := "ok"
	if *err != nil {
		result = "error"
		var be *bserr.Error
		if errors.As(*err, &be) {
			result = be.ErrorCode
		}
	}
	observability.SeasonWriteOutcome.WithLabelValues(operation, result).Inc()
}
