package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/repo/selector"
)

// ErrVersionConflict is returned when a season changed between being read and written.
var ErrVersionConflict = errors.New("season version conflict")

type Season struct {
	db  *bun.DB
	sel selector.S[model.Season]
}

func NewSeason(db *bun.DB) *Season {
	return &Season{
		db:  db,
		sel: selector.New[model.Season](db),
	}
}

// RunInTx runs fn inside a read committed transaction.
func (r *Season) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, fn)
}

func (r *Season) GetSeasonNumbers(ctx context.Context, accountID int) ([]int, error) {
	var numbers []int
	err := r.db.NewSelect().
		Model((*model.Season)(nil)).
		Column("season_number").
		Where("account_id = ?", accountID).
		Order("season_number ASC").
		Scan(ctx, &numbers)
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *Season) GetSeasons(ctx context.Context, accountID int) ([]*model.Season, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID).Order("season_number ASC")
	})
}

func (r *Season) GetSeasonByNumber(ctx context.Context, accountID, seasonNumber int) (*model.Season, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID).Where("season_number = ?", seasonNumber)
	})
}

// LockSeasonByNumber reads a season row with FOR UPDATE inside tx.
func (r *Season) LockSeasonByNumber(ctx context.Context, tx bun.Tx, accountID, seasonNumber int) (*model.Season, error) {
	return r.sel.Tx(tx).SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID).Where("season_number = ?", seasonNumber).For("UPDATE")
	})
}

// LockSeasonByID reads a season row owned by accountID with FOR UPDATE inside tx.
func (r *Season) LockSeasonByID(ctx context.Context, tx bun.Tx, accountID int, seasonID string) (*model.Season, error) {
	return r.sel.Tx(tx).SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("season_id = ?", seasonID).Where("account_id = ?", accountID).For("UPDATE")
	})
}

func (r *Season) InsertSeason(ctx context.Context, tx bun.Tx, accountID, seasonNumber int, boxes []*model.Box) (*model.Season, error) {
	now := time.Now()
	season := &model.Season{
		SeasonID:     ulid.Make().String(),
		AccountID:    accountID,
		SeasonNumber: seasonNumber,
		Boxes:        boxes,
		Version:      1,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
	if _, err := tx.NewInsert().Model(season).Exec(ctx); err != nil {
		return nil, err
	}
	return season, nil
}

// UpdateSeasonBoxes stores boxes on season and bumps its version. The write
// only applies when the stored version is still the one season was read at.
func (r *Season) UpdateSeasonBoxes(ctx context.Context, tx bun.Tx, season *model.Season, boxes []*model.Box) error {
	now := time.Now()
	readVersion := season.Version
	season.Boxes = boxes
	season.Version = readVersion + 1
	season.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(season).
		Column("boxes", "version", "updated_at").
		WherePK().
		Where("version = ?", readVersion).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *Season) DeleteSeason(ctx context.Context, tx bun.Tx, season *model.Season) error {
	_, err := tx.NewDelete().
		Model(season).
		WherePK().
		Exec(ctx)
	return err
}

// unwound selects one row per item of every box of the owner's seasons,
// optionally narrowed to a single season.
func unwound(db bun.IDB, accountID int, season null.Int) *bun.SelectQuery {
	q := db.NewSelect().
		TableExpr("seasons AS s").
		Join("CROSS JOIN LATERAL jsonb_array_elements(s.boxes) AS b(box)").
		Join("CROSS JOIN LATERAL jsonb_array_elements(b.box -> 'items') AS i(item)").
		Where("s.account_id = ?", accountID)
	if season.Valid {
		q = q.Where("s.season_number = ?", season.Int64)
	}
	return q
}

// AggregateQualityTotals sums item quantities by box type and quality.
func (r *Season) AggregateQualityTotals(ctx context.Context, accountID int, season null.Int) ([]*model.QualityTotalRow, error) {
	return aggregateQualityTotals(ctx, r.db, accountID, season)
}

// AggregateQualityTotalsWithLatest sums item quantities by box type and
// quality over every season and over the latest one. Both are read from the
// same snapshot, so the latest season is always contained in the total.
func (r *Season) AggregateQualityTotalsWithLatest(ctx context.Context, accountID, latest int) (total, last []*model.QualityTotalRow, err error) {
	err = r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if total, err = aggregateQualityTotals(ctx, tx, accountID, null.Int{}); err != nil {
			return err
		}
		last, err = aggregateQualityTotals(ctx, tx, accountID, null.IntFrom(int64(latest)))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return total, last, nil
}

func aggregateQualityTotals(ctx context.Context, db bun.IDB, accountID int, season null.Int) ([]*model.QualityTotalRow, error) {
	var rows []*model.QualityTotalRow
	err := unwound(db, accountID, season).
		ColumnExpr("b.box ->> 'type' AS box_type").
		ColumnExpr("i.item ->> 'quality' AS quality").
		ColumnExpr("SUM((i.item ->> 'quantity')::int) AS count").
		GroupExpr("b.box ->> 'type'").
		GroupExpr("i.item ->> 'quality'").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AggregateSeasonTotals sums item quantities by box type and season number.
func (r *Season) AggregateSeasonTotals(ctx context.Context, accountID int) ([]*model.SeasonTotalRow, error) {
	var rows []*model.SeasonTotalRow
	err := unwound(r.db, accountID, null.Int{}).
		ColumnExpr("b.box ->> 'type' AS box_type").
		ColumnExpr("s.season_number").
		ColumnExpr("SUM((i.item ->> 'quantity')::int) AS count").
		GroupExpr("b.box ->> 'type'").
		GroupExpr("s.season_number").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AggregateVariantTotals sums item quantities of regular boxes by variant and quality.
func (r *Season) AggregateVariantTotals(ctx context.Context, accountID int, season null.Int) ([]*model.VariantTotalRow, error) {
	var rows []*model.VariantTotalRow
	err := unwound(r.db, accountID, season).
		ColumnExpr("b.box ->> 'box_variant' AS box_variant").
		ColumnExpr("i.item ->> 'quality' AS quality").
		ColumnExpr("SUM((i.item ->> 'quantity')::int) AS count").
		Where("b.box ->> 'type' = ?", string(model.BoxTypeRegular)).
		GroupExpr("b.box ->> 'box_variant'").
		GroupExpr("i.item ->> 'quality'").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAccountIDsWithSeasons returns every owner that has at least one season.
func (r *Season) GetAccountIDsWithSeasons(ctx context.Context) ([]int, error) {
	var ids []int
	err := r.db.NewSelect().
		Model((*model.Season)(nil)).
		ColumnExpr("DISTINCT account_id").
		Order("account_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IterateSeasons walks every stored season ordered by id in pages of
// pageSize, calling fn for each page.
func (r *Season) IterateSeasons(ctx context.Context, pageSize int, fn func(seasons []*model.Season) error) error {
	cursor := ""
	for {
		seasons, err := r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("season_id > ?", cursor).Order("season_id ASC").Limit(pageSize)
		})
		if err != nil {
			return err
		}
		if len(seasons) == 0 {
			return nil
		}
		if err := fn(seasons); err != nil {
			return err
		}
		cursor = seasons[len(seasons)-1].SeasonID
	}
}
