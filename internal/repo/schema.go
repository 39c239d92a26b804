package repo

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"exusiai.dev/boxstats/internal/model"
)

type Schema struct {
	db *bun.DB
}

func NewSchema(db *bun.DB) *Schema {
	return &Schema{db: db}
}

// Create creates the tables and indexes if they do not exist yet.
func (r *Schema) Create(ctx context.Context) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range []any{(*model.Account)(nil), (*model.Season)(nil)} {
			if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		if _, err := tx.NewCreateIndex().
			Model((*model.Season)(nil)).
			Index("seasons_account_id_season_number_idx").
			Unique().
			IfNotExists().
			Column("account_id", "season_number").
			Exec(ctx); err != nil {
			return err
		}

		log.Info().Str("evt.name", "repo.schema.created").Msg("schema ensured")
		return nil
	})
}
