package scoremigrations

import (
	"context"
	"fmt"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating best_scores table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS best_scores (
					player_id VARCHAR(50) NOT NULL,
					game_id VARCHAR(50) NOT NULL,
					score BIGINT NOT NULL CHECK (score >= 0),
					flagged BOOLEAN NOT NULL DEFAULT FALSE,
					flag_reason TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (player_id, game_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create best_scores table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_best_scores_ranking
				ON best_scores (game_id, score DESC, updated_at ASC);
			`); err != nil {
				return fmt.Errorf("failed to create ranking index: %w", err)
			}

			fmt.Println("best_scores table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping best_scores table...")

		if _, err := db.NewDropTable().Model((*scoredb.BestScore)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("best_scores table dropped successfully!")
		return nil
	})
}
