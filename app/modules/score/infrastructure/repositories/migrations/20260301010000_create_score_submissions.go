package scoremigrations

import (
	"context"
	"fmt"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating score_submissions table...")

		if _, err := db.NewCreateTable().Model((*scoredb.SubmissionEvent)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create score_submissions table: %w", err)
		}

		_, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_score_submissions_game_created ON score_submissions (game_id, created_at DESC)").Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_score_submissions_player_created ON score_submissions (player_id, created_at DESC)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("score_submissions table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping score_submissions table...")

		if _, err := db.NewDropTable().Model((*scoredb.SubmissionEvent)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("score_submissions table dropped successfully!")
		return nil
	})
}
