package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createContentSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS achievements; DROP TABLE IF EXISTS blogs; DROP TABLE IF EXISTS lessons; DROP TABLE IF EXISTS quizzes`)
			return err
		},
	)
}
