package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_content.sql
var createContentSQL string

//go:embed 0002_create_user_progress.sql
var createUserProgressSQL string

//go:embed 0003_create_comments.sql
var createCommentsSQL string

var Migrations = migrate.NewMigrations()
