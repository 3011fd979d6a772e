package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/noah-isme/cronograma-api/migrations"
)

var gooseRunFunc = goose.Run // mockable

// Migrate runs a goose command (up, down, status, ...) against the embedded migrations.
func Migrate(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseRunFunc(command, db, ".", args...); err != nil {
		return fmt.Errorf("run migrations %s: %w", command, err)
	}
	return nil
}
