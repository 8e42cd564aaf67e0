package common

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/luanbartole/powerblog/migrations"
)

// Migrate brings the schema up to date using the embedded migrations of the
// database driver. The migrate instance is not closed because that would
// close db as well.
func Migrate(db *DB) error {
	src, err := iofs.New(migrations.FS, db.Driver())
	if err != nil {
		return fmt.Errorf("could not load migrations: %w", err)
	}

	var driver database.Driver
	switch db.Driver() {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB.DB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", db.Driver())
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Driver(), driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}
