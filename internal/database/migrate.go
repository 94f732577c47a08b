package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// NewMigrator opens a migrate instance for the SQL files under dir.
// The database URL is rewritten to the pgx5:// scheme the driver registers.
func NewMigrator(dir, databaseURL string) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+dir, pgxScheme(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations. No pending change is not an error.
func MigrateUp(dir, databaseURL string) error {
	m, err := NewMigrator(dir, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func pgxScheme(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
