package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/color-game/consolidation/datastore"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB, dbtype string) error {
	slog.Info("starting database migrations")

	// Create migrations tracking table if it doesn't exist
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	appliedMigrations, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	migrations, err := readMigrationFiles(migrationFiles)
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, migration := range migrations {
		if appliedMigrations[migration.Version] {
			slog.Debug("migration already applied, skipping", "version", migration.Version, "name", migration.Name)
			continue
		}

		slog.Info("applying migration", "version", migration.Version, "name", migration.Name)
		if err := applyMigration(db, dbtype, migration); err != nil {
			return fmt.Errorf("failed to apply migration %03d_%s: %w", migration.Version, migration.Name, err)
		}
	}

	slog.Info("all migrations completed", "count", len(migrations))
	return nil
}

// createMigrationsTable creates the schema_migrations table
func createMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`

	_, err := db.Exec(query)
	return err
}

// getAppliedMigrations returns a map of applied migration versions
func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	query := `SELECT version FROM schema_migrations ORDER BY version`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// readMigrationFiles reads every sql/NNN_name.sql file, sorted by version.
func readMigrationFiles(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, file := range files {
		base := path.Base(file)

		// e.g. "001_create_runs.sql"
		var version int
		var name string
		if _, err := fmt.Sscanf(base, "%d_%s", &version, &name); err != nil {
			slog.Warn("skipping migration file with invalid name", "file", base)
			continue
		}
		name = strings.TrimSuffix(name, ".sql")
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %03d used by both %s and %s", version, prev, base)
		}
		seen[version] = base

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", base, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// applyMigration executes a migration and records it in schema_migrations
func applyMigration(db *sql.DB, dbtype string, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return err
	}

	recordQuery := datastore.Rebind(dbtype, `
		INSERT INTO schema_migrations (version, name, applied_at)
		VALUES ($1, $2, $3)`)

	if _, err := tx.Exec(recordQuery, migration.Version, migration.Name, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}
