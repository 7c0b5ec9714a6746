package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/subordinate/migrations"
)

// MigrationStatus is the state of one schema migration.
type MigrationStatus struct {
	ID          string
	Checksum    string
	Applied     bool
	AppliedAt   *time.Time
	ExecutionMs int64
}

// migration is one parsed migration file.
type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// migrationsFor returns the embedded migrations matching the driver's
// dialect, ordered by file name.
func migrationsFor(db *sqlx.DB) ([]migration, error) {
	var (
		fsys fs.FS
		dir  string
	)
	switch db.DriverName() {
	case "sqlite3":
		fsys, dir = migrations.Sqlite, "sqlite"
	case "postgres":
		fsys, dir = migrations.Postgres, "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.DriverName())
	}
	return parseMigrationFiles(fsys, dir)
}

// MigrateUp applies every pending migration in order. Applied migrations
// whose embedded file changed since are refused.
func MigrateUp(db *sqlx.DB) error {
	ms, err := migrationsFor(db)
	if err != nil {
		return err
	}
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	if err := validateChecksums(db, ms); err != nil {
		return fmt.Errorf("migration checksum validation failed: %w", err)
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}

	for _, m := range ms {
		if _, ok := applied[m.ID]; ok {
			continue
		}
		if err := runMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

// runMigration executes and records one migration in a single transaction.
func runMigration(db *sqlx.DB, m migration) error {
	start := time.Now()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
	}
	if err := applyMigration(tx, m); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
	}
	if err := recordMigration(tx, m, time.Since(start)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
	}
	return nil
}

// MigrateStatus lists every embedded migration with its applied state.
func MigrateStatus(db *sqlx.DB) ([]MigrationStatus, error) {
	ms, err := migrationsFor(db)
	if err != nil {
		return nil, err
	}
	if err := createMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(ms))
	for _, m := range ms {
		if s, ok := applied[m.ID]; ok {
			statuses = append(statuses, s)
			continue
		}
		statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
	}
	return statuses, nil
}

func parseMigrationFiles(fsys fs.FS, dir string) ([]migration, error) {
	var ms []migration

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		sum := sha256.Sum256(content)
		ms = append(ms, migration{
			ID:       path.Base(p),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}

	sort.Slice(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
	return ms, nil
}

// createMigrationsTable creates the bookkeeping table. SQLite keeps
// applied_at as RFC3339 text.
func createMigrationsTable(db *sqlx.DB) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
			execution_ms INTEGER NOT NULL
		)`
	if db.DriverName() == "sqlite3" {
		stmt = `
			CREATE TABLE IF NOT EXISTS migrations (
				migration_id TEXT PRIMARY KEY,
				checksum TEXT NOT NULL,
				applied_at TIMESTAMP NOT NULL,
				execution_ms INTEGER NOT NULL,
				CHECK (applied_at LIKE '____-__-__T__:__:__Z')
			)`
	}
	_, err := db.Exec(stmt)
	return err
}

func appliedMigrations(db *sqlx.DB) (map[string]MigrationStatus, error) {
	var rows []struct {
		ID          string    `db:"migration_id"`
		Checksum    string    `db:"checksum"`
		AppliedAt   time.Time `db:"applied_at"`
		ExecutionMs int64     `db:"execution_ms"`
	}
	err := db.Select(&rows, "SELECT migration_id, checksum, applied_at, execution_ms FROM migrations")
	if err != nil {
		return nil, err
	}

	applied := make(map[string]MigrationStatus, len(rows))
	for _, r := range rows {
		at := r.AppliedAt.UTC()
		applied[r.ID] = MigrationStatus{
			ID:          r.ID,
			Checksum:    r.Checksum,
			Applied:     true,
			AppliedAt:   &at,
			ExecutionMs: r.ExecutionMs,
		}
	}
	return applied, nil
}

func validateChecksums(db *sqlx.DB, ms []migration) error {
	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	embedded := make(map[string]string, len(ms))
	for _, m := range ms {
		embedded[m.ID] = m.Checksum
	}

	for id, s := range applied {
		want, ok := embedded[id]
		if !ok {
			return fmt.Errorf("migration %s exists in database but not in embedded files", id)
		}
		if s.Checksum != want {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", id, want, s.Checksum)
		}
	}
	return nil
}

// applyMigration runs statements one at a time; lib/pq rejects multiple
// statements in one Exec.
func applyMigration(tx *sqlx.Tx, m migration) error {
	for _, stmt := range strings.Split(m.SQL, ";") {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

// stripComments drops full-line -- comments and surrounding whitespace.
func stripComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func recordMigration(tx *sqlx.Tx, m migration, took time.Duration) error {
	var appliedAt any = time.Now().UTC()
	if tx.DriverName() == "sqlite3" {
		appliedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := tx.Exec(
		tx.Rebind("INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)"),
		m.ID, m.Checksum, appliedAt, took.Milliseconds(),
	)
	return err
}
