package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the subset of *pgxpool.Pool the migrator and seeder need.
type DB interface {
	Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migration is one embedded SQL file, versioned by its numeric name prefix.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies the embedded migrations in version order and records
// each one in the _migrations table.
type Migrator struct {
	db   DB
	fsys fs.FS
}

func NewMigrator(db DB) *Migrator {
	return &Migrator{db: db, fsys: migrationsFS}
}

func (m *Migrator) EnsureMigrationsTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMPTZ DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("create _migrations table: %w", err)
	}
	return nil
}

// LoadMigrations returns the embedded .sql files sorted by version. Files
// without a numeric prefix ("001_catalog.sql" -> 1) are skipped.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(m.fsys, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *Migrator) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan applied versions: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return 0, err
	}
	migrations, err := m.LoadMigrations()
	if err != nil {
		return 0, err
	}
	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return count, fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		count++
	}
	return count, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, mig.SQL); err != nil {
		return fmt.Errorf("execute SQL: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO _migrations (version, name) VALUES ($1, $2)",
		mig.Version, mig.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit(ctx)
}

// Seed writes cat into the reference tables when the diseases table is
// empty. It reports whether rows were written; an already populated
// database is left untouched.
func Seed(ctx context.Context, db DB, cat *Catalog) (bool, error) {
	rows, err := db.Query(ctx, `SELECT count(*) FROM diseases`)
	if err != nil {
		return false, fmt.Errorf("count diseases: %w", err)
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowTo[int])
	if err != nil {
		return false, fmt.Errorf("count diseases: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range cat.Diseases {
		if _, err := tx.Exec(ctx, `INSERT INTO diseases (disease_id, disease_name) VALUES ($1, $2)`, d.ID, d.Name); err != nil {
			return false, fmt.Errorf("seed disease %d: %w", d.ID, err)
		}
	}
	for _, s := range cat.Symptoms {
		if _, err := tx.Exec(ctx, `INSERT INTO symptoms (symptom_id, symptom_name) VALUES ($1, $2)`, s.ID, s.Name); err != nil {
			return false, fmt.Errorf("seed symptom %d: %w", s.ID, err)
		}
	}
	for _, l := range cat.Links {
		if _, err := tx.Exec(ctx, `INSERT INTO symptom_disease (disease_id, symptom_id) VALUES ($1, $2)`, l.DiseaseID, l.SymptomID); err != nil {
			return false, fmt.Errorf("seed symptom_disease %d->%d: %w", l.DiseaseID, l.SymptomID, err)
		}
	}
	for _, t := range cat.Treatments {
		if _, err := tx.Exec(ctx, `INSERT INTO treatments (disease_id, treatment_type, description) VALUES ($1, $2, $3)`, t.DiseaseID, t.Type, t.Description); err != nil {
			return false, fmt.Errorf("seed treatment for disease %d: %w", t.DiseaseID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}

// Bootstrap migrates the schema and seeds empty tables with the built-in
// catalog, so a fresh database is ready for LoadPostgres.
func Bootstrap(ctx context.Context, db DB) error {
	if _, err := NewMigrator(db).Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	cat, err := Default()
	if err != nil {
		return err
	}
	if _, err := Seed(ctx, db, cat); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
