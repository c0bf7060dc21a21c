// internal/themes/sqlite.go
//
// SQLite-backed theme catalog.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Seeding an empty database from a parsed catalog and reading it back.

package themes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchup/assets"
	"github.com/robalobadob/matchup/internal/game"
)

// Store is a theme catalog kept in SQLite.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at dsn.
// ":memory:" opens a private in-memory database.
func OpenSQLite(dsn string) (*Store, error) {
	conn := dsn
	if dsn != ":memory:" {
		// Ensure directory exists for ./data/themes.db, etc.
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		conn = dsn + "?_busy_timeout=5000&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", conn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Migrate applies the embedded migrations in lexical order, skipping any
// already recorded in _migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return migrate(ctx, s.db, assets.Migrations())
}

func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Count returns the number of stored themes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM themes`).Scan(&n)
	return n, err
}

// Seed writes every theme of c. Existing themes are left untouched.
func (s *Store) Seed(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range c.ListThemes() {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO themes(name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("insert theme %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		items, _ := c.ItemsForTheme(name)
		for i, it := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO theme_items(theme, item, position) VALUES (?, ?, ?)`,
				name, it, i,
			); err != nil {
				return fmt.Errorf("insert item %q/%q: %w", name, it, err)
			}
		}
	}
	return tx.Commit()
}

// Catalog reads every stored theme back into a Catalog.
func (s *Store) Catalog(ctx context.Context) (*Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT theme, item
        FROM theme_items
        ORDER BY theme ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := map[string][]string{}
	for rows.Next() {
		var theme, item string
		if err := rows.Scan(&theme, &item); err != nil {
			return nil, err
		}
		m[theme] = append(m[theme], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c, err := New(m)
	if err != nil {
		return nil, err
	}
	if c.Len() < game.RowsPerLevel {
		return nil, fmt.Errorf("themes: database has %d themes: %w", c.Len(), game.ErrNotEnoughThemes)
	}
	return c, nil
}

// Load resolves the catalog the way the binaries configure it: from the
// database when dsn is set (seeding it on first use), else from file, else
// from the embedded default.
func Load(ctx context.Context, file, dsn string) (*Catalog, error) {
	seed, err := loadText(file)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return seed, nil
	}

	st, err := OpenSQLite(dsn)
	if err != nil {
		return nil, fmt.Errorf("open themes db: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	n, err := st.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := st.Seed(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed themes db: %w", err)
		}
		log.Info().Int("themes", seed.Len()).Str("db", dsn).Msg("themes db seeded")
	}
	return st.Catalog(ctx)
}

func loadText(file string) (*Catalog, error) {
	if strings.TrimSpace(file) != "" {
		return LoadFile(file)
	}
	return Default()
}
