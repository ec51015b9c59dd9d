// Package sqlite is an offline secret store kept in a local SQLite file.
// It implements store.Store and adds Put for writing new versions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/oakwood-commons/kvb/internal/store"
	"github.com/oakwood-commons/kvb/internal/store/sqlite/migrations"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// Store is a store.Store on a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}
	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutOptions are the attributes of a new version.
type PutOptions struct {
	ContentType string
	Disabled    bool
	Expires     time.Time
	NotBefore   time.Time
	Tags        map[string]string
}

// Put writes value as a new version of name, creating the secret if needed.
func (s *Store) Put(ctx context.Context, name, value string, opts PutOptions) (store.Version, error) {
	if name == "" {
		return store.Version{}, errors.New("secret name is required")
	}
	now := s.now().UTC()
	v := store.Version{
		Name:        name,
		ID:          store.NewVersionID(),
		Enabled:     !opts.Disabled,
		ContentType: opts.ContentType,
		Created:     now,
		Updated:     now,
		Expires:     opts.Expires,
		NotBefore:   opts.NotBefore,
		Tags:        opts.Tags,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Version{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var secretID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO secrets (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at
		RETURNING id`, name, now.UnixNano(), now.UnixNano()).Scan(&secretID)
	if err != nil {
		return store.Version{}, fmt.Errorf("failed to upsert secret %s: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO secret_versions
			(secret_id, version, value, content_type, enabled, created_at, updated_at, expires_at, not_before)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		secretID, v.ID, value, v.ContentType, v.Enabled, now.UnixNano(), now.UnixNano(),
		nullTime(v.Expires), nullTime(v.NotBefore))
	if err != nil {
		return store.Version{}, fmt.Errorf("failed to insert version of %s: %w", name, err)
	}
	versionRow, err := res.LastInsertId()
	if err != nil {
		return store.Version{}, fmt.Errorf("failed to read version id: %w", err)
	}
	for k, val := range opts.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO version_tags (version_id, key, value) VALUES (?, ?, ?)`,
			versionRow, k, val); err != nil {
			return store.Version{}, fmt.Errorf("failed to insert tag %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Version{}, fmt.Errorf("failed to commit version of %s: %w", name, err)
	}
	return v, nil
}

// ListSecrets returns every secret sorted by name, summarised by its newest
// version.
func (s *Store) ListSecrets(ctx context.Context) ([]store.Secret, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, v.enabled, v.content_type, s.created_at, v.updated_at
		FROM secrets s
		JOIN secret_versions v ON v.id = (
			SELECT id FROM secret_versions
			WHERE secret_id = s.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1)
		ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Secret
	for rows.Next() {
		var (
			sec              store.Secret
			created, updated int64
		)
		if err := rows.Scan(&sec.Name, &sec.Enabled, &sec.ContentType, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		sec.Created = fromNanos(created)
		sec.Updated = fromNanos(updated)
		out = append(out, sec)
	}
	return out, rows.Err()
}

// ListVersions returns the versions of name, newest first.
func (s *Store) ListVersions(ctx context.Context, name string) ([]store.Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.version, v.content_type, v.enabled, v.created_at, v.updated_at, v.expires_at, v.not_before
		FROM secret_versions v
		JOIN secrets s ON s.id = v.secret_id
		WHERE s.name = ?
		ORDER BY v.created_at DESC, v.id DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var (
		out  []store.Version
		rids []int64
	)
	for rows.Next() {
		var (
			rowID              int64
			v                  store.Version
			created, updated   int64
			expires, notBefore sql.NullInt64
		)
		if err := rows.Scan(&rowID, &v.ID, &v.ContentType, &v.Enabled, &created, &updated, &expires, &notBefore); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.Name = name
		v.Created = fromNanos(created)
		v.Updated = fromNanos(updated)
		if expires.Valid {
			v.Expires = fromNanos(expires.Int64)
		}
		if notBefore.Valid {
			v.NotBefore = fromNanos(notBefore.Int64)
		}
		out = append(out, v)
		rids = append(rids, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("secret %q: %w", name, store.ErrNotFound)
	}

	for i, rid := range rids {
		tags, err := s.tags(ctx, rid)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) tags(ctx context.Context, versionRow int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM version_tags WHERE version_id = ?`, versionRow)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out map[string]string
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// GetValue returns the value of one version.
func (s *Store) GetValue(ctx context.Context, name, version string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT v.value
		FROM secret_versions v
		JOIN secrets s ON s.id = v.secret_id
		WHERE s.name = ? AND v.version = ?`, name, version).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("secret %q version %q: %w", name, version, store.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s@%s: %w", name, version, err)
	}
	return value, nil
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
