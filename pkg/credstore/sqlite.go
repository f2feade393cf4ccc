package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/harbourgate/identity-go/pkg/credstore/migrations"

	_ "modernc.org/sqlite"
)

// SQLite stores credentials in a key/value table inside a SQLite database.
// Useful for desktop tools that already carry a local database.
type SQLite struct {
	db         *sql.DB
	accessKey  string
	refreshKey string
}

// SQLiteOption customises a SQLite store.
type SQLiteOption func(*SQLite)

// WithRowKeys overrides the row keys used for the two tokens.
func WithRowKeys(accessKey, refreshKey string) SQLiteOption {
	return func(s *SQLite) {
		if accessKey != "" {
			s.accessKey = accessKey
		}
		if refreshKey != "" {
			s.refreshKey = refreshKey
		}
	}
}

// NewSQLite opens (creating if needed) the database at dsn and applies the
// embedded schema migrations.
func NewSQLite(dsn string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	s := &SQLite{
		db:         db,
		accessKey:  DefaultAccessKey,
		refreshKey: DefaultRefreshKey,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate credential database: %w", err)
	}
	return s, nil
}

// applyMigrations applies pending schema migrations from the embedded
// migration files compiled into the binary.
func (s *SQLite) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load() (Credentials, error) {
	ctx := context.Background()

	access, err := s.get(ctx, s.accessKey)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := s.get(ctx, s.refreshKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SQLite) Save(accessToken, refreshToken string) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // safe to call after commit
	}()

	const upsert = `INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := tx.ExecContext(ctx, upsert, s.accessKey, accessToken); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsert, s.refreshKey, refreshToken); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Clear() error {
	_, err := s.db.ExecContext(
		context.Background(),
		`DELETE FROM credentials WHERE key IN (?, ?)`,
		s.accessKey, s.refreshKey,
	)
	return err
}

func (s *SQLite) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
