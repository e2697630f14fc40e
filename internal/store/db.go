package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	sq "github.com/Masterminds/squirrel"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/migrations"
)

// DB wraps the sql.DB connection together with the driver-specific pieces
// the repositories need: the goose dialect, the squirrel placeholder format,
// and the error classificator that maps driver errors onto sentinel errors.
type DB struct {
	*sql.DB

	dialect     string
	placeholder sq.PlaceholderFormat
	classify    ErrorClassificator
	logger      *logger.Logger
}

// NewDB opens the credential database selected by cfg.DSN.
//
/// A "postgres://" (or "postgresql://") DSN opens a PostgreSQL connection via
// the pgx stdlib driver; any other value is treated as a SQLite file path,
// created on first use together with its parent directory.
func NewDB(ctx context.Context, cfg config.Storage, log *logger.Logger) (*DB, error) {
	var (
		conn *sql.DB
		err  error
		db   *DB
	)

	if isPostgresDSN(cfg.DSN) {
		conn, err = sql.Open("pgx", cfg.DSN)
		db = &DB{
			DB:          conn,
			dialect:     "postgres",
			placeholder: sq.Dollar,
			classify:    postgresClassificator{},
			logger:      log,
		}
	} else {
		if err = createLocalDBFileIfNotExists(cfg.DSN); err != nil {
			log.Err(err).Str("func", "NewDB").Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file: %w", err)
		}
		conn, err = sql.Open("sqlite3", cfg.DSN)
		db = &DB{
			DB:          conn,
			dialect:     "sqlite3",
			placeholder: sq.Question,
			classify:    sqliteClassificator{},
			logger:      log,
		}
	}
	if err != nil {
		log.Err(err).Str("func", "NewDB").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewDB").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewDB").Str("dialect", db.dialect).Msg("connected to database successfully")

	return db, nil
}

// Migrate applies the embedded schema migrations for this connection's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// builder returns a squirrel statement builder configured with this
// connection's placeholder format.
func (db *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.placeholder)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dir := filepath.Dir(dbFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating DB directory: %w", err)
		}
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}
