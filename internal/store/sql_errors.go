package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrorClassificator maps driver-level errors onto driver-independent
// categories so repository code can stay backend-agnostic.
type ErrorClassificator interface {
	// IsUniqueViolation reports whether err is a primary-key or unique
	// constraint violation.
	IsUniqueViolation(err error) bool
}

type sqliteClassificator struct{}

func (sqliteClassificator) IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

type postgresClassificator struct{}

func (postgresClassificator) IsUniqueViolation(err error) bool {
	var perr *pgconn.PgError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Code == pgerrcode.UniqueViolation
}
