package storage

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vigiamx/mediawatch/internal/domain"
)

// psql builds Postgres-placeholder queries for the list endpoints.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// mapWriteError translates driver errors into the domain taxonomy: a unique
// constraint hit becomes ErrConflict (skip), anything else a PersistError.
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrConflict
	}
	return &domain.PersistError{Op: op, Err: err}
}

func listWindow(limit, offset int) (uint64, uint64) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
