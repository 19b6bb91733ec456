package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the stores react to.
const (
	UniqueViolation     = pq.ErrorCode("23505")
	ForeignKeyViolation = pq.ErrorCode("23503")
)

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, UniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, ForeignKeyViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
