package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	pgLockNotAvailable   = "55P03"
	pgForeignKeyViolated = "23503"
)

// mapPgError translates driver errors into repo sentinels; other errors pass through.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicatedValueUnique, pgErr.ConstraintName)
	case pgLockNotAvailable:
		return fmt.Errorf("%w: %s", ErrLockTimeout, pgErr.Message)
	case pgForeignKeyViolated:
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
	}
	return err
}
