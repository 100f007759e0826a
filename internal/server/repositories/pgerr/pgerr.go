// Package pgerr maps PostgreSQL driver errors onto the common sentinels.
package pgerr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	invalidText         = "22P02"
)

// Map translates err: no rows and foreign key violations become
// common.ErrorNotFound, unique violations become common.ErrorAlreadyExists.
// A key that is not a valid uuid (22P02) cannot match any row, so it is
// common.ErrorNotFound as well. Anything else is wrapped as a db error.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", common.ErrorNotFound, pgErr.ConstraintName)
		case invalidText:
			return fmt.Errorf("%w: %s", common.ErrorNotFound, pgErr.Message)
		}
	}

	return fmt.Errorf("db error: %w", err)
}
