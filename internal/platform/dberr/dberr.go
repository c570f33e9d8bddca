// Copyright (c) 2026 RuneBingo. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
)

// SQLSTATE codes classified by [Wrap].
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action names the failed operation and is kept in the cause chain for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("error.resource_not_found")
	}

	// 2. Constraint violations raised by the database itself
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case uniqueViolation:
			conflict := apperr.Conflict("error.duplicate")
			conflict.Cause = fmt.Errorf("%s: %w", action, err)
			return conflict
		case foreignKeyViolation:
			notFound := apperr.NotFound("error.resource_not_found")
			notFound.Cause = fmt.Errorf("%s: %w", action, err)
			return notFound
		case checkViolation:
			badRequest := apperr.BadRequest("error.constraint_violation")
			badRequest.Cause = fmt.Errorf("%s: %w", action, err)
			return badRequest
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
