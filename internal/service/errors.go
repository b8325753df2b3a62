package service

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrMalformedClaim             = errors.New("token is missing its subject claim")
	ErrUserNotFound               = errors.New("user not found")
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired reset token")
	ErrDeliveryFailure            = errors.New("could not deliver email")
	ErrUsernameTaken              = errors.New("username already registered")
	ErrEmailTaken                 = errors.New("email already registered")
	ErrValidation                 = errors.New("validation failed")
	ErrTodoNotFound               = errors.New("todo not found")
	ErrInvalidAttachment          = errors.New("invalid attachment")
	ErrAttachmentsDisabled        = errors.New("attachments are not configured")
)

const uniqueViolationCode = "23505"

// ValidationError carries per-field messages. It matches ErrValidation with
// errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fieldErr := range fieldErrs {
			if fieldErr != nil {
				fields[name] = fieldErr.Error()
			}
		}
		return &ValidationError{Fields: fields}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// uniqueViolation returns the violated constraint name for either driver.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return pqErr.Constraint, true
	}
	return "", false
}
