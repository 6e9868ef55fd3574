// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"chirp/internal/database"
	"chirp/internal/models"

	"gorm.io/gorm"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	retry database.RetryPolicy
}

// WithRetry sets the retry policy applied to read queries.
func WithRetry(p database.RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

func buildOptions(opts []Option) options {
	o := options{retry: database.DefaultRetryPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// read runs a query with the repository's retry policy.
func read[T any](ctx context.Context, o options, q func(context.Context) (T, error)) (T, error) {
	return database.Retry(ctx, o.retry, q)
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND AppError.
func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// writeErr classifies a failed write. AppErrors pass through, a unique
// violation becomes CONFLICT with conflict as its message (when conflict is
// set) and a transient failure becomes UNAVAILABLE. Writes are not retried.
func writeErr(err error, conflict string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if conflict != "" && database.IsUniqueViolation(err) {
		return models.NewConflictError(conflict)
	}
	if database.IsTransient(err) {
		return models.NewUnavailableError(err)
	}
	return err
}

// isSQLite reports whether row locking must be skipped.
func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
