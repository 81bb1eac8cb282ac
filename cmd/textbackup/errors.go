package main

import (
	"context"
	"errors"

	"github.com/gorewood/textbackup/internal/backup"
	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/output"
)

// exitError maps a domain error to the exit code the CLI reports.
// Errors that already carry a code pass through.
func exitError(err error) *output.ExitError {
	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case errors.Is(err, backup.ErrRunInProgress):
		return output.NewConflictErrorWithCause(err.Error(), err)
	case isUserError(err):
		return output.NewUserErrorWithCause(err.Error(), err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}

// isUserError reports errors the user can fix by changing the query,
// the note id or the configuration.
func isUserError(err error) bool {
	if errors.Is(err, collection.ErrRecordNotFound) || errors.Is(err, context.Canceled) {
		return true
	}
	var queryErr *collection.QueryError
	if errors.As(err, &queryErr) {
		return true
	}
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var nameErr *backup.NameError
	return errors.As(err, &nameErr)
}

// fail prints err through printer and returns it with its exit code.
func fail(printer *output.Printer, err error) error {
	exitErr := exitError(err)
	printer.Error(exitErr)
	return exitErr
}
