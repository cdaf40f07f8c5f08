package database

import (
	"errors"
	"strings"

	"github.com/grid-vault/gridvault/internal/tabular"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("database: not found")

// wrapWriteError classifies a failed write. Constraint violations become an
// IntegrityViolation carrying the model and offending record context so the
// caller can surface them; anything else passes through unchanged.
func wrapWriteError(err error, model, context string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		return &tabular.Error{
			Kind:   tabular.IntegrityViolation,
			Detail: model + ": " + context,
			Err:    err,
		}
	}
	return err
}
