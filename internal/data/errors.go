package data

import (
	"errors"
	"fmt"
)

// Harness error taxonomy. Structural failures propagate unmodified; stage-local
// stochastic failures are wrapped with enough context to reproduce.
var (
	// ErrInsufficientData marks a class or stratum too small to split or impute.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNonConvergence marks a chained-equations imputation that did not
	// stabilize within the bounded number of rounds.
	ErrNonConvergence = errors.New("imputation did not converge")

	// ErrConvergence marks a model optimizer that failed to converge for one
	// hyperparameter configuration.
	ErrConvergence = errors.New("optimizer did not converge")

	// ErrSchemaMismatch marks a referenced column missing from the dataset
	// schema, or a malformed schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrLeakage marks an attempt to fit on validation rows. This is a
	// programming-contract violation, not a recoverable condition.
	ErrLeakage = errors.New("train/validation leakage")
)

// NewSchemaError wraps ErrSchemaMismatch with the offending column.
func NewSchemaError(column, reason string) error {
	return fmt.Errorf("%w: column %q %s", ErrSchemaMismatch, column, reason)
}

// NewInsufficientDataError wraps ErrInsufficientData with stratum context.
func NewInsufficientDataError(stratum string, n int) error {
	return fmt.Errorf("%w: stratum %q has %d records", ErrInsufficientData, stratum, n)
}

// IsFatal reports whether err is a structural failure that must abort the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrLeakage)
}
