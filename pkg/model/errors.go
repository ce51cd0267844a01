package model

import (
	merrors "github.com/do-/ru-eludia-base/internal/errors"
)

// Sentinels for errors.Is. Returned errors carry the triggering condition in
// their message and match these by category and code.
var (
	// ErrInvalidColumnDefinition is returned by constructors for malformed arguments
	ErrInvalidColumnDefinition = merrors.NewValidationError(merrors.CodeInvalidColumnDefinition, "invalid column definition")

	// ErrMissingPhysicalBinding is returned by generators that need a realized length
	ErrMissingPhysicalBinding = merrors.NewBindingError(merrors.CodeMissingPhysicalBinding, "missing physical binding")

	// ErrInvalidModel is returned for malformed tables and model files
	ErrInvalidModel = merrors.NewValidationError(merrors.CodeInvalidModel, "invalid model")
)
