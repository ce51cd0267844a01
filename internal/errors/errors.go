// Package errors provides the structured error type of the eludia column model.
//
// Every error carries a category (the layer that detected it) and a code
// (the condition). errors.Is matches on both, so package sentinels such as
// model.ErrInvalidColumnDefinition match any error of that kind regardless of
// its message or details.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory names the layer that detected an error.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryBinding    ErrorCategory = "BINDING"
	ErrCategoryCatalog    ErrorCategory = "CATALOG"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Validation codes.
const (
	CodeInvalidColumnDefinition = "INVALID_COLUMN_DEFINITION"
	CodeUnresolvableDefault     = "UNRESOLVABLE_DEFAULT"
	CodeInvalidModel            = "INVALID_MODEL"
)

// Binding codes.
const (
	CodeMissingPhysicalBinding = "MISSING_PHYSICAL_BINDING"
	CodeTableNotFound          = "TABLE_NOT_FOUND"
)

// Catalog and internal codes.
const (
	CodeVersionNotFound = "VERSION_NOT_FOUND"
	CodeUnexpected      = "UNEXPECTED"
)

// ModelError is a categorized error with optional key/value details,
// e.g. the column and type it concerns.
type ModelError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error formats the error as "[CATEGORY:CODE] message (k=v ...): cause".
// Details are listed in key order.
func (e *ModelError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s:%s] %s", e.Category, e.Code, e.Message)

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s=%v", k, e.Details[k])
		}
		sb.WriteByte(')')
	}

	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is matches any *ModelError with the same category and code.
func (e *ModelError) Is(target error) bool {
	t, ok := target.(*ModelError)
	return ok && e.Category == t.Category && e.Code == t.Code
}

// WithDetails returns a copy of e with details merged over its existing ones.
func (e *ModelError) WithDetails(details map[string]interface{}) *ModelError {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	for k, v := range details {
		cp.Details[k] = v
	}
	return &cp
}

// Wrap creates a ModelError with a cause; cause may be nil.
func Wrap(category ErrorCategory, code, message string, cause error) *ModelError {
	return &ModelError{Category: category, Code: code, Message: message, Cause: cause}
}

// New creates a ModelError without a cause.
func New(category ErrorCategory, code, message string) *ModelError {
	return Wrap(category, code, message, nil)
}

func NewValidationError(code, message string) *ModelError {
	return New(ErrCategoryValidation, code, message)
}

func NewBindingError(code, message string) *ModelError {
	return New(ErrCategoryBinding, code, message)
}

func NewCatalogError(code, message string, cause error) *ModelError {
	return Wrap(ErrCategoryCatalog, code, message, cause)
}

// NewInternalError reports a failure that valid input cannot cause, such as
// a corrupt stored record.
func NewInternalError(message string, cause error) *ModelError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

// GetCategory returns the category of the first ModelError in err's chain,
// or "" if there is none.
func GetCategory(err error) ErrorCategory {
	if me := find(err); me != nil {
		return me.Category
	}
	return ""
}

// GetCode returns the code of the first ModelError in err's chain, or "".
func GetCode(err error) string {
	if me := find(err); me != nil {
		return me.Code
	}
	return ""
}

func find(err error) *ModelError {
	var me *ModelError
	if errors.As(err, &me) {
		return me
	}
	return nil
}
