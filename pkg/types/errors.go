package types

import "errors"

// TypeKind-related errors
var (
	// ErrUnknownTypeKind is returned when a type name or ordinal matches no declared TypeKind
	ErrUnknownTypeKind = errors.New("unknown column type")
)
