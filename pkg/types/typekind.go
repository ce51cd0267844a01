// Package types provides the core value types shared by the column model.
package types

import (
	"fmt"
	"strings"
)

// TypeKind is the logical type a column descriptor declares.
// The set is closed: every value other than the constants below is invalid.
type TypeKind uint8

const (
	// TypeInvalid is the zero value and never a valid column type
	TypeInvalid TypeKind = iota

	TypeBoolean
	TypeInteger
	TypeNumeric
	TypeMoney
	TypeUUID
	TypeDate
	TypeDatetime
	TypeTimestamp
	TypeString
	TypeText
	TypeBinary
	TypeBlob

	typeKindCount
)

var typeKindNames = [typeKindCount]string{
	TypeInvalid:   "INVALID",
	TypeBoolean:   "BOOLEAN",
	TypeInteger:   "INTEGER",
	TypeNumeric:   "NUMERIC",
	TypeMoney:     "MONEY",
	TypeUUID:      "UUID",
	TypeDate:      "DATE",
	TypeDatetime:  "DATETIME",
	TypeTimestamp: "TIMESTAMP",
	TypeString:    "STRING",
	TypeText:      "TEXT",
	TypeBinary:    "BINARY",
	TypeBlob:      "BLOB",
}

// AllTypeKinds returns every valid type kind in declaration order.
func AllTypeKinds() []TypeKind {
	kinds := make([]TypeKind, 0, typeKindCount-1)
	for k := TypeBoolean; k < typeKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is one of the declared type kinds.
func (k TypeKind) Valid() bool {
	return k > TypeInvalid && k < typeKindCount
}

// String returns the upper-case type name, e.g. "NUMERIC".
func (k TypeKind) String() string {
	if k >= typeKindCount {
		return fmt.Sprintf("TypeKind(%d)", uint8(k))
	}
	return typeKindNames[k]
}

// Lower returns the lower-case type name used in definition documents.
func (k TypeKind) Lower() string {
	return strings.ToLower(k.String())
}

// HasScale reports whether the type carries a decimal precision (fractional digits).
func (k TypeKind) HasScale() bool {
	return k == TypeNumeric || k == TypeMoney
}

// NeedsPhysicalLength reports whether synthesizing a value requires the
// realized length of a bound physical column.
func (k TypeKind) NeedsPhysicalLength() bool {
	switch k {
	case TypeInteger, TypeString, TypeBinary:
		return true
	default:
		return false
	}
}

// ParseTypeKind parses a type name case-insensitively.
func ParseTypeKind(s string) (TypeKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k := TypeBoolean; k < typeKindCount; k++ {
		if typeKindNames[k] == name {
			return k, nil
		}
	}
	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownTypeKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k TypeKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTypeKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TypeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
