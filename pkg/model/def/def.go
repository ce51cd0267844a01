// Package def resolves symbolic column defaults.
//
// A default is either a concrete value (Str, Num, Bool), a server-side
// expression (Now, NewUUID) or the explicit Null marker. Every Def is an
// immutable value, so copying a Def copies the default.
package def

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
)

// ErrUnresolvable matches every error returned for a token that is not a known default form.
var ErrUnresolvable = merrors.NewValidationError(merrors.CodeUnresolvableDefault, "unresolvable default")

// Def is a resolved column default. Only the types of this package implement it.
type Def interface {
	// String returns the textual form carried into schema documents
	String() string

	isDef()
}

// Str is a literal string default.
type Str string

func (s Str) String() string { return string(s) }
func (Str) isDef() {}

// Num is a numeric default kept in canonical decimal text.
type Num string

func (n Num) String() string { return string(n) }
func (Num) isDef() {}

// Decimal returns the numeric default as a decimal.
func (n Num) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(n))
}

// Bool is a boolean default.
type Bool bool

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Bool) isDef() {}

type expr string

func (e expr) String() string { return string(e) }
func (expr) isDef() {}

type nullMarker struct{}

func (nullMarker) String() string { return "NULL" }
func (nullMarker) isDef() {}

var (
	// Null marks a column whose declared default is NULL; it is never kept as a default.
	Null Def = nullMarker{}

	// Now is the current-timestamp default.
	Now Def = expr("NOW()")

	// NewUUID is the freshly-generated-identifier default.
	NewUUID Def = expr("NEWID()")
)

// IsNull reports whether d is the Null marker.
func IsNull(d Def) bool {
	_, ok := d.(nullMarker)
	return ok
}

// ValueOf resolves a Go value into a Def. A nil token resolves to Null.
func ValueOf(token interface{}) (Def, error) {
	switch v := token.(type) {
	case nil:
		return Null, nil
	case Def:
		return v, nil
	case string:
		return Str(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Num(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return Num(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return Num(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return Num(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return Num(strconv.FormatInt(v, 10)), nil
	case uint:
		return Num(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return Num(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return Num(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return Num(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return Num(strconv.FormatUint(v, 10)), nil
	case float32:
		return numFromFloat(float64(v))
	case float64:
		return numFromFloat(v)
	case decimal.Decimal:
		return Num(v.String()), nil
	default:
		return nil, unresolvable(fmt.Sprintf("unsupported default token of type %T", token))
	}
}

func numFromFloat(f float64) (Def, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, unresolvable(fmt.Sprintf("non-finite default %v", f))
	}
	return Num(decimal.NewFromFloat(f).String()), nil
}

func unresolvable(message string) error {
	return merrors.NewValidationError(merrors.CodeUnresolvableDefault, message)
}

// Parse resolves default text as written in model files:
// NULL, NOW()/CURRENT_TIMESTAMP, NEWID()/UUID(), true/false, numbers,
// 'quoted' or bare strings.
func Parse(s string) Def {
	trimmed := strings.TrimSpace(s)

	switch strings.ToUpper(trimmed) {
	case "NULL":
		return Null
	case "NOW()", "NOW", "CURRENT_TIMESTAMP":
		return Now
	case "NEWID()", "UUID()", "GEN_RANDOM_UUID()":
		return NewUUID
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}

	if len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'' {
		return Str(strings.ReplaceAll(trimmed[1:len(trimmed)-1], "''", "'"))
	}

	if d, err := decimal.NewFromString(trimmed); err == nil && trimmed != "" {
		return Num(d.String())
	}

	return Str(s)
}
