// Package model defines logical column and table descriptors.
//
// A Col captures a column's declared type, size, default, nullability and
// documentation. It serializes itself into schema documents, holds a
// reference to its realized physical counterpart and synthesizes random
// values that conform to its own type and size for test-data seeding.
//
// Descriptors are configured by a single goroutine and are read-only after
// that; generators may then be invoked concurrently.
package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/model/def"
	"github.com/do-/ru-eludia-base/pkg/types"
)

// PhysicalCol is the realized storage form of a column.
type PhysicalCol interface {
	// Length returns the realized column size (characters, digits or bytes)
	Length() int
}

// Execer is the database handle passed through to lifecycle hooks.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Hook is a deferred action run by schema-mutation code at a lifecycle point.
type Hook func(ctx context.Context, db Execer) error

// Shape is the identity of a column. It is copied by value on clone.
type Shape struct {
	Name      string
	Remark    string
	Type      types.TypeKind
	Def       def.Def
	Length    int
	Precision int
	Nullable  bool
}

// Bounds is descriptive range metadata; the generator does not enforce it.
type Bounds struct {
	MinLength int
	Min       *string
	Max       *string
}

// attachment holds references owned elsewhere. A clone shares the referenced objects.
type attachment struct {
	table            *Table
	physical         PhysicalCol
	afterAdd         Hook
	beforeSetNotNull Hook
}

// Col is a logical column descriptor.
type Col struct {
	shape  Shape
	bounds Bounds
	attach attachment
}

// New creates a column declaring only its type.
func New(name string, kind types.TypeKind, remark string) (*Col, error) {
	return newCol(name, kind, remark, 0, 0, nil, false)
}

// NewWithDefault creates a column with a default token and no size.
func NewWithDefault(name string, kind types.TypeKind, token interface{}, remark string) (*Col, error) {
	return newCol(name, kind, remark, 0, 0, token, true)
}

// NewSized creates a column with a length and no default.
func NewSized(name string, kind types.TypeKind, length int, remark string) (*Col, error) {
	return newCol(name, kind, remark, length, 0, nil, false)
}

// NewSizedWithDefault creates a column with a length and a default token.
func NewSizedWithDefault(name string, kind types.TypeKind, length int, token interface{}, remark string) (*Col, error) {
	return newCol(name, kind, remark, length, 0, token, true)
}

// NewDecimal creates a column with a length and a precision (fractional digits).
func NewDecimal(name string, kind types.TypeKind, length, precision int, remark string) (*Col, error) {
	return newCol(name, kind, remark, length, precision, nil, false)
}

// NewDecimalWithDefault creates a column with length, precision and a default token.
func NewDecimalWithDefault(name string, kind types.TypeKind, length, precision int, token interface{}, remark string) (*Col, error) {
	return newCol(name, kind, remark, length, precision, token, true)
}

// MustNew panics if a constructor failed. It is meant for package-level model declarations.
func MustNew(c *Col, err error) *Col {
	if err != nil {
		panic(err)
	}
	return c
}

func newCol(name string, kind types.TypeKind, remark string, length, precision int, token interface{}, hasToken bool) (*Col, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	switch {
	case name == "":
		return nil, invalidDefinition(name, "name is required", nil)
	case !kind.Valid():
		return nil, invalidDefinition(name, fmt.Sprintf("invalid type %v", kind), types.ErrUnknownTypeKind)
	case length < 0:
		return nil, invalidDefinition(name, fmt.Sprintf("negative length %d", length), nil)
	case precision < 0:
		return nil, invalidDefinition(name, fmt.Sprintf("negative precision %d", precision), nil)
	case precision > 0 && length == 0:
		return nil, invalidDefinition(name, "precision requires a length", nil)
	case precision > length:
		return nil, invalidDefinition(name, fmt.Sprintf("precision %d exceeds length %d", precision, length), nil)
	}

	c := &Col{shape: Shape{
		Name:      name,
		Remark:    remark,
		Type:      kind,
		Length:    length,
		Precision: precision,
	}}

	if hasToken {
		d, err := def.ValueOf(token)
		if err != nil {
			return nil, invalidDefinition(name, "cannot resolve default", err)
		}
		c.SetDef(d)
	}

	return c, nil
}

func invalidDefinition(name, message string, cause error) error {
	return merrors.Wrap(merrors.ErrCategoryValidation, merrors.CodeInvalidColumnDefinition, message, cause).
		WithDetails(map[string]interface{}{"column": name})
}

// Name returns the lower-case column name.
func (c *Col) Name() string { return c.shape.Name }

// Remark returns the column documentation.
func (c *Col) Remark() string { return c.shape.Remark }

// Type returns the declared type kind.
func (c *Col) Type() types.TypeKind { return c.shape.Type }

// Def returns the resolved default, or nil if the column has none.
func (c *Col) Def() def.Def { return c.shape.Def }

// Length returns the declared length; 0 means unspecified.
func (c *Col) Length() int { return c.shape.Length }

// Precision returns the declared number of fractional digits.
func (c *Col) Precision() int { return c.shape.Precision }

// Nullable reports whether the column accepts NULL.
func (c *Col) Nullable() bool { return c.shape.Nullable }

// Shape returns a copy of the column identity.
func (c *Col) Shape() Shape { return c.shape }

// MinLength returns the minimum length bound; 0 means unbounded.
func (c *Col) MinLength() int { return c.bounds.MinLength }

// Min returns the lower range bound, if set.
func (c *Col) Min() (string, bool) { return deref(c.bounds.Min) }

// Max returns the upper range bound, if set.
func (c *Col) Max() (string, bool) { return deref(c.bounds.Max) }

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// Table returns the owning table, if the column was added to one.
func (c *Col) Table() *Table { return c.attach.table }

// Physical returns the bound physical column, or nil.
func (c *Col) Physical() PhysicalCol { return c.attach.physical }

// SetDef replaces the default. The Null marker clears the default and makes
// the column nullable; nil clears the default only.
func (c *Col) SetDef(d def.Def) {
	if d != nil && def.IsNull(d) {
		c.shape.Def = nil
		c.shape.Nullable = true
		return
	}
	c.shape.Def = d
}

// SetNullable sets the nullability flag.
func (c *Col) SetNullable(nullable bool) { c.shape.Nullable = nullable }

// SetRemark replaces the column documentation.
func (c *Col) SetRemark(remark string) { c.shape.Remark = remark }

// SetLength replaces the declared length. Negative values are stored as 0.
func (c *Col) SetLength(length int) { c.shape.Length = max(length, 0) }

// SetPrecision replaces the declared precision. Negative values are stored as 0.
func (c *Col) SetPrecision(precision int) { c.shape.Precision = max(precision, 0) }

// SetRange stores both range bounds verbatim; min is not checked against max.
func (c *Col) SetRange(min, max string) {
	c.SetMin(min)
	c.SetMax(max)
}

// SetMin stores the lower range bound.
func (c *Col) SetMin(min string) { c.bounds.Min = &min }

// SetMax stores the upper range bound.
func (c *Col) SetMax(max string) { c.bounds.Max = &max }

// SetFixedLength pins the minimum length to the declared length, or resets it to 0.
// With no declared length the minimum stays 0.
func (c *Col) SetFixedLength(fixed bool) {
	if fixed {
		c.bounds.MinLength = c.shape.Length
		return
	}
	c.bounds.MinLength = 0
}

// SetMinLength sets the minimum length. It is not checked against the declared length.
func (c *Col) SetMinLength(n int) { c.bounds.MinLength = max(n, 0) }

// SetTable sets the back-reference to the owning table.
func (c *Col) SetTable(t *Table) { c.attach.table = t }

// SetPhysical attaches the realized physical column.
func (c *Col) SetPhysical(p PhysicalCol) { c.attach.physical = p }

// OnAfterAdd registers the hook run after the column is added to a database table.
// A later registration replaces the earlier one.
func (c *Col) OnAfterAdd(h Hook) { c.attach.afterAdd = h }

// OnBeforeSetNotNull registers the hook run before a NOT NULL constraint is applied.
// A later registration replaces the earlier one.
func (c *Col) OnBeforeSetNotNull(h Hook) { c.attach.beforeSetNotNull = h }

// RunAfterAdd invokes the after-add hook, returning its error unchanged.
func (c *Col) RunAfterAdd(ctx context.Context, db Execer) error {
	if c.attach.afterAdd == nil {
		return nil
	}
	return c.attach.afterAdd(ctx, db)
}

// RunBeforeSetNotNull invokes the before-set-not-null hook, returning its error unchanged.
func (c *Col) RunBeforeSetNotNull(ctx context.Context, db Execer) error {
	if c.attach.beforeSetNotNull == nil {
		return nil
	}
	return c.attach.beforeSetNotNull(ctx, db)
}

// Clone returns an independent copy of the column. Shape and bounds are
// copied; the table, physical binding and hooks are shared with c.
func (c *Col) Clone() *Col {
	return &Col{
		shape:  c.shape,
		bounds: c.bounds,
		attach: c.attach,
	}
}

// CloneAs returns a clone renamed to name (lower-cased).
func (c *Col) CloneAs(name string) *Col {
	clone := c.Clone()
	if n := strings.ToLower(strings.TrimSpace(name)); n != "" {
		clone.shape.Name = n
	}
	return clone
}
