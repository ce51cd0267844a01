package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/do-/ru-eludia-base/pkg/model/def"
	"github.com/do-/ru-eludia-base/pkg/types"
)

type fixedLength int

func (f fixedLength) Length() int { return int(f) }

func TestNew_RemarkOnly(t *testing.T) {
	c, err := New("Is_Active", types.TypeBoolean, "active flag")
	require.NoError(t, err)

	assert.Equal(t, "is_active", c.Name())
	assert.Equal(t, types.TypeBoolean, c.Type())
	assert.Equal(t, "active flag", c.Remark())
	assert.Zero(t, c.Length())
	assert.Zero(t, c.Precision())
	assert.Nil(t, c.Def())
	assert.False(t, c.Nullable())
}

func TestNewSized_StringLabel(t *testing.T) {
	c, err := NewSized("label", types.TypeString, 10, "a label")
	require.NoError(t, err)

	assert.Equal(t, 10, c.Length())
	assert.Zero(t, c.Precision())
	assert.Nil(t, c.Def())
	assert.False(t, c.Nullable())
	assert.Equal(t, "a label", c.Remark())
}

func TestNewDecimalWithDefault_NullMarker(t *testing.T) {
	c, err := NewDecimalWithDefault("amount", types.TypeNumeric, 5, 2, def.Null, "amount")
	require.NoError(t, err)

	assert.Equal(t, 5, c.Length())
	assert.Equal(t, 2, c.Precision())
	assert.True(t, c.Nullable())
	assert.Nil(t, c.Def())
}

func TestNewWithDefault(t *testing.T) {
	c, err := NewWithDefault("created", types.TypeTimestamp, def.Now, "creation time")
	require.NoError(t, err)
	assert.Equal(t, def.Now, c.Def())
	assert.False(t, c.Nullable())

	c, err = NewWithDefault("note", types.TypeText, nil, "nil token is NULL")
	require.NoError(t, err)
	assert.Nil(t, c.Def())
	assert.True(t, c.Nullable())
}

func TestNewSizedWithDefault(t *testing.T) {
	c, err := NewSizedWithDefault("qty", types.TypeInteger, 10, 0, "quantity")
	require.NoError(t, err)

	assert.Equal(t, 10, c.Length())
	assert.Equal(t, def.Num("0"), c.Def())
	assert.Zero(t, c.Precision())
}

func TestNewDecimal(t *testing.T) {
	c, err := NewDecimal("price", types.TypeMoney, 15, 2, "price")
	require.NoError(t, err)
	assert.Equal(t, 15, c.Length())
	assert.Equal(t, 2, c.Precision())
	assert.Nil(t, c.Def())
}

func TestConstruction_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Col, error)
	}{
		{"empty name", func() (*Col, error) { return New("  ", types.TypeString, "x") }},
		{"invalid kind", func() (*Col, error) { return New("a", types.TypeInvalid, "x") }},
		{"out of range kind", func() (*Col, error) { return New("a", types.TypeKind(99), "x") }},
		{"negative length", func() (*Col, error) { return NewSized("a", types.TypeString, -1, "x") }},
		{"negative precision", func() (*Col, error) { return NewDecimal("a", types.TypeNumeric, 5, -1, "x") }},
		{"precision without length", func() (*Col, error) { return NewDecimal("a", types.TypeNumeric, 0, 2, "x") }},
		{"precision over length", func() (*Col, error) { return NewDecimal("a", types.TypeNumeric, 2, 3, "x") }},
		{"unresolvable default", func() (*Col, error) {
			return NewSizedWithDefault("a", types.TypeString, 5, struct{}{}, "x")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.build()
			require.Error(t, err)
			assert.Nil(t, c, "no partially initialized column may be returned")
			assert.True(t, errors.Is(err, ErrInvalidColumnDefinition), "got %v", err)
		})
	}
}

func TestConstruction_UnresolvableDefaultKeepsCause(t *testing.T) {
	_, err := NewWithDefault("a", types.TypeString, []int{1}, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidColumnDefinition))
	assert.True(t, errors.Is(err, def.ErrUnresolvable))
}

func TestConstruction_StringerTokensRejected(t *testing.T) {
	tokens := []interface{}{
		time.Duration(5),
		(*decimal.Decimal)(nil),
	}

	for _, token := range tokens {
		c, err := NewWithDefault("x", types.TypeNumeric, token, "r")
		require.Error(t, err, "token %#v", token)
		assert.Nil(t, c)
		assert.True(t, errors.Is(err, ErrInvalidColumnDefinition))
		assert.True(t, errors.Is(err, def.ErrUnresolvable))
	}
}

func TestConstruction_DecimalDefault(t *testing.T) {
	c, err := NewDecimalWithDefault("x", types.TypeNumeric, 5, 2, decimal.RequireFromString("1.50"), "r")
	require.NoError(t, err)
	assert.Equal(t, def.Num("1.5"), c.Def())
	assert.Contains(t, c.String(), `"def":"1.5"`)
}

func TestConstruction_Deterministic(t *testing.T) {
	a, err := NewDecimalWithDefault("x", types.TypeNumeric, 8, 3, 1.25, "r")
	require.NoError(t, err)
	b, err := NewDecimalWithDefault("x", types.TypeNumeric, 8, 3, 1.25, "r")
	require.NoError(t, err)

	assert.Equal(t, a.Shape(), b.Shape())
}

func TestSetDef(t *testing.T) {
	c := MustNew(New("a", types.TypeString, "x"))

	c.SetDef(def.Str("v"))
	assert.Equal(t, def.Str("v"), c.Def())
	assert.False(t, c.Nullable())

	c.SetDef(def.Null)
	assert.Nil(t, c.Def())
	assert.True(t, c.Nullable())

	c.SetDef(def.Str("w"))
	c.SetDef(nil)
	assert.Nil(t, c.Def())
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew(New("", types.TypeString, "x")) })
}

func TestSetRange(t *testing.T) {
	c := MustNew(NewSized("n", types.TypeInteger, 3, "x"))
	c.SetRange("10", "1")

	min, ok := c.Min()
	assert.True(t, ok)
	assert.Equal(t, "10", min)
	max, ok := c.Max()
	assert.True(t, ok)
	assert.Equal(t, "1", max, "bounds are stored without ordering checks")
}

func TestSetFixedLength(t *testing.T) {
	c := MustNew(NewSized("code", types.TypeString, 6, "x"))

	c.SetFixedLength(true)
	assert.Equal(t, 6, c.MinLength())

	c.SetFixedLength(false)
	assert.Zero(t, c.MinLength())

	unbounded := MustNew(New("body", types.TypeText, "x"))
	unbounded.SetFixedLength(true)
	assert.Zero(t, unbounded.MinLength(), "fixed length with no declared length stays 0")
}

func TestSetMinLength(t *testing.T) {
	c := MustNew(NewSized("code", types.TypeString, 6, "x"))
	c.SetMinLength(20)
	assert.Equal(t, 20, c.MinLength(), "no bound check against length")

	c.SetMinLength(-5)
	assert.Zero(t, c.MinLength())
}

func TestHooks(t *testing.T) {
	ctx := context.Background()
	c := MustNew(New("a", types.TypeString, "x"))

	require.NoError(t, c.RunAfterAdd(ctx, nil), "no hook is a no-op")
	require.NoError(t, c.RunBeforeSetNotNull(ctx, nil))

	var calls []string
	c.OnAfterAdd(func(ctx context.Context, db Execer) error {
		calls = append(calls, "first")
		return nil
	})
	c.OnAfterAdd(func(ctx context.Context, db Execer) error {
		calls = append(calls, "second")
		return nil
	})

	require.NoError(t, c.RunAfterAdd(ctx, nil))
	assert.Equal(t, []string{"second"}, calls, "last registration wins")

	hookErr := errors.New("cannot backfill")
	c.OnBeforeSetNotNull(func(ctx context.Context, db Execer) error {
		return hookErr
	})
	assert.Same(t, hookErr, c.RunBeforeSetNotNull(ctx, nil), "hook errors propagate unchanged")
}

func TestClone_Independence(t *testing.T) {
	src := MustNew(NewDecimalWithDefault("amount", types.TypeNumeric, 10, 2, 5, "source"))
	clone := src.CloneAs("Total")

	assert.Equal(t, "total", clone.Name())
	assert.Equal(t, src.Type(), clone.Type())
	assert.Equal(t, src.Def(), clone.Def())
	assert.Equal(t, src.Length(), clone.Length())
	assert.Equal(t, src.Precision(), clone.Precision())
	assert.Equal(t, src.Remark(), clone.Remark())

	src.SetRemark("changed")
	src.SetLength(12)
	src.SetPrecision(4)
	src.SetDef(def.Num("9"))
	assert.Equal(t, "source", clone.Remark())
	assert.Equal(t, 10, clone.Length())
	assert.Equal(t, 2, clone.Precision())
	assert.Equal(t, def.Num("5"), clone.Def())

	clone.SetRemark("clone")
	clone.SetLength(3)
	assert.Equal(t, "changed", src.Remark())
	assert.Equal(t, 12, src.Length())
	assert.Equal(t, "amount", src.Name())
}

func TestClone_SharesAttachments(t *testing.T) {
	table := NewTable("t", "x")
	src := MustNew(NewSized("a", types.TypeString, 4, "x"))
	require.NoError(t, table.Add(src))
	src.SetPhysical(fixedLength(4))

	var ran bool
	src.OnAfterAdd(func(ctx context.Context, db Execer) error {
		ran = true
		return nil
	})

	clone := src.Clone()
	assert.Equal(t, "a", clone.Name())
	assert.Same(t, table, clone.Table())
	assert.Equal(t, src.Physical(), clone.Physical())

	require.NoError(t, clone.RunAfterAdd(context.Background(), nil))
	assert.True(t, ran)
}

func TestCloneAs_EmptyNameKeepsName(t *testing.T) {
	src := MustNew(New("a", types.TypeUUID, "x"))
	assert.Equal(t, "a", src.CloneAs("").Name())
}
