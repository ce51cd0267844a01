package model

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/types"
)

// Generator produces one synthetic value per call.
type Generator func() (interface{}, error)

const (
	// StringAlphabet is the character set of generated STRING values.
	StringAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// TextValueLength is the size of generated TEXT values, one past the
	// largest common inline VARCHAR size.
	TextValueLength = 8001

	// TextFiller is the character TEXT values are filled with.
	TextFiller = "s"

	// BlobPlaceholder is the constant value generated for BLOB columns.
	BlobPlaceholder = "CAFEBABE"

	// DateSpreadDays bounds the day offset of generated DATE values.
	DateSpreadDays = 500
)

// maxInt64Digits is the number of decimal digits below which 10^n fits an int64.
const maxInt64Digits = 19

// ValueGenerator returns a generator for the column type, or false if the
// type has none. The branch is chosen now; length, precision and the
// physical binding are read on every call.
func (c *Col) ValueGenerator() (Generator, bool) {
	switch c.shape.Type {
	case types.TypeBoolean:
		return generateBoolean, true
	case types.TypeInteger:
		return c.generateInteger, true
	case types.TypeNumeric, types.TypeMoney:
		return c.generateDecimal, true
	case types.TypeUUID:
		return generateUUID, true
	case types.TypeDate:
		return generateDate, true
	case types.TypeDatetime, types.TypeTimestamp:
		return generateInstant, true
	case types.TypeString:
		return c.generateString, true
	case types.TypeText:
		return generateText, true
	case types.TypeBinary:
		return c.generateBinary, true
	case types.TypeBlob:
		return generateBlob, true
	default:
		return nil, false
	}
}

// physicalLength reads the realized length from the bound physical column.
func (c *Col) physicalLength() (int, error) {
	p := c.attach.physical
	if p == nil {
		return 0, merrors.NewBindingError(merrors.CodeMissingPhysicalBinding, "no physical binding").
			WithDetails(map[string]interface{}{"column": c.shape.Name, "type": c.shape.Type.String()})
	}
	return max(p.Length(), 0), nil
}

func generateBoolean() (interface{}, error) {
	return rand.IntN(2) == 1, nil
}

// generateInteger returns a non-negative int64 with at most physicalLength digits.
func (c *Col) generateInteger() (interface{}, error) {
	digits, err := c.physicalLength()
	if err != nil {
		return nil, err
	}

	v := rand.Int64()
	if digits < maxInt64Digits {
		v %= pow10(digits)
	}
	return v, nil
}

// generateDecimal returns a non-negative decimal with Precision fractional
// digits whose integer part fits Length-Precision digits. Length 0 leaves
// the integer part unbounded.
func (c *Col) generateDecimal() (interface{}, error) {
	scale := c.shape.Precision
	raw := decimal.New(rand.Int64(), -int32(scale))

	if c.shape.Length == 0 {
		return raw, nil
	}

	limit := decimal.New(1, int32(max(c.shape.Length-scale, 0)))
	if raw.LessThan(limit) {
		return raw, nil
	}
	return raw.Mod(limit), nil
}

func generateUUID() (interface{}, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("model: failed to generate uuid: %w", err)
	}
	return id, nil
}

// generateDate returns local midnight today plus 0..DateSpreadDays-1 days.
func generateDate() (interface{}, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, rand.IntN(DateSpreadDays)), nil
}

// generateInstant returns now shifted by a random signed 32-bit number of milliseconds.
func generateInstant() (interface{}, error) {
	offset := int32(rand.Uint32())
	return time.Now().Add(time.Duration(offset) * time.Millisecond), nil
}

func (c *Col) generateString() (interface{}, error) {
	n, err := c.physicalLength()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = StringAlphabet[rand.IntN(len(StringAlphabet))]
	}
	return string(buf), nil
}

func generateText() (interface{}, error) {
	return strings.Repeat(TextFiller, TextValueLength), nil
}

func (c *Col) generateBinary() (interface{}, error) {
	n, err := c.physicalLength()
	if err != nil {
		return nil, err
	}
	return make([]byte, n), nil
}

func generateBlob() (interface{}, error) {
	return BlobPlaceholder, nil
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
