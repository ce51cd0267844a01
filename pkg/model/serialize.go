package model

import (
	"strconv"
	"strings"

	"github.com/do-/ru-eludia-base/pkg/jsondoc"
)

// Summary is the full descriptor document of a column.
// Field order is part of the document format.
type Summary struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Def      *string `json:"def"`
	Nullable bool    `json:"nullable"`
	Remark   string  `json:"remark"`
}

// DefinitionWriter receives the fields of a column definition fragment.
type DefinitionWriter interface {
	Add(key string, value interface{})
}

// Definition fragment keys.
const (
	KeyType       = "TYPE"
	KeyRemark     = "REMARK"
	KeyColumnSize = "COLUMN_SIZE"
	KeyMinLength  = "MIN_LENGTH"
	KeyMax        = "MAX"
	KeyMin        = "MIN"
)

// TypeSignature returns the type name with its size suffix:
// "STRING", "STRING[10]" or "NUMERIC[5,2]".
func (c *Col) TypeSignature() string {
	var sb strings.Builder
	sb.WriteString(c.shape.Type.String())

	if c.shape.Length > 0 {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(c.shape.Length))
		if c.shape.Precision > 0 {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(c.shape.Precision))
		}
		sb.WriteByte(']')
	}

	return sb.String()
}

// Summary returns the full descriptor document.
func (c *Col) Summary() Summary {
	s := Summary{
		Name:     c.shape.Name,
		Type:     c.TypeSignature(),
		Nullable: c.shape.Nullable,
		Remark:   c.shape.Remark,
	}
	if c.shape.Def != nil {
		d := c.shape.Def.String()
		s.Def = &d
	}
	return s
}

// MarshalJSON encodes the column as its summary document.
func (c *Col) MarshalJSON() ([]byte, error) {
	return jsondoc.Marshal(c.Summary())
}

// String returns the summary document as JSON.
func (c *Col) String() string {
	data, err := jsondoc.Marshal(c.Summary())
	if err != nil {
		return c.shape.Name
	}
	return string(data)
}

// AppendDefinitionTo writes the definition fragment into w. Optional fields
// are omitted entirely when unset.
func (c *Col) AppendDefinitionTo(w DefinitionWriter) {
	w.Add(KeyType, c.shape.Type.Lower())
	w.Add(KeyRemark, c.shape.Remark)
	if c.shape.Length > 0 {
		w.Add(KeyColumnSize, c.shape.Length)
	}
	if c.bounds.MinLength > 0 {
		w.Add(KeyMinLength, c.bounds.MinLength)
	}
	if c.bounds.Max != nil {
		w.Add(KeyMax, *c.bounds.Max)
	}
	if c.bounds.Min != nil {
		w.Add(KeyMin, *c.bounds.Min)
	}
}
