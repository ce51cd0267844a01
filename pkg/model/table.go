package model

import (
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/jsondoc"
)

// Table is an ordered set of column descriptors.
type Table struct {
	name    string
	remark  string
	columns []*Col
	byName  map[string]*Col
}

// TableSummary is the descriptor document of a table.
type TableSummary struct {
	Name    string    `json:"name"`
	Remark  string    `json:"remark"`
	Columns []Summary `json:"columns"`
}

// NewTable creates an empty table. The name is lower-cased.
func NewTable(name, remark string) *Table {
	return &Table{
		name:   strings.ToLower(strings.TrimSpace(name)),
		remark: remark,
		byName: make(map[string]*Col),
	}
}

// Name returns the lower-case table name.
func (t *Table) Name() string { return t.name }

// Remark returns the table documentation.
func (t *Table) Remark() string { return t.remark }

// Add appends columns and points their back-reference at t.
// Adding a name twice fails and leaves the table unchanged.
func (t *Table) Add(cols ...*Col) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c == nil {
			return merrors.NewValidationError(merrors.CodeInvalidModel,
				fmt.Sprintf("table %q: nil column", t.name))
		}
		if _, dup := t.byName[c.Name()]; dup || seen[c.Name()] {
			return merrors.NewValidationError(merrors.CodeInvalidModel,
				fmt.Sprintf("table %q: duplicate column %q", t.name, c.Name()))
		}
		seen[c.Name()] = true
	}

	for _, c := range cols {
		c.SetTable(t)
		t.columns = append(t.columns, c)
		t.byName[c.Name()] = c
	}
	return nil
}

// Column looks a column up by name, case-insensitively.
func (t *Table) Column(name string) (*Col, bool) {
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Col {
	out := make([]*Col, len(t.columns))
	copy(out, t.columns)
	return out
}

// Summary returns the descriptor document of the table.
func (t *Table) Summary() TableSummary {
	s := TableSummary{
		Name:    t.name,
		Remark:  t.remark,
		Columns: make([]Summary, 0, len(t.columns)),
	}
	for _, c := range t.columns {
		s.Columns = append(s.Columns, c.Summary())
	}
	return s
}

// Definition returns a document mapping each column name to its definition fragment.
func (t *Table) Definition() *jsondoc.Builder {
	doc := jsondoc.New()
	for _, c := range t.columns {
		fragment := jsondoc.New()
		c.AppendDefinitionTo(fragment)
		doc.Add(c.Name(), fragment)
	}
	return doc
}

// Fingerprint hashes the summary and definition documents. Two tables with
// the same fingerprint describe the same schema.
func (t *Table) Fingerprint() (uint64, error) {
	summary, err := jsondoc.Marshal(t.Summary())
	if err != nil {
		return 0, fmt.Errorf("model: failed to encode summary of %q: %w", t.name, err)
	}
	definition, err := t.Definition().Build()
	if err != nil {
		return 0, fmt.Errorf("model: failed to encode definition of %q: %w", t.name, err)
	}

	h := murmur3.New64()
	h.Write(summary)
	h.Write([]byte{0})
	h.Write(definition)
	return h.Sum64(), nil
}
