package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
)

// TableSpec is a declarative table definition.
type TableSpec struct {
	Name    string       `json:"name" yaml:"name"`
	Remark  string       `json:"remark" yaml:"remark"`
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
}

// ModelFile is the top-level document of a model file.
type ModelFile struct {
	Tables []TableSpec `json:"tables" yaml:"tables"`
}

// ParseTables builds tables from a YAML (or JSON) model document.
func ParseTables(data []byte) ([]*Table, error) {
	var file ModelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, merrors.Wrap(merrors.ErrCategoryValidation, merrors.CodeInvalidModel,
			"failed to parse model document", err)
	}

	tables := make([]*Table, 0, len(file.Tables))
	seen := make(map[string]bool, len(file.Tables))
	for _, ts := range file.Tables {
		t, err := ts.Build()
		if err != nil {
			return nil, err
		}
		if seen[t.Name()] {
			return nil, merrors.NewValidationError(merrors.CodeInvalidModel,
				fmt.Sprintf("duplicate table %q", t.Name()))
		}
		seen[t.Name()] = true
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadTables reads and builds the tables of a model file.
func LoadTables(path string) ([]*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseTables(data)
}

// Build creates the table and all of its columns.
func (s TableSpec) Build() (*Table, error) {
	if s.Name == "" {
		return nil, merrors.NewValidationError(merrors.CodeInvalidModel, "table name is required")
	}

	t := NewTable(s.Name, s.Remark)
	for _, cs := range s.Columns {
		c, err := cs.Build()
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name(), err)
		}
		if err := t.Add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}
