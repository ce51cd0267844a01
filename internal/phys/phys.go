// Package phys reads realized column definitions from SQLite and binds them
// to logical column descriptors.
package phys

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/model"
)

// Column is a column as declared in the database.
type Column struct {
	Name       string
	DeclType   string
	BaseType   string
	Size       int
	Precision  int
	NotNull    bool
	Default    *string
	PrimaryKey bool
}

// Length returns the realized size. It satisfies model.PhysicalCol.
func (c Column) Length() int {
	return c.Size
}

// declTypePattern matches "VARCHAR(10)", "NUMERIC(5, 2)", "INTEGER".
var declTypePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// ParseDeclType splits a declared column type into its base name, size and precision.
// An empty declaration is valid in SQLite and yields an empty base type.
func ParseDeclType(decl string) (base string, size, precision int, err error) {
	if strings.TrimSpace(decl) == "" {
		return "", 0, 0, nil
	}

	m := declTypePattern.FindStringSubmatch(decl)
	if m == nil {
		return "", 0, 0, fmt.Errorf("phys: unrecognized column type %q", decl)
	}

	base = strings.ToUpper(m[1])
	if m[2] != "" {
		if size, err = strconv.Atoi(m[2]); err != nil {
			return "", 0, 0, fmt.Errorf("phys: bad size in %q: %w", decl, err)
		}
	}
	if m[3] != "" {
		if precision, err = strconv.Atoi(m[3]); err != nil {
			return "", 0, 0, fmt.Errorf("phys: bad precision in %q: %w", decl, err)
		}
	}
	return base, size, precision, nil
}

// Introspect returns the columns of table in declaration order.
func Introspect(ctx context.Context, db model.Execer, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("phys: failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     *string
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("phys: failed to scan table info for %s: %w", table, err)
		}

		base, size, precision, err := ParseDeclType(declType)
		if err != nil {
			return nil, err
		}

		columns = append(columns, Column{
			Name:       strings.ToLower(name),
			DeclType:   declType,
			BaseType:   base,
			Size:       size,
			Precision:  precision,
			NotNull:    notNull != 0,
			Default:    dflt,
			PrimaryKey: pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("phys: error iterating table info for %s: %w", table, err)
	}

	if len(columns) == 0 {
		return nil, merrors.NewBindingError(merrors.CodeTableNotFound,
			fmt.Sprintf("table %q does not exist", table))
	}
	return columns, nil
}

// Bind attaches the physical counterpart of every column of t. Columns
// declared without a size are realized at the logical length, since SQLite
// does not enforce declared sizes. It returns the names of logical columns
// that have no physical counterpart; those keep their previous binding.
func Bind(ctx context.Context, db model.Execer, t *model.Table) ([]string, error) {
	columns, err := Introspect(ctx, db, t.Name())
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Column, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}

	var missing []string
	for _, col := range t.Columns() {
		pc, ok := byName[col.Name()]
		if !ok {
			missing = append(missing, col.Name())
			continue
		}
		if pc.Size == 0 {
			pc.Size = col.Length()
		}
		col.SetPhysical(pc)
	}
	return missing, nil
}

// QuoteIdent quotes an SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
