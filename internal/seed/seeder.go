// Package seed fills existing tables with synthetic rows produced by column generators.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/internal/observability"
	"github.com/do-/ru-eludia-base/internal/phys"
	"github.com/do-/ru-eludia-base/pkg/model"
	"github.com/do-/ru-eludia-base/pkg/types"
)

type columnGenerator struct {
	name     string
	generate model.Generator
}

// generators returns one generator per column that has one, in column order,
// and the names of the columns left out.
func generators(t *model.Table) ([]columnGenerator, []string) {
	var out []columnGenerator
	var skipped []string
	for _, c := range t.Columns() {
		gen, ok := c.ValueGenerator()
		if !ok {
			log.Printf("seed: no generator for %s.%s (%s), skipping", t.Name(), c.Name(), c.Type())
			skipped = append(skipped, c.Name())
			continue
		}
		out = append(out, columnGenerator{name: c.Name(), generate: gen})
	}
	return out, skipped
}

// Rows generates n rows for t. Columns that need a realized length must
// already be bound to a physical column.
func Rows(t *model.Table, n int) ([]types.Row, error) {
	rows, _, err := generateRows(t, n)
	return rows, err
}

// checkBound fails on the first column whose values need a realized length
// but that has no physical binding.
func checkBound(t *model.Table) error {
	for _, c := range t.Columns() {
		if c.Type().NeedsPhysicalLength() && c.Physical() == nil {
			return merrors.NewBindingError(merrors.CodeMissingPhysicalBinding,
				fmt.Sprintf("table %s is not bound", t.Name())).
				WithDetails(map[string]interface{}{"column": c.Name(), "type": c.Type().String()})
		}
	}
	return nil
}

func generateRows(t *model.Table, n int) ([]types.Row, []string, error) {
	if err := checkBound(t); err != nil {
		return nil, nil, err
	}

	gens, skipped := generators(t)
	names := make([]string, len(gens))
	for i, g := range gens {
		names[i] = g.name
	}

	rows := make([]types.Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := nextRow(names, gens)
		if err != nil {
			return nil, nil, fmt.Errorf("seed: %s row %d: %w", t.Name(), i, err)
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func nextRow(names []string, gens []columnGenerator) (types.Row, error) {
	values := make([]interface{}, len(gens))
	for i, g := range gens {
		v, err := g.generate()
		if err != nil {
			return types.Row{}, fmt.Errorf("column %s: %w", g.name, err)
		}
		values[i] = v
	}
	return types.Row{Columns: names, Values: values}, nil
}

// Seeder inserts generated rows into a SQLite database.
type Seeder struct {
	db    *sql.DB
	stats *observability.SeedStats
}

// NewSeeder creates a seeder writing to db.
func NewSeeder(db *sql.DB) *Seeder {
	return &Seeder{
		db:    db,
		stats: observability.NewSeedStats(time.Hour),
	}
}

// Stats returns the statistics of the runs made by this seeder.
func (s *Seeder) Stats() *observability.SeedStats {
	return s.stats
}

// Seed binds t to its database table and inserts n generated rows in one
// transaction. It returns the number of rows inserted.
func (s *Seeder) Seed(ctx context.Context, t *model.Table, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	missing, err := phys.Bind(ctx, s.db, t)
	if err != nil {
		log.Printf("seed: cannot bind %s (%s)", t.Name(), merrors.GetCode(err))
		return 0, fmt.Errorf("seed: failed to bind %s: %w", t.Name(), err)
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("seed: %s: columns missing from database: %s", t.Name(), strings.Join(missing, ", "))
	}

	start := time.Now()
	rows, skipped, err := generateRows(t, n)
	if err != nil {
		return 0, err
	}
	if len(rows[0].Columns) == 0 {
		return 0, fmt.Errorf("seed: %s has no generated columns", t.Name())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(t.Name(), rows[0].Columns))
	if err != nil {
		return 0, fmt.Errorf("seed: failed to prepare insert into %s: %w", t.Name(), err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Values...); err != nil {
			return 0, fmt.Errorf("seed: failed to insert row %d into %s: %w", i, t.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed: failed to commit %s: %w", t.Name(), err)
	}

	for _, c := range skipped {
		s.stats.RecordSkipped(t.Name(), c)
	}
	s.stats.RecordRun(t.Name(), len(rows), time.Since(start))
	s.stats.Prune()

	log.Printf("seed: inserted %d rows into %s", len(rows), t.Name())
	return len(rows), nil
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = phys.QuoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		phys.QuoteIdent(table), strings.Join(quoted, ", "), placeholders)
}
