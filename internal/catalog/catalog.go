package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/jsondoc"
	"github.com/do-/ru-eludia-base/pkg/model"
)

// ErrVersionNotFound matches lookups of a version that was never registered.
var ErrVersionNotFound = merrors.NewCatalogError(merrors.CodeVersionNotFound, "version not found", nil)

// Record is one stored version of a table definition.
type Record struct {
	ID          string
	Table       string
	Version     int
	Fingerprint uint64
	Summary     model.TableSummary
	Definition  json.RawMessage
	CreatedAt   time.Time
}

type payload struct {
	Summary    model.TableSummary `json:"summary"`
	Definition json.RawMessage    `json:"definition"`
}

// Catalog tracks definition versions per table.
type Catalog struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{CreateDefinitionVersionsTableSQL, CreateDefinitionVersionsIndexSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
		}
	}

	return &Catalog{db: db}, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Current returns the latest version number of table, or 0 if none was registered.
func (c *Catalog) Current(ctx context.Context, table string) (int, error) {
	var version int
	err := c.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM definition_versions WHERE table_name = ?",
		table,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("catalog: failed to get current version of %s: %w", table, err)
	}
	return version, nil
}

// Get retrieves one version of a table definition.
func (c *Catalog) Get(ctx context.Context, table string, version int) (*Record, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, table_name, version, fingerprint, payload, created_at
		   FROM definition_versions WHERE table_name = ? AND version = ?`,
		table, version,
	)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, merrors.NewCatalogError(merrors.CodeVersionNotFound,
			fmt.Sprintf("table %s version %d not found", table, version), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to get %s version %d: %w", table, version, err)
	}
	return rec, nil
}

// Register stores a new version of t if its fingerprint differs from the
// latest stored one. It returns the current version and whether it was created.
func (c *Catalog) Register(ctx context.Context, t *model.Table) (int, bool, error) {
	fingerprint, err := t.Fingerprint()
	if err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.Current(ctx, t.Name())
	if err != nil {
		return 0, false, err
	}

	if current > 0 {
		var stored int64
		err := c.db.QueryRowContext(ctx,
			"SELECT fingerprint FROM definition_versions WHERE table_name = ? AND version = ?",
			t.Name(), current,
		).Scan(&stored)
		if err != nil {
			return 0, false, fmt.Errorf("catalog: failed to read fingerprint of %s: %w", t.Name(), err)
		}
		if uint64(stored) == fingerprint {
			return current, false, nil
		}
	}

	definition, err := t.Definition().Build()
	if err != nil {
		return 0, false, fmt.Errorf("catalog: failed to encode definition of %s: %w", t.Name(), err)
	}
	raw, err := jsondoc.Marshal(payload{Summary: t.Summary(), Definition: definition})
	if err != nil {
		return 0, false, fmt.Errorf("catalog: failed to encode payload of %s: %w", t.Name(), err)
	}

	next := current + 1
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO definition_versions (id, table_name, version, fingerprint, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), t.Name(), next, int64(fingerprint), snappy.Encode(nil, raw), time.Now().Unix(),
	)
	if err != nil {
		return 0, false, fmt.Errorf("catalog: failed to insert %s version %d: %w", t.Name(), next, err)
	}

	log.Printf("catalog: registered %s version %d (fingerprint %016x)", t.Name(), next, fingerprint)
	return next, true, nil
}

// List returns every stored version of table ordered by version.
func (c *Catalog) List(ctx context.Context, table string) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, table_name, version, fingerprint, payload, created_at
		   FROM definition_versions WHERE table_name = ? ORDER BY version ASC`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list versions of %s: %w", table, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: failed to scan version of %s: %w", table, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: error iterating versions of %s: %w", table, err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec         Record
		fingerprint int64
		compressed  []byte
		createdAt   int64
	)
	if err := s.Scan(&rec.ID, &rec.Table, &rec.Version, &fingerprint, &compressed, &createdAt); err != nil {
		return nil, err
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, merrors.NewInternalError("corrupt definition payload", err).
			WithDetails(map[string]interface{}{"table": rec.Table, "version": rec.Version})
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, merrors.NewInternalError("undecodable definition payload", err).
			WithDetails(map[string]interface{}{"table": rec.Table, "version": rec.Version})
	}

	rec.Fingerprint = uint64(fingerprint)
	rec.Summary = p.Summary
	rec.Definition = p.Definition
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}
