// Package catalog keeps a versioned history of table definitions in SQLite.
package catalog

// CreateDefinitionVersionsTableSQL creates the definition history table.
// Each row is one version of one table; payload is the snappy-compressed
// JSON of the summary and definition documents.
const CreateDefinitionVersionsTableSQL = `
CREATE TABLE IF NOT EXISTS definition_versions (
    id TEXT PRIMARY KEY,
    table_name TEXT NOT NULL,
    version INTEGER NOT NULL,
    fingerprint INTEGER NOT NULL,
    payload BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (table_name, version)
)`

// CreateDefinitionVersionsIndexSQL speeds up latest-version lookups.
const CreateDefinitionVersionsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_definition_versions_table
    ON definition_versions(table_name, version DESC)`
