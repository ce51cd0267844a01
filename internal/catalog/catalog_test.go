package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/pkg/model"
	"github.com/do-/ru-eludia-base/pkg/model/def"
	"github.com/do-/ru-eludia-base/pkg/types"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func ordersTable(t *testing.T) *model.Table {
	t.Helper()
	table := model.NewTable("orders", "customer orders")
	require.NoError(t, table.Add(
		model.MustNew(model.New("id", types.TypeUUID, "id")),
		model.MustNew(model.NewDecimalWithDefault("amount", types.TypeNumeric, 5, 2, def.Null, "amount")),
	))
	return table
}

func TestCatalog_RegisterFirstVersion(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	current, err := c.Current(ctx, "orders")
	require.NoError(t, err)
	assert.Zero(t, current)

	version, created, err := c.Register(ctx, ordersTable(t))
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.True(t, created)

	rec, err := c.Get(ctx, "orders", 1)
	require.NoError(t, err)
	assert.Equal(t, "orders", rec.Table)
	assert.Equal(t, "customer orders", rec.Summary.Remark)
	require.Len(t, rec.Summary.Columns, 2)
	assert.Equal(t, "NUMERIC[5,2]", rec.Summary.Columns[1].Type)
	assert.Nil(t, rec.Summary.Columns[1].Def)
	assert.JSONEq(t,
		`{"id":{"TYPE":"uuid","REMARK":"id"},"amount":{"TYPE":"numeric","REMARK":"amount","COLUMN_SIZE":5}}`,
		string(rec.Definition))
	assert.NotEmpty(t, rec.ID)
}

func TestCatalog_RegisterUnchanged(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, _, err := c.Register(ctx, ordersTable(t))
	require.NoError(t, err)

	version, created, err := c.Register(ctx, ordersTable(t))
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, created)
}

func TestCatalog_RegisterChanged(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	table := ordersTable(t)
	_, _, err := c.Register(ctx, table)
	require.NoError(t, err)

	amount, _ := table.Column("amount")
	amount.SetRange("0", "999.99")

	version, created, err := c.Register(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.True(t, created)

	records, err := c.List(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, 2, records[1].Version)
	assert.NotEqual(t, records[0].Fingerprint, records[1].Fingerprint)

	fp, err := table.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, records[1].Fingerprint)
}

func TestCatalog_GetMissing(t *testing.T) {
	c := openTestCatalog(t)

	_, err := c.Get(context.Background(), "orders", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionNotFound))
}

func TestCatalog_TablesAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, _, err := c.Register(ctx, ordersTable(t))
	require.NoError(t, err)

	other := model.NewTable("items", "")
	require.NoError(t, other.Add(model.MustNew(model.New("id", types.TypeInteger, ""))))
	version, created, err := c.Register(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.True(t, created)

	records, err := c.List(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCatalog_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO definition_versions (id, table_name, version, fingerprint, payload, created_at)
		 VALUES ('x', 'orders', 1, 0, X'FFFFFFFF', 0)`)
	require.NoError(t, err)

	_, err = c.Get(ctx, "orders", 1)
	require.Error(t, err)
	assert.Equal(t, merrors.ErrCategoryInternal, merrors.GetCategory(err))
	assert.Equal(t, merrors.CodeUnexpected, merrors.GetCode(err))
}
