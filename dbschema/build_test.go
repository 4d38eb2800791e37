package dbschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclass/dclassql/dbschema"
	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
)

type SchemaUser struct {
	ID    int
	Email string
	Bio   *string
}

func (SchemaUser) UniqueIndex(s *model.Self) []model.KeySpec {
	return []model.KeySpec{model.Key(s.Col("Email"))}
}

func graph(t *testing.T) *inspect.Graph {
	g, err := inspect.Inspect([]any{SchemaUser{}})
	require.NoError(t, err)
	return g
}

func TestCreateTableSQLInlinesAutoIncrementPrimaryKey(t *testing.T) {
	mi := graph(t).Model("SchemaUser")
	require.NotNil(t, mi)
	sql := dbschema.CreateTableSQL(mi)
	assert.Contains(t, sql, `"ID" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, sql, `"Email" TEXT NOT NULL`)
	assert.Contains(t, sql, `"Bio" TEXT`)
	assert.NotContains(t, sql, `"Bio" TEXT NOT NULL`)
}

func TestCreateIndexSQLUsesUidxPrefixForUniqueIndexes(t *testing.T) {
	mi := graph(t).Model("SchemaUser")
	require.Len(t, mi.Indexes, 1)
	sql := dbschema.CreateIndexSQL(mi.TableName, mi.Indexes[0])
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS "uidx_schemauser_email" ON "schemauser" ("Email");`, sql)
}

func TestBuildTableRendersColumnsAndPrimaryKey(t *testing.T) {
	mi := graph(t).Model("SchemaUser")
	table := dbschema.BuildTable(mi)
	assert.Equal(t, "schemauser", table.Name)
	require.Len(t, table.Columns, 3)
	require.Nil(t, table.PrimaryKey) // inline autoincrement PK has no separate PRIMARY KEY index
}
