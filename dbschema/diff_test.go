package dbschema_test

import (
	"testing"

	atlasschema "ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclass/dclassql/dbschema"
)

func TestCompareNewTableAddsEveryColumn(t *testing.T) {
	desired := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "ID", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
	}}
	diff := dbschema.Compare(desired, nil)
	assert.True(t, diff.TableIsNew)
	require.Len(t, diff.Columns, 1)
	assert.False(t, diff.RequiresRebuild)
}

func TestCompareAddingNullableColumnDoesNotRequireRebuild(t *testing.T) {
	live := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "ID", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
	}}
	desired := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "ID", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
		{Name: "Nickname", Type: &atlasschema.ColumnType{Type: &atlasschema.StringType{T: "text"}, Null: true}},
	}}
	diff := dbschema.Compare(desired, live)
	assert.False(t, diff.RequiresRebuild)
	require.Len(t, diff.Columns, 1)
	assert.Equal(t, "added", diff.Columns[0].Kind)
}

func TestCompareDroppingColumnRequiresRebuild(t *testing.T) {
	live := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "ID", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
		{Name: "Legacy", Type: &atlasschema.ColumnType{Type: &atlasschema.StringType{T: "text"}, Null: true}},
	}}
	desired := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "ID", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
	}}
	diff := dbschema.Compare(desired, live)
	assert.True(t, diff.RequiresRebuild)
}

func TestCompareTypeChangeRequiresRebuild(t *testing.T) {
	live := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "Age", Type: &atlasschema.ColumnType{Type: &atlasschema.StringType{T: "text"}}},
	}}
	desired := &atlasschema.Table{Name: "t", Columns: []*atlasschema.Column{
		{Name: "Age", Type: &atlasschema.ColumnType{Type: &atlasschema.IntegerType{T: "integer"}}},
	}}
	diff := dbschema.Compare(desired, live)
	assert.True(t, diff.RequiresRebuild)
}
