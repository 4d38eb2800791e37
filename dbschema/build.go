// Package dbschema translates an inspect.Graph into CREATE TABLE/INDEX
// statements, diffs that declared shape against a live SQLite catalog,
// and pushes the difference — rebuilding a table through a copy when the
// change cannot be expressed as an in-place ALTER.
//
// The declared and live shapes are both represented as
// ariga.io/atlas/sql/schema values, the same vocabulary the migration
// engine this package is adapted from uses; the comparison itself is
// hand-written rather than delegated to atlas's own differ, since the
// rebuild-vs-alter decision here follows rules this project defines, not
// atlas's.
package dbschema

import (
	"strings"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/dclass/dclassql/inspect"
)

// BuildTable renders mi as the atlas schema.Table it should have once
// pushed: every scalar column, the primary key (inlined into the column
// definition when it is a single auto-increment integer), and every
// declared index.
func BuildTable(mi *inspect.ModelInfo) *atlasschema.Table {
	t := &atlasschema.Table{Name: mi.TableName}

	pkSet := make(map[string]bool, len(mi.PrimaryKey))
	for _, c := range mi.PrimaryKey {
		pkSet[c] = true
	}

	for _, col := range mi.Columns {
		c := &atlasschema.Column{
			Name: col.Name,
			Type: &atlasschema.ColumnType{
				Type: sqliteColumnType(col),
				Null: col.Nullable && !pkSet[col.Name],
			},
		}
		t.Columns = append(t.Columns, c)
	}

	if len(mi.PrimaryKey) > 0 && !usesInlinePrimaryKey(mi) {
		parts := make([]*atlasschema.IndexPart, 0, len(mi.PrimaryKey))
		for _, name := range mi.PrimaryKey {
			parts = append(parts, &atlasschema.IndexPart{C: findColumn(t, name)})
		}
		t.PrimaryKey = &atlasschema.Index{Table: t, Parts: parts}
	}

	for _, idx := range mi.Indexes {
		parts := make([]*atlasschema.IndexPart, 0, len(idx.Columns))
		for _, name := range idx.Columns {
			parts = append(parts, &atlasschema.IndexPart{C: findColumn(t, name)})
		}
		t.Indexes = append(t.Indexes, &atlasschema.Index{
			Name:   idx.Name,
			Unique: idx.Unique,
			Table:  t,
			Parts:  parts,
		})
	}

	return t
}

func findColumn(t *atlasschema.Table, name string) *atlasschema.Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// usesInlinePrimaryKey mirrors the original push logic's
// use_inline_primary_key rule: a single-column integer primary key that
// is also the auto-increment column is declared `INTEGER PRIMARY KEY
// AUTOINCREMENT` inline, rather than via a separate PRIMARY KEY clause.
func usesInlinePrimaryKey(mi *inspect.ModelInfo) bool {
	if len(mi.PrimaryKey) != 1 {
		return false
	}
	col := mi.Column(mi.PrimaryKey[0])
	return col != nil && col.AutoIncrementPK
}

func sqliteColumnType(col *inspect.ColumnInfo) atlasschema.Type {
	switch col.Type.SQLiteType() {
	case "INTEGER":
		return &atlasschema.IntegerType{T: "integer"}
	case "REAL":
		return &atlasschema.FloatType{T: "real"}
	case "BLOB":
		return &atlasschema.BinaryType{T: "blob"}
	default:
		return &atlasschema.StringType{T: "text"}
	}
}

// CreateTableSQL renders the CREATE TABLE IF NOT EXISTS statement for mi.
func CreateTableSQL(mi *inspect.ModelInfo) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS \"")
	b.WriteString(mi.TableName)
	b.WriteString("\" (")

	inline := usesInlinePrimaryKey(mi)
	pkSet := make(map[string]bool, len(mi.PrimaryKey))
	for _, c := range mi.PrimaryKey {
		pkSet[c] = true
	}

	for i, col := range mi.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("\"" + col.Name + "\" ")
		b.WriteString(col.Type.SQLiteType())
		if inline && pkSet[col.Name] {
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		} else if pkSet[col.Name] {
			// composite or non-autoincrement key; NOT NULL only, PRIMARY
			// KEY clause is appended separately below.
			b.WriteString(" NOT NULL")
		} else if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	if !inline && len(mi.PrimaryKey) > 0 {
		b.WriteString(", PRIMARY KEY (")
		for i, name := range mi.PrimaryKey {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("\"" + name + "\"")
		}
		b.WriteString(")")
	}

	b.WriteString(");")
	return b.String()
}

// CreateIndexSQL renders the CREATE [UNIQUE] INDEX statement for one
// declared index.
func CreateIndexSQL(tableName string, idx inspect.IndexInfo) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX IF NOT EXISTS \"" + idx.Name + "\" ON \"" + tableName + "\" (")
	for i, col := range idx.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("\"" + col + "\"")
	}
	b.WriteString(");")
	return b.String()
}

// DropIndexSQL renders DROP INDEX IF EXISTS for a stale index.
func DropIndexSQL(name string) string {
	return "DROP INDEX IF EXISTS \"" + name + "\";"
}
