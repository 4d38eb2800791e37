package dbschema

import (
	"fmt"

	atlasschema "ariga.io/atlas/sql/schema"
)

// ColumnChange is one column-level difference between the declared and
// live shape of a table.
type ColumnChange struct {
	Name string
	// Kind is one of "added", "removed", "type_changed", "nullability_changed".
	Kind string
}

// IndexChange is one index-level difference.
type IndexChange struct {
	Name   string
	Kind   string // "added" or "removed"
	Unique bool
}

// Diff is the full set of differences between a declared table shape and
// the live catalog, plus whether applying it requires a rebuild.
type Diff struct {
	TableName       string
	TableIsNew      bool
	Columns         []ColumnChange
	Indexes         []IndexChange
	RequiresRebuild bool
	RebuildReason   string
}

// Empty reports whether desired and live already match.
func (d *Diff) Empty() bool {
	return !d.TableIsNew && len(d.Columns) == 0 && len(d.Indexes) == 0 && !d.RequiresRebuild
}

// Compare computes the Diff needed to bring live up to desired. live is
// nil when the table does not exist yet.
func Compare(desired, live *atlasschema.Table) *Diff {
	d := &Diff{TableName: desired.Name}

	if live == nil {
		d.TableIsNew = true
		for _, c := range desired.Columns {
			d.Columns = append(d.Columns, ColumnChange{Name: c.Name, Kind: "added"})
		}
		for _, idx := range desired.Indexes {
			d.Indexes = append(d.Indexes, IndexChange{Name: idx.Name, Kind: "added", Unique: idx.Unique})
		}
		return d
	}

	liveCols := make(map[string]*atlasschema.Column, len(live.Columns))
	for _, c := range live.Columns {
		liveCols[c.Name] = c
	}
	desiredCols := make(map[string]bool, len(desired.Columns))

	for _, c := range desired.Columns {
		desiredCols[c.Name] = true
		lc, ok := liveCols[c.Name]
		if !ok {
			d.Columns = append(d.Columns, ColumnChange{Name: c.Name, Kind: "added"})
			// SQLite can ALTER TABLE ... ADD COLUMN for a nullable column
			// with no non-constant default; anything else needs a rebuild.
			if !c.Type.Null {
				d.RequiresRebuild = true
				d.RebuildReason = fmt.Sprintf("column %q is being added as NOT NULL", c.Name)
			}
			continue
		}
		if typeName(c.Type.Type) != typeName(lc.Type.Type) {
			d.Columns = append(d.Columns, ColumnChange{Name: c.Name, Kind: "type_changed"})
			d.RequiresRebuild = true
			d.RebuildReason = fmt.Sprintf("column %q changed type", c.Name)
		} else if c.Type.Null != lc.Type.Null {
			d.Columns = append(d.Columns, ColumnChange{Name: c.Name, Kind: "nullability_changed"})
			d.RequiresRebuild = true
			d.RebuildReason = fmt.Sprintf("column %q changed nullability", c.Name)
		}
	}
	for _, lc := range live.Columns {
		if !desiredCols[lc.Name] {
			d.Columns = append(d.Columns, ColumnChange{Name: lc.Name, Kind: "removed"})
			d.RequiresRebuild = true
			d.RebuildReason = fmt.Sprintf("column %q is being dropped", lc.Name)
		}
	}

	if !samePrimaryKey(desired.PrimaryKey, live.PrimaryKey) {
		d.RequiresRebuild = true
		d.RebuildReason = "primary key changed"
	}

	liveIdx := make(map[string]*atlasschema.Index, len(live.Indexes))
	for _, idx := range live.Indexes {
		liveIdx[idx.Name] = idx
	}
	desiredIdx := make(map[string]bool, len(desired.Indexes))
	for _, idx := range desired.Indexes {
		desiredIdx[idx.Name] = true
		if _, ok := liveIdx[idx.Name]; !ok {
			d.Indexes = append(d.Indexes, IndexChange{Name: idx.Name, Kind: "added", Unique: idx.Unique})
		}
	}
	for _, idx := range live.Indexes {
		if !desiredIdx[idx.Name] {
			d.Indexes = append(d.Indexes, IndexChange{Name: idx.Name, Kind: "removed", Unique: idx.Unique})
		}
	}

	return d
}

func typeName(t atlasschema.Type) string {
	switch t.(type) {
	case *atlasschema.IntegerType:
		return "INTEGER"
	case *atlasschema.FloatType:
		return "REAL"
	case *atlasschema.BinaryType:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func samePrimaryKey(a, b *atlasschema.Index) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.Parts) != len(b.Parts) {
		return false
	}
	for i, p := range a.Parts {
		if p.C == nil || b.Parts[i].C == nil || p.C.Name != b.Parts[i].C.Name {
			return false
		}
	}
	return true
}
