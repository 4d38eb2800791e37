// Package inspect turns a set of record types into a normalized model
// graph by running each record's fake-self probe methods and walking its
// fields with reflection.
package inspect

import (
	"github.com/dclass/dclassql/model"
)

// Cardinality describes how many remote rows a relation attribute can
// resolve to.
type Cardinality int

const (
	// One is a required to-one relation: the scalar foreign-key column is
	// non-nullable.
	One Cardinality = iota
	// OptionalOne is an optional to-one relation: the scalar foreign-key
	// column is nullable.
	OptionalOne
	// Many is a to-many relation resolved through a remote foreign key.
	Many
)

// ColumnInfo describes one scalar field of a record.
type ColumnInfo struct {
	Name             string
	Type             *model.TypeInfo
	Nullable         bool
	HasDefault       bool
	DefaultIsFactory bool
	DefaultValue     any
	AutoIncrementPK  bool
	Enum             *model.EnumMapping
}

// ForeignKeyInfo describes one virtual foreign key between two models.
type ForeignKeyInfo struct {
	FromModel          string
	ToModel             string
	FromColumns         []string
	ToColumns           []string
	LocalRelationAttr   string
	RemoteRelationAttr  string
}

// RelationInfo describes one relation-valued attribute of a record —
// either the scalar side (One/OptionalOne) declared implicitly by a
// ForeignKey method, or the collection side (Many) it implies on the
// remote model.
type RelationInfo struct {
	AttrName      string
	TargetModel   string
	Cardinality   Cardinality
	BackrefName   string
	ViaForeignKey *ForeignKeyInfo
}

// IndexInfo describes one declared index.
type IndexInfo struct {
	Name    string
	Columns []string
	Unique  bool
}

// DataSourceConfig names the database a model's table lives in.
type DataSourceConfig struct {
	Key      string
	Provider string
	URL      string
}

// ModelInfo is the normalized description of one record type, the
// product of running its probe methods and reflecting over its fields.
type ModelInfo struct {
	Name          string
	TableName     string
	GoType        string
	Columns       []*ColumnInfo
	PrimaryKey    []string
	Indexes       []IndexInfo
	Relations     []*RelationInfo
	ForeignKeys   []*ForeignKeyInfo
	DataSourceKey string
}

// Column looks up a column by name.
func (m *ModelInfo) Column(name string) *ColumnInfo {
	for _, c := range m.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Relation looks up a relation attribute by name.
func (m *ModelInfo) Relation(name string) *RelationInfo {
	for _, r := range m.Relations {
		if r.AttrName == name {
			return r
		}
	}
	return nil
}

// Graph is the immutable result of Inspect: every model that was passed
// in, keyed by name, plus the datasource each belongs to.
type Graph struct {
	Models      map[string]*ModelInfo
	Order       []string // insertion order, for deterministic codegen
	DataSources map[string]DataSourceConfig
}

// Model looks up a model by name.
func (g *Graph) Model(name string) *ModelInfo {
	return g.Models[name]
}
