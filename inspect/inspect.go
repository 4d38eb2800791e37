package inspect

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/dclass/dclassql/model"
)

// Option configures a single Inspect call.
type Option func(*options)

type options struct {
	dataSources map[string]DataSourceConfig
	modelDS     map[string]string
	defaultDS   string
}

// WithDataSource registers a named datasource and assigns it to the
// listed models (record struct type names, as reflect reports them). A
// model with no explicit assignment uses "default".
func WithDataSource(cfg DataSourceConfig, models ...string) Option {
	return func(o *options) {
		o.dataSources[cfg.Key] = cfg
		for _, m := range models {
			o.modelDS[m] = cfg.Key
		}
	}
}

// Inspect runs the fake-self probe and field reflection over every
// record type passed, producing a normalized Graph. Each argument must be
// the zero value of a record struct (not a pointer).
func Inspect(records []any, opts ...Option) (*Graph, error) {
	cfg := &options{
		dataSources: map[string]DataSourceConfig{"default": {Key: "default", Provider: "sqlite"}},
		modelDS:     map[string]string{},
		defaultDS:   "default",
	}
	for _, o := range opts {
		o(cfg)
	}

	g := &Graph{
		Models:      make(map[string]*ModelInfo, len(records)),
		Order:       make([]string, 0, len(records)),
		DataSources: cfg.dataSources,
	}

	tableOwners := make(map[string][]string) // "dsKey/table" -> model names
	types := make(map[string]reflect.Type, len(records))

	for _, rec := range records {
		t := reflect.TypeOf(rec)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		name := t.Name()
		types[name] = t
		dsKey := cfg.modelDS[name]
		if dsKey == "" {
			dsKey = cfg.defaultDS
		}
		mi, err := inspectOne(name, t, dsKey)
		if err != nil {
			return nil, err
		}
		if _, exists := g.Models[name]; exists {
			return nil, fmt.Errorf("inspect: duplicate model %q", name)
		}
		g.Models[name] = mi
		g.Order = append(g.Order, name)

		key := dsKey + "/" + mi.TableName
		tableOwners[key] = append(tableOwners[key], name)
	}

	for key, owners := range tableOwners {
		if len(owners) > 1 {
			parts := strings.SplitN(key, "/", 2)
			sort.Strings(owners)
			return nil, &DuplicateTableError{DataSourceKey: parts[0], TableName: parts[1], Models: owners}
		}
	}

	if err := resolveRelations(g, types); err != nil {
		return nil, err
	}

	return g, nil
}

func inspectOne(name string, t reflect.Type, dsKey string) (*ModelInfo, error) {
	mi := &ModelInfo{
		Name:          name,
		TableName:     strings.ToLower(name),
		GoType:        name,
		DataSourceKey: dsKey,
	}

	zero := reflect.New(t).Elem().Interface()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		ft := model.InferType(f.Type)
		if ft.Kind == model.KindModelRef || (ft.Kind == model.KindSlice && ft.Elem != nil && ft.Elem.Kind == model.KindModelRef) {
			// Relation-valued field: handled in resolveRelations once every
			// model's ForeignKey declarations are known.
			continue
		}
		col := &ColumnInfo{
			Name:     f.Name,
			Type:     ft,
			Nullable: ft.Nullable,
			Enum:     ft.Enum,
		}
		if dv, ok := f.Tag.Lookup("default"); ok {
			col.HasDefault = true
			col.DefaultValue = dv
		}
		mi.Columns = append(mi.Columns, col)
	}

	pk, err := probePrimaryKey(zero, name, t)
	if err != nil {
		return nil, err
	}
	mi.PrimaryKey = pk

	_, hasOverride := zero.(model.PrimaryKeyer)
	if !hasOverride && len(mi.PrimaryKey) == 1 && (mi.PrimaryKey[0] == "ID" || mi.PrimaryKey[0] == "id") {
		if col := mi.Column(mi.PrimaryKey[0]); col != nil && col.Type.IsAutoIncrementCandidate() {
			col.AutoIncrementPK = true
		}
	}

	indexes, err := probeIndexes(zero, name)
	if err != nil {
		return nil, err
	}
	uniques, err := probeUniqueIndexes(zero, name)
	if err != nil {
		return nil, err
	}
	for _, ks := range indexes {
		mi.Indexes = append(mi.Indexes, toIndexInfo(ks, mi.TableName, false))
	}
	for _, ks := range uniques {
		mi.Indexes = append(mi.Indexes, toIndexInfo(ks, mi.TableName, true))
	}

	return mi, nil
}

func probePrimaryKey(zero any, name string, t reflect.Type) ([]string, error) {
	if pker, ok := zero.(model.PrimaryKeyer); ok {
		s := model.NewSelf(name, t)
		ks, err := model.Run(name, "PrimaryKey", func() model.KeySpec {
			return pker.PrimaryKey(s)
		})
		if err != nil {
			return nil, err
		}
		return refsToNames(ks.Refs), nil
	}
	if _, ok := t.FieldByName("ID"); ok {
		return []string{"ID"}, nil
	}
	return nil, &MissingPrimaryKeyError{Model: name}
}

func probeIndexes(zero any, name string) ([]model.KeySpec, error) {
	idx, ok := zero.(model.Indexer)
	if !ok {
		return nil, nil
	}
	t := reflect.TypeOf(zero)
	s := model.NewSelf(name, t)
	return model.Run(name, "Index", func() []model.KeySpec { return idx.Index(s) })
}

func probeUniqueIndexes(zero any, name string) ([]model.KeySpec, error) {
	idx, ok := zero.(model.UniqueIndexer)
	if !ok {
		return nil, nil
	}
	t := reflect.TypeOf(zero)
	s := model.NewSelf(name, t)
	return model.Run(name, "UniqueIndex", func() []model.KeySpec { return idx.UniqueIndex(s) })
}

func probeForeignKeys(zero any, name string) ([]model.FKLink, error) {
	fker, ok := zero.(model.ForeignKeyer)
	if !ok {
		return nil, nil
	}
	t := reflect.TypeOf(zero)
	s := model.NewSelf(name, t)
	return model.Run(name, "ForeignKey", func() []model.FKLink { return fker.ForeignKey(s) })
}

func refsToNames(refs []*model.Ref) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Path[len(r.Path)-1])
	}
	return names
}

func toIndexInfo(ks model.KeySpec, table string, unique bool) IndexInfo {
	cols := refsToNames(ks.Refs)
	prefix := "idx"
	if unique {
		prefix = "uidx"
	}
	return IndexInfo{
		Name:    prefix + "_" + table + "_" + strings.Join(lowerAll(cols), "_"),
		Columns: cols,
		Unique:  unique,
	}
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = inflect.Underscore(s)
	}
	return out
}

// resolveRelations runs each model's ForeignKey probe, wires the scalar
// (One/OptionalOne) relation onto the declaring model, and the implied
// collection (Many) relation onto the referenced model.
func resolveRelations(g *Graph, types map[string]reflect.Type) error {
	for _, name := range g.Order {
		mi := g.Models[name]
		t := types[name]
		zero := reflect.New(t).Elem().Interface()
		links, err := probeForeignKeys(zero, name)
		if err != nil {
			return err
		}
		for _, link := range links {
			remote, ok := g.Models[link.RemoteModel]
			if !ok {
				return &UnknownModelReferenceError{FromModel: name, Reference: link.RemoteModel}
			}

			localAttr := link.Comparison.Left.Path[0]
			scalarCol := link.Comparison.Right.Path[len(link.Comparison.Right.Path)-1]
			remotePKCol := link.Comparison.Left.Path[len(link.Comparison.Left.Path)-1]

			col := mi.Column(scalarCol)
			card := One
			if col != nil && col.Nullable {
				card = OptionalOne
			}

			fk := &ForeignKeyInfo{
				FromModel:          name,
				ToModel:             link.RemoteModel,
				FromColumns:         []string{scalarCol},
				ToColumns:           []string{remotePKCol},
				LocalRelationAttr:   localAttr,
				RemoteRelationAttr:  link.RemoteAttr,
			}
			mi.ForeignKeys = append(mi.ForeignKeys, fk)

			for _, existing := range mi.Relations {
				if existing.AttrName == localAttr {
					return &AmbiguousForeignKeyError{FromModel: name, ToModel: link.RemoteModel, Candidates: 2}
				}
			}

			mi.Relations = append(mi.Relations, &RelationInfo{
				AttrName:      localAttr,
				TargetModel:   link.RemoteModel,
				Cardinality:   card,
				BackrefName:   link.RemoteAttr,
				ViaForeignKey: fk,
			})
			remote.Relations = append(remote.Relations, &RelationInfo{
				AttrName:      link.RemoteAttr,
				TargetModel:   name,
				Cardinality:   Many,
				BackrefName:   localAttr,
				ViaForeignKey: fk,
			})
		}
	}

	// Relations accumulate in probe-traversal order, which interleaves a
	// model's own declared relations with backrefs appended as a side
	// effect of other models' turns. Stabilize each model's list so its
	// own-table relations sort before remote-added ones, preserving
	// relative order within each group.
	for _, name := range g.Order {
		mi := g.Models[name]
		sort.SliceStable(mi.Relations, func(i, j int) bool {
			iLocal := mi.Relations[i].ViaForeignKey.FromModel == mi.Name
			jLocal := mi.Relations[j].ViaForeignKey.FromModel == mi.Name
			return iLocal && !jLocal
		})
	}
	return nil
}

