package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/dclass/dclassql/inspect"
)

// Loader resolves relation attributes lazily, sharing one identity map
// across every resolution made through it so the same related row is
// never represented twice within one call tree. A to-one lookup already
// in the map issues no query; a to-many lookup may fetch rows already in
// the map again, and returns the cached instances for them.
type Loader struct {
	backend   *Backend
	cache     *identityMap
	manyCache map[string][]map[string]any
}

// NewLoader builds a Loader bound to backend, with a fresh identity map.
func NewLoader(backend *Backend) *Loader {
	return &Loader{backend: backend, cache: newIdentityMap(), manyCache: make(map[string][]map[string]any)}
}

// Resolve returns the related row(s) for row's relation attribute attr
// on model modelName: a single map[string]any (or nil) for a to-one
// relation, a []map[string]any for a to-many relation.
func (l *Loader) Resolve(ctx context.Context, modelName string, row map[string]any, attr string) (any, error) {
	mi, err := l.backend.modelOrErr(modelName)
	if err != nil {
		return nil, err
	}
	rel := mi.Relation(attr)
	if rel == nil {
		return nil, &RelationUnresolvableError{Model: modelName, Relation: attr}
	}

	if rel.Cardinality != inspect.Many {
		return l.resolveToOne(ctx, mi, rel, row)
	}
	return l.resolveToMany(ctx, mi, rel, row)
}

func (l *Loader) resolveToOne(ctx context.Context, mi *inspect.ModelInfo, rel *inspect.RelationInfo, row map[string]any) (map[string]any, error) {
	fk := rel.ViaForeignKey
	scalar := row[fk.FromColumns[0]]
	if scalar == nil {
		return nil, nil
	}
	target := l.backend.graph.Model(rel.TargetModel)
	if cached, ok := l.cache.getByValues(rel.TargetModel, []string{fmt.Sprint(scalar)}); ok {
		return cached, nil
	}

	where := map[string]any{fk.ToColumns[0]: scalar}
	found, ok, err := l.backend.FindFirstContext(ctx, rel.TargetModel, where, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RelationUnresolvableError{Model: mi.Name, Relation: rel.AttrName}
	}
	return l.cache.put(rel.TargetModel, target.PrimaryKey, found), nil
}

func (l *Loader) resolveToMany(ctx context.Context, mi *inspect.ModelInfo, rel *inspect.RelationInfo, row map[string]any) ([]map[string]any, error) {
	fk := rel.ViaForeignKey
	scalar := row[fk.ToColumns[0]]

	key := manyCacheKey(mi.Name, rel.AttrName, scalar)
	if cached, ok := l.manyCache[key]; ok {
		return cached, nil
	}

	target := l.backend.graph.Model(rel.TargetModel)
	where := map[string]any{fk.FromColumns[0]: scalar}
	found, err := l.backend.FindManyContext(ctx, rel.TargetModel, where, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(found))
	for _, r := range found {
		out = append(out, l.cache.put(rel.TargetModel, target.PrimaryKey, r))
	}
	l.manyCache[key] = out
	return out, nil
}

// manyCacheKey identifies a to-many relation resolution by the referencing
// model, the relation attribute, and the foreign key scalar the lookup was
// made against — sufficient to determine the result set without needing
// the referencing row's own primary key.
func manyCacheKey(model, attr string, scalar any) string {
	return strings.Join([]string{model, attr, fmt.Sprint(scalar)}, "\x1f")
}
