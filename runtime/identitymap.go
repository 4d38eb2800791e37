package runtime

import (
	"fmt"
	"strings"
)

// identityMap deduplicates rows fetched within a single call tree by
// (model, primary key). It belongs to one Loader and has no locking, so
// it must not be shared across goroutines.
type identityMap struct {
	rows map[string]map[string]any
}

func newIdentityMap() *identityMap {
	return &identityMap{rows: make(map[string]map[string]any)}
}

func identityKey(model string, pk []string, row map[string]any) string {
	parts := make([]string, 0, len(pk)+1)
	parts = append(parts, model)
	for _, col := range pk {
		parts = append(parts, fmt.Sprint(row[col]))
	}
	return strings.Join(parts, "\x1f")
}

func (m *identityMap) get(model string, pk []string, row map[string]any) (map[string]any, bool) {
	v, ok := m.rows[identityKey(model, pk, row)]
	return v, ok
}

func (m *identityMap) getByValues(model string, pkValues []string) (map[string]any, bool) {
	parts := append([]string{model}, pkValues...)
	v, ok := m.rows[strings.Join(parts, "\x1f")]
	return v, ok
}

func (m *identityMap) put(model string, pk []string, row map[string]any) map[string]any {
	key := identityKey(model, pk, row)
	if existing, ok := m.rows[key]; ok {
		return existing
	}
	m.rows[key] = row
	return row
}
