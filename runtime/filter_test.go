package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dclass/dclassql/runtime"
)

// intFilter mirrors the shape codegen emits for IntFilter (and every
// other *Filter type) — FilterToMap works by field-name convention, not
// against a concrete generated type, so any struct with these field
// names exercises it.
type intFilter struct {
	Eq    *int
	NotIn []int
}

func TestFilterToMapUsesNinForNotIn(t *testing.T) {
	f := &intFilter{NotIn: []int{1, 2}}
	out := runtime.FilterToMap(f)
	assert.Equal(t, map[string]any{"nin": []int{1, 2}}, out)
}

func TestFilterToMapOmitsUnsetFields(t *testing.T) {
	f := &intFilter{Eq: intPtr(5)}
	out := runtime.FilterToMap(f)
	assert.Equal(t, map[string]any{"eq": 5}, out)
}

func TestFilterToMapNilPointerYieldsNil(t *testing.T) {
	var f *intFilter
	assert.Nil(t, runtime.FilterToMap(f))
}

func intPtr(v int) *int { return &v }
