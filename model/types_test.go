package model_test

import (
	"reflect"
	"testing"

	"github.com/dclass/dclassql/model"
	"github.com/stretchr/testify/assert"
)

type Role string

func (Role) EnumValues() []string { return []string{"admin", "member"} }

type Priority int

func (Priority) EnumValues() []string { return []string{"low", "high"} }

func TestInferTypeDetectsStringEnum(t *testing.T) {
	ti := model.InferType(reflect.TypeOf(Role("")))
	assert.Equal(t, model.KindEnum, ti.Kind)
	if assert.NotNil(t, ti.Enum) {
		assert.Equal(t, "Role", ti.Enum.GoTypeName)
		assert.Equal(t, []string{"admin", "member"}, ti.Enum.Values)
		assert.Equal(t, model.KindString, ti.Enum.Storage)
	}
}

func TestInferTypeDetectsIntEnum(t *testing.T) {
	ti := model.InferType(reflect.TypeOf(Priority(0)))
	assert.Equal(t, model.KindEnum, ti.Kind)
	if assert.NotNil(t, ti.Enum) {
		assert.Equal(t, model.KindInt, ti.Enum.Storage)
	}
}

func TestInferTypePlainStringIsNotEnum(t *testing.T) {
	ti := model.InferType(reflect.TypeOf(""))
	assert.Equal(t, model.KindString, ti.Kind)
	assert.Nil(t, ti.Enum)
}

func TestInferTypeNullableEnumStaysNullable(t *testing.T) {
	var r *Role
	ti := model.InferType(reflect.TypeOf(r))
	assert.True(t, ti.Nullable)
	assert.Equal(t, model.KindEnum, ti.Kind)
}
