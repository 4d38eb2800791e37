package model_test

import (
	"reflect"
	"testing"

	"github.com/dclass/dclassql/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeUser struct {
	ID    int
	Email string
}

type probeAddress struct {
	ID     int
	UserID int
	User   probeUser
}

func (probeAddress) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("User", "ID"), s.Col("UserID"), "User", "Addresses"),
	}
}

func TestSelfColRecordsPathWithoutEvaluating(t *testing.T) {
	s := model.NewSelf("probeUser", reflect.TypeOf(probeUser{}))
	ref := s.Col("Email")
	assert.Equal(t, []string{"Email"}, ref.Path)
}

func TestSelfColUnknownFieldFailsTheProbe(t *testing.T) {
	s := model.NewSelf("probeUser", reflect.TypeOf(probeUser{}))
	_, err := model.Run("probeUser", "PrimaryKey", func() model.KeySpec {
		return model.Key(s.Col("DoesNotExist"))
	})
	require.Error(t, err)
	assert.True(t, model.IsProbeError(err))

	var pe *model.ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "probeUser", pe.Context()["model"])
	assert.Equal(t, "PrimaryKey", pe.Context()["method"])
}

func TestForeignKeyLinkCapturesBothSidesWithoutComparing(t *testing.T) {
	s := model.NewSelf("probeAddress", reflect.TypeOf(probeAddress{}))
	links, err := model.Run("probeAddress", "ForeignKey", func() []model.FKLink {
		return probeAddress{}.ForeignKey(s)
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, []string{"User", "ID"}, links[0].Comparison.Left.Path)
	assert.Equal(t, []string{"UserID"}, links[0].Comparison.Right.Path)
	assert.Equal(t, "User", links[0].RemoteModel)
	assert.Equal(t, "Addresses", links[0].RemoteAttr)
}

func TestKeySpecPreservesColumnOrder(t *testing.T) {
	s := model.NewSelf("probeUser", reflect.TypeOf(probeUser{}))
	ks := model.Key(s.Cols("ID", "Email")...)
	require.Len(t, ks.Refs, 2)
	assert.Equal(t, "ID", ks.Refs[0].String())
	assert.Equal(t, "Email", ks.Refs[1].String())
}
