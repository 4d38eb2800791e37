package inspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
)

type User struct {
	ID        int
	Email     string
	Addresses []Address
}

func (User) UniqueIndex(s *model.Self) []model.KeySpec {
	return []model.KeySpec{model.Key(s.Col("Email"))}
}

type Address struct {
	ID       int
	Location string
	UserID   int
	User     User
}

func (Address) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("User", "ID"), s.Col("UserID"), "User", "Addresses"),
	}
}

func TestInspectBuildsDefaultPrimaryKeyFromIDField(t *testing.T) {
	g, err := inspect.Inspect([]any{User{}, Address{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID"}, g.Model("User").PrimaryKey)
	assert.True(t, g.Model("User").Column("ID").AutoIncrementPK)
}

func TestInspectLowerCasesTableNameWithoutPluralizing(t *testing.T) {
	g, err := inspect.Inspect([]any{User{}, Address{}})
	require.NoError(t, err)
	assert.Equal(t, "user", g.Model("User").TableName)
	assert.Equal(t, "address", g.Model("Address").TableName)
}

func TestInspectWiresBothSidesOfAForeignKey(t *testing.T) {
	g, err := inspect.Inspect([]any{User{}, Address{}})
	require.NoError(t, err)

	addr := g.Model("Address")
	rel := addr.Relation("User")
	require.NotNil(t, rel)
	assert.Equal(t, inspect.One, rel.Cardinality)
	assert.Equal(t, "Addresses", rel.BackrefName)

	user := g.Model("User")
	back := user.Relation("Addresses")
	require.NotNil(t, back)
	assert.Equal(t, inspect.Many, back.Cardinality)
	assert.Equal(t, "User", back.BackrefName)
}

func TestInspectBuildsUniqueIndexWithPrefixAndLowerCasedColumns(t *testing.T) {
	g, err := inspect.Inspect([]any{User{}, Address{}})
	require.NoError(t, err)
	user := g.Model("User")
	require.Len(t, user.Indexes, 1)
	assert.Equal(t, "uidx_user_email", user.Indexes[0].Name)
	assert.True(t, user.Indexes[0].Unique)
}

func TestInspectRejectsUnknownModelReference(t *testing.T) {
	_, err := inspect.Inspect([]any{Address{}})
	require.Error(t, err)
	assert.True(t, inspect.IsUnknownModelReference(err))
}

type noID struct {
	Name string
}

func TestInspectRejectsModelWithoutPrimaryKey(t *testing.T) {
	_, err := inspect.Inspect([]any{noID{}})
	require.Error(t, err)
	assert.True(t, inspect.IsMissingPrimaryKey(err))
}

// Code has an int PK but it isn't named ID, so it must not be treated as
// auto-increment even though it's the sole int primary key.
type Code struct {
	Code int
	Name string
}

func (Code) PrimaryKey(s *model.Self) model.KeySpec {
	return model.Key(s.Col("Code"))
}

func TestInspectDoesNotAutoIncrementNonIDNamedPrimaryKey(t *testing.T) {
	g, err := inspect.Inspect([]any{Code{}})
	require.NoError(t, err)
	col := g.Model("Code").Column("Code")
	require.NotNil(t, col)
	assert.False(t, col.AutoIncrementPK)
}

// Ticket explicitly overrides PrimaryKey to name its ID-named int field, so
// even though the column is named ID it must not be auto-increment: an
// explicit PrimaryKey override opts out of the implicit-ID convention.
type Ticket struct {
	ID   int
	Name string
}

func (Ticket) PrimaryKey(s *model.Self) model.KeySpec {
	return model.Key(s.Col("ID"))
}

func TestInspectDoesNotAutoIncrementExplicitPrimaryKeyOverride(t *testing.T) {
	g, err := inspect.Inspect([]any{Ticket{}})
	require.NoError(t, err)
	col := g.Model("Ticket").Column("ID")
	require.NotNil(t, col)
	assert.False(t, col.AutoIncrementPK)
}

type RGroup struct {
	ID int
}

type RUser struct {
	ID      int
	GroupID int
	Group   RGroup
	Posts   []RPost
}

func (RUser) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("Group", "ID"), s.Col("GroupID"), "RGroup", "Users"),
	}
}

type RPost struct {
	ID     int
	UserID int
	User   RUser
}

func (RPost) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("User", "ID"), s.Col("UserID"), "RUser", "Posts"),
	}
}

// RPost is inspected before RUser, so RUser's "Posts" backref lands in
// RUser.Relations as a side effect of RPost's turn, before RUser's own
// turn appends its own Group relation. Own-table relations must still
// sort first.
func TestInspectSortsRelationsOwnTableFirst(t *testing.T) {
	g, err := inspect.Inspect([]any{RPost{}, RUser{}, RGroup{}})
	require.NoError(t, err)

	user := g.Model("RUser")
	require.Len(t, user.Relations, 2)
	assert.Equal(t, "Group", user.Relations[0].AttrName)
	assert.Equal(t, "Posts", user.Relations[1].AttrName)
}
