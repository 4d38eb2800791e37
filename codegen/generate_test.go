package codegen_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dclass/dclassql/codegen"
	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
)

type CGUser struct {
	ID        int
	Email     string
	Bio       *string
	Addresses []CGAddress
}

func (CGUser) UniqueIndex(s *model.Self) []model.KeySpec {
	return []model.KeySpec{model.Key(s.Col("Email"))}
}

type CGAddress struct {
	ID     int
	City   string
	UserID int
	User   CGUser
}

func (CGAddress) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("User", "ID"), s.Col("UserID"), "CGUser", "Addresses"),
	}
}

func testGraph(t *testing.T) *inspect.Graph {
	g, err := inspect.Inspect([]any{CGUser{}, CGAddress{}})
	require.NoError(t, err)
	return g
}

func TestGenerateWritesOneFilePerModelPlusSharedAndClient(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t)

	err := codegen.Generate(context.Background(), g, codegen.Config{Package: "client", Dir: dir})
	require.NoError(t, err)

	for _, name := range []string{"shared.go", "client.go", "cguser_gen.go", "cgaddress_gen.go"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}
}

func TestGeneratedModelFileDeclaresInsertWhereAndTableTypes(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t)

	require.NoError(t, codegen.Generate(context.Background(), g, codegen.Config{Package: "client", Dir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "cguser_gen.go"))
	require.NoError(t, err)
	src := string(data)

	assert.Contains(t, src, "type CGUserInsert struct")
	assert.Contains(t, src, "type CGUserWhere struct")
	assert.Contains(t, src, "type CGUserTable struct")
	assert.Contains(t, src, "func flattenCGUserWhere(")
	assert.Contains(t, src, "Addresses *CGAddressRelationFilter")

	addrData, err := os.ReadFile(filepath.Join(dir, "cgaddress_gen.go"))
	require.NoError(t, err)
	addrSrc := string(addrData)
	// A to-one relation field uses the same RelationFilter type as a
	// to-many one, so it can be filtered by is/is_not, not just a bare
	// nested where-map.
	assert.Contains(t, addrSrc, "User   *CGUserRelationFilter")
	assert.Contains(t, src, "func (t *CGUserTable) Insert(")
	assert.Contains(t, src, "func (t *CGUserTable) FindMany(")
	assert.Contains(t, src, "(CGUser, error)")
	assert.Contains(t, src, "([]CGUser, error)")
	assert.Contains(t, src, "include CGUserInclude")
	assert.Contains(t, src, "func applyIncludesCGUser(")
	assert.Contains(t, src, "loader.Resolve(ctx, \"CGUser\", row, \"Addresses\")")
}

func TestGeneratedSharedFileDeclaresScalarFiltersAndRelationFilters(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t)

	require.NoError(t, codegen.Generate(context.Background(), g, codegen.Config{Package: "client", Dir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "shared.go"))
	require.NoError(t, err)
	src := string(data)

	assert.Contains(t, src, "type StringFilter struct")
	assert.Contains(t, src, "type IntFilter struct")
	assert.Contains(t, src, "type CGAddressRelationFilter struct")
	assert.Contains(t, src, "Asc  OrderDirection")
}

func TestGeneratedClientFileAggregatesEveryTable(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t)

	require.NoError(t, codegen.Generate(context.Background(), g, codegen.Config{Package: "client", Dir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "client.go"))
	require.NoError(t, err)
	src := string(data)

	assert.Contains(t, src, "type Client struct")
	assert.Contains(t, src, "cGAddress *CGAddressTable")
	assert.Contains(t, src, "func NewClient(")
}

func TestGenerateIsDeterministicAcrossRuns(t *testing.T) {
	g := testGraph(t)
	cfg := codegen.Config{Package: "client"}

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, codegen.Generate(context.Background(), g, withDir(cfg, dirA)))
	require.NoError(t, codegen.Generate(context.Background(), g, withDir(cfg, dirB)))

	for _, name := range []string{"shared.go", "client.go", "cguser_gen.go"} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "%s differs between runs", name)
	}
}

func withDir(cfg codegen.Config, dir string) codegen.Config {
	cfg.Dir = dir
	return cfg
}

type CGRole string

func (CGRole) EnumValues() []string { return []string{"admin", "member"} }

type CGAccount struct {
	ID   int
	Role CGRole
}

func TestGeneratedEnumColumnDeclaresTypeAndConstants(t *testing.T) {
	dir := t.TempDir()
	g, err := inspect.Inspect([]any{CGAccount{}})
	require.NoError(t, err)

	require.NoError(t, codegen.Generate(context.Background(), g, codegen.Config{Package: "client", Dir: dir}))

	shared, err := os.ReadFile(filepath.Join(dir, "shared.go"))
	require.NoError(t, err)
	sharedSrc := string(shared)
	assert.Contains(t, sharedSrc, "type CGRole string")
	assert.Contains(t, sharedSrc, `CGRoleAdmin  CGRole = "admin"`)
	assert.Contains(t, sharedSrc, `CGRoleMember CGRole = "member"`)

	data, err := os.ReadFile(filepath.Join(dir, "cgaccount_gen.go"))
	require.NoError(t, err)
	src := string(data)
	assert.Contains(t, src, "Role CGRole")
	assert.Contains(t, src, "func CGAccountDeserialize(")
	assert.Contains(t, src, "CGRole(v)")
}
