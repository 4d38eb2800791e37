package runtime_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dclass/dclassql/dbschema"
	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
	"github.com/dclass/dclassql/runtime"
)

type RTUser struct {
	ID    int
	Email string
}

func (RTUser) UniqueIndex(s *model.Self) []model.KeySpec {
	return []model.KeySpec{model.Key(s.Col("Email"))}
}

type RTAddress struct {
	ID     int
	UserID int
	City   string
	User   RTUser
}

func (RTAddress) ForeignKey(s *model.Self) []model.FKLink {
	return []model.FKLink{
		s.Link(s.Through("User", "ID"), s.Col("UserID"), "RTUser", "Addresses"),
	}
}

func setup(t *testing.T) (*sql.DB, *inspect.Graph) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g, err := inspect.Inspect([]any{RTUser{}, RTAddress{}})
	require.NoError(t, err)
	require.NoError(t, dbschema.Push(context.Background(), db, g, dbschema.PushOptions{}))
	return db, g
}

func TestInsertContextRefetchesCommittedRow(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)

	row, err := b.InsertContext(context.Background(), "RTUser", map[string]any{"Email": "a@example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["ID"])
	assert.Equal(t, "a@example.com", row["Email"])
}

func TestInsertContextRejectsDuplicateUniqueColumn(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	ctx := context.Background()

	_, err := b.InsertContext(ctx, "RTUser", map[string]any{"Email": "dup@example.com"})
	require.NoError(t, err)
	_, err = b.InsertContext(ctx, "RTUser", map[string]any{"Email": "dup@example.com"})
	require.Error(t, err)
	assert.True(t, runtime.IsIntegrityViolation(err))
}

func TestInsertManyContextAssignsContiguousPrimaryKeys(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)

	rows, err := b.InsertManyContext(context.Background(), "RTUser", []map[string]any{
		{"Email": "a@example.com"},
		{"Email": "b@example.com"},
		{"Email": "c@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, 1, rows[0]["ID"])
	assert.EqualValues(t, 2, rows[1]["ID"])
	assert.EqualValues(t, 3, rows[2]["ID"])
}

func TestFindManyContextFiltersAndOrders(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	ctx := context.Background()

	_, err := b.InsertManyContext(ctx, "RTUser", []map[string]any{
		{"Email": "b@example.com"},
		{"Email": "a@example.com"},
	})
	require.NoError(t, err)

	rows, err := b.FindManyContext(ctx, "RTUser", map[string]any{
		"Email": map[string]any{"contains": "example"},
	}, []runtime.OrderTerm{{Column: "Email"}}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@example.com", rows[0]["Email"])
	assert.Equal(t, "b@example.com", rows[1]["Email"])
}

func TestLoaderResolvesToOneAndToManyRelations(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	ctx := context.Background()

	user, err := b.InsertContext(ctx, "RTUser", map[string]any{"Email": "a@example.com"})
	require.NoError(t, err)
	_, err = b.InsertContext(ctx, "RTAddress", map[string]any{"UserID": user["ID"], "City": "Berlin"})
	require.NoError(t, err)

	loader := runtime.NewLoader(b)

	addr, ok, err := b.FindFirstContext(ctx, "RTAddress", nil, nil)
	require.NoError(t, err)
	require.True(t, ok)

	relatedUser, err := loader.Resolve(ctx, "RTAddress", addr, "User")
	require.NoError(t, err)
	require.NotNil(t, relatedUser)
	assert.Equal(t, "a@example.com", relatedUser.(map[string]any)["Email"])

	addresses, err := loader.Resolve(ctx, "RTUser", user, "Addresses")
	require.NoError(t, err)
	list, ok := addresses.([]map[string]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Berlin", list[0]["City"])
}

func TestLoaderCachesToManyResolutionAcrossRepeatAccess(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	ctx := context.Background()

	user, err := b.InsertContext(ctx, "RTUser", map[string]any{"Email": "a@example.com"})
	require.NoError(t, err)
	_, err = b.InsertContext(ctx, "RTAddress", map[string]any{"UserID": user["ID"], "City": "Berlin"})
	require.NoError(t, err)

	loader := runtime.NewLoader(b)

	before := b.Stats.Snapshot().Queries
	first, err := loader.Resolve(ctx, "RTUser", user, "Addresses")
	require.NoError(t, err)
	afterFirst := b.Stats.Snapshot().Queries
	assert.Equal(t, int64(1), afterFirst-before, "first access should issue exactly one query")

	second, err := loader.Resolve(ctx, "RTUser", user, "Addresses")
	require.NoError(t, err)
	afterSecond := b.Stats.Snapshot().Queries
	assert.Equal(t, afterFirst, afterSecond, "second access should issue no query")
	assert.Equal(t, first, second)
}

func TestBackendTracksQueryStats(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	ctx := context.Background()

	_, err := b.InsertContext(ctx, "RTUser", map[string]any{"Email": "a@example.com"})
	require.NoError(t, err)

	snap := b.Stats.Snapshot()
	assert.GreaterOrEqual(t, snap.Queries, int64(2)) // insert + refetch
	assert.Equal(t, int64(1), snap.Inserts)
}

func TestBackendCountsSlowQueriesAgainstThreshold(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g, runtime.WithSlowQueryThreshold(0))
	ctx := context.Background()

	_, err := b.InsertContext(ctx, "RTUser", map[string]any{"Email": "a@example.com"})
	require.NoError(t, err)

	snap := b.Stats.Snapshot()
	assert.GreaterOrEqual(t, snap.SlowQueries, int64(1))
}

func TestClosedBackendRejectsFurtherCalls(t *testing.T) {
	db, g := setup(t)
	b := runtime.NewBackend(db, g)
	require.NoError(t, b.Close())

	_, err := b.InsertContext(context.Background(), "RTUser", map[string]any{"Email": "a@example.com"})
	require.Error(t, err)
	assert.True(t, runtime.IsConnectionClosed(err))
}
