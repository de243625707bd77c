package docstore_test

import (
	"context"
	"testing"

	"github.com/halisahaclub/halisaha/internal/database"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) docstore.Store {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return docstore.New(db)
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "groups", map[string]any{"name": "Salı Maçı", "members": []string{"u1"}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "groups", id)
	require.NoError(t, err)
	assert.Equal(t, "Salı Maçı", doc.Fields["name"])

	_, err = store.Get(ctx, "groups", "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestQueryFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "matches", map[string]any{"groupId": "g1", "status": "played"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "matches", map[string]any{"groupId": "g1", "status": "scheduled"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "matches", map[string]any{"groupId": "g2", "status": "played"})
	require.NoError(t, err)

	docs, err := store.Query(ctx, "matches", docstore.Where("groupId", docstore.OpEqual, "g1"))
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.Query(ctx, "matches",
		docstore.Where("groupId", docstore.OpEqual, "g1"),
		docstore.Where("status", docstore.OpEqual, "played"),
	)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = store.Query(ctx, "matches", docstore.Where("groupId", docstore.OpIn, []string{"g1", "g2"}))
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestQueryArrayContains(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "groups", map[string]any{"members": []string{"u1", "u2"}})
	require.NoError(t, err)
	_, err = store.Create(ctx, "groups", map[string]any{"members": []string{"u3"}})
	require.NoError(t, err)

	docs, err := store.Query(ctx, "groups", docstore.Where("members", docstore.OpArrayContains, "u2"))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdateDottedPath(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "groups", map[string]any{"name": "g", "jerseyNumbers": map[string]any{"p1": 10}})
	require.NoError(t, err)

	err = store.Update(ctx, "groups", id, map[string]any{"jerseyNumbers.p2": 7})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "groups", id)
	require.NoError(t, err)
	numbers := doc.Fields["jerseyNumbers"].(map[string]any)
	assert.Equal(t, float64(10), numbers["p1"])
	assert.Equal(t, float64(7), numbers["p2"])
	assert.Equal(t, "g", doc.Fields["name"])
}

func TestUpdateNestedPathCreatesMaps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "matches", map[string]any{"groupId": "g1"})
	require.NoError(t, err)

	err = store.Update(ctx, "matches", id, map[string]any{"ratings.p1.voter1": 8})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "matches", id)
	require.NoError(t, err)
	ratings := doc.Fields["ratings"].(map[string]any)
	votes := ratings["p1"].(map[string]any)
	assert.Equal(t, float64(8), votes["voter1"])
}

func TestArrayUnionAndRemove(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "groups", map[string]any{"members": []string{"u1"}})
	require.NoError(t, err)

	err = store.Update(ctx, "groups", id, map[string]any{"members": docstore.ArrayUnion("u2", "u1")})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "groups", id)
	require.NoError(t, err)
	assert.Equal(t, []any{"u1", "u2"}, doc.Fields["members"])

	err = store.Update(ctx, "groups", id, map[string]any{"members": docstore.ArrayRemove("u1")})
	require.NoError(t, err)

	doc, err = store.Get(ctx, "groups", id)
	require.NoError(t, err)
	assert.Equal(t, []any{"u2"}, doc.Fields["members"])
}

func TestUpdateMissingDocument(t *testing.T) {
	store := setupTestStore(t)

	err := store.Update(context.Background(), "groups", "nope", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSubscribePushesSnapshots(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var snapshots [][]docstore.Document
	unsubscribe := store.Subscribe("matches", []docstore.Filter{
		docstore.Where("groupId", docstore.OpEqual, "g1"),
	}, func(docs []docstore.Document) {
		snapshots = append(snapshots, docs)
	})
	defer unsubscribe()

	// Initial delivery with the empty result set.
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	_, err := store.Create(ctx, "matches", map[string]any{"groupId": "g1"})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 1)

	// Writes to other groups still trigger delivery, but the filtered result
	// set does not grow.
	_, err = store.Create(ctx, "matches", map[string]any{"groupId": "g2"})
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[2], 1)

	unsubscribe()
	_, err = store.Create(ctx, "matches", map[string]any{"groupId": "g1"})
	require.NoError(t, err)
	assert.Len(t, snapshots, 3)
}

func TestDataToRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	fields, err := docstore.FieldsOf(payload{Name: "x", Count: 3})
	require.NoError(t, err)

	id, err := store.Create(ctx, "misc", fields)
	require.NoError(t, err)

	doc, err := store.Get(ctx, "misc", id)
	require.NoError(t, err)

	var got payload
	require.NoError(t, doc.DataTo(&got))
	assert.Equal(t, payload{Name: "x", Count: 3}, got)
}
