package store

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weights "spatial-weights"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleGraph(t *testing.T) *weights.Graph {
	t.Helper()
	objs := []weights.Object{
		weights.NewFeature("a", orb.Point{0, 0}, nil),
		weights.NewFeature("b", orb.Point{1, 0}, nil),
		weights.NewFeature("c", orb.Point{2.5, 0}, nil),
		weights.NewFeature("d", orb.Point{40, 0}, nil),
	}
	g, err := weights.Build(objs, weights.Kernel{Function: weights.Quartic, Bandwidth: 3})
	require.NoError(t, err)
	return g
}

func TestKey(t *testing.T) {
	a := Key("queen", []byte("data"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("queen", []byte("data")))
	assert.NotEqual(t, a, Key("rook", []byte("data")))
	assert.NotEqual(t, a, Key("queen", []byte("data2")))
	// input boundaries are part of the fingerprint
	assert.NotEqual(t, Key("q", []byte("ab"), []byte("c")), Key("q", []byte("a"), []byte("bc")))
}

func TestPutGet(t *testing.T) {
	db := openTemp(t)
	g := sampleGraph(t)
	key := Key(g.Rule, []byte("input"))

	_, err := db.Get(key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Put(key, g))
	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, g.IDs, got.IDs)
	assert.Equal(t, g.Neighbours, got.Neighbours)
	assert.Equal(t, g.Weights, got.Weights)
	assert.Equal(t, g.Rule, got.Rule)
	assert.Equal(t, g.Transform, got.Transform)
	assert.Equal(t, []int{3}, got.Islands())
}

func TestPutReplaces(t *testing.T) {
	db := openTemp(t)
	g := sampleGraph(t)
	require.NoError(t, db.Put("k", g))

	r, err := weights.Transform(g, weights.TransformRow)
	require.NoError(t, err)
	require.NoError(t, db.Put("k", r))

	got, err := db.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "R", got.Transform)
	assert.Equal(t, r.Weights, got.Weights)

	entries, err := db.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListDelete(t *testing.T) {
	db := openTemp(t)
	g := sampleGraph(t)
	require.NoError(t, db.Put("one", g))
	require.NoError(t, db.Put("two", g))

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	keys := []string{entries[0].Key, entries[1].Key}
	assert.ElementsMatch(t, []string{"one", "two"}, keys)
	assert.Equal(t, 4, entries[0].Nodes)
	assert.Equal(t, g.Rule, entries[0].Rule)

	require.NoError(t, db.Delete("one"))
	_, err = db.Get("one")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.Delete("one"), ErrNotFound)

	_, err = db.Get("two")
	require.NoError(t, err)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	g := sampleGraph(t)
	require.NoError(t, db.Put("k", g))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get("k")
	require.NoError(t, err)
	assert.Equal(t, g.Neighbours, got.Neighbours)
}
