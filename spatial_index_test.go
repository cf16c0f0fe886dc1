package weights

import (
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bruteNearest(cs []orb.Point, i, k int) []candidate {
	var all []candidate
	for j, c := range cs {
		if j != i {
			all = append(all, candidate{index: j, dist: Distance(cs[i], c)})
		}
	}
	sortCandidates(all)
	return all[:k]
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	// integer coordinates produce plenty of exact ties
	cs := make([]orb.Point, 200)
	for i := range cs {
		cs[i] = orb.Point{float64(rng.IntN(20)), float64(rng.IntN(20))}
	}
	idx := newCentroidIndex(cs)

	for _, k := range []int{1, 4, 9} {
		for i := range cs {
			require.Equal(t, bruteNearest(cs, i, k), idx.Nearest(i, k), "node %d k=%d", i, k)
		}
	}
}

func TestWithinDistance(t *testing.T) {
	cs := []orb.Point{{0, 0}, {3, 4}, {1, 0}, {0, 6}, {-1, 0}}
	idx := newCentroidIndex(cs)

	got := idx.WithinDistance(0, 5)
	assert.Equal(t, []candidate{{2, 1}, {4, 1}, {1, 5}}, got)
	assert.Empty(t, idx.WithinDistance(3, 0.5))
}

func TestQueryRegionTouchingBounds(t *testing.T) {
	geoms := []orb.Geometry{
		orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}},
		orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{2, 1}},
		orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{6, 6}},
	}
	idx := newBoundsIndex(geoms)
	assert.Equal(t, []int{0, 1}, idx.QueryRegion(geoms[0].Bound(), minExtent))
	assert.Equal(t, []int{2}, idx.QueryRegion(geoms[2].Bound(), minExtent))
}

func TestSegmentsCloseOpenRings(t *testing.T) {
	open := orb.Ring{{0, 0}, {1, 0}, {1, 1}}
	closed := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	assert.Equal(t, segments(open), segments(closed))
	assert.Len(t, segments(closed), 3)
	assert.Contains(t, segments(closed), newSegment(orb.Point{1, 1}, orb.Point{0, 0}))
}

func TestNewFeatureCentroid(t *testing.T) {
	f := NewFeature("sq", orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}, nil)
	c, ok := f.Centroid()
	require.True(t, ok)
	assert.InDelta(t, 1.0, c[0], 1e-12)
	assert.InDelta(t, 1.0, c[1], 1e-12)

	for name, g := range map[string]orb.Geometry{
		"nil":           nil,
		"empty polygon": orb.Polygon{},
		"empty ring":    orb.Polygon{{}},
	} {
		_, ok := NewFeature(name, g, nil).Centroid()
		assert.False(t, ok, name)
	}
}
