package weights_test

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weights "spatial-weights"
)

func TestContiguityLattice(t *testing.T) {
	objs := lattice(3, 3)

	tests := []struct {
		name   string
		rule   weights.Rule
		corner []int
		centre []int
	}{
		{"queen", weights.Queen{}, []int{1, 3, 4}, []int{0, 1, 2, 3, 5, 6, 7, 8}},
		{"rook", weights.Rook{}, []int{1, 3}, []int{1, 3, 5, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, objs, tt.rule)
			assert.Equal(t, tt.name, g.Rule)
			assert.Equal(t, tt.corner, g.NeighboursOf(0))
			assert.Equal(t, tt.centre, g.NeighboursOf(4))
			assert.True(t, g.IsSymmetric())
			assert.Empty(t, g.Islands())
			requireNoSelfLoops(t, g)
		})
	}
}

func TestContiguityIgnoresDistantPolygons(t *testing.T) {
	objs := []weights.Object{square("a", 0, 0), square("b", 1, 0), square("c", 5, 5)}
	g := build(t, objs, weights.Queen{})
	assert.Equal(t, []int{2}, g.Islands())
	assert.True(t, g.HasEdge(0, 1))
}

func TestRookNeedsSharedEdge(t *testing.T) {
	// a and b meet at a single corner
	objs := []weights.Object{square("a", 0, 0), square("b", 1, 1)}
	assert.Equal(t, 2, build(t, objs, weights.Queen{}).NumEdges())
	assert.Equal(t, 0, build(t, objs, weights.Rook{}).NumEdges())
}

func TestContiguityMultiPolygon(t *testing.T) {
	left := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	far := orb.Ring{{10, 0}, {11, 0}, {11, 1}, {10, 1}, {10, 0}}
	mp := weights.NewFeature("mp", orb.MultiPolygon{{left}, {far}}, nil)
	objs := []weights.Object{mp, square("b", 11, 0), square("c", 5, 5)}

	g := build(t, objs, weights.Rook{})
	assert.True(t, g.HasEdge(0, 1))
	assert.Equal(t, []int{2}, g.Islands())
}

func TestBuildErrors(t *testing.T) {
	geographic := weights.WithCRS(weights.CRS{Name: "urn:ogc:def:crs:EPSG::4326"})
	empty := weights.NewFeature("empty", orb.Polygon{}, nil)

	tests := []struct {
		name string
		objs []weights.Object
		rule weights.Rule
		opts []weights.Option
		want error
	}{
		{"nil rule", lattice(1, 2), nil, nil, weights.ErrInvalidParameter},
		{"nil object", []weights.Object{square("a", 0, 0), nil}, weights.Queen{}, nil, weights.ErrNilObject},
		{"duplicate id", []weights.Object{square("a", 0, 0), square("a", 1, 0)}, weights.Queen{}, nil, weights.ErrDuplicateID},
		{"points under queen", points([2]float64{0, 0}, [2]float64{1, 0}), weights.Queen{}, nil, weights.ErrNotPolygonal},
		{"points under rook", points([2]float64{0, 0}, [2]float64{1, 0}), weights.Rook{}, nil, weights.ErrNotPolygonal},
		{"knn geographic", lattice(2, 2), weights.KNN{K: 1}, []weights.Option{geographic}, weights.ErrNonMetricCRS},
		{"band geographic", lattice(2, 2), weights.DistanceBand{Threshold: 1, Binary: true}, []weights.Option{geographic}, weights.ErrNonMetricCRS},
		{"kernel geographic", lattice(2, 2), weights.Kernel{Bandwidth: 2}, []weights.Option{geographic}, weights.ErrNonMetricCRS},
		{"knn no centroid", []weights.Object{square("a", 0, 0), square("b", 1, 0), empty}, weights.KNN{K: 1}, nil, weights.ErrNoCentroid},
		{"knn k zero", lattice(2, 2), weights.KNN{K: 0}, nil, weights.ErrInvalidParameter},
		{"knn k too large", lattice(2, 2), weights.KNN{K: 4}, nil, weights.ErrInvalidParameter},
		{"negative threshold", lattice(2, 2), weights.DistanceBand{Threshold: -1}, nil, weights.ErrInvalidParameter},
		{"unknown kernel", lattice(2, 2), weights.Kernel{Function: "cosine", Bandwidth: 1}, nil, weights.ErrInvalidParameter},
		{"negative bandwidth", lattice(2, 2), weights.Kernel{Bandwidth: -1}, nil, weights.ErrInvalidParameter},
		{"too few labels", lattice(2, 2), weights.Block{Labels: []string{"a", "a"}}, nil, weights.ErrLabelsMismatch},
		{"empty label", lattice(1, 2), weights.Block{Labels: []string{"a", ""}}, nil, weights.ErrLabelsMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := weights.Build(tt.objs, tt.rule, tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestContiguityAcceptsGeographicCRS(t *testing.T) {
	g := build(t, lattice(2, 2), weights.Queen{}, weights.WithCRS(weights.CRS{Name: "EPSG:4326"}))
	assert.Equal(t, 12, g.NumEdges())
}

func TestCRSGeographic(t *testing.T) {
	assert.True(t, weights.CRS{Name: "urn:ogc:def:crs:OGC:1.3:CRS84"}.Geographic())
	assert.True(t, weights.CRS{Name: "epsg:4326"}.Geographic())
	assert.False(t, weights.CRS{Name: "EPSG:3857"}.Geographic())
	assert.False(t, weights.CRS{}.Geographic())
}

func TestKNNTieBreakAndAsymmetry(t *testing.T) {
	// b and c are equidistant from a
	objs := points([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{-1, 0})
	g := build(t, objs, weights.KNN{K: 1})

	assert.Equal(t, []int{1}, g.NeighboursOf(0))
	assert.Equal(t, []int{0}, g.NeighboursOf(1))
	assert.Equal(t, []int{0}, g.NeighboursOf(2))
	assert.True(t, g.HasEdge(2, 0))
	assert.False(t, g.HasEdge(0, 2))
	assert.False(t, g.IsSymmetric())
	assert.Equal(t, "knn(k=1)", g.Rule)
	requireNoSelfLoops(t, g)
}

func TestKNNCardinality(t *testing.T) {
	g := build(t, lattice(4, 4), weights.KNN{K: 3})
	for _, c := range g.Cardinalities() {
		assert.Equal(t, 3, c)
	}
	requireNoSelfLoops(t, g)
}

func TestDistanceBand(t *testing.T) {
	objs := points([2]float64{0, 0}, [2]float64{2, 0}, [2]float64{4, 0}, [2]float64{20, 0})

	binary := build(t, objs, weights.DistanceBand{Threshold: 2.5, Binary: true})
	assert.Equal(t, []int{1}, binary.NeighboursOf(0))
	assert.Equal(t, []int{0, 2}, binary.NeighboursOf(1))
	assert.Equal(t, []int{3}, binary.Islands())
	assert.True(t, binary.IsSymmetric())
	requireNoSelfLoops(t, binary)

	inverse := build(t, objs, weights.DistanceBand{Threshold: 2.5})
	assert.InDelta(t, 0.5, inverse.Weight(0, 1), 1e-12)
	assert.True(t, inverse.IsSymmetric())

	squared := build(t, objs, weights.DistanceBand{Threshold: 2.5, Alpha: -2})
	assert.InDelta(t, 0.25, squared.Weight(1, 2), 1e-12)
}

func TestDistanceBandIncludesThreshold(t *testing.T) {
	objs := points([2]float64{0, 0}, [2]float64{3, 4})
	g := build(t, objs, weights.DistanceBand{Threshold: 5, Binary: true})
	assert.True(t, g.HasEdge(0, 1))
}

func TestDistanceBandCoincidentInverse(t *testing.T) {
	objs := points([2]float64{0, 0}, [2]float64{0, 0})
	_, err := weights.Build(objs, weights.DistanceBand{Threshold: 1})
	require.ErrorIs(t, err, weights.ErrInvalidParameter)

	g := build(t, objs, weights.DistanceBand{Threshold: 1, Binary: true})
	assert.True(t, g.HasEdge(0, 1))
}

func TestMinThreshold(t *testing.T) {
	objs := points([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{3, 0})
	d, err := weights.MinThreshold(objs)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	g := build(t, objs, weights.DistanceBand{Threshold: d, Binary: true})
	assert.Empty(t, g.Islands())

	_, err = weights.MinThreshold(objs[:1])
	require.ErrorIs(t, err, weights.ErrInvalidParameter)
}

func TestBlock(t *testing.T) {
	objs := lattice(1, 5)
	g := build(t, objs, weights.Block{Labels: []string{"a", "a", "b", "b", "c"}})

	assert.Equal(t, []int{1}, g.NeighboursOf(0))
	assert.Equal(t, []int{2}, g.NeighboursOf(3))
	assert.Equal(t, []int{4}, g.Islands())
	assert.True(t, g.IsSymmetric())
	requireNoSelfLoops(t, g)
}

func TestLabelsFromProperty(t *testing.T) {
	fs := []*weights.Feature{
		weights.NewFeature("a", orb.Point{0, 0}, map[string]any{"region": "north"}),
		weights.NewFeature("b", orb.Point{1, 0}, map[string]any{"region": 7.0}),
		weights.NewFeature("c", orb.Point{2, 0}, map[string]any{}),
	}
	assert.Equal(t, []string{"north", "7", ""}, weights.LabelsFromProperty(fs, "region"))

	_, err := weights.Build(weights.Features(fs), weights.Block{Labels: weights.LabelsFromProperty(fs, "region")})
	require.ErrorIs(t, err, weights.ErrLabelsMismatch)
}

func TestSymmetryByRule(t *testing.T) {
	objs := lattice(3, 4)
	labels := make([]string, len(objs))
	for i := range labels {
		labels[i] = string(rune('a' + i%3))
	}
	for _, rule := range []weights.Rule{
		weights.Queen{},
		weights.Rook{},
		weights.DistanceBand{Threshold: 1.5, Binary: true},
		weights.DistanceBand{Threshold: 2.2},
		weights.Block{Labels: labels},
	} {
		t.Run(rule.Name(), func(t *testing.T) {
			g := build(t, objs, rule)
			assert.True(t, g.IsSymmetric())
			requireNoSelfLoops(t, g)
		})
	}
}

func TestNodeOrderFollowsInput(t *testing.T) {
	objs := lattice(2, 3)
	g := build(t, objs, weights.KNN{K: 2})
	for i, obj := range objs {
		assert.Equal(t, obj.ID(), g.IDs[i])
		idx, ok := g.Index(obj.ID())
		assert.True(t, ok)
		assert.Equal(t, i, idx)
		assert.True(t, sort.IntsAreSorted(g.NeighboursOf(i)))
	}
	_, ok := g.Index("missing")
	assert.False(t, ok)
}
