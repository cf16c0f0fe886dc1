package render

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weights "spatial-weights"
)

func knnTriple(t *testing.T) (*weights.Graph, []weights.Object) {
	t.Helper()
	objs := []weights.Object{
		weights.NewFeature("a", orb.Point{0, 0}, nil),
		weights.NewFeature("b", orb.Point{1, 0}, nil),
		weights.NewFeature("c", orb.Point{-1, 0}, nil),
	}
	g, err := weights.Build(objs, weights.KNN{K: 1})
	require.NoError(t, err)
	return g, objs
}

func TestToDOT(t *testing.T) {
	g, objs := knnTriple(t)
	dot, err := ToDOT(g, objs, Options{Width: 4})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dot, "digraph W {"))
	assert.Contains(t, dot, `"a" -> "b" [dir=none];`)
	assert.NotContains(t, dot, `"b" -> "a"`)
	assert.Contains(t, dot, `"c" -> "a";`)
	// c is the leftmost centroid and b spans the 4 inch width
	assert.Contains(t, dot, `"c" [pos="0.0000,0.0000!", label=""];`)
	assert.Contains(t, dot, `"b" [pos="4.0000,0.0000!", label=""];`)
	assert.Contains(t, dot, "shape=point")
}

func TestToDOTLabelsAndComponents(t *testing.T) {
	g, objs := knnTriple(t)
	c := weights.ConnectedComponents(g)
	dot, err := ToDOT(g, objs, Options{Labels: true, Components: &c})
	require.NoError(t, err)

	assert.Contains(t, dot, "shape=circle")
	assert.NotContains(t, dot, `label=""`)
	assert.Contains(t, dot, `color="#1f77b4"`)
}

func TestToDOTSkipsMissingCentroids(t *testing.T) {
	objs := []weights.Object{
		weights.NewFeature("a", orb.Point{0, 0}, nil),
		weights.NewFeature("b", orb.Point{1, 0}, nil),
		weights.NewFeature("ghost", orb.Polygon{}, nil),
	}
	g, err := weights.Build(objs, weights.Block{Labels: []string{"x", "x", "x"}})
	require.NoError(t, err)

	dot, err := ToDOT(g, objs, Options{})
	require.NoError(t, err)
	assert.NotContains(t, dot, "ghost")
	assert.Contains(t, dot, `"a" -> "b" [dir=none];`)

	_, err = ToDOT(g, objs[:2], Options{})
	require.ErrorIs(t, err, weights.ErrLengthMismatch)
}

func TestRenderSVG(t *testing.T) {
	g, objs := knnTriple(t)
	dot, err := ToDOT(g, objs, Options{Labels: true})
	require.NoError(t, err)

	svg, err := RenderSVG(context.Background(), dot)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), "digraph {")
	require.Error(t, err)
}
