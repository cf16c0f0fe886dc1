package weights_test

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	weights "spatial-weights"
)

// square returns the unit square with lower-left corner (x, y)
func square(id string, x, y float64) *weights.Feature {
	ring := orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}
	return weights.NewFeature(id, orb.Polygon{ring}, nil)
}

func point(id string, x, y float64) *weights.Feature {
	return weights.NewFeature(id, orb.Point{x, y}, nil)
}

// lattice lays out rows x cols unit squares in row-major order, ids "r<row>c<col>"
func lattice(rows, cols int) []weights.Object {
	objs := make([]weights.Object, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			objs = append(objs, square(fmt.Sprintf("r%dc%d", r, c), float64(c), float64(r)))
		}
	}
	return objs
}

// path lays out n squares in a row with ids "1".."n"
func path(n int) []weights.Object {
	objs := make([]weights.Object, n)
	for i := range objs {
		objs[i] = square(fmt.Sprint(i+1), float64(i), 0)
	}
	return objs
}

func points(xy ...[2]float64) []weights.Object {
	objs := make([]weights.Object, len(xy))
	for i, p := range xy {
		objs[i] = point(string(rune('a'+i)), p[0], p[1])
	}
	return objs
}

func build(t *testing.T, objs []weights.Object, rule weights.Rule, opts ...weights.Option) *weights.Graph {
	t.Helper()
	g, err := weights.Build(objs, rule, opts...)
	require.NoError(t, err)
	return g
}

func requireNoSelfLoops(t *testing.T, g *weights.Graph) {
	t.Helper()
	for i := 0; i < g.N(); i++ {
		require.False(t, g.HasEdge(i, i), "self loop on %s", g.IDs[i])
	}
}
