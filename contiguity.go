package weights

import "github.com/paulmach/orb"

// Queen links polygons sharing at least one boundary vertex
type Queen struct{}

// Rook links polygons sharing at least one boundary edge
type Rook struct{}

func (Queen) Name() string { return "queen" }
func (Rook) Name() string  { return "rook" }

func (Queen) build(p *prepared, o *options) (*Graph, error) {
	return contiguity(p, o, "queen", func(a, b int, c *contiguityCache) bool {
		return sharesAny(c.vertices(a), c.vertices(b))
	})
}

func (Rook) build(p *prepared, o *options) (*Graph, error) {
	return contiguity(p, o, "rook", func(a, b int, c *contiguityCache) bool {
		return sharesAny(c.segments(a), c.segments(b))
	})
}

// contiguityCache lazily extracts vertex and edge sets per polygon
type contiguityCache struct {
	vert []map[orb.Point]struct{}
	seg  []map[Segment]struct{}
	src  *prepared
}

func (c *contiguityCache) vertices(i int) map[orb.Point]struct{} {
	if c.vert[i] == nil {
		c.vert[i] = vertices(c.src.objects[i].Boundary())
	}
	return c.vert[i]
}

func (c *contiguityCache) segments(i int) map[Segment]struct{} {
	if c.seg[i] == nil {
		c.seg[i] = segments(c.src.objects[i].Boundary())
	}
	return c.seg[i]
}

// contiguity tests every pair whose bounding boxes touch. Each unordered
// pair is evaluated once and written both ways, so the result is symmetric.
func contiguity(p *prepared, o *options, rule string, touches func(a, b int, c *contiguityCache) bool) (*Graph, error) {
	geoms, err := p.requirePolygons()
	if err != nil {
		return nil, err
	}
	n := len(geoms)
	idx := newBoundsIndex(geoms)
	cache := &contiguityCache{
		vert: make([]map[orb.Point]struct{}, n),
		seg:  make([]map[Segment]struct{}, n),
		src:  p,
	}

	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}

	checked := 0
	for i, g := range geoms {
		for _, j := range idx.QueryRegion(g.Bound(), minExtent) {
			if j <= i {
				continue
			}
			checked++
			if touches(i, j, cache) {
				adj[i][j] = 1
				adj[j][i] = 1
			}
		}
	}
	o.logger.Debug("contiguity candidates checked", "rule", rule, "pairs", checked)

	return fromAdjacency(p.ids, rule, adj), nil
}

func sharesAny[K comparable](a, b map[K]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
