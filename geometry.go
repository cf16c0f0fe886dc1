package weights

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Object is anything a neighbour graph can be built from: a stable
// identifier, a boundary and a centroid.
type Object interface {
	ID() string
	Boundary() orb.Geometry
	// Centroid returns false when the object has no usable centroid
	// (empty or degenerate geometry).
	Centroid() (orb.Point, bool)
}

// Feature is the Object produced by the loader
type Feature struct {
	Key        string         `json:"id"`
	Geometry   orb.Geometry   `json:"-"`
	Properties map[string]any `json:"properties,omitempty"`

	centroid    orb.Point
	hasCentroid bool
}

// NewFeature wraps a geometry and computes its centroid once
func NewFeature(key string, geom orb.Geometry, props map[string]any) *Feature {
	f := &Feature{Key: key, Geometry: geom, Properties: props}
	if geom != nil && vertexCount(geom) > 0 {
		c, _ := planar.CentroidArea(geom)
		if !math.IsNaN(c[0]) && !math.IsNaN(c[1]) &&
			!math.IsInf(c[0], 0) && !math.IsInf(c[1], 0) {
			f.centroid = c
			f.hasCentroid = true
		}
	}
	return f
}

func (f *Feature) ID() string                  { return f.Key }
func (f *Feature) Boundary() orb.Geometry      { return f.Geometry }
func (f *Feature) Centroid() (orb.Point, bool) { return f.centroid, f.hasCentroid }

// Distance calculates Euclidean distance between two centroids
func Distance(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// Segment is an undirected polygon edge with its endpoints in canonical order
type Segment struct {
	P1, P2 orb.Point
}

func newSegment(a, b orb.Point) Segment {
	if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
		a, b = b, a
	}
	return Segment{P1: a, P2: b}
}

// isPolygonal reports whether contiguity can be evaluated for g
func isPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return true
	}
	return false
}

// rings flattens every ring (outer boundaries and holes) of a polygonal geometry
func rings(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Ring:
		return []orb.Ring{v}
	case orb.Polygon:
		return []orb.Ring(v)
	case orb.MultiPolygon:
		var out []orb.Ring
		for _, p := range v {
			out = append(out, p...)
		}
		return out
	case orb.Bound:
		return []orb.Ring(v.ToPolygon())
	}
	return nil
}

// vertices returns the distinct boundary vertices of a polygonal geometry
func vertices(g orb.Geometry) map[orb.Point]struct{} {
	set := make(map[orb.Point]struct{})
	for _, r := range rings(g) {
		for _, p := range r {
			set[p] = struct{}{}
		}
	}
	return set
}

// segments returns the distinct boundary edges of a polygonal geometry.
// Rings are treated as closed whether or not the last vertex repeats the first.
func segments(g orb.Geometry) map[Segment]struct{} {
	set := make(map[Segment]struct{})
	for _, r := range rings(g) {
		n := len(r)
		if n < 2 {
			continue
		}
		for i := 0; i < n-1; i++ {
			if r[i] != r[i+1] {
				set[newSegment(r[i], r[i+1])] = struct{}{}
			}
		}
		if r[0] != r[n-1] {
			set[newSegment(r[n-1], r[0])] = struct{}{}
		}
	}
	return set
}

func vertexCount(g orb.Geometry) int {
	switch v := g.(type) {
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(v)
	case orb.LineString:
		return len(v)
	case orb.MultiLineString:
		n := 0
		for _, ls := range v {
			n += len(ls)
		}
		return n
	case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Bound:
		n := 0
		for _, r := range rings(v) {
			n += len(r)
		}
		return n
	case orb.Collection:
		n := 0
		for _, c := range v {
			n += vertexCount(c)
		}
		return n
	}
	return 0
}
