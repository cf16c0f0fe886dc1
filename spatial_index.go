package weights

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent pads degenerate boxes; rtreego rejects zero-length sides
const minExtent = 1e-9

// indexEntry wraps an object index for R-tree storage
type indexEntry struct {
	Index int
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *indexEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SpatialIndex answers window and nearest-neighbour queries over objects,
// either by centroid or by boundary extent.
type SpatialIndex struct {
	tree      *rtreego.Rtree
	centroids []orb.Point
}

// newCentroidIndex indexes every centroid as a tiny box
func newCentroidIndex(centroids []orb.Point) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	for i, c := range centroids {
		tree.Insert(&indexEntry{
			Index: i,
			BBox:  rtreego.Point{c[0], c[1]}.ToRect(minExtent),
		})
	}
	return &SpatialIndex{tree: tree, centroids: centroids}
}

// newBoundsIndex indexes the bounding box of every geometry
func newBoundsIndex(geoms []orb.Geometry) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i, g := range geoms {
		tree.Insert(&indexEntry{Index: i, BBox: boundToRect(g.Bound(), 0)})
	}
	return &SpatialIndex{tree: tree}
}

// QueryRegion returns the indices whose boxes intersect the bound padded by margin
func (si *SpatialIndex) QueryRegion(b orb.Bound, margin float64) []int {
	results := si.tree.SearchIntersect(boundToRect(b, margin))
	out := make([]int, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*indexEntry).Index)
	}
	sort.Ints(out)
	return out
}

// candidate is an object at a centroid distance from a query node
type candidate struct {
	index int
	dist  float64
}

// WithinDistance returns every other object whose centroid lies within
// radius of node i, ordered by (distance, index).
func (si *SpatialIndex) WithinDistance(i int, radius float64) []candidate {
	c := si.centroids[i]
	b := orb.Bound{Min: c, Max: c}
	var out []candidate
	for _, j := range si.QueryRegion(b, radius) {
		if j == i {
			continue
		}
		if d := Distance(c, si.centroids[j]); d <= radius {
			out = append(out, candidate{index: j, dist: d})
		}
	}
	sortCandidates(out)
	return out
}

// Nearest returns the k objects closest to node i, excluding i itself.
// Equidistant candidates resolve to the lower index.
func (si *SpatialIndex) Nearest(i, k int) []candidate {
	c := si.centroids[i]
	// R-tree neighbours are ranked by box distance; use them only to find a
	// radius that is guaranteed to hold the true k nearest.
	radius := 0.0
	found := 0
	for _, item := range si.tree.NearestNeighbors(k+1, rtreego.Point{c[0], c[1]}) {
		if item == nil {
			continue
		}
		j := item.(*indexEntry).Index
		if j == i {
			continue
		}
		found++
		radius = math.Max(radius, Distance(c, si.centroids[j]))
	}
	if found < k {
		radius = math.Inf(1)
	}

	var cands []candidate
	if math.IsInf(radius, 1) {
		for j := range si.centroids {
			if j != i {
				cands = append(cands, candidate{index: j, dist: Distance(c, si.centroids[j])})
			}
		}
		sortCandidates(cands)
	} else {
		cands = si.WithinDistance(i, radius)
	}
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}

func sortCandidates(cs []candidate) {
	sort.Slice(cs, func(a, b int) bool {
		if cs[a].dist != cs[b].dist {
			return cs[a].dist < cs[b].dist
		}
		return cs[a].index < cs[b].index
	})
}

// boundToRect converts a bound to an rtreego.Rect padded by margin
func boundToRect(b orb.Bound, margin float64) rtreego.Rect {
	w := math.Max(b.Max[0]-b.Min[0]+2*margin, minExtent)
	h := math.Max(b.Max[1]-b.Min[1]+2*margin, minExtent)
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min[0] - margin, b.Min[1] - margin},
		[]float64{w, h},
	)
	if err != nil {
		// unreachable: both lengths are positive
		return rtreego.Point{b.Min[0], b.Min[1]}.ToRect(minExtent)
	}
	return rect
}
