package weights

import (
	"fmt"
	"math"
)

// DistanceBand links objects whose centroids lie within Threshold of each other.
// With Binary unset, edges carry inverse-distance weights d^Alpha; Alpha
// defaults to -1.
type DistanceBand struct {
	Threshold float64
	Binary    bool
	Alpha     float64
}

// KNN links every object to its K nearest other objects by centroid distance.
// Equidistant candidates resolve to the lower index.
type KNN struct {
	K int
}

func (r DistanceBand) Name() string {
	if r.Binary {
		return fmt.Sprintf("distance-band(threshold=%g)", r.Threshold)
	}
	return fmt.Sprintf("distance-band(threshold=%g, alpha=%g)", r.Threshold, r.alpha())
}

func (r KNN) Name() string { return fmt.Sprintf("knn(k=%d)", r.K) }

func (r DistanceBand) alpha() float64 {
	if r.Alpha == 0 {
		return -1
	}
	return r.Alpha
}

func (r DistanceBand) build(p *prepared, o *options) (*Graph, error) {
	if r.Threshold < 0 || math.IsNaN(r.Threshold) {
		return nil, fmt.Errorf("threshold %g: %w", r.Threshold, ErrInvalidParameter)
	}
	if err := p.requireMetric(o); err != nil {
		return nil, err
	}

	idx := newCentroidIndex(p.centroids)
	adj := make([]map[int]float64, len(p.ids))
	alpha := r.alpha()
	for i := range adj {
		adj[i] = make(map[int]float64)
		for _, c := range idx.WithinDistance(i, r.Threshold) {
			if r.Binary {
				adj[i][c.index] = 1
				continue
			}
			if c.dist == 0 && alpha < 0 {
				return nil, fmt.Errorf("objects %q and %q share a centroid, inverse distance undefined: %w",
					p.ids[i], p.ids[c.index], ErrInvalidParameter)
			}
			adj[i][c.index] = math.Pow(c.dist, alpha)
		}
	}
	return fromAdjacency(p.ids, r.Name(), adj), nil
}

func (r KNN) build(p *prepared, o *options) (*Graph, error) {
	n := len(p.ids)
	if r.K < 1 || r.K >= n {
		return nil, fmt.Errorf("k=%d with %d objects: %w", r.K, n, ErrInvalidParameter)
	}
	if err := p.requireMetric(o); err != nil {
		return nil, err
	}

	idx := newCentroidIndex(p.centroids)
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64, r.K)
		for _, c := range idx.Nearest(i, r.K) {
			adj[i][c.index] = 1
		}
	}
	return fromAdjacency(p.ids, r.Name(), adj), nil
}

// MinThreshold returns the smallest distance band that leaves no island:
// the largest nearest-neighbour distance over all objects.
func MinThreshold(objects []Object, opts ...Option) (float64, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	p, err := prepare(objects)
	if err != nil {
		return 0, err
	}
	if len(p.ids) < 2 {
		return 0, fmt.Errorf("%d objects: %w", len(p.ids), ErrInvalidParameter)
	}
	if err := p.requireMetric(o); err != nil {
		return 0, err
	}
	idx := newCentroidIndex(p.centroids)
	best := 0.0
	for i := range p.ids {
		nn := idx.Nearest(i, 1)
		best = math.Max(best, nn[0].dist)
	}
	return best, nil
}
