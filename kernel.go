package weights

import (
	"fmt"
	"math"
	"strings"
)

// KernelFunc names a distance-decay function
type KernelFunc string

const (
	Triangular KernelFunc = "triangular"
	Uniform    KernelFunc = "uniform"
	Quadratic  KernelFunc = "quadratic"
	Quartic    KernelFunc = "quartic"
	Gaussian   KernelFunc = "gaussian"
)

// bandwidthStretch keeps the k-th neighbour strictly inside a derived window
const bandwidthStretch = 1.0000001

// Kernel weights every object within a bandwidth window of a node by a
// decaying function of distance. A positive Bandwidth is used as-is;
// otherwise Adaptive derives a per-node bandwidth from the distance to the
// K-th nearest neighbour, and the fixed fallback is the largest such distance.
type Kernel struct {
	Function  KernelFunc
	Bandwidth float64
	K         int
	Adaptive  bool
}

func (r Kernel) Name() string {
	switch {
	case r.Bandwidth > 0:
		return fmt.Sprintf("kernel(%s, bandwidth=%g)", r.function(), r.Bandwidth)
	case r.Adaptive:
		return fmt.Sprintf("kernel(%s, adaptive, k=%d)", r.function(), r.k())
	}
	return fmt.Sprintf("kernel(%s, k=%d)", r.function(), r.k())
}

func (r Kernel) function() KernelFunc {
	if r.Function == "" {
		return Triangular
	}
	return KernelFunc(strings.ToLower(string(r.Function)))
}

func (r Kernel) k() int {
	if r.K == 0 {
		return 2
	}
	return r.K
}

// Valid reports whether f names a known kernel
func (f KernelFunc) Valid() bool {
	switch f {
	case Triangular, Uniform, Quadratic, Quartic, Gaussian:
		return true
	}
	return false
}

// Evaluate returns the kernel weight at normalized distance z = d/bandwidth.
// Weights are nonincreasing in z and zero for z >= 1.
func (f KernelFunc) Evaluate(z float64) (float64, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("kernel %q: %w", string(f), ErrInvalidParameter)
	}
	if z < 0 || z >= 1 {
		return 0, nil
	}
	switch f {
	case Triangular:
		return 1 - z, nil
	case Uniform:
		return 0.5, nil
	case Quadratic:
		return 0.75 * (1 - z*z), nil
	case Quartic:
		u := 1 - z*z
		return (15.0 / 16.0) * u * u, nil
	default: // Gaussian
		return math.Exp(-z*z/2) / math.Sqrt(2*math.Pi), nil
	}
}

func (r Kernel) build(p *prepared, o *options) (*Graph, error) {
	fn := r.function()
	if !fn.Valid() {
		return nil, fmt.Errorf("kernel %q: %w", string(fn), ErrInvalidParameter)
	}
	n := len(p.ids)
	if r.Bandwidth < 0 || math.IsNaN(r.Bandwidth) {
		return nil, fmt.Errorf("bandwidth %g: %w", r.Bandwidth, ErrInvalidParameter)
	}
	if r.Bandwidth == 0 && (r.k() < 1 || r.k() >= n) {
		return nil, fmt.Errorf("k=%d with %d objects: %w", r.k(), n, ErrInvalidParameter)
	}
	if err := p.requireMetric(o); err != nil {
		return nil, err
	}

	idx := newCentroidIndex(p.centroids)
	bw := make([]float64, n)
	switch {
	case r.Bandwidth > 0:
		for i := range bw {
			bw[i] = r.Bandwidth
		}
	default:
		widest := 0.0
		for i := range bw {
			nn := idx.Nearest(i, r.k())
			bw[i] = nn[len(nn)-1].dist * bandwidthStretch
			widest = math.Max(widest, bw[i])
		}
		if !r.Adaptive {
			for i := range bw {
				bw[i] = widest
			}
		}
	}

	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
		if bw[i] == 0 {
			continue
		}
		for _, c := range idx.WithinDistance(i, bw[i]) {
			w, _ := fn.Evaluate(c.dist / bw[i])
			if w > 0 {
				adj[i][c.index] = w
			}
		}
	}
	o.logger.Debug("kernel bandwidths resolved", "function", fn, "adaptive", r.Adaptive && r.Bandwidth == 0)
	return fromAdjacency(p.ids, r.Name(), adj), nil
}
