package autocorr

import (
	"fmt"

	weights "spatial-weights"
)

// Quadrant places an observation on the Moran scatterplot
type Quadrant int

const (
	HighHigh Quadrant = 1
	LowHigh  Quadrant = 2
	LowLow   Quadrant = 3
	HighLow  Quadrant = 4
)

func (q Quadrant) String() string {
	switch q {
	case HighHigh:
		return "HH"
	case LowHigh:
		return "LH"
	case LowLow:
		return "LL"
	case HighLow:
		return "HL"
	}
	return "?"
}

// LocalResult holds one local Moran statistic per node
type LocalResult struct {
	Is        []float64  `json:"is"`
	Quadrants []Quadrant `json:"quadrants"`
	// PSim is the conditional-permutation pseudo p-value per node, nil when
	// Permutations is zero. Islands get 1.
	PSim         []float64 `json:"p_sim,omitempty"`
	Permutations int       `json:"permutations"`
}

// Significant returns the node indices with PSim <= alpha
func (r *LocalResult) Significant(alpha float64) []int {
	var out []int
	for i, p := range r.PSim {
		if p <= alpha {
			out = append(out, i)
		}
	}
	return out
}

// Clusters labels each node by quadrant when significant at alpha and
// "ns" otherwise.
func (r *LocalResult) Clusters(alpha float64) []string {
	out := make([]string, len(r.Is))
	for i := range out {
		out[i] = "ns"
		if r.PSim != nil && r.PSim[i] <= alpha {
			out[i] = r.Quadrants[i].String()
		}
	}
	return out
}

// LocalMoran decomposes Moran's I into one Ii per node:
// Ii = z_i * sum_j w_ij z_j / m2 with m2 = sum z^2 / n.
// With this scaling the Ii average to the global I. Tools that divide by
// sum z^2 / (n-1) instead report every Ii larger by a factor n/(n-1);
// the pseudo p-values are identical under either scaling.
// Inference holds y_i fixed and redraws its neighbours from the other
// observations.
func LocalMoran(g *weights.Graph, y []float64, opts Options) (*LocalResult, error) {
	n := g.N()
	if len(y) != n {
		return nil, fmt.Errorf("%d values for %d nodes: %w", len(y), n, weights.ErrLengthMismatch)
	}
	if n < 3 {
		return nil, ErrTooFewObservations
	}
	z, ss := deviations(y)
	if ss == 0 {
		return nil, ErrConstant
	}
	m2 := ss / float64(n)

	lag, err := g.Lag(z)
	if err != nil {
		return nil, err
	}
	res := &LocalResult{
		Is:        make([]float64, n),
		Quadrants: make([]Quadrant, n),
	}
	for i := range z {
		res.Is[i] = z[i] * lag[i] / m2
		res.Quadrants[i] = quadrant(z[i], lag[i])
	}

	perms := opts.permutations()
	if perms == 0 {
		return res, nil
	}
	res.Permutations = perms
	res.PSim = make([]float64, n)
	rng := opts.rng()
	others := make([]int, 0, n-1)
	sims := make([]float64, perms)
	for i := 0; i < n; i++ {
		row := g.Neighbours[i]
		if len(row) == 0 {
			res.PSim[i] = 1
			continue
		}
		others = others[:0]
		for j := 0; j < n; j++ {
			if j != i {
				others = append(others, j)
			}
		}
		for p := range sims {
			// partial Fisher-Yates: the first len(row) slots are the draw
			for k := range row {
				r := k + rng.IntN(len(others)-k)
				others[k], others[r] = others[r], others[k]
			}
			simLag := 0.0
			for k := range row {
				simLag += g.Weights[i][k] * z[others[k]]
			}
			sims[p] = z[i] * simLag / m2
		}
		res.PSim[i] = foldedPseudoP(res.Is[i], sims)
	}
	return res, nil
}

func quadrant(z, lag float64) Quadrant {
	switch {
	case z > 0 && lag > 0:
		return HighHigh
	case z <= 0 && lag > 0:
		return LowHigh
	case z <= 0 && lag <= 0:
		return LowLow
	}
	return HighLow
}
