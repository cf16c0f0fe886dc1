// Package autocorr measures spatial autocorrelation of an attribute over a
// weights graph: global Moran's I and its local decomposition (LISA).
//
// Inference uses both the normal approximation and random permutations.
// Permutations draw from a seeded PCG source, so results are reproducible.
package autocorr

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	weights "spatial-weights"
)

var (
	// ErrTooFewObservations indicates fewer than three observations.
	ErrTooFewObservations = errors.New("autocorr: need at least three observations")
	// ErrConstant indicates an attribute without variance.
	ErrConstant = errors.New("autocorr: attribute is constant")
	// ErrNoWeights indicates a graph without any edge weight.
	ErrNoWeights = errors.New("autocorr: graph has no weights")
)

// DefaultPermutations matches the usual 999-draw pseudo p-value resolution
const DefaultPermutations = 999

// Options controls permutation inference
type Options struct {
	// Permutations is the number of random draws; zero disables permutation
	// inference and negative values select DefaultPermutations.
	Permutations int
	Seed         uint64
}

func (o Options) permutations() int {
	if o.Permutations < 0 {
		return DefaultPermutations
	}
	return o.Permutations
}

func (o Options) rng() *rand.Rand {
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
}

// MoranResult is a global Moran's I with its inference
type MoranResult struct {
	I        float64 `json:"i"`
	Expected float64 `json:"expected"`

	// normal approximation
	VarNorm float64 `json:"var_norm"`
	ZNorm   float64 `json:"z_norm"`
	PNorm   float64 `json:"p_norm"` // two-tailed

	// permutation inference, zero when Permutations is zero
	Permutations int       `json:"permutations"`
	PSim         float64   `json:"p_sim"`
	ZSim         float64   `json:"z_sim"`
	Simulated    []float64 `json:"-"`
}

// Moran computes global Moran's I of y over g. The graph is used as given;
// row-standardize it first with weights.Transform for the usual reading.
func Moran(g *weights.Graph, y []float64, opts Options) (*MoranResult, error) {
	n := g.N()
	if len(y) != n {
		return nil, fmt.Errorf("%d values for %d nodes: %w", len(y), n, weights.ErrLengthMismatch)
	}
	if n < 3 {
		return nil, ErrTooFewObservations
	}
	z, m2 := deviations(y)
	if m2 == 0 {
		return nil, ErrConstant
	}
	s0, s1, s2 := moments(g)
	if s0 == 0 {
		return nil, ErrNoWeights
	}

	nf := float64(n)
	res := &MoranResult{
		I:        moranI(g, z, s0, m2),
		Expected: -1 / (nf - 1),
	}
	res.VarNorm = (nf*nf*s1-nf*s2+3*s0*s0)/((nf*nf-1)*s0*s0) - res.Expected*res.Expected
	res.ZNorm = (res.I - res.Expected) / math.Sqrt(res.VarNorm)
	res.PNorm = 2 * distuv.UnitNormal.Survival(math.Abs(res.ZNorm))

	perms := opts.permutations()
	if perms == 0 {
		return res, nil
	}
	rng := opts.rng()
	shuffled := append([]float64(nil), z...)
	res.Permutations = perms
	res.Simulated = make([]float64, perms)
	for p := range res.Simulated {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		res.Simulated[p] = moranI(g, shuffled, s0, m2)
	}
	res.PSim = foldedPseudoP(res.I, res.Simulated)
	mean, sd := stat.MeanStdDev(res.Simulated, nil)
	if sd > 0 {
		res.ZSim = (res.I - mean) / sd
	}
	return res, nil
}

// deviations returns y - mean(y) and the sum of squared deviations
func deviations(y []float64) ([]float64, float64) {
	mean := stat.Mean(y, nil)
	z := make([]float64, len(y))
	m2 := 0.0
	for i, v := range y {
		z[i] = v - mean
		m2 += z[i] * z[i]
	}
	return z, m2
}

// moranI is n/s0 * z'Wz / z'z
func moranI(g *weights.Graph, z []float64, s0, zz float64) float64 {
	num := 0.0
	for i, row := range g.Neighbours {
		for k, j := range row {
			num += g.Weights[i][k] * z[i] * z[j]
		}
	}
	return float64(g.N()) / s0 * num / zz
}

// moments returns S0 (total weight), S1 and S2 of the weights matrix
func moments(g *weights.Graph) (s0, s1, s2 float64) {
	n := g.N()
	rowSum := make([]float64, n)
	colSum := make([]float64, n)
	for i, row := range g.Neighbours {
		for k, j := range row {
			w := g.Weights[i][k]
			s0 += w
			rowSum[i] += w
			colSum[j] += w
			sym := w + g.Weight(j, i)
			if g.HasEdge(j, i) {
				s1 += sym * sym
			} else {
				// (j,i) is never visited but contributes the same term
				s1 += 2 * sym * sym
			}
		}
	}
	s1 /= 2
	for i := 0; i < n; i++ {
		t := rowSum[i] + colSum[i]
		s2 += t * t
	}
	return s0, s1, s2
}

// foldedPseudoP is (extreme+1)/(perms+1) where extreme counts draws at least
// as far out as the observed value on its own side of the reference set.
func foldedPseudoP(observed float64, sims []float64) float64 {
	larger := 0
	for _, s := range sims {
		if s >= observed {
			larger++
		}
	}
	if perms := len(sims); perms-larger < larger {
		larger = perms - larger
	}
	return float64(larger+1) / float64(len(sims)+1)
}
