package weights

import (
	"fmt"
	"math"
	"strings"
)

// Transform codes
const (
	TransformOriginal = "O"
	TransformBinary   = "B"
	TransformRow      = "R"
	TransformDouble   = "D"
)

// Transform rescales the weights of g and returns the result as a new graph.
//
//	O  weights unchanged
//	B  every edge weighs 1
//	R  each row sums to 1; islands keep an empty row
//	D  all weights together sum to 1
//
// Transforms apply to the weights g carries. Once g is transformed its
// original weights are gone, so asking for O on it is an error.
func Transform(g *Graph, code string) (*Graph, error) {
	code = strings.ToUpper(code)
	out := g.clone(g.Rule)
	out.Transform = code

	switch code {
	case TransformOriginal:
		if g.Transform != "" && g.Transform != TransformOriginal {
			return nil, fmt.Errorf("graph already has transform %s, original weights are lost: %w",
				g.Transform, ErrInvalidParameter)
		}
		return out, nil
	case TransformBinary:
		for i := range out.Weights {
			for k := range out.Weights[i] {
				out.Weights[i][k] = 1
			}
		}
	case TransformRow:
		for _, ws := range out.Weights {
			sum := 0.0
			for _, w := range ws {
				sum += w
			}
			if sum == 0 {
				continue
			}
			for k := range ws {
				ws[k] /= sum
			}
		}
	case TransformDouble:
		total := 0.0
		for _, ws := range out.Weights {
			for _, w := range ws {
				total += w
			}
		}
		if total == 0 {
			return out, nil
		}
		for _, ws := range out.Weights {
			for k := range ws {
				ws[k] /= total
			}
		}
	default:
		return nil, fmt.Errorf("transform %q: %w", code, ErrInvalidParameter)
	}
	return out, nil
}

// Symmetrize adds j->i for every i->j. Where both directions exist with
// different weights the larger one is kept for both.
func Symmetrize(g *Graph) *Graph {
	adj := make([]map[int]float64, g.N())
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	for i, row := range g.Neighbours {
		for k, j := range row {
			w := g.Weights[i][k]
			adj[i][j] = math.Max(adj[i][j], w)
			adj[j][i] = math.Max(adj[j][i], w)
		}
	}
	s := fromAdjacency(g.IDs, g.Rule+"/symmetric", adj)
	s.Transform = g.Transform
	return s
}
