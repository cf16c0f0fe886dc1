// Package weights builds spatial weights graphs: who neighbours whom among a
// set of polygons or points, and with what weight. Graphs come from
// contiguity, distance band, nearest neighbour, kernel and block rules and
// feed derived operations such as higher-order neighbours, components,
// transforms and spatial lags.
package weights

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Graph is a spatial weights graph over an ordered set of objects.
// Neighbours[i] holds the indices j with an edge i->j in ascending order and
// Weights[i] holds the matching weights. A Graph is never mutated after
// construction; every derived operation returns a new one.
type Graph struct {
	IDs        []string    `json:"ids"`
	Neighbours [][]int     `json:"neighbours"`
	Weights    [][]float64 `json:"weights"`
	Rule       string      `json:"rule"`
	Transform  string      `json:"transform"`
}

// Edge is a single directed, weighted connection
type Edge struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// newGraph allocates an edgeless graph over ids
func newGraph(ids []string, rule string) *Graph {
	g := &Graph{
		IDs:        append([]string(nil), ids...),
		Neighbours: make([][]int, len(ids)),
		Weights:    make([][]float64, len(ids)),
		Rule:       rule,
		Transform:  TransformOriginal,
	}
	for i := range ids {
		g.Neighbours[i] = []int{}
		g.Weights[i] = []float64{}
	}
	return g
}

// fromAdjacency builds a graph from per-node weight maps, dropping self loops
// and ordering each row by neighbour index.
func fromAdjacency(ids []string, rule string, adj []map[int]float64) *Graph {
	g := newGraph(ids, rule)
	for i, row := range adj {
		js := make([]int, 0, len(row))
		for j := range row {
			if j != i {
				js = append(js, j)
			}
		}
		sort.Ints(js)
		ws := make([]float64, len(js))
		for k, j := range js {
			ws[k] = row[j]
		}
		g.Neighbours[i] = js
		g.Weights[i] = ws
	}
	return g
}

// N returns the number of nodes
func (g *Graph) N() int { return len(g.IDs) }

// Index returns the node index for an id
func (g *Graph) Index(id string) (int, bool) {
	for i, v := range g.IDs {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

// NeighboursOf returns the neighbour indices of node i
func (g *Graph) NeighboursOf(i int) []int {
	return g.Neighbours[i]
}

// Weight returns w(i,j), zero when j is not a neighbour of i
func (g *Graph) Weight(i, j int) float64 {
	row := g.Neighbours[i]
	k := sort.SearchInts(row, j)
	if k < len(row) && row[k] == j {
		return g.Weights[i][k]
	}
	return 0
}

// HasEdge reports whether i->j exists
func (g *Graph) HasEdge(i, j int) bool {
	row := g.Neighbours[i]
	k := sort.SearchInts(row, j)
	return k < len(row) && row[k] == j
}

// Edges lists every directed edge in node order
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.NumEdges())
	for i, row := range g.Neighbours {
		for k, j := range row {
			edges = append(edges, Edge{From: i, To: j, Weight: g.Weights[i][k]})
		}
	}
	return edges
}

// NumEdges counts directed edges
func (g *Graph) NumEdges() int {
	n := 0
	for _, row := range g.Neighbours {
		n += len(row)
	}
	return n
}

// Cardinalities returns the neighbour count of each node
func (g *Graph) Cardinalities() []int {
	c := make([]int, g.N())
	for i, row := range g.Neighbours {
		c[i] = len(row)
	}
	return c
}

// Islands returns the indices of nodes without neighbours
func (g *Graph) Islands() []int {
	var out []int
	for i, row := range g.Neighbours {
		if len(row) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// IsSymmetric reports whether every edge i->j has a matching j->i of equal weight
func (g *Graph) IsSymmetric() bool {
	for i, row := range g.Neighbours {
		for k, j := range row {
			if !g.HasEdge(j, i) {
				return false
			}
			if math.Abs(g.Weight(j, i)-g.Weights[i][k]) > 1e-12 {
				return false
			}
		}
	}
	return true
}

// PctNonzero is the share of the full n*n matrix holding an edge, in percent
func (g *Graph) PctNonzero() float64 {
	n := g.N()
	if n == 0 {
		return 0
	}
	return 100 * float64(g.NumEdges()) / float64(n*n)
}

// RowSums returns the sum of outgoing weights per node
func (g *Graph) RowSums() []float64 {
	s := make([]float64, g.N())
	for i, ws := range g.Weights {
		for _, w := range ws {
			s[i] += w
		}
	}
	return s
}

// Dense returns the full weights matrix
func (g *Graph) Dense() *mat.Dense {
	n := g.N()
	if n == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(n, n, nil)
	for i, row := range g.Neighbours {
		for k, j := range row {
			m.Set(i, j, g.Weights[i][k])
		}
	}
	return m
}

// Lag computes the spatial lag sum_j w(i,j) * y[j] for every node
func (g *Graph) Lag(y []float64) ([]float64, error) {
	if len(y) != g.N() {
		return nil, fmt.Errorf("lag of %d values over %d nodes: %w", len(y), g.N(), ErrLengthMismatch)
	}
	out := make([]float64, len(y))
	for i, row := range g.Neighbours {
		for k, j := range row {
			out[i] += g.Weights[i][k] * y[j]
		}
	}
	return out, nil
}

// clone deep-copies g under a new rule name
func (g *Graph) clone(rule string) *Graph {
	c := &Graph{
		IDs:        append([]string(nil), g.IDs...),
		Neighbours: make([][]int, g.N()),
		Weights:    make([][]float64, g.N()),
		Rule:       rule,
		Transform:  g.Transform,
	}
	for i := range g.Neighbours {
		c.Neighbours[i] = append([]int{}, g.Neighbours[i]...)
		c.Weights[i] = append([]float64{}, g.Weights[i]...)
	}
	return c
}
