package weights

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components is a partition of graph nodes into connected groups
type Components struct {
	// Labels[i] is the component of node i. Components are numbered from 0
	// in order of their lowest node index.
	Labels []int `json:"labels"`
	Count  int   `json:"count"`
}

// Members returns the node indices carrying label, ascending
func (c Components) Members(label int) []int {
	var out []int
	for i, l := range c.Labels {
		if l == label {
			out = append(out, i)
		}
	}
	return out
}

// Sizes returns the node count of each component
func (c Components) Sizes() []int {
	sizes := make([]int, c.Count)
	for _, l := range c.Labels {
		sizes[l]++
	}
	return sizes
}

// ConnectedComponents labels the components of g. Reachability is taken over
// the symmetrized edge set, so one-way KNN or kernel edges still connect.
func ConnectedComponents(g *Graph) Components {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < g.N(); i++ {
		ug.AddNode(simple.Node(i))
	}
	for i, row := range g.Neighbours {
		for _, j := range row {
			if i != j {
				ug.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}

	groups := topo.ConnectedComponents(ug)
	mins := make([][]int, 0, len(groups))
	for _, grp := range groups {
		ids := make([]int, len(grp))
		for k, node := range grp {
			ids[k] = int(node.ID())
		}
		sort.Ints(ids)
		mins = append(mins, ids)
	}
	sort.Slice(mins, func(a, b int) bool { return mins[a][0] < mins[b][0] })

	c := Components{Labels: make([]int, g.N()), Count: len(mins)}
	for label, ids := range mins {
		for _, i := range ids {
			c.Labels[i] = label
		}
	}
	return c
}
