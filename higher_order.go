package weights

import "fmt"

// HigherOrder links nodes whose shortest path in g has exactly order edges.
// Closer nodes are excluded, so order 2 never repeats first-order neighbours.
func HigherOrder(g *Graph, order int) (*Graph, error) {
	return expandOrder(g, order, false)
}

// UpToOrder links nodes whose shortest path in g has between 1 and order edges
func UpToOrder(g *Graph, order int) (*Graph, error) {
	return expandOrder(g, order, true)
}

func expandOrder(g *Graph, order int, inclusive bool) (*Graph, error) {
	if order < 1 {
		return nil, fmt.Errorf("order %d: %w", order, ErrInvalidParameter)
	}
	rule := fmt.Sprintf("%s/order=%d", g.Rule, order)
	if inclusive {
		rule = fmt.Sprintf("%s/order<=%d", g.Rule, order)
	}

	n := g.N()
	adj := make([]map[int]float64, n)
	depth := make([]int, n)
	for src := 0; src < n; src++ {
		adj[src] = make(map[int]float64)
		for i := range depth {
			depth[i] = -1
		}
		depth[src] = 0
		queue := []int{src}
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			if depth[u] == order {
				continue // frontier reached; do not expand further
			}
			for _, v := range g.Neighbours[u] {
				if depth[v] >= 0 {
					continue
				}
				depth[v] = depth[u] + 1
				queue = append(queue, v)
				if depth[v] == order || inclusive {
					adj[src][v] = 1
				}
			}
		}
	}

	h := fromAdjacency(g.IDs, rule, adj)
	return h, nil
}
