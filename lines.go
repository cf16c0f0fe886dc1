package weights

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EdgeLines returns the graph edges as centroid-to-centroid line strings for
// drawing over a map. Reciprocal edges collapse into one line marked
// "mutual"; one-way edges keep their direction. Nodes without a centroid are
// skipped.
func EdgeLines(g *Graph, objects []Object) (*geojson.FeatureCollection, error) {
	if len(objects) != g.N() {
		return nil, fmt.Errorf("%d objects for %d nodes: %w", len(objects), g.N(), ErrLengthMismatch)
	}
	fc := geojson.NewFeatureCollection()

	// Use a map to avoid duplicate lines for reciprocal edges
	seen := make(map[[2]int]bool)

	for i, row := range g.Neighbours {
		from, ok := objects[i].Centroid()
		if !ok {
			continue
		}
		for k, j := range row {
			key := [2]int{min(i, j), max(i, j)}
			if seen[key] {
				continue
			}
			seen[key] = true

			to, ok := objects[j].Centroid()
			if !ok {
				continue
			}
			f := geojson.NewFeature(orb.LineString{from, to})
			f.Properties["from"] = g.IDs[i]
			f.Properties["to"] = g.IDs[j]
			f.Properties["weight"] = g.Weights[i][k]
			f.Properties["mutual"] = g.HasEdge(j, i)
			fc.Append(f)
		}
	}
	return fc, nil
}

// NodePoints returns one centroid point per node with its cardinality and,
// when components is non-nil, its component label.
func NodePoints(g *Graph, objects []Object, components *Components) (*geojson.FeatureCollection, error) {
	if len(objects) != g.N() {
		return nil, fmt.Errorf("%d objects for %d nodes: %w", len(objects), g.N(), ErrLengthMismatch)
	}
	fc := geojson.NewFeatureCollection()
	for i, obj := range objects {
		c, ok := obj.Centroid()
		if !ok {
			continue
		}
		f := geojson.NewFeature(c)
		f.ID = g.IDs[i]
		f.Properties["cardinality"] = len(g.Neighbours[i])
		if components != nil {
			f.Properties["component"] = components.Labels[i]
		}
		fc.Append(f)
	}
	return fc, nil
}
