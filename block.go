package weights

import "fmt"

// Block links objects carrying the same group label, regardless of geometry.
// Labels[i] is the group of object i.
type Block struct {
	Labels []string
}

func (Block) Name() string { return "block" }

func (r Block) build(p *prepared, o *options) (*Graph, error) {
	n := len(p.ids)
	if len(r.Labels) != n {
		return nil, fmt.Errorf("%d labels for %d objects: %w", len(r.Labels), n, ErrLabelsMismatch)
	}

	groups := make(map[string][]int)
	for i, label := range r.Labels {
		if label == "" {
			return nil, fmt.Errorf("object %q has no label: %w", p.ids[i], ErrLabelsMismatch)
		}
		groups[label] = append(groups[label], i)
	}
	o.logger.Debug("block groups", "groups", len(groups))

	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	for _, members := range groups {
		for _, i := range members {
			for _, j := range members {
				if i != j {
					adj[i][j] = 1
				}
			}
		}
	}
	return fromAdjacency(p.ids, "block", adj), nil
}

// LabelsFromProperty reads a block label per feature from a property.
// Missing properties produce empty labels, which Build rejects.
func LabelsFromProperty(fs []*Feature, key string) []string {
	labels := make([]string, len(fs))
	for i, f := range fs {
		if f == nil {
			continue
		}
		if v, ok := f.Properties[key]; ok && v != nil {
			labels[i] = fmt.Sprint(v)
		}
	}
	return labels
}
