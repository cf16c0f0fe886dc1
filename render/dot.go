// Package render draws a weights graph as a node-link diagram with every
// node pinned at its centroid, so the picture reads like the map underneath.
package render

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/goccy/go-graphviz"
	"github.com/paulmach/orb"

	weights "spatial-weights"
)

// Options configures node-link rendering.
type Options struct {
	// Width is the drawing width in inches; height follows the data aspect.
	Width float64
	// Labels shows node ids instead of plain dots.
	Labels bool
	// Components colours nodes by component label when non-nil.
	Components *weights.Components
}

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ToDOT converts a graph to Graphviz DOT with pinned positions.
// Reciprocal edges are drawn once without arrowheads; one-way edges keep
// their arrow. Nodes without a centroid are left out.
func ToDOT(g *weights.Graph, objects []weights.Object, opts Options) (string, error) {
	if len(objects) != g.N() {
		return "", fmt.Errorf("%d objects for %d nodes: %w", len(objects), g.N(), weights.ErrLengthMismatch)
	}
	if opts.Width <= 0 {
		opts.Width = 10
	}

	pos := make([]orb.Point, len(objects))
	has := make([]bool, len(objects))
	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for i, obj := range objects {
		if c, ok := obj.Centroid(); ok {
			pos[i], has[i] = c, true
			bound = bound.Extend(c)
		}
	}
	scale := 1.0
	if span := bound.Max[0] - bound.Min[0]; span > 0 && !math.IsInf(span, 0) {
		scale = opts.Width / span
	}

	var buf bytes.Buffer
	buf.WriteString("digraph W {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	if opts.Labels {
		buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3, fixedsize=true];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.08];\n")
	}
	buf.WriteString("  edge [color=\"#555555\", arrowsize=0.5];\n\n")

	for i, id := range g.IDs {
		if !has[i] {
			continue
		}
		x := (pos[i][0] - bound.Min[0]) * scale
		y := (pos[i][1] - bound.Min[1]) * scale
		attrs := fmt.Sprintf("pos=\"%.4f,%.4f!\"", x, y)
		if !opts.Labels {
			attrs += ", label=\"\""
		}
		if opts.Components != nil {
			colour := palette[opts.Components.Labels[i]%len(palette)]
			attrs += fmt.Sprintf(", color=%q, fillcolor=%q", colour, colour)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, attrs)
	}

	buf.WriteString("\n")
	for i, row := range g.Neighbours {
		for _, j := range row {
			if !has[i] || !has[j] {
				continue
			}
			mutual := g.HasEdge(j, i)
			if mutual && j < i {
				continue
			}
			if mutual {
				fmt.Fprintf(&buf, "  %q -> %q [dir=none];\n", g.IDs[i], g.IDs[j])
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", g.IDs[i], g.IDs[j])
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

// RenderSVG lays out a DOT graph with neato, honouring pinned positions,
// and returns the SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
