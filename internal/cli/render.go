package cli

import (
	"os"

	"github.com/spf13/cobra"

	weights "spatial-weights"
	"spatial-weights/render"
)

func newRenderCmd() *cobra.Command {
	var flags graphFlags
	var out string
	var dotOnly, labels, colour bool
	var width float64

	cmd := &cobra.Command{
		Use:   "render <geojson>",
		Short: "Draw a weights graph with nodes at their centroids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			opts := render.Options{Width: width, Labels: labels}
			if colour {
				c := weights.ConnectedComponents(s.graph)
				opts.Components = &c
			}
			dot, err := render.ToDOT(s.graph, s.objects(), opts)
			if err != nil {
				return err
			}

			data := []byte(dot)
			if !dotOnly {
				p := newProgress(loggerFromContext(cmd.Context()))
				if data, err = render.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
				p.done("svg rendered", "bytes", len(data))
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	addGraphFlags(cmd, &flags)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "emit Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw node ids")
	cmd.Flags().BoolVar(&colour, "components", false, "colour nodes by connected component")
	cmd.Flags().Float64Var(&width, "width", 10, "drawing width in inches")
	return cmd
}
