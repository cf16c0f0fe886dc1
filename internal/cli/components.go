package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	weights "spatial-weights"
)

func newComponentsCmd() *cobra.Command {
	var flags graphFlags
	var list bool

	cmd := &cobra.Command{
		Use:   "components <geojson>",
		Short: "Label connected components of a weights graph",
		Long: `Label connected components. Edges count in both directions, so one-way
nearest-neighbour links still join their endpoints.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			c := weights.ConnectedComponents(s.graph)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "components: %d\n", c.Count)
			for label, size := range c.Sizes() {
				fmt.Fprintf(w, "  %d: %d nodes\n", label, size)
			}
			if list {
				for i, label := range c.Labels {
					fmt.Fprintf(w, "%s\t%d\n", s.graph.IDs[i], label)
				}
			}
			return nil
		},
	}
	addGraphFlags(cmd, &flags)
	cmd.Flags().BoolVar(&list, "list", false, "print the label of every node")
	return cmd
}

func newHigherOrderCmd() *cobra.Command {
	var flags graphFlags
	var order int
	var inclusive bool
	var format string

	cmd := &cobra.Command{
		Use:   "higher-order <geojson>",
		Short: "Derive neighbours at an exact path distance",
		Long: `Derive a graph whose neighbours sit exactly --order steps away in the base
graph. With --inclusive every node 1..order steps away is kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			// transform the derived graph, not the base
			transform := cfg.Transform
			cfg.Transform = weights.TransformOriginal
			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			derive := weights.HigherOrder
			if inclusive {
				derive = weights.UpToOrder
			}
			h, err := derive(s.graph, order)
			if err != nil {
				return err
			}
			if h, err = weights.Transform(h, transform); err != nil {
				return err
			}
			s.graph = h
			return writeGraph(cmd.OutOrStdout(), s, format)
		},
	}
	addGraphFlags(cmd, &flags)
	cmd.Flags().IntVar(&order, "order", 2, "path distance")
	cmd.Flags().BoolVar(&inclusive, "inclusive", false, "keep every order up to --order")
	cmd.Flags().StringVarP(&format, "format", "f", "gal", "output format: json, gal, gwt, geojson")
	return cmd
}
