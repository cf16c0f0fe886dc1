package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "describe <geojson>",
		Short: "Summarize a weights graph",
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

			g := s.graph
			card := g.Cardinalities()
			minC, maxC, sum := 0, 0, 0
			if len(card) > 0 {
				minC, maxC = slices.Min(card), slices.Max(card)
			}
			for _, c := range card {
				sum += c
			}
			mean := 0.0
			if len(card) > 0 {
				mean = float64(sum) / float64(len(card))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "rule:         %s\n", g.Rule)
			fmt.Fprintf(w, "transform:    %s\n", g.Transform)
			fmt.Fprintf(w, "nodes:        %d\n", g.N())
			fmt.Fprintf(w, "edges:        %d\n", g.NumEdges())
			fmt.Fprintf(w, "symmetric:    %t\n", g.IsSymmetric())
			fmt.Fprintf(w, "nonzero:      %.2f%%\n", g.PctNonzero())
			fmt.Fprintf(w, "neighbours:   min %d, mean %.2f, max %d\n", minC, mean, maxC)
			islands := g.Islands()
			fmt.Fprintf(w, "islands:      %d\n", len(islands))
			for _, i := range islands {
				fmt.Fprintf(w, "  - %s\n", g.IDs[i])
			}
			return nil
		},
	}
	addGraphFlags(cmd, &flags)
	return cmd
}
