package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"spatial-weights/autocorr"
)

func newMoranCmd() *cobra.Command {
	var flags graphFlags
	var attribute string
	var permutations int
	var seed uint64
	var local bool
	var alpha float64

	cmd := &cobra.Command{
		Use:   "moran <geojson>",
		Short: "Global Moran's I and local indicators (LISA)",
		Long: `Measure spatial autocorrelation of a numeric property. The graph is
row-standardized unless --transform says otherwise. With --local every node
gets its local Moran statistic, quadrant and pseudo p-value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("transform") && flags.configPath == "" {
				flags.transform = "R"
			}
			cfg, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("attribute") {
				cfg.Moran.Attribute = attribute
			}
			if cmd.Flags().Changed("permutations") || flags.configPath == "" {
				cfg.Moran.Permutations = permutations
			}
			if cmd.Flags().Changed("seed") {
				cfg.Moran.Seed = seed
			}
			if cmd.Flags().Changed("significance") || flags.configPath == "" {
				cfg.Moran.Alpha = alpha
			}
			if cfg.Moran.Attribute == "" {
				return fmt.Errorf("--attribute is required")
			}

			s, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			y, err := s.dataset.Values(cfg.Moran.Attribute)
			if err != nil {
				return err
			}

			opts := autocorr.Options{Permutations: cfg.Moran.Permutations, Seed: cfg.Moran.Seed}
			p := newProgress(loggerFromContext(cmd.Context()))
			res, err := autocorr.Moran(s.graph, y, opts)
			if err != nil {
				return err
			}
			p.done("global moran computed", "permutations", res.Permutations)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "attribute: %s\n", cfg.Moran.Attribute)
			fmt.Fprintf(w, "weights:   %s (%s)\n", s.graph.Rule, s.graph.Transform)
			fmt.Fprintf(w, "I:         %.6f\n", res.I)
			fmt.Fprintf(w, "E[I]:      %.6f\n", res.Expected)
			fmt.Fprintf(w, "z (norm):  %.4f  p=%.4f\n", res.ZNorm, res.PNorm)
			if res.Permutations > 0 {
				fmt.Fprintf(w, "z (sim):   %.4f  p=%.4f  (%d permutations)\n", res.ZSim, res.PSim, res.Permutations)
			}
			if !local {
				return nil
			}

			lisa, err := autocorr.LocalMoran(s.graph, y, opts)
			if err != nil {
				return err
			}
			clusters := lisa.Clusters(cfg.Moran.Alpha)
			fmt.Fprintf(w, "\nid\tIi\tquadrant\tp_sim\tcluster\n")
			for i, id := range s.graph.IDs {
				pSim := 0.0
				if lisa.PSim != nil {
					pSim = lisa.PSim[i]
				}
				fmt.Fprintf(w, "%s\t%.4f\t%s\t%.4f\t%s\n", id, lisa.Is[i], lisa.Quadrants[i], pSim, clusters[i])
			}
			return nil
		},
	}
	addGraphFlags(cmd, &flags)
	cmd.Flags().StringVarP(&attribute, "attribute", "a", "", "numeric property to test")
	cmd.Flags().IntVar(&permutations, "permutations", autocorr.DefaultPermutations, "random permutations (0 disables)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "permutation seed")
	cmd.Flags().BoolVar(&local, "local", false, "also compute local Moran (LISA)")
	cmd.Flags().Float64Var(&alpha, "significance", 0.05, "LISA cluster significance level")
	return cmd
}
