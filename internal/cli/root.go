// Package cli implements the spweights command-line interface.
//
// Every command loads a feature set, builds one weights graph under the
// selected rule and then reports on it or exports it. Rule settings come
// from flags, optionally seeded from a TOML or YAML file via --config.
package cli

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// RootCommand assembles the command tree writing results to out
func RootCommand(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "spweights",
		Short:        "Build and analyse spatial weights graphs",
		Long:         `spweights builds contiguity, distance, nearest-neighbour, kernel and block weights from GeoJSON features, derives higher-order graphs and components, and measures spatial autocorrelation.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newComponentsCmd())
	root.AddCommand(newHigherOrderCmd())
	root.AddCommand(newMoranCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCacheCmd())
	return root
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return RootCommand(os.Stdout).ExecuteContext(ctx)
}
