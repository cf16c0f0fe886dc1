package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spatial-weights/store"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the graph cache",
	}
	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheDeleteCmd())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <cache.db>",
		Short: "List cached graphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					e.Key[:min(12, len(e.Key))], e.Rule, e.Transform, e.Nodes, e.CreatedAt.Format("2006-01-02 15:04"))
			}
			loggerFromContext(cmd.Context()).Debug("cache listed", "entries", len(entries))
			return nil
		},
	}
}

func newCacheDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cache.db> <key-prefix>",
		Short: "Delete a cached graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.List()
			if err != nil {
				return err
			}
			var matches []string
			for _, e := range entries {
				if strings.HasPrefix(e.Key, args[1]) {
					matches = append(matches, e.Key)
				}
			}
			switch len(matches) {
			case 0:
				return fmt.Errorf("%s: %w", args[1], store.ErrNotFound)
			case 1:
				return db.Delete(matches[0])
			}
			return fmt.Errorf("prefix %q matches %d graphs", args[1], len(matches))
		},
	}
}
