package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	weights "spatial-weights"
)

func newBuildCmd() *cobra.Command {
	var flags graphFlags
	var format, out string

	cmd := &cobra.Command{
		Use:   "build <geojson>",
		Short: "Build a weights graph and write it out",
		Long: `Build a weights graph from GeoJSON features and write it as JSON, GAL, GWT
or GeoJSON edge lines (centroid to centroid, for plotting).`,
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

			if out == "" || out == "-" {
				return writeGraph(cmd.OutOrStdout(), s, format)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writeGraph(f, s, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("graph written", "file", out, "format", format)
			return nil
		},
	}
	addGraphFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, gal, gwt, geojson")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func writeGraph(w io.Writer, s *session, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(s.graph)
	case "gal":
		return weights.WriteGAL(w, s.graph)
	case "gwt":
		key := s.cfg.IDField
		return weights.WriteGWT(w, s.graph, key)
	case "geojson":
		fc, err := weights.EdgeLines(s.graph, s.objects())
		if err != nil {
			return err
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
