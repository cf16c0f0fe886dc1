package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	weights "spatial-weights"
	"spatial-weights/config"
	"spatial-weights/store"
)

// graphFlags are shared by every command that builds a graph
type graphFlags struct {
	configPath string
	idField    string
	crs        string
	cache      string
	transform  string

	rule       string
	threshold  float64
	inverse    bool
	alpha      float64
	k          int
	kernel     string
	bandwidth  float64
	adaptive   bool
	labelField string
}

func addGraphFlags(cmd *cobra.Command, f *graphFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "read settings from a TOML or YAML file")
	fs.StringVar(&f.idField, "id-field", "", "property used as node id (default: feature id, then position)")
	fs.StringVar(&f.crs, "crs", "", "override the coordinate reference system of the input")
	fs.StringVar(&f.cache, "cache", "", "SQLite file caching built graphs")
	fs.StringVarP(&f.transform, "transform", "t", "O", "weights transform: O, B, R or D")

	fs.StringVarP(&f.rule, "rule", "r", "queen", "neighbour rule: queen, rook, distance, knn, kernel, block")
	fs.Float64Var(&f.threshold, "threshold", 0, "distance band threshold")
	fs.BoolVar(&f.inverse, "inverse", false, "distance band: weight by inverse distance instead of 1")
	fs.Float64Var(&f.alpha, "alpha", -1, "distance band: inverse distance exponent")
	fs.IntVar(&f.k, "k", 4, "knn: neighbour count; kernel: k-th neighbour for bandwidth")
	fs.StringVar(&f.kernel, "kernel", "triangular", "kernel: triangular, uniform, quadratic, quartic, gaussian")
	fs.Float64Var(&f.bandwidth, "bandwidth", 0, "kernel: fixed bandwidth (0 derives it from k)")
	fs.BoolVar(&f.adaptive, "adaptive", false, "kernel: per-node bandwidth from the k-th neighbour")
	fs.StringVar(&f.labelField, "label-field", "", "block: property holding the group label")
}

// resolve merges config file values with explicitly set flags
func (f *graphFlags) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if changed("id-field") {
		cfg.IDField = f.idField
	}
	if changed("crs") {
		cfg.CRS = f.crs
	}
	if changed("cache") {
		cfg.Cache = f.cache
	}
	if changed("transform") || f.configPath == "" {
		cfg.Transform = f.transform
	}
	if changed("rule") || f.configPath == "" {
		cfg.Rule.Type = f.rule
	}
	if changed("threshold") {
		cfg.Rule.Threshold = f.threshold
	}
	if changed("inverse") {
		binary := !f.inverse
		cfg.Rule.Binary = &binary
	}
	if changed("alpha") {
		cfg.Rule.Alpha = f.alpha
	}
	if changed("k") || f.configPath == "" {
		cfg.Rule.K = f.k
	}
	if changed("kernel") {
		cfg.Rule.Kernel = f.kernel
	}
	if changed("bandwidth") {
		cfg.Rule.Bandwidth = f.bandwidth
	}
	if changed("adaptive") {
		cfg.Rule.Adaptive = f.adaptive
	}
	if changed("label-field") {
		cfg.Rule.LabelField = f.labelField
	}

	if cfg.Input == "" {
		return cfg, errors.New("no input: pass a GeoJSON path or glob, or set input in --config")
	}
	return cfg, nil
}

// session is the loaded data and built graph a command works on
type session struct {
	cfg     config.Config
	dataset *weights.Dataset
	graph   *weights.Graph
}

func (s *session) objects() []weights.Object { return s.dataset.Objects() }

// openSession loads the input and builds (or fetches from cache) the graph
func openSession(ctx context.Context, cfg config.Config) (*session, error) {
	logger := loggerFromContext(ctx)

	ds, err := weights.LoadFeatures(cfg.Input, weights.LoadOptions{IDField: cfg.IDField, Logger: logger})
	if err != nil {
		return nil, err
	}
	if cfg.CRS != "" {
		ds.CRS = weights.CRS{Name: cfg.CRS}
	}

	rule, err := cfg.Rule.Build(ds.Features)
	if err != nil {
		return nil, err
	}

	var cache *store.DB
	var key string
	if cfg.Cache != "" {
		cache, err = store.Open(cfg.Cache)
		if err != nil {
			return nil, err
		}
		defer cache.Close()

		inputs := make([][]byte, 0, len(ds.Inputs)+1)
		for _, in := range ds.Inputs {
			inputs = append(inputs, in.Data)
		}
		inputs = append(inputs, []byte(cfg.IDField+"|"+ds.CRS.Name+"|"+cfg.Rule.LabelField))
		key = store.Key(rule.Name(), inputs...)

		g, err := cache.Get(key)
		switch {
		case err == nil:
			logger.Info("graph loaded from cache", "rule", g.Rule, "key", key[:12])
			return finishSession(cfg, ds, g)
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	p := newProgress(logger)
	g, err := weights.Build(ds.Objects(), rule, weights.WithLogger(logger), weights.WithCRS(ds.CRS))
	if err != nil {
		return nil, err
	}
	p.done("graph built", "rule", g.Rule, "edges", g.NumEdges(), "islands", len(g.Islands()))

	if cache != nil {
		if err := cache.Put(key, g); err != nil {
			return nil, fmt.Errorf("caching graph: %w", err)
		}
		logger.Debug("graph cached", "key", key[:12])
	}
	return finishSession(cfg, ds, g)
}

func finishSession(cfg config.Config, ds *weights.Dataset, g *weights.Graph) (*session, error) {
	if len(g.IDs) != len(ds.Features) {
		return nil, fmt.Errorf("graph has %d nodes, dataset %d features", len(g.IDs), len(ds.Features))
	}
	g, err := weights.Transform(g, cfg.Transform)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, dataset: ds, graph: g}, nil
}
