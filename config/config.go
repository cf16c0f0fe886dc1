// Package config reads spweights run settings from a TOML or YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	weights "spatial-weights"
)

// ErrUnknownFormat indicates a config file extension other than .toml, .yaml or .yml.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config holds everything a run needs besides the command itself
type Config struct {
	Input   string `toml:"input" yaml:"input"`
	IDField string `toml:"id_field" yaml:"id_field"`
	CRS     string `toml:"crs" yaml:"crs"`
	Cache   string `toml:"cache" yaml:"cache"`

	Rule      Rule   `toml:"rule" yaml:"rule"`
	Transform string `toml:"transform" yaml:"transform"`

	Moran Moran `toml:"moran" yaml:"moran"`
}

// Rule selects and parameterizes a neighbour rule
type Rule struct {
	Type       string  `toml:"type" yaml:"type"`
	Threshold  float64 `toml:"threshold" yaml:"threshold"`
	Binary     *bool   `toml:"binary" yaml:"binary"`
	Alpha      float64 `toml:"alpha" yaml:"alpha"`
	K          int     `toml:"k" yaml:"k"`
	Kernel     string  `toml:"kernel" yaml:"kernel"`
	Bandwidth  float64 `toml:"bandwidth" yaml:"bandwidth"`
	Adaptive   bool    `toml:"adaptive" yaml:"adaptive"`
	LabelField string  `toml:"label_field" yaml:"label_field"`
}

// Moran configures autocorrelation runs
type Moran struct {
	Attribute    string  `toml:"attribute" yaml:"attribute"`
	Permutations int     `toml:"permutations" yaml:"permutations"`
	Seed         uint64  `toml:"seed" yaml:"seed"`
	Alpha        float64 `toml:"alpha" yaml:"alpha"`
}

// Default returns the settings used when no file or flag says otherwise
func Default() Config {
	return Config{
		Rule:      Rule{Type: "queen", K: 4, Kernel: string(weights.Triangular)},
		Transform: weights.TransformOriginal,
		Moran:     Moran{Permutations: 999, Alpha: 0.05},
	}
}

// Load reads path on top of Default. The format follows the extension.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	return cfg, nil
}

// Build turns the rule settings into a weights.Rule. Block rules need the
// loaded features to read their labels from.
func (r Rule) Build(features []*weights.Feature) (weights.Rule, error) {
	switch strings.ToLower(r.Type) {
	case "queen":
		return weights.Queen{}, nil
	case "rook":
		return weights.Rook{}, nil
	case "distance", "distance-band", "distanceband":
		binary := true
		if r.Binary != nil {
			binary = *r.Binary
		}
		return weights.DistanceBand{Threshold: r.Threshold, Binary: binary, Alpha: r.Alpha}, nil
	case "knn":
		return weights.KNN{K: r.K}, nil
	case "kernel":
		return weights.Kernel{
			Function:  weights.KernelFunc(r.Kernel),
			Bandwidth: r.Bandwidth,
			K:         r.K,
			Adaptive:  r.Adaptive,
		}, nil
	case "block":
		if r.LabelField == "" {
			return nil, fmt.Errorf("block rule needs label_field: %w", weights.ErrInvalidParameter)
		}
		return weights.Block{Labels: weights.LabelsFromProperty(features, r.LabelField)}, nil
	}
	return nil, fmt.Errorf("rule type %q: %w", r.Type, weights.ErrInvalidParameter)
}
