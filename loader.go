package weights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb/geojson"
)

// Dataset is an ordered feature set read from one or more GeoJSON files
type Dataset struct {
	Features []*Feature
	CRS      CRS
	Inputs   []Input
}

// Input is one file that contributed to a Dataset
type Input struct {
	Path string
	Data []byte // decompressed contents
}

// Objects returns the features as Build input
func (d *Dataset) Objects() []Object { return Features(d.Features) }

// Values reads a numeric property from every feature
func (d *Dataset) Values(key string) ([]float64, error) {
	out := make([]float64, len(d.Features))
	for i, f := range d.Features {
		v, ok := f.Properties[key]
		if !ok || v == nil {
			return nil, fmt.Errorf("feature %q has no property %q", f.Key, key)
		}
		switch n := v.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		case bool:
			if n {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("feature %q property %q is %T, not numeric", f.Key, key, v)
		}
	}
	return out, nil
}

// LoadOptions controls how features are read
type LoadOptions struct {
	// IDField names the property used as node id. Empty uses the feature
	// id, falling back to the zero-based position in the collection.
	IDField string
	Logger  *log.Logger
}

// legacyCRS is the pre-RFC 7946 "crs" member many projected exports carry
type legacyCRS struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// LoadFeatures reads every GeoJSON file matching pattern (doublestar syntax,
// so "data/**/*.geojson" works). Files ending in .gz are decompressed.
// Features keep file order, then collection order.
func LoadFeatures(pattern string, opts LoadOptions) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q: %w", pattern, os.ErrNotExist)
	}
	logger.Debug("loading features", "files", len(files))

	ds := &Dataset{}
	for _, file := range files {
		data, err := readMaybeGzip(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		part, err := ParseFeatures(data, opts.IDField, len(ds.Features))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		if part.CRS.Name != "" {
			if ds.CRS.Name != "" && ds.CRS.Name != part.CRS.Name {
				return nil, fmt.Errorf("%s uses crs %q, earlier files use %q", file, part.CRS.Name, ds.CRS.Name)
			}
			ds.CRS = part.CRS
		}
		ds.Features = append(ds.Features, part.Features...)
		ds.Inputs = append(ds.Inputs, Input{Path: file, Data: data})
		logger.Debug("loaded features", "file", filepath.Base(file), "count", len(part.Features))
	}

	logger.Info("features loaded", "total", len(ds.Features), "crs", ds.CRS.Name)
	return ds, nil
}

// ParseFeatures decodes a GeoJSON FeatureCollection. offset shifts the
// positional ids used when a feature has no id of its own.
func ParseFeatures(data []byte, idField string, offset int) (*Dataset, error) {
	var legacy legacyCRS
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Features: make([]*Feature, 0, len(fc.Features))}
	if legacy.CRS != nil {
		ds.CRS = CRS{Name: legacy.CRS.Properties.Name}
	}
	for i, feature := range fc.Features {
		ds.Features = append(ds.Features,
			NewFeature(featureKey(feature, idField, offset+i), feature.Geometry, feature.Properties))
	}
	return ds, nil
}

func featureKey(f *geojson.Feature, idField string, pos int) string {
	if idField != "" {
		if v, ok := f.Properties[idField]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	if idField == "" && f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return fmt.Sprint(pos)
}

func readMaybeGzip(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
