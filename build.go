package weights

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
)

// Rule is a neighbour criterion. Implementations are Queen, Rook,
// DistanceBand, KNN, Kernel and Block.
type Rule interface {
	// Name describes the rule and its parameters, e.g. "knn(k=4)".
	Name() string
	build(objs *prepared, o *options) (*Graph, error)
}

// CRS describes the coordinate reference system of a feature set
type CRS struct {
	Name string `json:"name"`
}

// Geographic reports whether the CRS uses angular (lon/lat) coordinates
func (c CRS) Geographic() bool {
	name := strings.ToUpper(c.Name)
	for _, g := range []string{"EPSG:4326", "EPSG::4326", "CRS84", "EPSG:4269", "EPSG::4269", "EPSG:4258", "EPSG::4258", "WGS84"} {
		if strings.Contains(name, g) {
			return true
		}
	}
	return false
}

type options struct {
	logger *log.Logger
	crs    CRS
}

// Option configures Build
type Option func(*options)

// WithLogger routes build progress to l at debug level
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCRS declares the coordinate reference system of the objects.
// Metric rules refuse geographic systems.
func WithCRS(crs CRS) Option {
	return func(o *options) { o.crs = crs }
}

// prepared is the validated snapshot a rule builds from
type prepared struct {
	ids       []string
	objects   []Object
	centroids []orb.Point
	missing   []int // indices without a centroid
}

// Build constructs the neighbour graph of objects under rule.
// Every object becomes exactly one node, in input order.
func Build(objects []Object, rule Rule, opts ...Option) (*Graph, error) {
	o := &options{logger: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if rule == nil {
		return nil, fmt.Errorf("nil rule: %w", ErrInvalidParameter)
	}

	p, err := prepare(objects)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	o.logger.Debug("building weights", "rule", rule.Name(), "objects", len(objects))
	g, err := rule.build(p, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rule.Name(), err)
	}
	o.logger.Debug("weights built",
		"rule", g.Rule,
		"edges", g.NumEdges(),
		"islands", len(g.Islands()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return g, nil
}

// prepare runs the capability check on every object
func prepare(objects []Object) (*prepared, error) {
	p := &prepared{
		ids:       make([]string, len(objects)),
		objects:   objects,
		centroids: make([]orb.Point, len(objects)),
	}
	seen := make(map[string]int, len(objects))
	for i, obj := range objects {
		if obj == nil {
			return nil, fmt.Errorf("object %d: %w", i, ErrNilObject)
		}
		id := obj.ID()
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("objects %d and %d share id %q: %w", prev, i, id, ErrDuplicateID)
		}
		seen[id] = i
		p.ids[i] = id
		c, ok := obj.Centroid()
		if !ok {
			p.missing = append(p.missing, i)
			continue
		}
		p.centroids[i] = c
	}
	return p, nil
}

// requireMetric guards rules that measure centroid distances
func (p *prepared) requireMetric(o *options) error {
	if o.crs.Geographic() {
		return fmt.Errorf("crs %q: %w", o.crs.Name, ErrNonMetricCRS)
	}
	if len(p.missing) > 0 {
		i := p.missing[0]
		return fmt.Errorf("object %q: %w", p.ids[i], ErrNoCentroid)
	}
	return nil
}

// requirePolygons guards contiguity rules
func (p *prepared) requirePolygons() ([]orb.Geometry, error) {
	geoms := make([]orb.Geometry, len(p.objects))
	for i, obj := range p.objects {
		g := obj.Boundary()
		if g == nil || !isPolygonal(g) {
			return nil, fmt.Errorf("object %q: %w", p.ids[i], ErrNotPolygonal)
		}
		geoms[i] = g
	}
	return geoms, nil
}

// Features converts loaded features to the Object slice Build expects
func Features(fs []*Feature) []Object {
	objs := make([]Object, len(fs))
	for i, f := range fs {
		if f != nil {
			objs[i] = f
		}
	}
	return objs
}
