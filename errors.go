package weights

import "errors"

var (
	// ErrNilObject indicates a nil Object was passed to Build.
	ErrNilObject = errors.New("weights: nil object")
	// ErrDuplicateID indicates two objects share an identifier.
	ErrDuplicateID = errors.New("weights: duplicate object id")
	// ErrNoCentroid indicates a metric rule met an object without a centroid.
	ErrNoCentroid = errors.New("weights: object has no centroid")
	// ErrNonMetricCRS indicates a metric rule on geographic (lon/lat) coordinates.
	ErrNonMetricCRS = errors.New("weights: coordinate reference system is not planar")
	// ErrNotPolygonal indicates a contiguity rule met a non-polygon geometry.
	ErrNotPolygonal = errors.New("weights: contiguity requires polygon geometries")
	// ErrLabelsMismatch indicates block labels do not cover every object.
	ErrLabelsMismatch = errors.New("weights: block labels must assign every object")
	// ErrInvalidParameter indicates an out-of-range rule or transform parameter.
	ErrInvalidParameter = errors.New("weights: invalid parameter")
	// ErrLengthMismatch indicates an attribute vector does not match the node count.
	ErrLengthMismatch = errors.New("weights: vector length does not match node count")
	// ErrMalformed indicates an unreadable weights file.
	ErrMalformed = errors.New("weights: malformed weights file")
)
