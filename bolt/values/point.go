package values

import "github.com/mickamy/go-bolt/packstream"

// Point is a spatial value in a coordinate reference system identified by
// SRID. Z is present only for 3D points.
type Point struct {
	SRID int64
	X    float64
	Y    float64
	Z    float64
	Is3D bool
}

// Known SRIDs, from which a Point's coordinate reference system is
// derived rather than carried on the wire.
const (
	SRIDWGS84     = 4326
	SRIDWGS843D   = 4979
	SRIDCartesian = 7203
	SRIDCartesian3D = 9157
)

// CRS names the coordinate reference system implied by p.SRID.
func (p Point) CRS() string {
	switch p.SRID {
	case SRIDWGS84:
		return "wgs-84"
	case SRIDWGS843D:
		return "wgs-84-3d"
	case SRIDCartesian:
		return "cartesian"
	case SRIDCartesian3D:
		return "cartesian-3d"
	default:
		return "unknown"
	}
}

// DecodePoint2D decodes a Point2D structure: Point2D(srid, x, y).
func DecodePoint2D(s packstream.Structure) (Point, error) {
	if s.Signature != SigPoint2D {
		return Point{}, newDecodeError(s.Signature, "not a Point2D structure")
	}
	if len(s.Fields) != 3 {
		return Point{}, newDecodeError(s.Signature, "want 3 fields, got %d", len(s.Fields))
	}
	srid, err := asInt(s.Fields[0])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "srid: %w", err)
	}
	x, err := asFloat(s.Fields[1])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "x: %w", err)
	}
	y, err := asFloat(s.Fields[2])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "y: %w", err)
	}
	return Point{SRID: srid, X: x, Y: y}, nil
}

// DecodePoint3D decodes a Point3D structure: Point3D(srid, x, y, z).
func DecodePoint3D(s packstream.Structure) (Point, error) {
	if s.Signature != SigPoint3D {
		return Point{}, newDecodeError(s.Signature, "not a Point3D structure")
	}
	if len(s.Fields) != 4 {
		return Point{}, newDecodeError(s.Signature, "want 4 fields, got %d", len(s.Fields))
	}
	srid, err := asInt(s.Fields[0])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "srid: %w", err)
	}
	x, err := asFloat(s.Fields[1])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "x: %w", err)
	}
	y, err := asFloat(s.Fields[2])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "y: %w", err)
	}
	z, err := asFloat(s.Fields[3])
	if err != nil {
		return Point{}, newDecodeError(s.Signature, "z: %w", err)
	}
	return Point{SRID: srid, X: x, Y: y, Z: z, Is3D: true}, nil
}

func asFloat(v packstream.Value) (float64, error) {
	switch f := v.(type) {
	case packstream.Float:
		return float64(f), nil
	case packstream.Int:
		return float64(f), nil
	default:
		return 0, newDecodeError(0, "want Float, got %T", v)
	}
}
