package values

import "github.com/mickamy/go-bolt/packstream"

// Unknown holds a structure whose signature this package does not
// recognize, preserved verbatim rather than rejected. A server ahead of
// this driver's catalog (a new spatial or temporal type, say) degrades to
// an opaque value instead of an error.
type Unknown struct {
	Signature byte
	Fields    []packstream.Value
}

// Decode dispatches a Structure to its concrete domain type by signature
// byte, returning one of Node, Relationship, UnboundRelationship, Path,
// Point, Date, Time, LocalTime, LocalDateTime, DateTimeOffset,
// DateTimeZoneID, Duration, or Unknown.
func Decode(s packstream.Structure) (any, error) {
	switch s.Signature {
	case SigNode:
		return DecodeNode(s)
	case SigRelationship:
		return DecodeRelationship(s)
	case SigUnboundRelationship:
		return DecodeUnboundRelationship(s)
	case SigPath:
		return DecodePath(s)
	case SigPoint2D:
		return DecodePoint2D(s)
	case SigPoint3D:
		return DecodePoint3D(s)
	case SigDate:
		return DecodeDate(s)
	case SigTime:
		return DecodeTime(s)
	case SigLocalTime:
		return DecodeLocalTime(s)
	case SigLocalDateTime:
		return DecodeLocalDateTime(s)
	case SigDateTimeLegacy, SigDateTimeUTC:
		return DecodeDateTimeOffset(s)
	case SigDateTimeZoneIDLegacy, SigDateTimeZoneIDUTC:
		return DecodeDateTimeZoneID(s)
	case SigDuration:
		return DecodeDuration(s)
	default:
		return Unknown{Signature: s.Signature, Fields: s.Fields}, nil
	}
}
