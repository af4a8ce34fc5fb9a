package values

import (
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/bolt/proto"
	"github.com/mickamy/go-bolt/packstream"
)

// DecodeVersioned dispatches s exactly like Decode, additionally validating
// that the decoded value's version-sensitive fields are consistent with
// what v negotiates: element_id presence on graph entities, and legacy vs.
// UTC-preferring datetime signatures. A mismatch means the server sent a
// structure shape its own negotiated version shouldn't produce, which is
// surfaced as an error rather than silently trusted.
func DecodeVersioned(v proto.Version, s packstream.Structure) (any, error) {
	val, err := Decode(s)
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case Node:
		if err := checkElementID(s.Signature, v, x.ElementID != ""); err != nil {
			return nil, err
		}
	case Relationship:
		if err := checkElementID(s.Signature, v, x.ElementID != ""); err != nil {
			return nil, err
		}
	case UnboundRelationship:
		if err := checkElementID(s.Signature, v, x.ElementID != ""); err != nil {
			return nil, err
		}
	case DateTimeOffset:
		if err := checkDateTimeUTC(s.Signature, v, x.UTC); err != nil {
			return nil, err
		}
	case DateTimeZoneID:
		if err := checkDateTimeUTC(s.Signature, v, x.UTC); err != nil {
			return nil, err
		}
	}
	return val, nil
}

func checkElementID(sig byte, v proto.Version, hasElementID bool) error {
	if hasElementID && !message.SupportsElementID(v) {
		return newDecodeError(sig, "element_id present but negotiated version %s predates it", v)
	}
	if !hasElementID && message.SupportsElementID(v) {
		return newDecodeError(sig, "element_id missing on negotiated version %s, which always sends it", v)
	}
	return nil
}

// checkDateTimeUTC validates utc against v: pre-4.3 can never produce a
// UTC-preferring signature, and v>=5.0 always does (patch_bolt is opt-in
// only for the 4.3/4.4 window, so either signature is legal there).
func checkDateTimeUTC(sig byte, v proto.Version, utc bool) error {
	if utc && !v.AtLeast(4, 3) {
		return newDecodeError(sig, "UTC-preferring datetime signature on negotiated version %s, which predates it", v)
	}
	if !utc && message.SupportsUTCDateTime(v) {
		return newDecodeError(sig, "legacy datetime signature on negotiated version %s, which defaults to UTC", v)
	}
	return nil
}
