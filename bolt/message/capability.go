package message

import (
	"fmt"

	"github.com/mickamy/go-bolt/bolt/proto"
	"github.com/mickamy/go-bolt/packstream"
)

// SupportsQid reports whether v identifies streams by query id, allowing
// multiple concurrent streams on one connection.
func SupportsQid(v proto.Version) bool { return v.AtLeast(4, 0) }

// SupportsExplicitPull reports whether v uses PULL{n,qid}/DISCARD{n,qid}
// rather than the fixed PULL_ALL/DISCARD_ALL of earlier versions.
func SupportsExplicitPull(v proto.Version) bool { return v.AtLeast(4, 0) }

// SupportsHello reports whether v uses HELLO (and BEGIN/COMMIT/ROLLBACK/
// RESET/GOODBYE) rather than the v1/v2 INIT+ACK_FAILURE catalog.
func SupportsHello(v proto.Version) bool { return v.AtLeast(3, 0) }

// SupportsLogon reports whether v splits authentication into HELLO (no
// credentials) followed by a separate LOGON message.
func SupportsLogon(v proto.Version) bool { return v.AtLeast(5, 1) }

// SupportsRouting reports whether HELLO's extra map may carry a routing
// entry.
func SupportsRouting(v proto.Version) bool { return v.AtLeast(4, 1) }

// SupportsImpersonation reports whether RUN/BEGIN extras may carry imp_user.
func SupportsImpersonation(v proto.Version) bool { return v.AtLeast(4, 4) }

// SupportsNotifications reports whether HELLO/RUN extras may carry
// notification filtering (minimum severity / disabled categories) and a
// bolt_agent entry.
func SupportsNotifications(v proto.Version) bool { return v.AtLeast(5, 2) }

// SupportsBoltAgent reports whether HELLO's extra map carries bolt_agent.
func SupportsBoltAgent(v proto.Version) bool { return v.AtLeast(5, 2) }

// SupportsElementID reports whether Node/Relationship structures carry a
// string element_id field alongside the legacy integer id.
func SupportsElementID(v proto.Version) bool { return v.AtLeast(5, 0) }

// SupportsUTCDateTime reports whether the server prefers the UTC-encoded
// DateTime/DateTimeZoneId structure signatures over the legacy ones.
func SupportsUTCDateTime(v proto.Version) bool { return v.AtLeast(5, 0) }

// SupportsBytes reports whether the Bytes PackStream type is valid on the
// wire (it is not sent/received pre-2.0).
func SupportsBytes(v proto.Version) bool { return v.AtLeast(2, 0) }

// ValidateParams walks params (recursing into nested List/Map values) and
// rejects any Bytes value when v predates Bytes support, so a caller gets a
// clear error instead of a server-side decode failure on an older
// connection.
func ValidateParams(v proto.Version, params packstream.Map) error {
	if v.LessThan(2, 0) {
		for k, val := range params {
			if err := checkNoBytes(val); err != nil {
				return fmt.Errorf("param %q: %w", k, err)
			}
		}
	}
	return nil
}

func checkNoBytes(v packstream.Value) error {
	switch x := v.(type) {
	case packstream.Bytes:
		return fmt.Errorf("Bytes values require Bolt >= 2.0")
	case packstream.List:
		for i, e := range x {
			if err := checkNoBytes(e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	case packstream.Map:
		for k, e := range x {
			if err := checkNoBytes(e); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
	}
	return nil
}
