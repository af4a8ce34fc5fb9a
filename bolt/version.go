package bolt

import "github.com/mickamy/go-bolt/bolt/proto"

// Version identifies a negotiated Bolt protocol version. It is an alias of
// proto.Version so that this package, bolt/message, and bolt/state all
// share one type without an import cycle.
type Version = proto.Version

// DefaultVersions is the ordered list of candidate versions offered during
// handshake when Config.BoltVersions is unset.
var DefaultVersions = proto.DefaultVersions
