// Package bolt implements the core of a Bolt protocol client driver:
// handshake, transport framing, the versioned message catalog, the
// connection state machine, and the result-streaming model. It assumes a
// reliable duplex byte stream (plain TCP or TLS) is handed to it; pool
// management, query-language parsing, and user-facing query helpers live
// above this package.
package bolt

import "github.com/mickamy/go-bolt/bolt/proto"

// Error taxonomy, aliased from bolt/proto so that bolt/message and
// bolt/state can construct and return them without importing this
// package (which itself depends on them).
type (
	HandshakeError     = proto.HandshakeError
	TransportError     = proto.TransportError
	ProtocolError      = proto.ProtocolError
	ServerFailure      = proto.ServerFailure
	UnsupportedVersion = proto.UnsupportedVersion
	Ignored            = proto.Ignored
)
