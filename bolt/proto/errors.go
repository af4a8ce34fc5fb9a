package proto

import "fmt"

// HandshakeError reports a failed version negotiation: a bad magic preamble,
// an I/O failure during handshake, or a server rejecting every candidate.
type HandshakeError struct {
	Op  string
	Err error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("bolt: handshake: %s: %v", e.Op, e.Err) }
func (e *HandshakeError) Unwrap() error { return e.Err }

// TransportError reports a socket read/write failure or unexpected EOF.
// It is always fatal: the connection transitions to Defunct.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("bolt: transport: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a message received in the wrong connection state,
// an unknown message signature, or IGNORED received outside Failed.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("bolt: protocol: %s: %v", e.Op, e.Err) }
func (e *ProtocolError) Unwrap() error { return e.Err }

// ServerFailure carries a server-reported FAILURE: a code such as
// "Neo.ClientError.Security.Unauthorized" and a human-readable message.
// It is recoverable via RESET (or ACK_FAILURE pre-3.0).
type ServerFailure struct {
	Code    string
	Message string
}

func (e *ServerFailure) Error() string {
	return fmt.Sprintf("bolt: server failure %s: %s", e.Code, e.Message)
}

// UnsupportedVersion reports that a message is not valid for the negotiated
// protocol version.
type UnsupportedVersion struct {
	Message string
	Version Version
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("bolt: %s is not supported on protocol version %s", e.Message, e.Version)
}

// Ignored is the outcome surfaced to a caller whose request was met with an
// IGNORED response because the connection was in Failed or Interrupted.
type Ignored struct {
	Op string
}

func (e *Ignored) Error() string { return fmt.Sprintf("bolt: %s ignored: connection needs RESET", e.Op) }
