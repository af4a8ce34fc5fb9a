// Package state implements the Bolt connection state machine: an explicit
// enum plus a small record (current state, negotiated version, current
// query id, failure flag) and the legal (state, message) transitions. It
// contains no I/O; callers drive it from message send/receive events.
package state

import "fmt"

// State is a Bolt connection's lifecycle stage.
type State int

const (
	Disconnected State = iota
	Negotiated
	Unauthenticated
	Ready
	Streaming
	TxReady
	TxStreaming
	Failed
	Interrupted
	Defunct
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Negotiated:
		return "Negotiated"
	case Unauthenticated:
		return "Unauthenticated"
	case Ready:
		return "Ready"
	case Streaming:
		return "Streaming"
	case TxReady:
		return "TxReady"
	case TxStreaming:
		return "TxStreaming"
	case Failed:
		return "Failed"
	case Interrupted:
		return "Interrupted"
	case Defunct:
		return "Defunct"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Message identifies a client request kind for the purpose of checking
// send legality against the current state. It intentionally names
// operations, not wire signatures (message.SigRun etc. live one layer
// down).
type Message int

const (
	MsgHello Message = iota
	MsgInit
	MsgLogon
	MsgLogoff
	MsgRun
	MsgPull
	MsgDiscard
	MsgBegin
	MsgCommit
	MsgRollback
	MsgReset
	MsgAckFailure
	MsgGoodbye
)

func (m Message) String() string {
	names := [...]string{"HELLO", "INIT", "LOGON", "LOGOFF", "RUN", "PULL", "DISCARD", "BEGIN", "COMMIT", "ROLLBACK", "RESET", "ACK_FAILURE", "GOODBYE"}
	if int(m) < len(names) {
		return names[m]
	}
	return fmt.Sprintf("Message(%d)", int(m))
}

// legalSends lists, for each state, the messages a caller may submit. RESET
// is legal from every non-terminal state (it is the universal recovery and
// no-op-from-Ready operation); GOODBYE is legal from every non-terminal
// state (orderly shutdown).
var legalSends = map[State]map[Message]bool{
	Negotiated:      {MsgHello: true, MsgInit: true},
	Unauthenticated: {MsgLogon: true},
	Ready:           {MsgRun: true, MsgBegin: true, MsgLogoff: true},
	Streaming:       {MsgPull: true, MsgDiscard: true},
	TxReady:         {MsgRun: true, MsgCommit: true, MsgRollback: true},
	TxStreaming:     {MsgPull: true, MsgDiscard: true},
	Failed:          {MsgAckFailure: true, MsgReset: true},
	Interrupted:     {},
}

// universallyLegal are messages permitted from any non-terminal state
// regardless of legalSends.
var universallyLegal = map[Message]bool{
	MsgReset:   true,
	MsgGoodbye: true,
}
