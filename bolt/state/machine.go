package state

import (
	"fmt"

	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/bolt/proto"
)

// Machine tracks one connection's lifecycle stage, negotiated version, and
// the query id of any stream currently being driven. It performs no I/O;
// Send/Handle are called by the connection orchestrator around the actual
// write/read of a message.
type Machine struct {
	version proto.Version
	state   State
	qid     int64
	failure *proto.ServerFailure
}

// NewMachine returns a Machine in Disconnected, to be advanced to Negotiated
// once the handshake completes.
func NewMachine() *Machine {
	return &Machine{state: Disconnected, qid: -1}
}

// State reports the current lifecycle stage.
func (m *Machine) State() State { return m.state }

// Version reports the negotiated protocol version. Zero before Negotiated.
func (m *Machine) Version() proto.Version { return m.version }

// QID reports the query id of the stream currently being driven, or -1 if
// none.
func (m *Machine) QID() int64 { return m.qid }

// Failure reports the server failure that moved the connection into Failed,
// or nil if the connection is not Failed/Interrupted.
func (m *Machine) Failure() *proto.ServerFailure { return m.failure }

// Negotiated advances Disconnected -> Negotiated after a successful
// handshake, recording the chosen version.
func (m *Machine) Negotiated(v proto.Version) error {
	if m.state != Disconnected {
		return &proto.ProtocolError{Op: "negotiate", Err: fmt.Errorf("connection already %s", m.state)}
	}
	if v.IsZero() {
		return &proto.ProtocolError{Op: "negotiate", Err: fmt.Errorf("zero version")}
	}
	m.version = v
	m.state = Negotiated
	return nil
}

// CanSend reports whether msg may legally be submitted in the current
// state.
func (m *Machine) CanSend(msg Message) bool {
	if universallyLegal[msg] && m.state != Disconnected && m.state != Defunct {
		return true
	}
	return legalSends[m.state][msg]
}

// checkPrecondition returns a *proto.ProtocolError if msg is not legal from
// the current state, nil otherwise.
func (m *Machine) checkPrecondition(msg Message) error {
	if !m.CanSend(msg) {
		return &proto.ProtocolError{Op: msg.String(), Err: fmt.Errorf("not legal from state %s", m.state)}
	}
	return nil
}

// Send validates that msg may be submitted from the current state. It does
// not itself mutate state; the transition happens in Handle once the
// server's response is known.
func (m *Machine) Send(msg Message) error {
	return m.checkPrecondition(msg)
}

// Handle advances the state machine given the kind of request that was sent
// and the decoded response to it, following the protocol's transition
// table. It returns a *proto.ProtocolError for a response that doesn't fit the
// current state/message pair (a defect in the driver or an uncooperative
// server), and leaves state/qid/failure updated for every other case.
func (m *Machine) Handle(msg Message, resp *message.Response) error {
	if m.state == Failed && msg != MsgReset && msg != MsgAckFailure {
		m.state = Interrupted
		return nil
	}

	switch resp.Kind {
	case message.KindFailure:
		m.failure = resp.Failure
		m.state = Failed
		return nil

	case message.KindIgnored:
		// Surfaced to the caller by the orchestrator; state is unchanged
		// (already Failed/Interrupted, which is how IGNORED arises).
		return nil

	case message.KindRecord:
		if m.state != Streaming && m.state != TxStreaming {
			return &proto.ProtocolError{Op: "record", Err: fmt.Errorf("unexpected RECORD in state %s", m.state)}
		}
		return nil
	}

	// message.KindSuccess.
	switch msg {
	case MsgHello, MsgInit:
		if m.version.AtLeast(5, 1) {
			m.state = Unauthenticated
		} else {
			m.state = Ready
		}
		return nil

	case MsgLogon:
		m.state = Ready
		return nil

	case MsgLogoff:
		if m.state != Ready {
			return &proto.ProtocolError{Op: "logoff", Err: fmt.Errorf("unexpected LOGOFF SUCCESS in state %s", m.state)}
		}
		m.state = Unauthenticated
		return nil

	case MsgRun:
		if m.state != Ready && m.state != TxReady {
			return &proto.ProtocolError{Op: "run", Err: fmt.Errorf("unexpected RUN SUCCESS in state %s", m.state)}
		}
		m.qid = resp.QID()
		if m.state == TxReady {
			m.state = TxStreaming
		} else {
			m.state = Streaming
		}
		return nil

	case MsgPull, MsgDiscard:
		if m.state != Streaming && m.state != TxStreaming {
			return &proto.ProtocolError{Op: msg.String(), Err: fmt.Errorf("unexpected %s SUCCESS in state %s", msg, m.state)}
		}
		if msg == MsgPull && resp.HasMore() {
			// Streaming -> Streaming / TxStreaming -> TxStreaming: unchanged.
			return nil
		}
		m.qid = -1
		if m.state == TxStreaming {
			m.state = TxReady
		} else {
			m.state = Ready
		}
		return nil

	case MsgBegin:
		if m.state != Ready {
			return &proto.ProtocolError{Op: "begin", Err: fmt.Errorf("unexpected BEGIN SUCCESS in state %s", m.state)}
		}
		m.state = TxReady
		return nil

	case MsgCommit, MsgRollback:
		if m.state != TxReady {
			return &proto.ProtocolError{Op: msg.String(), Err: fmt.Errorf("unexpected %s SUCCESS in state %s", msg, m.state)}
		}
		m.state = Ready
		return nil

	case MsgReset, MsgAckFailure:
		m.failure = nil
		m.qid = -1
		m.state = Ready
		return nil

	case MsgGoodbye:
		m.state = Defunct
		return nil
	}

	return &proto.ProtocolError{Op: msg.String(), Err: fmt.Errorf("unhandled message in state %s", m.state)}
}

// Defunct forces the terminal state after a transport error: any state
// transitions to Defunct on one. It is idempotent.
func (m *Machine) Defunct() {
	m.state = Defunct
}
