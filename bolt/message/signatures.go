// Package message implements the Bolt message catalog: per-version
// encoders for client request messages and decoders for server response
// messages, each carried as a PackStream Structure whose signature byte
// identifies the message kind.
package message

// Client message signatures.
const (
	SigInit        byte = 0x01
	SigAckFailure  byte = 0x0E
	SigReset       byte = 0x0F
	SigRun         byte = 0x10
	SigDiscardAll  byte = 0x2F // pre-4.0: DISCARD_ALL, no fields
	SigPullAll     byte = 0x3F // pre-4.0: PULL_ALL, no fields
	SigDiscard     byte = 0x2F // v4+: DISCARD{n, qid}; same signature, different shape
	SigPull        byte = 0x3F // v4+: PULL{n, qid}; same signature, different shape
	SigHello       byte = 0x01 // same byte as INIT; HELLO replaces INIT from v3
	SigGoodbye     byte = 0x02
	SigBegin       byte = 0x11
	SigCommit      byte = 0x12
	SigRollback    byte = 0x13
	SigLogon       byte = 0x6A
	SigLogoff      byte = 0x6B
)

// Server message signatures.
const (
	SigSuccess byte = 0x70
	SigRecord  byte = 0x71
	SigIgnored byte = 0x7E
	SigFailure byte = 0x7F
)
