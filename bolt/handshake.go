package bolt

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magicPreamble is the 4-byte Bolt magic sent at the start of every
// connection, before any version candidates.
var magicPreamble = [4]byte{0x60, 0x60, 0xB0, 0x17}

const maxHandshakeCandidates = 4

// Handshake performs the magic preamble + version negotiation over rw and
// returns the version the server selected. It does not touch any state
// machine; on success the caller advances its connection from Disconnected
// to Negotiated with the returned version.
func Handshake(rw io.ReadWriter, candidates []Version) (Version, error) {
	if len(candidates) == 0 {
		candidates = DefaultVersions
	}

	slots := encodeCandidates(candidates)
	if len(slots) > maxHandshakeCandidates {
		slots = slots[:maxHandshakeCandidates]
	}

	buf := make([]byte, 0, 4+maxHandshakeCandidates*4)
	buf = append(buf, magicPreamble[:]...)
	for _, s := range slots {
		buf = binary.BigEndian.AppendUint32(buf, s)
	}
	for i := len(slots); i < maxHandshakeCandidates; i++ {
		buf = binary.BigEndian.AppendUint32(buf, 0)
	}

	if _, err := rw.Write(buf); err != nil {
		return Version{}, &HandshakeError{Op: "write candidates", Err: err}
	}

	var resp [4]byte
	if _, err := io.ReadFull(rw, resp[:]); err != nil {
		return Version{}, &HandshakeError{Op: "read response", Err: err}
	}
	chosen := binary.BigEndian.Uint32(resp[:])
	if chosen == 0 {
		return Version{}, &HandshakeError{Op: "negotiate", Err: fmt.Errorf("server accepted no candidate")}
	}

	// Chosen version layout: 2 zero bytes, then minor, then major
	// (i.e. the low 16 bits hold minor<<8|major).
	minor := byte(chosen >> 8)
	major := byte(chosen)
	return Version{Major: major, Minor: minor}, nil
}

// encodeCandidate packs a single exact candidate version into the 32-bit
// wire form: two zero bytes, then minor, then major.
func encodeCandidate(v Version) uint32 {
	return uint32(v.Minor)<<8 | uint32(v.Major)
}

// encodeCandidateRange packs a candidate offering minorCount additional
// minor versions below v.Minor (down to v.Minor-minorCount), as introduced
// in protocol 4.3: high byte = minor_count, next = minor, next = major, low
// byte = 0. This is a distinct wire form from encodeCandidate, used only
// when the client wants to request a contiguous range in a single slot.
func encodeCandidateRange(v Version, minorCount byte) uint32 {
	return uint32(minorCount)<<24 | uint32(v.Minor)<<16 | uint32(v.Major)<<8
}

// encodeCandidates packs candidates into wire slots, collapsing a
// contiguous descending run of minors under one major>=4 into a single
// range slot (encodeCandidateRange) instead of one exact slot per minor.
// A run is contiguous only if it appears adjacent in candidates and each
// step drops the minor by exactly one; callers that want range negotiation
// list the minors that way (e.g. {4,4}, {4,3}, {4,2}).
func encodeCandidates(candidates []Version) []uint32 {
	var out []uint32
	for i := 0; i < len(candidates); {
		v := candidates[i]
		j := i + 1
		for j < len(candidates) &&
			candidates[j].Major == v.Major &&
			candidates[j].Minor == candidates[j-1].Minor-1 {
			j++
		}
		run := candidates[i:j]
		if v.Major >= 4 && len(run) > 1 {
			minorCount := run[0].Minor - run[len(run)-1].Minor
			out = append(out, encodeCandidateRange(run[0], minorCount))
		} else {
			for _, c := range run {
				out = append(out, encodeCandidate(c))
			}
		}
		i = j
	}
	return out
}
