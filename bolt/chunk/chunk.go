// Package chunk implements the Bolt chunked transport envelope: every
// logical message is a sequence of u16-length-prefixed chunks terminated by
// a zero-length chunk, the framing layer underneath the message codec.
package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxChunkSize is the largest payload a single chunk can carry (a u16
// length field).
const MaxChunkSize = 0xFFFF

// Writer writes one logical message at a time as chunks of at most
// MaxChunkSize bytes followed by a terminating zero-length chunk. It writes
// straight to the underlying writer; nothing is held back between calls.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter wraps w for chunked message writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage frames payload as one or more chunks followed by the
// zero-length terminator, and flushes immediately.
func (cw *Writer) WriteMessage(payload []byte) error {
	for len(payload) > 0 {
		n := len(payload)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}
		if err := cw.writeChunk(payload[:n]); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return cw.writeTerminator()
}

func (cw *Writer) writeChunk(b []byte) error {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(b)))
	if _, err := cw.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("chunk: write length: %w", err)
	}
	if _, err := cw.w.Write(b); err != nil {
		return fmt.Errorf("chunk: write payload: %w", err)
	}
	return nil
}

func (cw *Writer) writeTerminator() error {
	if _, err := cw.w.Write([]byte{0x00, 0x00}); err != nil {
		return fmt.Errorf("chunk: write terminator: %w", err)
	}
	return nil
}

// Reader accumulates chunks from an underlying reader until the zero-length
// terminator and hands back the assembled message.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for chunked message reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMessage reads chunks until the terminator and returns the
// concatenated payload, which the caller should decode as exactly one
// PackStream value.
func (cr *Reader) ReadMessage() ([]byte, error) {
	var msg []byte
	for {
		var hdr [2]byte
		if _, err := io.ReadFull(cr.r, hdr[:]); err != nil {
			return nil, fmt.Errorf("chunk: read length: %w", err)
		}
		n := binary.BigEndian.Uint16(hdr[:])
		if n == 0 {
			if msg == nil {
				// An immediate terminator with no preceding chunk is a
				// malformed (empty) message.
				return nil, fmt.Errorf("chunk: empty message")
			}
			return msg, nil
		}
		chunkBuf := make([]byte, n)
		if _, err := io.ReadFull(cr.r, chunkBuf); err != nil {
			return nil, fmt.Errorf("chunk: read payload: %w", err)
		}
		msg = append(msg, chunkBuf...)
	}
}
