package message

import (
	"fmt"

	"github.com/mickamy/go-bolt/bolt/chunk"
	"github.com/mickamy/go-bolt/packstream"
)

// Encode frames msg as PackStream and writes it through cw as a chunked
// message.
func Encode(cw *chunk.Writer, msg packstream.Structure) error {
	payload, err := packstream.Encode(msg)
	if err != nil {
		return fmt.Errorf("bolt: encode message 0x%02X: %w", msg.Signature, err)
	}
	if err := cw.WriteMessage(payload); err != nil {
		return fmt.Errorf("bolt: write message 0x%02X: %w", msg.Signature, err)
	}
	return nil
}

// Decode reads one chunked message from cr and decodes it as a Structure.
// A non-Structure top-level value is a protocol error: every Bolt message is
// a signed Structure.
func Decode(cr *chunk.Reader) (packstream.Structure, error) {
	raw, err := cr.ReadMessage()
	if err != nil {
		return packstream.Structure{}, fmt.Errorf("bolt: read message: %w", err)
	}
	val, err := packstream.Decode(raw)
	if err != nil {
		return packstream.Structure{}, fmt.Errorf("bolt: decode message: %w", err)
	}
	s, ok := val.(packstream.Structure)
	if !ok {
		return packstream.Structure{}, fmt.Errorf("bolt: message is not a structure: %T", val)
	}
	return s, nil
}
