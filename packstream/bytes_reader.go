package packstream

import "bytes"

// newByteReader adapts a byte slice for one-shot decoding without requiring
// callers to import bytes themselves.
func newByteReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
