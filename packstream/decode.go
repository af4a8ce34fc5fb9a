package packstream

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Decoder reads a sequence of PackStream values from an underlying reader.
// It is typically used over a buffer that already holds one complete,
// chunk-assembled message (see bolt/chunk), but works over any io.Reader.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r for value-at-a-time decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the byte representation of b and returns the decoded Value.
// It is a convenience for tests and for decoding a single standalone value.
func Decode(b []byte) (Value, error) {
	dec := NewDecoder(newByteReader(b))
	return dec.Decode()
}

// Decode reads and decodes exactly one PackStream value.
func (d *Decoder) Decode() (Value, error) {
	marker, err := d.r.ReadByte()
	if err != nil {
		return nil, newCodecError("decode", "read marker: %w", err)
	}
	return d.decodeValue(marker)
}

func (d *Decoder) decodeValue(marker byte) (Value, error) {
	switch {
	case marker == markerNull:
		return Null{}, nil
	case marker == markerFalse:
		return Boolean(false), nil
	case marker == markerTrue:
		return Boolean(true), nil
	case marker == markerFloat:
		return d.decodeFloat()
	case marker == markerInt8, marker == markerInt16, marker == markerInt32, marker == markerInt64:
		return d.decodeSizedInt(marker)
	case marker <= 0x7F:
		// Tiny positive int, 0x00-0x7F.
		return Int(int64(int8(marker))), nil
	case marker >= 0xF0:
		// Tiny negative int, 0xF0-0xFF (-16..-1).
		return Int(int64(int8(marker))), nil
	case marker == markerBytes8, marker == markerBytes16, marker == markerBytes32:
		return d.decodeBytes(marker)
	case marker >= markerTinyStringBase && marker <= markerTinyStringMax:
		return d.decodeFixedString(int(marker & 0x0F))
	case marker == markerString8, marker == markerString16, marker == markerString32:
		return d.decodeSizedString(marker)
	case marker >= markerTinyListBase && marker <= markerTinyListMax:
		return d.decodeFixedList(int(marker & 0x0F))
	case marker == markerList8, marker == markerList16, marker == markerList32:
		return d.decodeSizedList(marker)
	case marker >= markerTinyMapBase && marker <= markerTinyMapMax:
		return d.decodeFixedMap(int(marker & 0x0F))
	case marker == markerMap8, marker == markerMap16, marker == markerMap32:
		return d.decodeSizedMap(marker)
	case marker >= markerTinyStructBase && marker <= markerTinyStructMax:
		return d.decodeFixedStructure(int(marker & 0x0F))
	case marker == markerStruct8, marker == markerStruct16:
		return d.decodeSizedStructure(marker)
	default:
		return nil, newCodecError("decode", "unknown marker 0x%02X", marker)
	}
}

func (d *Decoder) decodeFloat() (Value, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
		return nil, newCodecError("decode", "read float: %w", err)
	}
	return Float(math.Float64frombits(binary.BigEndian.Uint64(tmp[:]))), nil
}

func (d *Decoder) decodeSizedInt(marker byte) (Value, error) {
	switch marker {
	case markerInt8:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, newCodecError("decode", "read int8: %w", err)
		}
		return Int(int64(int8(b))), nil
	case markerInt16:
		var tmp [2]byte
		if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
			return nil, newCodecError("decode", "read int16: %w", err)
		}
		return Int(int64(int16(binary.BigEndian.Uint16(tmp[:])))), nil
	case markerInt32:
		var tmp [4]byte
		if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
			return nil, newCodecError("decode", "read int32: %w", err)
		}
		return Int(int64(int32(binary.BigEndian.Uint32(tmp[:])))), nil
	default: // markerInt64
		var tmp [8]byte
		if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
			return nil, newCodecError("decode", "read int64: %w", err)
		}
		return Int(int64(binary.BigEndian.Uint64(tmp[:]))), nil
	}
}

func (d *Decoder) readLength(marker byte, m8, m16, m32 byte) (int, error) {
	switch marker {
	case m8:
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, newCodecError("decode", "read length8: %w", err)
		}
		return int(b), nil
	case m16:
		var tmp [2]byte
		if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
			return 0, newCodecError("decode", "read length16: %w", err)
		}
		return int(binary.BigEndian.Uint16(tmp[:])), nil
	case m32:
		var tmp [4]byte
		if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
			return 0, newCodecError("decode", "read length32: %w", err)
		}
		return int(binary.BigEndian.Uint32(tmp[:])), nil
	default:
		return 0, newCodecError("decode", "unexpected length marker 0x%02X", marker)
	}
}

func (d *Decoder) decodeBytes(marker byte) (Value, error) {
	n, err := d.readLength(marker, markerBytes8, markerBytes16, markerBytes32)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, newCodecError("decode", "read bytes payload: %w", err)
	}
	return Bytes(buf), nil
}

func (d *Decoder) decodeFixedString(n int) (Value, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, newCodecError("decode", "read string payload: %w", err)
	}
	return String(buf), nil
}

func (d *Decoder) decodeSizedString(marker byte) (Value, error) {
	n, err := d.readLength(marker, markerString8, markerString16, markerString32)
	if err != nil {
		return nil, err
	}
	return d.decodeFixedString(n)
}

func (d *Decoder) decodeFixedList(n int) (Value, error) {
	list := make(List, n)
	for i := 0; i < n; i++ {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		list[i] = v
	}
	return list, nil
}

func (d *Decoder) decodeSizedList(marker byte) (Value, error) {
	n, err := d.readLength(marker, markerList8, markerList16, markerList32)
	if err != nil {
		return nil, err
	}
	return d.decodeFixedList(n)
}

func (d *Decoder) decodeFixedMap(n int) (Value, error) {
	m := make(Map, n)
	for i := 0; i < n; i++ {
		keyVal, err := d.Decode()
		if err != nil {
			return nil, err
		}
		key, ok := keyVal.(String)
		if !ok {
			return nil, newCodecError("decode", "map key must be string, got %T", keyVal)
		}
		if _, dup := m[string(key)]; dup {
			return nil, newCodecError("decode", "duplicate map key %q", string(key))
		}
		val, err := d.Decode()
		if err != nil {
			return nil, err
		}
		m[string(key)] = val
	}
	return m, nil
}

func (d *Decoder) decodeSizedMap(marker byte) (Value, error) {
	n, err := d.readLength(marker, markerMap8, markerMap16, markerMap32)
	if err != nil {
		return nil, err
	}
	return d.decodeFixedMap(n)
}

func (d *Decoder) decodeFixedStructure(n int) (Value, error) {
	sig, err := d.r.ReadByte()
	if err != nil {
		return nil, newCodecError("decode", "read structure signature: %w", err)
	}
	fields := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return Structure{Signature: sig, Fields: fields}, nil
}

func (d *Decoder) decodeSizedStructure(marker byte) (Value, error) {
	n, err := d.readLength(marker, markerStruct8, markerStruct16, 0)
	if err != nil {
		return nil, err
	}
	return d.decodeFixedStructure(n)
}
