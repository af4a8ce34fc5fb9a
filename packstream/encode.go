package packstream

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode writes the smallest valid marker+payload encoding of v to a new
// buffer and returns it.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeInto(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeInto(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(markerNull)
		return nil
	case Null:
		buf.WriteByte(markerNull)
		return nil
	case Boolean:
		if val {
			buf.WriteByte(markerTrue)
		} else {
			buf.WriteByte(markerFalse)
		}
		return nil
	case Int:
		encodeInt(buf, int64(val))
		return nil
	case Float:
		buf.WriteByte(markerFloat)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(float64(val)))
		buf.Write(tmp[:])
		return nil
	case Bytes:
		return encodeBytes(buf, val)
	case String:
		return encodeString(buf, string(val))
	case List:
		return encodeList(buf, val)
	case Map:
		return encodeMap(buf, val)
	case Structure:
		return encodeStructure(buf, val)
	default:
		return newCodecError("encode", "unsupported value type %T", v)
	}
}

func encodeInt(buf *bytes.Buffer, n int64) {
	switch {
	case n >= tinyIntMin && n <= tinyIntMax:
		buf.WriteByte(byte(int8(n)))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		buf.WriteByte(markerInt8)
		buf.WriteByte(byte(int8(n)))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		buf.WriteByte(markerInt16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(int16(n)))
		buf.Write(tmp[:])
	case n >= math.MinInt32 && n <= math.MaxInt32:
		buf.WriteByte(markerInt32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(int32(n)))
		buf.Write(tmp[:])
	default:
		buf.WriteByte(markerInt64)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(n))
		buf.Write(tmp[:])
	}
}

func encodeBytes(buf *bytes.Buffer, b []byte) error {
	n := len(b)
	switch {
	case n <= 0xFF:
		buf.WriteByte(markerBytes8)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(markerBytes16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	case n <= 0x7FFFFFFF:
		buf.WriteByte(markerBytes32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(n))
		buf.Write(tmp[:])
	default:
		return newCodecError("encode", "bytes too long: %d", n)
	}
	buf.Write(b)
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	n := len(s)
	switch {
	case n <= 15:
		buf.WriteByte(markerTinyStringBase | byte(n))
	case n <= 0xFF:
		buf.WriteByte(markerString8)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(markerString16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	case n <= 0x7FFFFFFF:
		buf.WriteByte(markerString32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(n))
		buf.Write(tmp[:])
	default:
		return newCodecError("encode", "string too long: %d", n)
	}
	buf.WriteString(s)
	return nil
}

func encodeList(buf *bytes.Buffer, list List) error {
	n := len(list)
	switch {
	case n <= 15:
		buf.WriteByte(markerTinyListBase | byte(n))
	case n <= 0xFF:
		buf.WriteByte(markerList8)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(markerList16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	case n <= 0x7FFFFFFF:
		buf.WriteByte(markerList32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(n))
		buf.Write(tmp[:])
	default:
		return newCodecError("encode", "list too long: %d", n)
	}
	for _, elem := range list {
		if err := encodeInto(buf, elem); err != nil {
			return err
		}
	}
	return nil
}

func encodeMap(buf *bytes.Buffer, m Map) error {
	n := len(m)
	switch {
	case n <= 15:
		buf.WriteByte(markerTinyMapBase | byte(n))
	case n <= 0xFF:
		buf.WriteByte(markerMap8)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(markerMap16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	case n <= 0x7FFFFFFF:
		buf.WriteByte(markerMap32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(n))
		buf.Write(tmp[:])
	default:
		return newCodecError("encode", "map too long: %d", n)
	}
	// Key order is not meaningful; iteration order is whatever Go gives us.
	for k, val := range m {
		if err := encodeString(buf, k); err != nil {
			return err
		}
		if err := encodeInto(buf, val); err != nil {
			return err
		}
	}
	return nil
}

func encodeStructure(buf *bytes.Buffer, s Structure) error {
	n := len(s.Fields)
	switch {
	case n <= 15:
		buf.WriteByte(markerTinyStructBase | byte(n))
	case n <= 0xFF:
		buf.WriteByte(markerStruct8)
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(markerStruct16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	default:
		return newCodecError("encode", "structure too long: %d", n)
	}
	buf.WriteByte(s.Signature)
	for _, field := range s.Fields {
		if err := encodeInto(buf, field); err != nil {
			return err
		}
	}
	return nil
}
