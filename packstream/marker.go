package packstream

// Marker bytes, per the Bolt PackStream specification.
const (
	markerNull  byte = 0xC0
	markerFalse byte = 0xC2
	markerTrue  byte = 0xC3
	markerFloat byte = 0xC1

	markerInt8  byte = 0xC8
	markerInt16 byte = 0xC9
	markerInt32 byte = 0xCA
	markerInt64 byte = 0xCB

	markerBytes8  byte = 0xCC
	markerBytes16 byte = 0xCD
	markerBytes32 byte = 0xCE

	markerTinyStringBase byte = 0x80
	markerTinyStringMax  byte = 0x8F
	markerString8        byte = 0xD0
	markerString16       byte = 0xD1
	markerString32       byte = 0xD2

	markerTinyListBase byte = 0x90
	markerTinyListMax  byte = 0x9F
	markerList8        byte = 0xD4
	markerList16       byte = 0xD5
	markerList32       byte = 0xD6

	markerTinyMapBase byte = 0xA0
	markerTinyMapMax  byte = 0xAF
	markerMap8        byte = 0xD8
	markerMap16       byte = 0xD9
	markerMap32       byte = 0xDA

	markerTinyStructBase byte = 0xB0
	markerTinyStructMax  byte = 0xBF
	markerStruct8        byte = 0xDC
	markerStruct16       byte = 0xDD

	// tinyIntMin/tinyIntMax bound the range encoded as a single byte
	// (two's-complement, no separate marker).
	tinyIntMin int64 = -16
	tinyIntMax int64 = 127
)
