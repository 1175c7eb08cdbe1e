package s7

// S7 header constants. All multibyte integers on the wire are big-endian;
// see bigendian.go for the read/write helpers this codec uses throughout.
const (
	protocolID = 0x32

	// Message types.
	msgJobRequest = 0x01
	msgAckData    = 0x03
	msgAck        = 0x02 // bare ACK, no data — seen on some error responses

	// Function codes.
	funcCommSetup = 0xF0
	funcRead      = 0x04
	funcWrite     = 0x05

	// jobHeaderSize is the size of an S7 header on a job request (no
	// error class/code).
	jobHeaderSize = 10
	// ackHeaderSize is the size of an S7 header on an AckData response
	// (adds error class + error code after the 10-byte header).
	ackHeaderSize = 12

	s7AnySpecType = 0x12
	s7AnyLen      = 0x0A
	s7AnySyntaxID = 0x10
)

// Area identifies an S7 memory area
type Area byte

const (
	AreaInput     Area = 0x81
	AreaOutput    Area = 0x82
	AreaMarker    Area = 0x83
	AreaDataBlock Area = 0x84
	AreaCounter   Area = 0x1C
	AreaTimer     Area = 0x1D
)

// VariableType identifies how an address's bit offset is interpreted.
type VariableType byte

const (
	VarBit     VariableType = 0x01
	VarByte    VariableType = 0x02
	VarCounter VariableType = 0x1C
	VarTimer   VariableType = 0x1D
)

// TransportSize identifies the wire transport granularity of an item's
// value
type TransportSize byte

const (
	TransportBit   TransportSize = 0x01
	TransportByte  TransportSize = 0x02
	TransportChar  TransportSize = 0x03
	TransportWord  TransportSize = 0x04
	TransportInt   TransportSize = 0x05
	TransportDWord TransportSize = 0x06
	TransportDInt  TransportSize = 0x07
	TransportReal  TransportSize = 0x08
)

// IsSizeInBytes reports whether count on the wire for this transport is
// measured in bytes rather than bits. Only the bit transport is
// bit-granular; everything else is byte-granular
func (t TransportSize) IsSizeInBytes() bool {
	return t != TransportBit
}

// Data item return codes (per-item result in a read response / write
// request)
const (
	dataItemSuccess          = 0xFF
	dataItemHardwareFault    = 0x01
	dataItemAccessDenied     = 0x03
	dataItemAddressError     = 0x05
	dataItemTypeError        = 0x06
	dataItemTypeInconsistent = 0x07
	dataItemNotExist         = 0x0A
)

// Header-level (AckData) error classes.
const (
	errClassNoError     = 0x00
	errClassAppRelation = 0x81
	errClassObjDef      = 0x82
	errClassResource    = 0x83
	errClassService     = 0x84
	errClassNoResource  = 0x85
	errClassAccess      = 0x87
)

// s7Header is the 10-byte job-request S7 header. AckData responses carry
// the same 10 bytes immediately followed by a 2-byte error class/code.
type s7Header struct {
	messageType   byte
	pduReference  uint16
	parameterLen  uint16
	dataLen       uint16
	errClass      byte // only meaningful when messageType == msgAckData
	errCode       byte
}

// encodeJobHeader writes a 10-byte job-request header into buf at offset
// off.
func encodeJobHeader(buf []byte, off int, h s7Header) {
	buf[off] = protocolID
	buf[off+1] = h.messageType
	buf[off+2] = 0
	buf[off+3] = 0
	putU16(buf, off+4, h.pduReference)
	putU16(buf, off+6, h.parameterLen)
	putU16(buf, off+8, h.dataLen)
}

// decodeHeader parses an S7 header (10 or 12 bytes depending on message
// type) starting at offset off in buf. It returns the header and the
// offset immediately following it.
func decodeHeader(buf []byte, off int) (s7Header, int, error) {
	if len(buf) < off+jobHeaderSize {
		return s7Header{}, 0, wrapf(ErrPartialRead, "s7 header: need %d bytes, have %d", jobHeaderSize, len(buf)-off)
	}
	if buf[off] != protocolID {
		return s7Header{}, 0, wrapf(ErrFramingError, "s7 header: invalid protocol id 0x%02X", buf[off])
	}

	h := s7Header{
		messageType:  buf[off+1],
		pduReference: getU16(buf, off+4),
		parameterLen: getU16(buf, off+6),
		dataLen:      getU16(buf, off+8),
	}

	next := off + jobHeaderSize
	if h.messageType == msgAckData || h.messageType == msgAck {
		if len(buf) < next+2 {
			return s7Header{}, 0, wrapf(ErrPartialRead, "s7 header: missing error class/code")
		}
		h.errClass = buf[next]
		h.errCode = buf[next+1]
		next += 2
	}
	return h, next, nil
}
