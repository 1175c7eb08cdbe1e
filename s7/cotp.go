package s7

// COTP (ISO 8073) constants. Connection Request/Confirm carry a
// variable-length TLV parameter list; Data Transfer frames use a fixed
// 3-byte header with no fragmentation (EOT bit set).
const (
	cotpCR = 0xE0
	cotpCC = 0xD0
	cotpDT = 0xF0

	cotpParamTPDUSize = 0xC0
	cotpParamSrcTSAP  = 0xC1
	cotpParamDstTSAP  = 0xC2

	// cotpDTHeaderSize is the fixed 3-byte COTP Data Transfer header:
	// length=2, pdu_type=0xF0, tpdu_nr=0x80 (EOT set, no fragmentation).
	cotpDTHeaderSize = 3

	// initialPDUSizeHintLog2 is the log2-encoded PDU size hint sent in the
	// Connect Request's tpdu_size parameter, fixed at 1024
	initialPDUSizeHintLog2 = 0x0A
)

// TSAP is a 2-byte Transport Service Access Point selector.
type TSAP [2]byte

var cotpDTHeader = [cotpDTHeaderSize]byte{0x02, cotpDT, 0x80}

// encodeConnectRequest builds a full TPKT+COTP-CR frame for the given
// source/destination TSAPs, matching Scenario A byte-for-byte:
// 03 00 00 16 11 E0 00 00 00 00 00 C0 01 0A C1 02 <src> C2 02 <dst>.
func encodeConnectRequest(src, dst TSAP) []byte {
	cotp := []byte{
		0x00, // length, patched below
		cotpCR,
		0x00, 0x00, // dst-ref
		0x00, 0x00, // src-ref
		0x00, // class 0
		cotpParamTPDUSize, 0x01, initialPDUSizeHintLog2,
		cotpParamSrcTSAP, 0x02, src[0], src[1],
		cotpParamDstTSAP, 0x02, dst[0], dst[1],
	}
	cotp[0] = byte(len(cotp) - 1)

	frame := make([]byte, tpktHeaderSize+len(cotp))
	frame[0] = tpktVersion
	putU16(frame, 2, uint16(len(frame)))
	copy(frame[tpktHeaderSize:], cotp)
	return frame
}

// decodeConnectConfirm validates a COTP Connection Confirm payload (the
// bytes after the TPKT header). The parameter list is accepted without
// further inspection
func decodeConnectConfirm(cotp []byte) error {
	if len(cotp) < 2 {
		return wrapf(ErrFramingError, "cotp cc: too short")
	}
	if cotp[1] != cotpCC {
		return wrapf(ErrUnexpectedMessageType, "cotp cc: expected 0x%02X, got 0x%02X", cotpCC, cotp[1])
	}
	return nil
}

// wrapDT wraps an S7 PDU with the fixed 3-byte COTP Data Transfer header.
func wrapDT(s7pdu []byte) []byte {
	out := make([]byte, cotpDTHeaderSize+len(s7pdu))
	copy(out, cotpDTHeader[:])
	copy(out[cotpDTHeaderSize:], s7pdu)
	return out
}

// unwrapDT strips and validates the COTP Data Transfer header from a
// TPKT payload, returning the S7 PDU that follows it.
func unwrapDT(payload []byte) ([]byte, error) {
	if len(payload) < cotpDTHeaderSize {
		return nil, wrapf(ErrFramingError, "cotp dt: too short")
	}
	if payload[1] != cotpDT {
		return nil, wrapf(ErrUnexpectedMessageType, "cotp dt: expected 0x%02X, got 0x%02X", cotpDT, payload[1])
	}
	return payload[cotpDTHeaderSize:], nil
}
