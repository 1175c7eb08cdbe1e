package s7

import (
	"io"
)

// TPKT (RFC 1006) framing: 4-byte header, version=3, reserved=0, then a
// 16-bit big-endian length counting the header itself.
const (
	tpktVersion    = 0x03
	tpktHeaderSize = 4
)

// writeTPKT frames payload with a TPKT header and writes it to w in a
// single Write of header+payload, preserving the frame boundary on the
// wire.
func writeTPKT(w io.Writer, payload []byte) error {
	length := len(payload) + tpktHeaderSize
	frame := make([]byte, length)
	frame[0] = tpktVersion
	frame[1] = 0
	putU16(frame, 2, uint16(length))
	copy(frame[tpktHeaderSize:], payload)
	_, err := w.Write(frame)
	if err != nil {
		return wrapf(ErrFramingError, "tpkt write")
	}
	return nil
}

// readTPKT reads one complete TPKT-framed packet from r and returns its
// payload (the bytes after the 4-byte header).
func readTPKT(r io.Reader) ([]byte, error) {
	header := make([]byte, tpktHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, wrapf(ErrPartialRead, "tpkt header: %v", err)
	}
	if header[0] != tpktVersion {
		return nil, wrapf(ErrFramingError, "tpkt: invalid version %d", header[0])
	}
	length := int(getU16(header, 2))
	if length < tpktHeaderSize+cotpDTHeaderSize {
		// length >= 7 (4-byte tpkt + at least 3-byte COTP).
		return nil, wrapf(ErrSpecViolation, "tpkt: length %d below minimum", length)
	}
	payload := make([]byte, length-tpktHeaderSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, wrapf(ErrPartialRead, "tpkt payload: %v", err)
	}
	return payload, nil
}

// readTPKTInto behaves like readTPKT but decodes directly into a
// caller-supplied buffer (the executor's read scratch buffer) instead of allocating,
// returning the slice of buf that holds the payload.
func readTPKTInto(r io.Reader, buf []byte) ([]byte, error) {
	header := buf[:tpktHeaderSize]
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, wrapf(ErrPartialRead, "tpkt header: %v", err)
	}
	if header[0] != tpktVersion {
		return nil, wrapf(ErrFramingError, "tpkt: invalid version %d", header[0])
	}
	length := int(getU16(header, 2))
	if length < tpktHeaderSize+cotpDTHeaderSize {
		return nil, wrapf(ErrSpecViolation, "tpkt: length %d below minimum", length)
	}
	payloadLen := length - tpktHeaderSize
	if payloadLen > len(buf)-tpktHeaderSize {
		return nil, wrapf(ErrSpecViolation, "tpkt: payload %d exceeds buffer", payloadLen)
	}
	payload := buf[tpktHeaderSize : tpktHeaderSize+payloadLen]
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, wrapf(ErrPartialRead, "tpkt payload: %v", err)
	}
	return payload, nil
}
