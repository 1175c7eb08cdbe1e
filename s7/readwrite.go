package s7

// Read and write request/response codec: batched, N-item RequestItem
// and DataItem framing. All offsets are computed, never assumed-aligned.
const (
	maxBatchItems = 255

	// dataItemHeaderSize is the 4-byte return_code+transport_size+count
	// header preceding each item's payload in a read response / write
	// request data region
	dataItemHeaderSize = 4

	// maxItemValueBytes bounds the scratch space reserved per item while
	// serializing a write request, large enough for the widest S7 value
	// (WSTRING, 512 bytes).
	maxItemValueBytes = 512
)

// encodeReadRequest writes a complete framed PDU (TPKT+COTP-DT+S7) for a
// batched read of items into buf, with pduReference left as 0 — the
// executor patches it in at the known offset before sending. Returns the
// number of bytes written, or an error if the request would not fit in
// pduSize or exceeds maxBatchItems.
func encodeReadRequest(buf []byte, items []DataItem, pduSize int) (int, error) {
	n := len(items)
	if n == 0 || n > maxBatchItems {
		return 0, wrapf(ErrSpecViolation, "read request: item count %d out of range", n)
	}
	paramLen := 2 + n*requestItemSize
	s7Len := jobHeaderSize + paramLen
	total := tpktHeaderSize + cotpDTHeaderSize + s7Len
	if s7Len > pduSize {
		return 0, wrapf(ErrSpecViolation, "read request: %d bytes exceeds negotiated pdu size %d", s7Len, pduSize)
	}
	if total > len(buf) {
		return 0, wrapf(ErrSpecViolation, "read request: %d bytes exceeds buffer", total)
	}

	frame := buf[:total]
	frame[0] = tpktVersion
	putU16(frame, 2, uint16(total))
	copy(frame[tpktHeaderSize:], cotpDTHeader[:])

	s7off := tpktHeaderSize + cotpDTHeaderSize
	encodeJobHeader(frame, s7off, s7Header{
		messageType:  msgJobRequest,
		parameterLen: uint16(paramLen),
		dataLen:      0,
	})

	p := frame[s7off+jobHeaderSize:]
	p[0] = funcRead
	p[1] = byte(n)
	for i, item := range items {
		off := 2 + i*requestItemSize
		if err := encodeRequestItem(p, off, item, item.ReadCount()); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// decodeReadResponse parses a complete TPKT frame (payload, i.e. the
// bytes after the 4-byte TPKT header) for a batched read response and
// delivers each successful item's payload via item.ReadValue. It returns
// an *ItemErrors aggregate (never nil-typed-but-empty) if any item
// failed, alongside a nil top-level error; a non-nil top-level error
// means framing itself was invalid and the session must be torn down.
func decodeReadResponse(payload []byte, items []DataItem) error {
	s7pdu, err := unwrapDT(payload)
	if err != nil {
		return err
	}
	h, off, err := decodeHeader(s7pdu, 0)
	if err != nil {
		return err
	}
	if h.messageType == msgAck {
		return &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if h.messageType != msgAckData {
		return wrapf(ErrUnexpectedMessageType, "read response: expected AckData, got 0x%02X", h.messageType)
	}
	if h.errClass != errClassNoError || h.errCode != 0 {
		return &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if int(h.parameterLen) != 2 {
		return wrapf(ErrFramingError, "read response: unexpected parameter length %d", h.parameterLen)
	}
	if len(s7pdu) < off+2 {
		return wrapf(ErrPartialRead, "read response: truncated parameters")
	}
	if s7pdu[off] != funcRead {
		return wrapf(ErrUnexpectedFunctionCode, "read response: expected 0x%02X, got 0x%02X", funcRead, s7pdu[off])
	}
	itemCount := int(s7pdu[off+1])
	if itemCount != len(items) {
		return wrapf(ErrItemCountMismatch, "read response: got %d items, requested %d", itemCount, len(items))
	}

	data := s7pdu[off+2:]
	pos := 0
	var agg ItemErrors
	for i, item := range items {
		if pos >= len(data) {
			return wrapf(ErrPartialRead, "read response: item %d: no data remaining", i)
		}
		returnCode := data[pos]
		if returnCode != dataItemSuccess {
			agg.Errors = append(agg.Errors, &S7Error{Code: returnCode, ItemIndex: i})
			pos++
			continue
		}
		if pos+dataItemHeaderSize > len(data) {
			return wrapf(ErrPartialRead, "read response: item %d: header truncated", i)
		}
		transportSize := TransportSize(data[pos+1])
		count := getU16(data, pos+2)
		var size int
		if transportSize.IsSizeInBytes() {
			size = int(count)
		} else {
			size = int((count + 7) / 8)
		}
		pos += dataItemHeaderSize
		if pos+size > len(data) {
			return wrapf(ErrPartialRead, "read response: item %d: payload truncated", i)
		}
		if err := item.ReadValue(data[pos : pos+size]); err != nil {
			agg.Errors = append(agg.Errors, &S7Error{Code: dataItemTypeError, ItemIndex: i})
		}
		pos += size
		if i < len(items)-1 && size%2 == 1 {
			pos++ // pad to even boundary, except after the last item
		}
	}

	if len(agg.Errors) > 0 {
		return &agg
	}
	return nil
}

// encodeWriteRequest writes a complete framed PDU for a batched write of
// items into buf, with pduReference left as 0 for the executor to patch.
func encodeWriteRequest(buf []byte, items []DataItem, pduSize int) (int, error) {
	n := len(items)
	if n == 0 || n > maxBatchItems {
		return 0, wrapf(ErrSpecViolation, "write request: item count %d out of range", n)
	}

	// Serialize values first so we know their lengths before sizing the frame.
	values := make([][]byte, n)
	scratch := make([]byte, n*maxItemValueBytes)
	for i, item := range items {
		start := i * maxItemValueBytes
		wn, err := item.WriteValue(scratch[start : start+maxItemValueBytes])
		if err != nil {
			return 0, wrapf(ErrSpecViolation, "write request: item %d: %v", i, err)
		}
		values[i] = scratch[start : start+wn]
	}

	paramLen := 2 + n*requestItemSize
	dataLen := 0
	for i, v := range values {
		itemLen := dataItemHeaderSize + len(v)
		if len(v)%2 == 1 && i < n-1 {
			itemLen++
		}
		dataLen += itemLen
	}
	s7Len := jobHeaderSize + paramLen + dataLen
	total := tpktHeaderSize + cotpDTHeaderSize + s7Len
	if s7Len > pduSize {
		return 0, wrapf(ErrSpecViolation, "write request: %d bytes exceeds negotiated pdu size %d", s7Len, pduSize)
	}
	if total > len(buf) {
		return 0, wrapf(ErrSpecViolation, "write request: %d bytes exceeds buffer", total)
	}

	frame := buf[:total]
	frame[0] = tpktVersion
	putU16(frame, 2, uint16(total))
	copy(frame[tpktHeaderSize:], cotpDTHeader[:])

	s7off := tpktHeaderSize + cotpDTHeaderSize
	encodeJobHeader(frame, s7off, s7Header{
		messageType:  msgJobRequest,
		parameterLen: uint16(paramLen),
		dataLen:      uint16(dataLen),
	})

	p := frame[s7off+jobHeaderSize:]
	p[0] = funcWrite
	p[1] = byte(n)
	for i, item := range items {
		off := 2 + i*requestItemSize
		count := writeWireCount(item, len(values[i]))
		if err := encodeRequestItem(p, off, item, count); err != nil {
			return 0, err
		}
	}

	d := p[paramLen:]
	pos := 0
	for i, v := range values {
		d[pos] = 0 // return code placeholder
		d[pos+1] = byte(items[i].TransportSize())
		putU16(d, pos+2, writeWireCount(items[i], len(v)))
		pos += dataItemHeaderSize
		copy(d[pos:], v)
		pos += len(v)
		if len(v)%2 == 1 && i < n-1 {
			d[pos] = 0
			pos++
		}
	}
	return total, nil
}

// writeWireCount returns the count value to place in the RequestItem /
// data-item header for a write of n value bytes: bits for a bit-granular
// item, bytes otherwise.
func writeWireCount(item DataItem, n int) uint16 {
	if item.VariableType() == VarBit {
		return 1
	}
	return uint16(n)
}

// decodeWriteResponse parses a batched write response and returns an
// *ItemErrors aggregate for any item that failed, or nil if all
// succeeded. A non-nil plain error means framing was invalid.
func decodeWriteResponse(payload []byte, itemCount int) error {
	s7pdu, err := unwrapDT(payload)
	if err != nil {
		return err
	}
	h, off, err := decodeHeader(s7pdu, 0)
	if err != nil {
		return err
	}
	if h.messageType == msgAck {
		return &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if h.messageType != msgAckData {
		return wrapf(ErrUnexpectedMessageType, "write response: expected AckData, got 0x%02X", h.messageType)
	}
	if h.errClass != errClassNoError || h.errCode != 0 {
		return &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if len(s7pdu) < off+2 {
		return wrapf(ErrPartialRead, "write response: truncated parameters")
	}
	if s7pdu[off] != funcWrite {
		return wrapf(ErrUnexpectedFunctionCode, "write response: expected 0x%02X, got 0x%02X", funcWrite, s7pdu[off])
	}
	respCount := int(s7pdu[off+1])
	if respCount != itemCount {
		return wrapf(ErrItemCountMismatch, "write response: got %d items, requested %d", respCount, itemCount)
	}

	data := s7pdu[off+2:]
	if len(data) < itemCount {
		return wrapf(ErrPartialRead, "write response: return codes truncated")
	}
	var agg ItemErrors
	for i := 0; i < itemCount; i++ {
		if data[i] != dataItemSuccess {
			agg.Errors = append(agg.Errors, &S7Error{Code: data[i], ItemIndex: i})
		}
	}
	if len(agg.Errors) > 0 {
		return &agg
	}
	return nil
}
