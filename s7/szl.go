package s7

import (
	"context"
	"strings"
)

// Read System Status List (SZL) is a separate S7 job type from read/write:
// it uses the Userdata message and a fixed parameter/data header instead
// of RequestItem/DataItem blocks. It shares pdu_reference correlation and
// the executor with ordinary read/write jobs, so it needs no dedicated
// transport path.
const (
	msgUserData = 0x07

	userDataParamLen = 8
	userDataReqLen   = 12 // 4-byte data item header + 8-byte request data

	szlFuncGroupCPU = 0x44
	szlSubReadSZL   = 0x01

	// SZLModuleIdentification carries order code, serial number, and
	// module/basic-hardware/firmware version in four text records.
	SZLModuleIdentification uint16 = 0x0011
)

// szlRecord is one fixed-length entry of an SZL response. Module
// identification records are 34 bytes wide, index then a 32-byte field.
type szlRecord struct {
	index uint16
	data  []byte
}

// CPUInfo is the parsed subset of SZL 0x0011 a caller typically wants.
type CPUInfo struct {
	OrderCode       string
	ModuleVersion   string
	HardwareVersion string
	FirmwareVersion string
}

// encodeReadSZLRequest writes a complete framed Userdata PDU requesting
// szlID / szlIndex into buf, pduReference left for the executor.
func encodeReadSZLRequest(buf []byte, szlID, szlIndex uint16) (int, error) {
	paramLen := userDataParamLen
	dataLen := userDataReqLen
	s7Len := jobHeaderSize + paramLen + dataLen
	total := tpktHeaderSize + cotpDTHeaderSize + s7Len
	if total > len(buf) {
		return 0, wrapf(ErrSpecViolation, "read szl: %d bytes exceeds buffer", total)
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
	// Userdata needs message_type 0x07, not JobRequest; patch it in.
	frame[s7off+1] = msgUserData

	p := frame[s7off+jobHeaderSize:]
	// Userdata parameter header: fixed prefix, request type/function group,
	// subfunction (read SZL), sequence number.
	copy(p[0:4], []byte{0x00, 0x01, 0x12, 0x04})
	p[4] = 0x11 // request
	p[5] = szlFuncGroupCPU
	p[6] = szlSubReadSZL
	p[7] = 0x00 // sequence number

	d := p[paramLen:]
	d[0] = 0xFF // return code placeholder, ignored on request
	d[1] = 0x09 // transport size: octet string
	putU16(d, 2, 8) // byte length of the request data that follows
	putU16(d, 4, szlID)
	putU16(d, 6, szlIndex)
	d[8], d[9], d[10], d[11] = 0, 0, 0, 0
	return total, nil
}

// decodeReadSZLResponse validates framing and returns the raw SZL data
// set bytes (concatenated fixed-length records) for the caller to parse
// with parseModuleIdentification or similar.
func decodeReadSZLResponse(payload []byte) ([]byte, error) {
	s7pdu, err := unwrapDT(payload)
	if err != nil {
		return nil, err
	}
	h, off, err := decodeHeader(s7pdu, 0)
	if err != nil {
		return nil, err
	}
	if h.messageType != msgUserData {
		return nil, wrapf(ErrUnexpectedMessageType, "read szl: expected userdata, got 0x%02X", h.messageType)
	}
	if h.errClass != errClassNoError || h.errCode != 0 {
		return nil, &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if int(h.parameterLen) < userDataParamLen || len(s7pdu) < off+userDataParamLen {
		return nil, wrapf(ErrFramingError, "read szl: response too short")
	}
	dataOff := off + userDataParamLen
	if len(s7pdu) < dataOff+dataItemHeaderSize {
		return nil, wrapf(ErrPartialRead, "read szl: missing data header")
	}
	returnCode := s7pdu[dataOff]
	if returnCode != dataItemSuccess {
		return nil, &S7Error{Code: returnCode, ItemIndex: -1}
	}
	length := int(getU16(s7pdu, dataOff+2))
	start := dataOff + dataItemHeaderSize
	if len(s7pdu) < start+length {
		return nil, wrapf(ErrPartialRead, "read szl: payload truncated")
	}
	// The first 4 bytes of the data set echo SZL-ID/SZL-Index; the
	// records follow.
	if length < 4 {
		return nil, wrapf(ErrFramingError, "read szl: data set too short")
	}
	return s7pdu[start+4 : start+length], nil
}

// parseModuleIdentification decodes SZL 0x0011's records, each 2 bytes
// of index followed by a 32-byte, NUL-padded ASCII field, into a
// CPUInfo. Records are matched by their well-known index values.
func parseModuleIdentification(records []byte) CPUInfo {
	const recordSize = 2 + 32
	var info CPUInfo
	for off := 0; off+recordSize <= len(records); off += recordSize {
		index := getU16(records, off)
		text := trimSZLText(records[off+2 : off+recordSize])
		switch index {
		case 0x0001:
			info.OrderCode = text
		case 0x0006:
			info.ModuleVersion = text
		case 0x0007:
			info.HardwareVersion = text
		case 0x0008:
			info.FirmwareVersion = text
		}
	}
	return info
}

func trimSZLText(b []byte) string {
	n := len(b)
	for n > 0 && (b[n-1] == 0 || b[n-1] == ' ') {
		n--
	}
	return strings.TrimSpace(string(b[:n]))
}

// ReadSZL issues a read-SZL Userdata job and returns the raw data set,
// exercising the executor with a non-batched job distinct from
// read/write .
func (c *Client) ReadSZL(ctx context.Context, szlID, szlIndex uint16) ([]byte, error) {
	var records []byte
	err := c.sess.perform(ctx, func(buf []byte, pduSize int) (int, error) {
		return encodeReadSZLRequest(buf, szlID, szlIndex)
	}, func(payload []byte) error {
		data, err := decodeReadSZLResponse(payload)
		if err != nil {
			return err
		}
		// data aliases the pool buffer; copy it out before perform
		// releases the buffer back for reuse.
		records = append([]byte(nil), data...)
		return nil
	}, c.timeout)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadCPUInfo reads SZL 0x0011 (module identification) and returns the
// order code and version strings.
func (c *Client) ReadCPUInfo(ctx context.Context) (CPUInfo, error) {
	records, err := c.ReadSZL(ctx, SZLModuleIdentification, 0x0000)
	if err != nil {
		return CPUInfo{}, err
	}
	return parseModuleIdentification(records), nil
}
