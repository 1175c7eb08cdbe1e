package s7

// Communication Setup is the one S7 job that predates session
// negotiation: it always uses pdu_reference 0 and a fixed 8-byte
// parameter block.
const setupParamLen = 8

// encodeSetupCommRequest builds the S7 job-request payload (no TPKT/COTP
// framing) for Communication Setup, requesting pduSizeRequested bytes.
func encodeSetupCommRequest(pduSizeRequested uint16) []byte {
	buf := make([]byte, jobHeaderSize+setupParamLen)
	encodeJobHeader(buf, 0, s7Header{
		messageType:  msgJobRequest,
		pduReference: 0,
		parameterLen: setupParamLen,
		dataLen:      0,
	})
	p := buf[jobHeaderSize:]
	p[0] = funcCommSetup
	p[1] = 0 // reserved
	putU16(p, 2, 1)                // max AMQ calling
	putU16(p, 4, 1)                // max AMQ called
	putU16(p, 6, pduSizeRequested) // requested PDU length
	return buf
}

// setupResult is the negotiated outcome of Communication Setup.
type setupResult struct {
	pduSize           uint16
	maxConcurrentJobs uint16
}

// decodeSetupCommResponse parses the AckData response to Communication
// Setup and extracts the negotiated PDU size and max AMQ called (used as
// max_concurrent_jobs).
func decodeSetupCommResponse(s7pdu []byte) (setupResult, error) {
	h, off, err := decodeHeader(s7pdu, 0)
	if err != nil {
		return setupResult{}, err
	}
	if h.messageType != msgAckData {
		return setupResult{}, wrapf(ErrUnexpectedMessageType, "setup comm: expected AckData, got 0x%02X", h.messageType)
	}
	if h.errClass != errClassNoError || h.errCode != 0 {
		return setupResult{}, &S7Error{Class: h.errClass, Code: h.errCode, ItemIndex: -1}
	}
	if int(h.parameterLen) < setupParamLen || len(s7pdu) < off+setupParamLen {
		return setupResult{}, wrapf(ErrFramingError, "setup comm: response too short")
	}
	p := s7pdu[off:]
	if p[0] != funcCommSetup {
		return setupResult{}, wrapf(ErrUnexpectedFunctionCode, "setup comm: expected 0x%02X, got 0x%02X", funcCommSetup, p[0])
	}
	maxAMQCalled := getU16(p, 4)
	pduSize := getU16(p, 6)
	return setupResult{pduSize: pduSize, maxConcurrentJobs: maxAMQCalled}, nil
}
