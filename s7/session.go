package s7

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"s7link/tracelog"
)

// sessionState is the session's linear state machine. There are no
// retries and no reconnect: any failure aborts to stateClosed and the
// caller must build a fresh session.
type sessionState int32

const (
	stateClosed sessionState = iota
	stateConnectingTCP
	stateCotpConnecting
	stateS7SetupPending
	stateReady
)

// lowerLayerOverhead is the 7 bytes of TPKT+COTP-DT framing added on top
// of the negotiated S7 PDU definition.
const lowerLayerOverhead = tpktHeaderSize + cotpDTHeaderSize

// defaultRequestTimeout is the request-scoped deadline a caller gets
// when it supplies none of its own.
const defaultRequestTimeout = 5000 * time.Millisecond

// session is a single open connection to one PLC. It owns the TCP
// stream, the negotiated parameters, the buffer pool, and the executor.
type session struct {
	mu    sync.Mutex
	state sessionState
	conn  net.Conn
	addr  string

	pduSize           uint16
	maxConcurrentJobs uint16
	bufferSize        int

	pool *bufferPool
	exec *executor
}

// dial opens a session to host on the default S7 port: TCP connect with
// Nagle disabled, then COTP connect, then Communication Setup.
func dial(ctx context.Context, host string, srcTSAP, dstTSAP TSAP, openTimeout time.Duration) (*session, error) {
	addr := fmt.Sprintf("%s:102", host)
	tracelog.Connect(addr)

	s := &session{addr: addr, state: stateConnectingTCP}

	dialer := net.Dialer{Timeout: openTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		tracelog.ConnectError(addr, err)
		return nil, wrapf(ErrFramingError, "dial %s: %v", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	s.conn = conn

	if err := s.openCotp(srcTSAP, dstTSAP); err != nil {
		conn.Close()
		tracelog.ConnectError(addr, err)
		return nil, err
	}

	if err := s.setupComm(); err != nil {
		conn.Close()
		tracelog.ConnectError(addr, err)
		return nil, err
	}

	s.bufferSize = int(s.pduSize) + lowerLayerOverhead
	s.pool = newBufferPool(s.bufferSize, int(s.maxConcurrentJobs)+1)
	s.exec = newExecutor(s.conn, int(s.maxConcurrentJobs), s.bufferSize)
	s.state = stateReady

	tracelog.ConnectSuccess(addr, fmt.Sprintf("pdu_size=%d max_concurrent_jobs=%d", s.pduSize, s.maxConcurrentJobs))
	return s, nil
}

// openCotp performs the Connect Request / Connect Confirm exchange.
func (s *session) openCotp(src, dst TSAP) error {
	s.state = stateCotpConnecting

	req := encodeConnectRequest(src, dst)
	tracelog.TX("cotp", req)
	if _, err := s.conn.Write(req); err != nil {
		return wrapf(ErrFramingError, "cotp connect request: %v", err)
	}

	payload, err := readTPKT(s.conn)
	if err != nil {
		return err
	}
	tracelog.RX("cotp", payload)
	return decodeConnectConfirm(payload)
}

// setupComm performs Communication Setup and stores the negotiated
// parameters.
func (s *session) setupComm() error {
	s.state = stateS7SetupPending

	s7pdu := encodeSetupCommRequest(1920)
	frame := wrapDT(s7pdu)
	if err := writeTPKT(s.conn, frame); err != nil {
		return err
	}
	tracelog.TX("s7", frame)

	payload, err := readTPKT(s.conn)
	if err != nil {
		return err
	}
	tracelog.RX("s7", payload)

	cotpPDU, err := unwrapDT(payload)
	if err != nil {
		return err
	}
	result, err := decodeSetupCommResponse(cotpPDU)
	if err != nil {
		return err
	}
	s.pduSize = result.pduSize
	s.maxConcurrentJobs = result.maxConcurrentJobs
	return nil
}

// isReady reports whether the session completed its handshake and has
// not since torn down.
func (s *session) isReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateReady
}

// negotiated returns the parameters a caller is exposed to after open.
func (s *session) negotiated() (pduSize, maxConcurrentJobs uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pduSize, s.maxConcurrentJobs
}

// perform runs one request/response exchange through the executor,
// acquiring a pool buffer, building the request into it, and handing the
// response payload to decode — all before the buffer goes back to the
// pool. decode must finish reading the payload (copying out whatever it
// needs to keep) before it returns: the buffer is released the instant
// perform returns, and a concurrent caller's acquire() can start
// overwriting it right away.
func (s *session) perform(ctx context.Context, build func(buf []byte, pduSize int) (int, error), decode func(payload []byte) error, timeout time.Duration) error {
	if !s.isReady() {
		return ErrSessionClosed
	}

	buf := s.pool.acquire()
	defer s.pool.release(buf)

	n, err := build(buf, int(s.pduSize))
	if err != nil {
		return err
	}

	payload, err := s.exec.perform(ctx, buf, n, timeout)
	if err != nil {
		return err
	}
	return decode(payload)
}

// close tears the session down: fails all outstanding jobs, closes the
// TCP stream, and returns the session to stateClosed
func (s *session) close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.mu.Unlock()

	if s.exec != nil {
		s.exec.close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	tracelog.Disconnect(s.addr, "closed")
}
