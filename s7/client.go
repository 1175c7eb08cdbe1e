package s7

import (
	"context"
	"time"
)

// Client is the package's public entry point: an open S7 session plus
// the read/write operations a caller drives through it. Construct one
// with Connect; call Close when done.
type Client struct {
	sess    *session
	timeout time.Duration
}

// Option configures Connect using the functional-options pattern.
type Option func(*options)

type options struct {
	srcTSAP     TSAP
	rack, slot  byte
	openTimeout time.Duration
	reqTimeout  time.Duration
}

func defaultOptions() options {
	return options{
		srcTSAP:     TSAP{0x01, 0x00},
		rack:        0,
		slot:        2,
		openTimeout: 5 * time.Second,
		reqTimeout:  defaultRequestTimeout,
	}
}

// WithRackSlot sets the CPU's rack/slot, encoded into the destination
// TSAP as `0x01 (connection type PG), (rack<<5)|slot`. Rack 0 slot 2 is
// the common default for S7-300/400 CPUs.
func WithRackSlot(rack, slot byte) Option {
	return func(o *options) {
		o.rack, o.slot = rack, slot
	}
}

// WithSourceTSAP overrides the client's own TSAP (default 0x0100).
func WithSourceTSAP(tsap TSAP) Option {
	return func(o *options) {
		o.srcTSAP = tsap
	}
}

// WithOpenTimeout bounds how long Connect waits for the TCP handshake
// and the COTP/S7 negotiation to complete.
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		o.openTimeout = d
	}
}

// WithRequestTimeout sets the default per-request deadline used when a
// caller's context carries no earlier deadline of its own.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.reqTimeout = d
	}
}

// dstTSAP derives the destination TSAP from rack/slot: connection type
// 0x01 (PG) in the high byte, (rack<<5)|slot in the low byte — the
// addressing convention every S7-300/400/1200/1500 CPU accepts.
func dstTSAP(rack, slot byte) TSAP {
	return TSAP{0x01, (rack << 5) | slot}
}

// Connect opens a session to host, running the full TCP/COTP/Communication
// Setup handshake to completion before returning.
func Connect(ctx context.Context, host string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sess, err := dial(ctx, host, o.srcTSAP, dstTSAP(o.rack, o.slot), o.openTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{sess: sess, timeout: o.reqTimeout}, nil
}

// IsConnected reports whether the session is in its Ready state.
func (c *Client) IsConnected() bool {
	return c.sess.isReady()
}

// PDUSize returns the negotiated maximum PDU size.
func (c *Client) PDUSize() uint16 {
	size, _ := c.sess.negotiated()
	return size
}

// MaxConcurrentJobs returns the negotiated job-slot count.
func (c *Client) MaxConcurrentJobs() uint16 {
	_, jobs := c.sess.negotiated()
	return jobs
}

// Read performs a batched read of items (1..255), delivering each
// successful item's value via its ReadValue method. A non-nil error
// that is not an *ItemErrors means the operation as a whole failed
// (encoding, timeout, cancellation, framing, or a closed session);
// only errors wrapping ErrSessionClosed leave the client unusable.
func (c *Client) Read(ctx context.Context, items []DataItem) error {
	return c.sess.perform(ctx, func(buf []byte, pduSize int) (int, error) {
		return encodeReadRequest(buf, items, pduSize)
	}, func(payload []byte) error {
		return decodeReadResponse(payload, items)
	}, c.timeout)
}

// Write performs a batched write of items (1..255), serializing each
// item's current value via its WriteValue method.
func (c *Client) Write(ctx context.Context, items []DataItem) error {
	return c.sess.perform(ctx, func(buf []byte, pduSize int) (int, error) {
		return encodeWriteRequest(buf, items, pduSize)
	}, func(payload []byte) error {
		return decodeWriteResponse(payload, len(items))
	}, c.timeout)
}

// Close tears down the session: outstanding jobs complete with
// SessionClosed, the TCP stream is released, and pooled buffers are
// returned.
func (c *Client) Close() error {
	c.sess.close()
	return nil
}
