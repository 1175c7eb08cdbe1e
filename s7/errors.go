package s7

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against these to classify a
// failure.
var (
	// ErrFramingError means the bytes on the wire violate TPKT/COTP/S7 framing.
	ErrFramingError = errors.New("s7: framing error")
	// ErrSpecViolation means a value the codec produced or parsed violates
	// a protocol invariant (e.g. a 24-bit address overflow).
	ErrSpecViolation = errors.New("s7: spec violation")
	// ErrUnexpectedMessageType means the S7 header's message_type field
	// was not the one the caller's operation expected.
	ErrUnexpectedMessageType = errors.New("s7: unexpected message type")
	// ErrUnexpectedFunctionCode means the S7 parameter's function code was
	// not the one the caller's operation expected.
	ErrUnexpectedFunctionCode = errors.New("s7: unexpected function code")
	// ErrPartialRead means fewer bytes were read from the stream than the
	// TPKT header promised.
	ErrPartialRead = errors.New("s7: partial read")
	// ErrItemCountMismatch means a read/write response carried a different
	// item count than the request.
	ErrItemCountMismatch = errors.New("s7: item count mismatch")
	// ErrTimeout means a request's deadline elapsed before a response
	// arrived.
	ErrTimeout = errors.New("s7: timeout")
	// ErrCanceled means the caller's context was canceled before a
	// response arrived. Takes precedence over ErrTimeout when both would
	// apply.
	ErrCanceled = errors.New("s7: canceled")
	// ErrSessionClosed means the session is no longer usable: a fatal
	// framing error tore it down, or Close was called.
	ErrSessionClosed = errors.New("s7: session closed")
)

// S7Error represents a PLC-reported error: either a header-level error
// class/code (from AckData or a bare ACK), or a per-item return code from
// a batched read/write response.
type S7Error struct {
	Class byte // 0 when this is an item-level error (see ItemIndex)
	Code  byte

	// ItemIndex is >= 0 when this error is bound to one item of a batched
	// read or write, and -1 for a header-level error.
	ItemIndex int
}

// Error implements the error interface.
func (e *S7Error) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("s7: item %d: %s (code 0x%02X)", e.ItemIndex, itemReturnCodeMessage(e.Code), e.Code)
	}
	return fmt.Sprintf("s7: %s (class 0x%02X code 0x%02X)", headerErrorClassMessage(e.Class), e.Class, e.Code)
}

// Is makes a header-level S7Error match ErrFramingError under
// errors.Is; an item-level S7Error matches no sentinel. Callers that
// want the structured detail use errors.As(err, &s7Err) instead.
func (e *S7Error) Is(target error) bool {
	if e.ItemIndex >= 0 {
		return false
	}
	return target == ErrFramingError
}

// ItemErrors aggregates per-item errors from a batched read or write.
// An operation that produced any item error still completed successfully
// from the protocol's point of view — successful items are delivered
// normally and ItemErrors is returned alongside them.
type ItemErrors struct {
	Errors []*S7Error
}

// Error implements the error interface.
func (e *ItemErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("s7: %d item errors (first: %s)", len(e.Errors), e.Errors[0].Error())
}

// wrapf wraps a sentinel error with a formatted message using fmt.Errorf's
// %w, so callers can still errors.Is/As against the sentinel.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}

func headerErrorClassMessage(class byte) string {
	switch class {
	case errClassNoError:
		return "no error"
	case errClassAppRelation:
		return "application relationship error"
	case errClassObjDef:
		return "object definition error"
	case errClassResource:
		return "resource error"
	case errClassService:
		return "service error"
	case errClassNoResource:
		return "no resource available (request may exceed PDU size)"
	case errClassAccess:
		return "access error"
	default:
		return "unknown error class"
	}
}

func itemReturnCodeMessage(code byte) string {
	switch code {
	case dataItemSuccess:
		return "success"
	case dataItemHardwareFault:
		return "hardware fault"
	case dataItemAccessDenied:
		return "access denied"
	case dataItemAddressError:
		return "invalid address"
	case dataItemTypeError:
		return "data type not supported"
	case dataItemTypeInconsistent:
		return "data type/size mismatch"
	case dataItemNotExist:
		return "object does not exist"
	default:
		return "unknown item error"
	}
}
