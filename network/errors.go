package network

import (
	"errors"
	"fmt"
	"net"
)

var (
	ErrNoLocalEndpoint      = errors.New("rudp: no local endpoint set")
	ErrNoRemoteEndpoint     = errors.New("rudp: no remote endpoint set")
	ErrInvalidConfiguration = errors.New("rudp: invalid configuration")

	ErrMalformedFrame  = errors.New("rudp: malformed frame")
	ErrBufferTooSmall  = errors.New("rudp: buffer too small for received payload")
	ErrPayloadTooLarge = errors.New("rudp: payload exceeds maximum frame size")
	ErrMessageTooLarge = errors.New("rudp: decompressed message exceeds limit")

	ErrRetryLimitExceeded = errors.New("rudp: retry limit exceeded")
	ErrReceiveTimeout     = errors.New("rudp: receive timed out")
	ErrClosed             = errors.New("rudp: connection closed")
)

// TransportError reports a socket failure while binding, writing or reading.
type TransportError struct {
	Op   string
	Addr net.Addr
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr != nil {
		return fmt.Sprintf("rudp: %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("rudp: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind groups errors the way callers react to them.
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindTransport
	KindProtocol
	KindRetryLimit
	KindTimeout
	KindClosed
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindRetryLimit:
		return "retry-limit"
	case KindTimeout:
		return "timeout"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Closed is checked before transport because a read
// on a closed socket surfaces as both.
func KindOf(err error) Kind {
	var transportErr *TransportError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrClosed), errors.Is(err, net.ErrClosed):
		return KindClosed
	case errors.Is(err, ErrNoLocalEndpoint),
		errors.Is(err, ErrNoRemoteEndpoint),
		errors.Is(err, ErrInvalidConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMalformedFrame),
		errors.Is(err, ErrBufferTooSmall),
		errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrMessageTooLarge):
		return KindProtocol
	case errors.Is(err, ErrRetryLimitExceeded):
		return KindRetryLimit
	case errors.Is(err, ErrReceiveTimeout):
		return KindTimeout
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
