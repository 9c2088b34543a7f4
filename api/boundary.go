// Package api exposes connections through integer handles and flat status
// codes for callers that cannot hold Go values or errors, such as a C shim.
package api

import (
	"errors"
	"time"

	"rudp/network"
	"rudp/peer"

	"github.com/sirupsen/logrus"
)

// Status is the out-of-band result of every call. Zero is success.
type Status int

const (
	StatusOK                   Status = 0
	StatusError                Status = -1
	StatusNoLocalEndpoint      Status = -2
	StatusNoRemoteEndpoint     Status = -3
	StatusInvalidConfiguration Status = -4
	StatusTransport            Status = -5
	StatusMalformedFrame       Status = -6
	StatusBufferTooSmall       Status = -7
	StatusRetryLimitExceeded   Status = -8
	StatusTimeout              Status = -9
	StatusClosed               Status = -10
	StatusUnknownHandle        Status = -11
	StatusPayloadTooLarge      Status = -12
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoLocalEndpoint:
		return "no local endpoint"
	case StatusNoRemoteEndpoint:
		return "no remote endpoint"
	case StatusInvalidConfiguration:
		return "invalid configuration"
	case StatusTransport:
		return "transport error"
	case StatusMalformedFrame:
		return "malformed frame"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusRetryLimitExceeded:
		return "retry limit exceeded"
	case StatusTimeout:
		return "timeout"
	case StatusClosed:
		return "closed"
	case StatusUnknownHandle:
		return "unknown handle"
	case StatusPayloadTooLarge:
		return "payload too large"
	default:
		return "error"
	}
}

// StatusOf collapses err to its status code.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, peer.ErrUnknownHandle):
		return StatusUnknownHandle
	case errors.Is(err, network.ErrNoLocalEndpoint):
		return StatusNoLocalEndpoint
	case errors.Is(err, network.ErrNoRemoteEndpoint):
		return StatusNoRemoteEndpoint
	case errors.Is(err, network.ErrBufferTooSmall):
		return StatusBufferTooSmall
	case errors.Is(err, network.ErrMalformedFrame):
		return StatusMalformedFrame
	case errors.Is(err, network.ErrPayloadTooLarge):
		return StatusPayloadTooLarge
	}

	switch network.KindOf(err) {
	case network.KindConfiguration, network.KindProtocol:
		return StatusInvalidConfiguration
	case network.KindTransport:
		return StatusTransport
	case network.KindRetryLimit:
		return StatusRetryLimitExceeded
	case network.KindTimeout:
		return StatusTimeout
	case network.KindClosed:
		return StatusClosed
	default:
		return StatusError
	}
}

// Boundary adapts a peer.Manager to the handle-based calling convention.
type Boundary struct {
	manager *peer.Manager
	log     *logrus.Entry
}

func NewBoundary(manager *peer.Manager, log *logrus.Entry) *Boundary {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Boundary{
		manager: manager,
		log:     log.WithField("component", "api"),
	}
}

func (b *Boundary) fail(op string, handle int, err error) Status {
	status := StatusOf(err)
	b.log.WithFields(logrus.Fields{"op": op, "handle": handle, "status": int(status)}).Error(err)
	return status
}

// MakeConnection creates a connection whose sends wait timeoutMs for each ACK.
func (b *Boundary) MakeConnection(timeoutMs int) (int, Status) {
	handle, err := b.manager.Create(network.ConnectionConfig{
		Timeout: time.Duration(timeoutMs) * time.Millisecond,
		Logger:  b.log,
	})
	if err != nil {
		return -1, b.fail("make connection", -1, err)
	}
	return handle, StatusOK
}

func (b *Boundary) CloseConnection(handle int) Status {
	if err := b.manager.Remove(handle); err != nil {
		return b.fail("close connection", handle, err)
	}
	return StatusOK
}

func (b *Boundary) SetRemoteEndpoint(handle int, address string, port uint16) Status {
	return b.do("set remote endpoint", handle, func(conn *network.Connection) error {
		return conn.SetRemoteEndpoint(address, port)
	})
}

func (b *Boundary) SetLocalEndpoint(handle int, port uint16) Status {
	return b.do("set local endpoint", handle, func(conn *network.Connection) error {
		return conn.SetLocalEndpoint(port)
	})
}

func (b *Boundary) SetRetryLimit(handle int, limit int) Status {
	return b.do("set retry limit", handle, func(conn *network.Connection) error {
		return conn.SetRetryLimit(limit)
	})
}

func (b *Boundary) ResetSend(handle int) Status {
	return b.do("reset send", handle, func(conn *network.Connection) error {
		conn.ResetSend()
		return nil
	})
}

func (b *Boundary) ResetReceive(handle int) Status {
	return b.do("reset receive", handle, func(conn *network.Connection) error {
		conn.ResetReceive()
		return nil
	})
}

// Send returns the bytes transmitted, or -1 with a failure status.
func (b *Boundary) Send(handle int, data []byte) (int, Status) {
	sent := -1
	status := b.do("send", handle, func(conn *network.Connection) error {
		n, err := conn.Send(data)
		if err == nil {
			sent = n
		}
		return err
	})
	return sent, status
}

// Receive fills buf and returns the payload length and sender, or -1 with a
// failure status.
func (b *Boundary) Receive(handle int, buf []byte) (n int, address string, port int, status Status) {
	n = -1
	status = b.do("receive", handle, func(conn *network.Connection) error {
		received, from, err := conn.Receive(buf)
		if err != nil {
			return err
		}
		n, address, port = received, from.IP.String(), from.Port
		return nil
	})
	return n, address, port, status
}

func (b *Boundary) do(op string, handle int, fn func(*network.Connection) error) Status {
	conn, err := b.manager.Lookup(handle)
	if err != nil {
		return b.fail(op, handle, err)
	}
	if err := fn(conn); err != nil {
		return b.fail(op, handle, err)
	}
	return StatusOK
}
