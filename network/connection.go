package network

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// errDeadlineExpired marks a read aborted by the deadline actor.
var errDeadlineExpired = errors.New("rudp: read deadline expired")

var aLongTimeAgo = time.Unix(1, 0)

func NewConnection(config ConnectionConfig) (*Connection, error) {
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfiguration, config.Timeout)
	}
	if config.RetryLimit < 0 {
		return nil, fmt.Errorf("%w: retry limit must not be negative, got %d", ErrInvalidConfiguration, config.RetryLimit)
	}
	if config.ReceiveTimeout < 0 {
		return nil, fmt.Errorf("%w: receive timeout must not be negative, got %s", ErrInvalidConfiguration, config.ReceiveTimeout)
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger()).WithField("component", "rudp")
	}

	// Unbound until SetLocalEndpoint; the kernel picks the source port.
	sock, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}

	conn := &Connection{
		config:  config,
		log:     log,
		send:    SendState{Limit: uint32(config.RetryLimit)},
		receive: NewReceiveTable(),
	}
	conn.sock.Store(sock)
	conn.deadline = NewDeadline(conn.abortRead)

	return conn, nil
}

// abortRead forces the pending read on the current socket to return.
func (c *Connection) abortRead() {
	if sock := c.sock.Load(); sock != nil {
		_ = sock.SetReadDeadline(aLongTimeAgo)
	}
}

func (c *Connection) socket() (*net.UDPConn, error) {
	sock := c.sock.Load()
	if sock == nil || c.closed.Load() {
		return nil, ErrClosed
	}
	return sock, nil
}

// SetLocalEndpoint binds the connection to port on all interfaces and
// forgets every sender's receive sequence.
func (c *Connection) SetLocalEndpoint(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}

	addr := &net.UDPAddr{IP: net.IPv4zero, Port: int(port)}
	sock, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return &TransportError{Op: "bind", Addr: addr, Err: err}
	}

	if old := c.sock.Swap(sock); old != nil {
		old.Close()
	}
	if c.closed.Load() {
		if s := c.sock.Swap(nil); s != nil {
			s.Close()
		}
		return ErrClosed
	}

	c.local = sock.LocalAddr().(*net.UDPAddr)
	c.receive.Reset()

	c.log.WithField("local", c.local.String()).Info("local endpoint set")
	return nil
}

// SetRemoteEndpoint sets the destination of Send and restarts the send
// sequence at 0.
func (c *Connection) SetRemoteEndpoint(address string, port uint16) error {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(address, strconv.Itoa(int(port))))
	if err != nil {
		return fmt.Errorf("%w: remote endpoint %s:%d: %v", ErrInvalidConfiguration, address, port, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.remote = addr
	c.send.Reset()

	c.log.WithField("remote", addr.String()).Info("remote endpoint set")
	return nil
}

func (c *Connection) SetRetryLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: retry limit must be positive, got %d", ErrInvalidConfiguration, limit)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.send.Limit = uint32(limit)
	c.log.WithField("limit", limit).Debug("retry limit set")
	return nil
}

func (c *Connection) ResetSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send.Reset()
}

func (c *Connection) ResetReceive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receive.Reset()
}

// Send transmits payload to the remote endpoint and retransmits the same
// frame until a matching ACK arrives or the retry limit is spent. It returns
// the size of the frame whose transmission was acknowledged.
func (c *Connection) Send(payload []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remote == nil {
		return 0, ErrNoRemoteEndpoint
	}
	if len(payload) > MaxPayloadSize {
		return 0, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	sock, err := c.socket()
	if err != nil {
		return 0, err
	}

	seq := c.send.Sequence
	frame := EncodeFrame(uint16(seq), payload)
	ackBuf := make([]byte, MaxDatagramSize)
	log := c.log.WithFields(logrus.Fields{"seq": seq, "remote": c.remote.String()})

	c.send.Retries = 0
	for {
		sent, err := sock.WriteToUDP(frame, c.remote)
		if err != nil {
			c.send.Retries = 0
			if c.closed.Load() || errors.Is(err, net.ErrClosed) {
				return 0, ErrClosed
			}
			return 0, &TransportError{Op: "write", Addr: c.remote, Err: err}
		}
		log.WithFields(logrus.Fields{"bytes": sent, "attempt": c.send.Retries + 1}).Debug("frame sent")

		acked, err := c.awaitAck(sock, seq, ackBuf, log)
		if err != nil {
			c.send.Retries = 0
			return 0, err
		}

		c.send.Retries++
		if acked {
			c.send.Acknowledged()
			log.Debug("ack received")
			return sent, nil
		}
		if c.send.Exhausted() {
			attempts := c.send.Retries
			c.send.Retries = 0
			log.WithField("attempts", attempts).Warn("giving up on frame")
			return 0, fmt.Errorf("%w: no ack from %s for sequence %d after %d attempts",
				ErrRetryLimitExceeded, c.remote, seq, attempts)
		}
	}
}

// awaitAck waits one timeout for an ACK echoing seq. Anything other than a
// matching ACK counts as no match; only a closed socket is an error.
func (c *Connection) awaitAck(sock *net.UDPConn, seq Sequence, buf []byte, log *logrus.Entry) (bool, error) {
	start := time.Now()
	n, _, err := c.readFrom(sock, buf, c.config.Timeout)
	switch {
	case err == nil:
	case errors.Is(err, errDeadlineExpired):
		log.Debug("timed out waiting for ack")
		return false, nil
	case errors.Is(err, ErrClosed):
		return false, err
	default:
		// A failing socket still spends the full timeout on this attempt.
		log.WithError(err).Warn("reading ack failed")
		time.Sleep(c.config.Timeout - time.Since(start))
		return false, nil
	}

	ack, err := DecodeAck(buf[:n])
	if err != nil {
		log.WithError(err).Warn("discarding malformed ack")
		return false, nil
	}
	if Sequence(ack) != seq {
		log.WithField("ack", ack).Debug("ack does not match sequence")
		return false, nil
	}
	return true, nil
}

// readFrom performs one read. A positive timeout arms the deadline actor;
// data that arrives before the abort takes effect still wins.
func (c *Connection) readFrom(sock *net.UDPConn, buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	if timeout > 0 {
		c.deadline.Arm(timeout)
	}

	n, addr, err := sock.ReadFromUDP(buf)

	if timeout > 0 {
		fired := c.deadline.Disarm()
		// The actor may have fired after the read completed.
		_ = sock.SetReadDeadline(time.Time{})
		if err != nil && fired {
			return 0, nil, errDeadlineExpired
		}
	}
	if err != nil {
		if c.closed.Load() || errors.Is(err, net.ErrClosed) {
			return 0, nil, ErrClosed
		}
		return 0, nil, &TransportError{Op: "read", Addr: sock.LocalAddr(), Err: err}
	}
	return n, addr, nil
}

// Receive blocks until the next in-order frame from any sender arrives,
// copies its payload into buf and returns the payload length and sender.
// Duplicates are re-acknowledged, frames ahead of the expected sequence are
// dropped, and unreadable datagrams are skipped.
func (c *Connection) Receive(buf []byte) (int, *net.UDPAddr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.local == nil {
		return 0, nil, ErrNoLocalEndpoint
	}
	sock, err := c.socket()
	if err != nil {
		return 0, nil, err
	}

	datagram := make([]byte, min(FrameHeaderSize+len(buf), MaxDatagramSize))
	for {
		n, from, err := c.readFrom(sock, datagram, c.config.ReceiveTimeout)
		if err != nil {
			if errors.Is(err, errDeadlineExpired) {
				return 0, nil, ErrReceiveTimeout
			}
			if errors.Is(err, ErrClosed) {
				return 0, nil, err
			}
			c.log.WithError(err).Warn("read failed, waiting for next datagram")
			continue
		}

		peer := PeerKey(from)
		expected := c.receive.Expected(peer)
		log := c.log.WithFields(logrus.Fields{"peer": peer, "expected": expected})
		log.WithField("bytes", n).Debug("datagram received")

		frame, err := DecodeFrame(datagram[:n])
		if err != nil {
			log.WithError(err).Warn("discarding datagram")
			continue
		}

		seq := Sequence(frame.Sequence)
		switch {
		case seq.After(expected):
			log.WithField("seq", seq).Debug("dropping frame ahead of expected sequence")
			continue
		case seq.Before(expected):
			// The first ACK was lost; echo it again so the sender can stop.
			if err := c.writeAck(sock, seq, from); err != nil {
				log.WithError(err).Warn("re-acknowledging duplicate failed")
			} else {
				log.WithField("seq", seq).Debug("duplicate re-acknowledged")
			}
			continue
		}

		if int(frame.Length) > len(buf) {
			return 0, nil, fmt.Errorf("%w: %d byte payload from %s, buffer holds %d",
				ErrBufferTooSmall, frame.Length, peer, len(buf))
		}
		if len(frame.Payload) < int(frame.Length) {
			log.WithFields(logrus.Fields{"declared": frame.Length, "got": len(frame.Payload)}).
				Warn("discarding truncated frame")
			continue
		}

		if err := c.writeAck(sock, seq, from); err != nil {
			log.WithError(err).Warn("acknowledging frame failed, awaiting retransmission")
			continue
		}

		copied := copy(buf, frame.Payload[:frame.Length])
		c.receive.Advance(peer)
		log.WithField("seq", seq).Debug("frame delivered")
		return copied, from, nil
	}
}

func (c *Connection) writeAck(sock *net.UDPConn, seq Sequence, to *net.UDPAddr) error {
	if _, err := sock.WriteToUDP(EncodeAck(uint16(seq)), to); err != nil {
		return &TransportError{Op: "write ack", Addr: to, Err: err}
	}
	return nil
}

// Close releases the socket and the deadline actor. A pending Send or
// Receive returns ErrClosed.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.deadline.Stop()
	if sock := c.sock.Swap(nil); sock != nil {
		return sock.Close()
	}
	return nil
}

// LocalAddr returns the socket address, which is ephemeral until
// SetLocalEndpoint binds a port.
func (c *Connection) LocalAddr() *net.UDPAddr {
	sock := c.sock.Load()
	if sock == nil {
		return nil
	}
	return sock.LocalAddr().(*net.UDPAddr)
}

func (c *Connection) RemoteAddr() *net.UDPAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote
}

func (c *Connection) SendSequence() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint16(c.send.Sequence)
}

// ExpectedSequence returns the next sequence awaited from peer ("ip:port").
func (c *Connection) ExpectedSequence(peer string) (uint16, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, ok := c.receive.Lookup(peer)
	return uint16(seq), ok
}

func (c *Connection) Peers() map[string]uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receive.Snapshot()
}
