package network

import (
	"net"
	"strconv"
)

// Sequence is a 16-bit frame sequence number. Arithmetic wraps 65535 -> 0.
type Sequence uint16

func (s Sequence) Next() Sequence { return s + 1 }

// Before reports whether s precedes other. Ordering is numeric except that
// 65535 precedes 0, so the last frame before a wrap stays a duplicate.
func (s Sequence) Before(other Sequence) bool {
	return s < other || s == other-1
}

// After reports whether s follows other numerically. A sender only moves one
// frame at a time, so anything else ahead is a frame the receiver must not
// acknowledge.
func (s Sequence) After(other Sequence) bool {
	return s > other && s != other-1
}

// SendState is the local send channel. Limit 0 means unbounded retries.
type SendState struct {
	Sequence Sequence
	Retries  uint32
	Limit    uint32
}

// Exhausted reports whether the retry budget is spent.
func (s *SendState) Exhausted() bool {
	return s.Limit > 0 && s.Retries >= s.Limit
}

// Acknowledged advances the channel after a matching ACK.
func (s *SendState) Acknowledged() {
	s.Retries = 0
	s.Sequence = s.Sequence.Next()
}

func (s *SendState) Reset() {
	s.Sequence = 0
	s.Retries = 0
}

// PeerKey formats a sender as the ReceiveTable key.
func PeerKey(addr *net.UDPAddr) string {
	if addr == nil {
		return ""
	}
	return net.JoinHostPort(addr.IP.String(), strconv.Itoa(addr.Port))
}

// ReceiveTable tracks the next expected sequence per remote sender.
type ReceiveTable struct {
	expected map[string]Sequence
}

func NewReceiveTable() *ReceiveTable {
	return &ReceiveTable{expected: make(map[string]Sequence)}
}

// Expected returns the sequence awaited from peer, creating the entry at 0.
func (t *ReceiveTable) Expected(peer string) Sequence {
	seq, ok := t.expected[peer]
	if !ok {
		t.expected[peer] = 0
	}
	return seq
}

func (t *ReceiveTable) Lookup(peer string) (Sequence, bool) {
	seq, ok := t.expected[peer]
	return seq, ok
}

// Advance moves peer's expected sequence forward by one.
func (t *ReceiveTable) Advance(peer string) {
	t.expected[peer] = t.expected[peer].Next()
}

func (t *ReceiveTable) Reset() {
	clear(t.expected)
}

func (t *ReceiveTable) Len() int { return len(t.expected) }

func (t *ReceiveTable) Snapshot() map[string]uint16 {
	out := make(map[string]uint16, len(t.expected))
	for peer, seq := range t.expected {
		out[peer] = uint16(seq)
	}
	return out
}
