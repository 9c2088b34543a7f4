package network

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceWraps(t *testing.T) {
	assert.Equal(t, Sequence(1), Sequence(0).Next())
	assert.Equal(t, Sequence(0), Sequence(65535).Next())

	var s Sequence
	for i := 0; i < 65536+5; i++ {
		s = s.Next()
	}
	assert.Equal(t, Sequence(5), s)
}

func TestSequenceOrdering(t *testing.T) {
	tests := []struct {
		a, b   Sequence
		before bool
		after  bool
	}{
		{0, 0, false, false},
		{0, 1, true, false},
		{5, 2, false, true},
		{65535, 0, true, false},
		{0, 65535, false, true},
		{65530, 3, false, true},
		{40000, 0, false, true},
		{32768, 0, false, true},
		{1, 40000, true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.before, tt.a.Before(tt.b), "%d before %d", tt.a, tt.b)
		assert.Equal(t, tt.after, tt.a.After(tt.b), "%d after %d", tt.a, tt.b)
	}
}

func TestSendState(t *testing.T) {
	s := SendState{Limit: 3}
	assert.False(t, s.Exhausted())

	s.Retries = 3
	assert.True(t, s.Exhausted())

	s.Acknowledged()
	assert.Equal(t, Sequence(1), s.Sequence)
	assert.Zero(t, s.Retries)

	unbounded := SendState{Retries: 1 << 20}
	assert.False(t, unbounded.Exhausted())

	s.Reset()
	assert.Zero(t, s.Sequence)
}

func TestReceiveTable(t *testing.T) {
	table := NewReceiveTable()

	_, ok := table.Lookup("10.0.0.1:4000")
	assert.False(t, ok)

	assert.Equal(t, Sequence(0), table.Expected("10.0.0.1:4000"))
	assert.Equal(t, 1, table.Len())

	table.Advance("10.0.0.1:4000")
	table.Advance("10.0.0.1:4000")
	table.Advance("10.0.0.2:4000")

	assert.Equal(t, map[string]uint16{"10.0.0.1:4000": 2, "10.0.0.2:4000": 1}, table.Snapshot())

	table.Reset()
	assert.Zero(t, table.Len())
}

func TestPeerKey(t *testing.T) {
	assert.Equal(t, "127.0.0.1:3204", PeerKey(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 3204}))
	assert.Equal(t, "", PeerKey(nil))
}
