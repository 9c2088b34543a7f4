package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnc52RoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	encoded := Encode(data)
	assert.Len(t, encoded, 2*len(data))
	for _, r := range encoded {
		assert.Contains(t, alphabet, string(r))
	}

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEnc52DecodeErrors(t *testing.T) {
	for _, bad := range []string{"A", "A1", "zz", "AB!C"} {
		_, err := Decode(bad)
		assert.Error(t, err, bad)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("receiver", net.IPv4(192, 168, 1, 20), 23000)
	require.NoError(t, err)

	td, err := ParseToken(token, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "receiver", td.Name)
	assert.Equal(t, uint16(23000), td.Port)

	host, port := td.Address()
	assert.Equal(t, "192.168.1.20", host)
	assert.Equal(t, uint16(23000), port)
}

func TestTokenDefaultsToLoopback(t *testing.T) {
	token, err := GenerateToken("local", nil, 3200)
	require.NoError(t, err)

	td, err := ParseToken(token, 0)
	require.NoError(t, err)
	assert.True(t, td.IP.Equal(net.IPv4(127, 0, 0, 1)))
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("old", nil, 3200)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = ParseToken(token, time.Millisecond)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("notatoken", 0)
	assert.Error(t, err)

	_, err = ParseToken(Encode([]byte("plain text, not zlib")), 0)
	assert.Error(t, err)
}
