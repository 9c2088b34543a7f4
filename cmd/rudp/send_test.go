package main

import (
	"strings"
	"testing"

	"rudp/peer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDestination(t *testing.T) {
	host, port, err := resolveDestination("127.0.0.1:23000", "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, uint16(23000), port)

	token, err := peer.GenerateToken("bench", nil, 4100)
	require.NoError(t, err)
	host, port, err = resolveDestination("", token)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, uint16(4100), port)

	for _, tt := range []struct{ to, token string }{
		{"", ""},
		{"127.0.0.1:1", token},
		{"127.0.0.1", ""},
		{"127.0.0.1:70000", ""},
	} {
		_, _, err := resolveDestination(tt.to, tt.token)
		assert.Error(t, err, "to=%q token=%q", tt.to, tt.token)
	}
}

func TestReadMessage(t *testing.T) {
	data, err := readMessage(strings.NewReader("ignored"), []string{"Hello", "World!"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(data))

	data, err = readMessage(strings.NewReader("from stdin\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", string(data))
}
