package api

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"rudp/network"
	"rudp/peer"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoundary(t *testing.T) *Boundary {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	manager := peer.NewManager(log)
	t.Cleanup(func() { manager.Close() })
	return NewBoundary(manager, log)
}

func TestBoundarySendReceive(t *testing.T) {
	b := newTestBoundary(t)

	receiver, status := b.MakeConnection(500)
	require.Equal(t, StatusOK, status)
	sender, status := b.MakeConnection(1000)
	require.Equal(t, StatusOK, status)

	require.Equal(t, StatusOK, b.SetLocalEndpoint(receiver, 0))
	conn, err := b.manager.Lookup(receiver)
	require.NoError(t, err)
	port := uint16(conn.LocalAddr().Port)

	require.Equal(t, StatusOK, b.SetRemoteEndpoint(sender, "127.0.0.1", port))
	require.Equal(t, StatusOK, b.SetRetryLimit(sender, 10))

	message := []byte("Hello World!")
	type sendResult struct {
		n      int
		status Status
	}
	sent := make(chan sendResult, 1)
	go func() {
		n, status := b.Send(sender, message)
		sent <- sendResult{n, status}
	}()

	buf := make([]byte, 64)
	n, address, fromPort, status := b.Receive(receiver, buf)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, message, buf[:n])
	assert.Equal(t, "127.0.0.1", address)
	assert.Positive(t, fromPort)

	res := <-sent
	assert.Equal(t, StatusOK, res.status)
	assert.Equal(t, network.FrameHeaderSize+len(message), res.n)

	assert.Equal(t, StatusOK, b.ResetSend(sender))
	assert.Equal(t, StatusOK, b.ResetReceive(receiver))
	assert.Equal(t, StatusOK, b.CloseConnection(sender))
	assert.Equal(t, StatusUnknownHandle, b.CloseConnection(sender))
}

func TestBoundaryPreconditions(t *testing.T) {
	b := newTestBoundary(t)

	handle, status := b.MakeConnection(100)
	require.Equal(t, StatusOK, status)

	n, status := b.Send(handle, []byte("x"))
	assert.Equal(t, -1, n)
	assert.Equal(t, StatusNoRemoteEndpoint, status)

	n, _, _, status = b.Receive(handle, make([]byte, 8))
	assert.Equal(t, -1, n)
	assert.Equal(t, StatusNoLocalEndpoint, status)

	assert.Equal(t, StatusInvalidConfiguration, b.SetRetryLimit(handle, 0))

	require.Equal(t, StatusOK, b.SetRemoteEndpoint(handle, "127.0.0.1", 9))
	n, status = b.Send(handle, make([]byte, network.MaxPayloadSize+1))
	assert.Equal(t, -1, n)
	assert.Equal(t, StatusPayloadTooLarge, status)
	assert.Equal(t, StatusUnknownHandle, b.SetLocalEndpoint(99, 0))

	_, status = b.MakeConnection(0)
	assert.Equal(t, StatusInvalidConfiguration, status)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{network.ErrNoLocalEndpoint, StatusNoLocalEndpoint},
		{network.ErrNoRemoteEndpoint, StatusNoRemoteEndpoint},
		{fmt.Errorf("%w: bad", network.ErrInvalidConfiguration), StatusInvalidConfiguration},
		{&network.TransportError{Op: "write", Err: errors.New("boom")}, StatusTransport},
		{network.ErrMalformedFrame, StatusMalformedFrame},
		{fmt.Errorf("%w: 70000 bytes", network.ErrPayloadTooLarge), StatusPayloadTooLarge},
		{fmt.Errorf("wrapped: %w", network.ErrBufferTooSmall), StatusBufferTooSmall},
		{network.ErrRetryLimitExceeded, StatusRetryLimitExceeded},
		{network.ErrReceiveTimeout, StatusTimeout},
		{network.ErrClosed, StatusClosed},
		{peer.ErrUnknownHandle, StatusUnknownHandle},
		{errors.New("something else"), StatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "%v", tt.err)
	}
}
