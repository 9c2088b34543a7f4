package network

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type ConnectionConfig struct {
	// Timeout bounds each wait for an ACK before the frame is retransmitted.
	Timeout time.Duration
	// RetryLimit caps transmissions per Send. Zero retries forever.
	RetryLimit int
	// ReceiveTimeout bounds each datagram read in Receive. Zero blocks
	// until a peer sends.
	ReceiveTimeout time.Duration
	Logger         *logrus.Entry
}

// Connection is one Stop-and-Wait endpoint. It owns its socket, its
// deadline actor and all sequence state.
type Connection struct {
	// mu serializes Send, Receive and reconfiguration. A blocked Receive
	// therefore holds off Send on the same Connection.
	mu sync.Mutex

	config   ConnectionConfig
	log      *logrus.Entry
	sock     atomic.Pointer[net.UDPConn]
	closed   atomic.Bool
	deadline *Deadline

	local  *net.UDPAddr
	remote *net.UDPAddr

	send    SendState
	receive *ReceiveTable
}
