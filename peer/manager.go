package peer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"rudp/network"

	"github.com/sirupsen/logrus"
)

var ErrUnknownHandle = errors.New("rudp: unknown connection handle")

// Manager issues integer handles for connections and looks them up for
// callers that cannot hold a *network.Connection directly.
type Manager struct {
	mu          sync.Mutex
	connections map[int]*network.Connection
	lastHandle  int
	log         *logrus.Entry
}

func NewManager(log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		connections: make(map[int]*network.Connection),
		log:         log.WithField("component", "registry"),
	}
}

// Create opens a connection and returns its handle. Handles start at 1 and
// are never reused.
func (m *Manager) Create(config network.ConnectionConfig) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, err := network.NewConnection(config)
	if err != nil {
		return 0, err
	}

	m.lastHandle++
	m.connections[m.lastHandle] = conn
	m.log.WithField("handle", m.lastHandle).Debug("connection created")
	return m.lastHandle, nil
}

func (m *Manager) Lookup(handle int) (*network.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, handle)
	}
	return conn, nil
}

// Remove forgets handle and closes its connection.
func (m *Manager) Remove(handle int) error {
	m.mu.Lock()
	conn, ok := m.connections[handle]
	delete(m.connections, handle)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, handle)
	}
	m.log.WithField("handle", handle).Debug("connection removed")
	return conn.Close()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

func (m *Manager) Handles() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	handles := make([]int, 0, len(m.connections))
	for h := range m.connections {
		handles = append(handles, h)
	}
	sort.Ints(handles)
	return handles
}

// Close removes and closes every connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	connections := m.connections
	m.connections = make(map[int]*network.Connection)
	m.mu.Unlock()

	var errs []error
	for _, conn := range connections {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
