package network

import (
	"encoding/json"
	"fmt"
	"net"
)

// PacketManager layers message encoding over a Connection: optional payload
// compression and JSON helpers.
type PacketManager struct {
	conn *Connection
	mode Compression
}

func NewPacketManager(conn *Connection, mode Compression) *PacketManager {
	if mode == "" {
		mode = CompressionNone
	}
	return &PacketManager{
		conn: conn,
		mode: mode,
	}
}

func (pm *PacketManager) Conn() *Connection { return pm.conn }

func (pm *PacketManager) Compression() Compression { return pm.mode }

// SendMessage compresses data and sends it as one frame.
func (pm *PacketManager) SendMessage(data []byte) (int, error) {
	payload, err := Compress(data, pm.mode)
	if err != nil {
		return 0, fmt.Errorf("failed to compress message: %w", err)
	}

	return pm.conn.Send(payload)
}

// ReceiveMessage receives one frame of at most capacity bytes and returns
// the decompressed message.
func (pm *PacketManager) ReceiveMessage(capacity int) ([]byte, *net.UDPAddr, error) {
	buffer := make([]byte, capacity)
	n, from, err := pm.conn.Receive(buffer)
	if err != nil {
		return nil, nil, err
	}

	data, err := Decompress(buffer[:n], pm.mode)
	if err != nil {
		return nil, from, fmt.Errorf("failed to decompress message from %s: %w", from, err)
	}
	return data, from, nil
}

func (pm *PacketManager) SendJSON(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	return pm.SendMessage(data)
}

func (pm *PacketManager) ReceiveJSON(capacity int, v any) (*net.UDPAddr, error) {
	data, from, err := pm.ReceiveMessage(capacity)
	if err != nil {
		return from, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return from, fmt.Errorf("failed to decode message from %s: %w", from, err)
	}
	return from, nil
}
