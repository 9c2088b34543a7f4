package peer

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

const TokenVersion = 1

var ErrTokenExpired = errors.New("token expired")

// TokenData is the endpoint a receiver publishes so senders can reach it.
type TokenData struct {
	Version   uint8  `json:"v"`
	Name      string `json:"n"`
	IP        net.IP `json:"i"`
	Port      uint16 `json:"p"`
	Timestamp int64  `json:"t"`
}

// Address returns the token's endpoint as host and port for
// network.Connection.SetRemoteEndpoint.
func (td *TokenData) Address() (string, uint16) {
	return td.IP.String(), td.Port
}

func GenerateToken(name string, ip net.IP, port uint16) (string, error) {
	if ip == nil {
		ip = net.IPv4(127, 0, 0, 1)
	}

	data := TokenData{
		Version:   TokenVersion,
		Name:      name,
		IP:        ip,
		Port:      port,
		Timestamp: time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token: %w", err)
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(jsonData); err != nil {
		return "", fmt.Errorf("failed to compress token: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress token: %w", err)
	}

	return Encode(compressed.Bytes()), nil
}

// ParseToken decodes token. A positive maxAge rejects older tokens.
func ParseToken(token string, maxAge time.Duration) (*TokenData, error) {
	raw, err := Decode(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	defer zr.Close()

	var td TokenData
	if err := json.NewDecoder(zr).Decode(&td); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if td.Version != TokenVersion {
		return nil, fmt.Errorf("invalid token: unsupported version %d", td.Version)
	}

	if maxAge > 0 && time.Since(time.Unix(td.Timestamp, 0)) > maxAge {
		return nil, ErrTokenExpired
	}

	return &td, nil
}
