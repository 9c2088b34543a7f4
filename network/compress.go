package network

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// MaxMessageSize caps the output of Decompress.
const MaxMessageSize = 64 << 20

// Compression selects how PacketManager encodes message payloads. Both ends
// of a channel must use the same mode.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionSnappy Compression = "snappy"
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
)

func ParseCompression(s string) (Compression, error) {
	switch mode := Compression(s); mode {
	case "":
		return CompressionNone, nil
	case CompressionNone, CompressionSnappy, CompressionGzip, CompressionZstd:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown compression %q", ErrInvalidConfiguration, s)
	}
}

func Compress(raw []byte, mode Compression) ([]byte, error) {
	switch mode {
	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		defer encoder.Close()
		return encoder.EncodeAll(raw, make([]byte, 0, len(raw))), nil

	case CompressionGzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case CompressionSnappy:
		return snappy.Encode(nil, raw), nil

	case CompressionNone, "":
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfiguration, mode)
	}
}

// Decompress reverses Compress. Output larger than MaxMessageSize fails with
// ErrMessageTooLarge before it is allocated where the format allows.
func Decompress(data []byte, mode Compression) ([]byte, error) {
	switch mode {
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxMessageSize))
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		out, err := decoder.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrMessageTooLarge, err)
		}
		return out, err

	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		out, err := io.ReadAll(io.LimitReader(r, MaxMessageSize+1))
		if err != nil {
			return nil, err
		}
		if len(out) > MaxMessageSize {
			return nil, fmt.Errorf("%w: gzip output over %d bytes", ErrMessageTooLarge, MaxMessageSize)
		}
		return out, nil

	case CompressionSnappy:
		n, err := snappy.DecodedLen(data)
		if err != nil {
			return nil, err
		}
		if n > MaxMessageSize {
			return nil, fmt.Errorf("%w: snappy header declares %d bytes", ErrMessageTooLarge, n)
		}
		return snappy.Decode(nil, data)

	case CompressionNone, "":
		return data, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfiguration, mode)
	}
}
