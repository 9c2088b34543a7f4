package network

import (
	"encoding/binary"
	"fmt"
)

const (
	// Frame header: sequence (2) + payload length (4), big-endian.
	SequenceSize    = 2
	LengthSize      = 4
	FrameHeaderSize = SequenceSize + LengthSize
	AckSize         = SequenceSize

	// Largest UDP payload over IPv4.
	MaxDatagramSize = 65507
	MaxPayloadSize  = MaxDatagramSize - FrameHeaderSize
)

// Frame is a decoded data frame. Payload is a view into the decoded buffer
// and may be shorter than Length if the datagram was truncated.
type Frame struct {
	Sequence uint16
	Length   int32
	Payload  []byte
}

// EncodeFrame serializes one data frame:
//
//	[sequence:u16 BE][length:i32 BE][payload]
func EncodeFrame(sequence uint16, payload []byte) []byte {
	buffer := make([]byte, FrameHeaderSize+len(payload))

	binary.BigEndian.PutUint16(buffer[0:], sequence)
	binary.BigEndian.PutUint32(buffer[SequenceSize:], uint32(int32(len(payload))))
	copy(buffer[FrameHeaderSize:], payload)

	return buffer
}

// DecodeFrame parses the frame header and returns the remaining bytes as the payload.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < FrameHeaderSize {
		return Frame{}, fmt.Errorf("%w: frame of %d bytes is shorter than header", ErrMalformedFrame, len(data))
	}

	frame := Frame{
		Sequence: binary.BigEndian.Uint16(data[0:]),
		Length:   int32(binary.BigEndian.Uint32(data[SequenceSize:])),
		Payload:  data[FrameHeaderSize:],
	}
	if frame.Length < 0 {
		return Frame{}, fmt.Errorf("%w: negative payload length %d", ErrMalformedFrame, frame.Length)
	}

	return frame, nil
}

// EncodeAck serializes the 2-byte acknowledgement for sequence.
func EncodeAck(sequence uint16) []byte {
	buffer := make([]byte, AckSize)
	binary.BigEndian.PutUint16(buffer, sequence)
	return buffer
}

// DecodeAck parses an acknowledgement. Anything that is not exactly AckSize
// bytes long is rejected so a data frame is never read as an ACK.
func DecodeAck(data []byte) (uint16, error) {
	if len(data) != AckSize {
		return 0, fmt.Errorf("%w: ack of %d bytes, want %d", ErrMalformedFrame, len(data), AckSize)
	}
	return binary.BigEndian.Uint16(data), nil
}
