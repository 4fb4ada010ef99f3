// Package messaging implements the authenticated, length-framed TCP
// message transport on port 37843: handshake, connection pool,
// hybrid-encrypted application messages, and event routing. It
// generalizes the teacher's pkg/chat package (communication.go's
// ConnectionManager/PeerConnection, chatservice.go's integration
// layer) from newline-delimited JSON identification to the
// length-prefixed tagged-union framing and RSA/AES envelope this
// system requires.
package messaging

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"lanchat/internal/types"
)

// MaxFrameSize bounds a single frame's payload; larger frames are a
// protocol error and close the connection.
const MaxFrameSize = 10 * 1024 * 1024

// WriteFrame writes a 4-byte big-endian length prefix followed by
// payload to w, the same [length][payload] shape transfer framing
// reuses.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return types.ProtocolError("frame too large to send", nil)
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return types.NetworkError("failed to write frame header", err)
	}
	if _, err := w.Write(payload); err != nil {
		return types.NetworkError("failed to write frame payload", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r. A length exceeding
// MaxFrameSize is a protocol error; the caller must close the
// connection rather than keep reading.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, types.NetworkError("failed to read frame header", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, types.ProtocolError("frame exceeds maximum size", nil)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, types.NetworkError("failed to read frame payload", err)
	}
	return payload, nil
}

// dialTimeout bounds outbound connection attempts.
const dialTimeout = 5 * time.Second

func dial(addr types.NetworkAddress) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr.String(), dialTimeout)
	if err != nil {
		return nil, types.NetworkError("failed to dial peer", err)
	}
	return conn, nil
}
