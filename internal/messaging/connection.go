package messaging

import (
	"net"
	"sync"

	"lanchat/internal/types"
)

// Connection is one TCP socket to a peer, framed and identified by the
// peer's UserId once the handshake completes. writeMu serializes Send
// calls: the per-connection read loop (serve) replies inline with
// MessageAck/Pong from its own goroutine while the application sends
// concurrently via SendText, and WriteFrame issues two separate Writes
// (header, then payload) per call - without this lock two concurrent
// Sends can interleave their header/payload writes and desync the
// framing on the wire. The teacher serializes per-connection writes
// the same way, just through a dedicated goroutine draining a SendChan
// (pkg/chat/communication.go's handlePeerSending) rather than a mutex.
type Connection struct {
	conn   net.Conn
	PeerID types.UserId

	writeMu sync.Mutex
}

func newConnection(conn net.Conn) *Connection {
	return &Connection{conn: conn}
}

// Send frames and writes a protocol message. Safe for concurrent use;
// concurrent Sends are serialized so no two frames' writes interleave.
func (c *Connection) Send(msg ProtocolMessage) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.conn, data)
}

// Receive reads and decodes the next framed protocol message.
func (c *Connection) Receive() (*ProtocolMessage, error) {
	data, err := ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(data)
}

// Close shuts down the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// RemoteAddr reports the peer's network address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
