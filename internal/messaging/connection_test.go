package messaging

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"lanchat/internal/types"
)

func TestConnectionSendReceiveRoundTrip(t *testing.T) {
	clientRaw, serverRaw := net.Pipe()
	defer clientRaw.Close()
	defer serverRaw.Close()

	client := newConnection(clientRaw)
	server := newConnection(serverRaw)

	userID := types.NewID()
	done := make(chan error, 1)
	go func() {
		done <- client.Send(NewHandshake(userID, []byte("pem")))
	}()

	got, err := server.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)

	require.Equal(t, KindHandshake, got.Kind)
	require.Equal(t, userID, got.UserID)
	require.Equal(t, uint32(ProtocolVersion), got.Version)
}

func TestPoolPutReplacesOlderConnection(t *testing.T) {
	pool := NewPool()
	id := types.NewID()

	c1Raw, c1RemoteRaw := net.Pipe()
	c2Raw, c2RemoteRaw := net.Pipe()
	defer c1RemoteRaw.Close()
	defer c2RemoteRaw.Close()
	defer c2Raw.Close()

	c1 := newConnection(c1Raw)
	c2 := newConnection(c2Raw)

	pool.Put(id, c1)
	pool.Put(id, c2)

	got, ok := pool.Get(id)
	require.True(t, ok)
	require.Same(t, c2, got)

	// c1 was closed by the replacement; writing to its remote end
	// should now fail since the pipe is torn down.
	_, err := c1RemoteRaw.Write([]byte("x"))
	require.Error(t, err)
}

func TestPoolRemoveIfOnlyRemovesMatchingConnection(t *testing.T) {
	pool := NewPool()
	id := types.NewID()

	raw, remote := net.Pipe()
	defer remote.Close()
	defer raw.Close()
	conn := newConnection(raw)
	pool.Put(id, conn)

	other := newConnection(raw)
	require.False(t, pool.RemoveIf(id, other))

	require.True(t, pool.RemoveIf(id, conn))
	_, ok := pool.Get(id)
	require.False(t, ok)
}
