package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lanchat/internal/types"
)

func TestNewWiresIdentityAndComponents(t *testing.T) {
	n, err := New(Config{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)

	require.Equal(t, "alice", n.Profile.Username)
	require.NotNil(t, n.KeyPair)
	require.NotNil(t, n.Registry)
	require.NotNil(t, n.Bus)
	require.Empty(t, n.Peers())
}

func TestNewDefaultsTCPPort(t *testing.T) {
	n, err := New(Config{Username: "bob"})
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestConnectToUnknownPeerFails(t *testing.T) {
	n, err := New(Config{Username: "alice"})
	require.NoError(t, err)

	err = n.ConnectToPeer(types.NewID())
	require.Error(t, err)
	require.Equal(t, types.ErrPeerNotFound, types.KindOf(err))
}

func TestSendMessageToUnconnectedPeerFails(t *testing.T) {
	n, err := New(Config{Username: "alice"})
	require.NoError(t, err)

	msg, err := n.SendMessage(types.NewID(), "hello")
	require.Error(t, err)
	require.Equal(t, types.StatusFailed, msg.Status)
}

func TestSendMessageReturnsTheConstructedMessage(t *testing.T) {
	n, err := New(Config{Username: "alice"})
	require.NoError(t, err)

	recipient := types.NewID()
	msg, err := n.SendMessage(recipient, "hello")
	require.Error(t, err) // no live connection in this test
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, n.Profile.UserID, msg.SenderID)
	require.Equal(t, recipient, msg.RecipientID)
	require.Equal(t, types.MessageTypeText, msg.Type)
}

func TestSendFileToUnknownPeerFails(t *testing.T) {
	n, err := New(Config{Username: "alice"})
	require.NoError(t, err)

	_, err = n.SendFile(types.NewID(), "/tmp/does-not-matter")
	require.Error(t, err)
}

func TestUpdateStatusChangesProfile(t *testing.T) {
	n, err := New(Config{Username: "alice"})
	require.NoError(t, err)

	require.Equal(t, types.StatusOnline, n.Profile.Status)
	n.UpdateStatus(types.StatusAway)
	require.Equal(t, types.StatusAway, n.Profile.Status)
}
