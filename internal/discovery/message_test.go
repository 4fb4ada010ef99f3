package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"lanchat/internal/types"
)

func TestAnnounceEncodeDecodeRoundTrip(t *testing.T) {
	profile := types.NewUserProfile("alice", "Alice")
	addr := types.NewNetworkAddress(net.ParseIP("192.168.1.50"), 37843)
	msg := NewAnnounce(profile, addr, []byte("pem-bytes"))

	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, KindAnnounce, decoded.Kind)
	require.Equal(t, profile.UserID, decoded.SenderUserID())
	require.Equal(t, []byte("pem-bytes"), decoded.PublicKey)
}

func TestGoodbyeSenderUserID(t *testing.T) {
	id := types.NewID()
	msg := NewGoodbye(id)

	data, err := msg.Encode()
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, id, decoded.SenderUserID())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestDiscoveryRequestHasNoProfile(t *testing.T) {
	msg := NewDiscoveryRequest()
	require.Equal(t, KindRequest, msg.Kind)
	require.Nil(t, msg.Profile)
	require.Equal(t, types.ZeroID, msg.SenderUserID())
}
