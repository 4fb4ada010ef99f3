package messaging

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/internal/cryptoengine"
	"lanchat/internal/event"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

type harness struct {
	server   *Server
	bus      *event.Bus
	registry *peer.Registry
	profile  types.UserProfile
	keypair  *cryptoengine.KeyPair
}

func newHarness(t *testing.T, username string) *harness {
	t.Helper()
	kp, err := cryptoengine.Generate()
	require.NoError(t, err)

	profile := types.NewUserProfile(username, username)
	registry := peer.NewRegistry()
	bus := event.NewBus()
	server := NewServer(profile, kp, registry, bus)
	require.NoError(t, server.startOn("127.0.0.1:0"))

	return &harness{server: server, bus: bus, registry: registry, profile: profile, keypair: kp}
}

func (h *harness) address(t *testing.T) types.NetworkAddress {
	t.Helper()
	tcpAddr := h.server.ListenAddr().(*net.TCPAddr)
	return types.NewNetworkAddress(tcpAddr.IP, tcpAddr.Port)
}

func waitForKind(t *testing.T, bus *event.Bus, kind event.Kind, timeout time.Duration) event.Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-bus.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %s", kind)
		}
	}
}

func TestHandshakeEstablishesConnectionBothSides(t *testing.T) {
	alice := newHarness(t, "alice")
	bob := newHarness(t, "bob")
	defer alice.server.Stop()
	defer bob.server.Stop()

	// Both sides must know of each other in the registry first, the
	// way discovery would have populated it.
	bobPeer := peer.New(bob.profile, bob.address(t))
	alice.registry.Upsert(bobPeer)
	alicePeer := peer.New(alice.profile, alice.address(t))
	bob.registry.Upsert(alicePeer)

	require.NoError(t, alice.server.Connect(bob.profile.UserID, bob.address(t)))

	waitForKind(t, alice.bus, event.KindPeerConnected, 2*time.Second)
	waitForKind(t, bob.bus, event.KindPeerConnected, 2*time.Second)

	bobRecorded, ok := alice.registry.Get(bob.profile.UserID)
	require.True(t, ok)
	require.NotNil(t, bobRecorded.PublicKey)
}

func TestSendTextDeliversAndDecryptsContent(t *testing.T) {
	alice := newHarness(t, "alice")
	bob := newHarness(t, "bob")
	defer alice.server.Stop()
	defer bob.server.Stop()

	alice.registry.Upsert(peer.New(bob.profile, bob.address(t)))
	bob.registry.Upsert(peer.New(alice.profile, alice.address(t)))

	require.NoError(t, alice.server.Connect(bob.profile.UserID, bob.address(t)))
	waitForKind(t, bob.bus, event.KindPeerConnected, 2*time.Second)

	sessionID := types.NewID()
	msg := types.NewTextMessage(sessionID, alice.profile.UserID, bob.profile.UserID, "hello bob")

	require.NoError(t, alice.server.SendText(bob.profile.UserID, msg))

	received := waitForKind(t, bob.bus, event.KindMessageReceived, 2*time.Second)
	require.Equal(t, "hello bob", received.Message.Content)
	require.True(t, received.Message.Encrypted)

	waitForKind(t, alice.bus, event.KindMessageDelivered, 2*time.Second)
}

func TestSendTextFailsWithoutPublicKey(t *testing.T) {
	alice := newHarness(t, "alice")
	bob := newHarness(t, "bob")
	defer alice.server.Stop()
	defer bob.server.Stop()

	alice.registry.Upsert(peer.New(bob.profile, bob.address(t)))
	bob.registry.Upsert(peer.New(alice.profile, alice.address(t)))
	require.NoError(t, alice.server.Connect(bob.profile.UserID, bob.address(t)))
	waitForKind(t, bob.bus, event.KindPeerConnected, 2*time.Second)

	// Connected, but with no public key on file for bob.
	alice.registry.SetPublicKey(bob.profile.UserID, nil)
	msg := types.NewTextMessage(types.NewID(), alice.profile.UserID, bob.profile.UserID, "lost message")
	err := alice.server.SendText(bob.profile.UserID, msg)
	require.Error(t, err)
}

func TestVersionMismatchIsRejected(t *testing.T) {
	bob := newHarness(t, "bob")
	defer bob.server.Stop()

	tcpAddr := bob.server.ListenAddr().(*net.TCPAddr)
	raw, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(tcpAddr.Port))
	require.NoError(t, err)
	defer raw.Close()

	conn := newConnection(raw)
	bad := NewHandshake(types.NewID(), []byte("pem"))
	bad.Version = 99
	require.NoError(t, conn.Send(bad))

	// Server closes the connection on version mismatch rather than
	// replying; the next read should observe EOF/closed.
	raw.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	_, err = raw.Read(buf)
	require.Error(t, err)
}
