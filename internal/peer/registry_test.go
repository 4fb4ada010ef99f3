package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/internal/types"
)

func newTestPeer(username string) *Peer {
	profile := types.NewUserProfile(username, username)
	addr := types.NewNetworkAddress(net.ParseIP("192.168.1.50"), 37843)
	return New(profile, addr)
}

func TestRegistryUpsertAddsThenUpdates(t *testing.T) {
	reg := NewRegistry()
	p := newTestPeer("alice")

	reg.Upsert(p)
	require.Equal(t, 1, reg.Count())

	got, ok := reg.Get(p.Profile.UserID)
	require.True(t, ok)
	require.Equal(t, "alice", got.Profile.Username)

	// Upsert again with the same id merges, not duplicates.
	updated := New(p.Profile, p.Address)
	updated.Profile.Status = types.StatusAway
	reg.Upsert(updated)

	all := reg.All()
	require.Len(t, all, 1)
	require.Equal(t, types.StatusAway, all[0].Profile.Status)
}

func TestPeerLastSeenNeverDecreases(t *testing.T) {
	p := newTestPeer("bob")
	first := p.LastSeen
	time.Sleep(time.Millisecond)
	p.UpdateLastSeen()
	require.True(t, p.LastSeen.After(first))
}

func TestRegistryEvictStale(t *testing.T) {
	reg := NewRegistry()
	p := newTestPeer("carol")
	reg.Upsert(p)

	// Force last-seen far enough in the past to be evicted.
	stale, _ := reg.Get(p.Profile.UserID)
	_ = stale
	reg.mu.Lock()
	reg.peers[p.Profile.UserID].LastSeen = time.Now().Add(-2 * EvictThreshold)
	reg.mu.Unlock()

	evicted := reg.EvictStale()
	require.Equal(t, []types.UserId{p.Profile.UserID}, evicted)
	require.Equal(t, 0, reg.Count())
}

func TestPeerIsOnlineRespectsStatusAndAge(t *testing.T) {
	p := newTestPeer("dave")
	require.True(t, p.IsOnline())

	p.Profile.Status = types.StatusOffline
	require.False(t, p.IsOnline())

	p.Profile.Status = types.StatusOnline
	p.LastSeen = time.Now().Add(-OnlineThreshold - time.Second)
	require.False(t, p.IsOnline())
}
