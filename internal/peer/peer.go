// Package peer holds the Peer record and the concurrent PeerRegistry
// shared by discovery and messaging, adapted from the teacher's
// internal/peer/peer.go and pkg/discovery/registry.go.
package peer

import (
	"time"

	"lanchat/internal/types"
)

// OnlineThreshold is how recent last-seen must be for a peer to count as
// online: 30s, roughly two missed 15s heartbeats.
const OnlineThreshold = 30 * time.Second

// Peer represents another node on the LAN.
type Peer struct {
	Profile   types.UserProfile
	Address   types.NetworkAddress
	LastSeen  time.Time
	PublicKey []byte // PEM bytes, nil until a handshake or announce carries one
}

// New creates a peer record seen right now.
func New(profile types.UserProfile, address types.NetworkAddress) *Peer {
	return &Peer{
		Profile:  profile,
		Address:  address,
		LastSeen: time.Now(),
	}
}

// UpdateLastSeen marks the peer as just heard from.
func (p *Peer) UpdateLastSeen() {
	p.LastSeen = time.Now()
}

// IsOnline reports whether the peer is considered online: status != Offline
// and last-seen within OnlineThreshold.
func (p *Peer) IsOnline() bool {
	return p.Profile.Status != types.StatusOffline && time.Since(p.LastSeen) < OnlineThreshold
}

// Clone returns a value copy safe to hand to callers outside the registry
// lock, the way the teacher's GetAllPeers dereferences into a fresh struct.
func (p *Peer) Clone() Peer {
	cp := *p
	if p.PublicKey != nil {
		cp.PublicKey = append([]byte(nil), p.PublicKey...)
	}
	return cp
}
