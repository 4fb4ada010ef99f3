package peer

import (
	"sync"
	"time"

	"lanchat/internal/logging"
	"lanchat/internal/types"
)

// EvictThreshold is how stale last-seen must be before the reaper removes
// a peer entirely: 45s, three missed 15s heartbeats.
const EvictThreshold = 45 * time.Second

var log = logging.For("registry")

// Registry is a concurrent read-many/write-few map of UserId -> *Peer.
// Invariants: at most one entry per UserId; never held across a network
// await (callers copy what they need out while holding the lock).
type Registry struct {
	mu    sync.RWMutex
	peers map[types.UserId]*Peer
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[types.UserId]*Peer)}
}

// Upsert inserts a new peer or merges fresh discovery data into an
// existing one, always bumping last-seen. last-seen is monotonically
// non-decreasing per peer by construction (every write uses time.Now()).
func (r *Registry) Upsert(p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.Profile.UserID
	if existing, ok := r.peers[id]; ok {
		existing.Profile = p.Profile
		existing.Address = p.Address
		if p.PublicKey != nil {
			existing.PublicKey = p.PublicKey
		}
		existing.UpdateLastSeen()
		return
	}
	p.LastSeen = time.Now()
	r.peers[id] = p
}

// SetPublicKey overwrites the stored public key for a peer (trust-on-first-use;
// a handshake or discovery announce wins no matter how many prior keys were
// recorded, per spec.md's Design Notes on the trust model).
func (r *Registry) SetPublicKey(id types.UserId, key []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[id]; ok {
		p.PublicKey = key
	}
}

// UpdateStatus updates a peer's status and last-seen (used by heartbeat
// handling). Returns false if the peer is unknown.
func (r *Registry) UpdateStatus(id types.UserId, status types.UserStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return false
	}
	p.Profile.Status = status
	p.UpdateLastSeen()
	return true
}

// Get returns a copy of the peer, or false if not present.
func (r *Registry) Get(id types.UserId) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	if !ok {
		return Peer{}, false
	}
	return p.Clone(), true
}

// Remove deletes a peer entirely, returning it if it existed.
func (r *Registry) Remove(id types.UserId) (Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return Peer{}, false
	}
	delete(r.peers, id)
	return p.Clone(), true
}

// All returns a snapshot of every peer.
func (r *Registry) All() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p.Clone())
	}
	return out
}

// Online returns a snapshot of peers currently considered online.
func (r *Registry) Online() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		if p.IsOnline() {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Count returns the number of online peers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.peers {
		if p.IsOnline() {
			n++
		}
	}
	return n
}

// EvictStale removes every peer whose last-seen is older than
// EvictThreshold and returns their ids, for the caller to emit
// PeerDisconnected events for.
func (r *Registry) EvictStale() []types.UserId {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []types.UserId
	for id, p := range r.peers {
		if time.Since(p.LastSeen) > EvictThreshold {
			evicted = append(evicted, id)
			delete(r.peers, id)
		}
	}
	if len(evicted) > 0 {
		log.WithField("count", len(evicted)).Debug("evicted stale peers")
	}
	return evicted
}
