package messaging

import (
	"sync"

	"lanchat/internal/types"
)

// Pool is the connection pool keyed by peer UserId: at most one live
// connection per peer. A second connection for the same peer replaces
// the older, which is closed. All operations are serialized by a
// single writer lock; callers must never await an unrelated operation
// while holding it, mirroring the teacher's ConnectionManager.connMutex
// in pkg/chat/communication.go and the actor-free design spec.md's
// Design Notes explicitly keep rather than refactor into per-connection
// actors.
type Pool struct {
	mu    sync.Mutex
	conns map[types.UserId]*Connection
}

func NewPool() *Pool {
	return &Pool{conns: make(map[types.UserId]*Connection)}
}

// Put installs conn for peerID, closing and replacing any existing
// connection for the same peer (the "newer replaces older" race rule).
func (p *Pool) Put(peerID types.UserId, conn *Connection) {
	p.mu.Lock()
	old := p.conns[peerID]
	conn.PeerID = peerID
	p.conns[peerID] = conn
	p.mu.Unlock()

	if old != nil && old != conn {
		old.Close()
	}
}

// Get returns the current connection for a peer, if any.
func (p *Pool) Get(peerID types.UserId) (*Connection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[peerID]
	return c, ok
}

// Remove evicts a connection, returning it if one existed. The caller
// is responsible for closing the returned connection; Remove itself
// never closes while the pool's own lock is held by a different
// operation.
func (p *Pool) Remove(peerID types.UserId) (*Connection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[peerID]
	if ok {
		delete(p.conns, peerID)
	}
	return c, ok
}

// RemoveIf evicts peerID's connection only if it is still exactly conn
// (guards against a reader racing a replacement that already happened).
func (p *Pool) RemoveIf(peerID types.UserId, conn *Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current, ok := p.conns[peerID]; ok && current == conn {
		delete(p.conns, peerID)
		return true
	}
	return false
}

// Count returns the number of live connections.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// CloseAll closes every connection and empties the pool.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[types.UserId]*Connection)
	p.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
