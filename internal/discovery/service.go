package discovery

import (
	"context"
	"net"
	"sync"
	"time"

	"lanchat/internal/event"
	"lanchat/internal/logging"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

// HeartbeatInterval is how often a node announces liveness.
const HeartbeatInterval = 15 * time.Second

// ReaperInterval is how often the reaper checks for stale peers.
const ReaperInterval = 30 * time.Second

var log = logging.For("discovery")

// Service runs the announce/request/response/heartbeat/goodbye
// protocol on the shared multicast group, generalizing the teacher's
// DiscoveryService (pkg/discovery/services.go) from a beacon+cleanup
// pair of loops to the three independent tasks spec.md names
// (receive, heartbeat, reaper) plus the start-up handshake sequence.
type Service struct {
	localUserID types.UserId
	address     types.NetworkAddress
	publicKey   []byte

	profileMu sync.Mutex
	profile   types.UserProfile

	sock     *multicastSocket
	registry *peer.Registry
	bus      *event.Bus

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a discovery service bound to the given identity. Start
// must be called to actually open the socket and begin protocol tasks.
func New(profile types.UserProfile, tcpPort int, publicKey []byte, registry *peer.Registry, bus *event.Bus) (*Service, error) {
	localIP, err := LocalIPv4()
	if err != nil {
		return nil, err
	}
	addr := types.NewNetworkAddress(localIP, tcpPort)

	return &Service{
		localUserID: profile.UserID,
		profile:     profile,
		address:     addr,
		publicKey:   publicKey,
		registry:    registry,
		bus:         bus,
	}, nil
}

// Start opens the multicast socket and begins the receive, heartbeat,
// and reaper loops, following spec.md's start-up sequence: create
// socket, start receive loop, sleep ~100ms, announce, request.
func (s *Service) Start(ctx context.Context) error {
	sock, err := openMulticastSocket(s.address.IP)
	if err != nil {
		return err
	}
	s.sock = sock
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go s.receiveLoop()
	go s.heartbeatLoop()
	go s.reaperLoop()

	time.Sleep(100 * time.Millisecond)

	if err := s.announce(); err != nil {
		log.WithError(err).Warn("failed to send initial announce")
	}
	if err := s.send(NewDiscoveryRequest()); err != nil {
		log.WithError(err).Warn("failed to send initial discovery request")
	}

	s.bus.Publish(event.NetworkStatusChangedEvent(true))
	return nil
}

// Stop announces departure and tears down the service's tasks and
// socket. Best-effort: the goodbye send is not retried on failure.
func (s *Service) Stop() error {
	if s.cancel == nil {
		return nil
	}
	if err := s.send(NewGoodbye(s.localUserID)); err != nil {
		log.WithError(err).Warn("failed to send goodbye")
	}
	s.cancel()
	s.wg.Wait()
	s.bus.Publish(event.NetworkStatusChangedEvent(false))
	if s.sock != nil {
		return s.sock.close()
	}
	return nil
}

// UpdateStatus changes the status this node announces on its next
// heartbeat and in the profile carried with future Announce/Response
// messages.
func (s *Service) UpdateStatus(status types.UserStatus) {
	s.profileMu.Lock()
	s.profile.Status = status
	s.profileMu.Unlock()
}

func (s *Service) announce() error {
	s.profileMu.Lock()
	profile := s.profile
	s.profileMu.Unlock()
	return s.send(NewAnnounce(profile, s.address, s.publicKey))
}

func (s *Service) send(msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if len(data) > MaxDatagramSize {
		return types.InvalidDataError("discovery message too large", nil)
	}
	return s.sock.send(data)
}

// receiveLoop is the sole consumer of inbound datagrams; all UDP
// errors are logged and swallowed per spec.md's failure semantics -
// the loop never exits on I/O error, backing off 100ms on read errors
// other than the expected poll timeout.
func (s *Service) receiveLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		data, addr, err := s.sock.receive(time.Second)
		if err != nil {
			if err == errTimeout {
				continue
			}
			log.WithError(err).Debug("discovery read error")
			time.Sleep(100 * time.Millisecond)
			continue
		}

		msg, err := Decode(data)
		if err != nil {
			log.WithError(err).Debug("failed to decode discovery datagram")
			continue
		}
		s.handle(msg, addr)
	}
}

func (s *Service) handle(msg *Message, addr *net.UDPAddr) {
	if msg.SenderUserID() == s.localUserID {
		return
	}

	switch msg.Kind {
	case KindAnnounce, KindResponse:
		if msg.Profile == nil || msg.Address == nil {
			return
		}
		p := peer.New(*msg.Profile, *msg.Address)
		p.PublicKey = msg.PublicKey
		s.registry.Upsert(p)
		s.bus.Publish(event.PeerDiscovered(p))

	case KindRequest:
		s.profileMu.Lock()
		profile := s.profile
		s.profileMu.Unlock()
		if err := s.send(NewDiscoveryResponse(profile, s.address, s.publicKey)); err != nil {
			log.WithError(err).Warn("failed to reply to discovery request")
		}

	case KindGoodbye:
		if removed, ok := s.registry.Remove(msg.UserID); ok {
			_ = removed
			s.bus.Publish(event.PeerDisconnected(msg.UserID))
		}

	case KindHeartbeat:
		if s.registry.UpdateStatus(msg.UserID, msg.Status) {
			s.bus.Publish(event.PeerStatusChangedEvent(msg.UserID, msg.Status))
		}

	default:
		log.WithField("kind", msg.Kind).Debug("unknown discovery message kind")
	}
}

func (s *Service) heartbeatLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.profileMu.Lock()
			status := s.profile.Status
			s.profileMu.Unlock()
			if err := s.send(NewHeartbeat(s.localUserID, status)); err != nil {
				log.WithError(err).Debug("failed to send heartbeat")
			}
		}
	}
}

func (s *Service) reaperLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(ReaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.registry.EvictStale() {
				s.bus.Publish(event.PeerDisconnected(id))
			}
		}
	}
}
