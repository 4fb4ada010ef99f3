package discovery

import (
	"net"
	"syscall"
	"time"

	"lanchat/internal/types"
)

// GroupAddress is the fixed well-known multicast group and port every
// node discovers peers on.
const GroupAddress = "239.255.42.99:37842"

// MaxDatagramSize bounds a single UDP discovery datagram.
const MaxDatagramSize = 8192

// multicastSocket wraps the raw UDP socket wired up the way spec.md's
// "Socket setup" paragraph requires: bound to 0.0.0.0:37842 with
// address/port reuse, joined to the group on the node's own interface
// (not the wildcard), loopback enabled, TTL >= 32. The teacher's
// MulticastService (pkg/discovery/multicast.go) sets loopback and a
// LAN-only TTL of 1 via the same SyscallConn/SetsockoptInt pattern;
// this generalizes it to bind on the interface address and raise the
// TTL floor spec.md requires.
type multicastSocket struct {
	conn      *net.UDPConn
	groupAddr *net.UDPAddr
}

func openMulticastSocket(localIP net.IP) (*multicastSocket, error) {
	groupAddr, err := net.ResolveUDPAddr("udp4", GroupAddress)
	if err != nil {
		return nil, types.NetworkError("invalid multicast group address", err)
	}

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
				syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEPORT, 1)
			})
		},
	}

	packetConn, err := lc.ListenPacket(nil, "udp4", "0.0.0.0:37842")
	if err != nil {
		return nil, types.NetworkError("failed to bind discovery socket", err)
	}
	conn := packetConn.(*net.UDPConn)

	rawConn, err := conn.SyscallConn()
	if err == nil {
		var ifaceIP [4]byte
		if ip4 := localIP.To4(); ip4 != nil {
			copy(ifaceIP[:], ip4)
		}
		var groupIP [4]byte
		copy(groupIP[:], groupAddr.IP.To4())

		rawConn.Control(func(fd uintptr) {
			// Join the group on the node's own interface, not the
			// wildcard: unreliable on macOS and multi-homed hosts.
			mreq := &syscall.IPMreq{Multiaddr: groupIP, Interface: ifaceIP}
			syscall.SetsockoptIPMreq(int(fd), syscall.IPPROTO_IP, syscall.IP_ADD_MEMBERSHIP, mreq)
			syscall.SetsockoptInet4Addr(int(fd), syscall.IPPROTO_IP, syscall.IP_MULTICAST_IF, ifaceIP)
			syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, syscall.IP_MULTICAST_LOOP, 1)
			syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, syscall.IP_MULTICAST_TTL, 32)
		})
	}

	return &multicastSocket{conn: conn, groupAddr: groupAddr}, nil
}

func (s *multicastSocket) send(data []byte) error {
	_, err := s.conn.WriteToUDP(data, s.groupAddr)
	if err != nil {
		return types.NetworkError("failed to send discovery datagram", err)
	}
	return nil
}

func (s *multicastSocket) close() error {
	return s.conn.Close()
}

func (s *multicastSocket) receive(timeout time.Duration) ([]byte, *net.UDPAddr, error) {
	s.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, MaxDatagramSize)
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil, errTimeout
		}
		return nil, nil, types.NetworkError("failed to read discovery datagram", err)
	}
	return buf[:n], addr, nil
}

var errTimeout = types.NetworkError("read timeout", nil)

// LocalIPv4 picks a routable local IPv4 address, the node's identity
// on the LAN for multicast interface selection and announced address.
func LocalIPv4() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, types.NetworkError("failed to enumerate interfaces", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 != nil {
				return ip4, nil
			}
		}
	}
	return nil, types.NetworkError("no routable IPv4 interface found", nil)
}
