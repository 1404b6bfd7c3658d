package pingengine

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// probeTimeout bounds a single echo request/reply round trip; exceeding
// it surfaces as a Timeout error kind for that sample.
const probeTimeout = 3 * time.Second

// client sends ICMP echo requests to one resolved address and matches
// replies against an identifier it owns, so concurrent clients probing
// the same address never cross-match each other's sequences.
type client struct {
	addr    netip.Addr
	id      int
	network string // "ip4:icmp"/"udp4" or "ip6:ipv6-icmp"/"udp6"
}

var (
	icmpCapOnce sync.Once
	icmp4Net    string
	icmp6Net    string
)

// detectCapability probes once per process for raw-socket permission,
// falling back to the unprivileged UDP-datagram ICMP that Linux and
// Darwin offer for non-root senders.
func detectCapability() {
	icmpCapOnce.Do(func() {
		if conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0"); err == nil {
			conn.Close()
			icmp4Net = "ip4:icmp"
		} else if conn, err := icmp.ListenPacket("udp4", "0.0.0.0"); err == nil {
			conn.Close()
			icmp4Net = "udp4"
		}
		if conn, err := icmp.ListenPacket("ip6:ipv6-icmp", "::"); err == nil {
			conn.Close()
			icmp6Net = "ip6:ipv6-icmp"
		} else if conn, err := icmp.ListenPacket("udp6", "::"); err == nil {
			conn.Close()
			icmp6Net = "udp6"
		}
	})
}

// newClient opens an echo client for addr, picking the v4/v6 network
// detected for this process and a random identifier for reply matching.
func newClient(addr netip.Addr) (*client, error) {
	detectCapability()
	var network string
	if addr.Is4() {
		network = icmp4Net
	} else {
		network = icmp6Net
	}
	if network == "" {
		return nil, fmt.Errorf("no ICMP capability available for %s", addr)
	}
	return &client{addr: addr, id: rand.Intn(1 << 16), network: network}, nil
}

// ping sends one echo request with sequence seq and payload, blocking
// until a matching reply arrives, ctx is cancelled, or probeTimeout
// elapses. It returns the measured round-trip time or a classified
// ErrorKind.
func (c *client) ping(ctx context.Context, seq int, payload []byte) (time.Duration, ErrorKind, error) {
	conn, err := icmp.ListenPacket(c.network, listenAddr(c.addr))
	if err != nil {
		return 0, IOErrorKind(err.Error()), err
	}
	defer conn.Close()

	deadline := time.Now().Add(probeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	msgType := icmpEchoType(c.addr)
	msg := icmp.Message{
		Type: msgType,
		Code: 0,
		Body: &icmp.Echo{ID: c.id, Seq: seq & 0xffff, Data: payload},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return 0, IncorrectBufferSize, err
	}

	dst := dialAddr(c.network, c.addr)
	start := time.Now()
	if _, err := conn.WriteTo(wire, dst); err != nil {
		kind := classifyError(err)
		return 0, kind, err
	}

	buf := make([]byte, 1500)
	protoNum := icmpProtoNumber(c.addr)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			kind := classifyError(err)
			return 0, kind, err
		}
		elapsed := time.Since(start)

		if !peerMatches(peer, c.addr) {
			continue
		}

		rm, err := icmp.ParseMessage(protoNum, buf[:n])
		if err != nil {
			return 0, MalformedPacket, err
		}

		switch body := rm.Body.(type) {
		case *icmp.Echo:
			// Datagram ICMP sockets rewrite the echo identifier to the
			// socket's local port and already demux replies by it, so the
			// ID is only checked on raw sockets.
			if c.rawSocket() && body.ID != c.id {
				continue
			}
			if body.Seq != seq&0xffff {
				continue
			}
			if isEchoReply(rm.Type) {
				return elapsed, ErrorKind{}, nil
			}
			if isEchoRequest(rm.Type) {
				return 0, EchoRequestPacket, fmt.Errorf("received echo request instead of reply")
			}
			continue
		default:
			if isUnreachable(rm.Type) || isTimeExceeded(rm.Type) {
				return 0, NetworkError, fmt.Errorf("icmp: %v", rm.Type)
			}
			continue
		}
	}
}

func (c *client) rawSocket() bool {
	return c.network == "ip4:icmp" || c.network == "ip6:ipv6-icmp"
}

func listenAddr(addr netip.Addr) string {
	if addr.Is4() {
		return "0.0.0.0"
	}
	return "::"
}

func dialAddr(network string, addr netip.Addr) net.Addr {
	if network == "udp4" || network == "udp6" {
		return &net.UDPAddr{IP: net.IP(addr.AsSlice())}
	}
	return &net.IPAddr{IP: net.IP(addr.AsSlice())}
}

func icmpEchoType(addr netip.Addr) icmp.Type {
	if addr.Is4() {
		return ipv4.ICMPTypeEcho
	}
	return ipv6.ICMPTypeEchoRequest
}

func icmpProtoNumber(addr netip.Addr) int {
	if addr.Is4() {
		return 1 // ICMPv4
	}
	return 58 // ICMPv6
}

func isEchoReply(t icmp.Type) bool {
	return t == ipv4.ICMPTypeEchoReply || t == ipv6.ICMPTypeEchoReply
}

func isEchoRequest(t icmp.Type) bool {
	return t == ipv4.ICMPTypeEcho || t == ipv6.ICMPTypeEchoRequest
}

func isUnreachable(t icmp.Type) bool {
	return t == ipv4.ICMPTypeDestinationUnreachable || t == ipv6.ICMPTypeDestinationUnreachable
}

func isTimeExceeded(t icmp.Type) bool {
	return t == ipv4.ICMPTypeTimeExceeded || t == ipv6.ICMPTypeTimeExceeded
}

func peerMatches(peer net.Addr, want netip.Addr) bool {
	var ip net.IP
	switch p := peer.(type) {
	case *net.IPAddr:
		ip = p.IP
	case *net.UDPAddr:
		ip = p.IP
	default:
		return false
	}
	peerAddr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	return peerAddr.Unmap() == want.Unmap()
}
