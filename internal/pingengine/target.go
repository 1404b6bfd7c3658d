// Package pingengine drives concurrent ICMP probing against a configured
// set of targets and digests the resulting round-trip samples into
// quantile/mean/stddev/loss summaries.
package pingengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// Target is either a literal IP address or a domain name awaiting
// resolution. It round-trips through TOML/JSON as a bare string: an IP
// string for address targets, the hostname for domain targets.
type Target struct {
	ip     netip.Addr
	domain string
	isIP   bool
}

// NewIPTarget wraps a literal address.
func NewIPTarget(ip netip.Addr) Target { return Target{ip: ip, isIP: true} }

// NewDomainTarget wraps a hostname awaiting resolution.
func NewDomainTarget(domain string) Target { return Target{domain: domain} }

// ParseTarget accepts either textual form, matching the config file's
// plain string target list: an address if s parses as one, a domain
// otherwise.
func ParseTarget(s string) Target {
	if ip, err := netip.ParseAddr(s); err == nil {
		return NewIPTarget(ip)
	}
	return NewDomainTarget(s)
}

// String renders the target exactly as a user would have written it,
// used both for display and as the Prometheus `target` label value.
func (t Target) String() string {
	if t.isIP {
		return t.ip.String()
	}
	return t.domain
}

func (t Target) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Target) UnmarshalText(b []byte) error {
	*t = ParseTarget(string(b))
	return nil
}

func (t Target) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *Target) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseTarget(s)
	return nil
}

// Resolve returns the IP address to probe: the target itself if it is
// already a literal address, or the first address returned by an A/AAAA
// lookup for a domain target.
func (t Target) Resolve(ctx context.Context, resolver *net.Resolver) (netip.Addr, error) {
	if t.isIP {
		return t.ip, nil
	}
	addrs, err := resolver.LookupIP(ctx, "ip", t.domain)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, errors.New("no IP address found")
	}
	addr, ok := netip.AddrFromSlice(addrs[0])
	if !ok {
		return netip.Addr{}, fmt.Errorf("unparseable resolved address %v", addrs[0])
	}
	return addr.Unmap(), nil
}
