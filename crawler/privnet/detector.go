/*
	privnet package detects hosts that resolve to private, loopback or
	link-local networks so that a crawl never reaches into the network it
	runs on.
*/

package privnet

import (
	"fmt"
	"net"
)

var defaultPrivateCIDRs = []string{
	// Loopback.
	"127.0.0.0/8",
	"::1/128",
	// RFC1918 private networks.
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Carrier-grade NAT.
	"100.64.0.0/10",
	// Link-local, including cloud metadata endpoints.
	"169.254.0.0/16",
	"fe80::/10",
	// Misc.
	"0.0.0.0/8",
	"255.255.255.255/32",
	"fc00::/7",
}

// LookupFunc resolves a host name into its IP addresses.
type LookupFunc func(host string) ([]net.IP, error)

// NetDetector checks whether a host resolves to a private network address.
type NetDetector struct {
	blocks []*net.IPNet
	lookup LookupFunc
}

// NewDetector returns a NetDetector that treats the RFC1918, loopback,
// link-local and unique local ranges as private.
func NewDetector() (*NetDetector, error) {
	return NewDetectorFromCIDRs(defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a NetDetector that treats the given CIDR
// blocks as private. A detector without blocks considers every host public.
func NewDetectorFromCIDRs(cidrs ...string) (*NetDetector, error) {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("privnet: %w", err)
		}

		blocks = append(blocks, block)
	}

	return &NetDetector{blocks: blocks, lookup: net.LookupIP}, nil
}

// WithLookup replaces the resolver used for host names.
func (d *NetDetector) WithLookup(lookup LookupFunc) *NetDetector {
	d.lookup = lookup
	return d
}

// IsNetworkPrivate reports whether address, an IP literal or a host name,
// resolves to an address inside one of the private blocks. A host name is
// private if any of its addresses is.
func (d *NetDetector) IsNetworkPrivate(address string) (bool, error) {
	if len(d.blocks) == 0 {
		return false, nil
	}

	ips, err := d.resolve(address)
	if err != nil {
		return false, err
	}

	for _, ip := range ips {
		for _, block := range d.blocks {
			if block.Contains(ip) {
				return true, nil
			}
		}
	}

	return false, nil
}

func (d *NetDetector) resolve(address string) ([]net.IP, error) {
	if ip := net.ParseIP(address); ip != nil {
		return []net.IP{ip}, nil
	}

	ips, err := d.lookup(address)
	if err != nil {
		return nil, fmt.Errorf("privnet: resolve %q: %w", address, err)
	}

	return ips, nil
}
