// SPDX-License-Identifier:Apache-2.0

package ipfamily // import "go.universe.tf/vppapi/internal/ipfamily"

import (
	"fmt"
	"strings"

	"go.universe.tf/vppapi/internal/binapi/iptypes"
)

// IP family helps selecting single stack IPv4/IPv6 vs dual-stack queries.
type Family string

func (f Family) String() string {
	return string(f)
}

const (
	IPv4      Family = "ipv4"
	IPv6      Family = "ipv6"
	DualStack Family = "dual"
	Unknown   Family = "unknown"
)

// Parse returns the family named s.
func Parse(s string) (Family, error) {
	switch f := Family(strings.ToLower(s)); f {
	case IPv4, IPv6, DualStack:
		return f, nil
	}
	return Unknown, fmt.Errorf("invalid ip family %q, must be one of ipv4, ipv6, dual", s)
}

// ForPrefixes returns the address family of a list of prefixes.
func ForPrefixes(prefixes []iptypes.Prefix) (Family, error) {
	if len(prefixes) == 0 {
		return Unknown, fmt.Errorf("ForPrefixes: no prefixes specified")
	}
	out := Unknown
	for _, p := range prefixes {
		var f Family
		switch p.Address.Af {
		case iptypes.AddressIP4:
			f = IPv4
		case iptypes.AddressIP6:
			f = IPv6
		default:
			return Unknown, fmt.Errorf("ForPrefixes: invalid address family %d in %s", p.Address.Af, p)
		}
		if out == Unknown {
			out = f
		} else if out != f {
			return DualStack, nil
		}
	}
	return out, nil
}

// AddressFamilies returns the engine address families a query for f
// covers, IPv4 first.
func (f Family) AddressFamilies() []iptypes.AddressFamily {
	switch f {
	case IPv4:
		return []iptypes.AddressFamily{iptypes.AddressIP4}
	case IPv6:
		return []iptypes.AddressFamily{iptypes.AddressIP6}
	case DualStack:
		return []iptypes.AddressFamily{iptypes.AddressIP4, iptypes.AddressIP6}
	}
	return nil
}
