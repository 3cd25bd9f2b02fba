// SPDX-License-Identifier:Apache-2.0

package ipfamily

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.universe.tf/vppapi/internal/binapi/iptypes"
)

func TestForPrefixes(t *testing.T) {
	tests := []struct {
		desc     string
		prefixes []string
		want     Family
		wantErr  bool
	}{
		{"none", nil, Unknown, true},
		{"ipv4", []string{"192.0.2.1/24", "198.51.100.7/32"}, IPv4, false},
		{"ipv6", []string{"2001:db8::1/64"}, IPv6, false},
		{"dual", []string{"192.0.2.1/24", "2001:db8::1/64"}, DualStack, false},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			var prefixes []iptypes.Prefix
			for _, s := range test.prefixes {
				p, err := iptypes.ParsePrefix(s)
				if err != nil {
					t.Fatal(err)
				}
				prefixes = append(prefixes, p)
			}
			got, err := ForPrefixes(prefixes)
			if (err != nil) != test.wantErr {
				t.Fatalf("error: want %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("want %s, got %s", test.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want []iptypes.AddressFamily
	}{
		{"ipv4", []iptypes.AddressFamily{iptypes.AddressIP4}},
		{"IPv6", []iptypes.AddressFamily{iptypes.AddressIP6}},
		{"dual", []iptypes.AddressFamily{iptypes.AddressIP4, iptypes.AddressIP6}},
	}
	for _, test := range tests {
		f, err := Parse(test.in)
		if err != nil {
			t.Fatalf("parse %q: %s", test.in, err)
		}
		if diff := cmp.Diff(test.want, f.AddressFamilies()); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.in, diff)
		}
	}
	if _, err := Parse("ipx"); err == nil {
		t.Error("ipx accepted")
	}
}
