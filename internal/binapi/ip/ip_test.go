// SPDX-License-Identifier:Apache-2.0

package ip

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.universe.tf/vppapi/internal/binapi/iptypes"
	"go.universe.tf/vppapi/internal/codec"
)

func TestIPAddressDetails(t *testing.T) {
	p, err := iptypes.ParsePrefix("2001:db8::5/126")
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	m := &IPAddressDetails{SwIfIndex: 2, Prefix: iptypes.AddressWithPrefix(p)}
	e := codec.NewEncoder(nil)
	if err := m.Marshal(e); err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if want, got := 4+18, e.Len(); want != got {
		t.Errorf("size: want %d, got %d", want, got)
	}
	var got IPAddressDetails
	if err := got.Unmarshal(codec.NewDecoder(e.Bytes())); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if diff := cmp.Diff(m, &got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
