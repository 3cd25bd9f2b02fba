// SPDX-License-Identifier:Apache-2.0

package main

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.universe.tf/vppapi/internal/binapi/iptypes"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/schema"
)

func loadTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load("../internal/schema/testdata/ip_types.api.json", "../internal/schema/testdata/interface.api.json")
	if err != nil {
		t.Fatalf("load schema: %s", err)
	}
	return s
}

func TestParseBody(t *testing.T) {
	s := loadTestSchema(t)
	m, _ := s.Message("sw_interface_add_del_address")

	rec, err := parseBody(`{"sw_if_index": 3, "is_add": true,
		"prefix": {"address": {"af": "ADDRESS_IP4", "un": {"ip4": [192, 0, 2, 1]}}, "len": 24}}`, m.Layout)
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	got := codec.NewEncoder(nil)
	if err := m.New(rec).Marshal(got); err != nil {
		t.Fatalf("marshal: %s", err)
	}

	p, _ := iptypes.ParsePrefix("192.0.2.1/24")
	want := codec.NewEncoder(nil)
	want.PutUint32(3)
	want.PutBool(true)
	want.PutBool(false)
	if err := p.MarshalTo(want); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(want.Bytes(), got.Bytes()) {
		t.Errorf("want %x, got %x", want.Bytes(), got.Bytes())
	}
}

func TestParseBodyErrors(t *testing.T) {
	s := loadTestSchema(t)
	m, _ := s.Message("sw_interface_add_del_address")

	tests := []struct {
		desc string
		body string
	}{
		{"not json", `{"sw_if_index": `},
		{"not an object", `[1, 2]`},
		{"union with two members", `{"prefix": {"address": {"un": {"ip4": [1, 2, 3, 4], "ip6": []}}}}`},
		{"unknown union member", `{"prefix": {"address": {"un": {"ip5": [1]}}}}`},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if _, err := parseBody(test.body, m.Layout); err == nil {
				t.Error("body accepted")
			}
		})
	}

	// Unknown fields pass through and are rejected when encoding.
	rec, err := parseBody(`{"bogus": 1}`, m.Layout)
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	if err := m.New(rec).Marshal(codec.NewEncoder(nil)); err == nil {
		t.Error("unknown field encoded")
	}
}

func TestPresent(t *testing.T) {
	in := codec.Record{
		"name":  codec.FixedString("loop0\x00\x00"),
		"type":  codec.EnumValue{Name: "IF_API_TYPE_HARDWARE", Value: 0},
		"flags": codec.FlagSet{"IF_STATUS_API_FLAG_ADMIN_UP"},
		"mac":   []byte{0xde, 0xad, 0, 0, 0, 1},
		"un":    codec.Union{10, 0, 0, 1},
		"mtu":   []interface{}{uint32(1500), uint32(0)},
		"inner": codec.Record{"len": uint8(24)},
	}
	want := map[string]interface{}{
		"name":  "loop0",
		"type":  "IF_API_TYPE_HARDWARE",
		"flags": []string{"IF_STATUS_API_FLAG_ADMIN_UP"},
		"mac":   "dead00000001",
		"un":    "0a000001",
		"mtu":   []interface{}{uint32(1500), uint32(0)},
		"inner": map[string]interface{}{"len": uint8(24)},
	}
	if diff := cmp.Diff(want, present(in)); diff != "" {
		t.Errorf("present (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	s := loadTestSchema(t)
	m, _ := s.Message("sw_interface_details")
	var got []string
	for _, f := range m.Layout.Fields {
		if f.Name == "l2_address" || f.Name == "mtu" || f.Name == "tag" || f.Name == "flags" {
			got = append(got, f.Name+" "+describe(f.Type))
		}
	}
	want := []string{"l2_address u8[6]", "flags if_status_flags", "mtu u32[4]", "tag string[64]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("describe (-want +got):\n%s", diff)
	}
}
