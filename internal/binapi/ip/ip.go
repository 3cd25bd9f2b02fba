// SPDX-License-Identifier:Apache-2.0

// Package ip holds the address listing messages of the engine's 'ip'
// module.
package ip

import (
	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/iptypes"
	"go.universe.tf/vppapi/internal/codec"
)

// IPAddressDump represents the binary API message 'ip_address_dump'.
type IPAddressDump struct {
	SwIfIndex uint32
	IsIPv6    bool
}

func (*IPAddressDump) GetMessageName() string          { return "ip_address_dump" }
func (*IPAddressDump) GetCrcString() string            { return "2d033de4" }
func (*IPAddressDump) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *IPAddressDump) Marshal(e *codec.Encoder) error {
	e.PutUint32(m.SwIfIndex)
	e.PutBool(m.IsIPv6)
	return nil
}

func (m *IPAddressDump) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.SwIfIndex, err = d.Uint32(); err != nil {
		return err
	}
	m.IsIPv6, err = d.Bool()
	return err
}

// IPAddressDetails represents the binary API message 'ip_address_details'.
type IPAddressDetails struct {
	SwIfIndex uint32
	Prefix    iptypes.AddressWithPrefix
}

func (*IPAddressDetails) GetMessageName() string          { return "ip_address_details" }
func (*IPAddressDetails) GetCrcString() string            { return "b1199745" }
func (*IPAddressDetails) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *IPAddressDetails) Marshal(e *codec.Encoder) error {
	e.PutUint32(m.SwIfIndex)
	p := iptypes.Prefix(m.Prefix)
	return p.MarshalTo(e)
}

func (m *IPAddressDetails) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.SwIfIndex, err = d.Uint32(); err != nil {
		return err
	}
	var p iptypes.Prefix
	err = p.UnmarshalFrom(d)
	m.Prefix = iptypes.AddressWithPrefix(p)
	return err
}
