// SPDX-License-Identifier:Apache-2.0

// Package iptypes holds the address types shared by the engine's IP
// related messages.
package iptypes

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/codec"
)

// AddressFamily represents the binary API enum 'address_family'.
type AddressFamily uint8

const (
	AddressIP4 AddressFamily = 0
	AddressIP6 AddressFamily = 1
)

func (af AddressFamily) String() string {
	switch af {
	case AddressIP4:
		return "ipv4"
	case AddressIP6:
		return "ipv6"
	}
	return fmt.Sprintf("AddressFamily(%d)", uint8(af))
}

type IP4Address [4]uint8

type IP6Address [16]uint8

// Layouts of the types in this package.
var (
	AddressFamilyType = codec.NewEnum("address_family", 1,
		codec.Variant{Name: "ADDRESS_IP4", Value: 0},
		codec.Variant{Name: "ADDRESS_IP6", Value: 1},
	)
	AddressUnionType = codec.NewUnion("address_union", 16,
		codec.Field{Name: "ip4", Type: codec.NewFixedArray(codec.U8, 4)},
		codec.Field{Name: "ip6", Type: codec.NewFixedArray(codec.U8, 16)},
	)
	AddressType = codec.NewStruct("address",
		codec.Field{Name: "af", Type: AddressFamilyType},
		codec.Field{Name: "un", Type: AddressUnionType},
	)
	PrefixType = codec.NewStruct("prefix",
		codec.Field{Name: "address", Type: AddressType},
		codec.Field{Name: "len", Type: codec.U8},
	)
)

// AddressUnion represents the binary API union 'address_union'. The
// member in use is given by the Af field of the enclosing Address.
type AddressUnion struct {
	XXX_UnionData [16]byte
}

func AddressUnionIP4(a IP4Address) (u AddressUnion) {
	u.SetIP4(a)
	return
}

func AddressUnionIP6(a IP6Address) (u AddressUnion) {
	u.SetIP6(a)
	return
}

func (u *AddressUnion) SetIP4(a IP4Address) { u.set("ip4", a[:]) }

func (u *AddressUnion) SetIP6(a IP6Address) { u.set("ip6", a[:]) }

func (u *AddressUnion) GetIP4() (a IP4Address) {
	copy(a[:], u.get("ip4"))
	return
}

func (u *AddressUnion) GetIP6() (a IP6Address) {
	copy(a[:], u.get("ip6"))
	return
}

// set and get only fail on a broken layout, which AddressUnionType is
// not.
func (u *AddressUnion) set(member string, b []byte) {
	buf, err := codec.WriteAs(AddressUnionType, member, b)
	if err != nil {
		panic(err)
	}
	copy(u.XXX_UnionData[:], buf)
}

func (u *AddressUnion) get(member string) []byte {
	v, err := codec.ReadAs(u.XXX_UnionData[:], AddressUnionType, member)
	if err != nil {
		panic(err)
	}
	return v.([]byte)
}

// Address represents the binary API type 'address'.
type Address struct {
	Af AddressFamily
	Un AddressUnion
}

// AddressFromIP converts ip to an Address, choosing the family from
// its length.
func AddressFromIP(ip net.IP) (Address, error) {
	if ip4 := ip.To4(); ip4 != nil {
		var a IP4Address
		copy(a[:], ip4)
		return Address{Af: AddressIP4, Un: AddressUnionIP4(a)}, nil
	}
	if ip6 := ip.To16(); ip6 != nil {
		var a IP6Address
		copy(a[:], ip6)
		return Address{Af: AddressIP6, Un: AddressUnionIP6(a)}, nil
	}
	return Address{}, fmt.Errorf("invalid IP address %q", ip)
}

func (a Address) ToIP() net.IP {
	if a.Af == AddressIP6 {
		ip := a.Un.GetIP6()
		return net.IP(ip[:])
	}
	ip := a.Un.GetIP4()
	return net.IPv4(ip[0], ip[1], ip[2], ip[3]).To4()
}

func (a Address) String() string { return a.ToIP().String() }

func (a *Address) MarshalTo(e *codec.Encoder) error {
	if err := e.PutUint(uint64(a.Af), AddressFamilyType.Width); err != nil {
		return err
	}
	e.PutRaw(a.Un.XXX_UnionData[:])
	return nil
}

func (a *Address) UnmarshalFrom(d *codec.Decoder) error {
	af, err := d.Uint8()
	if err != nil {
		return err
	}
	if af != uint8(AddressIP4) && af != uint8(AddressIP6) {
		return errors.Wrapf(codec.ErrUnknownDiscriminant, "address family %d", af)
	}
	a.Af = AddressFamily(af)
	un, err := d.Bytes(len(a.Un.XXX_UnionData))
	if err != nil {
		return err
	}
	copy(a.Un.XXX_UnionData[:], un)
	return nil
}

// Prefix represents the binary API type 'prefix'.
type Prefix struct {
	Address Address
	Len     uint8
}

// AddressWithPrefix represents the binary API alias
// 'address_with_prefix', an address with its prefix length.
type AddressWithPrefix Prefix

// ParsePrefix parses CIDR notation such as "192.0.2.1/24". The host
// bits are kept.
func ParsePrefix(s string) (Prefix, error) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return Prefix{}, err
	}
	addr, err := AddressFromIP(ip)
	if err != nil {
		return Prefix{}, err
	}
	ones, _ := ipnet.Mask.Size()
	return Prefix{Address: addr, Len: uint8(ones)}, nil
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.Address, p.Len)
}

func (p *Prefix) MarshalTo(e *codec.Encoder) error {
	if err := p.Address.MarshalTo(e); err != nil {
		return err
	}
	e.PutUint8(p.Len)
	return nil
}

func (p *Prefix) UnmarshalFrom(d *codec.Decoder) error {
	if err := p.Address.UnmarshalFrom(d); err != nil {
		return err
	}
	var err error
	p.Len, err = d.Uint8()
	return err
}
