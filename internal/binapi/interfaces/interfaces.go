// SPDX-License-Identifier:Apache-2.0

// Package interfaces holds the messages of the engine's 'interface'
// module, plus loopback creation.
package interfaces

import (
	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/iptypes"
	"go.universe.tf/vppapi/internal/codec"
)

// SwInterfaceDump represents the binary API message 'sw_interface_dump'.
type SwInterfaceDump struct {
	SwIfIndex       InterfaceIndex
	NameFilterValid bool
	NameFilter      string
}

func (*SwInterfaceDump) GetMessageName() string          { return "sw_interface_dump" }
func (*SwInterfaceDump) GetCrcString() string            { return "aa610c27" }
func (*SwInterfaceDump) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *SwInterfaceDump) Marshal(e *codec.Encoder) error {
	e.PutUint32(uint32(m.SwIfIndex))
	e.PutBool(m.NameFilterValid)
	return e.PutVarString(m.NameFilter)
}

func (m *SwInterfaceDump) Unmarshal(d *codec.Decoder) error {
	idx, err := d.Uint32()
	if err != nil {
		return err
	}
	m.SwIfIndex = InterfaceIndex(idx)
	if m.NameFilterValid, err = d.Bool(); err != nil {
		return err
	}
	m.NameFilter, err = d.VarString()
	return err
}

// SwInterfaceDetails represents the binary API message
// 'sw_interface_details'.
type SwInterfaceDetails struct {
	SwIfIndex        InterfaceIndex
	SupSwIfIndex     uint32
	L2Address        MacAddress
	Flags            IfStatusFlags
	Type             IfType
	LinkDuplex       LinkDuplex
	LinkSpeed        uint32
	LinkMtu          uint16
	Mtu              [4]uint32
	SubID            uint32
	SubNumberOfTags  uint8
	SubOuterVlanID   uint16
	SubInnerVlanID   uint16
	SubIfFlags       SubIfFlags
	VtrOp            uint32
	VtrPushDot1q     uint32
	VtrTag1          uint32
	VtrTag2          uint32
	OuterTag         uint16
	BDmac            MacAddress
	BSmac            MacAddress
	BVlanid          uint16
	ISid             uint32
	InterfaceName    string
	InterfaceDevType string
	Tag              string
}

func (*SwInterfaceDetails) GetMessageName() string          { return "sw_interface_details" }
func (*SwInterfaceDetails) GetCrcString() string            { return "17b69fa2" }
func (*SwInterfaceDetails) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *SwInterfaceDetails) Marshal(e *codec.Encoder) error {
	e.PutUint32(uint32(m.SwIfIndex))
	e.PutUint32(m.SupSwIfIndex)
	e.PutRaw(m.L2Address[:])
	e.PutUint32(uint32(m.Flags))
	e.PutUint32(uint32(m.Type))
	e.PutUint32(uint32(m.LinkDuplex))
	e.PutUint32(m.LinkSpeed)
	e.PutUint16(m.LinkMtu)
	for _, mtu := range m.Mtu {
		e.PutUint32(mtu)
	}
	e.PutUint32(m.SubID)
	e.PutUint8(m.SubNumberOfTags)
	e.PutUint16(m.SubOuterVlanID)
	e.PutUint16(m.SubInnerVlanID)
	e.PutUint32(uint32(m.SubIfFlags))
	e.PutUint32(m.VtrOp)
	e.PutUint32(m.VtrPushDot1q)
	e.PutUint32(m.VtrTag1)
	e.PutUint32(m.VtrTag2)
	e.PutUint16(m.OuterTag)
	e.PutRaw(m.BDmac[:])
	e.PutRaw(m.BSmac[:])
	e.PutUint16(m.BVlanid)
	e.PutUint32(m.ISid)
	if err := e.PutFixedString(m.InterfaceName, 64); err != nil {
		return err
	}
	if err := e.PutFixedString(m.InterfaceDevType, 64); err != nil {
		return err
	}
	return e.PutFixedString(m.Tag, 64)
}

func (m *SwInterfaceDetails) Unmarshal(d *codec.Decoder) error {
	var (
		v32 uint32
		err error
	)
	if v32, err = d.Uint32(); err != nil {
		return err
	}
	m.SwIfIndex = InterfaceIndex(v32)
	if m.SupSwIfIndex, err = d.Uint32(); err != nil {
		return err
	}
	if err = readMac(d, &m.L2Address); err != nil {
		return err
	}
	if v32, err = decodeFlags(d, IfStatusFlagsType); err != nil {
		return err
	}
	m.Flags = IfStatusFlags(v32)
	if v32, err = decodeEnum(d, IfTypeType); err != nil {
		return err
	}
	m.Type = IfType(v32)
	if v32, err = decodeEnum(d, LinkDuplexType); err != nil {
		return err
	}
	m.LinkDuplex = LinkDuplex(v32)
	if m.LinkSpeed, err = d.Uint32(); err != nil {
		return err
	}
	if m.LinkMtu, err = d.Uint16(); err != nil {
		return err
	}
	for i := range m.Mtu {
		if m.Mtu[i], err = d.Uint32(); err != nil {
			return err
		}
	}
	if m.SubID, err = d.Uint32(); err != nil {
		return err
	}
	if m.SubNumberOfTags, err = d.Uint8(); err != nil {
		return err
	}
	if m.SubOuterVlanID, err = d.Uint16(); err != nil {
		return err
	}
	if m.SubInnerVlanID, err = d.Uint16(); err != nil {
		return err
	}
	if v32, err = decodeFlags(d, SubIfFlagsType); err != nil {
		return err
	}
	m.SubIfFlags = SubIfFlags(v32)
	for _, dst := range []*uint32{&m.VtrOp, &m.VtrPushDot1q, &m.VtrTag1, &m.VtrTag2} {
		if *dst, err = d.Uint32(); err != nil {
			return err
		}
	}
	if m.OuterTag, err = d.Uint16(); err != nil {
		return err
	}
	if err = readMac(d, &m.BDmac); err != nil {
		return err
	}
	if err = readMac(d, &m.BSmac); err != nil {
		return err
	}
	if m.BVlanid, err = d.Uint16(); err != nil {
		return err
	}
	if m.ISid, err = d.Uint32(); err != nil {
		return err
	}
	for _, dst := range []*string{&m.InterfaceName, &m.InterfaceDevType, &m.Tag} {
		s, err := d.FixedString(64)
		if err != nil {
			return err
		}
		*dst = s.String()
	}
	return nil
}

func readMac(d *codec.Decoder, mac *MacAddress) error {
	b, err := d.Bytes(len(mac))
	if err != nil {
		return err
	}
	copy(mac[:], b)
	return nil
}

// CreateLoopback represents the binary API message 'create_loopback'.
type CreateLoopback struct {
	MacAddress MacAddress
}

func (*CreateLoopback) GetMessageName() string          { return "create_loopback" }
func (*CreateLoopback) GetCrcString() string            { return "42bb5d22" }
func (*CreateLoopback) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *CreateLoopback) Marshal(e *codec.Encoder) error {
	e.PutRaw(m.MacAddress[:])
	return nil
}

func (m *CreateLoopback) Unmarshal(d *codec.Decoder) error {
	return readMac(d, &m.MacAddress)
}

// CreateLoopbackReply represents the binary API message
// 'create_loopback_reply'.
type CreateLoopbackReply struct {
	Retval    int32
	SwIfIndex InterfaceIndex
}

func (*CreateLoopbackReply) GetMessageName() string          { return "create_loopback_reply" }
func (*CreateLoopbackReply) GetCrcString() string            { return "5383d31f" }
func (*CreateLoopbackReply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *CreateLoopbackReply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Retval)
	e.PutUint32(uint32(m.SwIfIndex))
	return nil
}

func (m *CreateLoopbackReply) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.Retval, err = d.Int32(); err != nil {
		return err
	}
	idx, err := d.Uint32()
	m.SwIfIndex = InterfaceIndex(idx)
	return err
}

// DeleteLoopback represents the binary API message 'delete_loopback'.
type DeleteLoopback struct {
	SwIfIndex InterfaceIndex
}

func (*DeleteLoopback) GetMessageName() string          { return "delete_loopback" }
func (*DeleteLoopback) GetCrcString() string            { return "f9e6675e" }
func (*DeleteLoopback) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *DeleteLoopback) Marshal(e *codec.Encoder) error {
	e.PutUint32(uint32(m.SwIfIndex))
	return nil
}

func (m *DeleteLoopback) Unmarshal(d *codec.Decoder) error {
	idx, err := d.Uint32()
	m.SwIfIndex = InterfaceIndex(idx)
	return err
}

// SwInterfaceSetFlags represents the binary API message
// 'sw_interface_set_flags'.
type SwInterfaceSetFlags struct {
	SwIfIndex InterfaceIndex
	Flags     IfStatusFlags
}

func (*SwInterfaceSetFlags) GetMessageName() string          { return "sw_interface_set_flags" }
func (*SwInterfaceSetFlags) GetCrcString() string            { return "6a2b491a" }
func (*SwInterfaceSetFlags) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *SwInterfaceSetFlags) Marshal(e *codec.Encoder) error {
	if _, err := codec.SplitFlags(uint64(m.Flags), IfStatusFlagsType); err != nil {
		return err
	}
	e.PutUint32(uint32(m.SwIfIndex))
	e.PutUint32(uint32(m.Flags))
	return nil
}

func (m *SwInterfaceSetFlags) Unmarshal(d *codec.Decoder) error {
	idx, err := d.Uint32()
	if err != nil {
		return err
	}
	m.SwIfIndex = InterfaceIndex(idx)
	flags, err := decodeFlags(d, IfStatusFlagsType)
	m.Flags = IfStatusFlags(flags)
	return err
}

// SwInterfaceAddDelAddress represents the binary API message
// 'sw_interface_add_del_address'.
type SwInterfaceAddDelAddress struct {
	SwIfIndex InterfaceIndex
	IsAdd     bool
	DelAll    bool
	Prefix    iptypes.AddressWithPrefix
}

func (*SwInterfaceAddDelAddress) GetMessageName() string          { return "sw_interface_add_del_address" }
func (*SwInterfaceAddDelAddress) GetCrcString() string            { return "5803d5c4" }
func (*SwInterfaceAddDelAddress) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *SwInterfaceAddDelAddress) Marshal(e *codec.Encoder) error {
	e.PutUint32(uint32(m.SwIfIndex))
	e.PutBool(m.IsAdd)
	e.PutBool(m.DelAll)
	p := iptypes.Prefix(m.Prefix)
	return p.MarshalTo(e)
}

func (m *SwInterfaceAddDelAddress) Unmarshal(d *codec.Decoder) error {
	idx, err := d.Uint32()
	if err != nil {
		return err
	}
	m.SwIfIndex = InterfaceIndex(idx)
	if m.IsAdd, err = d.Bool(); err != nil {
		return err
	}
	if m.DelAll, err = d.Bool(); err != nil {
		return err
	}
	var p iptypes.Prefix
	err = p.UnmarshalFrom(d)
	m.Prefix = iptypes.AddressWithPrefix(p)
	return err
}

// Reply is the body shared by the replies that only carry a retval:
// 'delete_loopback_reply', 'sw_interface_set_flags_reply' and
// 'sw_interface_add_del_address_reply'.
type Reply struct {
	name   string
	Retval int32
}

func NewDeleteLoopbackReply() *Reply      { return &Reply{name: "delete_loopback_reply"} }
func NewSwInterfaceSetFlagsReply() *Reply { return &Reply{name: "sw_interface_set_flags_reply"} }
func NewSwInterfaceAddDelAddressReply() *Reply {
	return &Reply{name: "sw_interface_add_del_address_reply"}
}

func (m *Reply) GetMessageName() string        { return m.name }
func (*Reply) GetCrcString() string            { return "e8d4e804" }
func (*Reply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *Reply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Retval)
	return nil
}

func (m *Reply) Unmarshal(d *codec.Decoder) error {
	var err error
	m.Retval, err = d.Int32()
	return err
}
