// SPDX-License-Identifier:Apache-2.0

// Package memclnt holds the messages of the engine's 'memclnt' module:
// the socket handshake and the control ping.
package memclnt

import (
	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/safeconvert"
)

// MessageTableEntry represents the binary API type 'message_table_entry'.
type MessageTableEntry struct {
	Index uint16
	Name  string
}

const messageTableEntrySize = 2 + 64

// ControlPing represents the binary API message 'control_ping'.
type ControlPing struct{}

func (*ControlPing) GetMessageName() string          { return "control_ping" }
func (*ControlPing) GetCrcString() string            { return "51077d14" }
func (*ControlPing) GetMessageType() api.MessageType { return api.RequestMessage }
func (*ControlPing) Marshal(*codec.Encoder) error    { return nil }
func (*ControlPing) Unmarshal(*codec.Decoder) error  { return nil }

// ControlPingReply represents the binary API message 'control_ping_reply'.
type ControlPingReply struct {
	Retval      int32
	ClientIndex uint32
	VpePID      uint32
}

func (*ControlPingReply) GetMessageName() string          { return "control_ping_reply" }
func (*ControlPingReply) GetCrcString() string            { return "f6b0b8ca" }
func (*ControlPingReply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *ControlPingReply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Retval)
	e.PutUint32(m.ClientIndex)
	e.PutUint32(m.VpePID)
	return nil
}

func (m *ControlPingReply) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.Retval, err = d.Int32(); err != nil {
		return err
	}
	if m.ClientIndex, err = d.Uint32(); err != nil {
		return err
	}
	if m.VpePID, err = d.Uint32(); err != nil {
		return err
	}
	return nil
}

// SockclntCreate represents the binary API message 'sockclnt_create'.
// The client has no index yet, so only a context precedes the body.
type SockclntCreate struct {
	Name string
}

func (*SockclntCreate) GetMessageName() string          { return "sockclnt_create" }
func (*SockclntCreate) GetCrcString() string            { return "455fb9c4" }
func (*SockclntCreate) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *SockclntCreate) Marshal(e *codec.Encoder) error {
	return e.PutFixedString(m.Name, 64)
}

func (m *SockclntCreate) Unmarshal(d *codec.Decoder) error {
	s, err := d.FixedString(64)
	m.Name = s.String()
	return err
}

// SockclntCreateReply represents the binary API message
// 'sockclnt_create_reply'. MessageTable maps every message the engine
// knows to the id it uses on this connection. The engine sends it with
// a client_index and a context, the header layout of a request.
type SockclntCreateReply struct {
	Response     int32
	Index        uint32
	Count        uint16
	MessageTable []MessageTableEntry
}

func (*SockclntCreateReply) GetMessageName() string          { return "sockclnt_create_reply" }
func (*SockclntCreateReply) GetCrcString() string            { return "35166268" }
func (*SockclntCreateReply) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *SockclntCreateReply) Marshal(e *codec.Encoder) error {
	count, err := safeconvert.IntToUInt16(len(m.MessageTable))
	if err != nil {
		return err
	}
	e.PutInt32(m.Response)
	e.PutUint32(m.Index)
	e.PutUint16(count)
	for _, entry := range m.MessageTable {
		e.PutUint16(entry.Index)
		if err := e.PutFixedString(entry.Name, 64); err != nil {
			return err
		}
	}
	return nil
}

func (m *SockclntCreateReply) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.Response, err = d.Int32(); err != nil {
		return err
	}
	if m.Index, err = d.Uint32(); err != nil {
		return err
	}
	if m.Count, err = d.Uint16(); err != nil {
		return err
	}
	m.MessageTable = make([]MessageTableEntry, 0, d.Len()/messageTableEntrySize)
	for d.Len() > 0 {
		var entry MessageTableEntry
		if entry.Index, err = d.Uint16(); err != nil {
			return err
		}
		name, err := d.FixedString(64)
		if err != nil {
			return err
		}
		entry.Name = name.String()
		m.MessageTable = append(m.MessageTable, entry)
	}
	return nil
}

// SockclntDelete represents the binary API message 'sockclnt_delete'.
type SockclntDelete struct {
	Index uint32
}

func (*SockclntDelete) GetMessageName() string          { return "sockclnt_delete" }
func (*SockclntDelete) GetCrcString() string            { return "8ac76db6" }
func (*SockclntDelete) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *SockclntDelete) Marshal(e *codec.Encoder) error {
	e.PutUint32(m.Index)
	return nil
}

func (m *SockclntDelete) Unmarshal(d *codec.Decoder) error {
	var err error
	m.Index, err = d.Uint32()
	return err
}

// SockclntDeleteReply represents the binary API message 'sockclnt_delete_reply'.
type SockclntDeleteReply struct {
	Response int32
}

func (*SockclntDeleteReply) GetMessageName() string          { return "sockclnt_delete_reply" }
func (*SockclntDeleteReply) GetCrcString() string            { return "8f38b1ee" }
func (*SockclntDeleteReply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *SockclntDeleteReply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Response)
	return nil
}

func (m *SockclntDeleteReply) Unmarshal(d *codec.Decoder) error {
	var err error
	m.Response, err = d.Int32()
	return err
}
