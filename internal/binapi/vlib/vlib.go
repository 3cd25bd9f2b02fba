// SPDX-License-Identifier:Apache-2.0

// Package vlib holds the messages of the engine's 'vlib' module.
package vlib

import (
	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/codec"
)

// CliInband represents the binary API message 'cli_inband'. It runs a
// debug CLI command and returns its output in the reply.
type CliInband struct {
	Cmd string
}

func (*CliInband) GetMessageName() string          { return "cli_inband" }
func (*CliInband) GetCrcString() string            { return "f8377302" }
func (*CliInband) GetMessageType() api.MessageType { return api.RequestMessage }

func (m *CliInband) Marshal(e *codec.Encoder) error {
	return e.PutVarString(m.Cmd)
}

func (m *CliInband) Unmarshal(d *codec.Decoder) error {
	var err error
	m.Cmd, err = d.VarString()
	return err
}

// CliInbandReply represents the binary API message 'cli_inband_reply'.
type CliInbandReply struct {
	Retval int32
	Reply  string
}

func (*CliInbandReply) GetMessageName() string          { return "cli_inband_reply" }
func (*CliInbandReply) GetCrcString() string            { return "05879051" }
func (*CliInbandReply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *CliInbandReply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Retval)
	return e.PutVarString(m.Reply)
}

func (m *CliInbandReply) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.Retval, err = d.Int32(); err != nil {
		return err
	}
	m.Reply, err = d.VarString()
	return err
}

// ShowVersion represents the binary API message 'show_version'.
type ShowVersion struct{}

func (*ShowVersion) GetMessageName() string          { return "show_version" }
func (*ShowVersion) GetCrcString() string            { return "51077d14" }
func (*ShowVersion) GetMessageType() api.MessageType { return api.RequestMessage }
func (*ShowVersion) Marshal(*codec.Encoder) error    { return nil }
func (*ShowVersion) Unmarshal(*codec.Decoder) error  { return nil }

// ShowVersionReply represents the binary API message 'show_version_reply'.
type ShowVersionReply struct {
	Retval         int32
	Program        string
	Version        string
	BuildDate      string
	BuildDirectory string
}

func (*ShowVersionReply) GetMessageName() string          { return "show_version_reply" }
func (*ShowVersionReply) GetCrcString() string            { return "c919bde1" }
func (*ShowVersionReply) GetMessageType() api.MessageType { return api.ReplyMessage }

func (m *ShowVersionReply) Marshal(e *codec.Encoder) error {
	e.PutInt32(m.Retval)
	if err := e.PutFixedString(m.Program, 32); err != nil {
		return err
	}
	if err := e.PutFixedString(m.Version, 32); err != nil {
		return err
	}
	if err := e.PutFixedString(m.BuildDate, 32); err != nil {
		return err
	}
	return e.PutFixedString(m.BuildDirectory, 256)
}

func (m *ShowVersionReply) Unmarshal(d *codec.Decoder) error {
	var err error
	if m.Retval, err = d.Int32(); err != nil {
		return err
	}
	for _, f := range []struct {
		dst *string
		n   int
	}{
		{&m.Program, 32},
		{&m.Version, 32},
		{&m.BuildDate, 32},
		{&m.BuildDirectory, 256},
	} {
		s, err := d.FixedString(f.n)
		if err != nil {
			return err
		}
		*f.dst = s.String()
	}
	return nil
}
