// SPDX-License-Identifier:Apache-2.0

// Package api defines the contract shared by every binary API message,
// whether generated from a schema at runtime or written out as a Go
// struct.
package api

import (
	"go.universe.tf/vppapi/internal/codec"
)

// MessageType selects the header that precedes a message body on the
// wire.
type MessageType int

const (
	// RequestMessage bodies are preceded by client_index and context.
	RequestMessage MessageType = iota
	// ReplyMessage bodies are preceded by context.
	ReplyMessage
	// EventMessage bodies are preceded by client_index.
	EventMessage
	// OtherMessage bodies have no header.
	OtherMessage
)

func (t MessageType) String() string {
	switch t {
	case RequestMessage:
		return "request"
	case ReplyMessage:
		return "reply"
	case EventMessage:
		return "event"
	}
	return "other"
}

// Message is a binary API message. Marshal and Unmarshal handle only
// the message specific fields, the header is written by the exchange.
type Message interface {
	GetMessageName() string
	GetCrcString() string
	GetMessageType() MessageType
	Marshal(e *codec.Encoder) error
	Unmarshal(d *codec.Decoder) error
}

// ID returns the identity under which the engine knows m, the message
// name joined to its CRC.
func ID(m Message) string {
	return m.GetMessageName() + "_" + m.GetCrcString()
}
