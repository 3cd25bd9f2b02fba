// SPDX-License-Identifier:Apache-2.0

// Package exchange implements the request/reply and dump interactions
// with the engine on top of a framed byte channel.
//
// A Conn is not safe for concurrent use. Replies are matched to
// requests by message id alone, so only one call of a given message
// kind may be in flight on a connection at a time.
package exchange

import (
	"encoding/binary"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/binapi/vlib"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/frame"
	"go.universe.tf/vppapi/internal/registry"
)

// Channel is a connected byte stream to the engine along with the
// facts learned during the connection handshake.
type Channel interface {
	io.Reader
	io.Writer
	// GetMsgIndex returns the id the engine assigned to a message
	// identity on this connection.
	GetMsgIndex(nameCRC string) (uint16, bool)
	ClientIndex() uint32
	// SetNonblocking switches reads between waiting for data and
	// failing with frame.ErrWouldBlock when none is available.
	SetNonblocking(bool) error
}

// Conn exchanges messages over one Channel.
type Conn struct {
	ch      Channel
	reg     *registry.Registry
	logger  log.Logger
	context uint32
}

func New(l log.Logger, ch Channel) *Conn {
	return &Conn{
		ch:     ch,
		reg:    registry.New(ch),
		logger: log.With(l, "component", "exchange"),
	}
}

// SetNonblocking switches the underlying channel's read mode. In
// non-blocking mode an operation that finds no frame to read fails
// with an error matching frame.ErrWouldBlock, and the caller chooses
// when to retry.
func (c *Conn) SetNonblocking(nonblocking bool) error {
	return c.ch.SetNonblocking(nonblocking)
}

// Resolve returns the id of m on this connection.
func (c *Conn) Resolve(m api.Message) (uint16, error) {
	return c.reg.Resolve(api.ID(m))
}

func (c *Conn) nextContext() uint32 {
	c.context++
	if c.context == 0 {
		c.context++
	}
	return c.context
}

// Call sends req and waits for reply, skipping any other message that
// arrives in between.
func (c *Conn) Call(req, reply api.Message) error {
	if _, err := c.Resolve(reply); err != nil {
		stats.Failed("call")
		return err
	}
	if err := c.SendRequest(req); err != nil {
		return err
	}
	return c.ReceiveReply(reply)
}

// SendRequest writes req to the channel.
func (c *Conn) SendRequest(req api.Message) error {
	name := api.ID(req)
	id, err := c.reg.Resolve(name)
	if err != nil {
		stats.Failed("send")
		return err
	}
	if err := c.send(id, req, c.nextContext()); err != nil {
		stats.Failed("send")
		return err
	}
	return nil
}

// ReceiveReply reads frames until one carries reply's message id, and
// decodes it into reply. Frames with other ids are discarded.
func (c *Conn) ReceiveReply(reply api.Message) error {
	name := api.ID(reply)
	id, err := c.reg.Resolve(name)
	if err != nil {
		stats.Failed("receive")
		return err
	}
	for {
		msgID, body, err := c.readMessage()
		if err != nil {
			stats.Failed("receive")
			return errors.Wrapf(err, "waiting for %s", name)
		}
		if msgID != id {
			c.discard("receive", msgID, name)
			continue
		}
		if err := decodeBody(body, reply); err != nil {
			stats.Failed("receive")
			return &DecodeError{Message: name, ID: msgID, Err: err}
		}
		stats.ReplyReceived(name)
		return nil
	}
}

// Dump sends req followed by a control ping, and collects every
// details message the engine sends before the ping's reply. The engine
// answers a connection's requests in order, so the ping reply marks
// the end of the dump. newDetails returns an empty details message to
// decode into.
func (c *Conn) Dump(req api.Message, newDetails func() api.Message) ([]api.Message, error) {
	ping, pingReply := &memclnt.ControlPing{}, &memclnt.ControlPingReply{}
	reqID, err := c.Resolve(req)
	if err != nil {
		stats.Failed("dump")
		return nil, err
	}
	detailsName := api.ID(newDetails())
	detailsID, err := c.reg.Resolve(detailsName)
	if err != nil {
		stats.Failed("dump")
		return nil, err
	}
	pingID, err := c.Resolve(ping)
	if err != nil {
		stats.Failed("dump")
		return nil, err
	}
	pingReplyID, err := c.Resolve(pingReply)
	if err != nil {
		stats.Failed("dump")
		return nil, err
	}

	if err := c.send(reqID, req, c.nextContext()); err != nil {
		stats.Failed("dump")
		return nil, err
	}
	if err := c.send(pingID, ping, 0); err != nil {
		stats.Failed("dump")
		return nil, err
	}

	ret := []api.Message{}
	for {
		msgID, body, err := c.readMessage()
		if err != nil {
			stats.Failed("dump")
			return nil, errors.Wrapf(err, "dumping %s after %d details", detailsName, len(ret))
		}
		switch msgID {
		case pingReplyID:
			return ret, nil
		case detailsID:
			m := newDetails()
			if err := decodeBody(body, m); err != nil {
				stats.Failed("dump")
				return nil, &DecodeError{Message: detailsName, ID: msgID, Err: err}
			}
			stats.DetailsReceived(detailsName)
			ret = append(ret, m)
		default:
			c.discard("dump", msgID, detailsName)
		}
	}
}

// Ping sends a control ping and waits for its reply.
func (c *Conn) Ping() (*memclnt.ControlPingReply, error) {
	reply := &memclnt.ControlPingReply{}
	if err := c.Call(&memclnt.ControlPing{}, reply); err != nil {
		return nil, err
	}
	return reply, api.RetvalToError(reply.Retval)
}

// RunCli runs a debug CLI command on the engine and returns its
// output.
func (c *Conn) RunCli(cmd string) (string, error) {
	reply := &vlib.CliInbandReply{}
	if err := c.Call(&vlib.CliInband{Cmd: cmd}, reply); err != nil {
		return "", err
	}
	if err := api.RetvalToError(reply.Retval); err != nil {
		return "", errors.Wrapf(err, "running %q", cmd)
	}
	return reply.Reply, nil
}

func (c *Conn) send(id uint16, m api.Message, context uint32) error {
	name := api.ID(m)
	e := codec.NewEncoder(make([]byte, 0, 64))
	e.PutUint16(id)
	switch m.GetMessageType() {
	case api.RequestMessage:
		e.PutUint32(c.ch.ClientIndex())
		e.PutUint32(context)
	case api.ReplyMessage:
		e.PutUint32(context)
	case api.EventMessage:
		e.PutUint32(c.ch.ClientIndex())
	}
	if err := m.Marshal(e); err != nil {
		return &EncodeError{Message: name, Err: err}
	}
	if err := frame.Write(c.ch, e.Bytes()); err != nil {
		level.Error(c.logger).Log("op", "send", "message", name, "error", err, "msg", "failed to write frame")
		return errors.Wrapf(err, "sending %s", name)
	}
	stats.RequestSent(name)
	return nil
}

func (c *Conn) readMessage() (uint16, []byte, error) {
	payload, err := frame.Read(c.ch)
	if err != nil {
		return 0, nil, err
	}
	if len(payload) < 2 {
		return 0, nil, &frame.Error{Kind: frame.ErrInvalidMessage, Err: errors.Errorf("%d byte payload has no message id", len(payload))}
	}
	return binary.BigEndian.Uint16(payload), payload[2:], nil
}

// decodeBody strips the header of m's type from body and unmarshals the
// rest. Bytes left over after the message's own fields are ignored.
func decodeBody(body []byte, m api.Message) error {
	d := codec.NewDecoder(body)
	var header int
	switch m.GetMessageType() {
	case api.RequestMessage:
		header = 8
	case api.ReplyMessage, api.EventMessage:
		header = 4
	}
	if _, err := d.Bytes(header); err != nil {
		return errors.Wrap(err, "message header")
	}
	return m.Unmarshal(d)
}

func (c *Conn) discard(op string, id uint16, waitingFor string) {
	stats.FrameDiscarded()
	name, _ := c.reg.Name(id)
	level.Debug(c.logger).Log("op", op, "id", id, "name", name, "waitingFor", waitingFor, "msg", "discarding unrelated message")
}
