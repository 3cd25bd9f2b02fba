// SPDX-License-Identifier:Apache-2.0

// Package socket connects to the engine's binary API over a Unix
// domain socket.
package socket

import (
	"encoding/binary"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/frame"
)

const (
	DefaultPath = "/run/vpp/api.sock"

	// createMsgID is the id of sockclnt_create. The engine serves it
	// before any message table exists, so it is fixed.
	createMsgID   = 15
	createContext = 0xcafe

	disconnectTimeout = time.Second
)

// ErrNotConnected is returned by operations that need the handshake
// to have completed.
var ErrNotConnected = errors.New("client not registered with the engine")

type Config struct {
	Path        string
	DialTimeout time.Duration
}

// Conn is a socket connection to the engine. It implements
// exchange.Channel once Connect has succeeded.
type Conn struct {
	logger log.Logger
	conn   *net.UnixConn
	raw    syscall.RawConn

	nonblocking bool
	tracker     frameTracker

	connected   bool
	clientIndex uint32
	msgTable    map[string]uint16
	maxIndex    uint16
}

// Dial opens the socket at cfg.Path.
func Dial(l log.Logger, cfg Config) (*Conn, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	c, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", path)
	}
	uc, ok := c.(*net.UnixConn)
	if !ok {
		c.Close()
		return nil, errors.Errorf("%s is not a unix socket connection", path)
	}
	raw, err := uc.SyscallConn()
	if err != nil {
		uc.Close()
		return nil, errors.Wrap(err, "getting raw connection")
	}
	return &Conn{
		logger:   log.With(l, "component", "socket", "path", path),
		conn:     uc,
		raw:      raw,
		msgTable: map[string]uint16{},
	}, nil
}

// Connect registers the client with the engine under name and loads
// the message table for this connection. prefix and queueLength only
// apply to shared memory transports; they are accepted so callers can
// configure either transport the same way.
func (c *Conn) Connect(name, prefix string, queueLength int) error {
	if prefix != "" || queueLength != 0 {
		level.Debug(c.logger).Log("op", "connect", "prefix", prefix, "queueLength", queueLength, "msg", "ignoring shared memory options")
	}

	e := codec.NewEncoder(make([]byte, 0, 70))
	e.PutUint16(createMsgID)
	e.PutUint32(createContext)
	create := &memclnt.SockclntCreate{Name: name}
	if err := create.Marshal(e); err != nil {
		return errors.Wrapf(err, "client name %q", name)
	}
	if err := frame.Write(c.conn, e.Bytes()); err != nil {
		return errors.Wrap(err, "sending sockclnt_create")
	}

	payload, err := frame.Read(c.conn)
	if err != nil {
		return errors.Wrap(err, "reading sockclnt_create_reply")
	}
	reply := &memclnt.SockclntCreateReply{}
	if err := decode(payload, reply); err != nil {
		return errors.Wrap(err, "decoding sockclnt_create_reply")
	}
	if err := api.RetvalToError(reply.Response); err != nil {
		return errors.Wrap(err, "sockclnt_create")
	}

	c.clientIndex = reply.Index
	c.maxIndex = 0
	for _, entry := range reply.MessageTable {
		c.msgTable[entry.Name] = entry.Index
		if entry.Index > c.maxIndex {
			c.maxIndex = entry.Index
		}
	}
	c.connected = true
	level.Info(c.logger).Log("op", "connect", "name", name, "clientIndex", c.clientIndex, "messages", len(c.msgTable), "msg", "registered with engine")
	return nil
}

// decode unmarshals a payload carrying a header of m's type.
func decode(payload []byte, m api.Message) error {
	d := codec.NewDecoder(payload)
	header := 2
	switch m.GetMessageType() {
	case api.RequestMessage:
		header += 8
	case api.ReplyMessage, api.EventMessage:
		header += 4
	}
	if _, err := d.Bytes(header); err != nil {
		return err
	}
	return m.Unmarshal(d)
}

// Disconnect unregisters the client and closes the socket. The engine's
// acknowledgement is waited for briefly; failing to get it does not
// prevent the close.
func (c *Conn) Disconnect() error {
	if c.connected {
		if err := c.unregister(); err != nil {
			level.Warn(c.logger).Log("op", "disconnect", "error", err, "msg", "unregistering client failed")
		}
	}
	return c.Close()
}

func (c *Conn) unregister() error {
	del := &memclnt.SockclntDelete{Index: c.clientIndex}
	id, ok := c.GetMsgIndex(api.ID(del))
	if !ok {
		return errors.Errorf("engine does not know %s", api.ID(del))
	}
	c.connected = false
	c.nonblocking = false

	e := codec.NewEncoder(nil)
	e.PutUint16(id)
	e.PutUint32(c.clientIndex)
	e.PutUint32(0)
	if err := del.Marshal(e); err != nil {
		return err
	}
	if err := frame.Write(c.conn, e.Bytes()); err != nil {
		return errors.Wrap(err, "sending sockclnt_delete")
	}

	replyID, ok := c.GetMsgIndex(api.ID(&memclnt.SockclntDeleteReply{}))
	if !ok {
		return nil
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(disconnectTimeout)); err != nil {
		return err
	}
	for {
		payload, err := frame.Read(c)
		if err != nil {
			return errors.Wrap(err, "waiting for sockclnt_delete_reply")
		}
		if len(payload) >= 2 && binary.BigEndian.Uint16(payload) == replyID {
			reply := &memclnt.SockclntDeleteReply{}
			if err := decode(payload, reply); err != nil {
				return err
			}
			return api.RetvalToError(reply.Response)
		}
	}
}

// Close closes the socket without unregistering.
func (c *Conn) Close() error {
	c.connected = false
	return c.conn.Close()
}

// GetMsgIndex looks nameCRC up in the message table received during
// Connect.
func (c *Conn) GetMsgIndex(nameCRC string) (uint16, bool) {
	id, ok := c.msgTable[nameCRC]
	return id, ok
}

// ClientIndex returns the index the engine assigned this client.
func (c *Conn) ClientIndex() uint32 {
	return c.clientIndex
}

// MessageCount returns the size of the message table.
func (c *Conn) MessageCount() int {
	return len(c.msgTable)
}

// MaxIndex returns the highest message id in the message table.
func (c *Conn) MaxIndex() uint16 {
	return c.maxIndex
}

// SetNonblocking switches reads to return frame.ErrWouldBlock when
// no frame has started arriving. Once part of a frame has been read,
// reads wait for the rest of it.
func (c *Conn) SetNonblocking(nonblocking bool) error {
	if !c.connected {
		return ErrNotConnected
	}
	c.nonblocking = nonblocking
	return nil
}

func (c *Conn) Read(b []byte) (int, error) {
	if !c.nonblocking || !c.tracker.boundary() {
		n, err := c.conn.Read(b)
		if err != nil {
			// The rest of the frame is lost with the failed read.
			c.tracker.reset()
			return n, err
		}
		c.tracker.consume(b[:n])
		return n, nil
	}

	var (
		n       int
		readErr error
	)
	// The runtime keeps the descriptor in non-blocking mode, so a
	// single read(2) reports EAGAIN instead of waiting.
	err := c.raw.Read(func(fd uintptr) bool {
		n, readErr = unix.Read(int(fd), b)
		return true
	})
	if err != nil {
		return 0, err
	}
	switch {
	case readErr == unix.EAGAIN || readErr == unix.EWOULDBLOCK:
		return 0, frame.ErrWouldBlock
	case readErr != nil:
		return 0, os.NewSyscallError("read", readErr)
	case n == 0 && len(b) > 0:
		return 0, io.EOF
	}
	c.tracker.consume(b[:n])
	return n, nil
}

// SetReadDeadline bounds blocking reads. The zero time removes the
// bound.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// frameTracker follows frame boundaries in the bytes read, so that a
// non-blocking read never gives up halfway through a frame.
type frameTracker struct {
	header [frame.HeaderSize]byte
	seen   int
	total  int
}

func (t *frameTracker) boundary() bool {
	return t.seen == 0
}

func (t *frameTracker) reset() {
	t.seen, t.total = 0, 0
}

func (t *frameTracker) consume(b []byte) {
	for len(b) > 0 {
		if t.seen < frame.HeaderSize {
			n := copy(t.header[t.seen:], b)
			t.seen += n
			b = b[n:]
			if t.seen == frame.HeaderSize {
				t.total = frame.HeaderSize + int(binary.BigEndian.Uint32(t.header[8:12]))
				if t.total == frame.HeaderSize {
					t.seen, t.total = 0, 0
				}
			}
			continue
		}
		n := t.total - t.seen
		if n > len(b) {
			n = len(b)
		}
		t.seen += n
		b = b[n:]
		if t.seen == t.total {
			t.seen, t.total = 0, 0
		}
	}
}
