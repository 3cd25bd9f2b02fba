// SPDX-License-Identifier:Apache-2.0

// Package mux shares one engine connection between several clients.
//
// Every request a client writes gets a connection-wide context made of
// the client's slot and a per-client sequence number. Replies are
// routed back by that context and carry the client's own context
// again. Frames whose context matches no client, such as events, are
// dropped.
package mux

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/exchange"
	"go.universe.tf/vppapi/internal/frame"
	"go.universe.tf/vppapi/internal/registry"
)

const (
	maxClients = 255
	seqBits    = 24
	seqMask    = 1<<seqBits - 1
	// maxPending bounds the contexts remembered per client. The oldest
	// are forgotten first.
	maxPending = 4096
	// closeContext tags the control ping that drains the connection on
	// Close. Client contexts never use slot 0.
	closeContext = 0
)

var (
	ErrClosed         = errors.New("mux closed")
	ErrTooManyClients = errors.New("too many mux clients")
)

// Mux owns the reading side of an upstream channel and dispatches
// replies to its clients.
type Mux struct {
	logger      log.Logger
	up          exchange.Channel
	pingID      uint16
	pingReplyID uint16

	// wmu keeps frames from different clients from interleaving.
	wmu sync.Mutex

	mu      sync.Mutex
	clients [maxClients + 1]*Client
	err     error
	done    chan struct{}
}

// New starts multiplexing up, which must be connected. up is switched
// to blocking reads and must not be read by anyone else until Close
// returns.
func New(l log.Logger, up exchange.Channel) (*Mux, error) {
	m := &Mux{
		logger: log.With(l, "component", "mux"),
		up:     up,
		done:   make(chan struct{}),
	}
	for _, r := range []struct {
		msg api.Message
		id  *uint16
	}{
		{&memclnt.ControlPing{}, &m.pingID},
		{&memclnt.ControlPingReply{}, &m.pingReplyID},
	} {
		id, ok := up.GetMsgIndex(api.ID(r.msg))
		if !ok {
			return nil, &registry.LookupError{Name: api.ID(r.msg)}
		}
		*r.id = id
	}
	if err := up.SetNonblocking(false); err != nil {
		return nil, errors.Wrap(err, "switching upstream to blocking reads")
	}
	go m.run()
	return m, nil
}

// Client returns a new channel sharing the upstream connection.
func (m *Mux) Client() (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for slot := 1; slot <= maxClients; slot++ {
		if m.clients[slot] != nil {
			continue
		}
		c := &Client{
			m:        m,
			slot:     uint32(slot),
			contexts: map[uint32]uint32{},
			ready:    make(chan struct{}, 1),
		}
		m.clients[slot] = c
		stats.clients.Inc()
		return c, nil
	}
	return nil, ErrTooManyClients
}

// Close drains the upstream connection with a control ping and stops
// reading from it. Replies still in flight are delivered first. Once
// Close returns, up can be used directly again.
func (m *Mux) Close() error {
	select {
	case <-m.done:
	default:
		p := make([]byte, 10)
		binary.BigEndian.PutUint16(p, m.pingID)
		binary.BigEndian.PutUint32(p[2:], m.up.ClientIndex())
		binary.BigEndian.PutUint32(p[6:], closeContext)
		if err := m.write(p); err != nil {
			return err
		}
		<-m.done
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if errors.Is(m.err, ErrClosed) {
		return nil
	}
	return m.err
}

func (m *Mux) run() {
	err := m.read()
	if err == nil {
		err = ErrClosed
	} else {
		level.Error(m.logger).Log("op", "read", "error", err, "msg", "upstream read failed, closing all clients")
	}
	m.mu.Lock()
	m.err = err
	for slot, c := range m.clients {
		if c != nil {
			c.shutdown(err)
			m.clients[slot] = nil
			stats.clients.Dec()
		}
	}
	m.mu.Unlock()
	close(m.done)
}

func (m *Mux) read() error {
	for {
		p, err := frame.Read(m.up)
		if err != nil {
			return err
		}
		if len(p) < 6 {
			m.drop(p, "frame too short for a context")
			continue
		}
		id := binary.BigEndian.Uint16(p)
		ctx := binary.BigEndian.Uint32(p[2:6])
		if id == m.pingReplyID && ctx == closeContext {
			return nil
		}

		m.mu.Lock()
		c := m.clients[ctx>>seqBits]
		m.mu.Unlock()
		if c == nil {
			m.drop(p, "no client for context")
			continue
		}
		if !c.deliver(ctx&seqMask, p) {
			m.drop(p, "unknown context")
			continue
		}
		stats.routed.Inc()
	}
}

func (m *Mux) drop(p []byte, why string) {
	stats.dropped.Inc()
	var id uint16
	if len(p) >= 2 {
		id = binary.BigEndian.Uint16(p)
	}
	level.Debug(m.logger).Log("op", "route", "id", id, "size", len(p), "msg", why)
}

func (m *Mux) write(p []byte) error {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	return frame.Write(m.up, p)
}

func (m *Mux) release(slot uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clients[slot] != nil {
		m.clients[slot] = nil
		stats.clients.Dec()
	}
}

// Client is one user of a Mux. It implements exchange.Channel and is
// meant to be driven by a single exchange.Conn.
type Client struct {
	m    *Mux
	slot uint32

	mu          sync.Mutex
	seq         uint32
	contexts    map[uint32]uint32
	order       []uint32
	inbox       [][]byte
	err         error
	nonblocking bool
	ready       chan struct{}

	// Owned by the reading and writing goroutine respectively.
	pending bytes.Buffer
	wbuf    []byte
}

func (c *Client) GetMsgIndex(nameCRC string) (uint16, bool) {
	return c.m.up.GetMsgIndex(nameCRC)
}

func (c *Client) ClientIndex() uint32 {
	return c.m.up.ClientIndex()
}

func (c *Client) SetNonblocking(nonblocking bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonblocking = nonblocking
	return nil
}

// Close detaches the client. Replies still addressed to it are
// dropped.
func (c *Client) Close() error {
	c.m.release(c.slot)
	c.shutdown(ErrClosed)
	return nil
}

// Read returns bytes of the frames routed to c. In non-blocking mode
// it fails with frame.ErrWouldBlock between frames only.
func (c *Client) Read(b []byte) (int, error) {
	if c.pending.Len() == 0 {
		p, err := c.next()
		if err != nil {
			return 0, err
		}
		if err := frame.Write(&c.pending, p); err != nil {
			return 0, err
		}
	}
	return c.pending.Read(b)
}

func (c *Client) next() ([]byte, error) {
	for {
		c.mu.Lock()
		if len(c.inbox) > 0 {
			p := c.inbox[0]
			c.inbox[0] = nil
			c.inbox = c.inbox[1:]
			c.mu.Unlock()
			return p, nil
		}
		err, nonblocking := c.err, c.nonblocking
		c.mu.Unlock()

		if err != nil {
			return nil, err
		}
		if nonblocking {
			return nil, frame.ErrWouldBlock
		}
		<-c.ready
	}
}

// Write accepts whole or partial frames and forwards each complete
// request frame upstream with its context rewritten.
func (c *Client) Write(b []byte) (int, error) {
	c.wbuf = append(c.wbuf, b...)
	for len(c.wbuf) >= frame.HeaderSize {
		total := frame.HeaderSize + int(binary.BigEndian.Uint32(c.wbuf[8:12]))
		if len(c.wbuf) < total {
			break
		}
		p := append([]byte(nil), c.wbuf[frame.HeaderSize:total]...)
		c.wbuf = c.wbuf[total:]
		if err := c.forward(p); err != nil {
			return 0, err
		}
	}
	if len(c.wbuf) == 0 {
		c.wbuf = nil
	}
	return len(b), nil
}

// forward rewrites the context of the request p, laid out as
// msg_id, client_index, context, and writes it upstream.
func (c *Client) forward(p []byte) error {
	if len(p) < 10 {
		return errors.Wrapf(frame.ErrInvalidMessage, "%d byte request has no context", len(p))
	}
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.seq = (c.seq + 1) & seqMask
	if c.seq == 0 {
		c.seq = 1
	}
	seq := c.seq
	c.contexts[seq] = binary.BigEndian.Uint32(p[6:10])
	c.order = append(c.order, seq)
	if len(c.order) > maxPending {
		delete(c.contexts, c.order[0])
		c.order = c.order[1:]
	}
	c.mu.Unlock()

	binary.BigEndian.PutUint32(p[6:10], c.slot<<seqBits|seq)
	return c.m.write(p)
}

// deliver queues the reply p if seq is a context c sent. The reply's
// context is restored to the one the client used.
func (c *Client) deliver(seq uint32, p []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	orig, ok := c.contexts[seq]
	if !ok || c.err != nil {
		return false
	}
	binary.BigEndian.PutUint32(p[2:6], orig)
	c.inbox = append(c.inbox, p)
	c.signal()
	return true
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	c.signal()
}

// signal wakes a blocked reader. Callers hold c.mu.
func (c *Client) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}
