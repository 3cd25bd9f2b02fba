// SPDX-License-Identifier:Apache-2.0

package mux

import (
	"encoding/binary"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/interfaces"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/binapi/vlib"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/exchange"
	"go.universe.tf/vppapi/internal/frame"
)

// pipeChannel is the client end of an in-memory engine connection.
type pipeChannel struct {
	net.Conn
}

var pipeIDs = map[string]uint16{
	"control_ping_51077d14":         1,
	"control_ping_reply_f6b0b8ca":   2,
	"sw_interface_dump_aa610c27":    10,
	"sw_interface_details_17b69fa2": 11,
	"cli_inband_f8377302":           20,
	"cli_inband_reply_05879051":     21,
}

func (p *pipeChannel) GetMsgIndex(name string) (uint16, bool) {
	id, ok := pipeIDs[name]
	return id, ok
}

func (p *pipeChannel) ClientIndex() uint32 { return 7 }

func (p *pipeChannel) SetNonblocking(nb bool) error {
	if nb {
		return errors.New("pipe reads always block")
	}
	return nil
}

// testEngine answers pings, interface dumps and cli commands, echoing
// the context of each request.
type testEngine struct {
	conn net.Conn
	seen chan uint32
	// stray sends an unroutable frame ahead of every reply.
	stray bool
}

func (e *testEngine) send(id uint16, context uint32, m api.Message) error {
	enc := codec.NewEncoder(nil)
	enc.PutUint16(id)
	enc.PutUint32(context)
	if err := m.Marshal(enc); err != nil {
		return err
	}
	return frame.Write(e.conn, enc.Bytes())
}

func (e *testEngine) serve() error {
	for {
		p, err := frame.Read(e.conn)
		if err != nil {
			return nil
		}
		id := binary.BigEndian.Uint16(p)
		d := codec.NewDecoder(p[2:])
		if _, err := d.Uint32(); err != nil {
			return err
		}
		ctx, err := d.Uint32()
		if err != nil {
			return err
		}
		select {
		case e.seen <- ctx:
		default:
		}
		if e.stray {
			if err := e.send(99, 5<<seqBits|1, &memclnt.ControlPingReply{}); err != nil {
				return nil
			}
		}

		switch id {
		case 1:
			err = e.send(2, ctx, &memclnt.ControlPingReply{ClientIndex: 7, VpePID: 99})
		case 10:
			for _, name := range []string{"local0", "loop0"} {
				if err = e.send(11, ctx, &interfaces.SwInterfaceDetails{InterfaceName: name}); err != nil {
					break
				}
			}
		case 20:
			req := &vlib.CliInband{}
			if err := req.Unmarshal(d); err != nil {
				return err
			}
			err = e.send(21, ctx, &vlib.CliInbandReply{Reply: "ran " + req.Cmd})
		default:
			return errors.Errorf("unexpected message id %d", id)
		}
		if err != nil {
			return nil
		}
	}
}

func startMux(t *testing.T, e *testEngine) (*Mux, *pipeChannel) {
	t.Helper()
	client, server := net.Pipe()
	e.conn = server
	if e.seen == nil {
		e.seen = make(chan uint32, 64)
	}
	var g errgroup.Group
	g.Go(e.serve)
	up := &pipeChannel{Conn: client}
	m, err := New(log.NewNopLogger(), up)
	if err != nil {
		t.Fatalf("new mux: %s", err)
	}
	t.Cleanup(func() {
		client.Close()
		server.Close()
		if err := g.Wait(); err != nil {
			t.Errorf("engine: %s", err)
		}
	})
	return m, up
}

func TestClientsGetOwnReplies(t *testing.T) {
	m, _ := startMux(t, &testEngine{})

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		i := i
		cl, err := m.Client()
		if err != nil {
			t.Fatalf("client %d: %s", i, err)
		}
		conn := exchange.New(log.NewNopLogger(), cl)
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				cmd := fmt.Sprintf("show %d.%d", i, j)
				out, err := conn.RunCli(cmd)
				if err != nil {
					return err
				}
				if out != "ran "+cmd {
					return errors.Errorf("client %d got %q for %q", i, out, cmd)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("close: %s", err)
	}
}

func TestContextRestored(t *testing.T) {
	e := &testEngine{}
	m, _ := startMux(t, e)
	cl, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}

	req := make([]byte, 10)
	binary.BigEndian.PutUint16(req, 1)
	binary.BigEndian.PutUint32(req[2:], 7)
	binary.BigEndian.PutUint32(req[6:], 0xdeadbeef)
	if err := frame.Write(cl, req); err != nil {
		t.Fatalf("write: %s", err)
	}
	p, err := frame.Read(cl)
	if err != nil {
		t.Fatalf("read: %s", err)
	}
	if got := binary.BigEndian.Uint32(p[2:6]); got != 0xdeadbeef {
		t.Errorf("want the client's context back, got %#x", got)
	}
	if got, want := <-e.seen, uint32(1<<seqBits|1); got != want {
		t.Errorf("engine saw context %#x, want %#x", got, want)
	}
}

func TestDumpThroughMux(t *testing.T) {
	m, _ := startMux(t, &testEngine{})
	dumper, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	pinger, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := exchange.New(log.NewNopLogger(), pinger).Ping()
		return err
	})
	details, err := exchange.New(log.NewNopLogger(), dumper).Dump(&interfaces.SwInterfaceDump{}, func() api.Message {
		return &interfaces.SwInterfaceDetails{}
	})
	if err != nil {
		t.Fatalf("dump: %s", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("ping: %s", err)
	}

	var names []string
	for _, d := range details {
		names = append(names, d.(*interfaces.SwInterfaceDetails).InterfaceName)
	}
	if diff := cmp.Diff([]string{"local0", "loop0"}, names); diff != "" {
		t.Errorf("details (-want +got):\n%s", diff)
	}
}

func TestUnroutedFramesDropped(t *testing.T) {
	m, _ := startMux(t, &testEngine{stray: true})
	cl, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}

	before := testutil.ToFloat64(stats.dropped)
	out, err := exchange.New(log.NewNopLogger(), cl).RunCli("show run")
	if err != nil {
		t.Fatalf("cli: %s", err)
	}
	if out != "ran show run" {
		t.Errorf("unexpected output %q", out)
	}
	if got := testutil.ToFloat64(stats.dropped) - before; got != 1 {
		t.Errorf("want 1 dropped frame, got %v", got)
	}
}

func TestNonblockingClient(t *testing.T) {
	m, _ := startMux(t, &testEngine{})
	cl, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}
	if err := cl.SetNonblocking(true); err != nil {
		t.Fatalf("set nonblocking: %s", err)
	}
	if _, err := frame.Read(cl); !errors.Is(err, frame.ErrWouldBlock) {
		t.Fatalf("want ErrWouldBlock on an idle client, got %v", err)
	}

	conn := exchange.New(log.NewNopLogger(), cl)
	if err := conn.SendRequest(&memclnt.ControlPing{}); err != nil {
		t.Fatalf("send: %s", err)
	}
	reply := &memclnt.ControlPingReply{}
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := conn.ReceiveReply(reply)
		if err == nil {
			break
		}
		if !errors.Is(err, frame.ErrWouldBlock) {
			t.Fatalf("receive: %s", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("no reply before the deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if reply.VpePID != 99 {
		t.Errorf("want vpe pid 99, got %d", reply.VpePID)
	}
}

func TestClose(t *testing.T) {
	e := &testEngine{}
	m, up := startMux(t, e)
	cl, err := m.Client()
	if err != nil {
		t.Fatalf("client: %s", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %s", err)
	}
	if ctx := <-e.seen; ctx != closeContext {
		t.Errorf("want the drain ping with context %d, got %#x", closeContext, ctx)
	}
	if _, err := frame.Read(cl); !errors.Is(err, ErrClosed) {
		t.Errorf("read after close: want ErrClosed, got %v", err)
	}
	if _, err := m.Client(); !errors.Is(err, ErrClosed) {
		t.Errorf("client after close: want ErrClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close: %s", err)
	}

	// The upstream connection is free for direct use again.
	reply, err := exchange.New(log.NewNopLogger(), up).Ping()
	if err != nil {
		t.Fatalf("direct ping: %s", err)
	}
	if reply.VpePID != 99 {
		t.Errorf("want vpe pid 99, got %d", reply.VpePID)
	}
}

func TestTooManyClients(t *testing.T) {
	m, _ := startMux(t, &testEngine{})
	var first *Client
	for i := 0; i < maxClients; i++ {
		cl, err := m.Client()
		if err != nil {
			t.Fatalf("client %d: %s", i, err)
		}
		if first == nil {
			first = cl
		}
	}
	if _, err := m.Client(); !errors.Is(err, ErrTooManyClients) {
		t.Fatalf("want ErrTooManyClients, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close client: %s", err)
	}
	cl, err := m.Client()
	if err != nil {
		t.Fatalf("client after release: %s", err)
	}
	if cl.slot != first.slot {
		t.Errorf("want the released slot %d reused, got %d", first.slot, cl.slot)
	}
	if err := m.Close(); err != nil {
		t.Errorf("close: %s", err)
	}
}
