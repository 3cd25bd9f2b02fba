// SPDX-License-Identifier:Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/exchange"
	"go.universe.tf/vppapi/internal/frame"
	"go.universe.tf/vppapi/internal/logging"
	"go.universe.tf/vppapi/internal/mux"
	"go.universe.tf/vppapi/internal/socket"
	"go.universe.tf/vppapi/internal/version"
)

// pollInterval is how often a non-blocking receive is retried.
const pollInterval = 10 * time.Millisecond

var errTimeout = errors.New("timed out waiting for the engine")

// app holds the state shared by all commands of one run.
type app struct {
	configPath string
	metrics    bool
	output     string

	cfg    *config
	logger log.Logger
}

func main() {
	a := &app{}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	def := defaultConfig()
	cmd := &cobra.Command{
		Use:           "vppctl",
		Short:         "Talk to the VPP binary API over its socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			applyEnv(cfg)
			if err := applyFlags(cfg, cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			if a.output != "text" && a.output != "yaml" {
				return errors.Errorf("unknown output format %q, must be text or yaml", a.output)
			}
			logger, err := logging.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			level.Debug(logger).Log("version", version.Get().Version, "commit", version.Get().Commit, "socket", cfg.Socket, "msg", "vppctl starting "+version.String())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.metrics {
				return nil
			}
			return writeMetrics(cmd.ErrOrStderr())
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&a.configPath, "config", "", "config file (.toml, .yaml or .json)")
	fs.String("socket", def.Socket, "engine API socket")
	fs.String("client-name", def.ClientName, "name to register with the engine")
	fs.String("log-level", def.LogLevel, fmt.Sprintf("log level. must be one of: [%s]", strings.Join(logging.Levels, ", ")))
	fs.Bool("nonblocking", false, "poll for replies instead of waiting on the socket")
	fs.Duration("timeout", def.Timeout, "give up on the engine after this long (0 waits forever)")
	fs.StringSlice("api", nil, ".api.json files describing messages for call and schema")
	fs.BoolVar(&a.metrics, "metrics", false, "print client metrics to stderr on exit")
	fs.StringVarP(&a.output, "output", "o", "text", "output format: text or yaml")

	cmd.AddCommand(
		a.pingCmd(),
		a.versionCmd(),
		a.cliCmd(),
		a.interfacesCmd(),
		a.loopbackCmd(),
		a.setFlagsCmd(),
		a.addressCmd(),
		a.callCmd(),
		a.schemaCmd(),
	)
	return cmd
}

// session is one registered connection to the engine.
type session struct {
	cfg    *config
	logger log.Logger
	sock   *socket.Conn
	conn   *exchange.Conn
}

func (a *app) connect() (*session, error) {
	sock, err := socket.Dial(a.logger, socket.Config{Path: a.cfg.Socket, DialTimeout: a.cfg.Timeout})
	if err != nil {
		return nil, err
	}
	if a.cfg.Timeout > 0 {
		if err := sock.SetReadDeadline(time.Now().Add(a.cfg.Timeout)); err != nil {
			sock.Close()
			return nil, err
		}
	}
	if err := sock.Connect(a.cfg.ClientName, a.cfg.Prefix, a.cfg.QueueLength); err != nil {
		sock.Close()
		return nil, err
	}
	s := &session{
		cfg:    a.cfg,
		logger: a.logger,
		sock:   sock,
		conn:   exchange.New(a.logger, sock),
	}
	if a.cfg.Nonblocking {
		if err := s.conn.SetNonblocking(true); err != nil {
			s.close()
			return nil, err
		}
	}
	return s, nil
}

func (s *session) close() {
	if err := s.sock.Disconnect(); err != nil {
		level.Warn(s.logger).Log("op", "disconnect", "error", err, "msg", "closing connection failed")
	}
}

// call performs one request/reply exchange. In non-blocking mode the
// reply is polled for until the configured timeout.
func (s *session) call(req, reply api.Message) error {
	if !s.cfg.Nonblocking {
		return s.conn.Call(req, reply)
	}
	if _, err := s.conn.Resolve(reply); err != nil {
		return err
	}
	if err := s.conn.SendRequest(req); err != nil {
		return err
	}
	deadline := time.Now().Add(s.cfg.Timeout)
	for polls := 1; ; polls++ {
		err := s.conn.ReceiveReply(reply)
		if !errors.Is(err, frame.ErrWouldBlock) {
			return err
		}
		if s.cfg.Timeout > 0 && time.Now().After(deadline) {
			return errors.Wrapf(errTimeout, "no %s after %s", api.ID(reply), s.cfg.Timeout)
		}
		if polls%100 == 0 {
			level.Debug(s.logger).Log("op", "poll", "message", api.ID(reply), "polls", polls, "msg", "still waiting for reply")
		}
		time.Sleep(pollInterval)
	}
}

// pingShared pings from n clients multiplexed over the session's
// connection, and returns the last reply.
func (s *session) pingShared(n int) (*memclnt.ControlPingReply, error) {
	m, err := mux.New(s.logger, s.sock)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Close(); err != nil {
			level.Warn(s.logger).Log("op", "ping", "error", err, "msg", "closing shared connection failed")
		}
	}()

	replies := make([]*memclnt.ControlPingReply, n)
	var g errgroup.Group
	for i := range replies {
		i := i
		cl, err := m.Client()
		if err != nil {
			return nil, err
		}
		conn := exchange.New(s.logger, cl)
		g.Go(func() error {
			r, err := conn.Ping()
			replies[i] = r
			return errors.Wrapf(err, "client %d", i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies[n-1], nil
}

// dump collects the details for req. A dump cannot resume after a
// would-block, so it always reads in blocking mode, bounded by the
// session deadline.
func (s *session) dump(req api.Message, newDetails func() api.Message) ([]api.Message, error) {
	if s.cfg.Nonblocking {
		if err := s.conn.SetNonblocking(false); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.conn.SetNonblocking(true); err != nil {
				level.Error(s.logger).Log("op", "dump", "error", err, "msg", "restoring non-blocking mode failed")
			}
		}()
	}
	return s.conn.Dump(req, newDetails)
}
