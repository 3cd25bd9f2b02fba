// SPDX-License-Identifier:Apache-2.0

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/binapi/interfaces"
	"go.universe.tf/vppapi/internal/binapi/ip"
	"go.universe.tf/vppapi/internal/binapi/iptypes"
	"go.universe.tf/vppapi/internal/binapi/memclnt"
	"go.universe.tf/vppapi/internal/binapi/vlib"
	"go.universe.tf/vppapi/internal/ipfamily"
	"go.universe.tf/vppapi/internal/version"
)

// withSession runs fn against a fresh connection.
func (a *app) withSession(fn func(s *session) error) error {
	s, err := a.connect()
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

func parseIndex(s string) (interfaces.InterfaceIndex, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid interface index %q", s)
	}
	return interfaces.InterfaceIndex(v), nil
}

func (a *app) pingCmd() *cobra.Command {
	var clients int
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send a control ping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clients < 1 {
				return errors.Errorf("--clients must be at least 1, got %d", clients)
			}
			return a.withSession(func(s *session) error {
				var (
					reply *memclnt.ControlPingReply
					err   error
				)
				switch {
				case clients > 1:
					reply, err = s.pingShared(clients)
				case s.cfg.Nonblocking:
					reply = &memclnt.ControlPingReply{}
					if err = s.call(&memclnt.ControlPing{}, reply); err == nil {
						err = api.RetvalToError(reply.Retval)
					}
				default:
					reply, err = s.conn.Ping()
				}
				if err != nil {
					return err
				}
				view := map[string]uint32{"client_index": reply.ClientIndex, "vpe_pid": reply.VpePID}
				if clients > 1 {
					view["clients"] = uint32(clients)
				}
				return a.print(cmd, view, func(w io.Writer) error {
					if _, err := fmt.Fprintf(w, "client_index: %d\nvpe_pid: %d\n", reply.ClientIndex, reply.VpePID); err != nil {
						return err
					}
					if clients > 1 {
						_, err := fmt.Fprintf(w, "clients: %d\n", clients)
						return err
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().IntVar(&clients, "clients", 1, "number of clients pinging concurrently over one shared connection")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the engine version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				reply := &vlib.ShowVersionReply{}
				if err := s.call(&vlib.ShowVersion{}, reply); err != nil {
					return err
				}
				if err := api.RetvalToError(reply.Retval); err != nil {
					return err
				}
				view := struct {
					Client  version.Info      `yaml:"client"`
					Program string            `yaml:"program"`
					Version string            `yaml:"version"`
					Build   map[string]string `yaml:"build"`
				}{
					Client:  version.Get(),
					Program: reply.Program,
					Version: reply.Version,
					Build:   map[string]string{"date": reply.BuildDate, "directory": reply.BuildDirectory},
				}
				return a.print(cmd, view, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %s\nbuilt %s in %s\nvppctl %s\n", reply.Program, reply.Version, reply.BuildDate, reply.BuildDirectory, version.String())
					return err
				})
			})
		},
	}
}

func (a *app) cliCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cli <command>...",
		Short: "Run a debug CLI command on the engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			return a.withSession(func(s *session) error {
				var (
					out string
					err error
				)
				if s.cfg.Nonblocking {
					reply := &vlib.CliInbandReply{}
					if err = s.call(&vlib.CliInband{Cmd: line}, reply); err == nil {
						err = api.RetvalToError(reply.Retval)
					}
					out = reply.Reply
				} else {
					out, err = s.conn.RunCli(line)
				}
				if err != nil {
					return err
				}
				return a.print(cmd, map[string]string{"command": line, "reply": out}, func(w io.Writer) error {
					_, err := io.WriteString(w, out)
					return err
				})
			})
		},
	}
}

type interfaceView struct {
	Index   uint32 `yaml:"sw_if_index"`
	Name    string `yaml:"name"`
	DevType string `yaml:"dev_type,omitempty"`
	Type    string `yaml:"type"`
	MAC     string `yaml:"mac"`
	Flags   string `yaml:"flags"`
	Duplex  string `yaml:"duplex"`
	Speed   uint32 `yaml:"link_speed"`
	MTU     uint32 `yaml:"mtu"`
	Tag     string `yaml:"tag,omitempty"`
}

func newInterfaceView(d *interfaces.SwInterfaceDetails) interfaceView {
	return interfaceView{
		Index:   uint32(d.SwIfIndex),
		Name:    d.InterfaceName,
		DevType: d.InterfaceDevType,
		Type:    d.Type.String(),
		MAC:     d.L2Address.String(),
		Flags:   d.Flags.String(),
		Duplex:  d.LinkDuplex.String(),
		Speed:   d.LinkSpeed,
		MTU:     d.Mtu[0],
		Tag:     d.Tag,
	}
}

func (a *app) interfacesCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "interfaces",
		Short: "List interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				req := &interfaces.SwInterfaceDump{
					SwIfIndex:       interfaces.AnyInterface,
					NameFilterValid: name != "",
					NameFilter:      name,
				}
				msgs, err := s.dump(req, func() api.Message { return &interfaces.SwInterfaceDetails{} })
				if err != nil {
					return err
				}
				views := make([]interfaceView, 0, len(msgs))
				for _, m := range msgs {
					views = append(views, newInterfaceView(m.(*interfaces.SwInterfaceDetails)))
				}
				return a.print(cmd, views, func(w io.Writer) error {
					rows := make([][]string, 0, len(views))
					for _, v := range views {
						rows = append(rows, []string{strconv.FormatUint(uint64(v.Index), 10), v.Name, v.Type, v.MAC, v.Flags, strconv.FormatUint(uint64(v.MTU), 10), v.Tag})
					}
					return table(w, []string{"IDX", "NAME", "TYPE", "MAC", "FLAGS", "MTU", "TAG"}, rows)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only list interfaces whose name contains this")
	return cmd
}

func (a *app) loopbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loopback",
		Short: "Create or delete loopback interfaces",
	}

	var mac string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a loopback interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &interfaces.CreateLoopback{}
			if mac != "" {
				m, err := interfaces.ParseMacAddress(mac)
				if err != nil {
					return err
				}
				req.MacAddress = m
			}
			return a.withSession(func(s *session) error {
				reply := &interfaces.CreateLoopbackReply{}
				if err := s.call(req, reply); err != nil {
					return err
				}
				if err := api.RetvalToError(reply.Retval); err != nil {
					return err
				}
				return a.print(cmd, map[string]uint32{"sw_if_index": uint32(reply.SwIfIndex)}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "created loopback %d\n", reply.SwIfIndex)
					return err
				})
			})
		},
	}
	create.Flags().StringVar(&mac, "mac", "", "MAC address, engine assigned if unset")

	del := &cobra.Command{
		Use:   "delete <sw_if_index>",
		Short: "Delete a loopback interface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return a.simple(&interfaces.DeleteLoopback{SwIfIndex: idx}, interfaces.NewDeleteLoopbackReply())
		},
	}

	cmd.AddCommand(create, del)
	return cmd
}

// simple performs a call whose reply only carries a retval.
func (a *app) simple(req api.Message, reply *interfaces.Reply) error {
	return a.withSession(func(s *session) error {
		if err := s.call(req, reply); err != nil {
			return err
		}
		return api.RetvalToError(reply.Retval)
	})
}

func (a *app) setFlagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-flags <sw_if_index> [admin-up|link-up]...",
		Short: "Set the status flags of an interface; no flags sets it down",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			flags, err := interfaces.ParseIfStatusFlags(args[1:]...)
			if err != nil {
				return err
			}
			return a.simple(&interfaces.SwInterfaceSetFlags{SwIfIndex: idx, Flags: flags}, interfaces.NewSwInterfaceSetFlagsReply())
		},
	}
}

func (a *app) addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage interface addresses",
	}

	addDel := func(isAdd bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			p, err := iptypes.ParsePrefix(args[1])
			if err != nil {
				return errors.Wrapf(err, "invalid prefix %q", args[1])
			}
			req := &interfaces.SwInterfaceAddDelAddress{SwIfIndex: idx, IsAdd: isAdd, Prefix: iptypes.AddressWithPrefix(p)}
			return a.simple(req, interfaces.NewSwInterfaceAddDelAddressReply())
		}
	}
	add := &cobra.Command{
		Use:   "add <sw_if_index> <prefix>",
		Short: "Add an address to an interface",
		Args:  cobra.ExactArgs(2),
		RunE:  addDel(true),
	}
	del := &cobra.Command{
		Use:   "del <sw_if_index> <prefix>",
		Short: "Remove an address from an interface",
		Args:  cobra.ExactArgs(2),
		RunE:  addDel(false),
	}

	var family string
	list := &cobra.Command{
		Use:   "list <sw_if_index>",
		Short: "List the addresses of an interface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			fam, err := ipfamily.Parse(family)
			if err != nil {
				return err
			}
			return a.withSession(func(s *session) error {
				var prefixes []iptypes.Prefix
				for _, af := range fam.AddressFamilies() {
					req := &ip.IPAddressDump{SwIfIndex: uint32(idx), IsIPv6: af == iptypes.AddressIP6}
					msgs, err := s.dump(req, func() api.Message { return &ip.IPAddressDetails{} })
					if err != nil {
						return errors.Wrapf(err, "listing %s addresses", af)
					}
					for _, m := range msgs {
						prefixes = append(prefixes, iptypes.Prefix(m.(*ip.IPAddressDetails).Prefix))
					}
				}
				view := struct {
					Family   string   `yaml:"family"`
					Prefixes []string `yaml:"prefixes"`
				}{Family: ipfamily.Unknown.String(), Prefixes: []string{}}
				if got, err := ipfamily.ForPrefixes(prefixes); err == nil {
					view.Family = got.String()
				}
				for _, p := range prefixes {
					view.Prefixes = append(view.Prefixes, p.String())
				}
				return a.print(cmd, view, func(w io.Writer) error {
					for _, p := range view.Prefixes {
						if _, err := fmt.Fprintln(w, p); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
	list.Flags().StringVar(&family, "family", string(ipfamily.IPv4), "address family to list: ipv4, ipv6 or dual")

	cmd.AddCommand(add, del, list)
	return cmd
}
