// SPDX-License-Identifier:Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/codec"
	"go.universe.tf/vppapi/internal/schema"
)

func (a *app) loadSchema() (*schema.Schema, error) {
	if len(a.cfg.APIFiles) == 0 {
		return nil, errors.New("no .api.json files given, use --api or api_files in the config")
	}
	return schema.Load(a.cfg.APIFiles...)
}

func (a *app) callCmd() *cobra.Command {
	var details string
	cmd := &cobra.Command{
		Use:   "call <message> [json-body]",
		Short: "Send any message described by the loaded .api.json files",
		Long: `Send any message described by the loaded .api.json files. The body is a
JSON object keyed by field name; missing fields are sent as zero. Unions
are given as an object with a single member. The reply is the message
named <message>_reply, or with --dump, every <details> message up to the
end of the dump.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			reqMsg, ok := s.Message(args[0])
			if !ok {
				return errors.Errorf("no message %q in the loaded files", args[0])
			}
			body := "{}"
			if len(args) == 2 {
				body = args[1]
			}
			rec, err := parseBody(body, reqMsg.Layout)
			if err != nil {
				return errors.Wrapf(err, "body of %s", reqMsg.Name)
			}
			req := reqMsg.New(rec)

			if details != "" {
				detMsg, ok := s.Message(details)
				if !ok {
					return errors.Errorf("no message %q in the loaded files", details)
				}
				return a.withSession(func(sess *session) error {
					msgs, err := sess.dump(req, func() api.Message { return detMsg.New(nil) })
					if err != nil {
						return err
					}
					views := make([]interface{}, 0, len(msgs))
					for _, m := range msgs {
						views = append(views, present(m.(*schema.Dynamic).Record))
					}
					return a.print(cmd, views, func(w io.Writer) error {
						for _, v := range views {
							if err := writeJSON(w, v); err != nil {
								return err
							}
						}
						return nil
					})
				})
			}

			replyName := strings.TrimSuffix(reqMsg.Name, "_dump") + "_reply"
			replyMsg, ok := s.Message(replyName)
			if !ok {
				return errors.Errorf("no reply %q in the loaded files, use --dump for dump messages", replyName)
			}
			return a.withSession(func(sess *session) error {
				reply := replyMsg.New(nil)
				if err := sess.call(req, reply); err != nil {
					return err
				}
				view := present(reply.Record)
				return a.print(cmd, view, func(w io.Writer) error {
					return writeJSON(w, view)
				})
			})
		},
	}
	cmd.Flags().StringVar(&details, "dump", "", "collect this details message until the end of the dump")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [.api.json]...",
		Short: "Show the message layouts resolved from .api.json files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.APIFiles = args
			}
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			type messageView struct {
				ID     string   `yaml:"id"`
				Type   string   `yaml:"type"`
				Size   string   `yaml:"size"`
				Fields []string `yaml:"fields"`
			}
			var views []messageView
			for _, m := range s.Messages() {
				size := "variable"
				if n, ok := m.Layout.Size(); ok {
					size = strconv.Itoa(n)
				}
				v := messageView{ID: m.ID(), Type: m.Type.String(), Size: size}
				for _, f := range m.Layout.Fields {
					v.Fields = append(v.Fields, f.Name+" "+describe(f.Type))
				}
				views = append(views, v)
			}
			return a.print(cmd, views, func(w io.Writer) error {
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.ID, v.Type, v.Size, strings.Join(v.Fields, ", ")})
				}
				return table(w, []string{"MESSAGE", "TYPE", "SIZE", "FIELDS"}, rows)
			})
		},
	}
}

// describe renders a layout the way the .api.json files spell it.
func describe(t *codec.Type) string {
	switch t.Kind {
	case codec.KindFixedString:
		return fmt.Sprintf("string[%d]", t.Len)
	case codec.KindVarString:
		return "string[]"
	case codec.KindFixedArray:
		return fmt.Sprintf("%s[%d]", describe(t.Elem), t.Len)
	case codec.KindVarArray:
		return describe(t.Elem) + "[]"
	}
	return t.Name
}

// parseBody decodes a JSON object into a record for layout t.
func parseBody(body string, t *codec.Type) (codec.Record, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	conv, err := fromJSON(v, t)
	if err != nil {
		return nil, err
	}
	rec, ok := conv.(codec.Record)
	if !ok {
		return nil, errors.Errorf("want a JSON object, got %T", v)
	}
	return rec, nil
}

// fromJSON converts decoded JSON into the value model of t. Numbers,
// strings and booleans are left to the codec.
func fromJSON(v interface{}, t *codec.Type) (interface{}, error) {
	switch t.Kind {
	case codec.KindStruct:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return v, nil
		}
		rec := make(codec.Record, len(obj))
		for k, fv := range obj {
			var ft *codec.Type
			for _, f := range t.Fields {
				if f.Name == k {
					ft = f.Type
				}
			}
			if ft == nil {
				// Left in so that the codec reports the unknown field.
				rec[k] = fv
				continue
			}
			c, err := fromJSON(fv, ft)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", t.Name, k)
			}
			rec[k] = c
		}
		return rec, nil

	case codec.KindUnion:
		obj, ok := v.(map[string]interface{})
		if !ok || len(obj) != 1 {
			return nil, errors.Errorf("union %s must be an object with one member", t.Name)
		}
		for member, mv := range obj {
			m, ok := t.Member(member)
			if !ok {
				return nil, errors.Errorf("union %s has no member %q", t.Name, member)
			}
			c, err := fromJSON(mv, m.Type)
			if err != nil {
				return nil, err
			}
			return codec.WriteAs(t, member, c)
		}

	case codec.KindFixedArray, codec.KindVarArray:
		arr, ok := v.([]interface{})
		if !ok {
			return v, nil
		}
		ret := make([]interface{}, len(arr))
		for i, e := range arr {
			c, err := fromJSON(e, t.Elem)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			ret[i] = c
		}
		return ret, nil
	}
	return v, nil
}

// present turns decoded values into plain strings, numbers, lists and
// maps for printing.
func present(v interface{}) interface{} {
	switch x := v.(type) {
	case codec.Record:
		m := make(map[string]interface{}, len(x))
		for k, fv := range x {
			m[k] = present(fv)
		}
		return m
	case []interface{}:
		ret := make([]interface{}, len(x))
		for i, e := range x {
			ret[i] = present(e)
		}
		return ret
	case codec.FixedString:
		return x.String()
	case codec.EnumValue:
		return x.Name
	case codec.FlagSet:
		return []string(x)
	case codec.Union:
		return hex.EncodeToString(x)
	case []byte:
		return hex.EncodeToString(x)
	}
	return v
}

func writeJSON(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
