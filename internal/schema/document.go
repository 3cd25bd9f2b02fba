// SPDX-License-Identifier:Apache-2.0

package schema

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"go.universe.tf/vppapi/internal/codec"
)

// document is the top level of one .api.json file. Definitions are
// heterogeneous arrays, so they are kept raw until parsed.
type document struct {
	Types     []json.RawMessage `json:"types"`
	Unions    []json.RawMessage `json:"unions"`
	Enums     []json.RawMessage `json:"enums"`
	EnumFlags []json.RawMessage `json:"enumflags"`
	Messages  []json.RawMessage `json:"messages"`
	Aliases   map[string]alias  `json:"aliases"`
	Version   string            `json:"vl_api_version"`
}

type alias struct {
	Type   string `json:"type"`
	Length *int   `json:"length"`
}

type defKind int

const (
	defStruct defKind = iota
	defUnion
	defEnum
	defFlags
	defAlias
	defMessage
)

func (k defKind) String() string {
	switch k {
	case defStruct:
		return "type"
	case defUnion:
		return "union"
	case defEnum:
		return "enum"
	case defFlags:
		return "enumflag"
	case defAlias:
		return "alias"
	case defMessage:
		return "message"
	}
	return "unknown"
}

// definition is one named entry of a document before resolution.
type definition struct {
	kind     defKind
	name     string
	fields   []fieldDef
	variants []codec.Variant
	options  map[string]interface{}
	alias    alias
}

// fieldDef is one [type, name, length?, count?] entry.
type fieldDef struct {
	typ       string
	name      string
	length    int
	hasLength bool
	count     string
}

func readDocument(r io.Reader) (*document, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidSchema, "decoding document: %s", err)
	}
	return &doc, nil
}

func (doc *document) definitions() ([]*definition, error) {
	var ret []*definition
	groups := []struct {
		kind defKind
		raw  []json.RawMessage
	}{
		{defStruct, doc.Types},
		{defUnion, doc.Unions},
		{defEnum, doc.Enums},
		{defFlags, doc.EnumFlags},
		{defMessage, doc.Messages},
	}
	for _, g := range groups {
		for i, raw := range g.raw {
			def, err := parseDefinition(g.kind, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "%s #%d", g.kind, i)
			}
			ret = append(ret, def)
		}
	}
	for name, a := range doc.Aliases {
		ret = append(ret, &definition{kind: defAlias, name: name, alias: a})
	}
	return ret, nil
}

func parseDefinition(kind defKind, raw json.RawMessage) (*definition, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, errors.Wrapf(ErrInvalidSchema, "definition is not an array: %s", err)
	}
	if len(elems) == 0 {
		return nil, errors.Wrap(ErrInvalidSchema, "empty definition")
	}
	def := &definition{kind: kind, options: map[string]interface{}{}}
	if err := json.Unmarshal(elems[0], &def.name); err != nil {
		return nil, errors.Wrapf(ErrInvalidSchema, "definition name: %s", err)
	}

	for _, e := range elems[1:] {
		switch firstByte(e) {
		case '{':
			if err := json.Unmarshal(e, &def.options); err != nil {
				return nil, errors.Wrapf(ErrInvalidSchema, "%s options: %s", def.name, err)
			}
		case '[':
			if kind == defEnum || kind == defFlags {
				v, err := parseVariant(e)
				if err != nil {
					return nil, errors.Wrap(err, def.name)
				}
				def.variants = append(def.variants, v)
				continue
			}
			f, err := parseField(e)
			if err != nil {
				return nil, errors.Wrap(err, def.name)
			}
			def.fields = append(def.fields, f)
		default:
			return nil, errors.Wrapf(ErrInvalidSchema, "%s: unexpected element %s", def.name, e)
		}
	}
	return def, nil
}

func parseVariant(raw json.RawMessage) (codec.Variant, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) != 2 {
		return codec.Variant{}, errors.Wrapf(ErrInvalidSchema, "variant %s", raw)
	}
	var v codec.Variant
	if err := json.Unmarshal(elems[0], &v.Name); err != nil {
		return codec.Variant{}, errors.Wrapf(ErrInvalidSchema, "variant name %s", elems[0])
	}
	if err := json.Unmarshal(elems[1], &v.Value); err != nil {
		return codec.Variant{}, errors.Wrapf(ErrInvalidSchema, "variant %s value %s", v.Name, elems[1])
	}
	return v, nil
}

func parseField(raw json.RawMessage) (fieldDef, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) < 2 {
		return fieldDef{}, errors.Wrapf(ErrInvalidSchema, "field %s", raw)
	}
	var f fieldDef
	if err := json.Unmarshal(elems[0], &f.typ); err != nil {
		return fieldDef{}, errors.Wrapf(ErrInvalidSchema, "field type %s", elems[0])
	}
	if err := json.Unmarshal(elems[1], &f.name); err != nil {
		return fieldDef{}, errors.Wrapf(ErrInvalidSchema, "field name %s", elems[1])
	}
	for _, e := range elems[2:] {
		switch c := firstByte(e); {
		case c == '{':
			// Field options such as defaults do not affect the layout.
		case c == '"':
			if err := json.Unmarshal(e, &f.count); err != nil {
				return fieldDef{}, errors.Wrapf(ErrInvalidSchema, "field %s count %s", f.name, e)
			}
		default:
			if err := json.Unmarshal(e, &f.length); err != nil || f.length < 0 {
				return fieldDef{}, errors.Wrapf(ErrInvalidSchema, "field %s length %s", f.name, e)
			}
			f.hasLength = true
		}
	}
	return f, nil
}

func firstByte(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
