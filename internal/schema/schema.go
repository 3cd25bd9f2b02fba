// SPDX-License-Identifier:Apache-2.0

// Package schema compiles VPP .api.json documents into codec layouts,
// so that messages without a Go binding can still be exchanged.
package schema

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/codec"
)

var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnknownType   = errors.New("unknown type")
	ErrCycle         = errors.New("type reference cycle")
)

var baseTypes = map[string]*codec.Type{
	"u8":   codec.U8,
	"u16":  codec.U16,
	"u32":  codec.U32,
	"u64":  codec.U64,
	"i8":   codec.I8,
	"i16":  codec.I16,
	"i32":  codec.I32,
	"i64":  codec.I64,
	"bool": codec.Bool,
	"f64":  codec.F64,
}

var enumWidths = map[string]int{
	"u8":  1,
	"u16": 2,
	"u32": 4,
	"u64": 8,
}

// Schema is a resolved set of types and messages.
type Schema struct {
	// Versions holds the vl_api_version of every loaded document.
	Versions []string
	types    map[string]*codec.Type
	messages map[string]*Message
}

// Message is a message definition with its resolved body layout. The
// header fields (_vl_msg_id, client_index, context) are not part of
// Layout; they are written by the exchange layer according to Type.
type Message struct {
	Name   string
	CRC    string
	Type   api.MessageType
	Layout *codec.Type
}

// ID returns the message identity, "name_crc".
func (m *Message) ID() string {
	return m.Name + "_" + m.CRC
}

// New returns a message of this kind carrying the given field values.
func (m *Message) New(r codec.Record) *Dynamic {
	if r == nil {
		r = codec.Record{}
	}
	return &Dynamic{Message: m, Record: r}
}

// Parse reads a single document.
func Parse(r io.Reader) (*Schema, error) {
	b := newBuilder()
	if err := b.read(r); err != nil {
		return nil, err
	}
	return b.resolve()
}

// Load reads and merges the documents at paths. Definitions may refer
// to types declared in any of them. When several documents declare
// the same name the first one wins, as the engine's generated files
// repeat the types they import.
func Load(paths ...string) (*Schema, error) {
	b := newBuilder()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", p)
		}
		err = b.read(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", p)
		}
	}
	return b.resolve()
}

// Message returns the message called name. Both the bare name and the
// "name_crc" identity are accepted.
func (s *Schema) Message(name string) (*Message, bool) {
	if m, ok := s.messages[name]; ok {
		return m, true
	}
	for _, m := range s.messages {
		if m.ID() == name {
			return m, true
		}
	}
	return nil, false
}

// Messages returns every message, sorted by name.
func (s *Schema) Messages() []*Message {
	ret := make([]*Message, 0, len(s.messages))
	for _, m := range s.messages {
		ret = append(ret, m)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// Type returns the resolved layout of a named type, enum, flag set,
// union or alias.
func (s *Schema) Type(name string) (*codec.Type, bool) {
	t, ok := s.types[typeName(name)]
	return t, ok
}

type builder struct {
	versions  []string
	defs      map[string]*definition
	messages  []*definition
	seen      map[string]bool
	types     map[string]*codec.Type
	resolving map[string]bool
}

func newBuilder() *builder {
	return &builder{
		defs:      map[string]*definition{},
		seen:      map[string]bool{},
		types:     map[string]*codec.Type{},
		resolving: map[string]bool{},
	}
}

func (b *builder) read(r io.Reader) error {
	doc, err := readDocument(r)
	if err != nil {
		return err
	}
	defs, err := doc.definitions()
	if err != nil {
		return err
	}
	if doc.Version != "" {
		b.versions = append(b.versions, doc.Version)
	}
	for _, def := range defs {
		if def.kind == defMessage {
			if b.seen[def.name] {
				continue
			}
			b.seen[def.name] = true
			b.messages = append(b.messages, def)
			continue
		}
		if _, ok := b.defs[def.name]; !ok {
			b.defs[def.name] = def
		}
	}
	return nil
}

func (b *builder) resolve() (*Schema, error) {
	s := &Schema{
		Versions: b.versions,
		types:    b.types,
		messages: map[string]*Message{},
	}
	for name := range b.defs {
		if _, err := b.resolveType(name); err != nil {
			return nil, err
		}
	}
	for _, def := range b.messages {
		m, err := b.message(def)
		if err != nil {
			return nil, errors.Wrapf(err, "message %s", def.name)
		}
		s.messages[m.Name] = m
	}
	return s, nil
}

// typeName maps a field type reference such as "vl_api_address_t" to
// the name it was declared under.
func typeName(ref string) string {
	if strings.HasPrefix(ref, "vl_api_") && strings.HasSuffix(ref, "_t") {
		return strings.TrimSuffix(strings.TrimPrefix(ref, "vl_api_"), "_t")
	}
	return ref
}

func (b *builder) resolveType(ref string) (*codec.Type, error) {
	name := typeName(ref)
	if t, ok := baseTypes[name]; ok {
		return t, nil
	}
	if t, ok := b.types[name]; ok {
		return t, nil
	}
	def, ok := b.defs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", ref)
	}
	if b.resolving[name] {
		return nil, errors.Wrapf(ErrCycle, "%s refers to itself", name)
	}
	b.resolving[name] = true
	defer delete(b.resolving, name)

	t, err := b.build(def)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", def.kind, name)
	}
	b.types[name] = t
	return t, nil
}

func (b *builder) build(def *definition) (*codec.Type, error) {
	switch def.kind {
	case defAlias:
		elem, err := b.resolveType(def.alias.Type)
		if err != nil {
			return nil, err
		}
		if def.alias.Length == nil {
			return elem, nil
		}
		if *def.alias.Length == 0 {
			return codec.NewVarArray(elem), nil
		}
		return codec.NewFixedArray(elem, *def.alias.Length), nil

	case defEnum:
		w, err := enumWidth(def)
		if err != nil {
			return nil, err
		}
		return codec.NewEnum(def.name, w, def.variants...), nil

	case defFlags:
		w, err := enumWidth(def)
		if err != nil {
			return nil, err
		}
		var bits []codec.Variant
		for _, v := range def.variants {
			// Masks combining several flags are dropped.
			if v.Value != 0 && v.Value&(v.Value-1) == 0 {
				bits = append(bits, v)
			}
		}
		return codec.NewFlags(def.name, w, bits...), nil

	case defUnion:
		members, err := b.fields(def.fields)
		if err != nil {
			return nil, err
		}
		return codec.NewUnion(def.name, 0, members...), nil

	case defStruct:
		fields, err := b.fields(def.fields)
		if err != nil {
			return nil, err
		}
		return codec.NewStruct(def.name, fields...), nil
	}
	return nil, errors.Wrapf(ErrInvalidSchema, "%s cannot be used as a type", def.kind)
}

func enumWidth(def *definition) (int, error) {
	t, ok := def.options["enumtype"].(string)
	if !ok {
		return 4, nil
	}
	w, ok := enumWidths[t]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidSchema, "enumtype %q", t)
	}
	return w, nil
}

func (b *builder) fields(defs []fieldDef) ([]codec.Field, error) {
	ret := make([]codec.Field, 0, len(defs))
	for _, f := range defs {
		t, err := b.fieldType(f)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.name)
		}
		ret = append(ret, codec.Field{Name: f.name, Type: t})
	}
	return ret, nil
}

// fieldType applies the field's shape to its element type. A zero
// length means a variable array or string; any count field named by
// the definition is left to the caller to fill.
func (b *builder) fieldType(f fieldDef) (*codec.Type, error) {
	if f.typ == "string" {
		if f.hasLength && f.length > 0 {
			return codec.NewFixedString(f.length), nil
		}
		return codec.NewVarString(), nil
	}
	elem, err := b.resolveType(f.typ)
	if err != nil {
		return nil, err
	}
	switch {
	case !f.hasLength:
		return elem, nil
	case f.length == 0:
		return codec.NewVarArray(elem), nil
	default:
		return codec.NewFixedArray(elem, f.length), nil
	}
}

func (b *builder) message(def *definition) (*Message, error) {
	crc, _ := def.options["crc"].(string)
	if crc == "" {
		return nil, errors.Wrap(ErrInvalidSchema, "no crc")
	}
	m := &Message{
		Name: def.name,
		CRC:  strings.TrimPrefix(crc, "0x"),
	}

	fields := def.fields
	if len(fields) > 0 && fields[0].name == "_vl_msg_id" {
		fields = fields[1:]
	}
	var clientIndex, context bool
	if len(fields) > 0 && fields[0].name == "client_index" {
		clientIndex = true
		fields = fields[1:]
	}
	if len(fields) > 0 && fields[0].name == "context" {
		context = true
		fields = fields[1:]
	}
	switch {
	case clientIndex && context:
		m.Type = api.RequestMessage
	case context:
		m.Type = api.ReplyMessage
	case clientIndex:
		m.Type = api.EventMessage
	default:
		m.Type = api.OtherMessage
	}

	body, err := b.fields(fields)
	if err != nil {
		return nil, err
	}
	m.Layout = codec.NewStruct(def.name, body...)
	if err := m.Layout.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
