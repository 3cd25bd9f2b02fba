// SPDX-License-Identifier:Apache-2.0

// Package codec converts values to and from the binary API wire
// format. Encoding is driven entirely by a layout (a *Type); the wire
// bytes carry no type information of their own.
package codec

import (
	"github.com/pkg/errors"
)

// Kind is the wire shape of a field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindBool
	KindF64
	KindFixedString
	KindVarString
	KindFixedArray
	KindVarArray
	KindEnum
	KindFlags
	KindUnion
	KindStruct
)

var kindNames = map[Kind]string{
	KindU8:          "u8",
	KindU16:         "u16",
	KindU32:         "u32",
	KindU64:         "u64",
	KindI8:          "i8",
	KindI16:         "i16",
	KindI32:         "i32",
	KindI64:         "i64",
	KindBool:        "bool",
	KindF64:         "f64",
	KindFixedString: "fixed string",
	KindVarString:   "string",
	KindFixedArray:  "fixed array",
	KindVarArray:    "variable array",
	KindEnum:        "enum",
	KindFlags:       "flags",
	KindUnion:       "union",
	KindStruct:      "struct",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

// Variant is one named value of an enum or flag set.
type Variant struct {
	Name  string
	Value uint64
}

// Field is a named member of a struct or union.
type Field struct {
	Name string
	Type *Type
}

// Type is the layout of one field kind.
type Type struct {
	Name string
	Kind Kind
	// Len is the capacity of a fixed string, or the element count of a
	// fixed array.
	Len int
	// Width is the encoded size in bytes of an enum or flag set.
	Width int
	// UnionSize is the byte size of a union. Zero means the largest member.
	UnionSize int
	Elem      *Type
	Fields    []Field
	Variants  []Variant
	Members   []Field
}

var (
	U8   = &Type{Name: "u8", Kind: KindU8}
	U16  = &Type{Name: "u16", Kind: KindU16}
	U32  = &Type{Name: "u32", Kind: KindU32}
	U64  = &Type{Name: "u64", Kind: KindU64}
	I8   = &Type{Name: "i8", Kind: KindI8}
	I16  = &Type{Name: "i16", Kind: KindI16}
	I32  = &Type{Name: "i32", Kind: KindI32}
	I64  = &Type{Name: "i64", Kind: KindI64}
	Bool = &Type{Name: "bool", Kind: KindBool}
	F64  = &Type{Name: "f64", Kind: KindF64}
)

func NewFixedString(n int) *Type {
	return &Type{Name: "string", Kind: KindFixedString, Len: n}
}

func NewVarString() *Type {
	return &Type{Name: "string", Kind: KindVarString}
}

func NewFixedArray(elem *Type, n int) *Type {
	return &Type{Name: elem.Name, Kind: KindFixedArray, Elem: elem, Len: n}
}

func NewVarArray(elem *Type) *Type {
	return &Type{Name: elem.Name, Kind: KindVarArray, Elem: elem}
}

func NewEnum(name string, width int, variants ...Variant) *Type {
	return &Type{Name: name, Kind: KindEnum, Width: width, Variants: variants}
}

func NewFlags(name string, width int, variants ...Variant) *Type {
	return &Type{Name: name, Kind: KindFlags, Width: width, Variants: variants}
}

func NewUnion(name string, size int, members ...Field) *Type {
	return &Type{Name: name, Kind: KindUnion, UnionSize: size, Members: members}
}

func NewStruct(name string, fields ...Field) *Type {
	return &Type{Name: name, Kind: KindStruct, Fields: fields}
}

// Narrow returns a copy of the enum t that is encoded at a smaller
// width. Values that do not fit the new width fail to encode with
// ErrOverflow.
func Narrow(t *Type, width int) *Type {
	n := *t
	n.Width = width
	return &n
}

func scalarWidth(k Kind) int {
	switch k {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	}
	return 0
}

// Size returns the encoded size of t. ok is false when the size
// depends on the value.
func (t *Type) Size() (size int, ok bool) {
	switch t.Kind {
	case KindVarString, KindVarArray:
		return 0, false
	case KindFixedString:
		return t.Len, true
	case KindFixedArray:
		n, ok := t.Elem.Size()
		return n * t.Len, ok
	case KindEnum, KindFlags:
		return t.Width, true
	case KindUnion:
		return t.unionSize(), true
	case KindStruct:
		for _, f := range t.Fields {
			n, ok := f.Type.Size()
			if !ok {
				return 0, false
			}
			size += n
		}
		return size, true
	}
	return scalarWidth(t.Kind), true
}

func (t *Type) unionSize() int {
	if t.UnionSize > 0 {
		return t.UnionSize
	}
	max := 0
	for _, m := range t.Members {
		if n, ok := m.Type.Size(); ok && n > max {
			max = n
		}
	}
	return max
}

// Variant looks up an enum or flag variant by name.
func (t *Type) Variant(name string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantOf looks up an enum or flag variant by value.
func (t *Type) VariantOf(value uint64) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Value == value {
			return v, true
		}
	}
	return Variant{}, false
}

// Member looks up a union member by name.
func (t *Type) Member(name string) (Field, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Field{}, false
}

func (t *Type) hasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate checks that t is a well formed message layout. In
// particular, a variable array carries no count on the wire, so it
// may only appear as the very last field.
func (t *Type) Validate() error {
	return t.validate(true)
}

// checkTrailing reports a field of the struct t, other than the last,
// that ends in a variable array.
func (t *Type) checkTrailing() error {
	for i, f := range t.Fields {
		if i < len(t.Fields)-1 && endsVariable(f.Type) {
			return errors.Wrapf(ErrInvalidLayout, "%s.%s: variable array is not the last field (field %d of %d)", t.Name, f.Name, i+1, len(t.Fields))
		}
	}
	return nil
}

func endsVariable(t *Type) bool {
	switch t.Kind {
	case KindVarArray:
		return true
	case KindFixedArray:
		return endsVariable(t.Elem)
	case KindStruct:
		return len(t.Fields) > 0 && endsVariable(t.Fields[len(t.Fields)-1].Type)
	}
	return false
}

func (t *Type) validate(last bool) error {
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindI8, KindI16, KindI32, KindI64, KindBool, KindF64, KindVarString:
		return nil

	case KindFixedString:
		if t.Len < 1 {
			return errors.Wrapf(ErrInvalidLayout, "fixed string with capacity %d", t.Len)
		}
		return nil

	case KindFixedArray:
		if t.Len < 0 {
			return errors.Wrapf(ErrInvalidLayout, "fixed array %s with length %d", t.Name, t.Len)
		}
		return t.Elem.validate(false)

	case KindVarArray:
		if !last {
			return errors.Wrapf(ErrInvalidLayout, "variable array of %s is not the last field", t.Name)
		}
		if n, ok := t.Elem.Size(); ok && n == 0 {
			return errors.Wrapf(ErrInvalidLayout, "variable array of zero sized %s", t.Name)
		}
		return t.Elem.validate(false)

	case KindEnum, KindFlags:
		if scalarWidthOK(t.Width) {
			for _, v := range t.Variants {
				if t.Width < 8 && v.Value >= 1<<(8*uint(t.Width)) {
					return errors.Wrapf(ErrInvalidLayout, "%s variant %s=%d does not fit %d bytes", t.Name, v.Name, v.Value, t.Width)
				}
				if t.Kind == KindFlags && v.Value&(v.Value-1) != 0 {
					return errors.Wrapf(ErrInvalidLayout, "flag %s variant %s=%#x is not a single bit", t.Name, v.Name, v.Value)
				}
			}
			return nil
		}
		return errors.Wrapf(ErrInvalidLayout, "%s %s with width %d", t.Kind, t.Name, t.Width)

	case KindUnion:
		max := 0
		for _, m := range t.Members {
			if err := m.Type.validate(false); err != nil {
				return errors.Wrapf(err, "union %s member %s", t.Name, m.Name)
			}
			n, ok := m.Type.Size()
			if !ok {
				return errors.Wrapf(ErrInvalidLayout, "union %s member %s has no fixed size", t.Name, m.Name)
			}
			if n > max {
				max = n
			}
		}
		if t.UnionSize > 0 && max > t.UnionSize {
			return errors.Wrapf(ErrInvalidLayout, "union %s declares %d bytes, largest member needs %d", t.Name, t.UnionSize, max)
		}
		return nil

	case KindStruct:
		for i, f := range t.Fields {
			if err := f.Type.validate(last && i == len(t.Fields)-1); err != nil {
				return errors.Wrapf(err, "%s.%s", t.Name, f.Name)
			}
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidLayout, "type %q has no kind", t.Name)
}

func scalarWidthOK(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}
