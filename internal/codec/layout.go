// SPDX-License-Identifier:Apache-2.0

package codec

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/safeconvert"
)

// Encode returns the wire encoding of v laid out as t.
func Encode(v interface{}, t *Type) ([]byte, error) {
	e := NewEncoder(nil)
	if err := EncodeTo(e, v, t); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Decode decodes a value laid out as t from the start of b, and
// returns it along with the number of bytes consumed.
func Decode(b []byte, t *Type) (interface{}, int, error) {
	d := NewDecoder(b)
	v, err := DecodeFrom(d, t)
	if err != nil {
		return nil, d.Offset(), err
	}
	return v, d.Offset(), nil
}

// EncodeTo appends v laid out as t to e. A nil v encodes the zero
// value of t.
func EncodeTo(e *Encoder, v interface{}, t *Type) error {
	if v == nil {
		encodeZero(e, t)
		return nil
	}

	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64:
		u, err := toUint64(v)
		if err != nil {
			return err
		}
		return e.PutUint(u, scalarWidth(t.Kind))

	case KindI8, KindI16, KindI32, KindI64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		w := scalarWidth(t.Kind)
		if _, err := safeconvert.Signed(i, w); err != nil {
			return errors.Wrap(ErrOverflow, err.Error())
		}
		switch w {
		case 1:
			e.PutInt8(int8(i))
		case 2:
			e.PutInt16(int16(i))
		case 4:
			e.PutInt32(int32(i))
		default:
			e.PutInt64(i)
		}
		return nil

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return invalid(v, t)
		}
		e.PutBool(b)
		return nil

	case KindF64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		e.PutFloat64(f)
		return nil

	case KindFixedString:
		switch s := v.(type) {
		case string:
			return e.PutFixedString(s, t.Len)
		case FixedString:
			return e.PutFixedString(s.String(), t.Len)
		}
		return invalid(v, t)

	case KindVarString:
		s, ok := v.(string)
		if !ok {
			return invalid(v, t)
		}
		return e.PutVarString(s)

	case KindFixedArray, KindVarArray:
		return encodeArray(e, v, t)

	case KindEnum:
		ev, err := enumValue(v, t)
		if err != nil {
			return err
		}
		return e.PutUint(ev, t.Width)

	case KindFlags:
		var mask uint64
		switch s := v.(type) {
		case FlagSet:
			m, err := FlagsValue(s, t)
			if err != nil {
				return err
			}
			mask = m
		case []string:
			m, err := FlagsValue(FlagSet(s), t)
			if err != nil {
				return err
			}
			mask = m
		default:
			m, err := toUint64(v)
			if err != nil {
				return err
			}
			// Validate the raw mask against the declared variants.
			if _, err := SplitFlags(m, t); err != nil {
				return err
			}
			mask = m
		}
		return e.PutUint(mask, t.Width)

	case KindUnion:
		var b []byte
		switch u := v.(type) {
		case Union:
			b = u
		case []byte:
			b = u
		default:
			return invalid(v, t)
		}
		return errors.Wrapf(e.PutBytes(b, t.unionSize()), "union %s", t.Name)

	case KindStruct:
		return encodeStruct(e, v, t)
	}
	return errors.Wrapf(ErrInvalidLayout, "type %q has no kind", t.Name)
}

func encodeStruct(e *Encoder, v interface{}, t *Type) error {
	var rec map[string]interface{}
	switch r := v.(type) {
	case Record:
		rec = r
	case map[string]interface{}:
		rec = r
	default:
		return invalid(v, t)
	}
	if err := t.checkTrailing(); err != nil {
		return err
	}
	for k := range rec {
		if !t.hasField(k) {
			return errors.Wrapf(ErrInvalidValue, "%s has no field %q", t.Name, k)
		}
	}
	for _, f := range t.Fields {
		if err := EncodeTo(e, rec[f.Name], f.Type); err != nil {
			return errors.Wrapf(err, "%s.%s", t.Name, f.Name)
		}
	}
	return nil
}

func encodeArray(e *Encoder, v interface{}, t *Type) error {
	if b, ok := v.([]byte); ok && t.Elem.Kind == KindU8 {
		if t.Kind == KindVarArray {
			e.PutRaw(b)
			return nil
		}
		return e.PutBytes(b, t.Len)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return invalid(v, t)
	}
	n := rv.Len()
	if t.Kind == KindFixedArray && n > t.Len {
		return errors.Wrapf(ErrCapacity, "%d elements in fixed array of %d", n, t.Len)
	}
	for i := 0; i < n; i++ {
		if err := EncodeTo(e, rv.Index(i).Interface(), t.Elem); err != nil {
			return errors.Wrapf(err, "[%d]", i)
		}
	}
	if t.Kind == KindFixedArray {
		for i := n; i < t.Len; i++ {
			encodeZero(e, t.Elem)
		}
	}
	return nil
}

func encodeZero(e *Encoder, t *Type) {
	switch t.Kind {
	case KindVarString:
		e.PutUint32(0)
	case KindVarArray:
	case KindStruct:
		for _, f := range t.Fields {
			encodeZero(e, f.Type)
		}
	case KindFixedArray:
		for i := 0; i < t.Len; i++ {
			encodeZero(e, t.Elem)
		}
	default:
		n, _ := t.Size()
		e.grow(n)
	}
}

func enumValue(v interface{}, t *Type) (uint64, error) {
	var val uint64
	switch x := v.(type) {
	case string:
		vr, ok := t.Variant(x)
		if !ok {
			return 0, errors.Wrapf(ErrUnknownDiscriminant, "%s has no variant %q", t.Name, x)
		}
		return vr.Value, nil
	case EnumValue:
		val = x.Value
	default:
		u, err := toUint64(v)
		if err != nil {
			return 0, err
		}
		val = u
	}
	if _, ok := t.VariantOf(val); !ok {
		return 0, errors.Wrapf(ErrUnknownDiscriminant, "%s has no variant with value %d", t.Name, val)
	}
	return val, nil
}

// DecodeFrom reads one value laid out as t from d.
func DecodeFrom(d *Decoder, t *Type) (interface{}, error) {
	switch t.Kind {
	case KindU8:
		return d.Uint8()
	case KindU16:
		return d.Uint16()
	case KindU32:
		return d.Uint32()
	case KindU64:
		return d.Uint64()
	case KindI8:
		return d.Int8()
	case KindI16:
		return d.Int16()
	case KindI32:
		return d.Int32()
	case KindI64:
		return d.Int64()
	case KindBool:
		return d.Bool()
	case KindF64:
		return d.Float64()
	case KindFixedString:
		return d.FixedString(t.Len)
	case KindVarString:
		return d.VarString()

	case KindFixedArray:
		if t.Elem.Kind == KindU8 {
			return d.Bytes(t.Len)
		}
		ret := make([]interface{}, 0, t.Len)
		for i := 0; i < t.Len; i++ {
			v, err := DecodeFrom(d, t.Elem)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			ret = append(ret, v)
		}
		return ret, nil

	case KindVarArray:
		return decodeVarArray(d, t)

	case KindEnum:
		v, err := d.Uint(t.Width)
		if err != nil {
			return nil, err
		}
		vr, ok := t.VariantOf(v)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownDiscriminant, "%s has no variant with value %d", t.Name, v)
		}
		return EnumValue(vr), nil

	case KindFlags:
		v, err := d.Uint(t.Width)
		if err != nil {
			return nil, err
		}
		return SplitFlags(v, t)

	case KindUnion:
		b, err := d.Bytes(t.unionSize())
		if err != nil {
			return nil, errors.Wrapf(err, "union %s", t.Name)
		}
		return Union(b), nil

	case KindStruct:
		if err := t.checkTrailing(); err != nil {
			return nil, err
		}
		rec := make(Record, len(t.Fields))
		for _, f := range t.Fields {
			v, err := DecodeFrom(d, f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", t.Name, f.Name)
			}
			rec[f.Name] = v
		}
		return rec, nil
	}
	return nil, errors.Wrapf(ErrInvalidLayout, "type %q has no kind", t.Name)
}

// decodeVarArray consumes every remaining byte of d as elements of t.
func decodeVarArray(d *Decoder, t *Type) (interface{}, error) {
	size, fixed := t.Elem.Size()
	if fixed && size == 0 {
		return nil, errors.Wrapf(ErrInvalidLayout, "variable array of zero sized %s", t.Name)
	}
	if fixed && d.Len()%size != 0 {
		return nil, errors.Wrapf(ErrTruncated, "%d trailing bytes do not divide into %d byte elements of %s", d.Len(), size, t.Name)
	}
	if t.Elem.Kind == KindU8 {
		return d.Rest(), nil
	}
	ret := []interface{}{}
	for i := 0; d.Len() > 0; i++ {
		v, err := DecodeFrom(d, t.Elem)
		if err != nil {
			return nil, errors.Wrapf(err, "partial trailing element [%d]", i)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func invalid(v interface{}, t *Type) error {
	return errors.Wrapf(ErrInvalidValue, "cannot encode %T as %s %s", v, t.Kind, t.Name)
}

func toUint64(v interface{}) (uint64, error) {
	switch x := v.(type) {
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxUint64 {
			return 0, errors.Wrapf(ErrOverflow, "%v is not an unsigned integer", x)
		}
		return uint64(x), nil
	case json.Number:
		u, err := strconv.ParseUint(string(x), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrOverflow, "%s is not an unsigned integer", x)
		}
		return u, nil
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.Wrapf(ErrOverflow, "negative value %d for unsigned field", i)
	}
	return uint64(i), nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, errors.Wrapf(ErrOverflow, "%d does not fit int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, errors.Wrapf(ErrOverflow, "%v is not an integer", x)
		}
		return int64(x), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, errors.Wrapf(ErrOverflow, "%s is not an integer", x)
		}
		return i, nil
	}
	return 0, errors.Wrapf(ErrInvalidValue, "%T is not an integer", v)
}

func toFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidValue, "%s is not a number", x)
		}
		return f, nil
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}
