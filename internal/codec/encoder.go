// SPDX-License-Identifier:Apache-2.0

package codec

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/safeconvert"
)

// Encoder appends wire encoded values to a byte buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder that appends to buf.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) grow(n int) []byte {
	l := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return e.buf[l:]
}

func (e *Encoder) PutUint8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) PutUint16(v uint16) { binary.BigEndian.PutUint16(e.grow(2), v) }

func (e *Encoder) PutUint32(v uint32) { binary.BigEndian.PutUint32(e.grow(4), v) }

func (e *Encoder) PutUint64(v uint64) { binary.BigEndian.PutUint64(e.grow(8), v) }

func (e *Encoder) PutInt8(v int8) { e.PutUint8(uint8(v)) }

func (e *Encoder) PutInt16(v int16) { e.PutUint16(uint16(v)) }

func (e *Encoder) PutInt32(v int32) { e.PutUint32(uint32(v)) }

func (e *Encoder) PutInt64(v int64) { e.PutUint64(uint64(v)) }

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutUint8(1)
		return
	}
	e.PutUint8(0)
}

// PutFloat64 writes v with its IEEE-754 bit pattern byte swapped ahead
// of the big-endian integer write, which leaves the double in the
// engine's host order on the wire.
func (e *Encoder) PutFloat64(v float64) {
	e.PutUint64(bits.ReverseBytes64(math.Float64bits(v)))
}

// PutUint writes v as an unsigned integer of width bytes.
func (e *Encoder) PutUint(v uint64, width int) error {
	if _, err := safeconvert.Unsigned(v, width); err != nil {
		return errors.Wrap(ErrOverflow, err.Error())
	}
	switch width {
	case 1:
		e.PutUint8(uint8(v))
	case 2:
		e.PutUint16(uint16(v))
	case 4:
		e.PutUint32(uint32(v))
	default:
		e.PutUint64(v)
	}
	return nil
}

// PutFixedString writes s into exactly n bytes, zero padded. At least
// one byte of padding is always left, so s may hold at most n-1 bytes.
func (e *Encoder) PutFixedString(s string, n int) error {
	if len(s) > n-1 {
		return errors.Wrapf(ErrCapacity, "string of %d bytes in fixed string of capacity %d", len(s), n)
	}
	copy(e.grow(n), s)
	return nil
}

// PutVarString writes a 32-bit length followed by the bytes of s.
func (e *Encoder) PutVarString(s string) error {
	n, err := safeconvert.IntToUInt32(len(s))
	if err != nil {
		return errors.Wrap(ErrCapacity, err.Error())
	}
	e.PutUint32(n)
	e.buf = append(e.buf, s...)
	return nil
}

// PutBytes writes b into a fixed array of n bytes, zero padding any
// remainder.
func (e *Encoder) PutBytes(b []byte, n int) error {
	if len(b) > n {
		return errors.Wrapf(ErrCapacity, "%d bytes in fixed array of %d", len(b), n)
	}
	copy(e.grow(n), b)
	return nil
}

// PutRaw appends b unchanged.
func (e *Encoder) PutRaw(b []byte) { e.buf = append(e.buf, b...) }
