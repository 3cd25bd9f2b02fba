// SPDX-License-Identifier:Apache-2.0

package codec

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Decoder reads wire encoded values from a byte slice.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.buf) - d.off }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

func (d *Decoder) next(n int) ([]byte, error) {
	if n < 0 || d.Len() < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, d.off, d.Len())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) Int8() (int8, error) {
	v, err := d.Uint8()
	return int8(v), err
}

func (d *Decoder) Int16() (int16, error) {
	v, err := d.Uint16()
	return int16(v), err
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint8()
	return v != 0, err
}

func (d *Decoder) Float64() (float64, error) {
	v, err := d.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits.ReverseBytes64(v)), nil
}

// Uint reads an unsigned integer of width bytes.
func (d *Decoder) Uint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := d.Uint8()
		return uint64(v), err
	case 2:
		v, err := d.Uint16()
		return uint64(v), err
	case 4:
		v, err := d.Uint32()
		return uint64(v), err
	case 8:
		return d.Uint64()
	}
	return 0, errors.Wrapf(ErrInvalidLayout, "integer width %d", width)
}

// FixedString reads the n raw bytes of a fixed string.
func (d *Decoder) FixedString(n int) (FixedString, error) {
	b, err := d.Bytes(n)
	return FixedString(b), err
}

// VarString reads a 32-bit length and then that many bytes.
func (d *Decoder) VarString() (string, error) {
	n, err := d.Uint32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(d.Len()) {
		return "", errors.Wrapf(ErrTruncated, "string of %d bytes with %d remaining", n, d.Len())
	}
	b, _ := d.next(int(n))
	return string(b), nil
}

// Bytes returns a copy of the next n bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	b, err := d.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Rest returns a copy of every unread byte.
func (d *Decoder) Rest() []byte {
	b, _ := d.Bytes(d.Len())
	return b
}
