// SPDX-License-Identifier:Apache-2.0

// Package frame reads and writes the length prefixed frames that carry
// binary API messages over a byte stream.
package frame

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/safeconvert"
)

// HeaderSize is the size of the header preceding every payload.
const HeaderSize = 16

var (
	ErrInvalidHeader  = errors.New("invalid frame header")
	ErrInvalidMessage = errors.New("invalid frame payload")
	// ErrWouldBlock is returned by channels in non-blocking mode when no
	// data is available yet.
	ErrWouldBlock = errors.New("operation would block")
)

// Header precedes every frame on the wire. All fields are big-endian.
type Header struct {
	Reserved uint64
	Length   uint32
	Mark     uint32
}

// Error is a failure to read a frame. It matches both its Kind
// (ErrInvalidHeader or ErrInvalidMessage) and its underlying cause
// with errors.Is.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func (h *Header) MarshalBinary() ([]byte, error) {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.BigEndian, h); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Write writes payload as a single frame. Header and payload go out in
// one Write call; a short write is reported, not retried.
func Write(w io.Writer, payload []byte) error {
	l, err := safeconvert.IntToUInt32(len(payload))
	if err != nil {
		return errors.Wrap(err, "frame payload")
	}
	hdr := &Header{Length: l}
	b, err := hdr.MarshalBinary()
	if err != nil {
		return err
	}
	b = append(b, payload...)

	n, err := w.Write(b)
	if err != nil {
		return errors.Wrapf(err, "writing %d byte frame", len(b))
	}
	if n != len(b) {
		return errors.Wrapf(io.ErrShortWrite, "wrote %d of %d frame bytes", n, len(b))
	}
	return nil
}

// Read reads one whole frame and returns its payload.
func Read(r io.Reader) ([]byte, error) {
	var hdr Header
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, &Error{Kind: ErrInvalidHeader, Err: err}
	}
	if hdr.Length == 0 {
		return nil, &Error{Kind: ErrInvalidMessage, Err: errors.New("zero length payload")}
	}

	// The buffer grows as bytes arrive, so a corrupt length cannot force
	// a large allocation up front.
	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, r, int64(hdr.Length)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &Error{Kind: ErrInvalidMessage, Err: errors.Wrapf(err, "reading %d byte payload", hdr.Length)}
	}
	return payload.Bytes(), nil
}
