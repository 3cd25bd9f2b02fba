// SPDX-License-Identifier:Apache-2.0

package exchange

import "fmt"

// EncodeError is returned when a request cannot be encoded. Nothing
// was written to the channel.
type EncodeError struct {
	Message string
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %s", e.Message, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned when the engine answered with a message that
// does not decode as the expected reply. It points at a mismatch
// between client and engine schemas, retrying will not help.
type DecodeError struct {
	Message string
	ID      uint16
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s (id %d): %s", e.Message, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
