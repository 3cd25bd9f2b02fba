// SPDX-License-Identifier:Apache-2.0

package codec

import "github.com/pkg/errors"

// Errors returned by the codec. They are wrapped with the path of the
// offending field, use errors.Is to test for them.
var (
	ErrCapacity            = errors.New("value exceeds fixed capacity")
	ErrTruncated           = errors.New("truncated input")
	ErrUnknownDiscriminant = errors.New("unknown enum discriminant")
	ErrUnknownFlag         = errors.New("unknown flag bit")
	ErrOverflow            = errors.New("numeric overflow")
	ErrInvalidLayout       = errors.New("invalid layout")
	ErrInvalidValue        = errors.New("invalid value")
)
