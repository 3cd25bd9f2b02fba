// SPDX-License-Identifier:Apache-2.0

package codec

import (
	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/safeconvert"
)

// FlagsValue returns the bitwise OR of the named variants of the flag
// set t.
func FlagsValue(set FlagSet, t *Type) (uint64, error) {
	var mask uint64
	for _, name := range set {
		v, ok := t.Variant(name)
		if !ok {
			return 0, errors.Wrapf(ErrUnknownFlag, "%s has no flag %q", t.Name, name)
		}
		if v.Value&(v.Value-1) != 0 {
			return 0, errors.Wrapf(ErrInvalidLayout, "%s flag %s=%#x is not a single bit", t.Name, name, v.Value)
		}
		mask |= v.Value
	}
	if _, err := safeconvert.Unsigned(mask, t.Width); err != nil {
		return 0, errors.Wrap(ErrOverflow, err.Error())
	}
	return mask, nil
}

// SplitFlags returns the variants of t whose bits are set in mask,
// scanning from the most significant bit of the declared width down.
// A set bit without a declared variant is an error.
func SplitFlags(mask uint64, t *Type) (FlagSet, error) {
	if t.Width < 8 && mask>>(8*uint(t.Width)) != 0 {
		return nil, errors.Wrapf(ErrOverflow, "mask %#x wider than %d bytes for %s", mask, t.Width, t.Name)
	}
	set := FlagSet{}
	for bit := 8*t.Width - 1; bit >= 0; bit-- {
		b := uint64(1) << uint(bit)
		if mask&b == 0 {
			continue
		}
		v, ok := t.VariantOf(b)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownFlag, "%s has no flag with value %#x", t.Name, b)
		}
		set = append(set, v.Name)
	}
	return set, nil
}
