// SPDX-License-Identifier:Apache-2.0

package codec

import "bytes"

// FixedString is the raw content of a fixed string field, always as
// long as the field's capacity.
type FixedString []byte

// String returns the text without its trailing zero padding.
func (s FixedString) String() string {
	return string(bytes.TrimRight(s, "\x00"))
}

// EnumValue is a decoded enum discriminant.
type EnumValue struct {
	Name  string
	Value uint64
}

// FlagSet lists the names of the variants set in a flag field, most
// significant bit first.
type FlagSet []string

// Has reports whether the set contains the named variant.
func (s FlagSet) Has(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Union is the opaque content of a packed union. Which member it holds
// is determined by a sibling field, see WriteAs and ReadAs.
type Union []byte

// Record holds the values of a struct, by field name.
type Record map[string]interface{}
