// SPDX-License-Identifier:Apache-2.0

package safeconvert

import (
	"fmt"
	"math"
)

func IntToUInt16(toConvert int) (uint16, error) {
	if toConvert < 0 {
		return 0, fmt.Errorf("trying to convert negative value to uint16: %d", toConvert)
	}
	if toConvert > math.MaxUint16 {
		return 0, fmt.Errorf("trying to convert value to uint16: %d, would overflow", toConvert)
	}
	return uint16(toConvert), nil
}

func IntToUInt32(toConvert int) (uint32, error) {
	if toConvert < 0 {
		return 0, fmt.Errorf("trying to convert negative value to uint32: %d", toConvert)
	}
	if uint64(toConvert) > math.MaxUint32 {
		return 0, fmt.Errorf("trying to convert value to uint32: %d, would overflow", toConvert)
	}
	return uint32(toConvert), nil
}

// Unsigned checks that toConvert fits in an unsigned integer of the
// given width in bytes.
func Unsigned(toConvert uint64, width int) (uint64, error) {
	var max uint64
	switch width {
	case 1:
		max = math.MaxUint8
	case 2:
		max = math.MaxUint16
	case 4:
		max = math.MaxUint32
	case 8:
		return toConvert, nil
	default:
		return 0, fmt.Errorf("unsupported integer width %d", width)
	}
	if toConvert > max {
		return 0, fmt.Errorf("trying to convert value to uint%d: %d, would overflow", width*8, toConvert)
	}
	return toConvert, nil
}

// Signed checks that toConvert fits in a signed integer of the given
// width in bytes.
func Signed(toConvert int64, width int) (int64, error) {
	var min, max int64
	switch width {
	case 1:
		min, max = math.MinInt8, math.MaxInt8
	case 2:
		min, max = math.MinInt16, math.MaxInt16
	case 4:
		min, max = math.MinInt32, math.MaxInt32
	case 8:
		return toConvert, nil
	default:
		return 0, fmt.Errorf("unsupported integer width %d", width)
	}
	if toConvert < min {
		return 0, fmt.Errorf("trying to convert value to int%d: %d, too low", width*8, toConvert)
	}
	if toConvert > max {
		return 0, fmt.Errorf("trying to convert value to int%d: %d, too high", width*8, toConvert)
	}
	return toConvert, nil
}
