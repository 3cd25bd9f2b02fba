// SPDX-License-Identifier:Apache-2.0

package api

import (
	"fmt"
	"strconv"
)

// RetvalToError returns the error for a reply's retval field, or nil
// when retval is zero.
func RetvalToError(retval int32) error {
	if retval == 0 {
		return nil
	}
	return RetvalError(retval)
}

// RetvalError is a non-zero retval returned by the engine.
type RetvalError int32

func (e RetvalError) Error() string {
	errstr := strconv.FormatInt(int64(e), 10)
	if s, ok := retvalErrors[e]; ok {
		errstr = fmt.Sprintf("%s (%d)", s, int32(e))
	}
	return "engine returned error: " + errstr
}

const (
	Unspecified                 RetvalError = -1
	InvalidSwIfIndex            RetvalError = -2
	NoSuchFib                   RetvalError = -3
	NoSuchInnerFib              RetvalError = -4
	NoSuchLabel                 RetvalError = -5
	NoSuchEntry                 RetvalError = -6
	InvalidValue                RetvalError = -7
	InvalidValue2               RetvalError = -8
	Unimplemented               RetvalError = -9
	InvalidSwIfIndex2           RetvalError = -10
	FeatureDisabled             RetvalError = -30
	InvalidRegistration         RetvalError = -31
	NoMatchingInterface         RetvalError = -54
	InvalidVlan                 RetvalError = -55
	VlanAlreadyExists           RetvalError = -56
	InvalidSrcAddress           RetvalError = -57
	InvalidDstAddress           RetvalError = -58
	AddressLengthMismatch       RetvalError = -59
	AddressNotFoundForInterface RetvalError = -60
	AddressNotLinkLocal         RetvalError = -61
	IP6NotEnabled               RetvalError = -62
	InProgress                  RetvalError = 10
	SubifAlreadyExists          RetvalError = -68
	InvalidInterface            RetvalError = -71
	InvalidArgument             RetvalError = -73
	TunnelExist                 RetvalError = -75
	NotConnected                RetvalError = -78
	IfAlreadyExists             RetvalError = -79
	ValueExist                  RetvalError = -81
	InvalidAddressFamily        RetvalError = -97
)

var retvalErrors = map[RetvalError]string{
	Unspecified:                 "Unspecified Error",
	InvalidSwIfIndex:            "Invalid sw_if_index",
	NoSuchFib:                   "No such FIB / VRF",
	NoSuchInnerFib:              "No such inner FIB / VRF",
	NoSuchLabel:                 "No such label",
	NoSuchEntry:                 "No such entry",
	InvalidValue:                "Invalid value",
	InvalidValue2:               "Invalid value #2",
	Unimplemented:               "Unimplemented",
	InvalidSwIfIndex2:           "Invalid sw_if_index #2",
	FeatureDisabled:             "Feature disabled by configuration",
	InvalidRegistration:         "Invalid registration",
	NoMatchingInterface:         "No matching interface for probe",
	InvalidVlan:                 "Invalid VLAN",
	VlanAlreadyExists:           "VLAN subif already exists",
	InvalidSrcAddress:           "Invalid src address",
	InvalidDstAddress:           "Invalid dst address",
	AddressLengthMismatch:       "Address length mismatch",
	AddressNotFoundForInterface: "Address not found for interface",
	AddressNotLinkLocal:         "Address not link-local",
	IP6NotEnabled:               "ip6 not enabled",
	InProgress:                  "Operation in progress",
	SubifAlreadyExists:          "Subinterface already exists",
	InvalidInterface:            "Invalid interface",
	InvalidArgument:             "Invalid argument",
	TunnelExist:                 "Tunnel already exists",
	NotConnected:                "Not connected to the data plane",
	IfAlreadyExists:             "Interface already exists",
	ValueExist:                  "Value already exists",
	InvalidAddressFamily:        "Invalid address family",
}
