// SPDX-License-Identifier:Apache-2.0

package interfaces

import (
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
	"go.universe.tf/vppapi/internal/codec"
)

// InterfaceIndex represents the binary API alias 'interface_index'.
type InterfaceIndex uint32

// AnyInterface selects every interface in dump requests.
const AnyInterface InterfaceIndex = ^InterfaceIndex(0)

// MacAddress represents the binary API alias 'mac_address'.
type MacAddress [6]uint8

func ParseMacAddress(s string) (MacAddress, error) {
	var mac MacAddress
	hw, err := net.ParseMAC(s)
	if err != nil {
		return mac, err
	}
	if len(hw) != len(mac) {
		return mac, fmt.Errorf("%q is not a 48-bit MAC address", s)
	}
	copy(mac[:], hw)
	return mac, nil
}

func (m MacAddress) String() string {
	return net.HardwareAddr(m[:]).String()
}

// IfStatusFlags represents the binary API flag set 'if_status_flags'.
type IfStatusFlags uint32

const (
	IfStatusAdminUp IfStatusFlags = 1
	IfStatusLinkUp  IfStatusFlags = 2
)

var IfStatusFlagsType = codec.NewFlags("if_status_flags", 4,
	codec.Variant{Name: "IF_STATUS_API_FLAG_ADMIN_UP", Value: 1},
	codec.Variant{Name: "IF_STATUS_API_FLAG_LINK_UP", Value: 2},
)

// ParseIfStatusFlags accepts either full variant names or their short
// forms, "admin-up" and "link-up".
func ParseIfStatusFlags(names ...string) (IfStatusFlags, error) {
	set := codec.FlagSet{}
	for _, n := range names {
		n = strings.ToUpper(strings.ReplaceAll(n, "-", "_"))
		if !strings.HasPrefix(n, "IF_STATUS_API_FLAG_") {
			n = "IF_STATUS_API_FLAG_" + n
		}
		set = append(set, n)
	}
	v, err := codec.FlagsValue(set, IfStatusFlagsType)
	return IfStatusFlags(v), err
}

func (f IfStatusFlags) String() string {
	set, err := codec.SplitFlags(uint64(f), IfStatusFlagsType)
	if err != nil {
		return fmt.Sprintf("IfStatusFlags(%#x)", uint32(f))
	}
	short := make([]string, 0, len(set))
	for _, n := range set {
		short = append(short, strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(n, "IF_STATUS_API_FLAG_"), "_", "-")))
	}
	return strings.Join(short, ",")
}

// SubIfFlags represents the binary API flag set 'sub_if_flags'. The
// engine also declares SUB_IF_API_FLAG_MASK_VNET (254), a mask rather
// than a flag, which is left out.
type SubIfFlags uint32

var SubIfFlagsType = codec.NewFlags("sub_if_flags", 4,
	codec.Variant{Name: "SUB_IF_API_FLAG_NO_TAGS", Value: 1},
	codec.Variant{Name: "SUB_IF_API_FLAG_ONE_TAG", Value: 2},
	codec.Variant{Name: "SUB_IF_API_FLAG_TWO_TAGS", Value: 4},
	codec.Variant{Name: "SUB_IF_API_FLAG_DOT1AD", Value: 8},
	codec.Variant{Name: "SUB_IF_API_FLAG_EXACT_MATCH", Value: 16},
	codec.Variant{Name: "SUB_IF_API_FLAG_DEFAULT", Value: 32},
	codec.Variant{Name: "SUB_IF_API_FLAG_OUTER_VLAN_ID_ANY", Value: 64},
	codec.Variant{Name: "SUB_IF_API_FLAG_INNER_VLAN_ID_ANY", Value: 128},
	codec.Variant{Name: "SUB_IF_API_FLAG_DOT1AH", Value: 256},
)

// IfType represents the binary API enum 'if_type'.
type IfType uint32

var IfTypeType = codec.NewEnum("if_type", 4,
	codec.Variant{Name: "IF_API_TYPE_HARDWARE", Value: 0},
	codec.Variant{Name: "IF_API_TYPE_SUB", Value: 1},
	codec.Variant{Name: "IF_API_TYPE_P2P", Value: 2},
	codec.Variant{Name: "IF_API_TYPE_PIPE", Value: 3},
)

func (t IfType) String() string {
	return enumString(IfTypeType, uint64(t), "IF_API_TYPE_")
}

// LinkDuplex represents the binary API enum 'link_duplex'.
type LinkDuplex uint32

var LinkDuplexType = codec.NewEnum("link_duplex", 4,
	codec.Variant{Name: "LINK_DUPLEX_API_UNKNOWN", Value: 0},
	codec.Variant{Name: "LINK_DUPLEX_API_HALF", Value: 1},
	codec.Variant{Name: "LINK_DUPLEX_API_FULL", Value: 2},
)

func (l LinkDuplex) String() string {
	return enumString(LinkDuplexType, uint64(l), "LINK_DUPLEX_API_")
}

func enumString(t *codec.Type, v uint64, prefix string) string {
	for _, vr := range t.Variants {
		if vr.Value == v {
			return strings.ToLower(strings.TrimPrefix(vr.Name, prefix))
		}
	}
	return fmt.Sprintf("%s(%d)", t.Name, v)
}

// decodeEnum reads a 32-bit enum and checks it against t.
func decodeEnum(d *codec.Decoder, t *codec.Type) (uint32, error) {
	v, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	if _, ok := t.VariantOf(uint64(v)); !ok {
		return 0, errors.Wrapf(codec.ErrUnknownDiscriminant, "%s has no variant with value %d", t.Name, v)
	}
	return v, nil
}

// decodeFlags reads a 32-bit flag set and checks every bit is declared
// in t.
func decodeFlags(d *codec.Decoder, t *codec.Type) (uint32, error) {
	v, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	if _, err := codec.SplitFlags(uint64(v), t); err != nil {
		return 0, err
	}
	return v, nil
}
