// SPDX-License-Identifier:Apache-2.0

package codec

import "github.com/pkg/errors"

// WriteAs encodes v as the named member of the union u, into a zero
// padded buffer of the union's size.
func WriteAs(u *Type, member string, v interface{}) (Union, error) {
	m, ok := u.Member(member)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidLayout, "union %s has no member %q", u.Name, member)
	}
	size := u.unionSize()
	e := NewEncoder(make([]byte, 0, size))
	if err := EncodeTo(e, v, m.Type); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", u.Name, member)
	}
	if e.Len() > size {
		return nil, errors.Wrapf(ErrCapacity, "member %s needs %d bytes, union %s holds %d", member, e.Len(), u.Name, size)
	}
	buf := make(Union, size)
	copy(buf, e.Bytes())
	return buf, nil
}

// ReadAs decodes the leading bytes of buf as the named member of the
// union u. Nothing records which member was written; reading a
// different member than the one written returns whatever those bytes
// decode to.
func ReadAs(buf Union, u *Type, member string) (interface{}, error) {
	m, ok := u.Member(member)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidLayout, "union %s has no member %q", u.Name, member)
	}
	v, err := DecodeFrom(NewDecoder(buf), m.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.%s", u.Name, member)
	}
	return v, nil
}
