// SPDX-License-Identifier:Apache-2.0

// Package registry maps message identities to the numeric ids the
// engine assigned them on one connection.
package registry

import "fmt"

// Resolver asks the engine side of a connection for the id of a
// message identity ("name_crc").
type Resolver interface {
	GetMsgIndex(nameCRC string) (uint16, bool)
}

// LookupError is returned for a message identity the engine does not
// know, usually because client and engine disagree on the message's
// CRC.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown message: %s", e.Name)
}

// Registry caches resolved ids for the lifetime of one connection. It
// must not be shared between connections: ids are not portable.
type Registry struct {
	resolver Resolver
	ids      map[string]uint16
	names    map[uint16]string
}

func New(r Resolver) *Registry {
	return &Registry{
		resolver: r,
		ids:      map[string]uint16{},
		names:    map[uint16]string{},
	}
}

// Resolve returns the id of nameCRC, asking the resolver on the first
// lookup only.
func (r *Registry) Resolve(nameCRC string) (uint16, error) {
	if id, ok := r.ids[nameCRC]; ok {
		return id, nil
	}
	id, ok := r.resolver.GetMsgIndex(nameCRC)
	if !ok {
		return 0, &LookupError{Name: nameCRC}
	}
	r.ids[nameCRC] = id
	r.names[id] = nameCRC
	return id, nil
}

// Name returns the identity an id was resolved from, if it has been
// resolved on this registry.
func (r *Registry) Name(id uint16) (string, bool) {
	n, ok := r.names[id]
	return n, ok
}

// Len returns the number of cached ids.
func (r *Registry) Len() int {
	return len(r.ids)
}
