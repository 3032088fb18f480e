// bmcd is a BMC-resident Redfish service.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rde implements the binding-resolution half of Redfish Device
// Enablement dispatch: BEJ-encoded operations defer some URI references
// to a per-device resource map, marked in message templates as %L<n>
// (a resource-path binding) or %I<n> (an identifier binding). Grounded
// on original_source/redfish-core/lib/rde.hpp, reduced in scope per
// SPEC_FULL.md §10 to the binding-resolution algorithm: physical BEJ
// byte decoding depends on device-specific dictionaries outside this
// core's scope (spec.md §1 Non-goals).
package rde

import (
	"fmt"
	"strconv"
	"strings"
)

// BindingKind distinguishes the two deferred-binding token shapes.
type BindingKind int

const (
	// BindingResource is a %L<n> token: resolves to a resource path.
	BindingResource BindingKind = iota
	// BindingIdentifier is a %I<n> token: resolves to a bare identifier.
	BindingIdentifier
)

// Binding is one deferred reference found in a BEJ-encoded template.
type Binding struct {
	Kind  BindingKind
	Index int
}

// ResourceMap supplies the per-device bindings a dispatch operation's
// template references, keyed by the binding's 1-indexed position within
// its kind (so %L1 and %I1 are independent namespaces, matching the
// original's separate location/identifier binding tables).
type ResourceMap struct {
	Resources   map[int]string
	Identifiers map[int]string
}

// Resolve substitutes every %L<n>/%I<n> token in template against m,
// returning an error naming the first unresolved binding rather than
// silently dropping it — unlike registry.FillMessageArgs's
// empty-string-on-failure contract, a dispatch operation needs to know
// which binding was missing to report a useful RDE error.
func Resolve(template string, m ResourceMap) (string, error) {
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		idx := strings.IndexByte(rest, '%')
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		rest = rest[idx+1:]
		if len(rest) == 0 {
			return "", fmt.Errorf("rde: trailing %% with no binding token")
		}

		var kind BindingKind
		switch rest[0] {
		case 'L':
			kind = BindingResource
		case 'I':
			kind = BindingIdentifier
		default:
			return "", fmt.Errorf("rde: unrecognized binding token %%%c", rest[0])
		}
		rest = rest[1:]

		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			return "", fmt.Errorf("rde: binding token missing index")
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			return "", fmt.Errorf("rde: malformed binding index: %w", err)
		}
		rest = rest[end:]

		value, ok := lookup(m, kind, n)
		if !ok {
			return "", fmt.Errorf("rde: unresolved binding %s%d", tokenLetter(kind), n)
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

func lookup(m ResourceMap, kind BindingKind, n int) (string, bool) {
	switch kind {
	case BindingResource:
		v, ok := m.Resources[n]
		return v, ok
	case BindingIdentifier:
		v, ok := m.Identifiers[n]
		return v, ok
	default:
		return "", false
	}
}

func tokenLetter(kind BindingKind) string {
	if kind == BindingResource {
		return "L"
	}
	return "I"
}
