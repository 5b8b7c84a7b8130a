// Copyright 2024 The Lattice Authors
// This file is part of Lattice.
//
// Lattice is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lattice is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Lattice. If not, see <http://www.gnu.org/licenses/>.

// Package schema implements L3 (spec.md §2, §4.1, §4.2): schema validation,
// canonical node naming, and schema hashing.
package schema

import (
	"strings"

	"github.com/pkg/errors"
)

// NameTemplate is the parsed form of a string like "f(x, y)": a head
// identifier plus an ordered list of free-variable names. A template with
// zero variables is a ground name (spec.md §3.1).
type NameTemplate struct {
	Head string
	Vars []string
}

// Arity is the number of free variables in the template.
func (t NameTemplate) Arity() int { return len(t.Vars) }

// Ground reports whether t has no free variables.
func (t NameTemplate) Ground() bool { return len(t.Vars) == 0 }

func (t NameTemplate) String() string {
	if t.Ground() {
		return t.Head
	}
	return t.Head + "(" + strings.Join(t.Vars, ", ") + ")"
}

// ParseTemplate parses "f(x, y)" or a bare ground head "f" into a
// NameTemplate. Whitespace around the head and each variable is trimmed.
func ParseTemplate(s string) (NameTemplate, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		head := strings.TrimSpace(s)
		if head == "" {
			return NameTemplate{}, errors.Errorf("schema: empty template")
		}
		return NameTemplate{Head: head}, nil
	}
	if !strings.HasSuffix(s, ")") {
		return NameTemplate{}, errors.Errorf("schema: unterminated template %q", s)
	}
	head := strings.TrimSpace(s[:open])
	if head == "" {
		return NameTemplate{}, errors.Errorf("schema: template %q has no head", s)
	}
	inner := s[open+1 : len(s)-1]
	inner = strings.TrimSpace(inner)
	var vars []string
	if inner != "" {
		for _, part := range strings.Split(inner, ",") {
			v := strings.TrimSpace(part)
			if v == "" {
				return NameTemplate{}, errors.Errorf("schema: template %q has an empty variable", s)
			}
			vars = append(vars, v)
		}
	}
	return NameTemplate{Head: head, Vars: vars}, nil
}

// MustParseTemplate is ParseTemplate for callers (Schema literals in tests
// and examples) that already know the template is well-formed.
func MustParseTemplate(s string) NameTemplate {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}
