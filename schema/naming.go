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

package schema

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/latticedb/lattice/value"
)

// NodeKey is the canonical textual form of one schema instance (spec.md
// §3.1): head(arg1, arg2, ...), whitespace-normalized, arguments serialized
// as canonical JSON. A ground template's NodeKey is its head verbatim.
type NodeKey string

// Instantiate binds tmpl's free variables to bindings, in order, producing
// a canonical NodeKey (spec.md §4.2 "instantiate").
func Instantiate(tmpl NameTemplate, bindings []*value.Value) (NodeKey, error) {
	if len(bindings) != len(tmpl.Vars) {
		return "", errors.Errorf(
			"schema: template %q expects %d binding(s), got %d",
			tmpl.String(), len(tmpl.Vars), len(bindings),
		)
	}
	if tmpl.Ground() {
		return NodeKey(tmpl.Head), nil
	}
	var b strings.Builder
	b.WriteString(tmpl.Head)
	b.WriteByte('(')
	for i, v := range bindings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(value.CanonicalValue(v))
	}
	b.WriteByte(')')
	return NodeKey(b.String()), nil
}

// Resolve parses key's head and argument list, looks up the schema with a
// matching output head and arity (unique by Compile's overlap check), and
// returns it along with the parsed bindings (spec.md §4.2 "resolve").
func Resolve(key NodeKey, g *CompiledGraph) (*Schema, []*value.Value, bool) {
	head, args, err := parseNodeKey(string(key))
	if err != nil {
		return nil, nil, false
	}
	s, ok := g.Lookup(head, len(args))
	if !ok {
		return nil, nil, false
	}
	return s, args, true
}

// parseNodeKey splits "head(arg1, arg2)" into its head and parsed
// arguments. A bare head with no parentheses parses as a zero-arity node.
func parseNodeKey(s string) (string, []*value.Value, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, errors.Errorf("schema: unterminated node key %q", s)
	}
	head := strings.TrimSpace(s[:open])
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return head, nil, nil
	}
	parts, err := splitTopLevelArgs(inner)
	if err != nil {
		return "", nil, err
	}
	args := make([]*value.Value, 0, len(parts))
	var p fastjson.Parser
	for _, part := range parts {
		raw, err := p.Parse(strings.TrimSpace(part))
		if err != nil {
			return "", nil, errors.Wrapf(err, "schema: invalid argument %q in node key %q", part, s)
		}
		args = append(args, value.Wrap(raw.Clone()))
	}
	return head, args, nil
}

// splitTopLevelArgs splits a comma-separated argument list, respecting
// nested brackets/braces and quoted strings so canonical JSON arguments
// (objects, arrays, strings containing commas) split correctly.
func splitTopLevelArgs(s string) ([]string, error) {
	var parts []string
	depth := 0
	inString := false
	escaped := false
	start := 0
	for i, r := range s {
		if inString {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, errors.Errorf("schema: unbalanced brackets in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || inString {
		return nil, errors.Errorf("schema: unterminated argument in %q", s)
	}
	parts = append(parts, s[start:])
	return parts, nil
}
