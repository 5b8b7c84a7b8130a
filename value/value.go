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

// Package value implements the engine's closed JSON value sum (spec.md §9
// "Dynamic dispatch on values") on top of valyala/fastjson, plus the
// Unchanged sentinel that must never be confused with a genuine value.
package value

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Kind tags a Value with its closed-sum variant.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value wraps a parsed fastjson.Value and exposes its Kind through the
// closed sum the spec requires, instead of fastjson's own seven-way Type.
type Value struct {
	raw *fastjson.Value
}

// Wrap adopts an already-parsed fastjson.Value. raw must not be nil.
func Wrap(raw *fastjson.Value) *Value {
	if raw == nil {
		panic("value: Wrap called with nil fastjson.Value")
	}
	return &Value{raw: raw}
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (*Value, error) {
	var p fastjson.Parser
	raw, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "value: parse")
	}
	// ParseBytes reuses an internal arena owned by the parser; Clone so the
	// returned Value survives the parser being reused or discarded.
	return Wrap(raw.Clone()), nil
}

// Raw returns the underlying fastjson.Value for callers (e.g. the schema
// package's NodeKey instantiation) that need fastjson's own traversal API.
func (v *Value) Raw() *fastjson.Value { return v.raw }

// Kind classifies v into the closed sum.
func (v *Value) Kind() Kind {
	switch v.raw.Type() {
	case fastjson.TypeObject:
		return KindObject
	case fastjson.TypeArray:
		return KindArray
	case fastjson.TypeString:
		return KindString
	case fastjson.TypeNumber:
		return KindNumber
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return KindBool
	case fastjson.TypeNull:
		return KindNull
	default:
		return KindNull
	}
}

// IsObject reports whether v is the top-level object shape a ComputedValue
// must take (spec.md §3.1): computors may not return a bare scalar.
func (v *Value) IsObject() bool { return v.Kind() == KindObject }

// MarshalJSON lets a Value participate in Go's encoding/json where needed
// (config dumps, CLI pretty-printing); storage itself uses Canonical.
func (v *Value) MarshalJSON() ([]byte, error) {
	return []byte(v.raw.String()), nil
}

func (v *Value) String() string {
	return v.raw.String()
}

// ErrNotAnObject is returned by engine.Set and by recompute's handling of a
// computor's return value when a top-level scalar is supplied where an
// object is required.
var ErrNotAnObject = fmt.Errorf("value: top-level value must be a JSON object")
