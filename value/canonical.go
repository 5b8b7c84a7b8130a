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

package value

import (
	"bytes"
	"sort"

	"github.com/valyala/fastjson"
)

// Canonical renders v with sorted object keys and no insignificant
// whitespace, per spec.md §3.1/§4.2: two references to the same argument
// value must produce byte-identical NodeKeys, and JSON object key order is
// not semantically meaningful.
func Canonical(v *fastjson.Value) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.Bytes()
}

// CanonicalValue is a convenience wrapper around Canonical for a Value.
func CanonicalValue(v *Value) []byte {
	return Canonical(v.raw)
}

func writeCanonical(buf *bytes.Buffer, v *fastjson.Value) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		keys := make([]string, 0, obj.Len())
		obj.Visit(func(key []byte, _ *fastjson.Value) {
			keys = append(keys, string(key))
		})
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, obj.Get(k))
		}
		buf.WriteByte('}')
	case fastjson.TypeArray:
		arr := v.GetArray()
		buf.WriteByte('[')
		for i, elem := range arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case fastjson.TypeString:
		writeCanonicalString(buf, string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		buf.WriteString(v.String())
	case fastjson.TypeTrue:
		buf.WriteString("true")
	case fastjson.TypeFalse:
		buf.WriteString("false")
	case fastjson.TypeNull:
		buf.WriteString("null")
	default:
		buf.WriteString("null")
	}
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[(r>>4)&0xf])
				buf.WriteByte(hex[r&0xf])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
