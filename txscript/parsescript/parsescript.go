// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parsescript turns a raw Script byte string into an ordered list of
// ParsedOpcode values - ops.4.1's "operations()" view of a Script.
package parsescript

import (
	"encoding/binary"

	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/opcode"
)

var (
	ScriptSyntaxError = er.ScriptErrorType.Code("ScriptSyntax",
		"malformed script: push length overruns the remaining script")
)

// ParsedOpcode is one decoded instruction: either a data push (Data
// non-nil/non-empty, or Data == nil for OP_0) or a plain, non-push opcode.
type ParsedOpcode struct {
	Opcode opcode.Opcode
	Data   []byte
}

// ParseScript decodes a raw script into its ordered list of operations.
// Parsing fails if a declared push length exceeds the remaining script, per
// spec §4.1.
func ParseScript(script []byte) ([]ParsedOpcode, er.R) {
	var pops []ParsedOpcode
	i := 0
	for i < len(script) {
		v := script[i]
		op := opcode.Lookup(v)
		i++
		switch {
		case v >= opcode.OP_DATA_1 && v <= opcode.OP_DATA_75:
			n := int(v)
			if i+n > len(script) {
				return nil, ScriptSyntaxError.New("direct push overruns script")
			}
			pops = append(pops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n
		case v == opcode.OP_PUSHDATA1:
			if i+1 > len(script) {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA1 missing length byte")
			}
			n := int(script[i])
			i++
			if i+n > len(script) {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA1 overruns script")
			}
			pops = append(pops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n
		case v == opcode.OP_PUSHDATA2:
			if i+2 > len(script) {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA2 missing length bytes")
			}
			n := int(binary.LittleEndian.Uint16(script[i : i+2]))
			i += 2
			if i+n > len(script) {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA2 overruns script")
			}
			pops = append(pops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n
		case v == opcode.OP_PUSHDATA4:
			if i+4 > len(script) {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA4 missing length bytes")
			}
			n := int(binary.LittleEndian.Uint32(script[i : i+4]))
			i += 4
			if i+n > len(script) || n < 0 {
				return nil, ScriptSyntaxError.New("OP_PUSHDATA4 overruns script")
			}
			pops = append(pops, ParsedOpcode{Opcode: op, Data: script[i : i+n]})
			i += n
		default:
			pops = append(pops, ParsedOpcode{Opcode: op})
		}
	}
	return pops, nil
}

// UnparseScript re-serializes a parsed opcode list back to its canonical
// byte form - the inverse of ParseScript, used by spec §4.1's
// "to_serialized()".
func UnparseScript(pops []ParsedOpcode) ([]byte, er.R) {
	var out []byte
	for _, pop := range pops {
		if pop.Opcode.IsPushValue() && pop.Opcode.Value != opcode.OP_0 && pop.Opcode.Value != opcode.OP_1NEGATE {
			out = append(out, canonicalPushBytes(pop.Data)...)
			continue
		}
		out = append(out, pop.Opcode.Value)
		if pop.Opcode.Value == opcode.OP_1NEGATE {
			continue
		}
	}
	return out, nil
}

// canonicalPushBytes serializes a data push using the shortest legal
// encoding for len(data).
func canonicalPushBytes(data []byte) []byte {
	n := len(data)
	switch {
	case n <= int(opcode.OP_DATA_75):
		out := make([]byte, 1+n)
		out[0] = byte(n)
		copy(out[1:], data)
		return out
	case n <= 0xff:
		out := make([]byte, 2+n)
		out[0] = opcode.OP_PUSHDATA1
		out[1] = byte(n)
		copy(out[2:], data)
		return out
	case n <= 0xffff:
		out := make([]byte, 3+n)
		out[0] = opcode.OP_PUSHDATA2
		binary.LittleEndian.PutUint16(out[1:3], uint16(n))
		copy(out[3:], data)
		return out
	default:
		out := make([]byte, 5+n)
		out[0] = opcode.OP_PUSHDATA4
		binary.LittleEndian.PutUint32(out[1:5], uint32(n))
		copy(out[5:], data)
		return out
	}
}

// IsPushOnly reports whether every operation in pops is a data push (OP_0
// through OP_16, OP_1NEGATE, or an explicit push), as required of a
// signature_script.
func IsPushOnly(pops []ParsedOpcode) bool {
	for _, pop := range pops {
		if pop.Opcode.Value > opcode.OP_16 {
			return false
		}
	}
	return true
}

// RemoveOpcode returns a copy of pops with every instance of the given
// opcode value removed. No package in this module calls it; the sighash
// code hashes subscripts without stripping OP_CODESEPARATOR.
func RemoveOpcode(pops []ParsedOpcode, value byte) []ParsedOpcode {
	out := make([]ParsedOpcode, 0, len(pops))
	for _, pop := range pops {
		if pop.Opcode.Value == value {
			continue
		}
		out = append(out, pop)
	}
	return out
}
