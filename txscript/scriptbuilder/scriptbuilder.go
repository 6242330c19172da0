// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptbuilder implements the fluent Script builder named in
// spec §4.1: add(opcode) and push(bytes), where push always chooses the
// shortest legal encoding.
package scriptbuilder

import (
	"encoding/binary"

	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/opcode"
)

// MaxScriptSize bounds the size of scripts this builder will construct, a
// sanity limit rather than a consensus one (spec explicitly excludes the
// 520-byte push limit and similar full-node policy from this module).
const MaxScriptSize = 1 << 20

var ScriptBuilderError = er.ScriptErrorType.Code("ScriptBuild",
	"script builder refused an operation")

// ScriptBuilder accumulates opcodes and pushes into a single Script.
type ScriptBuilder struct {
	script []byte
	err    er.R
}

// NewScriptBuilder returns an empty ScriptBuilder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, 64)}
}

// AddOp appends a single, non-push opcode.
func (b *ScriptBuilder) AddOp(op byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(b.script)+1 > MaxScriptSize {
		b.err = ScriptBuilderError.New("script would exceed MaxScriptSize")
		return b
	}
	b.script = append(b.script, op)
	return b
}

// AddInt64 pushes a small integer using OP_0/OP_1NEGATE/OP_1..OP_16 when
// possible, falling back to a minimal-length data push otherwise.
func (b *ScriptBuilder) AddInt64(n int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case n == 0:
		return b.AddOp(opcode.OP_0)
	case n == -1:
		return b.AddOp(opcode.OP_1NEGATE)
	case n >= 1 && n <= 16:
		return b.AddOp(byte(opcode.OP_1 + n - 1))
	}
	return b.AddData(scriptNumBytes(n))
}

// scriptNumBytes encodes n using Bitcoin's little-endian signed-magnitude
// stack number format (package txscript's scriptNum decodes it).
func scriptNumBytes(n int64) []byte {
	if n == 0 {
		return nil
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var result []byte
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}
	if result[len(result)-1]&0x80 != 0 {
		if neg {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if neg {
		result[len(result)-1] |= 0x80
	}
	return result
}

// AddData pushes data, choosing OP_0, a direct push, OP_PUSHDATA1,
// OP_PUSHDATA2 or OP_PUSHDATA4 - whichever is the shortest legal encoding.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	n := len(data)
	added := 1 + n
	switch {
	case n == 0:
		return b.AddOp(opcode.OP_0)
	case n <= int(opcode.OP_DATA_75):
		// added already accounts for the 1-byte opcode.
	case n <= 0xff:
		added++
	case n <= 0xffff:
		added += 2
	default:
		added += 4
	}
	if len(b.script)+added > MaxScriptSize {
		b.err = ScriptBuilderError.New("script would exceed MaxScriptSize")
		return b
	}

	switch {
	case n <= int(opcode.OP_DATA_75):
		b.script = append(b.script, byte(n))
	case n <= 0xff:
		b.script = append(b.script, opcode.OP_PUSHDATA1, byte(n))
	case n <= 0xffff:
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(n))
		b.script = append(b.script, opcode.OP_PUSHDATA2)
		b.script = append(b.script, l[:]...)
	default:
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(n))
		b.script = append(b.script, opcode.OP_PUSHDATA4)
		b.script = append(b.script, l[:]...)
	}
	b.script = append(b.script, data...)
	return b
}

// Script returns the built script, or the first error encountered while
// building it.
func (b *ScriptBuilder) Script() ([]byte, er.R) {
	if b.err != nil {
		return nil, b.err
	}
	return b.script, nil
}

// Reset clears the builder's accumulated script and error so it can be
// reused.
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[:0]
	b.err = nil
	return b
}
