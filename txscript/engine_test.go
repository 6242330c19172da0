// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func buildScript(t *testing.T, build func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder) []byte {
	t.Helper()
	s, err := build(scriptbuilder.NewScriptBuilder()).Script()
	require.Nil(t, err)
	return s
}

func TestEngineSimpleArithmetic(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddInt64(2).AddInt64(3).AddOp(opcode.OP_ADD).AddInt64(5).AddOp(opcode.OP_NUMEQUAL)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.Nil(t, eng.Execute())
}

func TestEngineFailsOnFalseResult(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddInt64(1).AddInt64(2).AddOp(opcode.OP_NUMEQUAL)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.NotNil(t, eng.Execute())
}

func TestEngineIfElse(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddInt64(0).AddOp(opcode.OP_IF).
			AddInt64(0).
			AddOp(opcode.OP_ELSE).
			AddInt64(1).
			AddOp(opcode.OP_ENDIF)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.Nil(t, eng.Execute())
}

func TestEngineVerifInsideSkippedBranchStillFails(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddInt64(0).AddOp(opcode.OP_IF).
			AddOp(opcode.OP_VERIF).
			AddOp(opcode.OP_ENDIF)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.NotNil(t, eng.Execute())
}

func TestEngineDup2Equal(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddData([]byte("hello")).AddOp(opcode.OP_DUP).AddOp(opcode.OP_EQUAL)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.Nil(t, eng.Execute())
}

func TestEngineHash160(t *testing.T) {
	script := buildScript(t, func(b *scriptbuilder.ScriptBuilder) *scriptbuilder.ScriptBuilder {
		return b.AddData([]byte("hello")).AddOp(opcode.OP_HASH160).AddOp(opcode.OP_SIZE).AddInt64(20).AddOp(opcode.OP_NUMEQUAL)
	})
	eng, err := NewEngine(script, nil)
	require.Nil(t, err)
	require.Nil(t, eng.Execute())
}

func TestScriptNumRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 127, 128, -128, 255, 256, 32767, 32768, -32768} {
		enc := fromInt(newScriptNum(n))
		dec := toInt(enc)
		require.Equal(t, n, dec.Int64(), "round-trip of %d failed, encoded as:\n%s", n, spew.Sdump(enc))
	}
}

func TestAsBool(t *testing.T) {
	require.False(t, asBool(nil))
	require.False(t, asBool([]byte{0x00}))
	require.False(t, asBool([]byte{0x00, 0x80}))
	require.True(t, asBool([]byte{0x01}))
	require.True(t, asBool([]byte{0x00, 0x01}))
}
