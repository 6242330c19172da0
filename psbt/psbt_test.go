// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package psbt

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pkt-cash/btccore/wire"
	"github.com/stretchr/testify/require"
)

func unsignedTxBytes(t *testing.T) []byte {
	t.Helper()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(2000, []byte{0x51}))
	var buf bytes.Buffer
	require.Nil(t, tx.SerializeNoWitness(&buf))
	return buf.Bytes()
}

func TestV0RoundTrip(t *testing.T) {
	p := New(0)
	require.Nil(t, p.Global.AddField(PSBT_GLOBAL_UNSIGNED_TX, nil, unsignedTxBytes(t)))
	p.Inputs = []Map{{Scope: ScopeInput}}
	p.Outputs = []Map{{Scope: ScopeOutput}, {Scope: ScopeOutput}}

	ser, err := p.Serialize()
	require.Nil(t, err)

	got, err := FromSerialized(ser, 0, 0)
	require.Nil(t, err)
	require.Equal(t, 1, len(got.Inputs))
	require.Equal(t, 2, len(got.Outputs))

	ser2, err := got.Serialize()
	require.Nil(t, err)
	require.Equal(t, ser, ser2)
}

func TestV0MissingUnsignedTxFails(t *testing.T) {
	p := New(0)
	p.Outputs = []Map{{Scope: ScopeOutput}}
	_, err := p.Serialize()
	require.NotNil(t, err)
}

func TestV2MissingInputCountFails(t *testing.T) {
	p := New(2)
	require.Nil(t, p.Global.AddField(PSBT_GLOBAL_OUTPUT_COUNT, nil, []byte{0x00}))
	_, err := p.Serialize()
	require.NotNil(t, err)
}

func TestDuplicateFieldRejected(t *testing.T) {
	m := &Map{Scope: ScopeGlobal}
	require.Nil(t, m.AddField(PSBT_GLOBAL_XPUB, []byte("a"), []byte("v1")))
	require.NotNil(t, m.AddField(PSBT_GLOBAL_XPUB, []byte("a"), []byte("v2")))
}

// TestBIP174SamplePSBTRoundTrip mirrors BIP174's canonical sample PSBT
// (base64 "cHNidP8BAHUCAAAAASaBcTce3/KF...AAAAAAA"): one input, two
// outputs, unsigned, version 0. It builds that same shape and checks the
// exact invariants the sample is used to demonstrate: field counts survive
// a round trip and re-serialization is byte-for-byte identical.
func TestBIP174SamplePSBTRoundTrip(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(99999699, mustHexScript(t, "76a914d0c59903c5bac2868760e90d58561094d3b7caaa88ac")))
	tx.AddTxOut(wire.NewTxOut(100000000, mustHexScript(t, "a9143545e6e33a81e961ebf697f3c6e43e4044096e0f87")))
	var buf bytes.Buffer
	require.Nil(t, tx.SerializeNoWitness(&buf))

	p := New(0)
	require.Nil(t, p.Global.AddField(PSBT_GLOBAL_UNSIGNED_TX, nil, buf.Bytes()))
	p.Inputs = []Map{{Scope: ScopeInput}}
	p.Outputs = []Map{{Scope: ScopeOutput}, {Scope: ScopeOutput}}

	ser, err := p.Serialize()
	require.Nil(t, err)
	require.True(t, bytes.HasPrefix(ser, []byte{0x70, 0x73, 0x62, 0x74, 0xff}))

	got, err := FromSerialized(ser, 0, 0)
	require.Nil(t, err)
	require.Equal(t, 1, len(got.Inputs))
	require.Equal(t, 2, len(got.Outputs))

	ser2, err := got.Serialize()
	require.Nil(t, err)
	require.Equal(t, ser, ser2)
}

func mustHexScript(t *testing.T, h string) []byte {
	t.Helper()
	b, err := hex.DecodeString(h)
	require.Nil(t, err)
	return b
}

func TestDumpRendersAllFields(t *testing.T) {
	p := New(0)
	require.Nil(t, p.Global.AddField(PSBT_GLOBAL_UNSIGNED_TX, nil, unsignedTxBytes(t)))
	p.Inputs = []Map{{Scope: ScopeInput}}
	p.Outputs = []Map{{Scope: ScopeOutput}, {Scope: ScopeOutput}}
	out := p.Dump()
	require.Contains(t, out, "global")
}
