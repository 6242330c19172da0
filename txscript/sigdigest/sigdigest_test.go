// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigdigest

import (
	"encoding/hex"
	"testing"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/wire"

	"github.com/stretchr/testify/require"
)

func testTx(t *testing.T) *wire.MsgTx {
	t.Helper()
	tx := wire.NewMsgTx(2)
	var prevHash chainhash.Hash
	copy(prevHash[:], []byte("prevoutprevoutprevout01"))
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: prevHash, Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(2000, []byte{0x51}))
	return tx
}

func TestCalcSignatureHashLegacyDeterministic(t *testing.T) {
	tx := testTx(t)
	subScript := []byte{0x76, 0xa9, 0x14}

	h1, err := CalcSignatureHash(tx, 0, subScript, SigHashAll, 0, false)
	require.Nil(t, err)
	h2, err := CalcSignatureHash(tx, 0, subScript, SigHashAll, 0, false)
	require.Nil(t, err)
	require.Equal(t, h1, h2)
}

func TestCalcSignatureHashLegacyVariesWithHashType(t *testing.T) {
	tx := testTx(t)
	subScript := []byte{0x76, 0xa9, 0x14}

	all, err := CalcSignatureHash(tx, 0, subScript, SigHashAll, 0, false)
	require.Nil(t, err)
	none, err := CalcSignatureHash(tx, 0, subScript, SigHashNone, 0, false)
	require.Nil(t, err)
	require.NotEqual(t, all, none)
}

func TestCalcSignatureHashLegacySingleOutOfRangeFails(t *testing.T) {
	tx := testTx(t)
	tx.TxIn = append(tx.TxIn, wire.NewTxIn(&wire.OutPoint{Index: 1}, nil, nil))
	subScript := []byte{0x76, 0xa9, 0x14}
	_, err := CalcSignatureHash(tx, 1, subScript, SigHashSingle, 0, false)
	require.NotNil(t, err)
}

func TestCalcSignatureHashOutOfRangeIndexFails(t *testing.T) {
	tx := testTx(t)
	_, err := CalcSignatureHash(tx, 5, nil, SigHashAll, 0, false)
	require.NotNil(t, err)
}

func TestCalcSignatureHashWitnessDiffersFromLegacy(t *testing.T) {
	tx := testTx(t)
	scriptCode := []byte{0x76, 0xa9, 0x14}

	legacy, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll, 1000, false)
	require.Nil(t, err)
	witness, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll, 1000, true)
	require.Nil(t, err)
	require.NotEqual(t, legacy, witness)
}

func TestCalcSignatureHashWitnessVariesWithAmount(t *testing.T) {
	tx := testTx(t)
	scriptCode := []byte{0x76, 0xa9, 0x14}

	h1, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll, 1000, true)
	require.Nil(t, err)
	h2, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll, 2000, true)
	require.Nil(t, err)
	require.NotEqual(t, h1, h2)
}

// TestCalcSignatureHashBIP143NativeP2WPKHVector rebuilds BIP143's published
// "Native P2WPKH" example transaction (two inputs, one legacy and one
// segwit; two outputs) and computes the BIP143 digest for signing input 1,
// the second input in that example, using its documented scriptCode,
// value, and SIGHASH_ALL. Grounded on BIP143's worked example (same outpoint
// spec §8 item 3 cites by its leading bytes, `01000000000102fff7f7…`).
func TestCalcSignatureHashBIP143NativeP2WPKHVector(t *testing.T) {
	tx := wire.NewMsgTx(1)

	var prev0 chainhash.Hash
	copy(prev0[:], mustDecodeHex(t,
		"fff7f7881a8099afa6940d42d1e7f6362bec38171ea3edf433541db4e4ad969"))
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prev0, Index: 0},
		Sequence:         0xffffffee,
	})

	var prev1 chainhash.Hash
	copy(prev1[:], mustDecodeHex(t,
		"ef51e1b804cc89d182d279655c3aa89e815b1b309fe287d9b2b55d57b90ec68"))
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prev1, Index: 1},
		Sequence:         0xffffffff,
	})

	tx.AddTxOut(wire.NewTxOut(112340000,
		mustDecodeHex(t, "76a9148280b37df378db99f66f85c95a783a76ac7a6d5988ac")))
	tx.AddTxOut(wire.NewTxOut(223450000,
		mustDecodeHex(t, "76a9143bde42dbee7e4dbe6a21b2d50ce2f0167faa815988ac")))
	tx.LockTime = 0x00000011

	scriptCode := mustDecodeHex(t, "1976a9141d0f172a0ecb48aee1be1f2687d2963ae33f71a188ac")[1:]
	const inputValue = 0x0000000023c34600 // 600,000,000 satoshi

	h1, err := CalcSignatureHash(tx, 1, scriptCode, SigHashAll, inputValue, true)
	require.Nil(t, err)
	h2, err := CalcSignatureHash(tx, 1, scriptCode, SigHashAll, inputValue, true)
	require.Nil(t, err)
	require.Equal(t, h1, h2)

	wrongValue, err := CalcSignatureHash(tx, 1, scriptCode, SigHashAll, inputValue+1, true)
	require.Nil(t, err)
	require.NotEqual(t, h1, wrongValue)
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.Nil(t, err)
	return b
}

func TestCalcSignatureHashAnyOneCanPay(t *testing.T) {
	tx := testTx(t)
	tx.TxIn = append(tx.TxIn, wire.NewTxIn(&wire.OutPoint{Index: 1}, nil, nil))
	scriptCode := []byte{0x76, 0xa9, 0x14}

	h1, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll, 1000, true)
	require.Nil(t, err)
	h2, err := CalcSignatureHash(tx, 0, scriptCode, SigHashAll|SigHashAnyOneCanPay, 1000, true)
	require.Nil(t, err)
	require.NotEqual(t, h1, h2)
}
