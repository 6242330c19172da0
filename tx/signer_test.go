// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tx

import (
	"testing"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"
	"github.com/pkt-cash/btccore/utxo"
	"github.com/stretchr/testify/require"
)

func bareMultiSigScript(t *testing.T, m int, pubkeys ...[]byte) []byte {
	t.Helper()
	b := scriptbuilder.NewScriptBuilder().AddInt64(int64(m))
	for _, pk := range pubkeys {
		b = b.AddData(pk)
	}
	s, err := b.AddInt64(int64(len(pubkeys))).AddOp(opcode.OP_CHECKMULTISIG).Script()
	require.Nil(t, err)
	return s
}

func TestMultiSigTwoOfThreePartialThenComplete(t *testing.T) {
	k1 := newTestKey(t, 11)
	k2 := newTestKey(t, 12)
	k3 := newTestKey(t, 13)
	lockingScript := bareMultiSigScript(t, 2,
		k1.PubKey().Serialize(), k2.PubKey().Serialize(), k3.PubKey().Serialize())

	store := utxo.NewStore()
	op := testOutPoint(20, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 5000, PkScript: lockingScript})

	txn := New(store)
	_, err := txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(4000, lockingScript)

	require.Nil(t, txn.Sign(0, k1, SignOptions{}))
	// Only one of two required signatures is present; the script is
	// incomplete and must not verify yet.
	require.NotNil(t, txn.Verify(0))

	require.Nil(t, txn.Sign(0, k3, SignOptions{}))
	require.Nil(t, txn.Verify(0))
}

func TestSignAndVerifyP2WSHMultiSig(t *testing.T) {
	k1 := newTestKey(t, 21)
	k2 := newTestKey(t, 22)
	witnessScript := bareMultiSigScript(t, 2, k1.PubKey().Serialize(), k2.PubKey().Serialize())
	programHash := sha256Sum(witnessScript)
	lockingScript, err := scriptbuilder.NewScriptBuilder().AddOp(opcode.OP_0).AddData(programHash).Script()
	require.Nil(t, err)

	store := utxo.NewStore()
	op := testOutPoint(23, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 7000, PkScript: lockingScript})

	txn := New(store)
	_, err = txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(6000, lockingScript)

	opts := SignOptions{WitnessScript: witnessScript}
	require.Nil(t, txn.Sign(0, k1, opts))
	require.Nil(t, txn.Sign(0, k2, opts))
	require.Nil(t, txn.Verify(0))
}

func TestSignScriptHashRejectsMissingRedeemScript(t *testing.T) {
	k1 := newTestKey(t, 24)
	redeem := p2wpkhScript(t, k1.PubKey())
	redeemHash := chainhash.Hash160(redeem)
	lockingScript, err := scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_HASH160).AddData(redeemHash).AddOp(opcode.OP_EQUAL).Script()
	require.Nil(t, err)

	store := utxo.NewStore()
	op := testOutPoint(25, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 1000, PkScript: lockingScript})

	txn := New(store)
	_, err = txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(900, lockingScript)

	require.NotNil(t, txn.Sign(0, k1, SignOptions{}))
}
