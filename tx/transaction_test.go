// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tx

import (
	"testing"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/keys"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"
	"github.com/pkt-cash/btccore/utxo"
	"github.com/pkt-cash/btccore/wire"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T, seed byte) *keys.PrivateKey {
	t.Helper()
	scalar := make([]byte, 32)
	scalar[31] = seed
	priv, err := keys.NewPrivateKey(scalar, true, nil, keys.PurposeLegacy)
	require.Nil(t, err)
	return priv
}

func testOutPoint(b byte, idx uint32) wire.OutPoint {
	var h chainhash.Hash
	h[0] = b
	return wire.OutPoint{Hash: h, Index: idx}
}

func p2pkhScript(t *testing.T, pub *keys.PublicKey) []byte {
	t.Helper()
	s, err := scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).AddOp(opcode.OP_HASH160).AddData(pub.Hash160()).
		AddOp(opcode.OP_EQUALVERIFY).AddOp(opcode.OP_CHECKSIG).
		Script()
	require.Nil(t, err)
	return s
}

func p2wpkhScript(t *testing.T, pub *keys.PublicKey) []byte {
	t.Helper()
	s, err := scriptbuilder.NewScriptBuilder().AddOp(opcode.OP_0).AddData(pub.Hash160()).Script()
	require.Nil(t, err)
	return s
}

func TestSignAndVerifyP2PKH(t *testing.T) {
	priv := newTestKey(t, 1)
	store := utxo.NewStore()
	op := testOutPoint(1, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 50000, PkScript: p2pkhScript(t, priv.PubKey())})

	txn := New(store)
	_, err := txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(40000, p2pkhScript(t, priv.PubKey()))

	require.Nil(t, txn.Sign(0, priv, SignOptions{}))
	require.Nil(t, txn.Verify(0))
}

func TestSignAndVerifyP2WPKH(t *testing.T) {
	priv := newTestKey(t, 2)
	store := utxo.NewStore()
	op := testOutPoint(2, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 50000, PkScript: p2wpkhScript(t, priv.PubKey())})

	txn := New(store)
	_, err := txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(40000, p2pkhScript(t, priv.PubKey()))

	require.Nil(t, txn.Sign(0, priv, SignOptions{}))
	require.Nil(t, txn.Verify(0))
	require.True(t, txn.Msg.HasWitness())
}

func TestSignAndVerifyP2SHNestedP2WPKH(t *testing.T) {
	priv := newTestKey(t, 3)
	redeem := p2wpkhScript(t, priv.PubKey())
	redeemHash := chainhash.Hash160(redeem)
	lockingScript, err := scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_HASH160).AddData(redeemHash).AddOp(opcode.OP_EQUAL).Script()
	require.Nil(t, err)

	store := utxo.NewStore()
	op := testOutPoint(3, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 50000, PkScript: lockingScript})

	txn := New(store)
	_, err = txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(40000, p2pkhScript(t, priv.PubKey()))

	require.Nil(t, txn.Sign(0, priv, SignOptions{RedeemScript: redeem}))
	require.Nil(t, txn.Verify(0))
}

func TestVerifyFailsOnWrongKey(t *testing.T) {
	signer := newTestKey(t, 4)
	other := newTestKey(t, 5)
	store := utxo.NewStore()
	op := testOutPoint(6, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 1000, PkScript: p2pkhScript(t, signer.PubKey())})

	txn := New(store)
	_, err := txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(900, p2pkhScript(t, signer.PubKey()))

	require.Nil(t, txn.Sign(0, other, SignOptions{}))
	require.NotNil(t, txn.Verify(0))
}

func TestFeeComputation(t *testing.T) {
	priv := newTestKey(t, 7)
	store := utxo.NewStore()
	op := testOutPoint(8, 0)
	store.Register(&utxo.UTXO{Outpoint: op, Value: 10000, PkScript: p2pkhScript(t, priv.PubKey())})

	txn := New(store)
	_, err := txn.AddInput(op)
	require.Nil(t, err)
	txn.AddOutput(9000, p2pkhScript(t, priv.PubKey()))

	fee, err := txn.Fee()
	require.Nil(t, err)
	require.Equal(t, int64(1000), fee)
}

func TestAddInputRejectsTooManyLegacyInputs(t *testing.T) {
	priv := newTestKey(t, 9)
	store := utxo.NewStore()
	txn := New(store)

	for i := 0; i < MaxInputsPerTxLegacy; i++ {
		op := testOutPoint(byte(i%256), uint32(i))
		store.Register(&utxo.UTXO{Outpoint: op, Value: 1000, PkScript: p2pkhScript(t, priv.PubKey())})
		_, err := txn.AddInput(op)
		require.Nil(t, err)
	}

	overflow := testOutPoint(0, uint32(MaxInputsPerTxLegacy))
	store.Register(&utxo.UTXO{Outpoint: overflow, Value: 1000, PkScript: p2pkhScript(t, priv.PubKey())})
	_, err := txn.AddInput(overflow)
	require.NotNil(t, err)
}

func TestAddInputAllowsManySegWitInputs(t *testing.T) {
	priv := newTestKey(t, 10)
	store := utxo.NewStore()
	txn := New(store)

	count := MaxInputsPerTxLegacy + 1
	for i := 0; i < count; i++ {
		op := testOutPoint(byte(i%256), uint32(i))
		store.Register(&utxo.UTXO{Outpoint: op, Value: 1000, PkScript: p2wpkhScript(t, priv.PubKey())})
		_, err := txn.AddInput(op)
		require.Nil(t, err)
	}
	require.Equal(t, count, len(txn.Msg.TxIn))
}
