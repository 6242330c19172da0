// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"testing"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/wire"
	"github.com/stretchr/testify/require"
)

func testOutPoint(b byte, idx uint32) wire.OutPoint {
	var h chainhash.Hash
	h[0] = b
	return wire.OutPoint{Hash: h, Index: idx}
}

func TestRegisterAndGet(t *testing.T) {
	s := NewStore()
	op := testOutPoint(1, 0)
	s.Register(&UTXO{Outpoint: op, Value: 1000, PkScript: []byte{opcode.OP_TRUE}})

	got, err := s.Get(op)
	require.Nil(t, err)
	require.Equal(t, int64(1000), got.Value)
}

func TestGetMissingWithoutLoaderFails(t *testing.T) {
	s := NewStore()
	_, err := s.Get(testOutPoint(2, 0))
	require.NotNil(t, err)
}

func TestLoaderInvokedOnMiss(t *testing.T) {
	s := NewStore()
	op := testOutPoint(3, 1)
	s.SetLoader(func(o wire.OutPoint) *UTXO {
		return &UTXO{Outpoint: o, Value: 42, PkScript: []byte{opcode.OP_TRUE}}
	})
	got, err := s.Get(op)
	require.Nil(t, err)
	require.Equal(t, int64(42), got.Value)
	require.Equal(t, 1, s.Len())
}

func TestNullDataNeverStored(t *testing.T) {
	s := NewStore()
	op := testOutPoint(4, 0)
	s.Register(&UTXO{Outpoint: op, Value: 0, PkScript: []byte{opcode.OP_RETURN}})
	require.Equal(t, 0, s.Len())
}

func TestUnregisterRemoves(t *testing.T) {
	s := NewStore()
	op := testOutPoint(5, 0)
	s.Register(&UTXO{Outpoint: op, Value: 1, PkScript: []byte{opcode.OP_TRUE}})
	s.Unregister(op)
	_, err := s.Get(op)
	require.NotNil(t, err)
}
