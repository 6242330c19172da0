// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standard

import (
	"testing"

	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, script []byte) []parsescript.ParsedOpcode {
	t.Helper()
	pops, err := parsescript.ParseScript(script)
	require.Nil(t, err)
	return pops
}

func TestGetScriptClassPubKeyHash(t *testing.T) {
	var hash [20]byte
	addr := NewPubKeyHashAddress(hash, &chaincfg.MainNetParams)
	script, err := PayToAddrScript(addr)
	require.Nil(t, err)
	require.Equal(t, PubKeyHashTy, GetScriptClass(mustParse(t, script)))
}

func TestGetScriptClassScriptHash(t *testing.T) {
	var hash [20]byte
	addr := NewScriptHashAddress(hash, &chaincfg.MainNetParams)
	script, err := PayToAddrScript(addr)
	require.Nil(t, err)
	require.Equal(t, ScriptHashTy, GetScriptClass(mustParse(t, script)))
}

func TestGetScriptClassWitnessV0(t *testing.T) {
	var h20 [20]byte
	pkhAddr := NewWitnessPubKeyHashAddress(h20, &chaincfg.MainNetParams)
	script, err := PayToAddrScript(pkhAddr)
	require.Nil(t, err)
	require.Equal(t, WitnessV0PubKeyHashTy, GetScriptClass(mustParse(t, script)))

	var h32 [32]byte
	shAddr := NewWitnessScriptHashAddress(h32, &chaincfg.MainNetParams)
	script, err = PayToAddrScript(shAddr)
	require.Nil(t, err)
	require.Equal(t, WitnessV0ScriptHashTy, GetScriptClass(mustParse(t, script)))
}

func TestGetScriptClassMultiSig(t *testing.T) {
	pub1 := make([]byte, 33)
	pub1[0] = 0x02
	pub2 := make([]byte, 33)
	pub2[0] = 0x03
	script, err := scriptbuilder.NewScriptBuilder().
		AddInt64(1).AddData(pub1).AddData(pub2).AddInt64(2).
		AddOp(opcode.OP_CHECKMULTISIG).Script()
	require.Nil(t, err)
	require.Equal(t, MultiSigTy, GetScriptClass(mustParse(t, script)))
}

func TestGetScriptClassNonStandard(t *testing.T) {
	script := []byte{0x6a, 0x6a, 0x6a}
	require.Equal(t, NonStandardTy, GetScriptClass(mustParse(t, script)))
}

func TestExpectedInputs(t *testing.T) {
	require.Equal(t, 2, ExpectedInputs(nil, PubKeyHashTy))
	require.Equal(t, 2, ExpectedInputs(nil, WitnessV0PubKeyHashTy))
	require.Equal(t, -1, ExpectedInputs(nil, ScriptHashTy))
}

func TestPubKeyHashAddressRoundTrip(t *testing.T) {
	var hash [20]byte
	copy(hash[:], []byte("0123456789abcdefghij"))
	addr := NewPubKeyHashAddress(hash, &chaincfg.MainNetParams)
	encoded := addr.EncodeAddress()

	decoded, err := DecodeAddress(encoded, &chaincfg.MainNetParams)
	require.Nil(t, err)
	pkh, ok := decoded.(*PubKeyHashAddress)
	require.True(t, ok)
	require.Equal(t, hash, pkh.Hash)
	require.True(t, pkh.IsForNet(&chaincfg.MainNetParams))
	require.False(t, pkh.IsForNet(&chaincfg.TestNet3Params))
}

func TestWitnessPubKeyHashAddressRoundTrip(t *testing.T) {
	var hash [20]byte
	copy(hash[:], []byte("0123456789abcdefghij"))
	addr := NewWitnessPubKeyHashAddress(hash, &chaincfg.MainNetParams)
	encoded := addr.EncodeAddress()

	decoded, err := DecodeAddress(encoded, &chaincfg.MainNetParams)
	require.Nil(t, err)
	wAddr, ok := decoded.(*WitnessPubKeyHashAddress)
	require.True(t, ok)
	require.Equal(t, hash, wAddr.Hash)
}

func TestDecodeAddressWrongNetworkFails(t *testing.T) {
	var hash [20]byte
	addr := NewPubKeyHashAddress(hash, &chaincfg.MainNetParams)
	encoded := addr.EncodeAddress()
	_, err := DecodeAddress(encoded, &chaincfg.TestNet3Params)
	require.NotNil(t, err)
}

func TestGetScriptClassWitnessV1Taproot(t *testing.T) {
	var outputKey [32]byte
	copy(outputKey[:], []byte("0123456789abcdefghij0123456789ab"))
	addr := NewTaprootAddress(outputKey, &chaincfg.MainNetParams)
	script, err := PayToAddrScript(addr)
	require.Nil(t, err)
	require.Equal(t, WitnessV1TaprootTy, GetScriptClass(mustParse(t, script)))
	require.Equal(t, 1, ExpectedInputs(mustParse(t, script), WitnessV1TaprootTy))
}

func TestTaprootAddressRoundTrip(t *testing.T) {
	var outputKey [32]byte
	copy(outputKey[:], []byte("0123456789abcdefghij0123456789ab"))
	addr := NewTaprootAddress(outputKey, &chaincfg.MainNetParams)
	encoded := addr.EncodeAddress()

	decoded, err := DecodeAddress(encoded, &chaincfg.MainNetParams)
	require.Nil(t, err)
	tr, ok := decoded.(*TaprootAddress)
	require.True(t, ok)
	require.Equal(t, outputKey, tr.OutputKey)
	require.True(t, tr.IsForNet(&chaincfg.MainNetParams))
}

func TestTaprootAddressRejectsWrongProgramLength(t *testing.T) {
	converted, err := bech32.ConvertBits(make([]byte, 20), 8, 5, true)
	require.Nil(t, err)
	combined := make([]byte, len(converted)+1)
	combined[0] = 1
	copy(combined[1:], converted)
	encoded, errr := bech32.EncodeM(chaincfg.MainNetParams.Bech32HRP, combined)
	require.Nil(t, errr)

	_, decodeErr := DecodeAddress(encoded, &chaincfg.MainNetParams)
	require.NotNil(t, decodeErr)
}
