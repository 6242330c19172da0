// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package standard recognizes the handful of locking-script shapes spec
// §4.1 calls "standard scripts": P2PK, P2PKH, P2SH, bare multisig, null
// data, and the v0 SegWit program forms P2WPKH/P2WSH.
package standard

import (
	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// ScriptClass enumerates the recognized locking-script shapes.
type ScriptClass byte

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	MultiSigTy
	NullDataTy
	WitnessV0PubKeyHashTy
	WitnessV0ScriptHashTy
	WitnessV1TaprootTy
)

func (s ScriptClass) String() string {
	switch s {
	case PubKeyTy:
		return "pubkey"
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case MultiSigTy:
		return "multisig"
	case NullDataTy:
		return "nulldata"
	case WitnessV0PubKeyHashTy:
		return "witness_v0_keyhash"
	case WitnessV0ScriptHashTy:
		return "witness_v0_scripthash"
	case WitnessV1TaprootTy:
		return "witness_v1_taproot"
	default:
		return "nonstandard"
	}
}

var ScriptRecognitionError = er.ScriptErrorType.Code("ScriptRecognition",
	"pkScript does not match a supported address type")

// isPubkey reports <33-or-65-byte pubkey> OP_CHECKSIG.
func isPubkey(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 2 &&
		(len(pops[0].Data) == 33 || len(pops[0].Data) == 65) &&
		pops[1].Opcode.Value == opcode.OP_CHECKSIG
}

// isPubkeyHash reports OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
func isPubkeyHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 5 &&
		pops[0].Opcode.Value == opcode.OP_DUP &&
		pops[1].Opcode.Value == opcode.OP_HASH160 &&
		len(pops[2].Data) == 20 &&
		pops[3].Opcode.Value == opcode.OP_EQUALVERIFY &&
		pops[4].Opcode.Value == opcode.OP_CHECKSIG
}

// isScriptHash reports OP_HASH160 <20 bytes> OP_EQUAL.
func isScriptHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].Opcode.Value == opcode.OP_HASH160 &&
		len(pops[1].Data) == 20 &&
		pops[2].Opcode.Value == opcode.OP_EQUAL
}

// isMultiSig reports <m> <pubkey>... <n> OP_CHECKMULTISIG with 1<=m<=n<=16.
func isMultiSig(pops []parsescript.ParsedOpcode) bool {
	if len(pops) < 4 {
		return false
	}
	if !pops[0].Opcode.IsSmallInt() {
		return false
	}
	m := pops[0].Opcode.AsSmallInt()
	last := len(pops) - 1
	if pops[last].Opcode.Value != opcode.OP_CHECKMULTISIG {
		return false
	}
	if !pops[last-1].Opcode.IsSmallInt() {
		return false
	}
	n := pops[last-1].Opcode.AsSmallInt()
	if m < 1 || m > n || n > 16 {
		return false
	}
	if last-1-1 != n {
		return false
	}
	for i := 1; i <= n; i++ {
		l := len(pops[i].Data)
		if l != 33 && l != 65 {
			return false
		}
	}
	return true
}

// isNullData reports OP_RETURN optionally followed by a single data push of
// at most 80 bytes, the OP_RETURN relay blueprint used across the corpus.
func isNullData(pops []parsescript.ParsedOpcode) bool {
	if len(pops) == 1 {
		return pops[0].Opcode.Value == opcode.OP_RETURN
	}
	return len(pops) == 2 &&
		pops[0].Opcode.Value == opcode.OP_RETURN &&
		pops[1].Opcode.IsPushValue() &&
		len(pops[1].Data) <= 80
}

// isWitnessV0PubKeyHash reports OP_0 <20 bytes>.
func isWitnessV0PubKeyHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].Opcode.Value == opcode.OP_0 &&
		len(pops[1].Data) == 20
}

// isWitnessV0ScriptHash reports OP_0 <32 bytes>.
func isWitnessV0ScriptHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].Opcode.Value == opcode.OP_0 &&
		len(pops[1].Data) == 32
}

// isWitnessV1Taproot reports OP_1 <32-byte x-only output key>, the BIP341
// witness v1 program shape.
func isWitnessV1Taproot(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].Opcode.Value == opcode.OP_1 &&
		len(pops[1].Data) == 32
}

// GetScriptClass classifies a parsed locking script per spec §4.1's
// type_of_script(). Returns NonStandardTy if no blueprint matches.
func GetScriptClass(pops []parsescript.ParsedOpcode) ScriptClass {
	switch {
	case isPubkey(pops):
		return PubKeyTy
	case isPubkeyHash(pops):
		return PubKeyHashTy
	case isScriptHash(pops):
		return ScriptHashTy
	case isMultiSig(pops):
		return MultiSigTy
	case isNullData(pops):
		return NullDataTy
	case isWitnessV0PubKeyHash(pops):
		return WitnessV0PubKeyHashTy
	case isWitnessV0ScriptHash(pops):
		return WitnessV0ScriptHashTy
	case isWitnessV1Taproot(pops):
		return WitnessV1TaprootTy
	default:
		return NonStandardTy
	}
}

// ExpectedInputs returns the number of signatures/data pushes a
// signature_script (or witness stack) for this class is expected to
// supply, or -1 when that count isn't fixed by the class alone.
func ExpectedInputs(pops []parsescript.ParsedOpcode, class ScriptClass) int {
	switch class {
	case PubKeyTy:
		return 1
	case PubKeyHashTy:
		return 2
	case WitnessV0PubKeyHashTy:
		return 2
	case WitnessV1TaprootTy:
		return 1
	case MultiSigTy:
		if len(pops) < 1 || !pops[0].Opcode.IsSmallInt() {
			return -1
		}
		return pops[0].Opcode.AsSmallInt() + 1
	case ScriptHashTy, WitnessV0ScriptHashTy:
		return -1
	default:
		return -1
	}
}

// PayToAddrScript builds the standard locking script for a decoded address.
func PayToAddrScript(addr Address) ([]byte, er.R) {
	switch a := addr.(type) {
	case *PubKeyHashAddress:
		return scriptbuilder.NewScriptBuilder().
			AddOp(opcode.OP_DUP).AddOp(opcode.OP_HASH160).
			AddData(a.Hash[:]).
			AddOp(opcode.OP_EQUALVERIFY).AddOp(opcode.OP_CHECKSIG).
			Script()
	case *ScriptHashAddress:
		return scriptbuilder.NewScriptBuilder().
			AddOp(opcode.OP_HASH160).AddData(a.Hash[:]).AddOp(opcode.OP_EQUAL).
			Script()
	case *WitnessPubKeyHashAddress:
		return scriptbuilder.NewScriptBuilder().AddOp(opcode.OP_0).AddData(a.Hash[:]).Script()
	case *WitnessScriptHashAddress:
		return scriptbuilder.NewScriptBuilder().AddOp(opcode.OP_0).AddData(a.Hash[:]).Script()
	case *TaprootAddress:
		return scriptbuilder.NewScriptBuilder().AddOp(opcode.OP_1).AddData(a.OutputKey[:]).Script()
	default:
		return nil, ScriptRecognitionError.New("unsupported address type")
	}
}

// Address is implemented by every decoded address type in this package.
type Address interface {
	EncodeAddress() string
	ScriptAddress() []byte
	IsForNet(params *chaincfg.Params) bool
}

// PubKeyHashAddress is a legacy Base58Check P2PKH address.
type PubKeyHashAddress struct {
	Hash  [20]byte
	netID byte
}

// ScriptHashAddress is a legacy Base58Check P2SH address.
type ScriptHashAddress struct {
	Hash  [20]byte
	netID byte
}

// WitnessPubKeyHashAddress is a bech32 v0 P2WPKH address.
type WitnessPubKeyHashAddress struct {
	Hash   [20]byte
	hrpNet *chaincfg.Params
}

// WitnessScriptHashAddress is a bech32 v0 P2WSH address.
type WitnessScriptHashAddress struct {
	Hash   [32]byte
	hrpNet *chaincfg.Params
}

// TaprootAddress is a bech32m v1 P2TR address (BIP341/BIP350).
type TaprootAddress struct {
	OutputKey [32]byte
	hrpNet    *chaincfg.Params
}

func (a *PubKeyHashAddress) ScriptAddress() []byte        { return a.Hash[:] }
func (a *ScriptHashAddress) ScriptAddress() []byte        { return a.Hash[:] }
func (a *WitnessPubKeyHashAddress) ScriptAddress() []byte { return a.Hash[:] }
func (a *WitnessScriptHashAddress) ScriptAddress() []byte { return a.Hash[:] }
func (a *TaprootAddress) ScriptAddress() []byte           { return a.OutputKey[:] }

func (a *PubKeyHashAddress) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.PubKeyHashAddrID
}
func (a *ScriptHashAddress) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.ScriptHashAddrID
}
func (a *WitnessPubKeyHashAddress) IsForNet(params *chaincfg.Params) bool {
	return a.hrpNet == params || a.hrpNet.Bech32HRP == params.Bech32HRP
}
func (a *WitnessScriptHashAddress) IsForNet(params *chaincfg.Params) bool {
	return a.hrpNet == params || a.hrpNet.Bech32HRP == params.Bech32HRP
}
func (a *TaprootAddress) IsForNet(params *chaincfg.Params) bool {
	return a.hrpNet == params || a.hrpNet.Bech32HRP == params.Bech32HRP
}

func (a *PubKeyHashAddress) EncodeAddress() string {
	return base58.CheckEncode(a.Hash[:], a.netID)
}

func (a *ScriptHashAddress) EncodeAddress() string {
	return base58.CheckEncode(a.Hash[:], a.netID)
}

func (a *WitnessPubKeyHashAddress) EncodeAddress() string {
	return encodeSegWitAddress(a.hrpNet.Bech32HRP, 0, a.Hash[:])
}

func (a *WitnessScriptHashAddress) EncodeAddress() string {
	return encodeSegWitAddress(a.hrpNet.Bech32HRP, 0, a.Hash[:])
}

func (a *TaprootAddress) EncodeAddress() string {
	return encodeSegWitAddress(a.hrpNet.Bech32HRP, 1, a.OutputKey[:])
}

// encodeSegWitAddress encodes a witness program per BIP173 (version 0, plain
// bech32) or BIP350 (version 1 and up, bech32m).
func encodeSegWitAddress(hrp string, witnessVersion byte, witnessProgram []byte) string {
	converted, err := bech32.ConvertBits(witnessProgram, 8, 5, true)
	if err != nil {
		return ""
	}
	combined := make([]byte, len(converted)+1)
	combined[0] = witnessVersion
	copy(combined[1:], converted)
	var encoded string
	var errr error
	if witnessVersion == 0 {
		encoded, errr = bech32.Encode(hrp, combined)
	} else {
		encoded, errr = bech32.EncodeM(hrp, combined)
	}
	if errr != nil {
		return ""
	}
	return encoded
}

// decodeSegWit decodes a witness address string under either the bech32
// (v0) or bech32m (v1+) checksum constant, per BIP350.
func decodeSegWit(addr string) (hrp string, data []byte, err error) {
	if hrp, data, err = bech32.Decode(addr); err == nil {
		return hrp, data, nil
	}
	return bech32.DecodeM(addr)
}

var AddressDecodeError = er.ScriptErrorType.Code("AddressDecode",
	"unable to decode address")

// NewPubKeyHashAddress builds a P2PKH address for the given network.
func NewPubKeyHashAddress(hash [20]byte, params *chaincfg.Params) *PubKeyHashAddress {
	return &PubKeyHashAddress{Hash: hash, netID: params.PubKeyHashAddrID}
}

// NewScriptHashAddress builds a P2SH address for the given network.
func NewScriptHashAddress(hash [20]byte, params *chaincfg.Params) *ScriptHashAddress {
	return &ScriptHashAddress{Hash: hash, netID: params.ScriptHashAddrID}
}

// NewWitnessPubKeyHashAddress builds a P2WPKH address for the given network.
func NewWitnessPubKeyHashAddress(hash [20]byte, params *chaincfg.Params) *WitnessPubKeyHashAddress {
	return &WitnessPubKeyHashAddress{Hash: hash, hrpNet: params}
}

// NewWitnessScriptHashAddress builds a P2WSH address for the given network.
func NewWitnessScriptHashAddress(hash [32]byte, params *chaincfg.Params) *WitnessScriptHashAddress {
	return &WitnessScriptHashAddress{Hash: hash, hrpNet: params}
}

// NewTaprootAddress builds a P2TR address for the given network.
func NewTaprootAddress(outputKey [32]byte, params *chaincfg.Params) *TaprootAddress {
	return &TaprootAddress{OutputKey: outputKey, hrpNet: params}
}

// DecodeAddress parses a Base58Check or bech32/bech32m address string
// against the given network, per spec §4.1's from_string().
func DecodeAddress(addr string, params *chaincfg.Params) (Address, er.R) {
	if hrp, data, errr := decodeSegWit(addr); errr == nil && hrp == params.Bech32HRP {
		if len(data) < 1 {
			return nil, AddressDecodeError.New("empty bech32 payload")
		}
		witnessVersion := data[0]
		program, errr := bech32.ConvertBits(data[1:], 5, 8, false)
		if errr != nil {
			return nil, er.E(errr)
		}
		switch witnessVersion {
		case 0:
			switch len(program) {
			case 20:
				var h [20]byte
				copy(h[:], program)
				return NewWitnessPubKeyHashAddress(h, params), nil
			case 32:
				var h [32]byte
				copy(h[:], program)
				return NewWitnessScriptHashAddress(h, params), nil
			default:
				return nil, AddressDecodeError.New("invalid witness program length")
			}
		case 1:
			if len(program) != 32 {
				return nil, AddressDecodeError.New("invalid taproot output key length")
			}
			var h [32]byte
			copy(h[:], program)
			return NewTaprootAddress(h, params), nil
		default:
			return nil, AddressDecodeError.New("unsupported witness version")
		}
	}

	decoded, netID, errr := base58.CheckDecode(addr)
	if errr != nil {
		return nil, AddressDecodeError.New("invalid base58check address: " + errr.Error())
	}
	if len(decoded) != 20 {
		return nil, AddressDecodeError.New("invalid base58check payload length")
	}
	var h [20]byte
	copy(h[:], decoded)
	switch netID {
	case params.PubKeyHashAddrID:
		return NewPubKeyHashAddress(h, params), nil
	case params.ScriptHashAddrID:
		return NewScriptHashAddress(h, params), nil
	default:
		return nil, AddressDecodeError.New("address does not belong to the given network")
	}
}
