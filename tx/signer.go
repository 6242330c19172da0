// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tx

import (
	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/keys"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"
	"github.com/pkt-cash/btccore/txscript/sigdigest"
	"github.com/pkt-cash/btccore/txscript/standard"
	"github.com/pkt-cash/btccore/wire"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var SignerError = er.TransactionErrorType.Code("Signer",
	"unable to produce a signature for this input")

// SignOptions carries the extra material a single Sign call may need beyond
// the signing key itself, per spec §4.4's Signer dispatch table.
type SignOptions struct {
	// HashType defaults to SigHashAll when zero.
	HashType sigdigest.SigHashType

	// RedeemScript is required when the UTXO's locking script is P2SH: the
	// script committed to by the HASH160 in the locking script. When that
	// redeem script is itself a nested SegWit program, WitnessScript
	// additionally carries the actual witness script.
	RedeemScript []byte

	// WitnessScript is required when the UTXO's locking script is P2WSH
	// (natively, or nested inside P2SH): the script committed to by the
	// SHA256 in the witness program.
	WitnessScript []byte

	// MultisigIndex, when non-zero, forces the 1-based position (in
	// pubkey order) this signature is placed at in a bare-multisig or
	// P2(W)SH-wrapped-multisig script, bypassing the pubkey-match
	// auto-detection Sign otherwise performs.
	MultisigIndex int
}

// Sign produces a signature for input idx with key and installs it (and any
// accompanying pushes) into the input's signature_script and/or witness,
// dispatching on the UTXO's standard script class per spec §4.4.
func (t *Transaction) Sign(idx int, key *keys.PrivateKey, opts SignOptions) er.R {
	if opts.HashType == 0 {
		opts.HashType = sigdigest.SigHashAll
	}
	ic, err := t.resolveInput(idx)
	if err != nil {
		return err
	}

	switch ic.class {
	case standard.PubKeyTy, standard.PubKeyHashTy:
		pushes, err := t.signStandard(idx, key, ic.class, ic.utxo.PkScript, opts.HashType, false, ic.utxo.Value, opts)
		if err != nil {
			return err
		}
		return t.installLegacy(idx, pushes, nil)

	case standard.MultiSigTy:
		pops, err := parsescript.ParseScript(ic.utxo.PkScript)
		if err != nil {
			return err
		}
		pushes, err := t.signMultiSig(idx, key, pops, ic.utxo.PkScript, opts.HashType, false, ic.utxo.Value,
			t.currentPushes(idx, false), opts)
		if err != nil {
			return err
		}
		return t.installLegacy(idx, pushes, nil)

	case standard.WitnessV0PubKeyHashTy:
		scriptCode, err := p2pkhScriptCode(ic.witnessProgram)
		if err != nil {
			return err
		}
		pushes, err := t.signStandard(idx, key, standard.PubKeyHashTy, scriptCode, opts.HashType, true, ic.utxo.Value, opts)
		if err != nil {
			return err
		}
		t.Msg.TxIn[idx].Witness = pushes
		return nil

	case standard.WitnessV0ScriptHashTy:
		return t.signWitnessScriptHash(idx, key, ic.witnessProgram, opts.WitnessScript, ic.utxo.Value, opts)

	case standard.ScriptHashTy:
		return t.signScriptHash(idx, key, ic, opts)

	default:
		return SignerError.New("UTXO locking script is not a recognized standard type")
	}
}

// signStandard signs the P2PK/P2PKH shapes: scriptCode is either the UTXO's
// own pkScript (legacy) or the P2PKH-equivalent built from a witness
// program's hash (SegWit), per spec §4.3's scriptCode rules.
func (t *Transaction) signStandard(idx int, key *keys.PrivateKey, class standard.ScriptClass,
	scriptCode []byte, hashType sigdigest.SigHashType, segwit bool, amount int64, opts SignOptions) ([][]byte, er.R) {

	digest, err := sigdigest.CalcSignatureHash(t.Msg, idx, scriptCode, hashType, amount, segwit)
	if err != nil {
		return nil, err
	}
	sig := key.SignWithHashType(digest, hashType)

	switch class {
	case standard.PubKeyTy:
		return [][]byte{sig}, nil
	case standard.PubKeyHashTy:
		return [][]byte{sig, key.PubKey().Serialize()}, nil
	default:
		return nil, SignerError.New("signStandard called with a non-P2PK/P2PKH class")
	}
}

// signMultiSig builds the ordered signature pushes for a bare multisig
// script (or one reached through P2SH/P2WSH), preserving signatures already
// present on the input from a previous partial sign.
func (t *Transaction) signMultiSig(idx int, key *keys.PrivateKey, pops []parsescript.ParsedOpcode,
	scriptCode []byte, hashType sigdigest.SigHashType, segwit bool, amount int64,
	existing [][]byte, opts SignOptions) ([][]byte, er.R) {

	if len(pops) < 4 || !pops[0].Opcode.IsSmallInt() {
		return nil, SignerError.New("redeem/locking script is not a valid multisig script")
	}
	last := len(pops) - 1
	n := pops[last-1].Opcode.AsSmallInt()
	pubkeys := make([][]byte, n)
	for i := 0; i < n; i++ {
		pubkeys[i] = pops[1+i].Data
	}

	digest, err := sigdigest.CalcSignatureHash(t.Msg, idx, scriptCode, hashType, amount, segwit)
	if err != nil {
		return nil, err
	}

	slots := extractMultisigSigs(existing, pubkeys, digest)

	myIndex := opts.MultisigIndex - 1
	if opts.MultisigIndex == 0 {
		myPub := key.PubKey().Serialize()
		myIndex = -1
		for i, pk := range pubkeys {
			if bytesEqual(pk, myPub) {
				myIndex = i
				break
			}
		}
	}
	if myIndex < 0 || myIndex >= n {
		return nil, SignerError.New("signing key's public key is not part of this multisig script")
	}

	sig := key.SignWithHashType(digest, hashType)
	slots[myIndex] = sig

	pushes := [][]byte{nil} // OP_0: CHECKMULTISIG's off-by-one dummy element
	for i := 0; i < n; i++ {
		if s, ok := slots[i]; ok {
			pushes = append(pushes, s)
		}
	}
	return pushes, nil
}

// extractMultisigSigs recovers, from a previously-built set of pushes, which
// pubkey (by index) each existing signature belongs to, by trial
// verification against digest - the same check CHECKMULTISIG itself performs.
func extractMultisigSigs(existing [][]byte, pubkeys [][]byte, digest *chainhash.Hash) map[int][]byte {
	slots := make(map[int][]byte)
	for _, item := range existing {
		if len(item) == 0 {
			continue
		}
		sigDer := item[:len(item)-1]
		sig, err := ecdsa.ParseDERSignature(sigDer)
		if err != nil {
			continue
		}
		for i, pkBytes := range pubkeys {
			if _, taken := slots[i]; taken {
				continue
			}
			pub, err := keys.NewPublicKey(pkBytes, nil, 0)
			if err != nil {
				continue
			}
			if sig.Verify(digest[:], pub.Raw()) {
				slots[i] = item
				break
			}
		}
	}
	return slots
}

// currentPushes returns the items already present on input idx's
// signature_script (legacy) or witness (SegWit), for use as the "existing"
// set a fresh multisig signature is layered on top of.
func (t *Transaction) currentPushes(idx int, segwit bool) [][]byte {
	if segwit {
		return t.Msg.TxIn[idx].Witness
	}
	pops, err := parsescript.ParseScript(t.Msg.TxIn[idx].SignatureScript)
	if err != nil {
		return nil
	}
	out := make([][]byte, len(pops))
	for i, p := range pops {
		out[i] = p.Data
	}
	return out
}

// installLegacy writes pushes (optionally followed by a redeem script) into
// input idx's signature_script.
func (t *Transaction) installLegacy(idx int, pushes [][]byte, redeemScript []byte) er.R {
	b := scriptbuilder.NewScriptBuilder()
	for _, p := range pushes {
		b.AddData(p)
	}
	if redeemScript != nil {
		b.AddData(redeemScript)
	}
	script, err := b.Script()
	if err != nil {
		return err
	}
	t.Msg.TxIn[idx].SignatureScript = script
	return nil
}

// signWitnessScriptHash signs a (possibly P2SH-nested) P2WSH input:
// witnessScript is signed as its own standard type, then appended as the
// final witness item.
func (t *Transaction) signWitnessScriptHash(idx int, key *keys.PrivateKey, committedHash []byte, witnessScript []byte, amount int64, opts SignOptions) er.R {
	if witnessScript == nil {
		return SignerError.New("P2WSH input requires WitnessScript")
	}
	if !bytesEqual(sha256Sum(witnessScript), committedHash) {
		return SignerError.New("witness script does not match the committed hash")
	}
	pops, err := parsescript.ParseScript(witnessScript)
	if err != nil {
		return err
	}
	class := standard.GetScriptClass(pops)

	var pushes [][]byte
	switch class {
	case standard.ScriptHashTy, standard.WitnessV0PubKeyHashTy, standard.WitnessV0ScriptHashTy:
		return SignerError.New("witness script must not itself be P2SH or a nested SegWit program")
	case standard.MultiSigTy:
		pushes, err = t.signMultiSig(idx, key, pops, witnessScript, opts.HashType, true, amount,
			t.currentPushes(idx, true), opts)
	case standard.PubKeyTy, standard.PubKeyHashTy:
		pushes, err = t.signStandard(idx, key, class, witnessScript, opts.HashType, true, amount, opts)
	default:
		return SignerError.New("witness script is not a recognized standard type")
	}
	if err != nil {
		return err
	}

	witness := make(wire.TxWitness, 0, len(pushes)+1)
	witness = append(witness, pushes...)
	witness = append(witness, witnessScript)
	t.Msg.TxIn[idx].Witness = witness
	return nil
}

// signScriptHash signs a P2SH input. If the redeem script itself matches a
// nested SegWit program, the signature_script becomes just the pushed
// program and signing recurses as the nested type; otherwise the redeem
// script is signed as its own standard type and appended to the
// signature_script.
func (t *Transaction) signScriptHash(idx int, key *keys.PrivateKey, ic *inputContext, opts SignOptions) er.R {
	redeemScript := opts.RedeemScript
	if redeemScript == nil {
		return SignerError.New("P2SH input requires RedeemScript")
	}
	if !bytesEqual(chainhash.Hash160(redeemScript), redeemHashOf(ic.utxo.PkScript)) {
		return SignerError.New("redeem script does not match the committed hash")
	}
	redeemPops, err := parsescript.ParseScript(redeemScript)
	if err != nil {
		return err
	}
	switch standard.GetScriptClass(redeemPops) {
	case standard.ScriptHashTy:
		return SignerError.New("redeem script must not itself be P2SH")
	case standard.WitnessV0PubKeyHashTy:
		program, err := scriptbuilder.NewScriptBuilder().AddData(redeemScript).Script()
		if err != nil {
			return err
		}
		scriptCode, err := p2pkhScriptCode(redeemPops[1].Data)
		if err != nil {
			return err
		}
		pushes, err := t.signStandard(idx, key, standard.PubKeyHashTy, scriptCode, opts.HashType, true, ic.utxo.Value, opts)
		if err != nil {
			return err
		}
		t.Msg.TxIn[idx].SignatureScript = program
		t.Msg.TxIn[idx].Witness = pushes
		return nil
	case standard.WitnessV0ScriptHashTy:
		program, err := scriptbuilder.NewScriptBuilder().AddData(redeemScript).Script()
		if err != nil {
			return err
		}
		if err := t.signWitnessScriptHash(idx, key, redeemPops[1].Data, opts.WitnessScript, ic.utxo.Value, opts); err != nil {
			return err
		}
		t.Msg.TxIn[idx].SignatureScript = program
		return nil
	}

	class := standard.GetScriptClass(redeemPops)
	var pushes [][]byte
	switch class {
	case standard.MultiSigTy:
		pushes, err = t.signMultiSig(idx, key, redeemPops, redeemScript, opts.HashType, false, ic.utxo.Value,
			t.currentPushes(idx, false), opts)
	case standard.PubKeyTy, standard.PubKeyHashTy:
		pushes, err = t.signStandard(idx, key, class, redeemScript, opts.HashType, false, ic.utxo.Value, opts)
	default:
		return SignerError.New("redeem script is not a recognized standard type")
	}
	if err != nil {
		return err
	}
	return t.installLegacy(idx, pushes, redeemScript)
}

// redeemHashOf extracts the 20-byte HASH160 committed to by a P2SH locking
// script (OP_HASH160 <hash> OP_EQUAL).
func redeemHashOf(pkScript []byte) []byte {
	pops, err := parsescript.ParseScript(pkScript)
	if err != nil || len(pops) != 3 {
		return nil
	}
	return pops[1].Data
}

// p2pkhScriptCode builds the P2PKH-equivalent script BIP143 signs over for a
// P2WPKH program carrying hash.
func p2pkhScriptCode(hash []byte) ([]byte, er.R) {
	return scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).AddOp(opcode.OP_HASH160).AddData(hash).
		AddOp(opcode.OP_EQUALVERIFY).AddOp(opcode.OP_CHECKSIG).
		Script()
}
