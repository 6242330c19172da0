// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tx is the Transaction subsystem of spec §4.4-§4.5: a
// UTXO-aware wrapper over wire.MsgTx, the per-standard-type Signer, and
// Transaction.Verify which drives the Script runner per input.
package tx

import (
	"crypto/sha256"
	"fmt"

	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/txscript/scriptbuilder"
	"github.com/pkt-cash/btccore/txscript/standard"
	"github.com/pkt-cash/btccore/utxo"
	"github.com/pkt-cash/btccore/wire"
)

// MaxInputsPerTx is the largest number of inputs this package will build
// into a single transaction when every input is SegWit.
const MaxInputsPerTx = 1460

// MaxInputsPerTxLegacy is the (lower) limit that applies as soon as at
// least one legacy, non-SegWit input is present, since legacy signature
// scripts are heavier per byte than witness data.
const MaxInputsPerTxLegacy = 499

var (
	TransactionError       = er.TransactionErrorType.Code("Transaction", "transaction-level failure")
	TransactionScriptError = er.ScriptErrorType.Code("TransactionScript", "per-input script verification failed")
	TooManyInputsError     = er.TransactionErrorType.CodeWithDetail("TooManyInputs",
		"unable to build transaction because there are too many inputs")
)

// Transaction wraps a wire.MsgTx with a bound UTXO store, so per-input
// signing and verification can resolve each input's previous output.
type Transaction struct {
	Msg   *wire.MsgTx
	Store *utxo.Store
}

// New returns an empty (version 2) transaction bound to store.
func New(store *utxo.Store) *Transaction {
	return &Transaction{Msg: wire.NewMsgTx(2), Store: store}
}

// FromWire wraps an already-built wire.MsgTx.
func FromWire(msg *wire.MsgTx, store *utxo.Store) *Transaction {
	return &Transaction{Msg: msg, Store: store}
}

// AddInput appends an input spending prevOut, with the default sequence
// number and no signature script or witness yet. Fails with
// TooManyInputsError once the input count would exceed MaxInputsPerTx, or
// MaxInputsPerTxLegacy as soon as any already-resolvable input is legacy.
func (t *Transaction) AddInput(prevOut wire.OutPoint) (int, er.R) {
	if err := t.checkInputLimit(len(t.Msg.TxIn) + 1); err != nil {
		return 0, err
	}
	t.Msg.AddTxIn(wire.NewTxIn(&prevOut, nil, nil))
	return len(t.Msg.TxIn) - 1, nil
}

// checkInputLimit enforces the coin-selection-free input ceilings: count is
// always capped at MaxInputsPerTx, and at the tighter MaxInputsPerTxLegacy
// as soon as any input already resolvable through the bound store turns out
// to be legacy (spent outside native SegWit).
func (t *Transaction) checkInputLimit(count int) er.R {
	if count > MaxInputsPerTx {
		return TooManyInputsError.New(fmt.Sprintf(
			"%d inputs exceeds the %d-input ceiling", count, MaxInputsPerTx))
	}
	if count > MaxInputsPerTxLegacy && t.hasLegacyInput() {
		return TooManyInputsError.New(fmt.Sprintf(
			"%d inputs exceeds the %d-input ceiling for a transaction with legacy inputs",
			count, MaxInputsPerTxLegacy))
	}
	return nil
}

// hasLegacyInput reports whether any input whose UTXO is already known to
// the bound store is spent outside native SegWit. Inputs whose UTXO hasn't
// been registered yet are skipped; the check is re-applied on every
// AddInput call, so it still catches the common case where UTXOs are
// registered before the inputs that spend them are added.
func (t *Transaction) hasLegacyInput() bool {
	for i := range t.Msg.TxIn {
		ic, err := t.resolveInput(i)
		if err != nil {
			continue
		}
		if !ic.isSegWit {
			return true
		}
	}
	return false
}

// AddOutput appends an output.
func (t *Transaction) AddOutput(value int64, pkScript []byte) int {
	t.Msg.AddTxOut(wire.NewTxOut(value, pkScript))
	return len(t.Msg.TxOut) - 1
}

// Fee returns the sum of input UTXO values minus the sum of output values.
// Fails if any input's UTXO cannot be resolved through the bound store.
func (t *Transaction) Fee() (int64, er.R) {
	var in, out int64
	for _, txi := range t.Msg.TxIn {
		u, err := t.Store.Get(txi.PreviousOutPoint)
		if err != nil {
			return 0, err
		}
		in += u.Value
	}
	for _, txo := range t.Msg.TxOut {
		out += txo.Value
	}
	return in - out, nil
}

// Weight returns the BIP141 transaction weight.
func (t *Transaction) Weight() int { return t.Msg.Weight() }

// VSize returns the virtual transaction size in vbytes.
func (t *Transaction) VSize() int { return t.Msg.VSize() }

// UpdateUTXOs unregisters every UTXO this transaction consumes and
// registers every output it creates, keyed by this transaction's own hash.
func (t *Transaction) UpdateUTXOs() {
	t.Store.UpdateUTXOs(t.Msg)
}

// inputContext resolves everything Verify/Signer need to know about input
// idx: its UTXO, standard-script classification, and whether its locking
// script is a native witness program. A P2SH-nested program is not flagged
// here; Verify and the Signer detect it from the redeem script.
type inputContext struct {
	utxo       *utxo.UTXO
	class      standard.ScriptClass
	isSegWit   bool
	scriptCode []byte // the script actually executed (may differ from the UTXO's own pkScript for P2SH/P2WSH)
	witnessProgram []byte
}

func (t *Transaction) resolveInput(idx int) (*inputContext, er.R) {
	if idx < 0 || idx >= len(t.Msg.TxIn) {
		return nil, TransactionError.New("input index out of range")
	}
	u, err := t.Store.Get(t.Msg.TxIn[idx].PreviousOutPoint)
	if err != nil {
		return nil, err
	}
	pops, err := parsescript.ParseScript(u.PkScript)
	if err != nil {
		return nil, err
	}
	class := standard.GetScriptClass(pops)

	ic := &inputContext{utxo: u, class: class, scriptCode: u.PkScript}
	switch class {
	case standard.WitnessV0PubKeyHashTy, standard.WitnessV0ScriptHashTy:
		ic.isSegWit = true
		ic.witnessProgram = pops[1].Data
	}
	return ic, nil
}

// Verify runs, for input idx, the concatenation of signature-script and
// locking-script (plus SegWit/nested rules) through the Script runner
// bound to this transaction and input index, per spec §4.4.
func (t *Transaction) Verify(idx int) er.R {
	ic, err := t.resolveInput(idx)
	if err != nil {
		return err
	}
	in := t.Msg.TxIn[idx]

	switch ic.class {
	case standard.WitnessV0PubKeyHashTy:
		return t.verifyWitnessV0PubKeyHash(idx, ic.witnessProgram, in.Witness)
	case standard.WitnessV0ScriptHashTy:
		return t.verifyWitnessV0ScriptHash(idx, ic.witnessProgram, in.Witness)
	case standard.ScriptHashTy:
		return t.verifyScriptHash(idx, ic)
	default:
		return t.verifyLegacy(idx, ic.utxo.PkScript)
	}
}

// verifyLegacy concatenates signature_script and locking_script ops into a
// single combined script and runs it through one Engine, the traditional
// (no BIP16-activation-gate) validation model named in spec §4.4.
func (t *Transaction) verifyLegacy(idx int, lockingScript []byte) er.R {
	in := t.Msg.TxIn[idx]
	sigPops, err := parsescript.ParseScript(in.SignatureScript)
	if err != nil {
		return err
	}
	if !parsescript.IsPushOnly(sigPops) {
		return TransactionScriptError.New("signature_script is not push-only")
	}
	lockPops, err := parsescript.ParseScript(lockingScript)
	if err != nil {
		return err
	}

	// The OP_CODESEPARATOR between the halves makes CHECKSIG's subscript the
	// locking script alone, the same scriptCode the Signer signs over.
	sep := parsescript.ParsedOpcode{Opcode: opcode.Lookup(opcode.OP_CODESEPARATOR)}
	combined, err := parsescript.UnparseScript(append(append(append([]parsescript.ParsedOpcode{}, sigPops...), sep), lockPops...))
	if err != nil {
		return err
	}

	u, getErr := t.Store.Get(in.PreviousOutPoint)
	if getErr != nil {
		return getErr
	}
	eng, err := txscript.NewEngine(combined, &txscript.TxContext{
		Tx: t.Msg, InputIndex: idx, InputAmount: u.Value, IsSegWit: false,
	})
	if err != nil {
		return err
	}
	if err := eng.Execute(); err != nil {
		return TransactionScriptError.New(err.Message())
	}
	return nil
}

// verifyScriptHash implements the P2SH rule: the outer script must reduce
// to true (HASH160 match), then the pushed redeem script is itself
// executed against the remaining stack items. A redeem script that is
// itself a witness program is verified as nested SegWit.
func (t *Transaction) verifyScriptHash(idx int, ic *inputContext) er.R {
	if err := t.verifyLegacy(idx, ic.utxo.PkScript); err != nil {
		return err
	}

	in := t.Msg.TxIn[idx]
	sigPops, err := parsescript.ParseScript(in.SignatureScript)
	if err != nil {
		return err
	}
	if len(sigPops) == 0 {
		return TransactionScriptError.New("P2SH signature_script is empty")
	}
	redeemScript := sigPops[len(sigPops)-1].Data

	redeemPops, err := parsescript.ParseScript(redeemScript)
	if err != nil {
		return err
	}
	switch standard.GetScriptClass(redeemPops) {
	case standard.ScriptHashTy:
		return TransactionScriptError.New("P2SH redeem script is itself P2SH")
	case standard.WitnessV0PubKeyHashTy:
		return t.verifyWitnessV0PubKeyHash(idx, redeemPops[1].Data, in.Witness)
	case standard.WitnessV0ScriptHashTy:
		return t.verifyWitnessV0ScriptHash(idx, redeemPops[1].Data, in.Witness)
	}

	// Re-run with the redeem script substituted for the signature_script's
	// final push: everything before it is the input to the redeem script.
	prefix, err := parsescript.UnparseScript(sigPops[:len(sigPops)-1])
	if err != nil {
		return err
	}
	u, getErr := t.Store.Get(in.PreviousOutPoint)
	if getErr != nil {
		return getErr
	}
	sep := parsescript.ParsedOpcode{Opcode: opcode.Lookup(opcode.OP_CODESEPARATOR)}
	combined, err := parsescript.UnparseScript(append(append(mustParse(prefix), sep), redeemPops...))
	if err != nil {
		return err
	}
	eng, err := txscript.NewEngine(combined, &txscript.TxContext{
		Tx: t.Msg, InputIndex: idx, InputAmount: u.Value, IsSegWit: false,
	})
	if err != nil {
		return err
	}
	if err := eng.Execute(); err != nil {
		return TransactionScriptError.New(err.Message())
	}
	return nil
}

func mustParse(script []byte) []parsescript.ParsedOpcode {
	pops, err := parsescript.ParseScript(script)
	if err != nil {
		return nil
	}
	return pops
}

// verifyWitnessV0PubKeyHash verifies a native or nested P2WPKH input:
// witness must be exactly [sig, pubkey], run against the P2PKH-equivalent
// scriptCode built from the 20-byte hash.
func (t *Transaction) verifyWitnessV0PubKeyHash(idx int, hash []byte, witness wire.TxWitness) er.R {
	if len(witness) != 2 {
		return TransactionScriptError.New("P2WPKH witness must carry exactly 2 items")
	}
	scriptCode, err := scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).AddOp(opcode.OP_HASH160).AddData(hash).
		AddOp(opcode.OP_EQUALVERIFY).AddOp(opcode.OP_CHECKSIG).
		Script()
	if err != nil {
		return err
	}
	return t.runWitness(idx, scriptCode, witness)
}

// verifyWitnessV0ScriptHash verifies a native or nested P2WSH input: the
// last witness item is the witnessScript, hashed to compare against hash,
// then executed with the remaining witness items as the initial stack.
func (t *Transaction) verifyWitnessV0ScriptHash(idx int, hash []byte, witness wire.TxWitness) er.R {
	if len(witness) == 0 {
		return TransactionScriptError.New("P2WSH witness is empty")
	}
	witnessScript := witness[len(witness)-1]
	got := sha256Sum(witnessScript)
	if !bytesEqual(got, hash) {
		return TransactionScriptError.New("P2WSH witness script does not match committed hash")
	}
	return t.runWitness(idx, witnessScript, witness[:len(witness)-1])
}

func (t *Transaction) runWitness(idx int, scriptCode []byte, initialStack wire.TxWitness) er.R {
	in := t.Msg.TxIn[idx]
	u, err := t.Store.Get(in.PreviousOutPoint)
	if err != nil {
		return err
	}
	eng, engErr := txscript.NewEngine(scriptCode, &txscript.TxContext{
		Tx: t.Msg, InputIndex: idx, InputAmount: u.Value, IsSegWit: true,
	})
	if engErr != nil {
		return engErr
	}
	eng.SetInitialStack(initialStack)
	if err := eng.Execute(); err != nil {
		return TransactionScriptError.New(err.Message())
	}
	return nil
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
