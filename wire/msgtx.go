// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
)

const (
	// defaultTxInOutAlloc sizes the backing array for a new MsgTx's input
	// and output slices, to avoid a few of the smallest reallocations for
	// the common case.
	defaultTxInOutAlloc = 8

	// maxTxInPerMessage / maxTxOutPerMessage bound the input/output count
	// read off the wire so a corrupt length can't force an enormous
	// allocation.
	maxTxInPerMessage  = MaxMessagePayload / 41
	maxTxOutPerMessage = MaxMessagePayload / 9

	// maxWitnessItemsPerInput / maxWitnessItemSize are analogous guards for
	// witness stacks.
	maxWitnessItemsPerInput = 500000
	maxWitnessItemSize      = 11000

	// freeListMaxScriptSize / freeListMaxItems size the scriptPool used to
	// cut down on allocations while deserializing many scripts, mirroring
	// the upstream free-list scheme.
	freeListMaxScriptSize = 512
	freeListMaxItems      = 12500
)

// witnessMarkerBytes are the two bytes (0x00 marker, 0x01 flag) that signal
// a transaction carries witness data, per BIP144.
var witnessMarkerBytes = [2]byte{0x00, 0x01}

// scriptFreeList is a free list of reusable byte slices used to reduce
// allocation churn when deserializing many small scripts.
type scriptFreeList chan []byte

func (c scriptFreeList) Borrow(size uint64) []byte {
	if size > freeListMaxScriptSize {
		return make([]byte, size)
	}
	var buf []byte
	select {
	case buf = <-c:
	default:
		buf = make([]byte, freeListMaxScriptSize)
	}
	return buf[:size]
}

func (c scriptFreeList) Return(buf []byte) {
	if cap(buf) != freeListMaxScriptSize {
		return
	}
	select {
	case c <- buf:
	default:
	}
}

var scriptPool scriptFreeList = make(chan []byte, freeListMaxItems)

// OutPoint identifies one specific output of one specific prior transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint builds an OutPoint.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String renders the OutPoint as "hash:index".
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + itoa(int(o.Index))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// TxIn is a single transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// NewTxIn returns a TxIn with the default sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// MaxTxInSequenceNum is the default/"final" sequence number. An input at
// this sequence disables relative locktime (BIP68), and
// OP_CHECKLOCKTIMEVERIFY fails for it (the final-input rule).
const MaxTxInSequenceNum uint32 = 0xffffffff

// SerializeSize returns the serialized size of this input in bytes.
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// TxWitness is the per-input witness: a stack of zero or more byte strings.
type TxWitness [][]byte

// SerializeSize returns the serialized size of the witness stack in bytes.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

// TxOut is a single transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a TxOut with the given value and locking script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// SerializeSize returns the serialized size of this output in bytes.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// MsgTx is the raw BIP141-aware wire encoding of a Bitcoin transaction: the
// layer below tx.Transaction, with no knowledge of UTXOs or signing.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns an empty MsgTx at the given version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// AddTxIn appends an input.
func (msg *MsgTx) AddTxIn(ti *TxIn) { msg.TxIn = append(msg.TxIn, ti) }

// AddTxOut appends an output.
func (msg *MsgTx) AddTxOut(to *TxOut) { msg.TxOut = append(msg.TxOut, to) }

// HasWitness reports whether any input carries a non-empty witness stack.
func (msg *MsgTx) HasWitness() bool {
	for _, ti := range msg.TxIn {
		if len(ti.Witness) != 0 {
			return true
		}
	}
	return false
}

// TxHash computes the txid: HASH256 of the non-witness serialization,
// stored in the internal byte order it is produced in; String() displays
// it reversed.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSizeStripped())
	_ = msg.SerializeNoWitness(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash computes the wtxid: HASH256 of the full (witness-inclusive)
// serialization. Equal to TxHash when the transaction has no witness data.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if !msg.HasWitness() {
		return msg.TxHash()
	}
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy returns a deep copy, safe to mutate without affecting msg - the
// "clone, mutate per input, digest" pattern from spec §5.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}
	for _, in := range msg.TxIn {
		nin := &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			Sequence:         in.Sequence,
		}
		if len(in.SignatureScript) > 0 {
			nin.SignatureScript = append([]byte(nil), in.SignatureScript...)
		}
		if len(in.Witness) > 0 {
			nin.Witness = make(TxWitness, len(in.Witness))
			for i, item := range in.Witness {
				nin.Witness[i] = append([]byte(nil), item...)
			}
		}
		newTx.TxIn = append(newTx.TxIn, nin)
	}
	for _, out := range msg.TxOut {
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    out.Value,
			PkScript: append([]byte(nil), out.PkScript...),
		})
	}
	return newTx
}

func (msg *MsgTx) baseSize() int {
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) + VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// SerializeSizeStripped returns the size of the non-witness serialization.
func (msg *MsgTx) SerializeSizeStripped() int { return msg.baseSize() }

// SerializeSize returns the size of the full (witness-inclusive, if any)
// serialization.
func (msg *MsgTx) SerializeSize() int {
	n := msg.baseSize()
	if msg.HasWitness() {
		n += 2
		for _, ti := range msg.TxIn {
			n += ti.Witness.SerializeSize()
		}
	}
	return n
}

// Weight returns the BIP141 transaction weight:
// stripped-size*3 + full-size.
func (msg *MsgTx) Weight() int {
	return msg.SerializeSizeStripped()*3 + msg.SerializeSize()
}

// VSize returns the virtual size in vbytes: ceil(weight / 4).
func (msg *MsgTx) VSize() int {
	return (msg.Weight() + 3) / 4
}

// Serialize writes the full (witness-inclusive, when present) encoding.
func (msg *MsgTx) Serialize(w io.Writer) er.R { return msg.encode(w, true) }

// SerializeNoWitness writes the non-witness encoding, always, even when
// inputs carry witness data - used to compute the txid.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) er.R { return msg.encode(w, false) }

func (msg *MsgTx) encode(w io.Writer, allowWitness bool) er.R {
	if err := writeUint32LE(w, uint32(msg.Version)); err != nil {
		return err
	}

	doWitness := allowWitness && msg.HasWitness()
	if doWitness {
		if _, err := w.Write(witnessMarkerBytes[:]); err != nil {
			return er.E(err)
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		if err := writeUint32LE(w, ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteTxOut(w, to); err != nil {
			return err
		}
	}

	if doWitness {
		for _, ti := range msg.TxIn {
			if err := writeTxWitness(w, ti.Witness); err != nil {
				return err
			}
		}
	}

	return writeUint32LE(w, msg.LockTime)
}

// Deserialize reads a transaction, auto-detecting witness encoding via the
// marker/flag bytes.
func (msg *MsgTx) Deserialize(r io.Reader) er.R { return msg.decode(r, true) }

// DeserializeNoWitness reads a transaction that MUST NOT use witness
// encoding.
func (msg *MsgTx) DeserializeNoWitness(r io.Reader) er.R { return msg.decode(r, false) }

func (msg *MsgTx) decode(r io.Reader, allowWitness bool) er.R {
	version, err := readUint32LE(r)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	if count == 0 && allowWitness {
		if _, errr := io.ReadFull(r, flag[:]); errr != nil {
			return er.E(errr)
		}
		if flag[0] != 0x01 {
			return messageError("MsgTx.decode", "witness tx but flag byte is not 0x01")
		}
		count, err = ReadVarInt(r)
		if err != nil {
			return err
		}
	}

	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.decode", "too many inputs for max message size")
	}

	returnScriptBuffers := func() {
		for _, ti := range msg.TxIn {
			if ti == nil {
				continue
			}
			if ti.SignatureScript != nil {
				scriptPool.Return(ti.SignatureScript)
			}
			for _, w := range ti.Witness {
				scriptPool.Return(w)
			}
		}
		for _, to := range msg.TxOut {
			if to == nil || to.PkScript == nil {
				continue
			}
			scriptPool.Return(to.PkScript)
		}
	}

	var totalScriptSize uint64
	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, ti); err != nil {
			returnScriptBuffers()
			return err
		}
		totalScriptSize += uint64(len(ti.SignatureScript))
	}

	count, err = ReadVarInt(r)
	if err != nil {
		returnScriptBuffers()
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		returnScriptBuffers()
		return messageError("MsgTx.decode", "too many outputs for max message size")
	}

	txOuts := make([]TxOut, count)
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, to); err != nil {
			returnScriptBuffers()
			return err
		}
		totalScriptSize += uint64(len(to.PkScript))
	}

	if flag[0] != 0 && allowWitness {
		for _, ti := range msg.TxIn {
			witCount, err := ReadVarInt(r)
			if err != nil {
				returnScriptBuffers()
				return err
			}
			if witCount > maxWitnessItemsPerInput {
				returnScriptBuffers()
				return messageError("MsgTx.decode", "too many witness items")
			}
			ti.Witness = make(TxWitness, witCount)
			for j := uint64(0); j < witCount; j++ {
				item, err := readScript(r, maxWitnessItemSize, "witness item")
				if err != nil {
					returnScriptBuffers()
					return err
				}
				ti.Witness[j] = item
				totalScriptSize += uint64(len(item))
			}
		}
	}

	msg.LockTime, err = readUint32LE(r)
	if err != nil {
		returnScriptBuffers()
		return err
	}

	// Consolidate every script/witness-item into one contiguous backing
	// array, returning the borrowed free-list buffers as we go.
	var offset uint64
	scripts := make([]byte, totalScriptSize)
	for _, ti := range msg.TxIn {
		sig := ti.SignatureScript
		copy(scripts[offset:], sig)
		end := offset + uint64(len(sig))
		ti.SignatureScript = scripts[offset:end:end]
		offset = end
		scriptPool.Return(sig)

		for j, item := range ti.Witness {
			copy(scripts[offset:], item)
			end := offset + uint64(len(item))
			ti.Witness[j] = scripts[offset:end:end]
			offset = end
			scriptPool.Return(item)
		}
	}
	for _, to := range msg.TxOut {
		pk := to.PkScript
		copy(scripts[offset:], pk)
		end := offset + uint64(len(pk))
		to.PkScript = scripts[offset:end:end]
		offset = end
		scriptPool.Return(pk)
	}

	return nil
}

func readOutPoint(r io.Reader, op *OutPoint) er.R {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return er.E(err)
	}
	idx, err := readUint32LE(r)
	if err != nil {
		return err
	}
	op.Index = idx
	return nil
}

func writeOutPoint(w io.Writer, op *OutPoint) er.R {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return er.E(err)
	}
	return writeUint32LE(w, op.Index)
}

func readScript(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, er.R) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageError("readScript", fieldName+" is larger than the max allowed size")
	}
	b := scriptPool.Borrow(count)
	if _, errr := io.ReadFull(r, b); errr != nil {
		scriptPool.Return(b)
		return nil, er.E(errr)
	}
	return b, nil
}

func readTxIn(r io.Reader, ti *TxIn) er.R {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := readScript(r, MaxMessagePayload, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	seq, err := readUint32LE(r)
	if err != nil {
		return err
	}
	ti.Sequence = seq
	return nil
}

func readTxOut(r io.Reader, to *TxOut) er.R {
	v, err := readUint64LE(r)
	if err != nil {
		return err
	}
	to.Value = int64(v)
	pk, err := readScript(r, MaxMessagePayload, "locking script")
	if err != nil {
		return err
	}
	to.PkScript = pk
	return nil
}

// WriteTxOut encodes a single TxOut - exported so the digest engine can
// reuse it when serializing BIP143 preimage components.
func WriteTxOut(w io.Writer, to *TxOut) er.R {
	if err := writeUint64LE(w, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

func writeTxWitness(w io.Writer, wit TxWitness) er.R {
	if err := WriteVarInt(w, uint64(len(wit))); err != nil {
		return err
	}
	for _, item := range wit {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}
