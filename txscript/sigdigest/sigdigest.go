// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sigdigest computes the transaction signature hash preimages
// described in spec §4.3: the legacy (pre-BIP141) algorithm and the BIP143
// SegWit algorithm, selected per input by whether it is spent via witness.
package sigdigest

import (
	"bytes"
	"encoding/binary"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/wire"
)

// SigHashType is the low byte appended to a signature, selecting which
// parts of the transaction the signature commits to.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

var DigestError = er.TransactionErrorType.Code("TransactionDigest",
	"unable to compute signature hash")

// CalcSignatureHash computes the double-SHA256 preimage digest for input
// idx of tx, dispatching to the legacy or BIP143 algorithm.
func CalcSignatureHash(tx *wire.MsgTx, idx int, subScript []byte, hashType SigHashType, amount int64, segwit bool) (*chainhash.Hash, er.R) {
	if idx < 0 || idx >= len(tx.TxIn) {
		return nil, DigestError.New("input index out of range")
	}
	if segwit {
		return calcWitnessSignatureHash(tx, idx, subScript, hashType, amount)
	}
	return calcLegacySignatureHash(tx, idx, subScript, hashType)
}

// calcLegacySignatureHash implements the pre-SegWit sighash algorithm.
// SIGHASH_SINGLE with an input index beyond the output count is explicitly
// unsupported (spec §1 Non-goals: no legacy "return 1" sentinel).
func calcLegacySignatureHash(tx *wire.MsgTx, idx int, subScript []byte, hashType SigHashType) (*chainhash.Hash, er.R) {
	baseType := hashType &^ SigHashAnyOneCanPay
	anyOneCanPay := hashType&SigHashAnyOneCanPay != 0

	if baseType == SigHashSingle && idx >= len(tx.TxOut) {
		return nil, DigestError.New("SIGHASH_SINGLE with no corresponding output")
	}

	txCopy := tx.Copy()

	if anyOneCanPay {
		txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[idx]}
		idx = 0
	}

	for i, in := range txCopy.TxIn {
		if i == idx {
			in.SignatureScript = subScript
		} else {
			in.SignatureScript = nil
			if baseType == SigHashNone || baseType == SigHashSingle {
				in.Sequence = 0
			}
		}
	}

	switch baseType {
	case SigHashNone:
		txCopy.TxOut = nil
	case SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i] = &wire.TxOut{Value: -1}
		}
	}

	var buf bytes.Buffer
	if err := txCopy.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}
	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	h := chainhash.DoubleHashH(buf.Bytes())
	return &h, nil
}

// calcWitnessSignatureHash implements the BIP143 preimage.
func calcWitnessSignatureHash(tx *wire.MsgTx, idx int, scriptCode []byte, hashType SigHashType, amount int64) (*chainhash.Hash, er.R) {
	baseType := hashType &^ SigHashAnyOneCanPay
	anyOneCanPay := hashType&SigHashAnyOneCanPay != 0

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if !anyOneCanPay {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			b.Write(in.PreviousOutPoint.Hash[:])
			var idxBuf [4]byte
			binary.LittleEndian.PutUint32(idxBuf[:], in.PreviousOutPoint.Index)
			b.Write(idxBuf[:])
		}
		hashPrevouts = chainhash.DoubleHashH(b.Bytes())
	}

	if !anyOneCanPay && baseType != SigHashSingle && baseType != SigHashNone {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			var seqBuf [4]byte
			binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
			b.Write(seqBuf[:])
		}
		hashSequence = chainhash.DoubleHashH(b.Bytes())
	}

	if baseType != SigHashSingle && baseType != SigHashNone {
		var b bytes.Buffer
		for _, out := range tx.TxOut {
			_ = wire.WriteTxOut(&b, out)
		}
		hashOutputs = chainhash.DoubleHashH(b.Bytes())
	} else if baseType == SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		_ = wire.WriteTxOut(&b, tx.TxOut[idx])
		hashOutputs = chainhash.DoubleHashH(b.Bytes())
	}

	var buf bytes.Buffer
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], uint32(tx.Version))
	buf.Write(verBuf[:])

	buf.Write(hashPrevouts[:])
	buf.Write(hashSequence[:])

	in := tx.TxIn[idx]
	buf.Write(in.PreviousOutPoint.Hash[:])
	var outIdxBuf [4]byte
	binary.LittleEndian.PutUint32(outIdxBuf[:], in.PreviousOutPoint.Index)
	buf.Write(outIdxBuf[:])

	if err := wire.WriteVarBytes(&buf, scriptCode); err != nil {
		return nil, err
	}

	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(amount))
	buf.Write(amtBuf[:])

	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
	buf.Write(seqBuf[:])

	buf.Write(hashOutputs[:])

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	buf.Write(lockBuf[:])

	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	buf.Write(hashTypeBuf[:])

	h := chainhash.DoubleHashH(buf.Bytes())
	return &h, nil
}
