// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/sigdigest"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// execOp dispatches every non-push, non-flow-control opcode.
func (e *Engine) execOp(op opcode.Opcode) er.R {
	switch op.Value {
	case opcode.OP_NOP, opcode.OP_NOP4, opcode.OP_NOP5, opcode.OP_NOP6,
		opcode.OP_NOP7, opcode.OP_NOP8, opcode.OP_NOP9, opcode.OP_NOP10:
		return nil
	case opcode.OP_VERIFY:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		if !asBool(e.pop()) {
			return runtimeErr(e.pc, op, "VERIFY failed")
		}
		return nil
	case opcode.OP_RETURN:
		return runtimeErr(e.pc, op, "OP_RETURN encountered")

	// Stack manipulation.
	case opcode.OP_TOALTSTACK:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.alt = append(e.alt, e.pop())
		return nil
	case opcode.OP_FROMALTSTACK:
		if len(e.alt) == 0 {
			return runtimeErr(e.pc, op, "alt stack underflow")
		}
		n := len(e.alt)
		e.push(e.alt[n-1])
		e.alt = e.alt[:n-1]
		return nil
	case opcode.OP_2DROP:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		e.stack = e.stack[:len(e.stack)-2]
		return nil
	case opcode.OP_2DUP:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		a, b := e.stack[len(e.stack)-2], e.stack[len(e.stack)-1]
		e.push(a)
		e.push(b)
		return nil
	case opcode.OP_3DUP:
		if err := e.requireDepth(3); err != nil {
			return err
		}
		n := len(e.stack)
		a, b, c := e.stack[n-3], e.stack[n-2], e.stack[n-1]
		e.push(a)
		e.push(b)
		e.push(c)
		return nil
	case opcode.OP_2OVER:
		if err := e.requireDepth(4); err != nil {
			return err
		}
		n := len(e.stack)
		a, b := e.stack[n-4], e.stack[n-3]
		e.push(a)
		e.push(b)
		return nil
	case opcode.OP_2ROT:
		if err := e.requireDepth(6); err != nil {
			return err
		}
		n := len(e.stack)
		a, b := e.stack[n-6], e.stack[n-5]
		e.stack = append(e.stack[:n-6], e.stack[n-4:]...)
		e.push(a)
		e.push(b)
		return nil
	case opcode.OP_2SWAP:
		if err := e.requireDepth(4); err != nil {
			return err
		}
		n := len(e.stack)
		e.stack[n-4], e.stack[n-2] = e.stack[n-2], e.stack[n-4]
		e.stack[n-3], e.stack[n-1] = e.stack[n-1], e.stack[n-3]
		return nil
	case opcode.OP_IFDUP:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		top := e.stack[len(e.stack)-1]
		if asBool(top) {
			e.push(top)
		}
		return nil
	case opcode.OP_DEPTH:
		e.push(fromInt(newScriptNum(int64(len(e.stack)))))
		return nil
	case opcode.OP_DROP:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.pop()
		return nil
	case opcode.OP_DUP:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.push(e.stack[len(e.stack)-1])
		return nil
	case opcode.OP_NIP:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		n := len(e.stack)
		e.stack = append(e.stack[:n-2], e.stack[n-1])
		return nil
	case opcode.OP_OVER:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		e.push(e.stack[len(e.stack)-2])
		return nil
	case opcode.OP_PICK, opcode.OP_ROLL:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		n := int(toInt(e.pop()).Int64())
		if n < 0 || n >= len(e.stack) {
			return runtimeErr(e.pc, op, "index out of range")
		}
		idx := len(e.stack) - 1 - n
		item := e.stack[idx]
		if op.Value == opcode.OP_ROLL {
			e.stack = append(e.stack[:idx], e.stack[idx+1:]...)
		}
		e.push(item)
		return nil
	case opcode.OP_ROT:
		if err := e.requireDepth(3); err != nil {
			return err
		}
		n := len(e.stack)
		e.stack[n-3], e.stack[n-2], e.stack[n-1] = e.stack[n-2], e.stack[n-1], e.stack[n-3]
		return nil
	case opcode.OP_SWAP:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		n := len(e.stack)
		e.stack[n-2], e.stack[n-1] = e.stack[n-1], e.stack[n-2]
		return nil
	case opcode.OP_TUCK:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		n := len(e.stack)
		top := e.stack[n-1]
		e.stack = append(e.stack[:n-2:n-2], top, e.stack[n-2], top)
		return nil

	case opcode.OP_SIZE:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		top := e.stack[len(e.stack)-1]
		e.push(fromInt(newScriptNum(int64(len(top)))))
		return nil
	case opcode.OP_EQUAL, opcode.OP_EQUALVERIFY:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		b, a := e.pop(), e.pop()
		eq := bytes.Equal(a, b)
		if op.Value == opcode.OP_EQUALVERIFY {
			if !eq {
				return runtimeErr(e.pc, op, "EQUALVERIFY failed")
			}
			return nil
		}
		e.push(boolBytes(eq))
		return nil

	case opcode.OP_1ADD, opcode.OP_1SUB, opcode.OP_NEGATE, opcode.OP_ABS,
		opcode.OP_NOT, opcode.OP_0NOTEQUAL:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		n := toInt(e.pop())
		var r scriptNum
		switch op.Value {
		case opcode.OP_1ADD:
			r = n.Add(newScriptNum(1))
		case opcode.OP_1SUB:
			r = n.Sub(newScriptNum(1))
		case opcode.OP_NEGATE:
			r = n.Neg()
		case opcode.OP_ABS:
			r = n.Abs()
		case opcode.OP_NOT:
			r = boolScriptNum(n.IsZero())
		case opcode.OP_0NOTEQUAL:
			r = boolScriptNum(!n.IsZero())
		}
		e.push(fromInt(r))
		return nil

	case opcode.OP_ADD, opcode.OP_SUB, opcode.OP_BOOLAND, opcode.OP_BOOLOR,
		opcode.OP_NUMEQUAL, opcode.OP_NUMEQUALVERIFY, opcode.OP_NUMNOTEQUAL,
		opcode.OP_LESSTHAN, opcode.OP_GREATERTHAN, opcode.OP_LESSTHANOREQUAL,
		opcode.OP_GREATERTHANOREQUAL, opcode.OP_MIN, opcode.OP_MAX:
		if err := e.requireDepth(2); err != nil {
			return err
		}
		b := toInt(e.pop())
		a := toInt(e.pop())
		var r scriptNum
		switch op.Value {
		case opcode.OP_ADD:
			r = a.Add(b)
		case opcode.OP_SUB:
			r = a.Sub(b)
		case opcode.OP_BOOLAND:
			r = boolScriptNum(!a.IsZero() && !b.IsZero())
		case opcode.OP_BOOLOR:
			r = boolScriptNum(!a.IsZero() || !b.IsZero())
		case opcode.OP_NUMEQUAL, opcode.OP_NUMEQUALVERIFY:
			eq := a.Cmp(b) == 0
			if op.Value == opcode.OP_NUMEQUALVERIFY {
				if !eq {
					return runtimeErr(e.pc, op, "NUMEQUALVERIFY failed")
				}
				return nil
			}
			r = boolScriptNum(eq)
		case opcode.OP_NUMNOTEQUAL:
			r = boolScriptNum(a.Cmp(b) != 0)
		case opcode.OP_LESSTHAN:
			r = boolScriptNum(a.Cmp(b) < 0)
		case opcode.OP_GREATERTHAN:
			r = boolScriptNum(a.Cmp(b) > 0)
		case opcode.OP_LESSTHANOREQUAL:
			r = boolScriptNum(a.Cmp(b) <= 0)
		case opcode.OP_GREATERTHANOREQUAL:
			r = boolScriptNum(a.Cmp(b) >= 0)
		case opcode.OP_MIN:
			if a.Cmp(b) < 0 {
				r = a
			} else {
				r = b
			}
		case opcode.OP_MAX:
			if a.Cmp(b) > 0 {
				r = a
			} else {
				r = b
			}
		}
		e.push(fromInt(r))
		return nil

	case opcode.OP_WITHIN:
		if err := e.requireDepth(3); err != nil {
			return err
		}
		max := toInt(e.pop())
		min := toInt(e.pop())
		x := toInt(e.pop())
		e.push(boolBytes(x.Cmp(min) >= 0 && x.Cmp(max) < 0))
		return nil

	case opcode.OP_RIPEMD160:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.push(chainhash.Ripemd160(e.pop()))
		return nil
	case opcode.OP_SHA1:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		h := sha1.Sum(e.pop())
		e.push(h[:])
		return nil
	case opcode.OP_SHA256:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		h := sha256.Sum256(e.pop())
		e.push(h[:])
		return nil
	case opcode.OP_HASH160:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.push(chainhash.Hash160(e.pop()))
		return nil
	case opcode.OP_HASH256:
		if err := e.requireDepth(1); err != nil {
			return err
		}
		e.push(chainhash.DoubleHashB(e.pop()))
		return nil
	case opcode.OP_CODESEPARATOR:
		e.codeSepPos = e.pc + 1
		return nil

	case opcode.OP_CHECKSIG, opcode.OP_CHECKSIGVERIFY:
		ok, err := e.checkSig()
		if err != nil {
			return err
		}
		if op.Value == opcode.OP_CHECKSIGVERIFY {
			if !ok {
				return runtimeErr(e.pc, op, "CHECKSIGVERIFY failed")
			}
			return nil
		}
		e.push(boolBytes(ok))
		return nil

	case opcode.OP_CHECKMULTISIG, opcode.OP_CHECKMULTISIGVERIFY:
		ok, err := e.checkMultiSig()
		if err != nil {
			return err
		}
		if op.Value == opcode.OP_CHECKMULTISIGVERIFY {
			if !ok {
				return runtimeErr(e.pc, op, "CHECKMULTISIGVERIFY failed")
			}
			return nil
		}
		e.push(boolBytes(ok))
		return nil

	case opcode.OP_CHECKLOCKTIMEVERIFY:
		return e.checkLockTimeVerify()
	case opcode.OP_CHECKSEQUENCEVERIFY:
		return e.checkSequenceVerify()

	case opcode.OP_CAT, opcode.OP_SUBSTR, opcode.OP_LEFT, opcode.OP_RIGHT,
		opcode.OP_INVERT, opcode.OP_AND, opcode.OP_OR, opcode.OP_XOR,
		opcode.OP_2MUL, opcode.OP_2DIV, opcode.OP_MUL, opcode.OP_DIV,
		opcode.OP_MOD, opcode.OP_LSHIFT, opcode.OP_RSHIFT:
		return runtimeErr(e.pc, op, "disabled opcode")

	default:
		return runtimeErr(e.pc, op, "unrecognized opcode")
	}
}

func boolScriptNum(b bool) scriptNum {
	if b {
		return newScriptNum(1)
	}
	return newScriptNum(0)
}

// checkSig implements spec §4.2's CHECKSIG semantics.
func (e *Engine) checkSig() (bool, er.R) {
	if err := e.requireDepth(2); err != nil {
		return false, err
	}
	pubKeyBytes := e.pop()
	sigBytes := e.pop()
	if len(sigBytes) == 0 {
		return false, nil
	}

	hashType := sigdigest.SigHashType(sigBytes[len(sigBytes)-1])
	rawSig := sigBytes[:len(sigBytes)-1]

	if e.tx != nil && e.tx.IsSegWit && len(pubKeyBytes) != 33 {
		return false, ScriptRuntimeError.New("uncompressed pubkey on a SegWit path")
	}

	pubKey, errr := btcec.ParsePubKey(pubKeyBytes)
	if errr != nil {
		return false, nil
	}
	sig, errr := ecdsa.ParseDERSignature(rawSig)
	if errr != nil {
		return false, nil
	}

	subScript, err := e.SubScript()
	if err != nil {
		return false, err
	}

	if e.tx == nil {
		return false, ScriptRuntimeError.New("CHECKSIG requires a transaction context")
	}
	hash, err := sigdigest.CalcSignatureHash(e.tx.Tx, e.tx.InputIndex, subScript, hashType, e.tx.InputAmount, e.tx.IsSegWit)
	if err != nil {
		return false, err
	}
	return sig.Verify(hash[:], pubKey), nil
}

// checkMultiSig implements spec §4.2's CHECKMULTISIG semantics: a linear
// scan matching each signature, in order, against the remaining pubkeys.
func (e *Engine) checkMultiSig() (bool, er.R) {
	if err := e.requireDepth(1); err != nil {
		return false, err
	}
	nKeys := int(toInt(e.pop()).Int64())
	if nKeys < 0 || nKeys > 16 {
		return false, ScriptRuntimeError.New("pubkey count out of range")
	}
	if err := e.requireDepth(nKeys + 1); err != nil {
		return false, err
	}
	pubKeys := make([][]byte, nKeys)
	for i := nKeys - 1; i >= 0; i-- {
		pubKeys[i] = e.pop()
	}

	mSigs := int(toInt(e.pop()).Int64())
	if mSigs < 0 || mSigs > nKeys {
		return false, ScriptRuntimeError.New("signature count out of range")
	}
	if err := e.requireDepth(mSigs + 1); err != nil {
		return false, err
	}
	sigs := make([][]byte, mSigs)
	for i := mSigs - 1; i >= 0; i-- {
		sigs[i] = e.pop()
	}

	// Historical off-by-one: CHECKMULTISIG pops one extra item the
	// reference implementation never uses. It must be an empty push.
	dummy := e.pop()
	if len(dummy) != 0 {
		return false, ScriptRuntimeError.New("CHECKMULTISIG dummy value is not empty")
	}

	if e.tx != nil && e.tx.IsSegWit {
		for _, pk := range pubKeys {
			if len(pk) != 33 {
				return false, ScriptRuntimeError.New("uncompressed pubkey on a SegWit path")
			}
		}
	}

	keyIdx := 0
	for _, sigBytes := range sigs {
		if len(sigBytes) == 0 {
			return false, nil
		}
		hashType := sigdigest.SigHashType(sigBytes[len(sigBytes)-1])
		rawSig := sigBytes[:len(sigBytes)-1]
		sig, errr := ecdsa.ParseDERSignature(rawSig)
		if errr != nil {
			return false, nil
		}

		subScript, err := e.SubScript()
		if err != nil {
			return false, err
		}
		if e.tx == nil {
			return false, ScriptRuntimeError.New("CHECKMULTISIG requires a transaction context")
		}
		hash, err := sigdigest.CalcSignatureHash(e.tx.Tx, e.tx.InputIndex, subScript, hashType, e.tx.InputAmount, e.tx.IsSegWit)
		if err != nil {
			return false, err
		}

		matched := false
		for keyIdx < len(pubKeys) {
			pubKey, errr := btcec.ParsePubKey(pubKeys[keyIdx])
			keyIdx++
			if errr != nil {
				continue
			}
			if sig.Verify(hash[:], pubKey) {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// checkLockTimeVerify implements spec §4.2's CLTV rule. Does not pop.
func (e *Engine) checkLockTimeVerify() er.R {
	top, err := e.peek(0)
	if err != nil {
		return err
	}
	c1 := toInt(top)
	if c1.Sign() < 0 {
		return ScriptRuntimeError.New("CHECKLOCKTIMEVERIFY: negative locktime")
	}
	if e.tx == nil {
		return ScriptRuntimeError.New("CHECKLOCKTIMEVERIFY requires a transaction context")
	}
	c2 := int64(e.tx.Tx.LockTime)
	const threshold = 500000000
	c1v := c1.Int64()
	if (c1v < threshold) != (c2 < threshold) {
		return ScriptRuntimeError.New("CHECKLOCKTIMEVERIFY: locktime type mismatch")
	}
	if c1v > c2 {
		return ScriptRuntimeError.New("CHECKLOCKTIMEVERIFY: locktime requirement not satisfied")
	}
	if e.tx.Tx.TxIn[e.tx.InputIndex].Sequence == 0xffffffff {
		return ScriptRuntimeError.New("CHECKLOCKTIMEVERIFY: input sequence is final")
	}
	return nil
}

// checkSequenceVerify implements spec §4.2's CSV rule. Does not pop.
func (e *Engine) checkSequenceVerify() er.R {
	top, err := e.peek(0)
	if err != nil {
		return err
	}
	c1 := toInt(top).Int64()
	if c1&(1<<31) != 0 {
		return nil
	}
	if e.tx == nil {
		return ScriptRuntimeError.New("CHECKSEQUENCEVERIFY requires a transaction context")
	}
	if e.tx.Tx.Version < 2 {
		return ScriptRuntimeError.New("CHECKSEQUENCEVERIFY: transaction version < 2")
	}
	c2 := int64(e.tx.Tx.TxIn[e.tx.InputIndex].Sequence)
	if c2&(1<<31) != 0 {
		return ScriptRuntimeError.New("CHECKSEQUENCEVERIFY: sequence disables relative locktime")
	}
	if (c1&(1<<22) != 0) != (c2&(1<<22) != 0) {
		return ScriptRuntimeError.New("CHECKSEQUENCEVERIFY: type mismatch")
	}
	if c1&0xffff > c2&0xffff {
		return ScriptRuntimeError.New("CHECKSEQUENCEVERIFY: requirement not satisfied")
	}
	return nil
}
