// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "math/big"

// scriptNum represents the arbitrary-precision signed integer encoding used
// by Bitcoin Script's stack, per spec §4.2: little-endian signed-magnitude
// with the sign bit in the MSB of the most significant byte. big.Int backs
// the value so 32-bit hosts and oversized intermediate results (e.g. from
// repeated OP_2MUL-style growth, were it enabled) never overflow silently.
type scriptNum struct {
	val *big.Int
}

func newScriptNum(n int64) scriptNum {
	return scriptNum{val: big.NewInt(n)}
}

// toInt decodes a stack item into a scriptNum, per spec §4.2's to_int().
// An empty slice decodes to zero.
func toInt(item []byte) scriptNum {
	if len(item) == 0 {
		return newScriptNum(0)
	}
	buf := make([]byte, len(item))
	copy(buf, item)

	negative := buf[len(buf)-1]&0x80 != 0
	buf[len(buf)-1] &^= 0x80

	// buf is little-endian; big.Int.SetBytes wants big-endian.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	v := new(big.Int).SetBytes(buf)
	if negative {
		v.Neg(v)
	}
	return scriptNum{val: v}
}

// fromInt encodes n as a stack item, per spec §4.2's from_int(): an extra
// 0x00 (or 0x80 if negative) byte is appended whenever the natural
// most-significant byte would otherwise collide with the sign bit.
func fromInt(n scriptNum) []byte {
	if n.val.Sign() == 0 {
		return nil
	}
	negative := n.val.Sign() < 0
	abs := new(big.Int).Abs(n.val)
	be := abs.Bytes()

	// be is big-endian; reverse to little-endian.
	buf := make([]byte, len(be))
	for i, b := range be {
		buf[len(be)-1-i] = b
	}

	if buf[len(buf)-1]&0x80 != 0 {
		if negative {
			buf = append(buf, 0x80)
		} else {
			buf = append(buf, 0x00)
		}
	} else if negative {
		buf[len(buf)-1] |= 0x80
	}
	return buf
}

func (s scriptNum) Int64() int64 {
	if !s.val.IsInt64() {
		if s.val.Sign() < 0 {
			return -1 << 63
		}
		return 1<<63 - 1
	}
	return s.val.Int64()
}

func (s scriptNum) Add(o scriptNum) scriptNum {
	return scriptNum{val: new(big.Int).Add(s.val, o.val)}
}
func (s scriptNum) Sub(o scriptNum) scriptNum {
	return scriptNum{val: new(big.Int).Sub(s.val, o.val)}
}
func (s scriptNum) Neg() scriptNum { return scriptNum{val: new(big.Int).Neg(s.val)} }
func (s scriptNum) Abs() scriptNum { return scriptNum{val: new(big.Int).Abs(s.val)} }
func (s scriptNum) Sign() int      { return s.val.Sign() }
func (s scriptNum) Cmp(o scriptNum) int { return s.val.Cmp(o.val) }
func (s scriptNum) IsZero() bool   { return s.val.Sign() == 0 }

// asBool implements spec §4.2's boolean coercion: empty, or all-zero bytes
// with an optional trailing 0x80 sign byte, is false.
func asBool(item []byte) bool {
	for i, b := range item {
		if b != 0 {
			if i == len(item)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func boolBytes(b bool) []byte {
	if !b {
		return nil
	}
	return []byte{1}
}
