// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// HashB computes SHA256(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// HashH computes SHA256(b) and returns the result as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB computes SHA256(SHA256(b)) - Bitcoin's HASH256 - and returns
// the resulting bytes.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH computes SHA256(SHA256(b)) and returns the result as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// Ripemd160 computes RIPEMD160(b).
func Ripemd160(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}

// Sha1(b) computes SHA1(b), used by the rarely-seen OP_SHA1 opcode.
func Sha1(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}

// Hash160 computes RIPEMD160(SHA256(b)) - Bitcoin's HASH160 - as used for
// P2PKH/P2SH/P2WPKH/P2WSH hashing of keys and scripts.
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}
