// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"encoding/hex"

	"github.com/pkt-cash/btccore/er"
)

// HashSize is the number of bytes in a hash produced by HASH256/SHA256.
const HashSize = 32

// Hash is a 32-byte double-SHA256/SHA256 hash, stored internally in the
// byte order it is produced in (the "internal" order), not the
// human-readable, reversed "display" order used by block explorers.
type Hash [HashSize]byte

// String returns the Hash as a hexadecimal string in display (reversed)
// byte order, matching how txids/blockhashes are conventionally shown.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < HashSize/2; i++ {
		reversed[i], reversed[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// CloneBytes returns a copy of the hash as a byte slice in internal order.
func (h *Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// SetBytes copies src into the hash. src must be exactly HashSize bytes.
func (h *Hash) SetBytes(src []byte) er.R {
	if len(src) != HashSize {
		return er.Errorf("invalid hash length %d, expected %d", len(src), HashSize)
	}
	copy(h[:], src)
	return nil
}

// IsEqual reports whether h and target are exactly equal. A nil hash equals
// only another nil hash; it never equals a non-nil one (not even all-zero).
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil || target == nil {
		return h == target
	}
	return *h == *target
}

// NewHash builds a Hash from a byte slice in internal order.
func NewHash(b []byte) (*Hash, er.R) {
	var h Hash
	if err := h.SetBytes(b); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr builds a Hash by parsing a display-order (reversed) hex
// string, the format txids/blockhashes are conventionally printed in.
func NewHashFromStr(s string) (*Hash, er.R) {
	b, errr := hex.DecodeString(s)
	if errr != nil {
		return nil, er.Errorf("malformed hash string %q: %v", s, errr)
	}
	if len(b) != HashSize {
		return nil, er.Errorf("invalid hash string length %d, expected %d bytes", len(b), HashSize)
	}
	var h Hash
	for i := 0; i < HashSize; i++ {
		h[i] = b[HashSize-1-i]
	}
	return &h, nil
}
