// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hdkeychain implements BIP32 hierarchical deterministic key
// derivation, BIP44 path derivation, and BIP85 deterministic entropy, per
// spec §4.6.
package hdkeychain

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/keys"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/tyler-smith/go-bip39"
)

var (
	DerivationError = er.KeyErrorType.Code("Derivation", "extended key derivation failed")

	// HardenedKeyStart is the index of the first hardened child, per BIP32.
	HardenedKeyStart uint32 = 1 << 31
)

const serializedKeyLen = 78

// ExtendedKey is a BIP32 node: key material plus chain code, depth, parent
// fingerprint, child number, and the network/purpose it was constructed
// under. Keys derived from it inherit network and purpose by value.
type ExtendedKey struct {
	key        []byte // 33 bytes: 0x00||privkey, or a compressed pubkey
	chainCode  []byte
	depth      uint8
	parentFP   [4]byte
	childNum   uint32
	isPrivate  bool
	net        *chaincfg.Params
	purpose    keys.Purpose
}

// NewMaster derives the master extended private key from a BIP32 seed.
func NewMaster(seed []byte, net *chaincfg.Params, purpose keys.Purpose) (*ExtendedKey, er.R) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, DerivationError.New("seed length out of range [16,64]")
	}
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	priv, pub := btcec.PrivKeyFromBytes(il)
	if pub == nil {
		return nil, DerivationError.New("master key derivation produced an invalid scalar")
	}
	key := make([]byte, 33)
	copy(key[1:], priv.Serialize())

	return &ExtendedKey{
		key:       key,
		chainCode: ir,
		depth:     0,
		parentFP:  [4]byte{0, 0, 0, 0},
		childNum:  0,
		isPrivate: true,
		net:       net,
		purpose:   purpose,
	}, nil
}

// IsPrivate reports whether this node carries private material.
func (k *ExtendedKey) IsPrivate() bool { return k.isPrivate }

// Depth returns this node's depth in the derivation tree.
func (k *ExtendedKey) Depth() uint8 { return k.depth }

func (k *ExtendedKey) pubKeyBytes() []byte {
	if !k.isPrivate {
		return k.key
	}
	_, pub := btcec.PrivKeyFromBytes(k.key[1:])
	return pub.SerializeCompressed()
}

// Fingerprint returns the first 4 bytes of HASH160(compressed pubkey), the
// identifier used by a child's parentFP field.
func (k *ExtendedKey) Fingerprint() [4]byte {
	h := chainhash.Hash160(k.pubKeyBytes())
	var fp [4]byte
	copy(fp[:], h[:4])
	return fp
}

// Child derives child index i, hardened when i >= HardenedKeyStart. Per
// BIP32, a small fraction of indices yield an invalid child; callers should
// retry with i+1 (this implementation signals that case via error rather
// than silently skipping, since skipping is a caller-level policy).
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, er.R) {
	hardened := i >= HardenedKeyStart
	if hardened && !k.isPrivate {
		return nil, DerivationError.New("cannot derive a hardened child from a public key")
	}

	var data []byte
	if hardened {
		data = make([]byte, 0, 37)
		data = append(data, k.key...) // 0x00 || privkey
	} else {
		data = make([]byte, 0, 37)
		data = append(data, k.pubKeyBytes()...)
	}
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], i)
	data = append(data, idxBuf[:]...)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	curve := btcec.S256()
	ilNum := new(big.Int).SetBytes(il)
	if ilNum.Cmp(curve.N) >= 0 {
		return nil, DerivationError.New("intermediate key exceeds curve order, caller should retry at index+1")
	}

	child := &ExtendedKey{
		chainCode: ir,
		depth:     k.depth + 1,
		childNum:  i,
		isPrivate: k.isPrivate,
		net:       k.net,
		purpose:   k.purpose,
	}
	copy(child.parentFP[:], k.Fingerprint()[:])

	if k.isPrivate {
		parentPriv, _ := btcec.PrivKeyFromBytes(k.key[1:])
		parentScalar := new(big.Int).SetBytes(parentPriv.Serialize())
		childScalar := new(big.Int).Add(ilNum, parentScalar)
		childScalar.Mod(childScalar, curve.N)
		if childScalar.Sign() == 0 {
			return nil, DerivationError.New("derived private key is zero, caller should retry at index+1")
		}
		childBytes := make([]byte, 32)
		childScalar.FillBytes(childBytes)
		childPriv, childPub := btcec.PrivKeyFromBytes(childBytes)
		if childPub == nil {
			return nil, DerivationError.New("derived private key is invalid, caller should retry at index+1")
		}
		child.key = make([]byte, 33)
		copy(child.key[1:], childPriv.Serialize())
	} else {
		parentPub, err := btcec.ParsePubKey(k.key)
		if err != nil {
			return nil, er.E(err)
		}
		ilX, ilY := curve.ScalarBaseMult(il)
		childX, childY := curve.Add(ilX, ilY, parentPub.X(), parentPub.Y())
		if childX.Sign() == 0 && childY.Sign() == 0 {
			return nil, DerivationError.New("derived public key is the point at infinity, caller should retry at index+1")
		}
		var xb, yb [32]byte
		childX.FillBytes(xb[:])
		childY.FillBytes(yb[:])
		childPub, err := btcec.ParsePubKey(compressPoint(xb[:], yb[:]))
		if err != nil {
			return nil, er.E(err)
		}
		child.key = childPub.SerializeCompressed()
	}

	return child, nil
}

// compressPoint builds the 33-byte compressed point encoding from raw
// affine coordinates, for recombining a curve-arithmetic result (which
// only has big.Int coordinates, not a parsed PublicKey) back into the
// wire form the rest of this package works with.
func compressPoint(x, y []byte) []byte {
	out := make([]byte, 33)
	if len(y) > 0 && y[len(y)-1]&1 == 1 {
		out[0] = 0x03
	} else {
		out[0] = 0x02
	}
	copy(out[33-len(x):], x)
	return out
}

// DeriveBIP44 walks m/purpose'/coinType'/account'/change/index, using the
// extended key's own purpose field for the first path element.
func (k *ExtendedKey) DeriveBIP44(account, change, index uint32) (*ExtendedKey, er.R) {
	cur := k
	path := []uint32{
		uint32(k.purpose) + HardenedKeyStart,
		k.net.HDCoinType + HardenedKeyStart,
		account + HardenedKeyStart,
		change,
		index,
	}
	for _, p := range path {
		next, err := cur.Child(p)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Neuter strips private material, returning the corresponding public
// extended key. A no-op (returns k) if already public.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.isPrivate {
		return k
	}
	return &ExtendedKey{
		key:       k.pubKeyBytes(),
		chainCode: k.chainCode,
		depth:     k.depth,
		parentFP:  k.parentFP,
		childNum:  k.childNum,
		isPrivate: false,
		net:       k.net,
		purpose:   k.purpose,
	}
}

// PrivateKey returns the keys.PrivateKey this node carries; fails on a
// public-only node.
func (k *ExtendedKey) PrivateKey(compressed bool) (*keys.PrivateKey, er.R) {
	if !k.isPrivate {
		return nil, DerivationError.New("extended key has no private material")
	}
	return keys.NewPrivateKey(k.key[1:], compressed, k.net, k.purpose)
}

// PublicKey returns the keys.PublicKey this node carries.
func (k *ExtendedKey) PublicKey(compressed bool) (*keys.PublicKey, er.R) {
	return keys.NewPublicKey(k.pubKeyBytes(), k.net, k.purpose)
}

// Serialize produces the 78-byte BIP32 wire form, using the version bytes
// matching this node's network and purpose.
func (k *ExtendedKey) Serialize() []byte {
	ver := k.net.HDVersionFor(uint32(k.purpose))
	buf := make([]byte, 0, serializedKeyLen)
	if k.isPrivate {
		buf = append(buf, ver.Private[:]...)
	} else {
		buf = append(buf, ver.Public[:]...)
	}
	buf = append(buf, k.depth)
	buf = append(buf, k.parentFP[:]...)
	var cnBuf [4]byte
	binary.BigEndian.PutUint32(cnBuf[:], k.childNum)
	buf = append(buf, cnBuf[:]...)
	buf = append(buf, k.chainCode...)
	buf = append(buf, k.key...)
	return buf
}

// String returns the Base58Check-encoded serialized key.
func (k *ExtendedKey) String() string {
	ser := k.Serialize()
	return base58.Encode(append(ser, chainhash.DoubleHashB(ser)[:4]...))
}

// NewKeyFromString parses a Base58Check-encoded extended key string.
func NewKeyFromString(s string, net *chaincfg.Params, purpose keys.Purpose) (*ExtendedKey, er.R) {
	decoded := base58.Decode(s)
	if len(decoded) != serializedKeyLen+4 {
		return nil, DerivationError.New("invalid extended key length")
	}
	payload := decoded[:serializedKeyLen]
	checksum := decoded[serializedKeyLen:]
	want := chainhash.DoubleHashB(payload)[:4]
	for i := range checksum {
		if checksum[i] != want[i] {
			return nil, DerivationError.New("invalid extended key checksum")
		}
	}

	k := &ExtendedKey{net: net, purpose: purpose}
	ver := payload[0:4]
	k.depth = payload[4]
	copy(k.parentFP[:], payload[5:9])
	k.childNum = binary.BigEndian.Uint32(payload[9:13])
	k.chainCode = append([]byte(nil), payload[13:45]...)
	k.key = append([]byte(nil), payload[45:78]...)

	hdver := net.HDVersionFor(uint32(purpose))
	switch {
	case bytesEqual(ver, hdver.Private[:]):
		k.isPrivate = true
	case bytesEqual(ver, hdver.Public[:]):
		k.isPrivate = false
	default:
		return nil, DerivationError.New("version bytes do not match the given network/purpose")
	}
	return k, nil
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

// NewMnemonic returns a BIP39 mnemonic of the given entropy length (in
// bits; 128-256 in steps of 32), using go-bip39's word list, per spec
// §4.6's BIP85 mnemonic derivation.
func NewMnemonic(entropyBits int) (string, er.R) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", er.E(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", er.E(err)
	}
	return mnemonic, nil
}

// SeedFromMnemonic derives a BIP39 seed from a mnemonic and passphrase,
// suitable for NewMaster.
func SeedFromMnemonic(mnemonic, passphrase string) []byte {
	return bip39.NewSeed(mnemonic, passphrase)
}

// DeriveBIP85Entropy derives deterministic child entropy from a BIP85
// master node following m/83696968'/applicationPath..., returning the
// HMAC-SHA512 output whose left bytes seed the requested application
// (e.g. a BIP39 mnemonic of a chosen word count).
func DeriveBIP85Entropy(master *ExtendedKey, path []uint32) ([]byte, er.R) {
	cur := master
	full := append([]uint32{83696968 + HardenedKeyStart}, path...)
	for _, p := range full {
		next, err := cur.Child(p | HardenedKeyStart)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if !cur.isPrivate {
		return nil, DerivationError.New("BIP85 derivation requires a private extended key")
	}
	mac := hmac.New(sha512.New, []byte("bip-entropy-from-k"))
	mac.Write(cur.key[1:])
	return mac.Sum(nil), nil
}

// MnemonicFromBIP85 completes the BIP85 mnemonic application (39'): it
// derives entropy at path (appended after the fixed 83696968' purpose
// node), takes the first entropy_len(words) bytes of the result, and
// encodes them as a BIP39 mnemonic via go-bip39's word list.
func MnemonicFromBIP85(master *ExtendedKey, path []uint32, words int) (string, er.R) {
	n, err := bip85EntropyLen(words)
	if err != nil {
		return "", err
	}
	entropy, err := DeriveBIP85Entropy(master, path)
	if err != nil {
		return "", err
	}
	mnemonic, errr := bip39.NewMnemonic(entropy[:n])
	if errr != nil {
		return "", er.E(errr)
	}
	return mnemonic, nil
}

// bip85EntropyLen maps a BIP39 word count to the entropy length (in bytes)
// BIP85's mnemonic application truncates its HMAC output to.
func bip85EntropyLen(words int) (int, er.R) {
	switch words {
	case 12:
		return 16, nil
	case 15:
		return 20, nil
	case 18:
		return 24, nil
	case 21:
		return 28, nil
	case 24:
		return 32, nil
	default:
		return 0, DerivationError.New("unsupported BIP85 mnemonic word count")
	}
}
