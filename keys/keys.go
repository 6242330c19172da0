// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keys is the Key model of spec §3: a private scalar or public
// point, a compression flag, a network binding, and a BIP44 purpose hint.
// ECC itself is an out-of-scope external collaborator per spec §1 - this
// package is a thin, network-aware wrapper around btcec.
package keys

import (
	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/chainhash"
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/sigdigest"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var KeyError = er.KeyErrorType.Code("Key", "invalid key material")

// Purpose names the BIP44 purpose a key was derived under, hinting at
// which signing path (legacy/nested-SegWit/native-SegWit) to use.
type Purpose uint32

const (
	PurposeLegacy       Purpose = 44
	PurposeNestedSegWit Purpose = 49
	PurposeNativeSegWit Purpose = 84
	PurposeTaproot      Purpose = 86
)

// PrivateKey is a 32-byte scalar bound to a network, compression
// preference, and BIP44 purpose.
type PrivateKey struct {
	key        *btcec.PrivateKey
	compressed bool
	net        *chaincfg.Params
	purpose    Purpose
}

// PublicKey is a curve point bound to a network and compression
// preference; it carries no private material.
type PublicKey struct {
	key        *btcec.PublicKey
	compressed bool
	net        *chaincfg.Params
	purpose    Purpose
}

// NewPrivateKey wraps raw scalar bytes, verifying curve membership via the
// ECC library. net, when nil, falls back to chaincfg.Default().
func NewPrivateKey(scalar []byte, compressed bool, net *chaincfg.Params, purpose Purpose) (*PrivateKey, er.R) {
	if len(scalar) != 32 {
		return nil, KeyError.New("private key must be exactly 32 bytes")
	}
	priv, pub := btcec.PrivKeyFromBytes(scalar)
	if pub == nil {
		return nil, KeyError.New("scalar does not satisfy curve constraints")
	}
	if net == nil {
		net = chaincfg.Default()
	}
	if err := chaincfg.CheckSingleNetwork(net); err != nil {
		return nil, err
	}
	return &PrivateKey{key: priv, compressed: compressed, net: net, purpose: purpose}, nil
}

// PubKey derives the corresponding PublicKey, inheriting network, purpose,
// and compression preference by value.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{
		key:        p.key.PubKey(),
		compressed: p.compressed,
		net:        p.net,
		purpose:    p.purpose,
	}
}

// Serialize returns the raw 32-byte scalar.
func (p *PrivateKey) Serialize() []byte { return p.key.Serialize() }

// IsCompressed reports the compression preference this key was built with.
func (p *PrivateKey) IsCompressed() bool { return p.compressed }

// Net returns the network this key is bound to.
func (p *PrivateKey) Net() *chaincfg.Params { return p.net }

// Purpose returns the BIP44 purpose hint this key inherited.
func (p *PrivateKey) Purpose() Purpose { return p.purpose }

// Sign produces a low-S-normalized ECDSA signature over hash; call
// Serialize on the result for its DER encoding.
func (p *PrivateKey) Sign(hash *chainhash.Hash) *ecdsa.Signature {
	return ecdsa.Sign(p.key, hash[:])
}

// SignWithHashType signs hash and appends the one-byte sighash type, the
// form consumed directly by CHECKSIG/CHECKMULTISIG.
func (p *PrivateKey) SignWithHashType(hash *chainhash.Hash, hashType sigdigest.SigHashType) []byte {
	sig := p.Sign(hash)
	return append(sig.Serialize(), byte(hashType))
}

// NewPublicKey parses a compressed (33-byte) or uncompressed (65-byte)
// point, verifying it lies on the curve.
func NewPublicKey(data []byte, net *chaincfg.Params, purpose Purpose) (*PublicKey, er.R) {
	pub, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, KeyError.New("invalid public key point: " + err.Error())
	}
	if net == nil {
		net = chaincfg.Default()
	}
	return &PublicKey{
		key:        pub,
		compressed: len(data) == 33,
		net:        net,
		purpose:    purpose,
	}, nil
}

// SerializeCompressed returns the 33-byte compressed point encoding.
func (p *PublicKey) SerializeCompressed() []byte { return p.key.SerializeCompressed() }

// SerializeUncompressed returns the 65-byte uncompressed point encoding.
func (p *PublicKey) SerializeUncompressed() []byte { return p.key.SerializeUncompressed() }

// Serialize returns the point in this key's preferred compression form.
func (p *PublicKey) Serialize() []byte {
	if p.compressed {
		return p.SerializeCompressed()
	}
	return p.SerializeUncompressed()
}

// IsCompressed reports the compression preference this key was built with.
func (p *PublicKey) IsCompressed() bool { return p.compressed }

// Net returns the network this key is bound to.
func (p *PublicKey) Net() *chaincfg.Params { return p.net }

// Purpose returns the BIP44 purpose hint this key inherited.
func (p *PublicKey) Purpose() Purpose { return p.purpose }

// Hash160 returns RIPEMD160(SHA256(serialized pubkey)), the payload of
// every P2PKH/P2WPKH address derived from this key.
func (p *PublicKey) Hash160() []byte {
	return chainhash.Hash160(p.Serialize())
}

// Verify checks sig against hash using this public key.
func (p *PublicKey) Verify(hash *chainhash.Hash, sig *ecdsa.Signature) bool {
	return sig.Verify(hash[:], p.key)
}

// Raw exposes the underlying btcec point, for callers (e.g. the script
// engine) that already hold a parsed signature.
func (p *PublicKey) Raw() *btcec.PublicKey { return p.key }
