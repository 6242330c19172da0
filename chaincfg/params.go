// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg is the network registry collaborator named in spec §1: a
// process-wide catalog mapping a chain id to its magic bytes, BIP44 coin
// type, address version bytes, and bech32 HRP.
package chaincfg

// HDVersion is the 4-byte BIP32 extended key version pair for one BIP44
// purpose (legacy/nested-segwit/native-segwit each have their own
// xprv/xpub-style prefix).
type HDVersion struct {
	Private [4]byte
	Public  [4]byte
}

// Params holds everything the rest of btccore needs to know about one
// Bitcoin-family chain.
type Params struct {
	// Name is the unique, human readable identifier for this chain, e.g.
	// "mainnet", "testnet3", "regtest".
	Name string

	// Net is the magic 4-byte value placed at the start of every message
	// on this network's P2P wire protocol (out of scope for this module's
	// operations, but part of a complete network descriptor).
	Net uint32

	// PubKeyHashAddrID is the version byte prepended to a HASH160(pubkey)
	// for Base58Check-encoded P2PKH addresses.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the version byte prepended to a HASH160(script)
	// for Base58Check-encoded P2SH addresses.
	ScriptHashAddrID byte

	// Bech32HRP is the human readable part used for bech32/bech32m
	// SegWit addresses (P2WPKH/P2WSH/P2TR) on this network.
	Bech32HRP string

	// HDCoinType is this network's registered BIP44 coin type.
	HDCoinType uint32

	// HDVersions maps a BIP44 purpose (44, 49, 84, 86) to the BIP32
	// extended key version bytes used when serializing keys derived under
	// that purpose.
	HDVersions map[uint32]HDVersion
}

func legacyVersions(priv, pub [4]byte) HDVersion {
	return HDVersion{Private: priv, Public: pub}
}

// MainNetParams defines the network parameters for the main Bitcoin network.
var MainNetParams = Params{
	Name:              "mainnet",
	Net:               0xd9b4bef9,
	PubKeyHashAddrID:  0x00,
	ScriptHashAddrID:  0x05,
	Bech32HRP:         "bc",
	HDCoinType:        0,
	HDVersions: map[uint32]HDVersion{
		44: legacyVersions([4]byte{0x04, 0x88, 0xad, 0xe4}, [4]byte{0x04, 0x88, 0xb2, 0x1e}), // xprv/xpub
		49: legacyVersions([4]byte{0x04, 0x9d, 0x78, 0x78}, [4]byte{0x04, 0x9d, 0x7c, 0xb2}), // yprv/ypub
		84: legacyVersions([4]byte{0x04, 0xb2, 0x43, 0x0c}, [4]byte{0x04, 0xb2, 0x47, 0x46}), // zprv/zpub
		86: legacyVersions([4]byte{0x04, 0x88, 0xad, 0xe4}, [4]byte{0x04, 0x88, 0xb2, 0x1e}), // taproot reuses xprv/xpub
	},
}

// TestNet3Params defines the network parameters for the test Bitcoin network
// (version 3).
var TestNet3Params = Params{
	Name:              "testnet3",
	Net:               0x0709110b,
	PubKeyHashAddrID:  0x6f,
	ScriptHashAddrID:  0xc4,
	Bech32HRP:         "tb",
	HDCoinType:        1,
	HDVersions: map[uint32]HDVersion{
		44: legacyVersions([4]byte{0x04, 0x35, 0x83, 0x94}, [4]byte{0x04, 0x35, 0x87, 0xcf}), // tprv/tpub
		49: legacyVersions([4]byte{0x04, 0x4a, 0x4e, 0x28}, [4]byte{0x04, 0x4a, 0x52, 0x62}), // uprv/upub
		84: legacyVersions([4]byte{0x04, 0x5f, 0x18, 0xbc}, [4]byte{0x04, 0x5f, 0x1c, 0xf6}), // vprv/vpub
		86: legacyVersions([4]byte{0x04, 0x35, 0x83, 0x94}, [4]byte{0x04, 0x35, 0x87, 0xcf}),
	},
}

// RegressionNetParams defines the network parameters for the regression test
// Bitcoin network.
var RegressionNetParams = Params{
	Name:              "regtest",
	Net:               0xdab5bffa,
	PubKeyHashAddrID:  0x6f,
	ScriptHashAddrID:  0xc4,
	Bech32HRP:         "bcrt",
	HDCoinType:        1,
	HDVersions:        TestNet3Params.HDVersions,
}

// SimNetParams defines the network parameters for the simulation test
// Bitcoin network.
var SimNetParams = Params{
	Name:              "simnet",
	Net:               0x12141c16,
	PubKeyHashAddrID:  0x3f,
	ScriptHashAddrID:  0x7b,
	Bech32HRP:         "sb",
	HDCoinType:        115,
	HDVersions:        TestNet3Params.HDVersions,
}

// HDVersionFor looks up the extended key version pair for the given BIP44
// purpose on this network, defaulting to the legacy (purpose 44) pair when
// the purpose is unknown.
func (p *Params) HDVersionFor(purpose uint32) HDVersion {
	if v, ok := p.HDVersions[purpose]; ok {
		return v
	}
	return p.HDVersions[44]
}
