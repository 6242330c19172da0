// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import (
	"testing"

	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/keys"
	"github.com/stretchr/testify/require"
)

func TestNewMasterAndSerializeRoundTrip(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)
	require.True(t, master.IsPrivate())
	require.Equal(t, uint8(0), master.Depth())

	s := master.String()
	require.NotEmpty(t, s)

	parsed, err := NewKeyFromString(s, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)
	require.Equal(t, master.Serialize(), parsed.Serialize())
}

func TestChildDerivationNonHardened(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	child, err := master.Child(0)
	require.Nil(t, err)
	require.Equal(t, uint8(1), child.Depth())

	pub := master.Neuter()
	pubChild, err := pub.Child(0)
	require.Nil(t, err)

	priv, err := child.PrivateKey(true)
	require.Nil(t, err)

	wantPub, err := pubChild.PublicKey(true)
	require.Nil(t, err)
	require.Equal(t, wantPub.SerializeCompressed(), priv.PubKey().SerializeCompressed())
}

func TestHardenedChildRejectsPublicParent(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	pub := master.Neuter()
	_, err = pub.Child(HardenedKeyStart)
	require.NotNil(t, err)
}

func TestDeriveBIP44(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	k, err := master.DeriveBIP44(0, 0, 0)
	require.Nil(t, err)
	require.Equal(t, uint8(5), k.Depth())
}

func TestNewMnemonicLength(t *testing.T) {
	m, err := NewMnemonic(128)
	require.Nil(t, err)
	require.Equal(t, 12, len(splitWords(m)))
}

func TestDeriveBIP85EntropyDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	e1, err := DeriveBIP85Entropy(master, []uint32{39, 0, 12, 0})
	require.Nil(t, err)
	e2, err := DeriveBIP85Entropy(master, []uint32{39, 0, 12, 0})
	require.Nil(t, err)
	require.Equal(t, e1, e2)
	require.Equal(t, 64, len(e1))

	e3, err := DeriveBIP85Entropy(master, []uint32{39, 0, 12, 1})
	require.Nil(t, err)
	require.NotEqual(t, e1, e3)
}

func TestDeriveBIP85EntropyRejectsPublicMaster(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)
	pub := master.Neuter()
	_, err = DeriveBIP85Entropy(pub, []uint32{39, 0, 12, 0})
	require.NotNil(t, err)
}

func TestMnemonicFromBIP85WordCounts(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	m12, err := MnemonicFromBIP85(master, []uint32{39, 0, 12, 0}, 12)
	require.Nil(t, err)
	require.Equal(t, 12, len(splitWords(m12)))

	m24, err := MnemonicFromBIP85(master, []uint32{39, 0, 24, 0}, 24)
	require.Nil(t, err)
	require.Equal(t, 24, len(splitWords(m24)))

	require.NotEqual(t, m12, m24)
}

func TestMnemonicFromBIP85Deterministic(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)

	m1, err := MnemonicFromBIP85(master, []uint32{39, 0, 12, 5}, 12)
	require.Nil(t, err)
	m2, err := MnemonicFromBIP85(master, []uint32{39, 0, 12, 5}, 12)
	require.Nil(t, err)
	require.Equal(t, m1, m2)
}

func TestMnemonicFromBIP85RejectsBadWordCount(t *testing.T) {
	seed := make([]byte, 32)
	master, err := NewMaster(seed, &chaincfg.MainNetParams, keys.PurposeLegacy)
	require.Nil(t, err)
	_, err = MnemonicFromBIP85(master, []uint32{39, 0, 13, 0}, 13)
	require.NotNil(t, err)
}

func splitWords(s string) []string {
	var words []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				words = append(words, s[start:i])
			}
			start = i + 1
		}
	}
	return words
}
