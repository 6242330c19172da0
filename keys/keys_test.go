// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keys

import (
	"testing"

	"github.com/pkt-cash/btccore/chainhash"
	"github.com/stretchr/testify/require"
)

func TestPrivateKeySignVerifyRoundTrip(t *testing.T) {
	scalar := make([]byte, 32)
	scalar[31] = 1
	priv, err := NewPrivateKey(scalar, true, nil, PurposeLegacy)
	require.Nil(t, err)

	hash := chainhash.DoubleHashH([]byte("hello world"))
	sig := priv.Sign(&hash)

	pub := priv.PubKey()
	require.True(t, pub.Verify(&hash, sig))
}

func TestPublicKeyHash160Length(t *testing.T) {
	scalar := make([]byte, 32)
	scalar[31] = 2
	priv, err := NewPrivateKey(scalar, true, nil, PurposeLegacy)
	require.Nil(t, err)
	require.Len(t, priv.PubKey().Hash160(), 20)
}

func TestNewPrivateKeyRejectsWrongLength(t *testing.T) {
	_, err := NewPrivateKey([]byte{1, 2, 3}, true, nil, PurposeLegacy)
	require.NotNil(t, err)
}
