package chainhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashStringRoundTrip(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = byte(i)
	}
	s := h.String()
	h2, err := NewHashFromStr(s)
	require.Nil(t, err)
	require.True(t, h.IsEqual(h2))
}

func TestDoubleHash(t *testing.T) {
	b := []byte("hello")
	got := DoubleHashB(b)
	require.Len(t, got, HashSize)
}

func TestHash160Length(t *testing.T) {
	got := Hash160([]byte("pubkey-bytes"))
	require.Len(t, got, 20)
}

func TestSetBytesWrongLength(t *testing.T) {
	var h Hash
	err := h.SetBytes([]byte{1, 2, 3})
	require.NotNil(t, err)
}
