package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByNameKnownNetworks(t *testing.T) {
	p, err := ByName("mainnet")
	require.Nil(t, err)
	require.Equal(t, "mainnet", p.Name)

	_, err = ByName("nonexistent")
	require.NotNil(t, err)
}

func TestSetDefault(t *testing.T) {
	defer SetDefault(&MainNetParams)
	SetDefault(&TestNet3Params)
	require.Equal(t, "testnet3", Default().Name)
}

func TestSingleNetworkPin(t *testing.T) {
	defer ClearSingleNetwork()
	PinSingleNetwork(&TestNet3Params)
	require.Nil(t, CheckSingleNetwork(&TestNet3Params))
	require.NotNil(t, CheckSingleNetwork(&MainNetParams))
}

func TestHDVersionForUnknownPurposeFallsBackToLegacy(t *testing.T) {
	v := MainNetParams.HDVersionFor(999)
	require.Equal(t, MainNetParams.HDVersions[44], v)
}
