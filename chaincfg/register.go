// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"sync"

	"github.com/pkt-cash/btccore/er"
)

var (
	NetworkConfigError = er.NetworkErrorType.Code("NetworkConfig",
		"network parameters are missing or invalid")
	NetworkCheckError = er.NetworkErrorType.Code("NetworkCheck",
		"operation is not valid for the active network")
)

var registryMu sync.RWMutex
var registry = map[string]*Params{
	MainNetParams.Name:       &MainNetParams,
	TestNet3Params.Name:      &TestNet3Params,
	RegressionNetParams.Name: &RegressionNetParams,
	SimNetParams.Name:        &SimNetParams,
}

var defaultParams = &MainNetParams
var singleNetwork *Params

// Register adds params to the process-wide network catalog, keyed by its
// Name, so it can later be looked up with ByName or bound as the default
// with SetDefault.
func Register(params *Params) er.R {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[params.Name]; ok {
		return NetworkConfigError.New("network " + params.Name + " is already registered")
	}
	registry[params.Name] = params
	return nil
}

// ByName looks up a previously-registered network by its Name.
func ByName(name string) (*Params, er.R) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, NetworkConfigError.New("no such network: " + name)
	}
	return p, nil
}

// Default returns the process-wide default network, used whenever a caller
// constructs a Key/ExtendedKey without naming a network explicitly.
func Default() *Params {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return defaultParams
}

// SetDefault changes the process-wide default network. It has no effect on
// keys that were already constructed, only on ones constructed afterwards
// without an explicit network.
func SetDefault(params *Params) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultParams = params
}

// PinSingleNetwork enters "single-network" mode: params becomes (and stays)
// the default, and CheckSingleNetwork will reject any other network until
// ClearSingleNetwork is called. This matches spec §5's "single-network mode
// can pin the default" rule.
func PinSingleNetwork(params *Params) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultParams = params
	singleNetwork = params
}

// ClearSingleNetwork releases single-network mode.
func ClearSingleNetwork() {
	registryMu.Lock()
	defer registryMu.Unlock()
	singleNetwork = nil
}

// CheckSingleNetwork returns a NetworkCheckError if single-network mode is
// pinned to a different network than params.
func CheckSingleNetwork(params *Params) er.R {
	registryMu.RLock()
	pinned := singleNetwork
	registryMu.RUnlock()
	if pinned != nil && pinned.Name != params.Name {
		return NetworkCheckError.New("operation requires network " + pinned.Name +
			" but got " + params.Name)
	}
	return nil
}
