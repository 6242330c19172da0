// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command btccore-cli is a thin demonstration binary over the btccore
// library: it derives a BIP32/BIP44 key chain from a mnemonic and prints
// the resulting addresses, exercising the ambient CLI/logging stack named
// in spec §6's Non-goals note (out-of-core, but still carried as an
// example caller).
package main

import (
	"fmt"
	"os"

	"github.com/pkt-cash/btccore/chaincfg"
	"github.com/pkt-cash/btccore/hdkeychain"
	"github.com/pkt-cash/btccore/keys"
	"github.com/pkt-cash/btccore/pktlog/log"
	"github.com/pkt-cash/btccore/txscript/standard"

	"github.com/dustin/go-humanize"
	flags "github.com/jessevdk/go-flags"
)

type options struct {
	Mnemonic   string `long:"mnemonic" description:"BIP39 mnemonic to derive from"`
	Passphrase string `long:"passphrase" description:"BIP39 passphrase" default:""`
	Account    uint32 `long:"account" description:"BIP44 account index" default:"0"`
	Count      uint32 `long:"count" description:"number of receive addresses to derive" default:"5"`
	Testnet    bool   `long:"testnet" description:"derive against the test network"`
}

func main() {
	if err := run(); err != nil {
		log.Errorf("btccore-cli: %s", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}
	if opts.Mnemonic == "" {
		mnemonic, errr := hdkeychain.NewMnemonic(256)
		if errr != nil {
			return errr
		}
		opts.Mnemonic = mnemonic
		log.Infof("no --mnemonic given, generated one: %s", mnemonic)
	}

	net := chaincfg.Default()
	if opts.Testnet {
		testnet, errr := chaincfg.ByName("testnet3")
		if errr != nil {
			return errr
		}
		net = testnet
	}

	seed := hdkeychain.SeedFromMnemonic(opts.Mnemonic, opts.Passphrase)
	master, err := hdkeychain.NewMaster(seed, net, keys.PurposeLegacy)
	if err != nil {
		return err
	}

	for i := uint32(0); i < opts.Count; i++ {
		child, err := master.DeriveBIP44(opts.Account, 0, i)
		if err != nil {
			return err
		}
		pub, err := child.PublicKey(true)
		if err != nil {
			return err
		}
		var hash [20]byte
		copy(hash[:], pub.Hash160())
		addr := standard.NewPubKeyHashAddress(hash, net)
		fmt.Printf("m/44'/%d'/%d'/0/%d  %s\n", coinType(net), opts.Account, i, addr.EncodeAddress())
	}

	log.Infof("derived %s addresses for account %d", humanize.Comma(int64(opts.Count)), opts.Account)
	return nil
}

func coinType(net *chaincfg.Params) uint32 {
	return net.HDCoinType
}
