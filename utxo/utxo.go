// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package utxo implements the process-wide UTXO store of spec §4.5:
// register/unregister/get/extract/set_loader over a (txid, output_index)
// keyed map, plus a secondary address index adapted from the teacher's
// addressbalance indexer.
package utxo

import (
	"bytes"

	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/txscript/standard"
	"github.com/pkt-cash/btccore/util/tmap"
	"github.com/pkt-cash/btccore/wire"
)

var UTXOError = er.UTXOErrorType.Code("UTXO", "UTXO store operation failed")

// UTXO is one unspent output: the outpoint it was created at, its value,
// and its locking script.
type UTXO struct {
	Outpoint wire.OutPoint
	Value    int64
	PkScript []byte
}

// LoaderFunc is invoked synchronously on a Get miss; if it returns a
// non-nil UTXO, the UTXO is registered before being returned to the
// caller. Must be idempotent with respect to re-registration.
type LoaderFunc func(op wire.OutPoint) *UTXO

func compareOutPoint(a, b *wire.OutPoint) int {
	if c := bytes.Compare(a.Hash[:], b.Hash[:]); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}

// Store is a single scope's UTXO set: an explicitly-scoped, single-threaded
// collaborator per spec §5 (not a hidden global, but not safe to share
// across goroutines without external synchronization).
type Store struct {
	entries   *tmap.Map[wire.OutPoint, UTXO]
	byAddress map[string]map[wire.OutPoint]struct{}
	loader    LoaderFunc
}

// NewStore returns an empty UTXO store.
func NewStore() *Store {
	return &Store{
		entries:   tmap.New[wire.OutPoint, UTXO](compareOutPoint),
		byAddress: make(map[string]map[wire.OutPoint]struct{}),
	}
}

// SetLoader installs (or, with nil, clears) the miss callback.
func (s *Store) SetLoader(fn LoaderFunc) { s.loader = fn }

// Register adds u to the store, unless its locking script is NULLDATA
// (provably unspendable outputs are never stored).
func (s *Store) Register(u *UTXO) {
	pops, err := parsescript.ParseScript(u.PkScript)
	if err == nil && standard.GetScriptClass(pops) == standard.NullDataTy {
		return
	}
	tmap.Insert(s.entries, &u.Outpoint, u)
	s.indexAddress(u)
}

func (s *Store) indexAddress(u *UTXO) {
	pops, err := parsescript.ParseScript(u.PkScript)
	if err != nil {
		return
	}
	class := standard.GetScriptClass(pops)
	var addrKey string
	switch class {
	case standard.PubKeyHashTy, standard.ScriptHashTy,
		standard.WitnessV0PubKeyHashTy, standard.WitnessV0ScriptHashTy:
		addrKey = string(u.PkScript)
	default:
		return
	}
	set, ok := s.byAddress[addrKey]
	if !ok {
		set = make(map[wire.OutPoint]struct{})
		s.byAddress[addrKey] = set
	}
	set[u.Outpoint] = struct{}{}
}

// Unregister removes the entry at op, if present.
func (s *Store) Unregister(op wire.OutPoint) {
	if v, ok := tmap.Get(s.entries, &op); ok {
		if set, ok := s.byAddress[string(v.PkScript)]; ok {
			delete(set, op)
			if len(set) == 0 {
				delete(s.byAddress, string(v.PkScript))
			}
		}
	}
	tmap.Remove(s.entries, &op)
}

// Get looks up op, consulting the loader on a miss. Fails if op is not
// found and either there is no loader or the loader declines to supply one.
func (s *Store) Get(op wire.OutPoint) (*UTXO, er.R) {
	if v, ok := tmap.Get(s.entries, &op); ok {
		return v, nil
	}
	if s.loader != nil {
		if u := s.loader(op); u != nil {
			s.Register(u)
			return u, nil
		}
	}
	return nil, UTXOError.New("no UTXO registered for " + op.String())
}

// ByAddress returns every currently-registered UTXO locked to pkScript,
// adapted from the teacher's address-balance secondary index.
func (s *Store) ByAddress(pkScript []byte) []*UTXO {
	set, ok := s.byAddress[string(pkScript)]
	if !ok {
		return nil
	}
	out := make([]*UTXO, 0, len(set))
	for op := range set {
		if v, ok := tmap.Get(s.entries, &op); ok {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of UTXOs currently registered.
func (s *Store) Len() int { return tmap.Len(s.entries) }

// Extract parses a serialized transaction, synthesizing stub UTXOs (zero
// value, empty script) for any input reference this store does not already
// know about via a temporary loader, then registers every one of the
// transaction's own outputs. Returns the parsed transaction.
func (s *Store) Extract(serializedTx []byte) (*wire.MsgTx, er.R) {
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(serializedTx)); err != nil {
		return nil, err
	}

	prevLoader := s.loader
	s.SetLoader(func(op wire.OutPoint) *UTXO {
		if prevLoader != nil {
			if u := prevLoader(op); u != nil {
				return u
			}
		}
		return &UTXO{Outpoint: op}
	})
	defer s.SetLoader(prevLoader)

	for _, in := range tx.TxIn {
		if _, err := s.Get(in.PreviousOutPoint); err != nil {
			return nil, err
		}
	}

	txHash := tx.TxHash()
	for i, out := range tx.TxOut {
		s.Register(&UTXO{
			Outpoint: wire.OutPoint{Hash: txHash, Index: uint32(i)},
			Value:    out.Value,
			PkScript: out.PkScript,
		})
	}
	return tx, nil
}

// UpdateUTXOs unregisters every input tx consumes and registers every
// output it creates, keyed by tx's own hash - spec §4.5's
// transaction.update_utxos().
func (s *Store) UpdateUTXOs(tx *wire.MsgTx) {
	for _, in := range tx.TxIn {
		s.Unregister(in.PreviousOutPoint)
	}
	txHash := tx.TxHash()
	for i, out := range tx.TxOut {
		s.Register(&UTXO{
			Outpoint: wire.OutPoint{Hash: txHash, Index: uint32(i)},
			Value:    out.Value,
			PkScript: out.PkScript,
		})
	}
}
