// Package tmap is a generic ordered map over an emirpasic/gods red-black
// tree, used by the UTXO store to keep entries in deterministic
// (txid, index) order for iteration.
package tmap

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkt-cash/btccore/er"
)

// Map is a red-black-tree-backed ordered map keyed by K, comparable via a
// caller-supplied comparator.
type Map[K, V any] struct {
	tm   *redblacktree.Tree
	comp func(a, b *K) int
}

// New returns an empty Map ordered by comp.
func New[K, V any](comp func(a, b *K) int) *Map[K, V] {
	return &Map[K, V]{
		tm: redblacktree.NewWith(func(a interface{}, b interface{}) int {
			return comp(a.(*K), b.(*K))
		}),
		comp: comp,
	}
}

// ForEach visits every entry in key order. f may return er.LoopBreak to
// stop iteration early without propagating an error.
func ForEach[K, V any](s *Map[K, V], f func(k *K, v *V) er.R) er.R {
	it := s.tm.Iterator()
	for it.Next() {
		if err := f(it.Key().(*K), it.Value().(*V)); err != nil {
			if er.IsLoopBreak(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Insert adds or replaces the entry for k, returning the previous key/value
// pair if one existed.
func Insert[K, V any](s *Map[K, V], k *K, v *V) (*K, *V) {
	if n, ok := s.tm.Ceiling(k); ok {
		if s.comp(k, n.Key.(*K)) == 0 {
			s.tm.Put(k, v)
			return n.Key.(*K), n.Value.(*V)
		}
	}
	s.tm.Put(k, v)
	return nil, nil
}

// Get looks up k, reporting whether it was present.
func Get[K, V any](s *Map[K, V], k *K) (*V, bool) {
	if n, ok := s.tm.Ceiling(k); ok && s.comp(k, n.Key.(*K)) == 0 {
		v := n.Value.(*V)
		return v, true
	}
	return nil, false
}

// Remove deletes the entry for k, if present.
func Remove[K, V any](s *Map[K, V], k *K) {
	s.tm.Remove(k)
}

// Len returns the number of entries.
func Len[K, V any](s *Map[K, V]) int {
	return s.tm.Size()
}
