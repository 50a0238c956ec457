// Copyright (C) 2024 Sneller-algebra, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package htable implements the term-aligned hash container used to
// accumulate the product of two series. It is an open-addressed hash
// set with per-bucket chaining: each bucket is a small slice of slots,
// so distinct buckets never contend, which is what lets the parallel
// multiplier guard buckets individually with a spinlock array instead
// of a single table-wide lock.
//
// The high-level operations (Insert, Find, Len) behave like a regular
// hash set and are safe for single-threaded use. The low-level
// operations (Bucket, FindInBucket, UniqueInsert, Erase, UpdateSize)
// are the ones the parallel multiplier calls directly; they bypass the
// size counter and any internal locking, and it is the caller's
// responsibility to serialize access per-bucket (see
// internal/spinlock).
package htable

import (
	"errors"

	"github.com/sneller-algebra/seriesmul/series/term"
)

// ErrOutOfMemory mirrors series.ErrOutOfMemory for allocation failures
// local to the hash container (e.g. a rehash target size that would
// overflow an int).
var ErrOutOfMemory = errors.New("htable: out of memory")

const defaultMaxLoadFactor = 1.0

// Ref identifies a slot within a bucket: the pair (bucket index, slot
// index within that bucket's chain).
type Ref struct {
	bucket int
	slot   int
}

// Table is the term-aligned open-addressing hash set (C2). New returns
// a ready-to-use table; the zero value has no buckets (BucketCount
// reports 0) and a max load factor of 0.
type Table struct {
	buckets       [][]term.Term
	size          int
	maxLoadFactor float64
}

// New returns an empty table with bucketCount buckets.
func New(bucketCount int) *Table {
	if bucketCount < 1 {
		bucketCount = 1
	}
	return &Table{
		buckets:       make([][]term.Term, bucketCount),
		maxLoadFactor: defaultMaxLoadFactor,
	}
}

// BucketCount returns the number of buckets currently allocated.
func (t *Table) BucketCount() int {
	if t.buckets == nil {
		return 0
	}
	return len(t.buckets)
}

// Len returns the number of terms the size counter believes are
// stored. It is only accurate after UpdateSize has been called to
// reconcile concurrent low-level insertions.
func (t *Table) Len() int { return t.size }

// MaxLoadFactor returns the load factor above which a rehash is
// triggered after the parallel merge phase.
func (t *Table) MaxLoadFactor() float64 { return t.maxLoadFactor }

// SetMaxLoadFactor overrides the default max load factor (1.0).
func (t *Table) SetMaxLoadFactor(f float64) {
	if f > 0 {
		t.maxLoadFactor = f
	}
}

// Bucket returns the bucket index for a precomputed hash. It depends
// only on h and the current bucket count, so it is safe to call
// concurrently from any number of readers as long as no rehash is
// concurrently in flight.
func (t *Table) Bucket(h uint64) int {
	n := uint64(len(t.buckets))
	if n == 0 {
		return 0
	}
	return int(h % n)
}

// FindInBucket scans bucket bi for a term whose key equals k, returning
// its Ref and true, or the zero Ref and false if absent. Safe for a
// single thread per bucket index while no other thread touches that
// bucket (the parallel multiplier guarantees this with a spinlock per
// bucket).
func (t *Table) FindInBucket(k term.Key, bi int) (Ref, bool) {
	chain := t.buckets[bi]
	for i := range chain {
		if chain[i].Key.Equal(k) {
			return Ref{bucket: bi, slot: i}, true
		}
	}
	return Ref{}, false
}

// UniqueInsert appends term into bucket bi. The caller must already
// have verified (via FindInBucket) that no term with an equal key is
// present in that bucket; UniqueInsert does not re-check. It bypasses
// the size counter: callers performing concurrent inserts must tally
// their own insertion counts and reconcile via UpdateSize once after
// the parallel phase joins.
func (t *Table) UniqueInsert(trm term.Term, bi int) {
	t.buckets[bi] = append(t.buckets[bi], trm)
}

// At dereferences a Ref, returning the stored term by pointer so its
// coefficient can be accumulated in place.
func (t *Table) At(r Ref) *term.Term {
	return &t.buckets[r.bucket][r.slot]
}

// Erase removes the term referenced by r.
func (t *Table) Erase(r Ref) {
	chain := t.buckets[r.bucket]
	last := len(chain) - 1
	chain[r.slot] = chain[last]
	t.buckets[r.bucket] = chain[:last]
}

// Clear empties the table but keeps its bucket allocation.
func (t *Table) Clear() {
	for i := range t.buckets {
		t.buckets[i] = t.buckets[i][:0]
	}
	t.size = 0
}

// UpdateSize overwrites the size counter. Called once, after a
// parallel insertion phase joins, with the accumulated per-worker
// insertion counts.
func (t *Table) UpdateSize(n int) { t.size = n }

// Rehash grows (or shrinks) the table to newCount buckets, redistributing
// every stored term. It must not be called while any concurrent reader
// or writer holds a reference into the bucket table;
// in particular it must never run during the parallel phase, only
// before it starts or after all workers have joined.
func (t *Table) Rehash(newCount int) error {
	if newCount < 1 {
		newCount = 1
	}
	if newCount > (1<<62)/16 {
		return ErrOutOfMemory
	}
	next := make([][]term.Term, newCount)
	for _, chain := range t.buckets {
		for _, trm := range chain {
			h := trm.Key.Hash()
			bi := int(h % uint64(newCount))
			next[bi] = append(next[bi], trm)
		}
	}
	t.buckets = next
	return nil
}

// All calls fn once for every stored term, in bucket order. It is safe
// for concurrent readers as long as no writer is concurrently mutating
// the table.
func (t *Table) All(fn func(term.Term)) {
	for _, chain := range t.buckets {
		for _, trm := range chain {
			fn(trm)
		}
	}
}

// Insert is the high-level, single-threaded entry point: if a term
// with an equal key is already present, its coefficient is accumulated
// in place (term.Cf += t.Cf); otherwise t is inserted as a new entry.
// It maintains the size counter itself and rehashes automatically when
// the load factor would be exceeded.
func (t *Table) Insert(trm term.Term) error {
	if len(t.buckets) == 0 {
		t.buckets = make([][]term.Term, 1)
	}
	bi := t.Bucket(trm.Key.Hash())
	if ref, ok := t.FindInBucket(trm.Key, bi); ok {
		existing := t.At(ref)
		if err := existing.Cf.AddAssign(trm.Cf); err != nil {
			return err
		}
		return nil
	}
	t.UniqueInsert(trm, bi)
	t.size++
	if float64(t.size)/float64(len(t.buckets)) > t.maxLoadFactor {
		target := int(float64(t.size)/t.maxLoadFactor) + 1
		if err := t.Rehash(target); err != nil {
			return err
		}
	}
	return nil
}

// Find looks up a term by key.
func (t *Table) Find(k term.Key) (term.Term, bool) {
	if len(t.buckets) == 0 {
		return term.Term{}, false
	}
	bi := t.Bucket(k.Hash())
	ref, ok := t.FindInBucket(k, bi)
	if !ok {
		return term.Term{}, false
	}
	return *t.At(ref), true
}
