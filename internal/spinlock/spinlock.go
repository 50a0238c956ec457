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

// Package spinlock implements a fixed-size array of one-bit atomic
// test-and-set locks, one per hash bucket, used by the parallel series
// multiplier to guard bucket-granular updates to a shared hash table
// without a single table-wide mutex.
package spinlock

import (
	"errors"
	"sync/atomic"
)

// ErrOutOfMemory is returned by NewArray when the requested lock count
// would require an allocation larger than addressable memory.
var ErrOutOfMemory = errors.New("spinlock: out of memory")

const cacheLineBytes = 64

// one lock per cache line: avoids false sharing between adjacent
// bucket locks, which would otherwise turn independent-bucket
// parallelism into a bus-bandwidth bottleneck.
type paddedFlag struct {
	v    uint32
	_pad [cacheLineBytes - 4]byte
}

// Array is a fixed-size array of spinlocks, one per bucket of a hash
// table. The array must not be resized while in use; bucket_count of
// the guarded table must not change while an Array guards it.
type Array struct {
	flags []paddedFlag
}

// NewArray allocates a spinlock array with n locks, all unlocked. n
// must be at least 1: an Array always guards a table of at least one
// bucket.
func NewArray(n int) (*Array, error) {
	if n < 1 {
		return nil, ErrOutOfMemory
	}
	// guard against n*sizeof(paddedFlag) overflowing int
	const flagSize = cacheLineBytes
	if n != 0 && n > (1<<62)/flagSize {
		return nil, ErrOutOfMemory
	}
	return &Array{flags: make([]paddedFlag, n)}, nil
}

// Len returns the number of locks in the array.
func (a *Array) Len() int { return len(a.flags) }

// Lock acquires the lock at index i, spinning until it succeeds. The
// returned func releases the lock; callers should defer it (or call it
// on every exit path) to guarantee release even if the guarded
// critical section panics.
func (a *Array) Lock(i int) func() {
	f := &a.flags[i]
	for !atomic.CompareAndSwapUint32(&f.v, 0, 1) {
		pause()
	}
	return func() {
		atomic.StoreUint32(&f.v, 0)
	}
}
