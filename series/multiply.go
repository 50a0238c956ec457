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

package series

import (
	"math"
	"sync"

	"github.com/sneller-algebra/seriesmul/internal/blockmul"
	"github.com/sneller-algebra/seriesmul/internal/estimator"
	"github.com/sneller-algebra/seriesmul/internal/htable"
	"github.com/sneller-algebra/seriesmul/internal/mulpool"
	"github.com/sneller-algebra/seriesmul/internal/spinlock"
	"github.com/sneller-algebra/seriesmul/internal/trace"
	"github.com/sneller-algebra/seriesmul/series/term"
)

// Options configures a Multiply call. Multiply starts from the package
// defaults, which each Option may override: a pool sized to blockmul.DefaultTunables().MaxThreads (created
// and torn down for the duration of the call), default block size and
// estimator tunables, and a private tracing sink.
type Options struct {
	Pool      mulpool.Pool
	Tunables  blockmul.Tunables
	Estimator estimator.Tunables
	Trace     *trace.Sink
}

// Option mutates an Options value.
type Option func(*Options)

// WithPool supplies a pre-built worker pool instead of letting
// Multiply create and tear down one of its own. The caller owns the
// pool's lifecycle.
func WithPool(p mulpool.Pool) Option { return func(o *Options) { o.Pool = p } }

// WithTunables overrides block size / thread tunables.
func WithTunables(t blockmul.Tunables) Option { return func(o *Options) { o.Tunables = t } }

// WithEstimatorTunables overrides the Monte-Carlo estimator's trial
// count / multiplier.
func WithEstimatorTunables(t estimator.Tunables) Option {
	return func(o *Options) { o.Estimator = t }
}

// WithTrace records estimator accuracy counters into sink instead of a
// private, call-scoped one.
func WithTrace(sink *trace.Sink) Option { return func(o *Options) { o.Trace = sink } }

// Multiply returns a fresh series whose term set equals the algebraic
// product of s1 and s2.
func Multiply(s1, s2 *Series, opts ...Option) (*Series, error) {
	if !s1.Symbols.Equal(s2.Symbols) {
		return nil, ErrIncompatibleSymbolSets
	}

	options := Options{
		Tunables:  blockmul.DefaultTunables(),
		Estimator: estimator.DefaultTunables(),
	}
	for _, o := range opts {
		o(&options)
	}
	if options.Trace == nil {
		options.Trace = &trace.Sink{}
	}

	if s1.Len() == 0 || s2.Len() == 0 {
		return New(s1.Symbols), nil
	}

	// order operands so that v1 is the larger operand: keeps the
	// per-worker inner loop (over the full second operand) longer and
	// the partitioned outer loop (over the first) more even.
	v1, v2 := s1.Terms(), s2.Terms()
	if len(v1) < len(v2) {
		v1, v2 = v2, v1
	}
	syms := s1.Symbols

	pool := options.Pool
	ownPool := false
	if pool == nil {
		max := options.Tunables.MaxThreads
		if max < 1 {
			max = 1
		}
		pool = mulpool.New(max)
		ownPool = true
	}
	if ownPool {
		defer pool.Close()
	}

	totalWork := uint64(len(v1)) * uint64(len(v2))
	threads := pool.Recommend(totalWork, options.Tunables.MinWorkPerThread)
	if mt := options.Tunables.MaxThreads; mt > 0 && threads > mt {
		threads = mt
	}
	threads = clamp(threads, 1, len(v1))

	if threads == 1 {
		return multiplySingleThreaded(v1, v2, syms, options)
	}
	return multiplyStriped(v1, v2, syms, threads, pool, options)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func multiplySingleThreaded(v1, v2 []term.Term, syms term.SymbolSet, options Options) (*Series, error) {
	result := New(syms)
	track := estimator.ShouldEstimate(len(v1), len(v2))
	var estimate uint64
	if track {
		scratch := htable.New(1)
		est, err := estimator.Estimate(v1, v2, syms, scratch, options.Estimator)
		if err == nil {
			estimate = est
			if estimate > 0 {
				target := ceilDiv(estimate, result.Table().MaxLoadFactor())
				if rerr := result.Table().Rehash(target); rerr != nil {
					return nil, ErrOutOfMemory
				}
			}
		}
		// an estimator failure is non-fatal: the
		// scratch table is local to this call and is dropped, so we
		// simply proceed without a pre-rehash and skip tracing for
		// this call.
		if err != nil {
			track = false
		}
	}

	err := blockmul.Run(v1, v2, syms, options.Tunables.BlockSize, result.Insert)
	if err != nil {
		return nil, err
	}

	if track {
		options.Trace.Record(estimate, uint64(result.Len()))
	}
	return result, nil
}

func multiplyStriped(v1, v2 []term.Term, syms term.SymbolSet, threads int, pool mulpool.Pool, options Options) (result *Series, err error) {
	result = New(syms)

	track := estimator.ShouldEstimate(len(v1), len(v2))
	var estimate uint64
	if track {
		scratch := htable.New(1)
		est, eerr := estimator.Estimate(v1, v2, syms, scratch, options.Estimator)
		if eerr == nil {
			estimate = est
		} else {
			track = false
		}
	}
	if estimate < 1 {
		estimate = 1
	}
	target := ceilDiv(estimate, result.Table().MaxLoadFactor())
	if rerr := result.Table().Rehash(target); rerr != nil {
		return nil, ErrOutOfMemory
	}

	locks, lerr := spinlock.NewArray(result.Table().BucketCount())
	if lerr != nil {
		return nil, ErrOutOfMemory
	}

	blockSize := len(v1) / threads
	var insMu sync.Mutex
	var totIns int

	handles := make([]*mulpool.Handle, threads)
	for i := 0; i < threads; i++ {
		start := i * blockSize
		end := start + blockSize
		if i == threads-1 {
			end = len(v1)
		}
		slice := v1[start:end]
		handles[i] = pool.Enqueue(i, func(int) error {
			localIns := 0
			insert := func(t term.Term) error {
				if t.Key.IsIgnorable(syms) {
					return nil
				}
				b := result.Table().Bucket(t.Key.Hash())
				unlock := locks.Lock(b)
				defer unlock()
				if ref, found := result.Table().FindInBucket(t.Key, b); found {
					existing := result.Table().At(ref)
					if aerr := existing.Cf.AddAssign(t.Cf); aerr != nil {
						return wrapCoeffErr(aerr)
					}
					return nil
				}
				result.Table().UniqueInsert(t, b)
				localIns++
				return nil
			}
			werr := blockmul.Run(slice, v2, syms, options.Tunables.BlockSize, insert)
			insMu.Lock()
			totIns += localIns
			insMu.Unlock()
			return werr
		})
	}

	// join every worker before looking at any error: a
	// worker failing never leaves the others un-joined.
	var firstErr error
	for _, h := range handles {
		if werr := h.Wait(); werr != nil && firstErr == nil {
			firstErr = werr
		}
	}
	if firstErr != nil {
		result.Table().Clear()
		return nil, firstErr
	}

	result.Table().UpdateSize(totIns)

	if float64(result.Len())/float64(result.Table().BucketCount()) > result.Table().MaxLoadFactor() {
		postTarget := ceilDiv(uint64(result.Len()), result.Table().MaxLoadFactor())
		if rerr := result.Table().Rehash(postTarget); rerr != nil {
			return nil, ErrOutOfMemory
		}
	}

	if track {
		options.Trace.Record(estimate, uint64(result.Len()))
	}
	return result, nil
}

func ceilDiv(n uint64, maxLoadFactor float64) int {
	if maxLoadFactor <= 0 {
		maxLoadFactor = 1
	}
	return int(math.Ceil(float64(n) / maxLoadFactor))
}
