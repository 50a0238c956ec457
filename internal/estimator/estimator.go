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

// Package estimator implements the statistical pre-sizing of the
// result cardinality of a series multiplication (C4): a Monte-Carlo
// estimate based on the birthday-problem analogy, run before the
// parallel phase so the shared result table can be rehashed to
// (close to) its final size up front instead of growing it
// incrementally under lock contention.
package estimator

import (
	"errors"
	"math"
	"math/rand"

	"github.com/sneller-algebra/seriesmul/internal/htable"
	"github.com/sneller-algebra/seriesmul/series/term"
)

// ErrOverflow is returned when the trial counter would overflow.
var ErrOverflow = errors.New("estimator: overflow")

// defaultSeed is the fixed seed used for every estimate, so that two
// calls against identical inputs produce identical estimates.
const defaultSeed = 0x5eed

// Tunables controls the Monte-Carlo trial count and the upward-bias
// multiplier.
type Tunables struct {
	NTrials    int
	Multiplier uint64
}

// DefaultTunables returns NTRIALS=10, MULTIPLIER=2.
func DefaultTunables() Tunables {
	return Tunables{NTrials: 10, Multiplier: 2}
}

// lowWorkThreshold is the point below which Estimate itself returns 0
// immediately rather than spending cycles on trials too short to be
// meaningful. Callers may still skip invoking Estimate entirely below
// this threshold (and commonly do, to avoid its setup cost).
const lowWorkThreshold = 100_000

// ShouldEstimate reports whether Estimate is worth calling for inputs
// of the given sizes: n1*n2 must clear lowWorkThreshold.
func ShouldEstimate(n1, n2 int) bool {
	if n1 <= 0 || n2 <= 0 {
		return false
	}
	return uint64(n1)*uint64(n2) >= lowWorkThreshold
}

// Estimate returns an estimate of the number of distinct terms that
// multiplying every element of v1 against every element of v2 would
// produce, without performing the full multiplication. scratch is a
// caller-owned table used (and cleared) as working storage between
// trials; it must not be accessed by any other goroutine while
// Estimate runs.
func Estimate(v1, v2 []term.Term, syms term.SymbolSet, scratch *htable.Table, tn Tunables) (uint64, error) {
	n1, n2 := len(v1), len(v2)
	if n1 == 0 || n2 == 0 {
		return 0, nil
	}
	if uint64(n1)*uint64(n2) < lowWorkThreshold {
		return 0, nil
	}
	if tn.NTrials <= 0 {
		tn.NTrials = DefaultTunables().NTrials
	}
	if tn.Multiplier == 0 {
		tn.Multiplier = DefaultTunables().Multiplier
	}

	maxM := uint64(math.Sqrt(float64(uint64(n1)*uint64(n2)) / float64(tn.Multiplier)))

	idx1 := make([]int, n1)
	for i := range idx1 {
		idx1[i] = i
	}
	idx2 := make([]int, n2)
	for i := range idx2 {
		idx2[i] = i
	}

	rng := rand.New(rand.NewSource(defaultSeed))
	var total uint64
	var out [2]term.Term

	for trial := 0; trial < tn.NTrials; trial++ {
		rng.Shuffle(len(idx1), func(i, j int) { idx1[i], idx1[j] = idx1[j], idx1[i] })
		rng.Shuffle(len(idx2), func(i, j int) { idx2[i], idx2[j] = idx2[j], idx2[i] })

		var count uint64
		p1, p2 := 0, 0
		for count < maxM {
			if p1 == len(idx1) {
				p1 = 0
				rotateRight1(idx2)
				p2 = 0
			}
			if p2 == len(idx2) {
				p2 = 0
			}

			a, b := v1[idx1[p1]], v2[idx2[p2]]
			arity := a.Key.MultiplyArity()
			if err := a.Key.Multiply(out[:arity], a, b, syms); err != nil {
				return 0, err
			}
			before := scratch.Len()
			for i := 0; i < arity; i++ {
				if err := insertScratch(scratch, out[i]); err != nil {
					return 0, err
				}
			}
			added := uint64(scratch.Len() - before)
			if added != uint64(arity) {
				break
			}

			if count > math.MaxUint64-uint64(arity) {
				return 0, ErrOverflow
			}
			count += uint64(arity)
			p1++
			p2++
		}

		total += count
		scratch.Clear()
	}

	mean := total / uint64(tn.NTrials)
	return mean * mean * tn.Multiplier, nil
}

func insertScratch(t *htable.Table, trm term.Term) error {
	return t.Insert(trm)
}

// rotateRight1 rotates s right by one element in place: the last
// element moves to the front.
func rotateRight1(s []int) {
	if len(s) < 2 {
		return
	}
	last := s[len(s)-1]
	copy(s[1:], s[:len(s)-1])
	s[0] = last
}
