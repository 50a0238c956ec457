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

package blockmul

import (
	"testing"

	"github.com/sneller-algebra/seriesmul/series/poly"
	"github.com/sneller-algebra/seriesmul/series/term"
)

func TestRunVisitsEveryPairExactlyOnce(t *testing.T) {
	syms := term.NewSymbolSet("x")
	v1 := make([]term.Term, 7)
	for i := range v1 {
		v1[i] = poly.NewTerm(1, int32(i))
	}
	v2 := make([]term.Term, 5)
	for i := range v2 {
		v2[i] = poly.NewTerm(1, int32(i))
	}

	counts := map[int32]int{}
	insert := func(trm term.Term) error {
		e := trm.Key.(*poly.Monomial).Exponents[0]
		counts[e]++
		return nil
	}
	for _, blockSize := range []int{1, 2, 3, 100} {
		counts = map[int32]int{}
		if err := Run(v1, v2, syms, blockSize, insert); err != nil {
			t.Fatal(err)
		}
		if len(counts) != len(v1)+len(v2)-1 {
			t.Fatalf("blockSize=%d: expected %d distinct sums, got %d", blockSize, len(v1)+len(v2)-1, len(counts))
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		if total != len(v1)*len(v2) {
			t.Fatalf("blockSize=%d: expected %d pair visits, got %d", blockSize, len(v1)*len(v2), total)
		}
	}
}

func TestRunPropagatesInsertError(t *testing.T) {
	syms := term.NewSymbolSet("x")
	v1 := []term.Term{poly.NewTerm(1, 0)}
	v2 := []term.Term{poly.NewTerm(1, 0)}
	wantErr := errDummy{}
	err := Run(v1, v2, syms, 64, func(term.Term) error { return wantErr })
	if err != wantErr {
		t.Fatalf("expected insert error to propagate, got %v", err)
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "dummy" }

// TestRunMatchesSegmentedOracle cross-checks the blocked iteration
// order against the unblocked oracle over an irregular (non-multiple
// of block size) rectangle.
func TestRunMatchesSegmentedOracle(t *testing.T) {
	syms := term.NewSymbolSet("x")
	v1 := make([]term.Term, 13)
	for i := range v1 {
		v1[i] = poly.NewTerm(int64(i+1), int32(i))
	}
	v2 := make([]term.Term, 9)
	for i := range v2 {
		v2[i] = poly.NewTerm(int64(2*i+1), int32(i))
	}

	blocked := map[int32]int64{}
	if err := Run(v1, v2, syms, 4, func(trm term.Term) error {
		blocked[trm.Key.(*poly.Monomial).Exponents[0]] += trm.Cf.(*poly.Coeff).V
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	segmented := map[int32]int64{}
	if err := multiplySegmented(v1, v2, syms, func(trm term.Term) error {
		segmented[trm.Key.(*poly.Monomial).Exponents[0]] += trm.Cf.(*poly.Coeff).V
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if len(blocked) != len(segmented) {
		t.Fatalf("blocked produced %d distinct exponents, segmented produced %d", len(blocked), len(segmented))
	}
	for e, want := range segmented {
		if got := blocked[e]; got != want {
			t.Fatalf("exponent %d: blocked sum %d, segmented oracle sum %d", e, got, want)
		}
	}
}
