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

package htable

import (
	"testing"

	"github.com/sneller-algebra/seriesmul/series/poly"
)

func TestInsertCoalescesEqualKeys(t *testing.T) {
	tb := New(4)
	if err := tb.Insert(poly.NewTerm(2, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := tb.Insert(poly.NewTerm(3, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if tb.Len() != 1 {
		t.Fatalf("expected 1 distinct term, got %d", tb.Len())
	}
	got, ok := tb.Find(&poly.Monomial{Exponents: []int32{1, 0}})
	if !ok {
		t.Fatal("expected to find term")
	}
	if got.Cf.(*poly.Coeff).V != 5 {
		t.Fatalf("expected coefficient 5, got %v", got.Cf.(*poly.Coeff).V)
	}
}

func TestRehashPreservesContents(t *testing.T) {
	tb := New(1)
	terms := []int32{0, 1, 2, 3, 4, 5, 6, 7}
	for _, e := range terms {
		if err := tb.Insert(poly.NewTerm(int64(e)+1, e)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tb.Rehash(16); err != nil {
		t.Fatal(err)
	}
	if tb.BucketCount() != 16 {
		t.Fatalf("expected 16 buckets, got %d", tb.BucketCount())
	}
	for _, e := range terms {
		got, ok := tb.Find(&poly.Monomial{Exponents: []int32{e}})
		if !ok {
			t.Fatalf("missing term %d after rehash", e)
		}
		if got.Cf.(*poly.Coeff).V != int64(e)+1 {
			t.Fatalf("wrong coefficient for term %d after rehash", e)
		}
	}
}

func TestLowLevelInsertRequiresCallerToCheckBucket(t *testing.T) {
	tb := New(4)
	trm := poly.NewTerm(1, 0)
	bi := tb.Bucket(trm.Key.Hash())
	if _, found := tb.FindInBucket(trm.Key, bi); found {
		t.Fatal("unexpected hit in empty table")
	}
	tb.UniqueInsert(trm, bi)
	tb.UpdateSize(1)
	if tb.Len() != 1 {
		t.Fatalf("expected size 1, got %d", tb.Len())
	}
	if _, found := tb.FindInBucket(trm.Key, bi); !found {
		t.Fatal("expected to find just-inserted term")
	}
}

func TestClear(t *testing.T) {
	tb := New(4)
	_ = tb.Insert(poly.NewTerm(1, 0))
	tb.Clear()
	if tb.Len() != 0 {
		t.Fatalf("expected empty table after Clear, got %d", tb.Len())
	}
	if _, ok := tb.Find(&poly.Monomial{Exponents: []int32{0}}); ok {
		t.Fatal("expected no terms after Clear")
	}
}
