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

package poly

import (
	"testing"

	"github.com/sneller-algebra/seriesmul/series/term"
)

func TestMonomialEqualAndHash(t *testing.T) {
	a := &Monomial{Exponents: []int32{1, 2}}
	b := &Monomial{Exponents: []int32{1, 2}}
	c := &Monomial{Exponents: []int32{2, 1}}
	if !a.Equal(b) {
		t.Fatal("equal exponent vectors should compare equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("equal keys must hash equally")
	}
	if a.Equal(c) {
		t.Fatal("different exponent vectors should not compare equal")
	}
}

func TestMonomialIsNeverIgnorable(t *testing.T) {
	m := &Monomial{Exponents: []int32{0, 0}}
	if m.IsIgnorable(term.NewSymbolSet("x", "y")) {
		t.Fatal("polynomial monomials are never ignorable")
	}
}

func TestMonomialIsCompatible(t *testing.T) {
	m := &Monomial{Exponents: []int32{1, 2}}
	if !m.IsCompatible(term.NewSymbolSet("x", "y")) {
		t.Fatal("exponent vector arity matches symbol count: expected compatible")
	}
	if m.IsCompatible(term.NewSymbolSet("x")) {
		t.Fatal("exponent vector has 2 entries, symbol set has 1: expected incompatible")
	}
	if m.IsCompatible(term.NewSymbolSet("x", "y", "z")) {
		t.Fatal("exponent vector has 2 entries, symbol set has 3: expected incompatible")
	}
}

func TestMultiplyAddsExponentsAndMultipliesCoefficients(t *testing.T) {
	syms := term.NewSymbolSet("x", "y")
	a := NewTerm(2, 1, 0)
	b := NewTerm(3, 0, 1)
	var out [1]term.Term
	if err := a.Key.Multiply(out[:1], a, b, syms); err != nil {
		t.Fatal(err)
	}
	got := out[0]
	if got.Cf.(*Coeff).V != 6 {
		t.Fatalf("expected coefficient 6, got %d", got.Cf.(*Coeff).V)
	}
	want := []int32{1, 1}
	gotExps := got.Key.(*Monomial).Exponents
	for i := range want {
		if gotExps[i] != want[i] {
			t.Fatalf("exponents = %v, want %v", gotExps, want)
		}
	}
}

func TestCoeffAddAssignAndNegAssign(t *testing.T) {
	c := &Coeff{V: 5}
	if err := c.AddAssign(&Coeff{V: 3}); err != nil {
		t.Fatal(err)
	}
	if c.V != 8 {
		t.Fatalf("expected 8, got %d", c.V)
	}
	c.NegAssign()
	if c.V != -8 {
		t.Fatalf("expected -8, got %d", c.V)
	}
	clone := c.Clone().(*Coeff)
	clone.V = 100
	if c.V == 100 {
		t.Fatal("Clone must return an independent copy")
	}
}
