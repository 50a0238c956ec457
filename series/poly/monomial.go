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

// Package poly is an example Key/Coeff implementation (C3) for sparse
// polynomial monomials: an exponent vector over a fixed symbol set
// with an integer coefficient. MultiplyArity is 1 (a single key-by-key
// product: exponent vectors add, coefficients multiply).
package poly

import (
	"encoding/binary"
	"fmt"

	"github.com/sneller-algebra/seriesmul/internal/siphashkey"
	"github.com/sneller-algebra/seriesmul/series/term"
)

// Coeff is an int64 polynomial coefficient.
type Coeff struct{ V int64 }

func (c *Coeff) AddAssign(rhs term.Coeff) error {
	o, ok := rhs.(*Coeff)
	if !ok {
		return fmt.Errorf("poly: cannot accumulate %T into *poly.Coeff", rhs)
	}
	c.V += o.V
	return nil
}

func (c *Coeff) NegAssign() { c.V = -c.V }

func (c *Coeff) Clone() term.Coeff { return &Coeff{V: c.V} }

// Monomial is an exponent vector, one entry per symbol.
type Monomial struct {
	Exponents []int32
}

func (m *Monomial) Hash() uint64 {
	buf := make([]byte, 4*len(m.Exponents))
	for i, e := range m.Exponents {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(e))
	}
	return siphashkey.Hash64(buf)
}

func (m *Monomial) Equal(k term.Key) bool {
	o, ok := k.(*Monomial)
	if !ok || len(o.Exponents) != len(m.Exponents) {
		return false
	}
	for i := range m.Exponents {
		if m.Exponents[i] != o.Exponents[i] {
			return false
		}
	}
	return true
}

func (m *Monomial) IsCompatible(syms term.SymbolSet) bool {
	return len(m.Exponents) == syms.Len()
}

// IsIgnorable is always false for polynomial monomials: every exponent
// vector denotes a nonzero monomial.
func (m *Monomial) IsIgnorable(term.SymbolSet) bool { return false }

func (m *Monomial) MultiplyArity() int { return 1 }

func (m *Monomial) Multiply(out []term.Term, a, b term.Term, syms term.SymbolSet) error {
	am, ok := a.Key.(*Monomial)
	if !ok {
		return fmt.Errorf("poly: a.Key is %T, not *poly.Monomial", a.Key)
	}
	bm, ok := b.Key.(*Monomial)
	if !ok {
		return fmt.Errorf("poly: b.Key is %T, not *poly.Monomial", b.Key)
	}
	if len(am.Exponents) != syms.Len() || len(bm.Exponents) != syms.Len() {
		return fmt.Errorf("poly: exponent vector length does not match symbol set")
	}
	acf, ok := a.Cf.(*Coeff)
	if !ok {
		return fmt.Errorf("poly: a.Cf is %T, not *poly.Coeff", a.Cf)
	}
	bcf, ok := b.Cf.(*Coeff)
	if !ok {
		return fmt.Errorf("poly: b.Cf is %T, not *poly.Coeff", b.Cf)
	}

	sum := make([]int32, len(am.Exponents))
	for i := range sum {
		sum[i] = am.Exponents[i] + bm.Exponents[i]
	}
	out[0] = term.Term{
		Cf:  &Coeff{V: acf.V * bcf.V},
		Key: &Monomial{Exponents: sum},
	}
	return nil
}

// NewTerm builds a single polynomial term from a coefficient and an
// exponent per symbol, in symbol-set order.
func NewTerm(coeff int64, exponents ...int32) term.Term {
	return term.Term{Cf: &Coeff{V: coeff}, Key: &Monomial{Exponents: exponents}}
}
