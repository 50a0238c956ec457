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

// Package trig is an example Key/Coeff implementation (C3) for
// trigonometric (Kronecker) monomials: a multiplier vector over a
// fixed symbol set plus a cos/sin flavour, with a float64 coefficient.
// MultiplyArity is 2: multiplying two trigonometric monomials produces
// a cosine-sum and a cosine/sine-difference term via the
// product-to-sum identities.
package trig

import (
	"encoding/binary"
	"fmt"

	"github.com/sneller-algebra/seriesmul/internal/siphashkey"
	"github.com/sneller-algebra/seriesmul/series/term"
)

// Flavour distinguishes a cosine monomial from a sine monomial sharing
// the same multiplier vector.
type Flavour uint8

const (
	Cos Flavour = iota
	Sin
)

// Coeff is a float64 trigonometric coefficient.
type Coeff struct{ V float64 }

func (c *Coeff) AddAssign(rhs term.Coeff) error {
	o, ok := rhs.(*Coeff)
	if !ok {
		return fmt.Errorf("trig: cannot accumulate %T into *trig.Coeff", rhs)
	}
	c.V += o.V
	return nil
}

func (c *Coeff) NegAssign() { c.V = -c.V }

func (c *Coeff) Clone() term.Coeff { return &Coeff{V: c.V} }

// Monomial is a multiplier vector with a cos/sin flavour, e.g.
// cos(2x - y) or sin(x + 3z). A stored Monomial always has its leading
// nonzero multiplier positive. When the vector is negated to get there,
// a Sin coefficient is negated too (sin(-v) = -sin(v)), while a Cos
// coefficient is left unchanged (cos(-v) = cos(v)).
type Monomial struct {
	Mult    []int32
	Flavour Flavour
}

func (m *Monomial) Hash() uint64 {
	buf := make([]byte, 4*len(m.Mult)+1)
	for i, e := range m.Mult {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(e))
	}
	buf[len(buf)-1] = byte(m.Flavour)
	return siphashkey.Hash64(buf)
}

func (m *Monomial) Equal(k term.Key) bool {
	o, ok := k.(*Monomial)
	if !ok || o.Flavour != m.Flavour || len(o.Mult) != len(m.Mult) {
		return false
	}
	for i := range m.Mult {
		if m.Mult[i] != o.Mult[i] {
			return false
		}
	}
	return true
}

func (m *Monomial) IsCompatible(syms term.SymbolSet) bool {
	return len(m.Mult) == syms.Len()
}

// IsIgnorable reports the one degenerate case in this domain: sin(0)
// is identically zero, so a Sin monomial whose multiplier vector is
// all zero never needs storing.
func (m *Monomial) IsIgnorable(term.SymbolSet) bool {
	if m.Flavour != Sin {
		return false
	}
	for _, e := range m.Mult {
		if e != 0 {
			return false
		}
	}
	return true
}

func (m *Monomial) MultiplyArity() int { return 2 }

// canonicalize flips the sign of vec (and reports it did) if its
// leading nonzero entry is negative.
func canonicalize(vec []int32) (out []int32, flipped bool) {
	lead := int32(0)
	for _, v := range vec {
		if v != 0 {
			lead = v
			break
		}
	}
	if lead >= 0 {
		return vec, false
	}
	neg := make([]int32, len(vec))
	for i, v := range vec {
		neg[i] = -v
	}
	return neg, true
}

func canonicalTerm(vec []int32, fl Flavour, coeff float64) term.Term {
	canon, flipped := canonicalize(vec)
	if flipped && fl == Sin {
		coeff = -coeff
	}
	return term.Term{
		Cf:  &Coeff{V: coeff},
		Key: &Monomial{Mult: canon, Flavour: fl},
	}
}

// Multiply implements the product-to-sum identities:
//
//	cos a * cos b = 1/2[cos(a-b) + cos(a+b)]
//	cos a * sin b = 1/2[sin(a+b) - sin(a-b)]
//	sin a * cos b = 1/2[sin(a+b) + sin(a-b)]
//	sin a * sin b = 1/2[cos(a-b) - cos(a+b)]
func (m *Monomial) Multiply(out []term.Term, a, b term.Term, syms term.SymbolSet) error {
	am, ok := a.Key.(*Monomial)
	if !ok {
		return fmt.Errorf("trig: a.Key is %T, not *trig.Monomial", a.Key)
	}
	bm, ok := b.Key.(*Monomial)
	if !ok {
		return fmt.Errorf("trig: b.Key is %T, not *trig.Monomial", b.Key)
	}
	if len(am.Mult) != syms.Len() || len(bm.Mult) != syms.Len() {
		return fmt.Errorf("trig: multiplier vector length does not match symbol set")
	}
	acf, ok := a.Cf.(*Coeff)
	if !ok {
		return fmt.Errorf("trig: a.Cf is %T, not *trig.Coeff", a.Cf)
	}
	bcf, ok := b.Cf.(*Coeff)
	if !ok {
		return fmt.Errorf("trig: b.Cf is %T, not *trig.Coeff", b.Cf)
	}

	sum := make([]int32, len(am.Mult))
	diff := make([]int32, len(am.Mult))
	for i := range sum {
		sum[i] = am.Mult[i] + bm.Mult[i]
		diff[i] = am.Mult[i] - bm.Mult[i]
	}

	half := 0.5 * acf.V * bcf.V

	var t1, t2 term.Term
	switch {
	case am.Flavour == Cos && bm.Flavour == Cos:
		t1 = canonicalTerm(diff, Cos, half)
		t2 = canonicalTerm(sum, Cos, half)
	case am.Flavour == Cos && bm.Flavour == Sin:
		t1 = canonicalTerm(sum, Sin, half)
		t2 = canonicalTerm(diff, Sin, -half)
	case am.Flavour == Sin && bm.Flavour == Cos:
		t1 = canonicalTerm(sum, Sin, half)
		t2 = canonicalTerm(diff, Sin, half)
	default: // Sin, Sin
		t1 = canonicalTerm(diff, Cos, half)
		t2 = canonicalTerm(sum, Cos, -half)
	}
	out[0], out[1] = t1, t2
	return nil
}

// NewTerm builds a single trigonometric term from a coefficient, a
// flavour, and a multiplier per symbol, in symbol-set order. The
// multiplier vector is canonicalized on construction.
func NewTerm(coeff float64, flavour Flavour, multipliers ...int32) term.Term {
	return canonicalTerm(multipliers, flavour, coeff)
}
