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

// Package series implements sparse multivariate series (polynomials
// and trigonometric polynomials) and their multiplication: the CORE
// engine of the library. See SPEC_FULL.md for the full design.
package series

import (
	"golang.org/x/exp/slices"

	"github.com/sneller-algebra/seriesmul/internal/htable"
	"github.com/sneller-algebra/seriesmul/series/term"
)

// Re-exported so callers only need to import this one package for the
// capability interfaces (C3).
type (
	SymbolSet  = term.SymbolSet
	Coeff      = term.Coeff
	Key        = term.Key
	Multiplier = term.Multiplier
	Term       = term.Term
)

var NewSymbolSet = term.NewSymbolSet

// Series is a finite formal sum of terms over a shared symbol set.
// Invariant I1: no two stored terms have equal keys. Invariant I2: no
// stored term is ignorable (term.Key.IsIgnorable(Symbols)).
type Series struct {
	Symbols SymbolSet
	table   *htable.Table
}

// New returns an empty series over the given symbol set.
func New(syms SymbolSet) *Series {
	return &Series{Symbols: syms, table: htable.New(1)}
}

// Len returns the number of distinct terms in the series.
func (s *Series) Len() int {
	if s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Insert adds t to the series, maintaining invariants I1 (coalescing
// equal keys by coefficient accumulation) and I2 (dropping ignorable
// terms). t.Key must be well-formed with respect to s.Symbols
// (t.Key.IsCompatible); a mismatched key (e.g. an exponent vector of
// the wrong arity) is rejected rather than silently stored. It is not
// safe for concurrent use; the parallel multiplier bypasses it and
// drives the underlying table directly under spinlock protection (see
// internal/htable, internal/spinlock).
func (s *Series) Insert(t Term) error {
	if !t.Key.IsCompatible(s.Symbols) {
		return ErrIncompatibleKey
	}
	if t.Key.IsIgnorable(s.Symbols) {
		return nil
	}
	if s.table == nil {
		s.table = htable.New(1)
	}
	if err := s.table.Insert(t); err != nil {
		if err == htable.ErrOutOfMemory {
			return ErrOutOfMemory
		}
		return wrapCoeffErr(err)
	}
	return nil
}

// Each calls fn once per stored term, in unspecified order.
func (s *Series) Each(fn func(Term)) {
	if s.table == nil {
		return
	}
	s.table.All(fn)
}

// Terms returns a snapshot slice of all stored terms, ordered by key
// hash so that two snapshots of an equal series always iterate in the
// same order regardless of bucket-insertion history.
func (s *Series) Terms() []Term {
	out := make([]Term, 0, s.Len())
	s.Each(func(t Term) { out = append(out, t) })
	slices.SortFunc(out, func(a, b Term) bool { return a.Key.Hash() < b.Key.Hash() })
	return out
}

// Table exposes the underlying hash container. It is exported: the
// multiplier drives it directly, and tests use it to look up terms.
func (s *Series) Table() *htable.Table {
	if s.table == nil {
		s.table = htable.New(1)
	}
	return s.table
}
