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

// Package blockmul implements the single-thread cache-blocked double
// loop over two term arrays (C5): the inner kernel both the
// single-thread path and every worker of the parallel path run.
package blockmul

import "github.com/sneller-algebra/seriesmul/series/term"

// Insert receives one product term. Implementations range from a
// plain Series.Insert (single-thread path) to a spinlock-guarded
// bucket insert/merge (the parallel striped path).
type Insert func(term.Term) error

// Run iterates the rectangle [0,len(v1)) x [0,len(v2)) in blocks of
// blockSize x blockSize, calling a.Key.Multiply for every (i,j) pair
// and passing every resulting product term to insert. The iteration
// visits every (i,j) pair exactly once, and all pairs within one
// block are visited
// before any pair of the next block along the second dimension,
// which keeps repeated access to a V2 sub-slice (re-visited once per
// row of the block) resident in cache. The final partial row/column
// of blocks (when the dimensions aren't multiples of blockSize) is
// handled by dedicated tail loops rather than folded into the main
// loop, to keep the common-case loop body branch-free.
func Run(v1, v2 []term.Term, syms term.SymbolSet, blockSize int, insert Insert) error {
	if blockSize <= 0 {
		blockSize = 1
	}
	n1, n2 := len(v1), len(v2)
	fullBlocks1 := n1 / blockSize
	fullBlocks2 := n2 / blockSize

	for bi := 0; bi < fullBlocks1; bi++ {
		i0, i1 := bi*blockSize, (bi+1)*blockSize
		for bj := 0; bj < fullBlocks2; bj++ {
			j0, j1 := bj*blockSize, (bj+1)*blockSize
			if err := multiplyBlock(v1[i0:i1], v2[j0:j1], syms, insert); err != nil {
				return err
			}
		}
		if tail := v2[fullBlocks2*blockSize:]; len(tail) > 0 {
			if err := multiplyBlock(v1[i0:i1], tail, syms, insert); err != nil {
				return err
			}
		}
	}
	if tail1 := v1[fullBlocks1*blockSize:]; len(tail1) > 0 {
		for bj := 0; bj < fullBlocks2; bj++ {
			j0, j1 := bj*blockSize, (bj+1)*blockSize
			if err := multiplyBlock(tail1, v2[j0:j1], syms, insert); err != nil {
				return err
			}
		}
		if tail2 := v2[fullBlocks2*blockSize:]; len(tail2) > 0 {
			if err := multiplyBlock(tail1, tail2, syms, insert); err != nil {
				return err
			}
		}
	}
	return nil
}

// multiplySegmented is a deliberately unblocked double loop over the
// same rectangle Run covers, kept only as a cross-check oracle for
// tests: it visits every (i,j) pair in plain row-major order instead
// of block order, so a discrepancy between the two against the same
// inputs would point at a block-boundary bug in Run rather than a
// correctness bug in the multiplication itself.
func multiplySegmented(v1, v2 []term.Term, syms term.SymbolSet, insert Insert) error {
	var out [2]term.Term
	for i := range v1 {
		for j := range v2 {
			arity := v1[i].Key.MultiplyArity()
			if err := v1[i].Key.Multiply(out[:arity], v1[i], v2[j], syms); err != nil {
				return err
			}
			for k := 0; k < arity; k++ {
				if err := insert(out[k]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func multiplyBlock(a, b []term.Term, syms term.SymbolSet, insert Insert) error {
	var out [2]term.Term
	for i := range a {
		for j := range b {
			arity := a[i].Key.MultiplyArity()
			if err := a[i].Key.Multiply(out[:arity], a[i], b[j], syms); err != nil {
				return err
			}
			for k := 0; k < arity; k++ {
				if err := insert(out[k]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
