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

// Package siphashkey provides a single deterministic, well-distributed
// 64-bit hash function for monomial keys, backing the example
// series/poly and series/trig Key implementations' Hash() methods.
package siphashkey

import "github.com/dchest/siphash"

// fixed key: term hashing only needs internal distribution across
// buckets, never cross-process stability, so a constant key is fine.
const (
	k0 = 0x9ae16a3b2f90404f
	k1 = 0xc2b2ae3d27d4eb4f
)

// Hash64 returns a 64-bit siphash of buf.
func Hash64(buf []byte) uint64 {
	lo, _ := siphash.Hash128(k0, k1, buf)
	return lo
}
