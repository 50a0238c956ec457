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

// Package trace implements the tracing sink (C7): three named counters
// recording how accurate the size estimator (internal/estimator) turns
// out to be, updated after each successful estimate. It is modeled as
// a small thread-safe counter registry rather than a logging
// framework.
package trace

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Sink holds three counters tracking estimator accuracy. The zero
// value is ready to use; ID is assigned lazily on first use so that a
// Sink declared as a struct field still gets a stable identity.
type Sink struct {
	id uuid.UUID

	numberOfEstimates        uint64
	numberOfCorrectEstimates uint64
	accumulatedEstimateRatio float64
}

// ID returns a process-unique identity for this sink, so that several
// concurrently-running multiplications (e.g. a benchmark harness
// driving more than one multiply() at once) can be told apart when
// their counters are reported together.
func (s *Sink) ID() uuid.UUID {
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return s.id
}

// Record updates the counters for one estimate outcome. If real == 0
// nothing is recorded: there is no ratio to compute and no estimate to
// credit or penalize.
func (s *Sink) Record(estimate, real uint64) {
	if real == 0 {
		return
	}
	atomic.AddUint64(&s.numberOfEstimates, 1)
	if estimate >= real {
		atomic.AddUint64(&s.numberOfCorrectEstimates, 1)
	}
	addFloat64(&s.accumulatedEstimateRatio, float64(estimate)/float64(real))
}

// NumberOfEstimates returns the total number of recorded estimates.
func (s *Sink) NumberOfEstimates() uint64 { return atomic.LoadUint64(&s.numberOfEstimates) }

// NumberOfCorrectEstimates returns the number of recorded estimates
// that were >= the true result size.
func (s *Sink) NumberOfCorrectEstimates() uint64 {
	return atomic.LoadUint64(&s.numberOfCorrectEstimates)
}

// AccumulatedEstimateRatio returns the running sum of estimate/real
// across every recorded estimate.
func (s *Sink) AccumulatedEstimateRatio() float64 {
	return loadFloat64(&s.accumulatedEstimateRatio)
}
