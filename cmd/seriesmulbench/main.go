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

// seriesmulbench builds two random sparse polynomial series and times
// their multiplication, reporting the estimator's tracing counters.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sneller-algebra/seriesmul/internal/blockmul"
	"github.com/sneller-algebra/seriesmul/internal/trace"
	"github.com/sneller-algebra/seriesmul/series"
	"github.com/sneller-algebra/seriesmul/series/poly"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func randomSeries(n, nsyms int, maxExp int32, rng *rand.Rand) *series.Series {
	names := make([]string, nsyms)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	s := series.New(series.NewSymbolSet(names...))
	for i := 0; i < n; i++ {
		exps := make([]int32, nsyms)
		for j := range exps {
			exps[j] = int32(rng.Intn(int(maxExp) + 1))
		}
		coeff := int64(rng.Intn(1000) + 1)
		if err := s.Insert(poly.NewTerm(coeff, exps...)); err != nil {
			fatalf("insert: %v", err)
		}
	}
	return s
}

func main() {
	var (
		n1        int
		n2        int
		nsyms     int
		maxExp    int
		blockSize int
		threads   int
	)
	flag.IntVar(&n1, "n1", 2000, "number of terms in the first operand")
	flag.IntVar(&n2, "n2", 2000, "number of terms in the second operand")
	flag.IntVar(&nsyms, "syms", 3, "number of symbols shared by both operands")
	flag.IntVar(&maxExp, "maxexp", 20, "maximum exponent per symbol")
	flag.IntVar(&blockSize, "block", blockmul.DefaultTunables().BlockSize, "multiplication block size")
	flag.IntVar(&threads, "threads", 0, "worker thread ceiling (0 = GOMAXPROCS)")
	flag.Parse()

	rng := rand.New(rand.NewSource(1))
	s1 := randomSeries(n1, nsyms, int32(maxExp), rng)
	s2 := randomSeries(n2, nsyms, int32(maxExp), rng)

	tunables := blockmul.DefaultTunables()
	tunables.BlockSize = blockSize
	if threads > 0 {
		tunables.MaxThreads = threads
	}
	sink := &trace.Sink{}

	start := time.Now()
	result, err := series.Multiply(s1, s2, series.WithTunables(tunables), series.WithTrace(sink))
	elapsed := time.Since(start)
	if err != nil {
		fatalf("multiply: %v", err)
	}

	fmt.Printf("operands:  %d x %d terms, %d symbols\n", s1.Len(), s2.Len(), nsyms)
	fmt.Printf("result:    %d terms\n", result.Len())
	fmt.Printf("elapsed:   %s\n", elapsed)
	if estimates := sink.NumberOfEstimates(); estimates > 0 {
		fmt.Printf("estimates: %d (%d accurate, avg ratio %.3f)\n",
			estimates, sink.NumberOfCorrectEstimates(),
			sink.AccumulatedEstimateRatio()/float64(estimates))
	} else {
		fmt.Println("estimates: none (below the low-work threshold)")
	}
}
