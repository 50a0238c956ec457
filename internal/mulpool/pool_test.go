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

package mulpool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestEnqueueRunsAllTasks(t *testing.T) {
	p := New(4)
	defer p.Close()

	var count int64
	handles := make([]*Handle, 0, 20)
	for i := 0; i < 20; i++ {
		handles = append(handles, p.Enqueue(i, func(int) error {
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}
	for _, h := range handles {
		if err := h.Wait(); err != nil {
			t.Fatal(err)
		}
	}
	if count != 20 {
		t.Fatalf("expected 20 tasks to run, got %d", count)
	}
}

func TestWaitPropagatesError(t *testing.T) {
	p := New(2)
	defer p.Close()
	want := errors.New("boom")
	h := p.Enqueue(0, func(int) error { return want })
	if err := h.Wait(); err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestWaitPropagatesPanic(t *testing.T) {
	p := New(1)
	defer p.Close()
	h := p.Enqueue(0, func(int) error { panic("oh no") })
	if err := h.Wait(); err == nil {
		t.Fatal("expected a panic to surface as an error")
	}
}

func TestRecommendClampsToPoolSize(t *testing.T) {
	p := New(4)
	defer p.Close()
	if got := p.Recommend(1_000_000, 1); got != 4 {
		t.Fatalf("expected clamp to pool size 4, got %d", got)
	}
	if got := p.Recommend(1, 1000); got != 1 {
		t.Fatalf("expected a floor of 1, got %d", got)
	}
}

func TestNewPanicsOnNonPositiveSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected New(0) to panic")
		}
	}()
	New(0)
}
