// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ringlog

import "testing"

func TestPushBeyondCapacity(t *testing.T) {
	const c = 4
	l := New[int](c)
	for i := 0; i < c; i++ {
		if _, ok := l.Push(i); ok {
			t.Fatalf("push %d evicted before the log was full", i)
		}
	}
	evicted, ok := l.Push(c)
	if !ok || evicted != 0 {
		t.Fatalf("push %d: evicted=%d ok=%v, want 0 true", c, evicted, ok)
	}
	if l.Len() != c {
		t.Errorf("Len = %d, want %d", l.Len(), c)
	}
	if l.Count() != c+1 {
		t.Errorf("Count = %d, want %d", l.Count(), c+1)
	}
	got := l.Items()
	for i, v := range got {
		if v != i+1 {
			t.Errorf("Items()[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestWrapsManyTimes(t *testing.T) {
	l := New[int](3)
	for i := 0; i < 100; i++ {
		l.Push(i)
		if l.Len() > l.Cap() {
			t.Fatalf("Len %d exceeds Cap %d", l.Len(), l.Cap())
		}
	}
	want := []int{97, 98, 99}
	for i, w := range want {
		if got := l.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
	if l.Count() != 100 {
		t.Errorf("Count = %d, want 100", l.Count())
	}
	if !l.Full() {
		t.Error("expected Full")
	}
}

func TestUnbounded(t *testing.T) {
	l := New[string](0)
	for _, s := range []string{"a", "b", "c"} {
		if _, ok := l.Push(s); ok {
			t.Fatalf("unbounded log evicted on %q", s)
		}
	}
	if l.Len() != 3 || l.Count() != 3 || l.Full() {
		t.Errorf("Len=%d Count=%d Full=%v", l.Len(), l.Count(), l.Full())
	}
	if l.At(2) != "c" {
		t.Errorf("At(2) = %q", l.At(2))
	}
}

func TestEmpty(t *testing.T) {
	l := New[int](2)
	if l.Len() != 0 || l.Count() != 0 || len(l.Items()) != 0 {
		t.Errorf("new log not empty")
	}
}
