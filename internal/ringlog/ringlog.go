// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ringlog keeps the most recent entries of a stream together with a
// lifetime count of everything pushed.
package ringlog

// Log is a fixed-capacity FIFO. Once full, each push evicts the oldest entry.
// A capacity <= 0 means the log never evicts.
//
// Log is not safe for concurrent use.
type Log[T any] struct {
	capacity int
	count    int
	head     int
	data     []T
}

// New returns an empty log holding at most capacity entries.
func New[T any](capacity int) *Log[T] {
	l := &Log[T]{capacity: capacity}
	if capacity > 0 {
		l.data = make([]T, 0, capacity)
	}
	return l
}

// Push appends v. When the log is full the oldest entry is removed and
// returned with ok set.
func (l *Log[T]) Push(v T) (evicted T, ok bool) {
	l.count++
	if l.capacity <= 0 || len(l.data) < l.capacity {
		l.data = append(l.data, v)
		return evicted, false
	}
	evicted = l.data[l.head]
	l.data[l.head] = v
	l.head = (l.head + 1) % l.capacity
	return evicted, true
}

// Len returns the number of retained entries.
func (l *Log[T]) Len() int { return len(l.data) }

// Cap returns the capacity the log was created with.
func (l *Log[T]) Cap() int { return l.capacity }

// Count returns how many entries were ever pushed.
func (l *Log[T]) Count() int { return l.count }

// Full reports whether the next push evicts.
func (l *Log[T]) Full() bool { return l.capacity > 0 && len(l.data) == l.capacity }

// At returns the i-th retained entry, oldest first. It panics if i is out of
// range.
func (l *Log[T]) At(i int) T {
	if i < 0 || i >= len(l.data) {
		panic("ringlog: index out of range")
	}
	if l.capacity <= 0 {
		return l.data[i]
	}
	return l.data[(l.head+i)%len(l.data)]
}

// Items returns a copy of the retained entries, oldest first.
func (l *Log[T]) Items() []T {
	out := make([]T, len(l.data))
	for i := range out {
		out[i] = l.At(i)
	}
	return out
}
