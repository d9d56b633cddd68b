// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bitset provides a fixed-capacity bit set sized by an unsigned word.
package bitset

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Set is a set of small indices backed by a single word W. Its capacity is
// fixed at construction and never exceeds the width of W.
type Set[W constraints.Unsigned] struct {
	word W
	cap  int
}

// Width returns the number of bits in W.
func Width[W constraints.Unsigned]() int {
	return bits.Len64(uint64(^W(0)))
}

// New returns an empty set holding indices in [0, capacity). It panics if
// capacity does not fit W.
func New[W constraints.Unsigned](capacity int) Set[W] {
	if capacity < 0 || capacity > Width[W]() {
		panic(fmt.Sprintf("bitset: capacity %d out of range [0, %d]", capacity, Width[W]()))
	}
	return Set[W]{cap: capacity}
}

// Cap returns the capacity of s.
func (s Set[W]) Cap() int { return s.cap }

// Has reports whether i is in s. Out-of-range indices are never members.
func (s Set[W]) Has(i int) bool {
	if i < 0 || i >= s.cap {
		return false
	}
	return s.word&(W(1)<<uint(i)) != 0
}

// Add inserts i and reports whether it was in range.
func (s *Set[W]) Add(i int) bool {
	if i < 0 || i >= s.cap {
		return false
	}
	s.word |= W(1) << uint(i)
	return true
}

// AddRange inserts [first, last], ignoring indices out of range. It reports
// whether every index fit.
func (s *Set[W]) AddRange(first, last int) bool {
	ok := first >= 0 && last < s.cap
	for i := max(first, 0); i <= last && i < s.cap; i++ {
		s.word |= W(1) << uint(i)
	}
	return ok
}

// Remove deletes i.
func (s *Set[W]) Remove(i int) {
	if i >= 0 && i < s.cap {
		s.word &^= W(1) << uint(i)
	}
}

// Len returns the number of members.
func (s Set[W]) Len() int { return bits.OnesCount64(uint64(s.word)) }

// FirstClear returns the lowest index not in s.
func (s Set[W]) FirstClear() (int, bool) {
	i := bits.TrailingZeros64(^uint64(s.word))
	if i >= s.cap {
		return 0, false
	}
	return i, true
}

// Take finds the lowest clear index, adds it and returns it.
func (s *Set[W]) Take() (int, bool) {
	i, ok := s.FirstClear()
	if ok {
		s.Add(i)
	}
	return i, ok
}
