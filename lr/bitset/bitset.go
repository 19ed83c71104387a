/*
Package bitset implements small sets of non-negative integers, backed by
bit vectors. It is used for terminal/lookahead sets during grammar analysis
and LR(1) table construction, where set union and structural equality are
the dominant operations.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bitset

import (
	"bytes"
	"fmt"
	"math/bits"
)

const wordSize = 64

// Set is a set of small non-negative integers. The zero value is unusable;
// create sets with New.
type Set struct {
	words []uint64
}

// New creates an empty set, pre-sized for members up to capacity-1.
func New(capacity int) *Set {
	if capacity < wordSize {
		capacity = wordSize
	}
	return &Set{words: make([]uint64, (capacity+wordSize-1)/wordSize)}
}

func (s *Set) grow(n int) {
	need := n/wordSize + 1
	for len(s.words) < need {
		s.words = append(s.words, 0)
	}
}

// Add includes n in the set. It returns true if n was not yet a member.
func (s *Set) Add(n int) bool {
	if n < 0 {
		panic(fmt.Sprintf("bitset: cannot add negative member %d", n))
	}
	s.grow(n)
	w, b := n/wordSize, uint(n%wordSize)
	if s.words[w]&(1<<b) != 0 {
		return false
	}
	s.words[w] |= 1 << b
	return true
}

// Has checks n for membership.
func (s *Set) Has(n int) bool {
	if n < 0 || n/wordSize >= len(s.words) {
		return false
	}
	return s.words[n/wordSize]&(1<<uint(n%wordSize)) != 0
}

// Union includes all members of other. It returns true if the set grew.
func (s *Set) Union(other *Set) bool {
	if other == nil {
		return false
	}
	changed := false
	for i, w := range other.words {
		if w == 0 {
			continue
		}
		s.grow(i * wordSize)
		if s.words[i]|w != s.words[i] {
			s.words[i] |= w
			changed = true
		}
	}
	return changed
}

// Equals compares two sets for equal membership.
func (s *Set) Equals(other *Set) bool {
	long, short := s.words, other.words
	if len(short) > len(long) {
		long, short = short, long
	}
	for i, w := range long {
		if i < len(short) {
			if w != short[i] {
				return false
			}
		} else if w != 0 {
			return false
		}
	}
	return true
}

// Empty is true if the set has no members.
func (s *Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Size returns the number of members.
func (s *Set) Size() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Copy returns an independent copy of the set.
func (s *Set) Copy() *Set {
	c := &Set{words: make([]uint64, len(s.words))}
	copy(c.words, s.words)
	return c
}

// Values returns all members in ascending order.
func (s *Set) Values() []int {
	vals := make([]int, 0, s.Size())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			vals = append(vals, i*wordSize+b)
			w &^= 1 << uint(b)
		}
	}
	return vals
}

func (s *Set) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	for i, v := range s.Values() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString("}")
	return b.String()
}
