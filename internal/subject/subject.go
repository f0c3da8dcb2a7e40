// Package subject holds the structs whose element buffers are extracted by
// the clone_vector and take_vector benchmarks.
package subject

import (
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

const (
	SmallSize = 1 << 20
	LargeSize = 1 << 24
)

// Encoder maps an index to the element stored at that index.
type Encoder[E any] func(i int) E

// Subject owns a large ordered sequence of elements.
type Subject[E any] struct {
	Elements []E
}

// New builds a subject with size elements, element i being enc(i).
// A negative size yields an empty subject.
func New[E any](size int, enc Encoder[E]) *Subject[E] {
	size = max(size, 0)
	elements := make([]E, size)
	for i := range elements {
		elements[i] = enc(i)
	}
	return &Subject[E]{Elements: elements}
}

// Clone returns a copy of the elements. The source is left unchanged and the
// result never shares its backing array.
func (s *Subject[E]) Clone() []E {
	if s.Elements == nil {
		return []E{}
	}
	return slices.Clone(s.Elements)
}

// Take moves the elements out and leaves an empty sequence behind.
// It does not touch the elements themselves and runs in constant time.
func (s *Subject[E]) Take() []E {
	taken := s.Elements
	s.Elements = nil
	if taken == nil {
		return []E{}
	}
	return taken
}

func (s *Subject[E]) Len() int {
	return len(s.Elements)
}

// Identity encodes i as itself.
func Identity(i int) uint64 {
	return uint64(i)
}

// FieldElement encodes i as an element of the BLS12-381 base field.
func FieldElement(i int) fp.Element {
	var e fp.Element
	e.SetUint64(uint64(i))
	return e
}
