// Package fieldvec compares cloning and taking a vector of BLS12-381
// base-field elements. Both scenarios share one subject built up front.
package fieldvec

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"

	"movebench/internal/harness"
	"movebench/internal/subject"
)

const size = subject.SmallSize

func BenchmarkFieldVec(b *testing.B) {
	s := subject.New(size, subject.FieldElement)

	harness.Run(b, "clone_vector", func() {
		harness.BlackBox(s.Clone())
	}, harness.WithBytes(size*fp.Bytes))

	harness.Run(b, "take_vector", func() {
		taken := s.Take()
		harness.BlackBox(taken)
		// Hand the buffer back so every iteration moves a full vector.
		s.Elements = taken
	})
}
