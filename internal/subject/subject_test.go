package subject

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, size := range []int{0, 1, 5, 1000} {
		s := New(size, Identity)
		require.Len(t, s.Elements, size)
		for i, v := range s.Elements {
			assert.Equal(t, uint64(i), v)
		}
	}
}

func TestNewNegativeSize(t *testing.T) {
	s := New(-3, Identity)
	assert.NotNil(t, s.Elements)
	assert.Equal(t, 0, s.Len())
}

func TestNewFieldElements(t *testing.T) {
	s := New(64, FieldElement)
	require.Equal(t, 64, s.Len())

	var one fp.Element
	one.SetOne()
	assert.True(t, s.Elements[0].IsZero())
	assert.True(t, s.Elements[1].Equal(&one))

	// element i+1 == element i + 1
	for i := 1; i < s.Len(); i++ {
		var next fp.Element
		next.Add(&s.Elements[i-1], &one)
		assert.True(t, next.Equal(&s.Elements[i]), "index %d", i)
	}
	assert.Equal(t, uint64(63), s.Elements[63].Uint64())
}

func TestClone(t *testing.T) {
	s := New(5, Identity)

	cloned := s.Clone()
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, cloned)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, s.Elements)

	cloned[0] = 42
	assert.Equal(t, uint64(0), s.Elements[0], "clone must not share the source buffer")
}

func TestCloneFieldElements(t *testing.T) {
	s := New(16, FieldElement)
	before := append([]fp.Element(nil), s.Elements...)

	cloned := s.Clone()
	require.Len(t, cloned, 16)
	for i := range cloned {
		assert.True(t, cloned[i].Equal(&before[i]))
	}
	assert.Equal(t, before, s.Elements)
}

func TestTake(t *testing.T) {
	s := New(5, Identity)

	taken := s.Take()
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, taken)
	assert.Empty(t, s.Elements)
	assert.Equal(t, 0, s.Len())
}

func TestTakeAfterClone(t *testing.T) {
	s := New(5, Identity)

	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, s.Clone())
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, s.Take())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []uint64{}, s.Clone())
}

func TestTakeIdempotent(t *testing.T) {
	s := New(3, Identity)
	require.Len(t, s.Take(), 3)

	for range 3 {
		again := s.Take()
		assert.NotNil(t, again)
		assert.Empty(t, again)
		assert.Equal(t, 0, s.Len())
	}
}

func TestTakeMovesBuffer(t *testing.T) {
	s := New(8, Identity)
	first := &s.Elements[0]

	taken := s.Take()
	assert.Same(t, first, &taken[0])
}

func TestTakeDoesNotAllocate(t *testing.T) {
	for _, size := range []int{1 << 4, 1 << 16} {
		s := New(size, Identity)
		allocs := testing.AllocsPerRun(100, func() {
			s.Elements = s.Take()
		})
		assert.Zero(t, allocs, "size %d", size)
	}
}

func TestCloneAllocatesOnce(t *testing.T) {
	s := New(1<<10, Identity)
	var sink []uint64
	allocs := testing.AllocsPerRun(100, func() {
		sink = s.Clone()
	})
	assert.Equal(t, 1.0, allocs)
	assert.Len(t, sink, 1<<10)
}

func TestCostOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("timing check")
	}

	clone := func(size int) testing.BenchmarkResult {
		s := New(size, Identity)
		return testing.Benchmark(func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = s.Clone()
			}
		})
	}
	take := func(size int) testing.BenchmarkResult {
		s := New(size, Identity)
		return testing.Benchmark(func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s.Elements = s.Take()
			}
		})
	}

	small, large := 1<<12, 1<<20

	cloneSmall, cloneLarge := clone(small), clone(large)
	assert.GreaterOrEqual(t, cloneSmall.AllocedBytesPerOp(), int64(small*8))
	assert.GreaterOrEqual(t, cloneLarge.AllocedBytesPerOp(), int64(large*8))
	assert.Greater(t, cloneLarge.NsPerOp(), cloneSmall.NsPerOp())

	takeSmall, takeLarge := take(small), take(large)
	assert.Zero(t, takeSmall.AllocedBytesPerOp())
	assert.Zero(t, takeLarge.AllocedBytesPerOp())
	assert.Less(t, takeLarge.NsPerOp(), cloneLarge.NsPerOp())
}
