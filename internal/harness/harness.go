// Package harness registers timed scenarios with testing.B.
//
// Run times a body against state built once by the caller. RunBatched builds
// a fresh input for every measured call and keeps that setup, and the
// release of the outputs, outside the timed region.
package harness

import (
	"runtime"
	"testing"
)

// BatchSize tells RunBatched how many inputs to prepare ahead of timing.
type BatchSize int

const (
	// SmallInput prepares ten batches per run. Suitable when inputs are
	// cheap to keep around.
	SmallInput BatchSize = iota
	// LargeInput prepares a thousand batches per run, so at most a handful of
	// inputs are alive at once.
	LargeInput
	// PerIteration prepares one input per batch.
	PerIteration
)

func (s BatchSize) String() string {
	switch s {
	case SmallInput:
		return "SmallInput"
	case LargeInput:
		return "LargeInput"
	case PerIteration:
		return "PerIteration"
	}
	return "BatchSize(?)"
}

// itersPerBatch returns the number of inputs prepared per batch for n
// measured iterations.
func (s BatchSize) itersPerBatch(n int) int {
	var batches int
	switch s {
	case SmallInput:
		batches = 10
	case LargeInput:
		batches = 1000
	default:
		return 1
	}
	return max((n+batches-1)/batches, 1)
}

// Option adjusts a registered scenario.
type Option func(b *testing.B)

// WithBytes reports throughput as n bytes processed per call.
func WithBytes(n int64) Option {
	return func(b *testing.B) {
		b.SetBytes(n)
	}
}

// BlackBox keeps v alive so the work producing it cannot be discarded.
//
//go:noinline
func BlackBox[T any](v T) {
	runtime.KeepAlive(v)
}

// Run registers name as a sub-benchmark calling body b.N times.
func Run(b *testing.B, name string, body func(), opts ...Option) bool {
	return b.Run(name, func(b *testing.B) {
		b.ReportAllocs()
		for _, opt := range opts {
			opt(b)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			body()
		}
	})
}

// RunBatched registers name as a sub-benchmark timing routine on inputs
// produced by setup. Each input is handed to routine exactly once.
func RunBatched[I, O any](b *testing.B, name string, setup func() I, routine func(I) O, size BatchSize, opts ...Option) bool {
	return b.Run(name, func(b *testing.B) {
		b.ReportAllocs()
		for _, opt := range opts {
			opt(b)
		}
		batch := size.itersPerBatch(b.N)
		inputs := make([]I, 0, batch)
		outputs := make([]O, 0, batch)

		b.ResetTimer()
		for done := 0; done < b.N; {
			b.StopTimer()
			k := min(batch, b.N-done)
			BlackBox(outputs)
			clear(inputs)
			clear(outputs)
			inputs, outputs = inputs[:0], outputs[:0]
			for range k {
				inputs = append(inputs, setup())
			}
			b.StartTimer()

			for _, in := range inputs {
				outputs = append(outputs, routine(in))
			}
			done += k
		}
		b.StopTimer()
		BlackBox(outputs)
		clear(inputs)
		clear(outputs)
	})
}
