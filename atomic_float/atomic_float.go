package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 supporting lock-free reads, writes and additions, for
// counters shared by concurrent request handlers. The value is held as its IEEE-754
// bits in an atomic.Uint64, so no unsafe pointer casts are needed.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd attempts a single compare-and-swap of the current value plus addend.
// If the value changed between the read and the swap, succeeded is false and nothing
// is written; the caller decides whether to retry, recalculate or drop the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// Add adds addend, retrying until no concurrent writer interferes, and returns the new value.
func (af *AtomicFloat64) Add(addend float64) float64 {
	for {
		if newVal, ok := af.AtomicAdd(addend); ok {
			return newVal
		}
	}
}

// AtomicSet overwrites the value.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}
