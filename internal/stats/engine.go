// Package stats implements the per-symbol streaming statistics engine:
// a lock-free, single-writer/multi-reader publication of min, max,
// running mean, and a fixed-window simple moving average.
package stats

import (
	"errors"
	"sync/atomic"
)

// ErrInvalidWindow is returned by Split when the SMA window size is not
// strictly positive.
var ErrInvalidWindow = errors.New("stats: window size must be > 0")

// Record is the published scalar aggregate. All five fields come from the
// same write — readers never observe a torn mix of two updates.
type Record struct {
	Min       float64
	Max       float64
	CurrAvg   float64
	SMA       float64
	DataPoint uint64
}

// engine holds the shared state behind a Reader/Writer pair. It is never
// exposed directly; callers only ever see *Reader and *Writer.
type engine struct {
	slots  [2]Record
	active atomic.Int32 // index (0 or 1) of the slot safe to read

	n      int       // SMA window size, fixed at construction
	ring   []float64 // circular buffer of the last n observations
	cursor uint64    // writer-private, monotonically increasing
	sma    float64   // writer-private running SMA value
}

// noCopy causes `go vet` to flag accidental copies of a Writer once it has
// been used (e.g. passed by value instead of by pointer).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Writer is the unique capability to advance an engine. It must never be
// duplicated: construct exactly one per Split call and move it into the
// single goroutine that owns it (see internal/poller).
type Writer struct {
	_ noCopy
	e *engine
}

// Reader is a freely cloneable capability to observe the most recently
// published Record. Any number of readers may call Read concurrently with
// each other and with the engine's single Writer.
type Reader struct {
	e *engine
}

// Split constructs a new engine and returns its reader/writer pair. n is the
// SMA window size and must be strictly positive. seed initializes every
// field of the first Record and pre-fills every ring slot, so the very
// first real observation produces a correct SMA without transient state.
func Split(n int, seed float64) (*Reader, *Writer, error) {
	if n <= 0 {
		return nil, nil, ErrInvalidWindow
	}

	ring := make([]float64, n)
	for i := range ring {
		ring[i] = seed
	}

	e := &engine{
		n:    n,
		ring: ring,
		sma:  seed,
	}

	initial := Record{Min: seed, Max: seed, CurrAvg: seed, SMA: seed, DataPoint: 1}
	e.slots[0] = initial
	e.slots[1] = initial
	e.active.Store(0)

	return &Reader{e: e}, &Writer{e: e}, nil
}

// Clone returns an independent handle observing the same underlying engine.
// Reader is already safe to share across goroutines as-is; Clone exists so
// callers can hand out distinct values (e.g. one per subscriber) without
// reasoning about aliasing.
func (r *Reader) Clone() *Reader {
	return &Reader{e: r.e}
}

// Read returns a consistent snapshot of the latest published Record.
// Lock-free: a single atomic load selects the slot, then the 40-byte
// Record is copied out. Safe to call from arbitrarily many goroutines
// concurrently with Write and with other Reads.
func (r *Reader) Read() Record {
	idx := r.e.active.Load()
	return r.e.slots[idx]
}

// Write appends one observation. Must be called by at most one goroutine
// across the engine's lifetime — the Writer handle's uniqueness is what
// makes that safe. O(1) in the window size, never blocks.
func (w *Writer) Write(x float64) {
	e := w.e

	i := e.active.Load()
	prior := e.slots[i]

	newMin := prior.Min
	if x < newMin {
		newMin = x
	}
	newMax := prior.Max
	if x > newMax {
		newMax = x
	}
	newCount := prior.DataPoint + 1

	// Numerically stable streaming mean: avg += (x - avg) / n.
	newAvg := prior.CurrAvg + (x-prior.CurrAvg)/float64(newCount)

	// O(1) SMA update via the circular buffer: pop the value falling out
	// of the window, push x in its place, adjust the running sum.
	b := bound(e.cursor, uint64(e.n))
	e.cursor = b + 1
	popped := e.ring[b]
	e.ring[b] = x
	e.sma = e.sma - popped/float64(e.n) + x/float64(e.n)

	next := Record{
		Min:       newMin,
		Max:       newMax,
		CurrAvg:   newAvg,
		SMA:       e.sma,
		DataPoint: newCount,
	}

	// Publish into the inactive slot, then flip the index. No reader ever
	// observes `next` until the Store below, so mutating it here is safe
	// even though the slot array is shared.
	other := int32(1) - i
	e.slots[other] = next
	e.active.Store(other)
}

// bound returns idx when idx < n, else 0. Not a modulus: it resets rather
// than wraps around. Expressed as a mask-and rather than returning idx or 0
// directly so the only branch is the mask selection, not the ring index
// itself.
func bound(idx, n uint64) uint64 {
	mask := uint64(0)
	if idx < n {
		mask = ^uint64(0)
	}
	return idx & mask
}
