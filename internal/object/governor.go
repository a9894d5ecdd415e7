// internal/object/governor.go
package object

import (
	"time"

	"github.com/dustin/go-humanize"

	"monty/internal/errors"
)

// Limits is the resource configuration one run executes under. Zero
// values mean unbounded, except MaxRecursionDepth which defaults to
// DefaultMaxRecursionDepth.
type Limits struct {
	MaxAllocations    int64
	MaxMemory         int64
	MaxDuration       time.Duration
	GCInterval        int64
	MaxRecursionDepth int
}

// DefaultMaxRecursionDepth bounds the frame stack when the host sets no
// explicit ceiling.
const DefaultMaxRecursionDepth = 1000

// Governor enforces the limits. It is consulted on every allocation,
// every frame push and every evaluator step; the common case is a couple
// of integer comparisons.
type Governor struct {
	maxAllocations int64
	maxMemory      int64
	gcInterval     int64
	maxDepth       int
	deadline       time.Time
	hasDeadline    bool

	allocations int64
	sinceGC     int64
	liveBytes   int64
	liveCells   int
	depth       int
}

// NewGovernor starts the wall clock and freezes the configured ceilings.
func NewGovernor(limits Limits) *Governor {
	g := &Governor{
		maxAllocations: limits.MaxAllocations,
		maxMemory:      limits.MaxMemory,
		gcInterval:     limits.GCInterval,
		maxDepth:       limits.MaxRecursionDepth,
	}
	if g.maxDepth == 0 {
		g.maxDepth = DefaultMaxRecursionDepth
	}
	if limits.MaxDuration > 0 {
		g.deadline = time.Now().Add(limits.MaxDuration)
		g.hasDeadline = true
	}
	return g
}

// Allocation records one heap cell of the given size estimate and checks
// the allocation and memory ceilings.
func (g *Governor) Allocation(size int64) error {
	g.allocations++
	g.sinceGC++
	g.liveBytes += size
	g.liveCells++
	if g.maxAllocations > 0 && g.allocations > g.maxAllocations {
		return errors.New(errors.MemoryError, "allocation limit exceeded: %d allocations", g.allocations)
	}
	if g.maxMemory > 0 && g.liveBytes > g.maxMemory {
		return errors.New(errors.MemoryError, "memory limit exceeded: %s live of %s allowed",
			humanize.IBytes(uint64(g.liveBytes)), humanize.IBytes(uint64(g.maxMemory)))
	}
	return nil
}

// Resize adjusts the live byte estimate when a cell grows or shrinks.
func (g *Governor) Resize(delta int64) error {
	g.liveBytes += delta
	if delta > 0 && g.maxMemory > 0 && g.liveBytes > g.maxMemory {
		return errors.New(errors.MemoryError, "memory limit exceeded: %s live of %s allowed",
			humanize.IBytes(uint64(g.liveBytes)), humanize.IBytes(uint64(g.maxMemory)))
	}
	return nil
}

// Free returns a destroyed cell's estimate to the budget.
func (g *Governor) Free(size int64) {
	g.liveBytes -= size
	g.liveCells--
}

// Tick is the per-step wall-clock check.
func (g *Governor) Tick() error {
	if g.hasDeadline && time.Now().After(g.deadline) {
		return errors.New(errors.TimeoutError, "execution time limit exceeded")
	}
	return nil
}

// PushFrame checks the recursion ceiling for one more activation.
func (g *Governor) PushFrame() error {
	g.depth++
	if g.depth > g.maxDepth {
		return errors.New(errors.RecursionError, "maximum recursion depth exceeded")
	}
	return nil
}

// PopFrame undoes PushFrame.
func (g *Governor) PopFrame() {
	g.depth--
}

// NeedsCollection reports whether enough allocations have happened since
// the last cycle collection.
func (g *Governor) NeedsCollection() bool {
	return g.gcInterval > 0 && g.sinceGC >= g.gcInterval
}

// CollectionRan resets the allocation-since-GC counter.
func (g *Governor) CollectionRan() {
	g.sinceGC = 0
}

// Allocations reports the monotonic allocation count.
func (g *Governor) Allocations() int64 { return g.allocations }

// LiveBytes reports the current live heap estimate.
func (g *Governor) LiveBytes() int64 { return g.liveBytes }
