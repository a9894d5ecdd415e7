// limits.go
package monty

import (
	"fmt"
	"time"

	"monty/internal/object"
)

// DefaultMaxRecursionDepth is the frame-stack ceiling applied when a run
// sets no explicit one.
const DefaultMaxRecursionDepth = object.DefaultMaxRecursionDepth

// ResourceLimits bounds one run. Zero values mean unbounded, except
// MaxRecursionDepth where zero selects DefaultMaxRecursionDepth.
type ResourceLimits struct {
	// MaxAllocations caps the number of heap allocations; exceeding it
	// raises MemoryError.
	MaxAllocations int64
	// MaxMemory caps the live heap estimate in bytes; exceeding it
	// raises MemoryError.
	MaxMemory int64
	// MaxDurationSecs is the wall-clock budget from run entry, checked
	// at every evaluator step and loop iteration. Exceeding it raises
	// TimeoutError, the dedicated timeout kind of this implementation.
	MaxDurationSecs float64
	// GCInterval runs the cycle collector every this many allocations.
	GCInterval int64
	// MaxRecursionDepth caps the frame stack; exceeding it raises
	// RecursionError.
	MaxRecursionDepth int
}

// EffectiveMaxRecursionDepth reports the ceiling a run would use.
func (l ResourceLimits) EffectiveMaxRecursionDepth() int {
	if l.MaxRecursionDepth == 0 {
		return DefaultMaxRecursionDepth
	}
	return l.MaxRecursionDepth
}

func (l ResourceLimits) String() string {
	return fmt.Sprintf(
		"ResourceLimits(max_allocations=%v, max_memory=%v, max_duration_secs=%v, gc_interval=%v, max_recursion_depth=%v)",
		l.MaxAllocations, l.MaxMemory, l.MaxDurationSecs, l.GCInterval, l.EffectiveMaxRecursionDepth())
}

func (l ResourceLimits) internal() object.Limits {
	return object.Limits{
		MaxAllocations:    l.MaxAllocations,
		MaxMemory:         l.MaxMemory,
		MaxDuration:       time.Duration(l.MaxDurationSecs * float64(time.Second)),
		GCInterval:        l.GCInterval,
		MaxRecursionDepth: l.MaxRecursionDepth,
	}
}
