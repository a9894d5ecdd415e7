package object

import (
	"testing"
	"time"

	"monty/internal/errors"
)

func TestAllocationCeiling(t *testing.T) {
	s := NewStore(NewGovernor(Limits{MaxAllocations: 3}))
	var last error
	for i := 0; i < 5; i++ {
		_, err := s.NewList(nil)
		last = err
		if err != nil {
			break
		}
	}
	if last == nil {
		t.Fatal("expected MemoryError after exceeding the allocation budget")
	}
	if errors.KindOf(last) != errors.MemoryError {
		t.Fatalf("kind = %s, want MemoryError", errors.KindOf(last))
	}
}

func TestMemoryCeiling(t *testing.T) {
	s := NewStore(NewGovernor(Limits{MaxMemory: 100}))
	_, err := s.HeapStr(string(make([]byte, 200)))
	if err == nil {
		t.Fatal("expected MemoryError for an oversized allocation")
	}
	if errors.KindOf(err) != errors.MemoryError {
		t.Fatalf("kind = %s, want MemoryError", errors.KindOf(err))
	}
}

func TestRecursionCeiling(t *testing.T) {
	g := NewGovernor(Limits{MaxRecursionDepth: 2})
	if err := g.PushFrame(); err != nil {
		t.Fatalf("depth 1: %v", err)
	}
	if err := g.PushFrame(); err != nil {
		t.Fatalf("depth 2: %v", err)
	}
	err := g.PushFrame()
	if err == nil {
		t.Fatal("expected RecursionError at depth 3")
	}
	if errors.KindOf(err) != errors.RecursionError {
		t.Fatalf("kind = %s, want RecursionError", errors.KindOf(err))
	}
	g.PopFrame()
	g.PopFrame()
	g.PopFrame()
}

func TestDefaultRecursionDepth(t *testing.T) {
	g := NewGovernor(Limits{})
	for i := 0; i < DefaultMaxRecursionDepth; i++ {
		if err := g.PushFrame(); err != nil {
			t.Fatalf("unexpected error at depth %d: %v", i+1, err)
		}
	}
	if err := g.PushFrame(); err == nil {
		t.Fatal("expected RecursionError past the default depth")
	}
}

func TestWallClock(t *testing.T) {
	g := NewGovernor(Limits{MaxDuration: time.Millisecond})
	if err := g.Tick(); err != nil {
		t.Fatalf("immediate tick should pass: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	err := g.Tick()
	if err == nil {
		t.Fatal("expected TimeoutError after the deadline")
	}
	if errors.KindOf(err) != errors.TimeoutError {
		t.Fatalf("kind = %s, want TimeoutError", errors.KindOf(err))
	}
}

func TestFreeReturnsBudget(t *testing.T) {
	s := NewStore(NewGovernor(Limits{MaxMemory: 400}))
	for i := 0; i < 20; i++ {
		v, err := s.HeapStr(string(make([]byte, 200)))
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		s.Release(v)
	}
}
