package object

import (
	"testing"
)

func mustEq(t *testing.T, s *Store, a, b Value, want bool) {
	t.Helper()
	got, err := s.DeepEquals(a, b)
	if err != nil {
		t.Fatalf("DeepEquals: %v", err)
	}
	if got != want {
		t.Fatalf("DeepEquals(%s, %s) = %v, want %v", s.Repr(a), s.Repr(b), got, want)
	}
}

func TestNumericEquality(t *testing.T) {
	s := newTestStore()
	mustEq(t, s, Int(1), Int(1), true)
	mustEq(t, s, Int(1), Float(1.0), true)
	mustEq(t, s, Bool(true), Int(1), true)
	mustEq(t, s, Bool(false), Int(0), true)
	mustEq(t, s, Bool(true), Float(1.0), true)
	mustEq(t, s, Int(1), Int(2), false)
	mustEq(t, s, None(), None(), true)
	mustEq(t, s, None(), Int(0), false)
}

func TestContainerEquality(t *testing.T) {
	s := newTestStore()
	a, _ := s.NewList([]Value{Int(1), Int(2)})
	b, _ := s.NewList([]Value{Int(1), Float(2.0)})
	c, _ := s.NewList([]Value{Int(1)})
	mustEq(t, s, a, b, true)
	mustEq(t, s, a, c, false)
	tup, _ := s.NewTuple([]Value{Int(1), Int(2)})
	mustEq(t, s, a, tup, false)
	s.Release(a)
	s.Release(b)
	s.Release(c)
	s.Release(tup)
}

// a == b must imply hash(a) == hash(b), including across numeric kinds.
func TestHashEqualityConsistency(t *testing.T) {
	s := newTestStore()
	pairs := [][2]Value{
		{Int(1), Float(1.0)},
		{Int(1), Bool(true)},
		{Int(0), Bool(false)},
		{Int(42), Int(42)},
	}
	for _, p := range pairs {
		h1, err := s.Hash(p[0])
		if err != nil {
			t.Fatalf("Hash: %v", err)
		}
		h2, err := s.Hash(p[1])
		if err != nil {
			t.Fatalf("Hash: %v", err)
		}
		if h1 != h2 {
			t.Errorf("hash(%s) != hash(%s)", s.Repr(p[0]), s.Repr(p[1]))
		}
	}
}

func TestHashTupleOfHashables(t *testing.T) {
	s := newTestStore()
	a, _ := s.NewTuple([]Value{Int(1), Int(2)})
	b, _ := s.NewTuple([]Value{Int(1), Float(2.0)})
	ha, err := s.Hash(a)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	hb, err := s.Hash(b)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ha != hb {
		t.Error("equal tuples must hash equal")
	}
	s.Release(a)
	s.Release(b)
}

func TestUnhashable(t *testing.T) {
	s := newTestStore()
	l, _ := s.NewList(nil)
	if _, err := s.Hash(l); err == nil {
		t.Fatal("lists must be unhashable")
	}
	wrapped, _ := s.NewTuple([]Value{l})
	if _, err := s.Hash(wrapped); err == nil {
		t.Fatal("a tuple holding a list must be unhashable")
	}
	s.Release(l)
	s.Release(wrapped)
}

func TestCompareOrdering(t *testing.T) {
	s := newTestStore()
	lt := func(a, b Value) {
		t.Helper()
		c, err := s.Compare(a, b)
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if c >= 0 {
			t.Fatalf("Compare(%s, %s) = %d, want < 0", s.Repr(a), s.Repr(b), c)
		}
	}
	lt(Int(1), Int(2))
	lt(Float(1.5), Int(2))
	lt(Bool(false), Bool(true))
	sa, _ := s.NewStr("abc")
	sb, _ := s.NewStr("abd")
	lt(sa, sb)
	la, _ := s.NewList([]Value{Int(1), Int(2)})
	lb, _ := s.NewList([]Value{Int(1), Int(3)})
	lt(la, lb)
	s.Release(la)
	s.Release(lb)

	if _, err := s.Compare(Int(1), sa); err == nil {
		t.Fatal("cross-type ordering must fail")
	}
}

func TestReprForms(t *testing.T) {
	s := newTestStore()
	l, _ := s.NewList([]Value{Int(1), Float(2.0)})
	str, _ := s.NewStr("hi")
	inner, _ := s.NewTuple([]Value{str})
	tests := []struct {
		v    Value
		want string
	}{
		{None(), "None"},
		{Bool(true), "True"},
		{Int(-3), "-3"},
		{Float(2.0), "2.0"},
		{l, "[1, 2.0]"},
		{inner, "('hi',)"},
	}
	for _, tt := range tests {
		if got := s.Repr(tt.v); got != tt.want {
			t.Errorf("Repr = %q, want %q", got, tt.want)
		}
	}
	s.Release(l)
	s.Release(inner)
	s.Release(str)
}

// Cyclic containers short-circuit instead of recursing.
func TestReprCycle(t *testing.T) {
	s := newTestStore()
	a, _ := s.NewList(nil)
	s.ListAppend(a, a)
	if got := s.Repr(a); got != "[[...]]" {
		t.Fatalf("Repr of self cycle = %q", got)
	}
	s.Release(a)
	s.Collect()
}
