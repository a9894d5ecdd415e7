package object

import (
	"testing"
)

func newTestStore() *Store {
	return NewStore(NewGovernor(Limits{}))
}

func TestRetainRelease(t *testing.T) {
	s := newTestStore()
	v, err := s.HeapStr("a long enough heap string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Refcount(v); got != 1 {
		t.Fatalf("fresh cell refcount = %d, want 1", got)
	}
	s.Retain(v)
	if got := s.Refcount(v); got != 2 {
		t.Fatalf("after retain refcount = %d, want 2", got)
	}
	s.Release(v)
	if got := s.Refcount(v); got != 1 {
		t.Fatalf("after release refcount = %d, want 1", got)
	}
	s.Release(v)
	if got := s.Live(); got != 0 {
		t.Fatalf("live cells = %d, want 0", got)
	}
}

func TestReleaseDestroysChildren(t *testing.T) {
	s := newTestStore()
	child, err := s.HeapStr("child string, long enough for a cell")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, err := s.NewList([]Value{child})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The list took its own reference.
	if got := s.Refcount(child); got != 2 {
		t.Fatalf("child refcount = %d, want 2", got)
	}
	s.Release(child)
	if got := s.Live(); got != 2 {
		t.Fatalf("live cells = %d, want 2", got)
	}
	s.Release(list)
	if got := s.Live(); got != 0 {
		t.Fatalf("after releasing the list, live cells = %d, want 0", got)
	}
}

func TestInlineStrStaysImmediate(t *testing.T) {
	s := newTestStore()
	v, err := s.NewStr("short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsHeap() {
		t.Fatal("short string should be immediate")
	}
	if got := s.StrVal(v); got != "short" {
		t.Fatalf("StrVal = %q", got)
	}
	if got := s.Live(); got != 0 {
		t.Fatalf("live cells = %d, want 0", got)
	}
}

func TestHeapStrForced(t *testing.T) {
	s := newTestStore()
	v, err := s.HeapStr("hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsHeap() {
		t.Fatal("HeapStr must allocate even for short contents")
	}
	s.Release(v)
}

func TestDictSetGetDelete(t *testing.T) {
	s := newTestStore()
	d, err := s.NewDict()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, _ := s.NewStr("k")
	if err := s.DictSet(d, key, Int(1)); err != nil {
		t.Fatalf("DictSet: %v", err)
	}
	if err := s.DictSet(d, key, Int(2)); err != nil {
		t.Fatalf("DictSet replace: %v", err)
	}
	if got := s.Len(d); got != 1 {
		t.Fatalf("len = %d, want 1", got)
	}
	v, ok, err := s.DictGet(d, key)
	if err != nil || !ok {
		t.Fatalf("DictGet ok=%v err=%v", ok, err)
	}
	if v.AsInt() != 2 {
		t.Fatalf("value = %d, want 2", v.AsInt())
	}
	ok, err = s.DictDelete(d, key)
	if err != nil || !ok {
		t.Fatalf("DictDelete ok=%v err=%v", ok, err)
	}
	if got := s.Len(d); got != 0 {
		t.Fatalf("len after delete = %d, want 0", got)
	}
	s.Release(d)
	if got := s.Live(); got != 0 {
		t.Fatalf("live cells = %d, want 0", got)
	}
}

func TestDictUnhashableKey(t *testing.T) {
	s := newTestStore()
	d, _ := s.NewDict()
	list, _ := s.NewList(nil)
	if err := s.DictSet(d, list, Int(1)); err == nil {
		t.Fatal("expected unhashable type error")
	}
	s.Release(list)
	s.Release(d)
}

func TestDictInsertionOrder(t *testing.T) {
	s := newTestStore()
	d, _ := s.NewDict()
	for _, n := range []int64{5, 1, 9, 3} {
		if err := s.DictSet(d, Int(n), Int(n*10)); err != nil {
			t.Fatalf("DictSet: %v", err)
		}
	}
	var got []int64
	for i := s.TableFirstLive(d, 0); i >= 0; i = s.TableFirstLive(d, i+1) {
		got = append(got, s.TableEntryKey(d, i).AsInt())
	}
	want := []int64{5, 1, 9, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("iteration order %v, want %v", got, want)
		}
	}
	s.Release(d)
}

func TestTableVersionBumpsOnSizeChangeOnly(t *testing.T) {
	s := newTestStore()
	d, _ := s.NewDict()
	s.DictSet(d, Int(1), Int(1))
	v1 := s.TableVersion(d)
	// Replacing a value is not a size change.
	s.DictSet(d, Int(1), Int(2))
	if s.TableVersion(d) != v1 {
		t.Fatal("value replacement must not bump the version")
	}
	s.DictSet(d, Int(2), Int(2))
	if s.TableVersion(d) == v1 {
		t.Fatal("growth must bump the version")
	}
	s.Release(d)
}

func TestRangeLen(t *testing.T) {
	tests := []struct {
		start, stop, step int64
		want              int
	}{
		{0, 10, 1, 10},
		{0, 10, 3, 4},
		{10, 0, -1, 10},
		{10, 0, -3, 4},
		{0, 0, 1, 0},
		{5, 0, 1, 0},
		{0, 5, -1, 0},
	}
	s := newTestStore()
	for _, tt := range tests {
		r, err := s.NewRange(tt.start, tt.stop, tt.step)
		if err != nil {
			t.Fatalf("NewRange: %v", err)
		}
		if got := s.Len(r); got != tt.want {
			t.Errorf("len(range(%d, %d, %d)) = %d, want %d", tt.start, tt.stop, tt.step, got, tt.want)
		}
		s.Release(r)
	}
}
