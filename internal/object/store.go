// internal/object/store.go
package object

import (
	"monty/internal/errors"
)

// cell is one heap object: a refcount header plus the variant payload.
// Exactly one payload field is in use, selected by kind.
type cell struct {
	kind   Kind
	refs   int32
	gcRefs int32
	marked bool
	size   int64

	str   string
	bytes []byte
	elems []Value // list and tuple
	tab   *table  // dict and set
	rng   rangeVal
	fn    *Function
	ext   *External
	exc   *Exception
	it    *Iterator
	bound *Bound
}

// Store owns every heap object of one run. Handles are indices into the
// cell arena; a free list recycles destroyed cells. All allocation flows
// through the governor.
type Store struct {
	cells []cell
	free  []Handle
	gov   *Governor
}

const baseCellSize = 64

func NewStore(gov *Governor) *Store {
	return &Store{
		// Handle 0 is reserved as the null handle.
		cells: make([]cell, 1),
		gov:   gov,
	}
}

// Governor exposes the run's governor for evaluator checks.
func (s *Store) Governor() *Governor { return s.gov }

// Live reports the number of live cells; zero after a clean run.
func (s *Store) Live() int {
	n := 0
	for i := 1; i < len(s.cells); i++ {
		if s.cells[i].refs > 0 {
			n++
		}
	}
	return n
}

// Refcount reports a cell's count, for tests and diagnostics.
func (s *Store) Refcount(v Value) int32 {
	if v.h == 0 {
		return 0
	}
	return s.cells[v.h].refs
}

func (s *Store) alloc(kind Kind, size int64) (Handle, error) {
	if err := s.gov.Allocation(size); err != nil {
		return 0, err
	}
	var h Handle
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
		s.cells[h] = cell{}
	} else {
		s.cells = append(s.cells, cell{})
		h = Handle(len(s.cells) - 1)
	}
	c := &s.cells[h]
	c.kind = kind
	c.refs = 1
	c.size = size
	return h, nil
}

func (s *Store) cell(h Handle) *cell { return &s.cells[h] }

// Retain adds one strong reference.
func (s *Store) Retain(v Value) Value {
	if v.h != 0 {
		s.cells[v.h].refs++
	}
	return v
}

// Release drops one strong reference; at zero the cell is destroyed and
// its owned children released. The walk is iterative so long ownership
// chains cannot overflow the Go stack.
func (s *Store) Release(v Value) {
	if v.h == 0 {
		return
	}
	work := []Handle{v.h}
	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		c := &s.cells[h]
		c.refs--
		if c.refs > 0 {
			continue
		}
		work = s.appendChildren(work, c)
		s.freeCell(h)
	}
}

// appendChildren pushes every owned child handle onto the worklist.
func (s *Store) appendChildren(work []Handle, c *cell) []Handle {
	push := func(v Value) {
		if v.h != 0 {
			work = append(work, v.h)
		}
	}
	switch c.kind {
	case KindList, KindTuple:
		for _, e := range c.elems {
			push(e)
		}
	case KindDict:
		for i := range c.tab.entries {
			en := &c.tab.entries[i]
			if en.dead {
				continue
			}
			push(en.key)
			push(en.val)
		}
	case KindSet:
		for i := range c.tab.entries {
			if !c.tab.entries[i].dead {
				push(c.tab.entries[i].key)
			}
		}
	case KindFunc:
		for _, d := range c.fn.Defaults {
			push(d)
		}
	case KindException:
		for _, a := range c.exc.Args {
			push(a)
		}
		push(c.exc.Cause)
	case KindIterator:
		push(c.it.Src)
	case KindBound:
		push(c.bound.Recv)
	}
	return work
}

func (s *Store) freeCell(h Handle) {
	c := &s.cells[h]
	s.gov.Free(c.size)
	s.cells[h] = cell{}
	s.free = append(s.free, h)
}

// ---- constructors ----

// NewStr builds a string value, immediate when short enough.
func (s *Store) NewStr(str string) (Value, error) {
	if len(str) <= MaxInlineStr {
		return InlineStr(str), nil
	}
	return s.HeapStr(str)
}

// HeapStr always allocates, for string producers that must go through
// the store (concatenation, f-strings and str.join).
func (s *Store) HeapStr(str string) (Value, error) {
	h, err := s.alloc(KindStr, baseCellSize+int64(len(str)))
	if err != nil {
		return Value{}, err
	}
	s.cells[h].str = str
	return Value{kind: KindStr, h: h}, nil
}

func (s *Store) NewBytes(b []byte) (Value, error) {
	h, err := s.alloc(KindBytes, baseCellSize+int64(len(b)))
	if err != nil {
		return Value{}, err
	}
	s.cells[h].bytes = b
	return Value{kind: KindBytes, h: h}, nil
}

// NewList retains each element and takes a private copy of the slice.
func (s *Store) NewList(elems []Value) (Value, error) {
	h, err := s.alloc(KindList, baseCellSize+int64(len(elems))*16)
	if err != nil {
		return Value{}, err
	}
	owned := make([]Value, len(elems))
	for i, e := range elems {
		owned[i] = s.Retain(e)
	}
	s.cells[h].elems = owned
	return Value{kind: KindList, h: h}, nil
}

func (s *Store) NewTuple(elems []Value) (Value, error) {
	h, err := s.alloc(KindTuple, baseCellSize+int64(len(elems))*16)
	if err != nil {
		return Value{}, err
	}
	owned := make([]Value, len(elems))
	for i, e := range elems {
		owned[i] = s.Retain(e)
	}
	s.cells[h].elems = owned
	return Value{kind: KindTuple, h: h}, nil
}

func (s *Store) NewDict() (Value, error) {
	h, err := s.alloc(KindDict, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	s.cells[h].tab = newTable()
	return Value{kind: KindDict, h: h}, nil
}

func (s *Store) NewSet() (Value, error) {
	h, err := s.alloc(KindSet, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	s.cells[h].tab = newTable()
	return Value{kind: KindSet, h: h}, nil
}

func (s *Store) NewRange(start, stop, step int64) (Value, error) {
	h, err := s.alloc(KindRange, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	s.cells[h].rng = rangeVal{start: start, stop: stop, step: step}
	return Value{kind: KindRange, h: h}, nil
}

// NewFunction retains the defaults; the body tree is owned by the program.
func (s *Store) NewFunction(fn *Function) (Value, error) {
	h, err := s.alloc(KindFunc, baseCellSize+int64(len(fn.Defaults))*16)
	if err != nil {
		return Value{}, err
	}
	for i, d := range fn.Defaults {
		fn.Defaults[i] = s.Retain(d)
	}
	s.cells[h].fn = fn
	return Value{kind: KindFunc, h: h}, nil
}

func (s *Store) NewExternal(name string) (Value, error) {
	h, err := s.alloc(KindExternal, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	s.cells[h].ext = &External{Name: name}
	return Value{kind: KindExternal, h: h}, nil
}

func (s *Store) NewException(kind string, args []Value) (Value, error) {
	h, err := s.alloc(KindException, baseCellSize+int64(len(args))*16)
	if err != nil {
		return Value{}, err
	}
	owned := make([]Value, len(args))
	for i, a := range args {
		owned[i] = s.Retain(a)
	}
	s.cells[h].exc = &Exception{Kind: kind, Args: owned, Cause: None()}
	return Value{kind: KindException, h: h}, nil
}

func (s *Store) NewIterator(it Iterator) (Value, error) {
	h, err := s.alloc(KindIterator, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	it.Src = s.Retain(it.Src)
	stored := it
	s.cells[h].it = &stored
	return Value{kind: KindIterator, h: h}, nil
}

func (s *Store) NewBound(recv Value, name string) (Value, error) {
	h, err := s.alloc(KindBound, baseCellSize)
	if err != nil {
		return Value{}, err
	}
	s.cells[h].bound = &Bound{Recv: s.Retain(recv), Name: name}
	return Value{kind: KindBound, h: h}, nil
}

// ---- payload access ----

// StrVal reads string contents, immediate or heap.
func (s *Store) StrVal(v Value) string {
	if v.h == 0 {
		return v.s
	}
	return s.cells[v.h].str
}

func (s *Store) BytesVal(v Value) []byte {
	return s.cells[v.h].bytes
}

// Elems borrows the element slice of a list or tuple.
func (s *Store) Elems(v Value) []Value {
	return s.cells[v.h].elems
}

func (s *Store) RangeVal(v Value) (start, stop, step int64) {
	r := s.cells[v.h].rng
	return r.start, r.stop, r.step
}

func (s *Store) RangeLen(v Value) int64 {
	return s.cells[v.h].rng.length()
}

func (s *Store) FuncVal(v Value) *Function       { return s.cells[v.h].fn }
func (s *Store) ExternalVal(v Value) *External   { return s.cells[v.h].ext }
func (s *Store) ExceptionVal(v Value) *Exception { return s.cells[v.h].exc }
func (s *Store) IteratorVal(v Value) *Iterator   { return s.cells[v.h].it }
func (s *Store) BoundVal(v Value) *Bound         { return s.cells[v.h].bound }

// SetExceptionCause installs __cause__, retaining it.
func (s *Store) SetExceptionCause(exc, cause Value) {
	e := s.cells[exc.h].exc
	s.Release(e.Cause)
	e.Cause = s.Retain(cause)
}

// ---- list mutation ----

func (s *Store) ListAppend(list, v Value) error {
	c := &s.cells[list.h]
	c.elems = append(c.elems, s.Retain(v))
	c.size += 16
	return s.gov.Resize(16)
}

func (s *Store) ListInsert(list Value, idx int, v Value) error {
	c := &s.cells[list.h]
	c.elems = append(c.elems, Value{})
	copy(c.elems[idx+1:], c.elems[idx:])
	c.elems[idx] = s.Retain(v)
	c.size += 16
	return s.gov.Resize(16)
}

// ListRemoveAt removes and returns the element, transferring its
// reference to the caller.
func (s *Store) ListRemoveAt(list Value, idx int) Value {
	c := &s.cells[list.h]
	v := c.elems[idx]
	copy(c.elems[idx:], c.elems[idx+1:])
	c.elems = c.elems[:len(c.elems)-1]
	c.size -= 16
	s.gov.Resize(-16)
	return v
}

// ListSet replaces an element, releasing the old one.
func (s *Store) ListSet(list Value, idx int, v Value) {
	c := &s.cells[list.h]
	old := c.elems[idx]
	c.elems[idx] = s.Retain(v)
	s.Release(old)
}

// ListClear drops every element.
func (s *Store) ListClear(list Value) {
	c := &s.cells[list.h]
	for _, e := range c.elems {
		s.Release(e)
	}
	delta := -int64(len(c.elems)) * 16
	c.elems = c.elems[:0]
	c.size += delta
	s.gov.Resize(delta)
}

// ListReplace swaps in a fully new element slice (sort, reverse).
// The values are the same references, so no counts change.
func (s *Store) ListReplace(list Value, elems []Value) {
	s.cells[list.h].elems = elems
}

// ---- dict/set operations (see table.go for the hash table itself) ----

func (s *Store) TableVal(v Value) *table { return s.cells[v.h].tab }

// DictGet looks up a key. The returned value stays owned by the dict.
func (s *Store) DictGet(dict, key Value) (Value, bool, error) {
	return s.cells[dict.h].tab.get(s, key)
}

// DictSet inserts or replaces, retaining key and value as needed.
func (s *Store) DictSet(dict, key, val Value) error {
	c := &s.cells[dict.h]
	grew, err := c.tab.set(s, key, val)
	if err != nil {
		return err
	}
	if grew {
		c.size += 48
		return s.gov.Resize(48)
	}
	return nil
}

// DictDelete removes a key, releasing the stored key and value.
// Reports whether the key was present.
func (s *Store) DictDelete(dict, key Value) (bool, error) {
	c := &s.cells[dict.h]
	ok, err := c.tab.delete(s, key)
	if ok {
		c.size -= 48
		s.gov.Resize(-48)
	}
	return ok, err
}

// DictClear drops every entry of a dict or set.
func (s *Store) DictClear(dict Value) {
	c := &s.cells[dict.h]
	t := c.tab
	removed := 0
	for i := range t.entries {
		if t.entries[i].dead {
			continue
		}
		s.Release(t.entries[i].key)
		s.Release(t.entries[i].val)
		removed++
	}
	t.entries = nil
	t.buckets = make(map[uint64][]int32)
	t.size = 0
	t.dead = 0
	t.version++
	delta := -int64(removed) * 48
	c.size += delta
	s.gov.Resize(delta)
}

// SetAdd inserts a value into a set.
func (s *Store) SetAdd(set, v Value) error {
	return s.DictSet(set, v, None())
}

// SetContains reports membership.
func (s *Store) SetContains(set, v Value) (bool, error) {
	_, ok, err := s.cells[set.h].tab.get(s, v)
	return ok, err
}

// Len reports the container length for any sized value.
func (s *Store) Len(v Value) int {
	switch v.kind {
	case KindStr:
		return len([]rune(s.StrVal(v)))
	case KindBytes:
		return len(s.cells[v.h].bytes)
	case KindList, KindTuple:
		return len(s.cells[v.h].elems)
	case KindDict, KindSet:
		return s.cells[v.h].tab.size
	case KindRange:
		return int(s.cells[v.h].rng.length())
	}
	return -1
}

// TableVersion reports a dict/set's mutation version; any move since an
// iterator was created invalidates it per the iteration protocol.
func (s *Store) TableVersion(v Value) uint64 {
	return s.cells[v.h].tab.version
}

// TableFirstLive returns the first live entry index at or after i, or -1.
func (s *Store) TableFirstLive(v Value, i int) int {
	return s.cells[v.h].tab.firstLive(i)
}

// TableEntryKey borrows the key stored at a live entry index.
func (s *Store) TableEntryKey(v Value, i int) Value {
	return s.cells[v.h].tab.entries[i].key
}

// TableEntryValue borrows the value stored at a live entry index.
func (s *Store) TableEntryValue(v Value, i int) Value {
	return s.cells[v.h].tab.entries[i].val
}

// TableEntryCount reports the entry slots to scan, tombstones included.
func (s *Store) TableEntryCount(v Value) int {
	return len(s.cells[v.h].tab.entries)
}

// unhashable is the TypeError for a value that cannot be a dict key or
// set member.
func unhashable(k Kind) error {
	return errors.New(errors.TypeError, "unhashable type: '%s'", k.TypeName())
}
