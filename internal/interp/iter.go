// internal/interp/iter.go
package interp

import (
	"unicode/utf8"

	"monty/internal/errors"
	"monty/internal/object"
)

// getIter obtains a typed iterator cell for any iterable value. Passing
// an iterator through returns it unchanged so nested iteration tooling
// composes.
func (in *Interp) getIter(v object.Value) (object.Value, error) {
	var it object.Iterator
	switch v.Kind() {
	case object.KindIterator:
		return v, nil
	case object.KindList:
		it = object.Iterator{Kind: object.IterList, Src: v}
	case object.KindTuple:
		it = object.Iterator{Kind: object.IterTuple, Src: v}
	case object.KindStr:
		it = object.Iterator{Kind: object.IterStr, Src: v}
	case object.KindBytes:
		it = object.Iterator{Kind: object.IterBytes, Src: v}
	case object.KindDict:
		it = object.Iterator{Kind: object.IterDict, Src: v, Version: in.store.TableVersion(v)}
	case object.KindSet:
		it = object.Iterator{Kind: object.IterSet, Src: v, Version: in.store.TableVersion(v)}
	case object.KindRange:
		start, stop, step := in.store.RangeVal(v)
		it = object.Iterator{Kind: object.IterRange, Cur: start, Stop: stop, Step: step}
	default:
		return object.Value{}, in.raise(errors.TypeError, "'%s' object is not iterable", v.Kind().TypeName())
	}
	iv, err := in.store.NewIterator(it)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(iv), nil
}

// iterNext produces the next element, or ok=false on exhaustion. List
// iterators observe the live length on every step; dict and set
// iterators reject any size change since they were created.
func (in *Interp) iterNext(itv object.Value) (object.Value, bool, error) {
	it := in.store.IteratorVal(itv)
	switch it.Kind {
	case object.IterList, object.IterTuple:
		elems := in.store.Elems(it.Src)
		if it.Cursor >= len(elems) {
			return object.Value{}, false, nil
		}
		v := elems[it.Cursor]
		it.Cursor++
		return in.track(in.store.Retain(v)), true, nil
	case object.IterStr:
		s := in.store.StrVal(it.Src)
		if it.Cursor >= len(s) {
			return object.Value{}, false, nil
		}
		r, size := utf8.DecodeRuneInString(s[it.Cursor:])
		it.Cursor += size
		v, err := in.store.NewStr(string(r))
		if err != nil {
			return object.Value{}, false, in.raiseFrom(err)
		}
		return in.track(v), true, nil
	case object.IterBytes:
		b := in.store.BytesVal(it.Src)
		if it.Cursor >= len(b) {
			return object.Value{}, false, nil
		}
		v := object.Int(int64(b[it.Cursor]))
		it.Cursor++
		return v, true, nil
	case object.IterDict, object.IterSet:
		if in.store.TableVersion(it.Src) != it.Version {
			what := "dictionary"
			if it.Kind == object.IterSet {
				what = "Set"
			}
			return object.Value{}, false, in.raise(errors.RuntimeError, "%s changed size during iteration", what)
		}
		idx := in.store.TableFirstLive(it.Src, it.Cursor)
		if idx < 0 {
			return object.Value{}, false, nil
		}
		it.Cursor = idx + 1
		key := in.store.TableEntryKey(it.Src, idx)
		return in.track(in.store.Retain(key)), true, nil
	case object.IterRange:
		if it.Step > 0 {
			if it.Cur >= it.Stop {
				return object.Value{}, false, nil
			}
		} else if it.Cur <= it.Stop {
			return object.Value{}, false, nil
		}
		v := object.Int(it.Cur)
		it.Cur += it.Step
		return v, true, nil
	}
	return object.Value{}, false, in.raise(errors.RuntimeError, "bad iterator state")
}

// collect drains an iterable into a slice of tracked values.
func (in *Interp) collect(v object.Value) ([]object.Value, error) {
	it, err := in.getIter(v)
	if err != nil {
		return nil, err
	}
	var out []object.Value
	for {
		e, ok, err := in.iterNext(it)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, e)
	}
}
