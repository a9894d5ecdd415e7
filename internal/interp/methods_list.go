// internal/interp/methods_list.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
)

func init() {
	registerMethods(object.KindList, map[string]methodFn{
		"append":  listAppend,
		"extend":  listExtendMethod,
		"insert":  listInsert,
		"pop":     listPop,
		"remove":  listRemove,
		"index":   listIndex,
		"count":   listCount,
		"clear":   listClear,
		"copy":    listCopy,
		"reverse": listReverse,
		"sort":    listSort,
	})
	registerMethods(object.KindTuple, map[string]methodFn{
		"index": listIndex,
		"count": listCount,
	})
}

func listAppend(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("append", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if err := in.store.ListAppend(recv, args[0]); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return object.None(), nil
}

// listExtend accepts any iterable, used both by the method and by the
// in-place += path.
func (in *Interp) listExtend(recv, src object.Value) error {
	elems, err := in.collect(src)
	if err != nil {
		return err
	}
	for _, e := range elems {
		if aerr := in.store.ListAppend(recv, e); aerr != nil {
			return in.raiseFrom(aerr)
		}
	}
	return nil
}

// listRepeatInPlace implements *= on a list so aliases observe the
// mutation.
func (in *Interp) listRepeatInPlace(recv object.Value, n int64) error {
	if n <= 0 {
		in.store.ListClear(recv)
		return nil
	}
	snapshot := append([]object.Value(nil), in.store.Elems(recv)...)
	for i := int64(1); i < n; i++ {
		for _, e := range snapshot {
			if err := in.store.ListAppend(recv, e); err != nil {
				return in.raiseFrom(err)
			}
		}
	}
	return nil
}

func listExtendMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("extend", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if err := in.listExtend(recv, args[0]); err != nil {
		return object.Value{}, err
	}
	return object.None(), nil
}

func listInsert(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("insert", args, 2, 2); err != nil {
		return object.Value{}, err
	}
	i, err := in.indexValue(args[0], "list")
	if err != nil {
		return object.Value{}, err
	}
	length := int64(len(in.store.Elems(recv)))
	if i < 0 {
		i += length
	}
	// Insert clamps into [0, len].
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	if err := in.store.ListInsert(recv, int(i), args[1]); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return object.None(), nil
}

func listPop(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("pop", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	elems := in.store.Elems(recv)
	if len(elems) == 0 {
		return object.Value{}, in.raise(errors.IndexError, "pop from empty list")
	}
	i := int64(len(elems) - 1)
	if len(args) == 1 {
		var err error
		i, err = in.indexValue(args[0], "list")
		if err != nil {
			return object.Value{}, err
		}
		if i < 0 {
			i += int64(len(elems))
		}
		if i < 0 || i >= int64(len(elems)) {
			return object.Value{}, in.raise(errors.IndexError, "pop index out of range")
		}
	}
	// The removed element's reference transfers to the caller.
	return in.track(in.store.ListRemoveAt(recv, int(i))), nil
}

func listRemove(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("remove", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	elems := in.store.Elems(recv)
	for i, e := range elems {
		eq, err := in.store.DeepEquals(e, args[0])
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if eq {
			in.store.Release(in.store.ListRemoveAt(recv, i))
			return object.None(), nil
		}
	}
	return object.Value{}, in.raise(errors.ValueError, "list.remove(x): x not in list")
}

// listIndex serves both list.index and tuple.index, with optional start
// and end bounds.
func listIndex(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("index", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	elems := in.store.Elems(recv)
	start, end := 0, len(elems)
	if len(args) >= 2 && !args[1].IsNone() {
		i, err := in.indexValue(args[1], recv.Kind().TypeName())
		if err != nil {
			return object.Value{}, err
		}
		start = clampBound(i, len(elems))
	}
	if len(args) == 3 && !args[2].IsNone() {
		i, err := in.indexValue(args[2], recv.Kind().TypeName())
		if err != nil {
			return object.Value{}, err
		}
		end = clampBound(i, len(elems))
	}
	for i := start; i < end && i < len(elems); i++ {
		eq, err := in.store.DeepEquals(elems[i], args[0])
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if eq {
			return object.Int(int64(i)), nil
		}
	}
	return object.Value{}, in.raise(errors.ValueError, "%s is not in %s",
		in.store.Repr(args[0]), recv.Kind().TypeName())
}

func clampBound(i int64, length int) int {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 {
		return 0
	}
	if i > int64(length) {
		return length
	}
	return int(i)
}

func listCount(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("count", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	n := int64(0)
	for _, e := range in.store.Elems(recv) {
		eq, err := in.store.DeepEquals(e, args[0])
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if eq {
			n++
		}
	}
	return object.Int(n), nil
}

func listClear(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("clear", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	in.store.ListClear(recv)
	return object.None(), nil
}

func listCopy(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("copy", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	v, err := in.store.NewList(in.store.Elems(recv))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func listReverse(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("reverse", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	elems := in.store.Elems(recv)
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return object.None(), nil
}

func listSort(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("sort", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	elems := in.store.Elems(recv)
	sortedElems, err := in.sortValues(elems, kwargs)
	if err != nil {
		return object.Value{}, err
	}
	in.store.ListReplace(recv, sortedElems)
	return object.None(), nil
}
