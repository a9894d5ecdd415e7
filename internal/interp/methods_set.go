// internal/interp/methods_set.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
)

func init() {
	registerMethods(object.KindSet, map[string]methodFn{
		"add":                  setAddMethod,
		"remove":               setRemove,
		"discard":              setDiscard,
		"pop":                  setPop,
		"clear":                setClear,
		"copy":                 setCopy,
		"union":                setUnionMethod,
		"intersection":         setIntersectionMethod,
		"difference":           setDifferenceMethod,
		"symmetric_difference": setSymmetricDifferenceMethod,
		"issubset":             setIssubset,
		"issuperset":           setIssuperset,
	})
}

func (in *Interp) setElems(set object.Value) []object.Value {
	var out []object.Value
	for i := in.store.TableFirstLive(set, 0); i >= 0; i = in.store.TableFirstLive(set, i+1) {
		out = append(out, in.store.TableEntryKey(set, i))
	}
	return out
}

func (in *Interp) newSetFrom(elems []object.Value) (object.Value, error) {
	sv, err := in.store.NewSet()
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(sv)
	for _, e := range elems {
		if err := in.store.SetAdd(sv, e); err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
	}
	return sv, nil
}

func (in *Interp) setUnion(a, b object.Value) (object.Value, error) {
	out, err := in.newSetFrom(in.setElems(a))
	if err != nil {
		return object.Value{}, err
	}
	for _, e := range in.setElems(b) {
		if err := in.store.SetAdd(out, e); err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
	}
	return out, nil
}

func (in *Interp) setIntersection(a, b object.Value) (object.Value, error) {
	var kept []object.Value
	for _, e := range in.setElems(a) {
		ok, err := in.store.SetContains(b, e)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if ok {
			kept = append(kept, e)
		}
	}
	return in.newSetFrom(kept)
}

func (in *Interp) setDifference(a, b object.Value) (object.Value, error) {
	var kept []object.Value
	for _, e := range in.setElems(a) {
		ok, err := in.store.SetContains(b, e)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if !ok {
			kept = append(kept, e)
		}
	}
	return in.newSetFrom(kept)
}

func (in *Interp) setSymmetricDifference(a, b object.Value) (object.Value, error) {
	out, err := in.setDifference(a, b)
	if err != nil {
		return object.Value{}, err
	}
	for _, e := range in.setElems(b) {
		ok, err := in.store.SetContains(a, e)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if !ok {
			if err := in.store.SetAdd(out, e); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
	}
	return out, nil
}

// isSubset reports whether every element of a is in b.
func (in *Interp) isSubset(a, b object.Value) (bool, error) {
	for _, e := range in.setElems(a) {
		ok, err := in.store.SetContains(b, e)
		if err != nil {
			return false, in.raiseFrom(err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// setOrdering implements <, <=, >, >= between sets as subset relations.
func (in *Interp) setOrdering(op string, a, b object.Value) (bool, error) {
	switch op {
	case ">", ">=":
		a, b = b, a
		if op == ">" {
			op = "<"
		} else {
			op = "<="
		}
	}
	sub, err := in.isSubset(a, b)
	if err != nil || !sub {
		return false, err
	}
	if op == "<" {
		return in.store.Len(a) < in.store.Len(b), nil
	}
	return true, nil
}

// asSetOperand accepts a set argument or any iterable for the named
// method forms.
func (in *Interp) asSetOperand(name string, v object.Value) (object.Value, error) {
	if v.Kind() == object.KindSet {
		return v, nil
	}
	elems, err := in.collect(v)
	if err != nil {
		if r, ok := err.(*raised); ok && r.kind == errors.TypeError {
			in.releaseRaised(r)
			return object.Value{}, in.raise(errors.TypeError,
				"%s() argument must be iterable, not '%s'", name, v.Kind().TypeName())
		}
		return object.Value{}, err
	}
	return in.newSetFrom(elems)
}

func setAddMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("add", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if err := in.store.SetAdd(recv, args[0]); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return object.None(), nil
}

func setRemove(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("remove", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	ok, err := in.store.DictDelete(recv, args[0])
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	if !ok {
		return object.Value{}, in.raise(errors.KeyError, "%s", in.store.Repr(args[0]))
	}
	return object.None(), nil
}

func setDiscard(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("discard", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if _, err := in.store.DictDelete(recv, args[0]); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return object.None(), nil
}

// setPop removes and returns the first element in insertion order.
func setPop(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("pop", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	i := in.store.TableFirstLive(recv, 0)
	if i < 0 {
		return object.Value{}, in.raise(errors.KeyError, "pop from an empty set")
	}
	key := in.track(in.store.Retain(in.store.TableEntryKey(recv, i)))
	if _, err := in.store.DictDelete(recv, key); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return key, nil
}

func setClear(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("clear", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	in.store.DictClear(recv)
	return object.None(), nil
}

func setCopy(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("copy", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.newSetFrom(in.setElems(recv))
}

func setUnionMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("union", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("union", args[0])
	if err != nil {
		return object.Value{}, err
	}
	return in.setUnion(recv, other)
}

func setIntersectionMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("intersection", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("intersection", args[0])
	if err != nil {
		return object.Value{}, err
	}
	return in.setIntersection(recv, other)
}

func setDifferenceMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("difference", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("difference", args[0])
	if err != nil {
		return object.Value{}, err
	}
	return in.setDifference(recv, other)
}

func setSymmetricDifferenceMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("symmetric_difference", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("symmetric_difference", args[0])
	if err != nil {
		return object.Value{}, err
	}
	return in.setSymmetricDifference(recv, other)
}

func setIssubset(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("issubset", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("issubset", args[0])
	if err != nil {
		return object.Value{}, err
	}
	ok, err := in.isSubset(recv, other)
	if err != nil {
		return object.Value{}, err
	}
	return object.Bool(ok), nil
}

func setIssuperset(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("issuperset", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	other, err := in.asSetOperand("issuperset", args[0])
	if err != nil {
		return object.Value{}, err
	}
	ok, err := in.isSubset(other, recv)
	if err != nil {
		return object.Value{}, err
	}
	return object.Bool(ok), nil
}
