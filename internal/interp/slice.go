// internal/interp/slice.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

func (in *Interp) evalSlice(fr *frame, ex *parser.SliceExpr) (object.Value, error) {
	base, err := in.evalExpr(fr, ex.X)
	if err != nil {
		return object.Value{}, err
	}
	bound := func(e parser.Expr) (int64, bool, error) {
		if e == nil {
			return 0, false, nil
		}
		v, err := in.evalExpr(fr, e)
		if err != nil {
			return 0, false, err
		}
		if v.IsNone() {
			return 0, false, nil
		}
		if v.Kind() != object.KindInt && v.Kind() != object.KindBool {
			return 0, false, in.raise(errors.TypeError,
				"slice indices must be integers or None")
		}
		return v.AsInt(), true, nil
	}
	lo, hasLo, err := bound(ex.Low)
	if err != nil {
		return object.Value{}, err
	}
	hi, hasHi, err := bound(ex.High)
	if err != nil {
		return object.Value{}, err
	}
	step, hasStep, err := bound(ex.Step)
	if err != nil {
		return object.Value{}, err
	}
	if !hasStep {
		step = 1
	}
	if step == 0 {
		return object.Value{}, in.raise(errors.ValueError, "slice step cannot be zero")
	}

	switch base.Kind() {
	case object.KindList, object.KindTuple:
		src := in.store.Elems(base)
		idxs := sliceIndices(len(src), lo, hasLo, hi, hasHi, step)
		elems := make([]object.Value, len(idxs))
		for i, j := range idxs {
			elems[i] = src[j]
		}
		var v object.Value
		var verr error
		if base.Kind() == object.KindList {
			v, verr = in.store.NewList(elems)
		} else {
			v, verr = in.store.NewTuple(elems)
		}
		if verr != nil {
			return object.Value{}, in.raiseFrom(verr)
		}
		return in.track(v), nil
	case object.KindStr:
		src := []rune(in.store.StrVal(base))
		idxs := sliceIndices(len(src), lo, hasLo, hi, hasHi, step)
		out := make([]rune, len(idxs))
		for i, j := range idxs {
			out[i] = src[j]
		}
		v, verr := in.store.NewStr(string(out))
		if verr != nil {
			return object.Value{}, in.raiseFrom(verr)
		}
		return in.track(v), nil
	case object.KindBytes:
		src := in.store.BytesVal(base)
		idxs := sliceIndices(len(src), lo, hasLo, hi, hasHi, step)
		out := make([]byte, len(idxs))
		for i, j := range idxs {
			out[i] = src[j]
		}
		v, verr := in.store.NewBytes(out)
		if verr != nil {
			return object.Value{}, in.raiseFrom(verr)
		}
		return in.track(v), nil
	}
	return object.Value{}, in.raise(errors.TypeError, "'%s' object is not subscriptable", base.Kind().TypeName())
}

// sliceIndices resolves slice bounds with the usual clamping rules and
// returns the selected indices in order.
func sliceIndices(length int, lo int64, hasLo bool, hi int64, hasHi bool, step int64) []int {
	n := int64(length)
	clamp := func(v, min, max int64) int64 {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	norm := func(v int64, def, min, max int64, has bool) int64 {
		if !has {
			return def
		}
		if v < 0 {
			v += n
		}
		return clamp(v, min, max)
	}
	var start, stop int64
	if step > 0 {
		start = norm(lo, 0, 0, n, hasLo)
		stop = norm(hi, n, 0, n, hasHi)
	} else {
		start = norm(lo, n-1, -1, n-1, hasLo)
		stop = norm(hi, -1, -1, n-1, hasHi)
	}
	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, int(i))
		}
	}
	return out
}
