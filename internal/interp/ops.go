// internal/interp/ops.go
package interp

import (
	goerrors "errors"
	"math"
	"strings"

	"monty/internal/errors"
	"monty/internal/object"
)

// errNotImplemented is the fall-through sentinel of the dispatch tables:
// the left operand's entry returns it to hand the operation to the right
// operand's reflected entry.
var errNotImplemented = goerrors.New("not implemented")

type binFn func(in *Interp, op string, a, b object.Value) (object.Value, error)

type binKey struct {
	kind object.Kind
	op   string
}

var binOps map[binKey]binFn
var reflectedOps map[binKey]binFn

func init() {
	binOps = map[binKey]binFn{}
	reflectedOps = map[binKey]binFn{}

	numeric := func(op string, fn binFn) {
		binOps[binKey{object.KindInt, op}] = fn
		binOps[binKey{object.KindBool, op}] = fn
		binOps[binKey{object.KindFloat, op}] = fn
	}
	numeric("+", numAdd)
	numeric("-", numSub)
	numeric("*", numMul)
	numeric("/", numDiv)
	numeric("//", numFloorDiv)
	numeric("%", numMod)
	numeric("**", numPow)
	binOps[binKey{object.KindInt, "|"}] = intBitwise
	binOps[binKey{object.KindInt, "&"}] = intBitwise
	binOps[binKey{object.KindInt, "^"}] = intBitwise
	binOps[binKey{object.KindBool, "|"}] = intBitwise
	binOps[binKey{object.KindBool, "&"}] = intBitwise
	binOps[binKey{object.KindBool, "^"}] = intBitwise

	binOps[binKey{object.KindStr, "+"}] = strConcat
	binOps[binKey{object.KindStr, "*"}] = strRepeat
	reflectedOps[binKey{object.KindStr, "*"}] = strRepeatReflected

	binOps[binKey{object.KindList, "+"}] = seqConcat
	binOps[binKey{object.KindList, "*"}] = seqRepeat
	reflectedOps[binKey{object.KindList, "*"}] = seqRepeatReflected
	binOps[binKey{object.KindTuple, "+"}] = seqConcat
	binOps[binKey{object.KindTuple, "*"}] = seqRepeat
	reflectedOps[binKey{object.KindTuple, "*"}] = seqRepeatReflected

	binOps[binKey{object.KindBytes, "+"}] = bytesConcat
	binOps[binKey{object.KindBytes, "*"}] = bytesRepeat
	reflectedOps[binKey{object.KindBytes, "*"}] = bytesRepeatReflected

	for _, op := range []string{"|", "&", "-", "^"} {
		binOps[binKey{object.KindSet, op}] = setOperator
	}
}

// binaryOp dispatches a binary operator: left-type entry first, then the
// right operand's reflected entry, then TypeError.
func (in *Interp) binaryOp(op string, a, b object.Value) (object.Value, error) {
	if fn, ok := binOps[binKey{a.Kind(), op}]; ok {
		v, err := fn(in, op, a, b)
		if err != errNotImplemented {
			return v, err
		}
	}
	if fn, ok := reflectedOps[binKey{b.Kind(), op}]; ok {
		v, err := fn(in, op, b, a)
		if err != errNotImplemented {
			return v, err
		}
	}
	return object.Value{}, in.raise(errors.TypeError,
		"unsupported operand type(s) for %s: '%s' and '%s'", op, a.Kind().TypeName(), b.Kind().TypeName())
}

// ---- numeric operators, with Bool→Int→Float promotion ----

func bothInts(a, b object.Value) bool {
	return a.Kind() != object.KindFloat && b.Kind() != object.KindFloat
}

func numAdd(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) {
		return object.Int(a.AsInt() + b.AsInt()), nil
	}
	return object.Float(a.AsFloat64() + b.AsFloat64()), nil
}

func numSub(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) {
		return object.Int(a.AsInt() - b.AsInt()), nil
	}
	return object.Float(a.AsFloat64() - b.AsFloat64()), nil
}

func numMul(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) {
		return object.Int(a.AsInt() * b.AsInt()), nil
	}
	return object.Float(a.AsFloat64() * b.AsFloat64()), nil
}

func numDiv(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if b.AsFloat64() == 0 {
		return object.Value{}, in.raise(errors.ZeroDivisionError, "division by zero")
	}
	return object.Float(a.AsFloat64() / b.AsFloat64()), nil
}

func numFloorDiv(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) {
		if b.AsInt() == 0 {
			return object.Value{}, in.raise(errors.ZeroDivisionError, "integer division or modulo by zero")
		}
		q := a.AsInt() / b.AsInt()
		if (a.AsInt()%b.AsInt() != 0) && ((a.AsInt() < 0) != (b.AsInt() < 0)) {
			q--
		}
		return object.Int(q), nil
	}
	if b.AsFloat64() == 0 {
		return object.Value{}, in.raise(errors.ZeroDivisionError, "float floor division by zero")
	}
	return object.Float(math.Floor(a.AsFloat64() / b.AsFloat64())), nil
}

func numMod(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) {
		if b.AsInt() == 0 {
			return object.Value{}, in.raise(errors.ZeroDivisionError, "integer division or modulo by zero")
		}
		m := a.AsInt() % b.AsInt()
		if m != 0 && (m < 0) != (b.AsInt() < 0) {
			m += b.AsInt()
		}
		return object.Int(m), nil
	}
	if b.AsFloat64() == 0 {
		return object.Value{}, in.raise(errors.ZeroDivisionError, "float modulo")
	}
	m := math.Mod(a.AsFloat64(), b.AsFloat64())
	if m != 0 && (m < 0) != (b.AsFloat64() < 0) {
		m += b.AsFloat64()
	}
	return object.Float(m), nil
}

func numPow(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if !b.IsNumber() {
		return object.Value{}, errNotImplemented
	}
	if bothInts(a, b) && b.AsInt() >= 0 {
		base, exp := a.AsInt(), b.AsInt()
		var result int64 = 1
		for exp > 0 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
			exp >>= 1
		}
		return object.Int(result), nil
	}
	return object.Float(math.Pow(a.AsFloat64(), b.AsFloat64())), nil
}

func intBitwise(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindInt && b.Kind() != object.KindBool {
		return object.Value{}, errNotImplemented
	}
	switch op {
	case "|":
		return object.Int(a.AsInt() | b.AsInt()), nil
	case "&":
		return object.Int(a.AsInt() & b.AsInt()), nil
	default:
		return object.Int(a.AsInt() ^ b.AsInt()), nil
	}
}

// ---- string and sequence operators ----

func strConcat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindStr {
		return object.Value{}, errNotImplemented
	}
	v, err := in.store.HeapStr(in.store.StrVal(a) + in.store.StrVal(b))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func strRepeat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindInt && b.Kind() != object.KindBool {
		return object.Value{}, errNotImplemented
	}
	n := b.AsInt()
	if n < 0 {
		n = 0
	}
	v, err := in.store.NewStr(strings.Repeat(in.store.StrVal(a), int(n)))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func strRepeatReflected(in *Interp, op string, a, b object.Value) (object.Value, error) {
	return strRepeat(in, op, a, b)
}

func seqConcat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != a.Kind() {
		return object.Value{}, errNotImplemented
	}
	ae, be := in.store.Elems(a), in.store.Elems(b)
	elems := make([]object.Value, 0, len(ae)+len(be))
	elems = append(elems, ae...)
	elems = append(elems, be...)
	var v object.Value
	var err error
	if a.Kind() == object.KindList {
		v, err = in.store.NewList(elems)
	} else {
		v, err = in.store.NewTuple(elems)
	}
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func seqRepeat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindInt && b.Kind() != object.KindBool {
		return object.Value{}, errNotImplemented
	}
	n := b.AsInt()
	if n < 0 {
		n = 0
	}
	src := in.store.Elems(a)
	elems := make([]object.Value, 0, int(n)*len(src))
	for i := int64(0); i < n; i++ {
		elems = append(elems, src...)
	}
	var v object.Value
	var err error
	if a.Kind() == object.KindList {
		v, err = in.store.NewList(elems)
	} else {
		v, err = in.store.NewTuple(elems)
	}
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func seqRepeatReflected(in *Interp, op string, a, b object.Value) (object.Value, error) {
	return seqRepeat(in, op, a, b)
}

func bytesConcat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindBytes {
		return object.Value{}, errNotImplemented
	}
	ab, bb := in.store.BytesVal(a), in.store.BytesVal(b)
	out := make([]byte, 0, len(ab)+len(bb))
	out = append(out, ab...)
	out = append(out, bb...)
	v, err := in.store.NewBytes(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func bytesRepeat(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindInt && b.Kind() != object.KindBool {
		return object.Value{}, errNotImplemented
	}
	n := b.AsInt()
	if n < 0 {
		n = 0
	}
	src := in.store.BytesVal(a)
	out := make([]byte, 0, int(n)*len(src))
	for i := int64(0); i < n; i++ {
		out = append(out, src...)
	}
	v, err := in.store.NewBytes(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func bytesRepeatReflected(in *Interp, op string, a, b object.Value) (object.Value, error) {
	return bytesRepeat(in, op, a, b)
}

func setOperator(in *Interp, op string, a, b object.Value) (object.Value, error) {
	if b.Kind() != object.KindSet {
		return object.Value{}, errNotImplemented
	}
	switch op {
	case "|":
		return in.setUnion(a, b)
	case "&":
		return in.setIntersection(a, b)
	case "-":
		return in.setDifference(a, b)
	default:
		return in.setSymmetricDifference(a, b)
	}
}

// ---- indexing ----

// normIndex adjusts negative indices and validates the range.
func normIndex(idx int64, length int) (int, bool) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

func (in *Interp) indexValue(v object.Value, what string) (int64, error) {
	switch v.Kind() {
	case object.KindInt, object.KindBool:
		return v.AsInt(), nil
	}
	return 0, in.raise(errors.TypeError, "%s indices must be integers, not %s", what, v.Kind().TypeName())
}

func (in *Interp) getItem(base, idx object.Value) (object.Value, error) {
	switch base.Kind() {
	case object.KindList, object.KindTuple:
		name := base.Kind().TypeName()
		i, err := in.indexValue(idx, name)
		if err != nil {
			return object.Value{}, err
		}
		elems := in.store.Elems(base)
		pos, ok := normIndex(i, len(elems))
		if !ok {
			return object.Value{}, in.raise(errors.IndexError, "%s index out of range", name)
		}
		return in.track(in.store.Retain(elems[pos])), nil
	case object.KindStr:
		i, err := in.indexValue(idx, "string")
		if err != nil {
			return object.Value{}, err
		}
		runes := []rune(in.store.StrVal(base))
		pos, ok := normIndex(i, len(runes))
		if !ok {
			return object.Value{}, in.raise(errors.IndexError, "string index out of range")
		}
		v, serr := in.store.NewStr(string(runes[pos]))
		if serr != nil {
			return object.Value{}, in.raiseFrom(serr)
		}
		return in.track(v), nil
	case object.KindBytes:
		i, err := in.indexValue(idx, "bytes")
		if err != nil {
			return object.Value{}, err
		}
		b := in.store.BytesVal(base)
		pos, ok := normIndex(i, len(b))
		if !ok {
			return object.Value{}, in.raise(errors.IndexError, "index out of range")
		}
		return object.Int(int64(b[pos])), nil
	case object.KindDict:
		v, ok, err := in.store.DictGet(base, idx)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if !ok {
			return object.Value{}, in.raise(errors.KeyError, "%s", in.store.Repr(idx))
		}
		return in.track(in.store.Retain(v)), nil
	case object.KindRange:
		i, err := in.indexValue(idx, "range")
		if err != nil {
			return object.Value{}, err
		}
		start, _, step := in.store.RangeVal(base)
		length := in.store.RangeLen(base)
		pos64 := i
		if pos64 < 0 {
			pos64 += length
		}
		if pos64 < 0 || pos64 >= length {
			return object.Value{}, in.raise(errors.IndexError, "range object index out of range")
		}
		return object.Int(start + pos64*step), nil
	}
	return object.Value{}, in.raise(errors.TypeError, "'%s' object is not subscriptable", base.Kind().TypeName())
}

func (in *Interp) setItem(base, idx, v object.Value) error {
	switch base.Kind() {
	case object.KindList:
		i, err := in.indexValue(idx, "list")
		if err != nil {
			return err
		}
		elems := in.store.Elems(base)
		pos, ok := normIndex(i, len(elems))
		if !ok {
			return in.raise(errors.IndexError, "list assignment index out of range")
		}
		in.store.ListSet(base, pos, v)
		return nil
	case object.KindDict:
		if err := in.store.DictSet(base, idx, v); err != nil {
			return in.raiseFrom(err)
		}
		return nil
	}
	return in.raise(errors.TypeError, "'%s' object does not support item assignment", base.Kind().TypeName())
}

func (in *Interp) deleteItem(base, idx object.Value) error {
	switch base.Kind() {
	case object.KindList:
		i, err := in.indexValue(idx, "list")
		if err != nil {
			return err
		}
		elems := in.store.Elems(base)
		pos, ok := normIndex(i, len(elems))
		if !ok {
			return in.raise(errors.IndexError, "list assignment index out of range")
		}
		removed := in.store.ListRemoveAt(base, pos)
		in.store.Release(removed)
		return nil
	case object.KindDict:
		ok, err := in.store.DictDelete(base, idx)
		if err != nil {
			return in.raiseFrom(err)
		}
		if !ok {
			return in.raise(errors.KeyError, "%s", in.store.Repr(idx))
		}
		return nil
	}
	return in.raise(errors.TypeError, "'%s' object does not support item deletion", base.Kind().TypeName())
}
