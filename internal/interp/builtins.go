// internal/interp/builtins.go
package interp

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"monty/internal/errors"
	"monty/internal/object"
)

type builtinFn func(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error)

var builtins map[string]builtinFn

// BuiltinNames reports every builtin the resolver may bind.
func BuiltinNames() map[string]bool {
	names := make(map[string]bool, len(builtins))
	for name := range builtins {
		names[name] = true
	}
	return names
}

func init() {
	builtins = map[string]builtinFn{
		"abs":        builtinAbs,
		"bool":       builtinBool,
		"bytes":      builtinBytes,
		"chr":        builtinChr,
		"dict":       builtinDict,
		"divmod":     builtinDivmod,
		"enumerate":  builtinEnumerate,
		"filter":     builtinFilter,
		"float":      builtinFloat,
		"hash":       builtinHash,
		"id":         builtinID,
		"int":        builtinInt,
		"isinstance": builtinIsinstance,
		"len":        builtinLen,
		"list":       builtinList,
		"map":        builtinMap,
		"max":        builtinMax,
		"min":        builtinMin,
		"ord":        builtinOrd,
		"pow":        builtinPow,
		"print":      builtinPrint,
		"range":      builtinRange,
		"repr":       builtinRepr,
		"reversed":   builtinReversed,
		"round":      builtinRound,
		"set":        builtinSet,
		"sorted":     builtinSorted,
		"str":        builtinStr,
		"sum":        builtinSum,
		"tuple":      builtinTuple,
		"type":       builtinType,
		"zip":        builtinZip,
	}
}

func (in *Interp) arity(name string, args []object.Value, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		if min == max {
			return in.raise(errors.TypeError, "%s() takes exactly %d arguments (%d given)", name, min, len(args))
		}
		return in.raise(errors.TypeError, "%s() takes from %d to %d arguments (%d given)", name, min, max, len(args))
	}
	return nil
}

func kwargLookup(kwargs []kwarg, name string) (object.Value, bool) {
	for _, kw := range kwargs {
		if kw.name == name {
			return kw.value, true
		}
	}
	return object.Value{}, false
}

func (in *Interp) noKwargs(name string, kwargs []kwarg) error {
	if len(kwargs) > 0 {
		return in.raise(errors.TypeError, "%s() takes no keyword arguments", name)
	}
	return nil
}

func builtinAbs(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("abs", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	v := args[0]
	switch v.Kind() {
	case object.KindInt, object.KindBool:
		n := v.AsInt()
		if n < 0 {
			n = -n
		}
		return object.Int(n), nil
	case object.KindFloat:
		return object.Float(math.Abs(v.AsFloat())), nil
	}
	return object.Value{}, in.raise(errors.TypeError, "bad operand type for abs(): '%s'", v.Kind().TypeName())
}

func builtinBool(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("bool", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 0 {
		return object.Bool(false), nil
	}
	return object.Bool(in.truthy(args[0])), nil
}

func builtinBytes(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("bytes", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 0 {
		v, err := in.store.NewBytes(nil)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	}
	v := args[0]
	switch v.Kind() {
	case object.KindBytes:
		out, err := in.store.NewBytes(append([]byte(nil), in.store.BytesVal(v)...))
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(out), nil
	case object.KindInt, object.KindBool:
		n := v.AsInt()
		if n < 0 {
			return object.Value{}, in.raise(errors.ValueError, "negative count")
		}
		out, err := in.store.NewBytes(make([]byte, n))
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(out), nil
	case object.KindStr:
		return object.Value{}, in.raise(errors.TypeError, "string argument without an encoding")
	}
	elems, err := in.collect(v)
	if err != nil {
		return object.Value{}, err
	}
	buf := make([]byte, len(elems))
	for i, e := range elems {
		if e.Kind() != object.KindInt && e.Kind() != object.KindBool {
			return object.Value{}, in.raise(errors.TypeError,
				"'%s' object cannot be interpreted as an integer", e.Kind().TypeName())
		}
		n := e.AsInt()
		if n < 0 || n > 255 {
			return object.Value{}, in.raise(errors.ValueError, "bytes must be in range(0, 256)")
		}
		buf[i] = byte(n)
	}
	out, err := in.store.NewBytes(buf)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(out), nil
}

func builtinChr(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("chr", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if args[0].Kind() != object.KindInt && args[0].Kind() != object.KindBool {
		return object.Value{}, in.raise(errors.TypeError,
			"'%s' object cannot be interpreted as an integer", args[0].Kind().TypeName())
	}
	n := args[0].AsInt()
	if n < 0 || n > 0x10FFFF {
		return object.Value{}, in.raise(errors.ValueError, "chr() arg not in range(0x110000)")
	}
	v, err := in.store.NewStr(string(rune(n)))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func builtinDict(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("dict", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	d, err := in.store.NewDict()
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(d)
	if len(args) == 1 {
		if err := in.dictUpdateFrom(d, args[0]); err != nil {
			return object.Value{}, err
		}
	}
	for _, kw := range kwargs {
		k, err := in.store.NewStr(kw.name)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(k)
		if err := in.store.DictSet(d, k, kw.value); err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
	}
	return d, nil
}

// dictUpdateFrom merges a mapping or an iterable of key/value pairs.
func (in *Interp) dictUpdateFrom(d, src object.Value) error {
	if src.Kind() == object.KindDict {
		for i := in.store.TableFirstLive(src, 0); i >= 0; i = in.store.TableFirstLive(src, i+1) {
			k := in.store.TableEntryKey(src, i)
			v := in.store.TableEntryValue(src, i)
			if err := in.store.DictSet(d, k, v); err != nil {
				return in.raiseFrom(err)
			}
		}
		return nil
	}
	pairs, err := in.collect(src)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p.Kind() != object.KindList && p.Kind() != object.KindTuple {
			return in.raise(errors.TypeError, "cannot convert dictionary update sequence element")
		}
		kv := in.store.Elems(p)
		if len(kv) != 2 {
			return in.raise(errors.ValueError, "dictionary update sequence element has length %d; 2 is required", len(kv))
		}
		if err := in.store.DictSet(d, kv[0], kv[1]); err != nil {
			return in.raiseFrom(err)
		}
	}
	return nil
}

func builtinDivmod(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("divmod", args, 2, 2); err != nil {
		return object.Value{}, err
	}
	q, err := numFloorDiv(in, "//", args[0], args[1])
	if err != nil {
		if err == errNotImplemented {
			return object.Value{}, in.raise(errors.TypeError,
				"unsupported operand type(s) for divmod(): '%s' and '%s'",
				args[0].Kind().TypeName(), args[1].Kind().TypeName())
		}
		return object.Value{}, err
	}
	m, err := numMod(in, "%", args[0], args[1])
	if err != nil {
		return object.Value{}, err
	}
	t, terr := in.store.NewTuple([]object.Value{q, m})
	if terr != nil {
		return object.Value{}, in.raiseFrom(terr)
	}
	return in.track(t), nil
}

func builtinEnumerate(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("enumerate", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	start := int64(0)
	if len(args) == 2 {
		if args[1].Kind() != object.KindInt && args[1].Kind() != object.KindBool {
			return object.Value{}, in.raise(errors.TypeError,
				"'%s' object cannot be interpreted as an integer", args[1].Kind().TypeName())
		}
		start = args[1].AsInt()
	}
	if v, ok := kwargLookup(kwargs, "start"); ok {
		start = v.AsInt()
	}
	elems, err := in.collect(args[0])
	if err != nil {
		return object.Value{}, err
	}
	out := make([]object.Value, len(elems))
	for i, e := range elems {
		pair, err := in.store.NewTuple([]object.Value{object.Int(start + int64(i)), e})
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		out[i] = in.track(pair)
	}
	lv, err := in.store.NewList(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func builtinFilter(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("filter", args, 2, 2); err != nil {
		return object.Value{}, err
	}
	fn := args[0]
	elems, err := in.collect(args[1])
	if err != nil {
		return object.Value{}, err
	}
	var out []object.Value
	for _, e := range elems {
		keep := false
		if fn.IsNone() {
			keep = in.truthy(e)
		} else {
			r, err := in.callValue(fn, []object.Value{e}, nil)
			if err != nil {
				return object.Value{}, err
			}
			keep = in.truthy(r)
		}
		if keep {
			out = append(out, e)
		}
	}
	lv, err := in.store.NewList(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func builtinFloat(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("float", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 0 {
		return object.Float(0), nil
	}
	v := args[0]
	switch v.Kind() {
	case object.KindFloat:
		return v, nil
	case object.KindInt, object.KindBool:
		return object.Float(float64(v.AsInt())), nil
	case object.KindStr:
		text := strings.TrimSpace(in.store.StrVal(v))
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return object.Value{}, in.raise(errors.ValueError,
				"could not convert string to float: %s", in.store.Repr(v))
		}
		return object.Float(f), nil
	}
	return object.Value{}, in.raise(errors.TypeError,
		"float() argument must be a string or a real number, not '%s'", v.Kind().TypeName())
}

func builtinHash(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("hash", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	h, err := in.store.Hash(args[0])
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return object.Int(int64(h)), nil
}

func builtinID(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("id", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	v := args[0]
	if v.IsHeap() {
		return object.Int(int64(v.Handle())), nil
	}
	// Immediates get a stable tag derived from kind and payload.
	h, err := in.store.Hash(v)
	if err != nil {
		return object.Int(int64(v.Kind())), nil
	}
	return object.Int(int64(h&0x7fffffff) + int64(v.Kind())<<32), nil
}

func builtinInt(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("int", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 0 {
		return object.Int(0), nil
	}
	v := args[0]
	switch v.Kind() {
	case object.KindInt:
		return v, nil
	case object.KindBool:
		return object.Int(v.AsInt()), nil
	case object.KindFloat:
		// Truncation toward zero.
		return object.Int(int64(math.Trunc(v.AsFloat()))), nil
	case object.KindStr:
		text := strings.TrimSpace(in.store.StrVal(v))
		text = strings.ReplaceAll(text, "_", "")
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return object.Value{}, in.raise(errors.ValueError,
				"invalid literal for int() with base 10: %s", in.store.Repr(v))
		}
		return object.Int(n), nil
	}
	return object.Value{}, in.raise(errors.TypeError,
		"int() argument must be a string or a number, not '%s'", v.Kind().TypeName())
}

func builtinIsinstance(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isinstance", args, 2, 2); err != nil {
		return object.Value{}, err
	}
	v, t := args[0], args[1]
	if t.Kind() == object.KindTuple {
		for _, e := range in.store.Elems(t) {
			ok, err := in.instanceOf(v, e)
			if err != nil {
				return object.Value{}, err
			}
			if ok {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	}
	ok, err := in.instanceOf(v, t)
	if err != nil {
		return object.Value{}, err
	}
	return object.Bool(ok), nil
}

func (in *Interp) instanceOf(v, t object.Value) (bool, error) {
	if t.Kind() != object.KindBuiltin {
		return false, in.raise(errors.TypeError, "isinstance() arg 2 must be a type or tuple of types")
	}
	name := t.BuiltinName()
	if v.Kind() == object.KindException {
		exc := in.store.ExceptionVal(v)
		return name == "Exception" || name == exc.Kind, nil
	}
	switch name {
	case "bool":
		return v.Kind() == object.KindBool, nil
	case "int":
		// bool is an int subtype.
		return v.Kind() == object.KindInt || v.Kind() == object.KindBool, nil
	case "float":
		return v.Kind() == object.KindFloat, nil
	case "str":
		return v.Kind() == object.KindStr, nil
	case "bytes":
		return v.Kind() == object.KindBytes, nil
	case "list":
		return v.Kind() == object.KindList, nil
	case "tuple":
		return v.Kind() == object.KindTuple, nil
	case "dict":
		return v.Kind() == object.KindDict, nil
	case "set":
		return v.Kind() == object.KindSet, nil
	case "range":
		return v.Kind() == object.KindRange, nil
	}
	return false, in.raise(errors.TypeError, "isinstance() arg 2 must be a type or tuple of types")
}

func builtinLen(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("len", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	n := in.store.Len(args[0])
	if n < 0 {
		return object.Value{}, in.raise(errors.TypeError, "object of type '%s' has no len()", args[0].Kind().TypeName())
	}
	return object.Int(int64(n)), nil
}

func builtinList(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("list", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	var elems []object.Value
	if len(args) == 1 {
		var err error
		elems, err = in.collect(args[0])
		if err != nil {
			return object.Value{}, err
		}
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func builtinMap(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if len(args) < 2 {
		return object.Value{}, in.raise(errors.TypeError, "map() must have at least two arguments.")
	}
	fn := args[0]
	columns := make([][]object.Value, len(args)-1)
	shortest := -1
	for i, src := range args[1:] {
		col, err := in.collect(src)
		if err != nil {
			return object.Value{}, err
		}
		columns[i] = col
		if shortest < 0 || len(col) < shortest {
			shortest = len(col)
		}
	}
	out := make([]object.Value, shortest)
	row := make([]object.Value, len(columns))
	for i := 0; i < shortest; i++ {
		for c := range columns {
			row[c] = columns[c][i]
		}
		r, err := in.callValue(fn, row, nil)
		if err != nil {
			return object.Value{}, err
		}
		out[i] = r
	}
	lv, err := in.store.NewList(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func builtinMax(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	return in.minmax("max", args, kwargs, 1)
}

func builtinMin(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	return in.minmax("min", args, kwargs, -1)
}

// minmax implements min and max over one iterable or several arguments,
// with key= and default=.
func (in *Interp) minmax(name string, args []object.Value, kwargs []kwarg, want int) (object.Value, error) {
	var key object.Value
	if v, ok := kwargLookup(kwargs, "key"); ok {
		key = v
	}
	deflt, hasDefault := kwargLookup(kwargs, "default")

	var elems []object.Value
	switch len(args) {
	case 0:
		return object.Value{}, in.raise(errors.TypeError, "%s expected at least 1 argument, got 0", name)
	case 1:
		var err error
		elems, err = in.collect(args[0])
		if err != nil {
			return object.Value{}, err
		}
	default:
		elems = args
	}
	if len(elems) == 0 {
		if hasDefault {
			return deflt, nil
		}
		return object.Value{}, in.raise(errors.ValueError, "%s() arg is an empty sequence", name)
	}
	best := elems[0]
	bestKey, err := in.applyKey(key, best)
	if err != nil {
		return object.Value{}, err
	}
	for _, e := range elems[1:] {
		ek, err := in.applyKey(key, e)
		if err != nil {
			return object.Value{}, err
		}
		cmp, err := in.store.Compare(ek, bestKey)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		if (want > 0 && cmp > 0) || (want < 0 && cmp < 0) {
			best, bestKey = e, ek
		}
	}
	return best, nil
}

func (in *Interp) applyKey(key, v object.Value) (object.Value, error) {
	if !key.IsValid() || key.IsNone() {
		return v, nil
	}
	return in.callValue(key, []object.Value{v}, nil)
}

func builtinOrd(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("ord", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	if args[0].Kind() != object.KindStr {
		return object.Value{}, in.raise(errors.TypeError,
			"ord() expected string of length 1, but %s found", args[0].Kind().TypeName())
	}
	s := in.store.StrVal(args[0])
	if utf8.RuneCountInString(s) != 1 {
		return object.Value{}, in.raise(errors.TypeError,
			"ord() expected a character, but string of length %d found", utf8.RuneCountInString(s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	return object.Int(int64(r)), nil
}

func builtinPow(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("pow", args, 2, 3); err != nil {
		return object.Value{}, err
	}
	v, err := in.binaryOp("**", args[0], args[1])
	if err != nil {
		return object.Value{}, err
	}
	if len(args) == 3 {
		return in.binaryOp("%", v, args[2])
	}
	return v, nil
}

// builtinPrint assembles the output line and hands it to the host print
// callback; with no callback installed the output is discarded.
func builtinPrint(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	sep := " "
	end := "\n"
	for _, kw := range kwargs {
		switch kw.name {
		case "sep":
			if kw.value.IsNone() {
				break
			}
			if kw.value.Kind() != object.KindStr {
				return object.Value{}, in.raise(errors.TypeError,
					"sep must be None or a string, not %s", kw.value.Kind().TypeName())
			}
			sep = in.store.StrVal(kw.value)
		case "end":
			if kw.value.IsNone() {
				break
			}
			if kw.value.Kind() != object.KindStr {
				return object.Value{}, in.raise(errors.TypeError,
					"end must be None or a string, not %s", kw.value.Kind().TypeName())
			}
			end = in.store.StrVal(kw.value)
		default:
			return object.Value{}, in.raise(errors.TypeError,
				"'%s' is an invalid keyword argument for print()", kw.name)
		}
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(in.store.Str(a))
	}
	sb.WriteString(end)
	if in.print != nil {
		in.print("stdout", sb.String())
	}
	return object.None(), nil
}

func builtinRange(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("range", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	nums := make([]int64, len(args))
	for i, a := range args {
		if a.Kind() != object.KindInt && a.Kind() != object.KindBool {
			return object.Value{}, in.raise(errors.TypeError,
				"'%s' object cannot be interpreted as an integer", a.Kind().TypeName())
		}
		nums[i] = a.AsInt()
	}
	start, stop, step := int64(0), int64(0), int64(1)
	switch len(nums) {
	case 1:
		stop = nums[0]
	case 2:
		start, stop = nums[0], nums[1]
	case 3:
		start, stop, step = nums[0], nums[1], nums[2]
		if step == 0 {
			return object.Value{}, in.raise(errors.ValueError, "range() arg 3 must not be zero")
		}
	}
	v, err := in.store.NewRange(start, stop, step)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func builtinRepr(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("repr", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	v, err := in.store.NewStr(in.store.Repr(args[0]))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func builtinReversed(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("reversed", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	switch args[0].Kind() {
	case object.KindList, object.KindTuple, object.KindStr, object.KindBytes, object.KindRange:
	default:
		return object.Value{}, in.raise(errors.TypeError,
			"argument to reversed() must be a sequence")
	}
	elems, err := in.collect(args[0])
	if err != nil {
		return object.Value{}, err
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func builtinRound(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("round", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	v := args[0]
	if !v.IsNumber() {
		return object.Value{}, in.raise(errors.TypeError,
			"type %s doesn't define __round__ method", v.Kind().TypeName())
	}
	if len(args) == 1 || args[1].IsNone() {
		if v.Kind() != object.KindFloat {
			return object.Int(v.AsInt()), nil
		}
		// Round half to even.
		return object.Int(int64(math.RoundToEven(v.AsFloat()))), nil
	}
	if args[1].Kind() != object.KindInt && args[1].Kind() != object.KindBool {
		return object.Value{}, in.raise(errors.TypeError,
			"'%s' object cannot be interpreted as an integer", args[1].Kind().TypeName())
	}
	if v.Kind() != object.KindFloat {
		return v, nil
	}
	shift := math.Pow(10, float64(args[1].AsInt()))
	return object.Float(math.RoundToEven(v.AsFloat()*shift) / shift), nil
}

func builtinSet(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("set", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	sv, err := in.store.NewSet()
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(sv)
	if len(args) == 1 {
		elems, err := in.collect(args[0])
		if err != nil {
			return object.Value{}, err
		}
		for _, e := range elems {
			if err := in.store.SetAdd(sv, e); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
	}
	return sv, nil
}

// builtinSorted is a stable sort over any iterable with optional key and
// reverse keyword arguments.
func builtinSorted(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("sorted", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	elems, err := in.collect(args[0])
	if err != nil {
		return object.Value{}, err
	}
	sortedElems, err := in.sortValues(elems, kwargs)
	if err != nil {
		return object.Value{}, err
	}
	lv, lerr := in.store.NewList(sortedElems)
	if lerr != nil {
		return object.Value{}, in.raiseFrom(lerr)
	}
	return in.track(lv), nil
}

// sortValues sorts a copy of elems stably, honoring key= and reverse=.
func (in *Interp) sortValues(elems []object.Value, kwargs []kwarg) ([]object.Value, error) {
	var key object.Value
	reverse := false
	for _, kw := range kwargs {
		switch kw.name {
		case "key":
			key = kw.value
		case "reverse":
			reverse = in.truthy(kw.value)
		default:
			return nil, in.raise(errors.TypeError, "'%s' is an invalid keyword argument for sort", kw.name)
		}
	}
	keys := make([]object.Value, len(elems))
	for i, e := range elems {
		k, err := in.applyKey(key, e)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	// Sort an index permutation so the key slice stays aligned and the
	// comparator can thread errors out.
	out := make([]object.Value, len(elems))
	idx := make([]int, len(elems))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		cmp, err := in.store.Compare(keys[idx[a]], keys[idx[b]])
		if err != nil {
			sortErr = in.raiseFrom(err)
			return false
		}
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	for i, j := range idx {
		out[i] = elems[j]
	}
	return out, nil
}

func builtinStr(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("str", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 0 {
		return object.InlineStr(""), nil
	}
	if args[0].Kind() == object.KindStr {
		return args[0], nil
	}
	v, err := in.store.NewStr(in.store.Str(args[0]))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func builtinSum(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("sum", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	elems, err := in.collect(args[0])
	if err != nil {
		return object.Value{}, err
	}
	acc := object.Int(0)
	if len(args) == 2 {
		if args[1].Kind() == object.KindStr {
			return object.Value{}, in.raise(errors.TypeError,
				"sum() can't sum strings [use ''.join(seq) instead]")
		}
		acc = args[1]
	}
	for _, e := range elems {
		if e.Kind() == object.KindStr {
			return object.Value{}, in.raise(errors.TypeError,
				"unsupported operand type(s) for +: 'int' and 'str'")
		}
		acc, err = in.binaryOp("+", acc, e)
		if err != nil {
			return object.Value{}, err
		}
	}
	return acc, nil
}

func builtinTuple(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("tuple", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	var elems []object.Value
	if len(args) == 1 {
		var err error
		elems, err = in.collect(args[0])
		if err != nil {
			return object.Value{}, err
		}
	}
	tv, err := in.store.NewTuple(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(tv), nil
}

func builtinType(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("type", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	v := args[0]
	if v.Kind() == object.KindException {
		return object.Builtin(in.store.ExceptionVal(v).Kind), nil
	}
	return object.Builtin(v.Kind().TypeName()), nil
}

func builtinZip(in *Interp, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if len(args) == 0 {
		lv, err := in.store.NewList(nil)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(lv), nil
	}
	columns := make([][]object.Value, len(args))
	shortest := -1
	for i, src := range args {
		col, err := in.collect(src)
		if err != nil {
			return object.Value{}, err
		}
		columns[i] = col
		if shortest < 0 || len(col) < shortest {
			shortest = len(col)
		}
	}
	out := make([]object.Value, shortest)
	for i := 0; i < shortest; i++ {
		row := make([]object.Value, len(columns))
		for c := range columns {
			row[c] = columns[c][i]
		}
		t, err := in.store.NewTuple(row)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		out[i] = in.track(t)
	}
	lv, err := in.store.NewList(out)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}
