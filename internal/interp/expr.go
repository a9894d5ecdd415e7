// internal/interp/expr.go
package interp

import (
	"strings"

	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

// evalExpr evaluates one expression node. Every returned heap value is
// owned by the temp list of the enclosing statement.
func (in *Interp) evalExpr(fr *frame, e parser.Expr) (object.Value, error) {
	switch ex := e.(type) {
	case *parser.IntLit:
		return object.Int(ex.Value), nil
	case *parser.FloatLit:
		return object.Float(ex.Value), nil
	case *parser.BoolLit:
		return object.Bool(ex.Value), nil
	case *parser.NoneLit:
		return object.None(), nil
	case *parser.StrLit:
		v, err := in.store.NewStr(ex.Value)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case *parser.BytesLit:
		v, err := in.store.NewBytes(ex.Value)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case *parser.FStringLit:
		return in.evalFString(fr, ex)
	case *parser.Name:
		return in.evalName(fr, ex)
	case *parser.ListLit:
		elems, err := in.evalExprs(fr, ex.Elems)
		if err != nil {
			return object.Value{}, err
		}
		v, err := in.store.NewList(elems)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case *parser.TupleLit:
		elems, err := in.evalExprs(fr, ex.Elems)
		if err != nil {
			return object.Value{}, err
		}
		v, err := in.store.NewTuple(elems)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case *parser.SetLit:
		set, err := in.store.NewSet()
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(set)
		for _, el := range ex.Elems {
			v, err := in.evalExpr(fr, el)
			if err != nil {
				return object.Value{}, err
			}
			if err := in.store.SetAdd(set, v); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
		return set, nil
	case *parser.DictLit:
		dict, err := in.store.NewDict()
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(dict)
		for i := range ex.Keys {
			k, err := in.evalExpr(fr, ex.Keys[i])
			if err != nil {
				return object.Value{}, err
			}
			v, err := in.evalExpr(fr, ex.Values[i])
			if err != nil {
				return object.Value{}, err
			}
			if err := in.store.DictSet(dict, k, v); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
		return dict, nil
	case *parser.Unary:
		return in.evalUnary(fr, ex)
	case *parser.Binary:
		l, err := in.evalExpr(fr, ex.Left)
		if err != nil {
			return object.Value{}, err
		}
		r, err := in.evalExpr(fr, ex.Right)
		if err != nil {
			return object.Value{}, err
		}
		return in.binaryOp(ex.Op, l, r)
	case *parser.BoolOp:
		l, err := in.evalExpr(fr, ex.Left)
		if err != nil {
			return object.Value{}, err
		}
		if ex.Op == "and" {
			if !in.truthy(l) {
				return l, nil
			}
		} else {
			if in.truthy(l) {
				return l, nil
			}
		}
		return in.evalExpr(fr, ex.Right)
	case *parser.Compare:
		return in.evalCompare(fr, ex)
	case *parser.Cond:
		c, err := in.evalExpr(fr, ex.Cond)
		if err != nil {
			return object.Value{}, err
		}
		if in.truthy(c) {
			return in.evalExpr(fr, ex.Then)
		}
		return in.evalExpr(fr, ex.Else)
	case *parser.Index:
		base, err := in.evalExpr(fr, ex.X)
		if err != nil {
			return object.Value{}, err
		}
		idx, err := in.evalExpr(fr, ex.Idx)
		if err != nil {
			return object.Value{}, err
		}
		return in.getItem(base, idx)
	case *parser.SliceExpr:
		return in.evalSlice(fr, ex)
	case *parser.Attr:
		base, err := in.evalExpr(fr, ex.X)
		if err != nil {
			return object.Value{}, err
		}
		return in.getAttr(base, ex.Name)
	case *parser.Call:
		return in.evalCall(fr, ex)
	}
	return object.Value{}, in.raise(errors.RuntimeError, "unknown expression")
}

func (in *Interp) evalExprs(fr *frame, list []parser.Expr) ([]object.Value, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]object.Value, len(list))
	for i, e := range list {
		v, err := in.evalExpr(fr, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (in *Interp) evalName(fr *frame, n *parser.Name) (object.Value, error) {
	switch n.Res.Scope {
	case parser.ScopeLocal:
		v := fr.slots[n.Res.Slot]
		if !v.IsValid() {
			return object.Value{}, in.raise(errors.NameError, "name '%s' is not defined", n.Name)
		}
		return in.track(in.store.Retain(v)), nil
	case parser.ScopeGlobal:
		v := in.globals.slots[n.Res.Slot]
		if !v.IsValid() {
			return object.Value{}, in.raise(errors.NameError, "name '%s' is not defined", n.Name)
		}
		return in.track(in.store.Retain(v)), nil
	case parser.ScopeBuiltin:
		return object.Builtin(n.Name), nil
	case parser.ScopeExternal:
		v, err := in.store.NewExternal(n.Name)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	}
	return object.Value{}, in.raise(errors.NameError, "name '%s' is not defined", n.Name)
}

func (in *Interp) evalFString(fr *frame, fs *parser.FStringLit) (object.Value, error) {
	var sb strings.Builder
	for _, part := range fs.Parts {
		if lit, ok := part.(*parser.StrLit); ok {
			sb.WriteString(lit.Value)
			continue
		}
		v, err := in.evalExpr(fr, part)
		if err != nil {
			return object.Value{}, err
		}
		sb.WriteString(in.store.Str(v))
	}
	v, err := in.store.HeapStr(sb.String())
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func (in *Interp) evalUnary(fr *frame, u *parser.Unary) (object.Value, error) {
	x, err := in.evalExpr(fr, u.X)
	if err != nil {
		return object.Value{}, err
	}
	switch u.Op {
	case "not":
		return object.Bool(!in.truthy(x)), nil
	case "-":
		switch x.Kind() {
		case object.KindInt:
			return object.Int(-x.AsInt()), nil
		case object.KindBool:
			return object.Int(-x.AsInt()), nil
		case object.KindFloat:
			return object.Float(-x.AsFloat()), nil
		}
		return object.Value{}, in.raise(errors.TypeError, "bad operand type for unary -: '%s'", x.Kind().TypeName())
	case "+":
		if x.IsNumber() {
			if x.Kind() == object.KindBool {
				return object.Int(x.AsInt()), nil
			}
			return x, nil
		}
		return object.Value{}, in.raise(errors.TypeError, "bad operand type for unary +: '%s'", x.Kind().TypeName())
	}
	return object.Value{}, in.raise(errors.RuntimeError, "unknown unary operator %s", u.Op)
}

func (in *Interp) evalCompare(fr *frame, c *parser.Compare) (object.Value, error) {
	left, err := in.evalExpr(fr, c.First)
	if err != nil {
		return object.Value{}, err
	}
	for i, op := range c.Ops {
		right, err := in.evalExpr(fr, c.Rest[i])
		if err != nil {
			return object.Value{}, err
		}
		ok, err := in.compareOp(op, left, right)
		if err != nil {
			return object.Value{}, err
		}
		if !ok {
			return object.Bool(false), nil
		}
		left = right
	}
	return object.Bool(true), nil
}

func (in *Interp) compareOp(op string, a, b object.Value) (bool, error) {
	switch op {
	case "==":
		eq, err := in.store.DeepEquals(a, b)
		if err != nil {
			return false, in.raiseFrom(err)
		}
		return eq, nil
	case "!=":
		eq, err := in.store.DeepEquals(a, b)
		if err != nil {
			return false, in.raiseFrom(err)
		}
		return !eq, nil
	case "<", "<=", ">", ">=":
		if a.Kind() == object.KindSet && b.Kind() == object.KindSet {
			return in.setOrdering(op, a, b)
		}
		cmp, err := in.store.Compare(a, b)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && e.Kind == errors.TypeError {
				return false, in.raise(errors.TypeError,
					"'%s' not supported between instances of '%s' and '%s'",
					op, a.Kind().TypeName(), b.Kind().TypeName())
			}
			return false, in.raiseFrom(err)
		}
		switch op {
		case "<":
			return cmp < 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">":
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case "is":
		return in.identical(a, b), nil
	case "is not":
		return !in.identical(a, b), nil
	case "in":
		return in.contains(b, a)
	case "not in":
		ok, err := in.contains(b, a)
		return !ok, err
	}
	return false, in.raise(errors.RuntimeError, "unknown comparison %s", op)
}

// identical is the "is" test: heap values compare by cell, immediates by
// payload.
func (in *Interp) identical(a, b object.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	if a.IsHeap() || b.IsHeap() {
		return a.Handle() == b.Handle()
	}
	switch a.Kind() {
	case object.KindNone:
		return true
	case object.KindBool, object.KindInt:
		return a.AsInt() == b.AsInt()
	case object.KindFloat:
		return a.AsFloat() == b.AsFloat()
	case object.KindStr:
		return in.store.StrVal(a) == in.store.StrVal(b)
	case object.KindBuiltin:
		return a.BuiltinName() == b.BuiltinName()
	}
	return false
}

// contains implements "x in container" with key presence for dicts and
// structural equality for sequences.
func (in *Interp) contains(container, x object.Value) (bool, error) {
	switch container.Kind() {
	case object.KindDict:
		_, ok, err := in.store.DictGet(container, x)
		if err != nil {
			return false, in.raiseFrom(err)
		}
		return ok, nil
	case object.KindSet:
		ok, err := in.store.SetContains(container, x)
		if err != nil {
			return false, in.raiseFrom(err)
		}
		return ok, nil
	case object.KindList, object.KindTuple:
		for _, e := range in.store.Elems(container) {
			eq, err := in.store.DeepEquals(e, x)
			if err != nil {
				return false, in.raiseFrom(err)
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case object.KindStr:
		if x.Kind() != object.KindStr {
			return false, in.raise(errors.TypeError,
				"'in <string>' requires string as left operand, not %s", x.Kind().TypeName())
		}
		return strings.Contains(in.store.StrVal(container), in.store.StrVal(x)), nil
	case object.KindBytes:
		if x.Kind() != object.KindInt {
			return false, in.raise(errors.TypeError, "a bytes-like object is required")
		}
		n := x.AsInt()
		for _, b := range in.store.BytesVal(container) {
			if int64(b) == n {
				return true, nil
			}
		}
		return false, nil
	case object.KindRange:
		if !x.IsNumber() || x.Kind() == object.KindFloat {
			return false, nil
		}
		start, stop, step := in.store.RangeVal(container)
		n := x.AsInt()
		// Membership by arithmetic, not a scan.
		if step > 0 {
			return n >= start && n < stop && (n-start)%step == 0, nil
		}
		return n <= start && n > stop && (start-n)%(-step) == 0, nil
	}
	return false, in.raise(errors.TypeError, "argument of type '%s' is not iterable", container.Kind().TypeName())
}

// truthy implements the truthiness rules: None, numeric zero and empty
// containers are false.
func (in *Interp) truthy(v object.Value) bool {
	switch v.Kind() {
	case object.KindNone:
		return false
	case object.KindBool, object.KindInt:
		return v.AsInt() != 0
	case object.KindFloat:
		return v.AsFloat() != 0
	case object.KindStr:
		return in.store.StrVal(v) != ""
	case object.KindBytes:
		return len(in.store.BytesVal(v)) > 0
	case object.KindList, object.KindTuple, object.KindDict, object.KindSet, object.KindRange:
		return in.store.Len(v) > 0
	}
	return true
}
