// internal/interp/interp.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

// PrintFunc receives assembled print output. The stream tag is always
// "stdout".
type PrintFunc func(stream, text string)

// ExternalFunc is the host callback shape for declared external
// functions: positional arguments and keyword arguments arrive as native
// Go values, the result is converted back into the interpreter.
type ExternalFunc func(args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// Interp executes one resolved program against a fresh object store.
// It is single-threaded; one Run per instance.
type Interp struct {
	store *object.Store
	gov   *object.Governor
	prog  *parser.Program

	globals *frame
	print   PrintFunc

	externals     map[string]ExternalFunc
	haveExternals bool

	// temps tracks every heap value an expression produced and has not
	// yet handed to a durable owner; statements release their span on
	// exit so transient garbage never outlives a step.
	temps []object.Value

	// result is the value of the last top-level expression statement.
	result    object.Value
	hasResult bool

	// handling is the exception currently being handled, for bare raise.
	handling *raised
}

// frame is one activation record: a flat slot array sized by the
// resolver. The module frame doubles as the globals.
type frame struct {
	fn    *object.Function
	slots []object.Value
}

// New wires an interpreter to a program and a governed store.
func New(prog *parser.Program, store *object.Store, print PrintFunc, externals map[string]ExternalFunc) *Interp {
	in := &Interp{
		store:         store,
		gov:           store.Governor(),
		prog:          prog,
		print:         print,
		externals:     externals,
		haveExternals: externals != nil,
		globals:       &frame{slots: make([]object.Value, prog.NumGlobals)},
	}
	return in
}

// Store exposes the object store for input loading and leak checks.
func (in *Interp) Store() *object.Store { return in.store }

// BindInput converts a native input value and binds it into its module
// slot before execution starts.
func (in *Interp) BindInput(slot int, native interface{}) error {
	mark := in.mark()
	defer in.flush(mark)
	v, err := in.FromNative(native)
	if err != nil {
		return typedError(err)
	}
	in.setSlot(in.globals, slot, v)
	return nil
}

// ToNativeResult converts the final program value for the host.
func (in *Interp) ToNativeResult(v object.Value) (interface{}, error) {
	native, err := in.ToNative(v)
	if err != nil {
		return nil, typedError(err)
	}
	return native, nil
}

// typedError converts an in-flight exception into the taxonomy error the
// host API reports.
func typedError(err error) error {
	if r, ok := err.(*raised); ok {
		return errors.New(r.kind, "%s", r.msg)
	}
	return err
}

// Run executes the module body and returns the value of its final
// statement when that statement is an expression, None otherwise. The
// value stays owned by the store; the caller converts it, then calls Finish.
func (in *Interp) Run() (object.Value, error) {
	err := in.execBlock(in.globals, in.prog.Body)
	if err != nil {
		in.cleanup()
		if r, ok := err.(*raised); ok {
			out := errors.New(r.kind, "%s", r.msg)
			in.releaseRaised(r)
			in.finalCollect()
			return object.Value{}, out
		}
		in.finalCollect()
		return object.Value{}, err
	}
	if !in.hasResult {
		return object.None(), nil
	}
	// A pending result from an earlier expression does not count once a
	// non-expression statement ends the module; Finish still releases it.
	if _, ok := in.prog.Body[len(in.prog.Body)-1].(*parser.ExprStmt); !ok {
		return object.None(), nil
	}
	return in.result, nil
}

// Finish releases the run's remaining roots and runs the end-of-program
// collection that verifies no cycles leak.
func (in *Interp) Finish() {
	in.cleanup()
	in.finalCollect()
}

func (in *Interp) cleanup() {
	in.flush(0)
	if in.hasResult {
		in.store.Release(in.result)
		in.result = object.Value{}
		in.hasResult = false
	}
	for i, v := range in.globals.slots {
		in.store.Release(v)
		in.globals.slots[i] = object.Value{}
	}
}

func (in *Interp) finalCollect() {
	in.store.Collect()
}

// ---- temp tracking ----

func (in *Interp) track(v object.Value) object.Value {
	if v.IsHeap() {
		in.temps = append(in.temps, v)
	}
	return v
}

func (in *Interp) mark() int { return len(in.temps) }

func (in *Interp) flush(mark int) {
	for i := len(in.temps) - 1; i >= mark; i-- {
		in.store.Release(in.temps[i])
	}
	in.temps = in.temps[:mark]
}

// ---- frames ----

func (in *Interp) setSlot(fr *frame, idx int, v object.Value) {
	old := fr.slots[idx]
	fr.slots[idx] = in.store.Retain(v)
	in.store.Release(old)
}

func (in *Interp) clearSlot(fr *frame, idx int) {
	in.store.Release(fr.slots[idx])
	fr.slots[idx] = object.Value{}
}

// ---- statement execution ----

func (in *Interp) execBlock(fr *frame, body []parser.Stmt) error {
	for _, s := range body {
		if err := in.execStmt(fr, s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interp) execStmt(fr *frame, s parser.Stmt) error {
	if err := in.gov.Tick(); err != nil {
		return in.raiseFrom(err)
	}
	if in.gov.NeedsCollection() {
		in.store.Collect()
	}
	mark := in.mark()
	defer in.flush(mark)

	switch st := s.(type) {
	case *parser.ExprStmt:
		v, err := in.evalExpr(fr, st.X)
		if err != nil {
			return err
		}
		if fr == in.globals {
			// Candidate program result: the last top-level expression.
			if in.hasResult {
				in.store.Release(in.result)
			}
			in.result = in.store.Retain(v)
			in.hasResult = true
		}
		return nil

	case *parser.Assign:
		v, err := in.evalExpr(fr, st.Value)
		if err != nil {
			return err
		}
		return in.assign(fr, st.Target, v)

	case *parser.AugAssign:
		return in.execAugAssign(fr, st)

	case *parser.If:
		cond, err := in.evalExpr(fr, st.Cond)
		if err != nil {
			return err
		}
		if in.truthy(cond) {
			return in.execBlock(fr, st.Then)
		}
		return in.execBlock(fr, st.Else)

	case *parser.While:
		return in.execWhile(fr, st)

	case *parser.For:
		return in.execFor(fr, st)

	case *parser.Break:
		return errBreak

	case *parser.Continue:
		return errContinue

	case *parser.Pass:
		return nil

	case *parser.Return:
		ret := object.None()
		if st.X != nil {
			v, err := in.evalExpr(fr, st.X)
			if err != nil {
				return err
			}
			ret = in.store.Retain(v)
		}
		return &returnSignal{value: ret}

	case *parser.Raise:
		return in.execRaise(fr, st)

	case *parser.Assert:
		cond, err := in.evalExpr(fr, st.Cond)
		if err != nil {
			return err
		}
		if in.truthy(cond) {
			return nil
		}
		if st.Msg != nil {
			msg, err := in.evalExpr(fr, st.Msg)
			if err != nil {
				return err
			}
			return in.raise(errors.AssertionError, "%s", in.store.Str(msg))
		}
		return in.raise(errors.AssertionError, "")

	case *parser.Try:
		return in.execTry(fr, st)

	case *parser.FuncDef:
		return in.execFuncDef(fr, st)

	case *parser.Del:
		return in.execDel(fr, st)
	}
	return in.raise(errors.RuntimeError, "unknown statement")
}

func (in *Interp) execWhile(fr *frame, st *parser.While) error {
	for {
		if err := in.gov.Tick(); err != nil {
			return in.raiseFrom(err)
		}
		iterMark := in.mark()
		cond, err := in.evalExpr(fr, st.Cond)
		if err != nil {
			in.flush(iterMark)
			return err
		}
		ok := in.truthy(cond)
		in.flush(iterMark)
		if !ok {
			// Normal exit: the else clause runs.
			return in.execBlock(fr, st.Else)
		}
		err = in.execBlock(fr, st.Body)
		if err == errBreak {
			return nil
		}
		if err != nil && err != errContinue {
			return err
		}
	}
}

func (in *Interp) execFor(fr *frame, st *parser.For) error {
	iterable, err := in.evalExpr(fr, st.Iter)
	if err != nil {
		return err
	}
	it, err := in.getIter(iterable)
	if err != nil {
		return err
	}
	for {
		if err := in.gov.Tick(); err != nil {
			return in.raiseFrom(err)
		}
		iterMark := in.mark()
		v, ok, err := in.iterNext(it)
		if err != nil {
			in.flush(iterMark)
			return err
		}
		if !ok {
			in.flush(iterMark)
			return in.execBlock(fr, st.Else)
		}
		if err := in.assign(fr, st.Target, v); err != nil {
			in.flush(iterMark)
			return err
		}
		err = in.execBlock(fr, st.Body)
		in.flush(iterMark)
		if err == errBreak {
			return nil
		}
		if err != nil && err != errContinue {
			return err
		}
	}
}

func (in *Interp) execFuncDef(fr *frame, st *parser.FuncDef) error {
	params := make([]string, len(st.Params))
	var defaults []object.Value
	for i, p := range st.Params {
		params[i] = p.Name
		if p.Default != nil {
			dv, err := in.evalExpr(fr, p.Default)
			if err != nil {
				return err
			}
			defaults = append(defaults, dv)
		}
	}
	fn := &object.Function{
		Name:      st.Name,
		Params:    params,
		Defaults:  defaults,
		NumLocals: st.NumLocals,
		Body:      st.Body,
	}
	fv, err := in.store.NewFunction(fn)
	if err != nil {
		return in.raiseFrom(err)
	}
	in.track(fv)
	in.setSlot(fr, st.Slot, fv)
	return nil
}

func (in *Interp) execDel(fr *frame, st *parser.Del) error {
	switch t := st.Target.(type) {
	case *parser.Name:
		target, slot := in.slotFor(fr, t)
		if target == nil || !target.slots[slot].IsValid() {
			return in.raise(errors.NameError, "name '%s' is not defined", t.Name)
		}
		in.clearSlot(target, slot)
		return nil
	case *parser.Index:
		base, err := in.evalExpr(fr, t.X)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(fr, t.Idx)
		if err != nil {
			return err
		}
		return in.deleteItem(base, idx)
	}
	return in.raise(errors.SyntaxError, "cannot delete this expression")
}

// slotFor maps a resolved name to its frame and slot.
func (in *Interp) slotFor(fr *frame, n *parser.Name) (*frame, int) {
	switch n.Res.Scope {
	case parser.ScopeLocal:
		return fr, n.Res.Slot
	case parser.ScopeGlobal:
		return in.globals, n.Res.Slot
	}
	return nil, 0
}

// assign binds an evaluated value to a target: a name slot, an indexed
// element, an attribute, or an unpacking pattern.
func (in *Interp) assign(fr *frame, target parser.Expr, v object.Value) error {
	switch t := target.(type) {
	case *parser.Name:
		dst, slot := in.slotFor(fr, t)
		if dst == nil {
			return in.raise(errors.NameError, "cannot assign to name '%s'", t.Name)
		}
		in.setSlot(dst, slot, v)
		return nil
	case *parser.Index:
		base, err := in.evalExpr(fr, t.X)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(fr, t.Idx)
		if err != nil {
			return err
		}
		return in.setItem(base, idx, v)
	case *parser.Attr:
		return in.raise(errors.AttributeError, "cannot set attributes on '%s' objects", "object")
	case *parser.TupleLit:
		return in.unpack(fr, t.Elems, v)
	case *parser.ListLit:
		return in.unpack(fr, t.Elems, v)
	}
	return in.raise(errors.SyntaxError, "cannot assign to this expression")
}

// unpack iterates the right-hand side and binds element-wise; arity must
// match exactly.
func (in *Interp) unpack(fr *frame, targets []parser.Expr, v object.Value) error {
	it, err := in.getIter(v)
	if err != nil {
		if r, ok := err.(*raised); ok && r.kind == errors.TypeError {
			in.releaseRaised(r)
			return in.raise(errors.TypeError, "cannot unpack non-iterable %s object", v.Kind().TypeName())
		}
		return err
	}
	for i, t := range targets {
		ev, ok, err := in.iterNext(it)
		if err != nil {
			return err
		}
		if !ok {
			return in.raise(errors.ValueError, "not enough values to unpack (expected %d, got %d)", len(targets), i)
		}
		if err := in.assign(fr, t, ev); err != nil {
			return err
		}
	}
	if _, ok, err := in.iterNext(it); err != nil {
		return err
	} else if ok {
		return in.raise(errors.ValueError, "too many values to unpack (expected %d)", len(targets))
	}
	return nil
}

func (in *Interp) execAugAssign(fr *frame, st *parser.AugAssign) error {
	rhs, err := in.evalExpr(fr, st.Value)
	if err != nil {
		return err
	}
	switch t := st.Target.(type) {
	case *parser.Name:
		dst, slot := in.slotFor(fr, t)
		if dst == nil || !dst.slots[slot].IsValid() {
			return in.raise(errors.NameError, "name '%s' is not defined", t.Name)
		}
		cur := dst.slots[slot]
		// In-place mutation for mutable sequences.
		if cur.Kind() == object.KindList && st.Op == "+" {
			return in.listExtend(cur, rhs)
		}
		if cur.Kind() == object.KindList && st.Op == "*" &&
			(rhs.Kind() == object.KindInt || rhs.Kind() == object.KindBool) {
			return in.listRepeatInPlace(cur, rhs.AsInt())
		}
		res, err := in.binaryOp(st.Op, cur, rhs)
		if err != nil {
			return err
		}
		in.setSlot(dst, slot, res)
		return nil
	case *parser.Index:
		base, err := in.evalExpr(fr, t.X)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(fr, t.Idx)
		if err != nil {
			return err
		}
		cur, err := in.getItem(base, idx)
		if err != nil {
			return err
		}
		res, err := in.binaryOp(st.Op, cur, rhs)
		if err != nil {
			return err
		}
		return in.setItem(base, idx, res)
	}
	return in.raise(errors.SyntaxError, "illegal target for augmented assignment")
}
