// internal/interp/exceptions.go
package interp

import (
	goerrors "errors"

	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

// Loop and return control flow travels as sentinel errors through the
// same channel as exceptions; execWhile/execFor/callFunction intercept
// them before they can escape.
var (
	errBreak    = goerrors.New("break")
	errContinue = goerrors.New("continue")
)

type returnSignal struct {
	value object.Value // owned by the signal until the caller takes it
}

func (*returnSignal) Error() string { return "return" }

// raised is an exception in flight. The instance is materialised lazily;
// once set it holds one reference released when the exception is caught
// and handled or surfaced to the host.
type raised struct {
	kind errors.Kind
	msg  string
	exc  object.Value
}

func (r *raised) Error() string { return string(r.kind) + ": " + r.msg }

// raise starts unwinding with a fresh exception of the given kind.
func (in *Interp) raise(kind errors.Kind, format string, args ...interface{}) error {
	if format == "" {
		return &raised{kind: kind}
	}
	return &raised{kind: kind, msg: errors.New(kind, format, args...).Message}
}

// raiseFrom adapts a typed runtime error (store, governor, conversion)
// into an in-flight exception.
func (in *Interp) raiseFrom(err error) error {
	if r, ok := err.(*raised); ok {
		return r
	}
	return &raised{kind: errors.KindOf(err), msg: errors.MessageOf(err)}
}

// raiseValue starts unwinding with an existing exception instance.
func (in *Interp) raiseValue(exc object.Value) error {
	e := in.store.ExceptionVal(exc)
	return &raised{
		kind: errors.Kind(e.Kind),
		msg:  in.store.ExceptionMessage(exc),
		exc:  in.store.Retain(exc),
	}
}

func (in *Interp) releaseRaised(r *raised) {
	if r.exc.IsValid() {
		in.store.Release(r.exc)
		r.exc = object.Value{}
	}
}

// materialize builds the exception instance for "as" bindings and
// attribute access.
func (in *Interp) materialize(r *raised) (object.Value, error) {
	if r.exc.IsValid() {
		return r.exc, nil
	}
	var args []object.Value
	if r.msg != "" {
		msg, err := in.store.NewStr(r.msg)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		args = append(args, msg)
		defer in.store.Release(msg)
	}
	exc, err := in.store.NewException(string(r.kind), args)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	r.exc = exc
	return exc, nil
}

func (in *Interp) execRaise(fr *frame, st *parser.Raise) error {
	if st.Exc == nil {
		// Bare raise: re-raise the exception being handled.
		if in.handling == nil {
			return in.raise(errors.RuntimeError, "No active exception to re-raise")
		}
		r := in.handling
		out := &raised{kind: r.kind, msg: r.msg}
		if r.exc.IsValid() {
			out.exc = in.store.Retain(r.exc)
		}
		return out
	}
	v, err := in.evalExpr(fr, st.Exc)
	if err != nil {
		return err
	}
	var out *raised
	switch v.Kind() {
	case object.KindException:
		out = in.raiseValue(v).(*raised)
	case object.KindBuiltin:
		// raise TypeName: instantiate with no message.
		name := v.BuiltinName()
		kind, ok := errors.LookupKind(name)
		if !ok && name == "Exception" {
			kind, ok = errors.RuntimeError, true
		}
		if !ok {
			return in.raise(errors.TypeError, "exceptions must derive from BaseException")
		}
		out = &raised{kind: kind}
	default:
		return in.raise(errors.TypeError, "exceptions must derive from BaseException")
	}
	if st.Cause != nil {
		cause, err := in.evalExpr(fr, st.Cause)
		if err != nil {
			in.releaseRaised(out)
			return err
		}
		exc, merr := in.materialize(out)
		if merr != nil {
			return merr
		}
		causeExc := cause
		if cause.Kind() != object.KindException && cause.Kind() != object.KindNone {
			in.releaseRaised(out)
			return in.raise(errors.TypeError, "exception causes must derive from BaseException")
		}
		in.store.SetExceptionCause(exc, causeExc)
	}
	return out
}

// execTry implements the handler-stack semantics: except clauses are
// tested innermost-first in source order, else runs on clean completion,
// finally runs on every exit path and an exception raised inside it
// replaces whatever was propagating.
func (in *Interp) execTry(fr *frame, st *parser.Try) error {
	err := in.execBlock(fr, st.Body)

	if r, ok := err.(*raised); ok {
		for i := range st.Handlers {
			h := &st.Handlers[i]
			if !handlerMatches(h, r.kind) {
				continue
			}
			if h.Name != "" {
				exc, merr := in.materialize(r)
				if merr != nil {
					err = merr
					break
				}
				in.setSlot(fr, h.NameSlot, exc)
			}
			prev := in.handling
			in.handling = r
			herr := in.execBlock(fr, h.Body)
			in.handling = prev
			if h.Name != "" {
				// The binding only exists within the clause body.
				in.clearSlot(fr, h.NameSlot)
			}
			if herr != err {
				in.releaseRaised(r)
			}
			err = herr
			break
		}
	} else if err == nil {
		err = in.execBlock(fr, st.Else)
	}

	if len(st.Finally) > 0 {
		ferr := in.execBlock(fr, st.Finally)
		if ferr != nil {
			// The finally outcome replaces the in-flight one.
			switch e := err.(type) {
			case *raised:
				if e != ferr {
					in.releaseRaised(e)
				}
			case *returnSignal:
				in.store.Release(e.value)
			}
			err = ferr
		}
	}
	return err
}

func handlerMatches(h *parser.ExceptClause, kind errors.Kind) bool {
	if len(h.Kinds) == 0 {
		return true
	}
	for _, name := range h.Kinds {
		if name == "Exception" {
			return true
		}
		if k, ok := errors.LookupKind(name); ok && k == kind {
			return true
		}
	}
	return false
}
