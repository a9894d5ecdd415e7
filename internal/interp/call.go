// internal/interp/call.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

// kwarg is one evaluated keyword argument.
type kwarg struct {
	name  string
	value object.Value
}

func (in *Interp) evalCall(fr *frame, c *parser.Call) (object.Value, error) {
	callee, err := in.evalExpr(fr, c.Fn)
	if err != nil {
		return object.Value{}, err
	}
	args, err := in.evalExprs(fr, c.Args)
	if err != nil {
		return object.Value{}, err
	}
	var kwargs []kwarg
	for _, kw := range c.Kwargs {
		v, err := in.evalExpr(fr, kw.Value)
		if err != nil {
			return object.Value{}, err
		}
		kwargs = append(kwargs, kwarg{name: kw.Name, value: v})
	}
	return in.callValue(callee, args, kwargs)
}

func (in *Interp) callValue(callee object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	switch callee.Kind() {
	case object.KindBuiltin:
		name := callee.BuiltinName()
		if errors.IsExceptionName(name) {
			return in.constructException(name, args, kwargs)
		}
		fn, ok := builtins[name]
		if !ok {
			return object.Value{}, in.raise(errors.NameError, "name '%s' is not defined", name)
		}
		return fn(in, args, kwargs)
	case object.KindFunc:
		return in.callFunction(callee, args, kwargs)
	case object.KindExternal:
		return in.callExternal(in.store.ExternalVal(callee).Name, args, kwargs)
	case object.KindBound:
		b := in.store.BoundVal(callee)
		return in.callMethod(b.Recv, b.Name, args, kwargs)
	}
	return object.Value{}, in.raise(errors.TypeError, "'%s' object is not callable", callee.Kind().TypeName())
}

// constructException builds an exception instance from a raise or an
// explicit type call like ValueError('bad value').
func (in *Interp) constructException(name string, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if len(kwargs) > 0 {
		return object.Value{}, in.raise(errors.TypeError, "%s() takes no keyword arguments", name)
	}
	kindName := name
	if name == "Exception" {
		kindName = string(errors.RuntimeError)
	}
	exc, err := in.store.NewException(kindName, args)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(exc), nil
}

// callFunction pushes a frame for a user-defined function, binds the
// arguments to parameter slots and executes the body.
func (in *Interp) callFunction(fv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.gov.PushFrame(); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	defer in.gov.PopFrame()

	fn := in.store.FuncVal(fv)
	nParams := len(fn.Params)
	if len(args) > nParams {
		return object.Value{}, in.raise(errors.TypeError,
			"%s() takes %d positional arguments but %d were given", fn.Name, nParams, len(args))
	}
	bound := make([]object.Value, nParams)
	seen := make([]bool, nParams)
	for i, a := range args {
		bound[i] = a
		seen[i] = true
	}
	for _, kw := range kwargs {
		idx := -1
		for i, p := range fn.Params {
			if p == kw.name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return object.Value{}, in.raise(errors.TypeError,
				"%s() got an unexpected keyword argument '%s'", fn.Name, kw.name)
		}
		if seen[idx] {
			return object.Value{}, in.raise(errors.TypeError,
				"%s() got multiple values for argument '%s'", fn.Name, kw.name)
		}
		bound[idx] = kw.value
		seen[idx] = true
	}
	// Defaults align with the parameter tail.
	firstDefault := nParams - len(fn.Defaults)
	for i := 0; i < nParams; i++ {
		if seen[i] {
			continue
		}
		if i >= firstDefault {
			bound[i] = fn.Defaults[i-firstDefault]
			seen[i] = true
			continue
		}
		return object.Value{}, in.raise(errors.TypeError,
			"%s() missing required positional argument: '%s'", fn.Name, fn.Params[i])
	}

	callee := &frame{fn: fn, slots: make([]object.Value, fn.NumLocals)}
	for i := 0; i < nParams; i++ {
		callee.slots[i] = in.store.Retain(bound[i])
	}
	defer func() {
		for i, v := range callee.slots {
			in.store.Release(v)
			callee.slots[i] = object.Value{}
		}
	}()

	body := fn.Body.([]parser.Stmt)
	err := in.execBlock(callee, body)
	if err == nil {
		return object.None(), nil
	}
	if ret, ok := err.(*returnSignal); ok {
		// Ownership moves from the signal to the caller's temps.
		return in.track(ret.value), nil
	}
	return object.Value{}, err
}

// callExternal materialises arguments as native values, invokes the host
// callback and converts the result back.
func (in *Interp) callExternal(name string, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if !in.haveExternals {
		return object.Value{}, in.raise(errors.RuntimeError, "no external_functions provided")
	}
	fn, ok := in.externals[name]
	if !ok {
		return object.Value{}, in.raise(errors.KeyError, "'%s' not found", name)
	}
	nativeArgs := make([]interface{}, len(args))
	for i, a := range args {
		na, err := in.ToNative(a)
		if err != nil {
			return object.Value{}, err
		}
		nativeArgs[i] = na
	}
	nativeKwargs := make(map[string]interface{}, len(kwargs))
	for _, kw := range kwargs {
		nv, err := in.ToNative(kw.value)
		if err != nil {
			return object.Value{}, err
		}
		nativeKwargs[kw.name] = nv
	}
	result, err := fn(nativeArgs, nativeKwargs)
	if err != nil {
		// Host failures surface as RuntimeError with the host's message.
		return object.Value{}, in.raise(errors.RuntimeError, "%s", err.Error())
	}
	v, err := in.FromNative(result)
	if err != nil {
		return object.Value{}, err
	}
	return v, nil
}

// getAttr resolves attribute access: exception instance attributes first,
// then bound methods for the receiver's type.
func (in *Interp) getAttr(base object.Value, name string) (object.Value, error) {
	if base.Kind() == object.KindException {
		exc := in.store.ExceptionVal(base)
		switch name {
		case "args":
			t, err := in.store.NewTuple(exc.Args)
			if err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
			return in.track(t), nil
		case "__cause__":
			return in.track(in.store.Retain(exc.Cause)), nil
		}
		return object.Value{}, in.raise(errors.AttributeError,
			"'%s' object has no attribute '%s'", exc.Kind, name)
	}
	if table, ok := methods[base.Kind()]; ok {
		if _, ok := table[name]; ok {
			b, err := in.store.NewBound(base, name)
			if err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
			return in.track(b), nil
		}
	}
	return object.Value{}, in.raise(errors.AttributeError,
		"'%s' object has no attribute '%s'", base.Kind().TypeName(), name)
}

// callMethod dispatches a bound method by receiver kind and name.
func (in *Interp) callMethod(recv object.Value, name string, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if table, ok := methods[recv.Kind()]; ok {
		if fn, ok := table[name]; ok {
			return fn(in, recv, args, kwargs)
		}
	}
	return object.Value{}, in.raise(errors.AttributeError,
		"'%s' object has no attribute '%s'", recv.Kind().TypeName(), name)
}

// methodFn implements one method on one receiver kind.
type methodFn func(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error)

// methods is the per-kind method dispatch table, populated by the
// methods_*.go init functions.
var methods = map[object.Kind]map[string]methodFn{}

func registerMethods(kind object.Kind, table map[string]methodFn) {
	methods[kind] = table
}
