// internal/interp/methods_dict.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
)

func init() {
	registerMethods(object.KindDict, map[string]methodFn{
		"get":        dictGet,
		"pop":        dictPop,
		"keys":       dictKeys,
		"values":     dictValues,
		"items":      dictItems,
		"update":     dictUpdate,
		"setdefault": dictSetdefault,
		"clear":      dictClearMethod,
		"copy":       dictCopy,
	})
}

func dictGet(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("get", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	v, ok, err := in.store.DictGet(recv, args[0])
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	if ok {
		return in.track(in.store.Retain(v)), nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return object.None(), nil
}

func dictPop(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("pop", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	v, ok, err := in.store.DictGet(recv, args[0])
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	if !ok {
		if len(args) == 2 {
			return args[1], nil
		}
		return object.Value{}, in.raise(errors.KeyError, "%s", in.store.Repr(args[0]))
	}
	out := in.track(in.store.Retain(v))
	if _, err := in.store.DictDelete(recv, args[0]); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return out, nil
}

// dictKeys, dictValues and dictItems materialise the views as lists; the
// views only need to be iterable.
func dictKeys(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("keys", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	var elems []object.Value
	for i := in.store.TableFirstLive(recv, 0); i >= 0; i = in.store.TableFirstLive(recv, i+1) {
		elems = append(elems, in.store.TableEntryKey(recv, i))
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func dictValues(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("values", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	var elems []object.Value
	for i := in.store.TableFirstLive(recv, 0); i >= 0; i = in.store.TableFirstLive(recv, i+1) {
		elems = append(elems, in.store.TableEntryValue(recv, i))
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func dictItems(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("items", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	var elems []object.Value
	for i := in.store.TableFirstLive(recv, 0); i >= 0; i = in.store.TableFirstLive(recv, i+1) {
		pair, err := in.store.NewTuple([]object.Value{
			in.store.TableEntryKey(recv, i),
			in.store.TableEntryValue(recv, i),
		})
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		elems = append(elems, in.track(pair))
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func dictUpdate(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("update", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	if len(args) == 1 {
		if err := in.dictUpdateFrom(recv, args[0]); err != nil {
			return object.Value{}, err
		}
	}
	for _, kw := range kwargs {
		k, err := in.store.NewStr(kw.name)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(k)
		if err := in.store.DictSet(recv, k, kw.value); err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
	}
	return object.None(), nil
}

func dictSetdefault(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("setdefault", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	v, ok, err := in.store.DictGet(recv, args[0])
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	if ok {
		return in.track(in.store.Retain(v)), nil
	}
	def := object.None()
	if len(args) == 2 {
		def = args[1]
	}
	if err := in.store.DictSet(recv, args[0], def); err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return def, nil
}

func dictClearMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("clear", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	in.store.DictClear(recv)
	return object.None(), nil
}

func dictCopy(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("copy", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	d, err := in.store.NewDict()
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(d)
	if err := in.dictUpdateFrom(d, recv); err != nil {
		return object.Value{}, err
	}
	return d, nil
}
