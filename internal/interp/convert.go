// internal/interp/convert.go
package interp

import (
	"monty/internal/errors"
	"monty/internal/object"
)

// ToNative converts an interpreter value to native Go for host callbacks
// and the final run result: primitives directly, containers recursively.
// Cyclic containers are not representable and fail instead of recursing.
func (in *Interp) ToNative(v object.Value) (interface{}, error) {
	return in.toNative(v, nil)
}

func (in *Interp) toNative(v object.Value, seen map[object.Handle]bool) (interface{}, error) {
	if v.IsHeap() {
		switch v.Kind() {
		case object.KindList, object.KindTuple, object.KindDict, object.KindSet:
			if seen[v.Handle()] {
				return nil, in.raise(errors.ValueError, "circular reference detected")
			}
			if seen == nil {
				seen = make(map[object.Handle]bool)
			}
			seen[v.Handle()] = true
			defer delete(seen, v.Handle())
		}
	}
	switch v.Kind() {
	case object.KindNone:
		return nil, nil
	case object.KindBool:
		return v.AsBool(), nil
	case object.KindInt:
		return v.AsInt(), nil
	case object.KindFloat:
		return v.AsFloat(), nil
	case object.KindStr:
		return in.store.StrVal(v), nil
	case object.KindBytes:
		return append([]byte(nil), in.store.BytesVal(v)...), nil
	case object.KindList, object.KindTuple:
		elems := in.store.Elems(v)
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			ne, err := in.toNative(e, seen)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case object.KindDict:
		// String-keyed dicts become map[string]interface{}; anything
		// else is not representable to the host.
		out := make(map[string]interface{})
		for i := in.store.TableFirstLive(v, 0); i >= 0; i = in.store.TableFirstLive(v, i+1) {
			k := in.store.TableEntryKey(v, i)
			if k.Kind() != object.KindStr {
				return nil, in.raise(errors.TypeError,
					"cannot convert dict with %s keys for the host", k.Kind().TypeName())
			}
			nv, err := in.toNative(in.store.TableEntryValue(v, i), seen)
			if err != nil {
				return nil, err
			}
			out[in.store.StrVal(k)] = nv
		}
		return out, nil
	case object.KindSet:
		var out []interface{}
		for i := in.store.TableFirstLive(v, 0); i >= 0; i = in.store.TableFirstLive(v, i+1) {
			ne, err := in.toNative(in.store.TableEntryKey(v, i), seen)
			if err != nil {
				return nil, err
			}
			out = append(out, ne)
		}
		return out, nil
	case object.KindRange:
		elems, err := in.collect(v)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			out[i] = e.AsInt()
		}
		return out, nil
	}
	return nil, in.raise(errors.TypeError, "cannot convert '%s' value for the host", v.Kind().TypeName())
}

// FromNative converts a native Go value into the interpreter. The result
// is tracked like any evaluated expression.
func (in *Interp) FromNative(x interface{}) (object.Value, error) {
	switch t := x.(type) {
	case nil:
		return object.None(), nil
	case bool:
		return object.Bool(t), nil
	case int:
		return object.Int(int64(t)), nil
	case int8:
		return object.Int(int64(t)), nil
	case int16:
		return object.Int(int64(t)), nil
	case int32:
		return object.Int(int64(t)), nil
	case int64:
		return object.Int(t), nil
	case uint:
		return object.Int(int64(t)), nil
	case uint8:
		return object.Int(int64(t)), nil
	case uint16:
		return object.Int(int64(t)), nil
	case uint32:
		return object.Int(int64(t)), nil
	case uint64:
		return object.Int(int64(t)), nil
	case float32:
		return object.Float(float64(t)), nil
	case float64:
		return object.Float(t), nil
	case string:
		v, err := in.store.NewStr(t)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case []byte:
		v, err := in.store.NewBytes(append([]byte(nil), t...))
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(v), nil
	case []interface{}:
		elems := make([]object.Value, len(t))
		for i, e := range t {
			v, err := in.FromNative(e)
			if err != nil {
				return object.Value{}, err
			}
			elems[i] = v
		}
		lv, err := in.store.NewList(elems)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		return in.track(lv), nil
	case map[string]interface{}:
		d, err := in.store.NewDict()
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(d)
		for k, e := range t {
			kv, err := in.store.NewStr(k)
			if err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
			in.track(kv)
			ev, err := in.FromNative(e)
			if err != nil {
				return object.Value{}, err
			}
			if err := in.store.DictSet(d, kv, ev); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
		return d, nil
	case map[interface{}]interface{}:
		d, err := in.store.NewDict()
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		in.track(d)
		for k, e := range t {
			kv, err := in.FromNative(k)
			if err != nil {
				return object.Value{}, err
			}
			ev, err := in.FromNative(e)
			if err != nil {
				return object.Value{}, err
			}
			if err := in.store.DictSet(d, kv, ev); err != nil {
				return object.Value{}, in.raiseFrom(err)
			}
		}
		return d, nil
	}
	return object.Value{}, in.raise(errors.TypeError, "unsupported input value of type %T", x)
}
