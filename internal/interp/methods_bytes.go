// internal/interp/methods_bytes.go
package interp

import (
	"unicode/utf8"

	"monty/internal/errors"
	"monty/internal/object"
)

func init() {
	registerMethods(object.KindBytes, map[string]methodFn{
		"decode": bytesDecode,
		"hex":    bytesHex,
	})
}

// bytesDecode defaults to UTF-8 and accepts the case-insensitive aliases,
// mirroring str.encode.
func bytesDecode(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("decode", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	encoding := "utf-8"
	if len(args) == 1 {
		e, err := in.strArgAt("decode", args, 0)
		if err != nil {
			return object.Value{}, err
		}
		encoding = e
	}
	if v, ok := kwargLookup(kwargs, "encoding"); ok {
		if v.Kind() != object.KindStr {
			return object.Value{}, in.raise(errors.TypeError, "decode() argument 'encoding' must be str")
		}
		encoding = in.store.StrVal(v)
	}
	switch casefold(encoding) {
	case "utf-8", "utf8":
	default:
		return object.Value{}, in.raise(errors.ValueError, "unknown encoding: %s", encoding)
	}
	b := in.store.BytesVal(recv)
	if !utf8.Valid(b) {
		return object.Value{}, in.raise(errors.ValueError, "invalid utf-8 sequence")
	}
	v, err := in.store.NewStr(string(b))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func bytesHex(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("hex", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	const digits = "0123456789abcdef"
	b := in.store.BytesVal(recv)
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0xf])
	}
	v, err := in.store.NewStr(string(out))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}
