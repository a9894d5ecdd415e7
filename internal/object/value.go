// internal/object/value.go
package object

// Kind tags every value the runtime manipulates. The first group are
// immediates carried inside the Value struct; the rest live in store cells.
type Kind uint8

const (
	// KindInvalid is the zero Value: an unbound slot, never a live value.
	KindInvalid Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindStr // immediate when Handle is 0, heap otherwise
	KindBuiltin
	KindBytes
	KindList
	KindTuple
	KindDict
	KindSet
	KindRange
	KindFunc
	KindExternal
	KindException
	KindIterator
	KindBound
)

// TypeName is the name surfaced in error messages and by type().
func (k Kind) TypeName() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBuiltin:
		return "builtin_function_or_method"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindRange:
		return "range"
	case KindFunc:
		return "function"
	case KindExternal:
		return "external_function"
	case KindException:
		return "exception"
	case KindIterator:
		return "iterator"
	case KindBound:
		return "builtin_function_or_method"
	}
	return "object"
}

// Handle references a store cell. Zero is the null handle.
type Handle int32

// Value is the tagged representation. Immediates (None, Bool, Int, Float,
// short Str, Builtin) carry their payload inline and never touch the heap;
// everything else holds a cell handle.
type Value struct {
	kind Kind
	i    int64   // Bool (0/1) and Int payload
	f    float64 // Float payload
	s    string  // inline Str payload and Builtin name
	h    Handle
}

// MaxInlineStr is the longest byte length a string may have and still be
// stored immediately. Concatenation always produces heap strings so that
// string building exercises the allocator.
const MaxInlineStr = 16

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsHeap() bool   { return v.h != 0 }
func (v Value) Handle() Handle { return v.h }

// None is the singleton null value.
func None() Value { return Value{kind: KindNone} }

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool, i: 0}
}

func Int(n int64) Value { return Value{kind: KindInt, i: n} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Builtin names a builtin function value; dispatch is by name.
func Builtin(name string) Value { return Value{kind: KindBuiltin, s: name} }

// InlineStr builds an immediate string. Callers must ensure the bound;
// Store.NewStr handles the general case.
func InlineStr(s string) Value { return Value{kind: KindStr, s: s} }

// AsBool reports the raw bool payload; callers check the kind first.
func (v Value) AsBool() bool { return v.i != 0 }

// AsInt reports the raw int payload; booleans read as 0/1 so arithmetic
// promotion is a field access.
func (v Value) AsInt() int64 { return v.i }

func (v Value) AsFloat() float64 { return v.f }

// BuiltinName returns the name of a builtin function value.
func (v Value) BuiltinName() string { return v.s }

// IsNone is a convenience used all over the evaluator.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsValid distinguishes bound values from empty slots.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// IsNumber reports whether the value participates in numeric promotion.
func (v Value) IsNumber() bool {
	return v.kind == KindBool || v.kind == KindInt || v.kind == KindFloat
}

// AsFloat64 widens any numeric value to float64.
func (v Value) AsFloat64() float64 {
	if v.kind == KindFloat {
		return v.f
	}
	return float64(v.i)
}

// rangeVal is the lazy integer sequence payload.
type rangeVal struct {
	start int64
	stop  int64
	step  int64
}

// length computes the element count of a range.
func (r rangeVal) length() int64 {
	if r.step > 0 {
		if r.stop <= r.start {
			return 0
		}
		return (r.stop - r.start + r.step - 1) / r.step
	}
	if r.stop >= r.start {
		return 0
	}
	return (r.start - r.stop + (-r.step) - 1) / (-r.step)
}

// Function is a user-defined function payload. Body and parameter
// metadata point into the immutable executable tree; Defaults hold
// retained values evaluated at definition time.
type Function struct {
	Name      string
	Params    []string
	Defaults  []Value // aligned to the tail of Params
	NumLocals int
	Body      interface{} // []parser.Stmt; interface to keep the store tree-agnostic
}

// External is a bound host callback payload.
type External struct {
	Name string
}

// Exception is an exception instance payload.
type Exception struct {
	Kind  string // taxonomy kind name
	Args  []Value
	Cause Value // __cause__, None when absent
}

// Bound is a method bound to a receiver, produced by attribute access
// when the attribute names a method and is not immediately called.
type Bound struct {
	Recv Value
	Name string
}

// IterKind discriminates the iterator payload variants.
type IterKind uint8

const (
	IterList IterKind = iota
	IterTuple
	IterStr
	IterBytes
	IterDict
	IterSet
	IterRange
)

// Iterator is the typed iterator payload: list iterators recheck
// the live length, dict/set iterators pin the table version, range
// iterators are pure arithmetic.
type Iterator struct {
	Kind    IterKind
	Src     Value // retained source (unused for ranges)
	Cursor  int   // element index; byte offset for strings
	Version uint64
	Cur     int64 // range state
	Stop    int64
	Step    int64
}
