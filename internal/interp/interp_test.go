package interp

import (
	"testing"
	"time"

	"monty/internal/errors"
	"monty/internal/object"
	"monty/internal/parser"
)

// runProgram executes source with the given limits and returns the final
// expression value converted to native Go. Every run checks the leak
// invariant: zero live cells once the interpreter finishes.
func runProgram(t *testing.T, src string, limits object.Limits) (interface{}, error) {
	t.Helper()
	prog, err := parser.Parse(src, nil, nil, BuiltinNames())
	if err != nil {
		return nil, err
	}
	store := object.NewStore(object.NewGovernor(limits))
	in := New(prog, store, nil, nil)
	v, err := in.Run()
	var native interface{}
	if err == nil {
		native, err = in.ToNativeResult(v)
	}
	in.Finish()
	if live := store.Live(); live != 0 {
		t.Fatalf("leak: %d live cells after run of %q", live, src)
	}
	return native, err
}

func eval(t *testing.T, src string) interface{} {
	t.Helper()
	v, err := runProgram(t, src, object.Limits{})
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return v
}

func evalErr(t *testing.T, src string) *errors.Error {
	t.Helper()
	_, err := runProgram(t, src, object.Limits{})
	if err == nil {
		t.Fatalf("run %q: expected error", src)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("run %q: error %v is not a taxonomy error", src, err)
	}
	return e
}

func wantKind(t *testing.T, src string, kind errors.Kind) *errors.Error {
	t.Helper()
	e := evalErr(t, src)
	if e.Kind != kind {
		t.Fatalf("run %q: kind = %s, want %s (message %q)", src, e.Kind, kind, e.Message)
	}
	return e
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"1 + 2", int64(3)},
		{"7 - 10", int64(-3)},
		{"6 * 7", int64(42)},
		{"7 / 2", 3.5},
		{"7 // 2", int64(3)},
		{"-7 // 2", int64(-4)},
		{"7 % 3", int64(1)},
		{"-7 % 3", int64(2)},
		{"2 ** 10", int64(1024)},
		{"2 ** -1", 0.5},
		{"1.5 + 1", 2.5},
		{"True + True", int64(2)},
		{"-(3 + 4)", int64(-7)},
		{"2 + 3 * 4", int64(14)},
		{"(2 + 3) * 4", int64(20)},
		{"abs(-5)", int64(5)},
		{"divmod(17, 5)[0]", int64(3)},
		{"divmod(17, 5)[1]", int64(2)},
		{"5 | 2", int64(7)},
		{"6 & 3", int64(2)},
		{"6 ^ 3", int64(5)},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src); got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.src, got, got, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	wantKind(t, "1 / 0", errors.ZeroDivisionError)
	wantKind(t, "1 // 0", errors.ZeroDivisionError)
	wantKind(t, "1 % 0", errors.ZeroDivisionError)
	wantKind(t, "1.0 / 0", errors.ZeroDivisionError)
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"1 < 2 < 3", true},
		{"1 < 2 > 3", false},
		{"1 == 1.0", true},
		{"True == 1", true},
		{"False == 0", true},
		{"'a' < 'b'", true},
		{"[1, 2] == [1, 2.0]", true},
		{"[1, 2] < [1, 3]", true},
		{"(1, 2) == (1, 2)", true},
		{"1 != 2", true},
		{"None is None", true},
		{"None is not None", false},
		{"2 in [1, 2, 3]", true},
		{"4 not in [1, 2, 3]", true},
		{"'b' in 'abc'", true},
		{"'k' in {'k': 1}", true},
		{"2 in {1, 2}", true},
		{"5 in range(10)", true},
		{"10 in range(10)", false},
		{"4 in range(0, 10, 2)", true},
		{"5 in range(0, 10, 2)", false},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestOperatorTypeErrors(t *testing.T) {
	e := wantKind(t, "'string' + 1", errors.TypeError)
	if e.Message != "unsupported operand type(s) for +: 'str' and 'int'" {
		t.Fatalf("message = %q", e.Message)
	}
	wantKind(t, "1 < 'a'", errors.TypeError)
	wantKind(t, "[] + ()", errors.TypeError)
}

func TestShortCircuit(t *testing.T) {
	// The right side of an and/or must not be evaluated when the left
	// decides the result.
	if got := eval(t, "False and 1 / 0"); got != false {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "True or 1 / 0"); got != true {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "0 or 'fallback'"); got != "fallback" {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "1 and 2"); got != int64(2) {
		t.Fatalf("got %v", got)
	}
}

func TestSequenceOperators(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"len([1] + [2, 3])", int64(3)},
		{"len('ab' + 'cd')", int64(4)},
		{"len((1,) + (2,))", int64(2)},
		{"[0] * 3", []interface{}{int64(0), int64(0), int64(0)}},
		{"3 * [0]", []interface{}{int64(0), int64(0), int64(0)}},
		{"[1] * -2", []interface{}{}},
		{"'ab' * 2", "abab"},
		{"2 * 'ab'", "abab"},
		{"'ab' * 0", ""},
		{"len(b'ab' + b'c')", int64(3)},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

// nativeEqual compares converted results structurally.
func nativeEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !nativeEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !nativeEqual(v, bv[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func TestConcatLengthLaw(t *testing.T) {
	// (a + b).len() == a.len() + b.len() across the sequence kinds.
	tests := []string{
		"len([1, 2] + [3]) == len([1, 2]) + len([3])",
		"len('abc' + 'de') == len('abc') + len('de')",
		"len((1,) + (2, 3)) == len((1,)) + len((2, 3))",
		"len(b'ab' + b'cde') == len(b'ab') + len(b'cde')",
	}
	for _, src := range tests {
		if got := eval(t, src); got != true {
			t.Errorf("%s = %v", src, got)
		}
	}
}

func TestIndexingAndSlicing(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"[10, 20, 30][0]", int64(10)},
		{"[10, 20, 30][-1]", int64(30)},
		{"[10, 20, 30][True]", int64(20)},
		{"'hello'[1]", "e"},
		{"'hello'[-1]", "o"},
		{"(1, 2)[0]", int64(1)},
		{"b'ab'[0]", int64(97)},
		{"{'a': 1}['a']", int64(1)},
		{"range(10)[3]", int64(3)},
		{"range(10)[-1]", int64(9)},
		{"[1, 2, 3, 4][1:3]", []interface{}{int64(2), int64(3)}},
		{"[1, 2, 3, 4][::-1]", []interface{}{int64(4), int64(3), int64(2), int64(1)}},
		{"[1, 2, 3, 4][::2]", []interface{}{int64(1), int64(3)}},
		{"'hello'[1:4]", "ell"},
		{"'hello'[::-1]", "olleh"},
		{"'hello'[:3]", "hel"},
		{"'hello'[10:]", ""},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
		}
	}
	wantKind(t, "[1, 2, 3][10]", errors.IndexError)
	wantKind(t, "[1, 2, 3][-4]", errors.IndexError)
	wantKind(t, "'ab'[5]", errors.IndexError)
	wantKind(t, "{'a': 1}['b']", errors.KeyError)
	wantKind(t, "[1][None]", errors.TypeError)
}

// Negative-index law: s[i] == s[i - len(s)] whenever both are in range.
func TestNegativeIndexLaw(t *testing.T) {
	src := `
s = [10, 20, 30, 40]
ok = True
for i in range(len(s)):
    if s[i] != s[i - len(s)]:
        ok = False
ok
`
	if got := eval(t, src); got != true {
		t.Fatal("negative index law violated")
	}
}

func TestAssignmentAndUnpacking(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"x = 5\nx", int64(5)},
		{"a, b = 1, 2\na + b", int64(3)},
		{"a, b = [1, 2]\nb", int64(2)},
		{"(a, b), c = (1, 2), 3\na + b + c", int64(6)},
		{"a, b = 'xy'\nb", "y"},
		{"x = 1\nx += 2\nx", int64(3)},
		{"x = [1]\nx += [2]\nlen(x)", int64(2)},
		{"x = 10\nx //= 3\nx", int64(3)},
		{"x = 2\nx **= 3\nx", int64(8)},
		{"d = {}\nd['k'] = 1\nd['k'] += 5\nd['k']", int64(6)},
		{"l = [1, 2]\nl[0] = 9\nl[0]", int64(9)},
		{"l = [1, 2]\nl[-1] = 9\nl[1]", int64(9)},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%q = %#v, want %#v", tt.src, got, tt.want)
		}
	}
	wantKind(t, "a, b = [1, 2, 3]", errors.ValueError)
	wantKind(t, "a, b, c = [1, 2]", errors.ValueError)
	wantKind(t, "a, b = 5", errors.TypeError)
}

func TestAugAssignMutatesInPlace(t *testing.T) {
	src := `
a = [1]
b = a
a += [2]
len(b)
`
	if got := eval(t, src); got != int64(2) {
		t.Fatalf("+= on a list must mutate in place, got %v", got)
	}
	src = `
a = [1, 2]
b = a
a *= 2
len(b)
`
	if got := eval(t, src); got != int64(4) {
		t.Fatalf("*= on a list must mutate in place, got %v", got)
	}
}

func TestDel(t *testing.T) {
	if got := eval(t, "d = {'a': 1, 'b': 2}\ndel d['a']\nlen(d)"); got != int64(1) {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "l = [1, 2, 3]\ndel l[1]\nl"); !nativeEqual(got, []interface{}{int64(1), int64(3)}) {
		t.Fatalf("got %#v", got)
	}
	wantKind(t, "x = 1\ndel x\nx", errors.NameError)
	wantKind(t, "d = {}\ndel d['missing']", errors.KeyError)
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"x = 1\nif x > 0:\n    r = 'pos'\nelif x == 0:\n    r = 'zero'\nelse:\n    r = 'neg'\nr", "pos"},
		{"x = 0\nif x > 0:\n    r = 'pos'\nelif x == 0:\n    r = 'zero'\nelse:\n    r = 'neg'\nr", "zero"},
		{"x = -2\nif x > 0:\n    r = 'pos'\nelif x == 0:\n    r = 'zero'\nelse:\n    r = 'neg'\nr", "neg"},
		{"total = 0\ni = 0\nwhile i < 5:\n    total += i\n    i += 1\ntotal", int64(10)},
		{"r = ''\nwhile False:\n    r = 'body'\nelse:\n    r = 'else'\nr", "else"},
		{"r = 'none'\ni = 0\nwhile True:\n    i += 1\n    if i == 3:\n        break\nelse:\n    r = 'else'\nr", "none"},
		{"total = 0\nfor i in range(10):\n    if i % 2 == 0:\n        continue\n    if i > 6:\n        break\n    total += i\ntotal", int64(9)},
		{"r = ''\nfor i in []:\n    r = 'body'\nelse:\n    r = 'else'\nr", "else"},
		{"r = ''\nfor i in [1]:\n    break\nelse:\n    r = 'else'\nr", ""},
		{"x = 5 if True else 6\nx", int64(5)},
		{"x = 5 if False else 6\nx", int64(6)},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%q = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"def f():\n    return 42\nf()", int64(42)},
		{"def f(a, b):\n    return a + b\nf(1, 2)", int64(3)},
		{"def f(a, b=10):\n    return a + b\nf(1)", int64(11)},
		{"def f(a, b=10):\n    return a + b\nf(1, 2)", int64(3)},
		{"def f(a, b=10):\n    return a + b\nf(1, b=5)", int64(6)},
		{"def f(a, b):\n    return a - b\nf(b=1, a=10)", int64(9)},
		{"def f():\n    pass\nf()", nil},
		{"def f():\n    return\nf()", nil},
		{"x = 10\ndef f():\n    return x\nf()", int64(10)},
		{"def outer():\n    def inner():\n        return 1\n    return inner()\nouter()", int64(1)},
		{"def fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\nfib(10)", int64(55)},
		{"def f(x):\n    return x * 2\ng = f\ng(21)", int64(42)},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%q = %#v, want %#v", tt.src, got, tt.want)
		}
	}
	wantKind(t, "def f(a):\n    return a\nf()", errors.TypeError)
	wantKind(t, "def f(a):\n    return a\nf(1, 2)", errors.TypeError)
	wantKind(t, "def f(a):\n    return a\nf(b=1)", errors.TypeError)
	wantKind(t, "def f(a):\n    return a\nf(1, a=2)", errors.TypeError)
	wantKind(t, "1()", errors.TypeError)
}

// Assignment inside a function creates a local binding; module globals
// are read-through.
func TestScoping(t *testing.T) {
	src := `
x = 1
def f():
    x = 2
    return x
r = f()
r * 10 + x
`
	if got := eval(t, src); got != int64(21) {
		t.Fatalf("got %v", got)
	}
	// A local read before assignment is a NameError even when a global
	// of the same name exists.
	src = `
x = 1
def f():
    y = x
    x = 2
    return y
f()
`
	wantKind(t, src, errors.NameError)
}

func TestExceptions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"try:\n    1 / 0\nexcept ZeroDivisionError:\n    r = 'caught'\nr", "caught"},
		{"try:\n    1 / 0\nexcept (TypeError, ZeroDivisionError):\n    r = 'caught'\nr", "caught"},
		{"try:\n    1 / 0\nexcept Exception:\n    r = 'caught'\nr", "caught"},
		{"try:\n    1 / 0\nexcept:\n    r = 'bare'\nr", "bare"},
		{"try:\n    r = 'ok'\nexcept ZeroDivisionError:\n    r = 'caught'\nelse:\n    r = r + '+else'\nr", "ok+else"},
		{"r = ''\ntry:\n    r = 'body'\nfinally:\n    r = r + '+finally'\nr", "body+finally"},
		{"r = ''\ntry:\n    try:\n        1 / 0\n    finally:\n        r = 'cleanup'\nexcept ZeroDivisionError:\n    r = r + '+caught'\nr", "cleanup+caught"},
		{"try:\n    raise ValueError('msg')\nexcept ValueError as e:\n    r = str(e)\nr", "msg"},
		{"try:\n    raise ValueError('msg')\nexcept ValueError as e:\n    r = e.args[0]\nr", "msg"},
		{"def f():\n    try:\n        return 'from try'\n    finally:\n        pass\nf()", "from try"},
		{"try:\n    try:\n        raise TypeError('inner')\n    except ValueError:\n        r = 'wrong'\nexcept TypeError:\n    r = 'outer'\nr", "outer"},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%q = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestRaise(t *testing.T) {
	e := wantKind(t, "raise ValueError('bad value')", errors.ValueError)
	if e.Message != "bad value" {
		t.Fatalf("message = %q", e.Message)
	}
	// Raising a class instantiates with no message.
	wantKind(t, "raise ValueError", errors.ValueError)
	wantKind(t, "raise NotImplementedError('nope')", errors.NotImplementedError)
	wantKind(t, "raise RuntimeError('x')", errors.RuntimeError)
	// Bare raise re-raises the handled exception.
	e = wantKind(t, "try:\n    raise ValueError('again')\nexcept ValueError:\n    raise", errors.ValueError)
	if e.Message != "again" {
		t.Fatalf("message = %q", e.Message)
	}
	wantKind(t, "raise", errors.RuntimeError)
	wantKind(t, "raise 42", errors.TypeError)
	// An exception raised in a finally clause replaces the original.
	e = wantKind(t, "try:\n    1 / 0\nfinally:\n    raise ValueError('replacement')", errors.ValueError)
	if e.Message != "replacement" {
		t.Fatalf("message = %q", e.Message)
	}
	// raise ... from records the cause.
	src := `
try:
    raise ValueError('effect') from TypeError('cause')
except ValueError as e:
    r = str(type(e.__cause__))
r
`
	if got := eval(t, src); got != "<class 'TypeError'>" {
		t.Fatalf("cause repr = %v", got)
	}
}

func TestAssert(t *testing.T) {
	if got := eval(t, "assert True\n'after'"); got != "after" {
		t.Fatalf("got %v", got)
	}
	wantKind(t, "assert False", errors.AssertionError)
	e := wantKind(t, "assert False, 'custom message'", errors.AssertionError)
	if e.Message != "custom message" {
		t.Fatalf("message = %q", e.Message)
	}
	if got := eval(t, "assert 1 == 1.0, 'numeric equality'\n'ok'"); got != "ok" {
		t.Fatalf("got %v", got)
	}
}

func TestExceptionAttributeError(t *testing.T) {
	e := wantKind(t, "e = ValueError('test')\ne.nonexistent", errors.AttributeError)
	want := "'ValueError' object has no attribute 'nonexistent'"
	if e.Message != want {
		t.Fatalf("message = %q, want %q", e.Message, want)
	}
}

func TestNameErrors(t *testing.T) {
	e := wantKind(t, "undefined_variable", errors.NameError)
	if e.Message != "name 'undefined_variable' is not defined" {
		t.Fatalf("message = %q", e.Message)
	}
	wantKind(t, "unknown_func()", errors.NameError)
}

func TestIterationProtocol(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		// list(iter(x)) == list(x) round trips through every iterable.
		{"list('abc')", []interface{}{"a", "b", "c"}},
		{"list((1, 2))", []interface{}{int64(1), int64(2)}},
		{"list(range(3))", []interface{}{int64(0), int64(1), int64(2)}},
		{"list(range(5, 0, -2))", []interface{}{int64(5), int64(3), int64(1)}},
		{"list(b'ab')", []interface{}{int64(97), int64(98)}},
		{"list({'a': 1, 'b': 2})", []interface{}{"a", "b"}},
		{"list({1, 2})", []interface{}{int64(1), int64(2)}},
		{"sorted([3, 1, 2])", []interface{}{int64(1), int64(2), int64(3)}},
		{"sorted([3, -1, 2, -4], key=abs, reverse=True)", []interface{}{int64(-4), int64(3), int64(2), int64(-1)}},
		{"sorted(['bb', 'a', 'ccc'], key=len)", []interface{}{"a", "bb", "ccc"}},
		{"list(zip([1, 2, 3], 'ab'))", []interface{}{
			[]interface{}{int64(1), "a"},
			[]interface{}{int64(2), "b"},
		}},
		{"list(enumerate('ab'))", []interface{}{
			[]interface{}{int64(0), "a"},
			[]interface{}{int64(1), "b"},
		}},
		{"list(enumerate('ab', 1))", []interface{}{
			[]interface{}{int64(1), "a"},
			[]interface{}{int64(2), "b"},
		}},
		{"list(map(abs, [-1, 0, 1, -2]))", []interface{}{int64(1), int64(0), int64(1), int64(2)}},
		{"list(map(pow, [2, 3, 4, 5], [3, 2]))", []interface{}{int64(8), int64(9)}},
		{"list(filter(None, [0, 1, '', 'x']))", []interface{}{int64(1), "x"}},
		{"list(reversed([1, 2, 3]))", []interface{}{int64(3), int64(2), int64(1)}},
		{"list(reversed('abc'))", []interface{}{"c", "b", "a"}},
		{"sum([1, 2, 3])", int64(6)},
		{"sum([1.5, 2.5])", 4.0},
		{"sum([1, 2], 10)", int64(13)},
		{"min([3, 1, 2])", int64(1)},
		{"max([3, 1, 2])", int64(3)},
		{"min(3, 1, 2)", int64(1)},
		{"max('a', 'bb', 'c', key=len)", "bb"},
		{"min([], default=7)", int64(7)},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
		}
	}
	wantKind(t, "min([])", errors.ValueError)
	wantKind(t, "for x in 5:\n    pass", errors.TypeError)
	e := wantKind(t, "map()", errors.TypeError)
	if e.Message != "map() must have at least two arguments." {
		t.Fatalf("message = %q", e.Message)
	}
	wantKind(t, "map(None)", errors.TypeError)
}

// Appending during iteration is visible: the list iterator observes the
// live length on every step.
func TestListMutationDuringIteration(t *testing.T) {
	src := `
a = [1, 2]
visited = []
for x in a:
    if x < 3:
        a.append(x + 10)
    visited.append(x)
len(visited)
`
	if got := eval(t, src); got != int64(4) {
		t.Fatalf("got %v, want 4 (appended items are visited)", got)
	}
	// Shrinking behind the cursor terminates iteration at the new end.
	src = `
a = [1, 2, 3, 4]
count = 0
for x in a:
    a.pop()
    count += 1
count
`
	if got := eval(t, src); got != int64(2) {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestDictMutationDuringIteration(t *testing.T) {
	// Value updates keep the size stable and are permitted.
	src := `
d = {'a': 1, 'b': 2}
for k in d:
    d[k] = 0
d['a'] + d['b']
`
	if got := eval(t, src); got != int64(0) {
		t.Fatalf("got %v", got)
	}
	// A size change invalidates the iterator.
	e := wantKind(t, "d = {'a': 1, 'b': 2}\nfor k in d:\n    d['c'] = 3", errors.RuntimeError)
	if e.Message != "dictionary changed size during iteration" {
		t.Fatalf("message = %q", e.Message)
	}
	wantKind(t, "s = {1, 2, 3}\nfor x in s:\n    s.add(9)", errors.RuntimeError)
}

func TestFStrings(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"x = 7\nf'value is {x}'", "value is 7"},
		{"f'{1 + 2}'", "3"},
		{"name = 'world'\nf'hello {name}!'", "hello world!"},
		{"f'{{literal}}'", "{literal}"},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src); got != tt.want {
			t.Errorf("%q = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestLimitsEnforced(t *testing.T) {
	recurse := "def f(n):\n    if n <= 0:\n        return 0\n    return 1 + f(n - 1)\n"

	v, err := runProgram(t, recurse+"f(5)", object.Limits{MaxRecursionDepth: 100})
	if err != nil {
		t.Fatalf("f(5): %v", err)
	}
	if v != int64(5) {
		t.Fatalf("f(5) = %v", v)
	}

	_, err = runProgram(t, recurse+"f(10)", object.Limits{MaxRecursionDepth: 5})
	if err == nil || err.(*errors.Error).Kind != errors.RecursionError {
		t.Fatalf("want RecursionError, got %v", err)
	}

	alloc := "result = []\nfor i in range(10000):\n    result.append([i])\nlen(result)"
	_, err = runProgram(t, alloc, object.Limits{MaxAllocations: 5})
	if err == nil || err.(*errors.Error).Kind != errors.MemoryError {
		t.Fatalf("want MemoryError, got %v", err)
	}

	mem := "result = []\nfor i in range(1000):\n    result.append('x' * 100)\nlen(result)"
	_, err = runProgram(t, mem, object.Limits{MaxMemory: 100})
	if err == nil || err.(*errors.Error).Kind != errors.MemoryError {
		t.Fatalf("want MemoryError, got %v", err)
	}

	_, err = runProgram(t, "while True:\n    pass", object.Limits{MaxDuration: 30 * time.Millisecond})
	if err == nil || err.(*errors.Error).Kind != errors.TimeoutError {
		t.Fatalf("want TimeoutError, got %v", err)
	}
}

// Garbage cycles created in a loop are reclaimed mid-run once the
// collection interval elapses, keeping the program under its memory
// ceiling.
func TestCycleCollectionUnderPressure(t *testing.T) {
	src := `
for i in range(500):
    a = []
    a.append(a)
'done'
`
	v, err := runProgram(t, src, object.Limits{GCInterval: 10, MaxMemory: 8192})
	if err != nil {
		t.Fatalf("cycles were not reclaimed: %v", err)
	}
	if v != "done" {
		t.Fatalf("got %v", v)
	}
}

func TestCycleLeakInvariant(t *testing.T) {
	// runProgram checks Live() == 0 after every run; these exercise the
	// cyclic cases explicitly.
	if got := eval(t, "a = []\na.append(a)\nlen(a)"); got != int64(1) {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "a = []\nb = []\na.append(b)\nb.append(a)\nlen(b)"); got != int64(1) {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "d = {}\nd['self'] = d\nlen(d)"); got != int64(1) {
		t.Fatalf("got %v", got)
	}
}

func TestBuiltinConversions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"int('42')", int64(42)},
		{"int('  -7  ')", int64(-7)},
		{"int('+3')", int64(3)},
		{"int(3.9)", int64(3)},
		{"int(-3.9)", int64(-3)},
		{"int(True)", int64(1)},
		{"int()", int64(0)},
		{"float('1.5')", 1.5},
		{"float(2)", 2.0},
		{"bool(0)", false},
		{"bool('')", false},
		{"bool([])", false},
		{"bool(())", false},
		{"bool({})", false},
		{"bool(None)", false},
		{"bool(0.0)", false},
		{"bool('x')", true},
		{"bool([0])", true},
		{"str(42)", "42"},
		{"str(True)", "True"},
		{"str(None)", "None"},
		{"str(1.5)", "1.5"},
		{"str([1, 'a'])", "[1, 'a']"},
		{"repr('hi')", "'hi'"},
		{"repr([1, 2])", "[1, 2]"},
		{"chr(97)", "a"},
		{"ord('a')", int64(97)},
		{"hash(1) == hash(1.0)", true},
		{"hash(True) == hash(1)", true},
		{"round(2.5)", int64(2)},
		{"round(3.5)", int64(4)},
		{"round(2.567, 2)", 2.57},
		{"len('héllo')", int64(5)},
		{"isinstance(True, int)", true},
		{"isinstance(True, bool)", true},
		{"isinstance(1, float)", false},
		{"isinstance('a', str)", true},
		{"isinstance([1], (tuple, list))", true},
		{"type(1) is type(2)", true},
		{"str(type('a'))", "<class 'str'>"},
	}
	for _, tt := range tests {
		got := eval(t, tt.src)
		if !nativeEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
		}
	}
	wantKind(t, "int('abc')", errors.ValueError)
	wantKind(t, "int([])", errors.TypeError)
	wantKind(t, "float('abc')", errors.ValueError)
	wantKind(t, "len(5)", errors.TypeError)
	wantKind(t, "sum(['a', 'b'])", errors.TypeError)
}

// int(str(n)) == n round trip for a spread of integers.
func TestIntStrRoundTrip(t *testing.T) {
	src := `
ok = True
for n in [0, 1, -1, 42, -99999, 123456789]:
    if int(str(n)) != n:
        ok = False
ok
`
	if got := eval(t, src); got != true {
		t.Fatal("int(str(n)) round trip failed")
	}
}

// sorted is stable under a key: equal-keyed elements keep arrival order.
func TestSortedStability(t *testing.T) {
	src := `
base = [(1, 'a'), (0, 'b'), (1, 'c'), (0, 'd')]
def first(p):
    return p[0]
s1 = sorted(base, key=first)
s2 = sorted([base[2], base[0], base[3], base[1]], key=first)
r1 = ''
for p in s1:
    r1 = r1 + p[1]
r1
`
	// Stability keeps equal-keyed elements in arrival order.
	if got := eval(t, src); got != "bdac" {
		t.Fatalf("stable sort order = %v, want bdac", got)
	}
}
