package parser

import (
	"testing"

	"monty/internal/errors"
)

var testBuiltins = map[string]bool{
	"len": true, "print": true, "range": true, "abs": true, "str": true,
}

func parseProgram(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src, nil, nil, testBuiltins)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

func parseError(t *testing.T, src string) *errors.Error {
	t.Helper()
	_, err := Parse(src, nil, nil, testBuiltins)
	if err == nil {
		t.Fatalf("parse %q: expected error", src)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("parse %q: error %v is not a taxonomy error", src, err)
	}
	if e.Kind != errors.SyntaxError {
		t.Fatalf("parse %q: kind = %s, want SyntaxError", src, e.Kind)
	}
	return e
}

func TestParseStatements(t *testing.T) {
	prog := parseProgram(t, "x = 1\ny = x + 2\ny\n")
	if len(prog.Body) != 3 {
		t.Fatalf("statements = %d, want 3", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*Assign); !ok {
		t.Fatalf("stmt 0 = %T, want *Assign", prog.Body[0])
	}
	if _, ok := prog.Body[2].(*ExprStmt); !ok {
		t.Fatalf("stmt 2 = %T, want *ExprStmt", prog.Body[2])
	}
	if prog.NumGlobals != 2 {
		t.Fatalf("NumGlobals = %d, want 2", prog.NumGlobals)
	}
}

func TestParseSemicolons(t *testing.T) {
	prog := parseProgram(t, "a = []; a.append(a); len(a)\n")
	if len(prog.Body) != 3 {
		t.Fatalf("statements = %d, want 3", len(prog.Body))
	}
}

func TestParseIfElifElse(t *testing.T) {
	prog := parseProgram(t, "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n")
	ifStmt, ok := prog.Body[0].(*If)
	if !ok {
		t.Fatalf("stmt = %T", prog.Body[0])
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("else arm = %d stmts", len(ifStmt.Else))
	}
	elif, ok := ifStmt.Else[0].(*If)
	if !ok {
		t.Fatalf("elif = %T, want nested *If", ifStmt.Else[0])
	}
	if len(elif.Else) != 1 {
		t.Fatal("final else missing")
	}
}

func TestParseLoops(t *testing.T) {
	prog := parseProgram(t, "while x:\n    break\nelse:\n    pass\nfor a, b in pairs:\n    continue\n")
	w, ok := prog.Body[0].(*While)
	if !ok {
		t.Fatalf("stmt 0 = %T", prog.Body[0])
	}
	if len(w.Else) != 1 {
		t.Fatal("while else missing")
	}
	f, ok := prog.Body[1].(*For)
	if !ok {
		t.Fatalf("stmt 1 = %T", prog.Body[1])
	}
	if _, ok := f.Target.(*TupleLit); !ok {
		t.Fatalf("for target = %T, want tuple pattern", f.Target)
	}
}

func TestParseTry(t *testing.T) {
	src := `
try:
    x = 1
except ValueError as e:
    x = 2
except (TypeError, KeyError):
    x = 3
except:
    x = 4
else:
    x = 5
finally:
    x = 6
`
	prog := parseProgram(t, src)
	tr, ok := prog.Body[0].(*Try)
	if !ok {
		t.Fatalf("stmt = %T", prog.Body[0])
	}
	if len(tr.Handlers) != 3 {
		t.Fatalf("handlers = %d, want 3", len(tr.Handlers))
	}
	if tr.Handlers[0].Name != "e" || len(tr.Handlers[0].Kinds) != 1 {
		t.Fatalf("handler 0 = %+v", tr.Handlers[0])
	}
	if len(tr.Handlers[1].Kinds) != 2 {
		t.Fatalf("handler 1 kinds = %v", tr.Handlers[1].Kinds)
	}
	if len(tr.Handlers[2].Kinds) != 0 {
		t.Fatal("handler 2 should be a bare except")
	}
	if len(tr.Else) != 1 || len(tr.Finally) != 1 {
		t.Fatal("else/finally arms missing")
	}
}

func TestParseFuncDef(t *testing.T) {
	prog := parseProgram(t, "def f(a, b=1):\n    c = a + b\n    return c\n")
	fd, ok := prog.Body[0].(*FuncDef)
	if !ok {
		t.Fatalf("stmt = %T", prog.Body[0])
	}
	if fd.Name != "f" || len(fd.Params) != 2 {
		t.Fatalf("funcdef = %+v", fd)
	}
	if fd.Params[1].Default == nil {
		t.Fatal("default missing")
	}
	// Params a, b plus local c.
	if fd.NumLocals != 3 {
		t.Fatalf("NumLocals = %d, want 3", fd.NumLocals)
	}
}

func TestResolveScopes(t *testing.T) {
	src := "g = 1\ndef f(p):\n    l = p + g\n    return len(l)\n"
	prog, err := Parse(src, nil, nil, testBuiltins)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fd := prog.Body[1].(*FuncDef)
	ret := fd.Body[1].(*Return)
	call := ret.X.(*Call)
	if call.Fn.(*Name).Res.Scope != ScopeBuiltin {
		t.Fatal("len should resolve as a builtin")
	}
	assign := fd.Body[0].(*Assign)
	if assign.Target.(*Name).Res.Scope != ScopeLocal {
		t.Fatal("l should be a local")
	}
	bin := assign.Value.(*Binary)
	if bin.Left.(*Name).Res.Scope != ScopeLocal {
		t.Fatal("p should be a local")
	}
	if bin.Right.(*Name).Res.Scope != ScopeGlobal {
		t.Fatal("g should resolve to the module frame")
	}
}

func TestResolveInputsAndExternals(t *testing.T) {
	prog, err := Parse("process(x)\n", []string{"x"}, []string{"process"}, testBuiltins)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := prog.InputSlots["x"]; !ok {
		t.Fatal("input slot for x missing")
	}
	call := prog.Body[0].(*ExprStmt).X.(*Call)
	if call.Fn.(*Name).Res.Scope != ScopeExternal {
		t.Fatal("process should resolve as an external")
	}
	if call.Args[0].(*Name).Res.Scope != ScopeGlobal {
		t.Fatal("x should resolve to a module slot")
	}
}

func TestUndeclaredStaysUnresolved(t *testing.T) {
	prog := parseProgram(t, "mystery\n")
	name := prog.Body[0].(*ExprStmt).X.(*Name)
	if name.Res.Scope != ScopeUnresolved {
		t.Fatalf("scope = %v, want unresolved for a runtime NameError", name.Res.Scope)
	}
}

func TestParseExpressions(t *testing.T) {
	// A smoke pass over the expression grammar.
	sources := []string{
		"x = a + b * c ** d\n",
		"x = -a ** 2\n",
		"x = (1, 2, 3)\n",
		"x = [1, [2, 3]]\n",
		"x = {'k': 1, 'j': 2}\n",
		"x = {1, 2}\n",
		"x = {}\n",
		"x = a[1:2:3]\n",
		"x = a[::-1]\n",
		"x = a[1]\n",
		"x = a.b.c(1, k=2)\n",
		"x = 1 < a <= b < 10\n",
		"x = a in b and c not in d\n",
		"x = a is not None\n",
		"x = not a or b\n",
		"x = 1 if cond else 2\n",
		"x = f'{a} and {b}'\n",
		"x = 'adjacent' 'strings'\n",
		"del a[0]\n",
		"assert x, 'message'\n",
		"raise ValueError('x') from KeyError('y')\n",
	}
	for _, src := range sources {
		parseProgram(t, src)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"def\n",
		"print(1\n",
		"x = = 1\n",
		"x = 1 +\n",
		"if x\n    pass\n",
		"break\n",
		"continue\n",
		"return 1\n",
		"def f():\n    break\n",
		"x = y = 1\n",
		"1 = x\n",
		"except ValueError:\n    pass\n",
		"try:\n    pass\n",
		"for x in:\n    pass\n",
		"except UnknownError:\n    pass\n",
	}
	for _, src := range cases {
		parseError(t, src)
	}
}

func TestParsePositions(t *testing.T) {
	e := parseError(t, "x = 1\ny = = 2\n")
	if e.Location.Line != 2 {
		t.Fatalf("error line = %d, want 2", e.Location.Line)
	}
}
