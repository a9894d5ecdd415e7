// internal/parser/resolver.go
package parser

import (
	"monty/internal/errors"
)

// The resolver walks the parsed tree once and annotates every Name with
// how it binds: a local frame slot, a module-frame slot, a builtin, or a
// declared external function. Slot indices are assigned per function so
// frames can be flat arrays. Names that bind nowhere stay unresolved and
// raise NameError when evaluated, which keeps conditionally-bound names
// working.
type resolver struct {
	module    *funcScope
	current   *funcScope
	externals map[string]bool
	builtins  map[string]bool
	loopDepth int
}

type funcScope struct {
	slots  map[string]int
	parent *funcScope
}

func (f *funcScope) define(name string) int {
	if slot, ok := f.slots[name]; ok {
		return slot
	}
	slot := len(f.slots)
	f.slots[name] = slot
	return slot
}

// resolve assigns slots and produces the final Program.
func resolve(body []Stmt, inputs, externalFuncs []string, builtins map[string]bool) (*Program, error) {
	r := &resolver{
		module:    &funcScope{slots: map[string]int{}},
		externals: map[string]bool{},
		builtins:  builtins,
	}
	r.current = r.module
	for _, name := range externalFuncs {
		r.externals[name] = true
	}
	inputSlots := map[string]int{}
	for _, name := range inputs {
		inputSlots[name] = r.module.define(name)
	}
	// First pass: collect every module-level binding so functions defined
	// before a global's assignment still see it.
	for _, s := range body {
		r.collectBindings(r.module, s)
	}
	for _, s := range body {
		if err := r.stmt(s); err != nil {
			return nil, err
		}
	}
	return &Program{
		Body:        body,
		NumGlobals:  len(r.module.slots),
		InputSlots:  inputSlots,
		GlobalNames: r.module.slots,
	}, nil
}

// collectBindings pre-declares names bound anywhere in the scope body.
// Function bodies are not descended into; they are their own scope.
func (r *resolver) collectBindings(scope *funcScope, s Stmt) {
	declareTarget := func(t Expr) {
		collectTargetNames(t, func(name string) {
			scope.define(name)
		})
	}
	switch st := s.(type) {
	case *Assign:
		declareTarget(st.Target)
	case *AugAssign:
		declareTarget(st.Target)
	case *For:
		declareTarget(st.Target)
		for _, b := range st.Body {
			r.collectBindings(scope, b)
		}
		for _, b := range st.Else {
			r.collectBindings(scope, b)
		}
	case *If:
		for _, b := range st.Then {
			r.collectBindings(scope, b)
		}
		for _, b := range st.Else {
			r.collectBindings(scope, b)
		}
	case *While:
		for _, b := range st.Body {
			r.collectBindings(scope, b)
		}
		for _, b := range st.Else {
			r.collectBindings(scope, b)
		}
	case *Try:
		for _, b := range st.Body {
			r.collectBindings(scope, b)
		}
		for i := range st.Handlers {
			if st.Handlers[i].Name != "" {
				scope.define(st.Handlers[i].Name)
			}
			for _, b := range st.Handlers[i].Body {
				r.collectBindings(scope, b)
			}
		}
		for _, b := range st.Else {
			r.collectBindings(scope, b)
		}
		for _, b := range st.Finally {
			r.collectBindings(scope, b)
		}
	case *FuncDef:
		scope.define(st.Name)
	}
}

func collectTargetNames(t Expr, define func(string)) {
	switch tt := t.(type) {
	case *Name:
		define(tt.Name)
	case *TupleLit:
		for _, el := range tt.Elems {
			collectTargetNames(el, define)
		}
	case *ListLit:
		for _, el := range tt.Elems {
			collectTargetNames(el, define)
		}
	}
}

func (r *resolver) stmt(s Stmt) error {
	switch st := s.(type) {
	case *ExprStmt:
		return r.expr(st.X)
	case *Assign:
		if err := r.expr(st.Value); err != nil {
			return err
		}
		return r.target(st.Target)
	case *AugAssign:
		if err := r.expr(st.Value); err != nil {
			return err
		}
		return r.target(st.Target)
	case *If:
		if err := r.expr(st.Cond); err != nil {
			return err
		}
		if err := r.stmts(st.Then); err != nil {
			return err
		}
		return r.stmts(st.Else)
	case *While:
		if err := r.expr(st.Cond); err != nil {
			return err
		}
		r.loopDepth++
		err := r.stmts(st.Body)
		r.loopDepth--
		if err != nil {
			return err
		}
		return r.stmts(st.Else)
	case *For:
		if err := r.expr(st.Iter); err != nil {
			return err
		}
		if err := r.target(st.Target); err != nil {
			return err
		}
		r.loopDepth++
		err := r.stmts(st.Body)
		r.loopDepth--
		if err != nil {
			return err
		}
		return r.stmts(st.Else)
	case *Break:
		if r.loopDepth == 0 {
			return errors.NewAt(errors.SyntaxError, st.Pos.Line, st.Pos.Column, "'break' outside loop")
		}
		return nil
	case *Continue:
		if r.loopDepth == 0 {
			return errors.NewAt(errors.SyntaxError, st.Pos.Line, st.Pos.Column, "'continue' not properly in loop")
		}
		return nil
	case *Pass:
		return nil
	case *Return:
		if r.current == r.module {
			return errors.NewAt(errors.SyntaxError, st.Pos.Line, st.Pos.Column, "'return' outside function")
		}
		if st.X != nil {
			return r.expr(st.X)
		}
		return nil
	case *Raise:
		if st.Exc != nil {
			if err := r.expr(st.Exc); err != nil {
				return err
			}
		}
		if st.Cause != nil {
			return r.expr(st.Cause)
		}
		return nil
	case *Assert:
		if err := r.expr(st.Cond); err != nil {
			return err
		}
		if st.Msg != nil {
			return r.expr(st.Msg)
		}
		return nil
	case *Try:
		if err := r.stmts(st.Body); err != nil {
			return err
		}
		for i := range st.Handlers {
			h := &st.Handlers[i]
			if h.Name != "" {
				h.NameSlot = r.current.define(h.Name)
			}
			if err := r.stmts(h.Body); err != nil {
				return err
			}
		}
		if err := r.stmts(st.Else); err != nil {
			return err
		}
		return r.stmts(st.Finally)
	case *FuncDef:
		return r.funcDef(st)
	case *Del:
		switch t := st.Target.(type) {
		case *Name:
			return r.target(t)
		default:
			return r.expr(st.Target)
		}
	}
	return nil
}

func (r *resolver) stmts(body []Stmt) error {
	for _, s := range body {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) funcDef(fd *FuncDef) error {
	// Defaults are evaluated in the enclosing scope at definition time.
	for _, p := range fd.Params {
		if p.Default != nil {
			if err := r.expr(p.Default); err != nil {
				return err
			}
		}
	}
	fd.Slot = r.current.define(fd.Name)

	fn := &funcScope{slots: map[string]int{}, parent: r.current}
	for _, p := range fd.Params {
		fn.define(p.Name)
	}
	saved := r.current
	savedLoop := r.loopDepth
	r.current = fn
	r.loopDepth = 0
	for _, s := range fd.Body {
		r.collectBindings(fn, s)
	}
	err := r.stmts(fd.Body)
	r.current = saved
	r.loopDepth = savedLoop
	if err != nil {
		return err
	}
	fd.NumLocals = len(fn.slots)
	return nil
}

// target resolves an assignment target, defining names in the current scope.
func (r *resolver) target(t Expr) error {
	switch tt := t.(type) {
	case *Name:
		slot := r.current.define(tt.Name)
		if r.current == r.module {
			tt.Res = Resolution{Scope: ScopeGlobal, Slot: slot}
		} else {
			tt.Res = Resolution{Scope: ScopeLocal, Slot: slot}
		}
		return nil
	case *TupleLit:
		for _, el := range tt.Elems {
			if err := r.target(el); err != nil {
				return err
			}
		}
		return nil
	case *ListLit:
		for _, el := range tt.Elems {
			if err := r.target(el); err != nil {
				return err
			}
		}
		return nil
	case *Index:
		if err := r.expr(tt.X); err != nil {
			return err
		}
		return r.expr(tt.Idx)
	case *Attr:
		return r.expr(tt.X)
	default:
		p := t.Position()
		return errors.NewAt(errors.SyntaxError, p.Line, p.Column, "cannot assign to this expression")
	}
}

func (r *resolver) expr(e Expr) error {
	switch ex := e.(type) {
	case *Name:
		ex.Res = r.lookup(ex.Name)
		return nil
	case *FStringLit:
		return r.exprs(ex.Parts)
	case *ListLit:
		return r.exprs(ex.Elems)
	case *TupleLit:
		return r.exprs(ex.Elems)
	case *SetLit:
		return r.exprs(ex.Elems)
	case *DictLit:
		if err := r.exprs(ex.Keys); err != nil {
			return err
		}
		return r.exprs(ex.Values)
	case *Unary:
		return r.expr(ex.X)
	case *Binary:
		if err := r.expr(ex.Left); err != nil {
			return err
		}
		return r.expr(ex.Right)
	case *BoolOp:
		if err := r.expr(ex.Left); err != nil {
			return err
		}
		return r.expr(ex.Right)
	case *Compare:
		if err := r.expr(ex.First); err != nil {
			return err
		}
		return r.exprs(ex.Rest)
	case *Cond:
		if err := r.expr(ex.Cond); err != nil {
			return err
		}
		if err := r.expr(ex.Then); err != nil {
			return err
		}
		return r.expr(ex.Else)
	case *Index:
		if err := r.expr(ex.X); err != nil {
			return err
		}
		return r.expr(ex.Idx)
	case *SliceExpr:
		if err := r.expr(ex.X); err != nil {
			return err
		}
		for _, part := range []Expr{ex.Low, ex.High, ex.Step} {
			if part != nil {
				if err := r.expr(part); err != nil {
					return err
				}
			}
		}
		return nil
	case *Attr:
		return r.expr(ex.X)
	case *Call:
		if err := r.expr(ex.Fn); err != nil {
			return err
		}
		if err := r.exprs(ex.Args); err != nil {
			return err
		}
		for _, kw := range ex.Kwargs {
			if err := r.expr(kw.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (r *resolver) exprs(list []Expr) error {
	for _, e := range list {
		if err := r.expr(e); err != nil {
			return err
		}
	}
	return nil
}

// lookup resolves a name reference: current scope, then module scope,
// then declared externals, then builtins and exception types.
func (r *resolver) lookup(name string) Resolution {
	if r.current != r.module {
		if slot, ok := r.current.slots[name]; ok {
			return Resolution{Scope: ScopeLocal, Slot: slot}
		}
	}
	if slot, ok := r.module.slots[name]; ok {
		if r.current == r.module {
			// Module scope reads are global-slot reads too; the
			// distinction only matters inside functions.
			return Resolution{Scope: ScopeGlobal, Slot: slot}
		}
		return Resolution{Scope: ScopeGlobal, Slot: slot}
	}
	if r.externals[name] {
		return Resolution{Scope: ScopeExternal}
	}
	if r.builtins[name] || errors.IsExceptionName(name) {
		return Resolution{Scope: ScopeBuiltin}
	}
	return Resolution{Scope: ScopeUnresolved}
}
