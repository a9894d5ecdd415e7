// Package monty is an embeddable, sandboxed interpreter for a strict
// subset of an indentation-delimited scripting language. A host builds a
// program from source text, declares the inputs and external functions it
// may reference, then runs it under enforceable resource limits. The
// program is observed only through its return value, an optional print
// callback, and calls to host-supplied external functions; the
// interpreter performs no I/O of its own.
package monty

import (
	pkgerrors "github.com/pkg/errors"

	"monty/internal/errors"
	"monty/internal/interp"
	"monty/internal/object"
	"monty/internal/parser"
)

// ExternalFunc is a host callback reachable from the program if its name
// was declared at construction time. Positional arguments and keyword
// arguments arrive as native Go values; the returned value is converted
// back into the interpreter.
type ExternalFunc func(args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// PrintFunc receives assembled print output; the stream tag is always
// "stdout".
type PrintFunc func(stream, text string)

// Monty is a parsed, scope-resolved program. It is immutable and may be
// run any number of times; every run starts from a fresh object store.
type Monty struct {
	source    string
	prog      *parser.Program
	inputs    []string
	externals []string
}

type config struct {
	inputs    []string
	externals []string
}

// Option configures program construction.
type Option func(*config)

// WithInputs declares the input names the program may reference.
func WithInputs(names ...string) Option {
	return func(c *config) { c.inputs = append(c.inputs, names...) }
}

// WithExternalFunctions declares the external function names the program
// may call.
func WithExternalFunctions(names ...string) Option {
	return func(c *config) { c.externals = append(c.externals, names...) }
}

// New parses and scope-resolves source. Malformed source fails with a
// SyntaxError pointing at the offending location.
func New(source string, opts ...Option) (*Monty, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	prog, err := parser.Parse(source, c.inputs, c.externals, interp.BuiltinNames())
	if err != nil {
		return nil, publicError(pkgerrors.WithMessage(err, "compile"))
	}
	return &Monty{
		source:    source,
		prog:      prog,
		inputs:    c.inputs,
		externals: c.externals,
	}, nil
}

// RunOptions carries everything one execution needs.
type RunOptions struct {
	// Inputs maps declared input names to native values. Providing it
	// when no inputs were declared is a TypeError, and so is leaving it
	// nil when inputs were declared; omitting one declared name from a
	// provided map is a KeyError.
	Inputs map[string]interface{}
	// ExternalFunctions maps declared names to host callbacks.
	ExternalFunctions map[string]ExternalFunc
	// Print receives program output; nil discards it.
	Print PrintFunc
	// Limits bounds the run; nil means the defaults (unbounded except
	// for the recursion depth).
	Limits *ResourceLimits
}

// Run executes the program and returns the value of the last top-level
// expression converted to native Go, or nil when the program ends on a
// non-expression statement.
func (m *Monty) Run(opts RunOptions) (interface{}, error) {
	if err := m.checkInputs(opts.Inputs); err != nil {
		return nil, err
	}

	var limits ResourceLimits
	if opts.Limits != nil {
		limits = *opts.Limits
	}
	gov := object.NewGovernor(limits.internal())
	store := object.NewStore(gov)

	var externals map[string]interp.ExternalFunc
	if opts.ExternalFunctions != nil {
		externals = make(map[string]interp.ExternalFunc, len(opts.ExternalFunctions))
		for name, fn := range opts.ExternalFunctions {
			externals[name] = interp.ExternalFunc(fn)
		}
	}
	in := interp.New(m.prog, store, interp.PrintFunc(opts.Print), externals)
	defer in.Finish()

	for name, slot := range m.prog.InputSlots {
		if err := in.BindInput(slot, opts.Inputs[name]); err != nil {
			return nil, publicError(err)
		}
	}

	result, err := in.Run()
	if err != nil {
		return nil, publicError(err)
	}
	native, err := in.ToNativeResult(result)
	if err != nil {
		return nil, publicError(err)
	}
	return native, nil
}

// checkInputs validates the provided inputs against the declaration,
// preserving the original binding's messages.
func (m *Monty) checkInputs(inputs map[string]interface{}) error {
	if len(m.inputs) == 0 {
		if inputs != nil {
			return &Error{Kind: TypeError, Message: "No input variables declared but inputs dict was provided"}
		}
		return nil
	}
	if inputs == nil {
		return &Error{Kind: TypeError, Message: "Missing required inputs"}
	}
	for _, name := range m.inputs {
		if _, ok := inputs[name]; !ok {
			return &Error{Kind: KeyError, Message: "Missing required input: '" + name + "'"}
		}
	}
	for name := range inputs {
		if _, ok := m.prog.InputSlots[name]; !ok {
			return &Error{Kind: TypeError, Message: "unexpected input '" + name + "'"}
		}
	}
	return nil
}

// Source returns the program text the instance was built from.
func (m *Monty) Source() string { return m.source }

func publicError(err error) error {
	cause := pkgerrors.Cause(err)
	if e, ok := cause.(*errors.Error); ok {
		return &Error{Kind: Kind(e.Kind), Message: e.Message, Line: e.Location.Line, Column: e.Location.Column}
	}
	return &Error{Kind: RuntimeError, Message: err.Error()}
}
