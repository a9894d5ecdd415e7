// errors.go
package monty

import "fmt"

// Kind is the error taxonomy surfaced to the host. Uncaught program
// exceptions keep their kind and message.
type Kind string

const (
	SyntaxError         Kind = "SyntaxError"
	NameError           Kind = "NameError"
	TypeError           Kind = "TypeError"
	ValueError          Kind = "ValueError"
	KeyError            Kind = "KeyError"
	IndexError          Kind = "IndexError"
	AttributeError      Kind = "AttributeError"
	ZeroDivisionError   Kind = "ZeroDivisionError"
	AssertionError      Kind = "AssertionError"
	RuntimeError        Kind = "RuntimeError"
	NotImplementedError Kind = "NotImplementedError"
	MemoryError         Kind = "MemoryError"
	RecursionError      Kind = "RecursionError"
	TimeoutError        Kind = "TimeoutError"
)

// Error is the single error type the package returns.
type Error struct {
	Kind    Kind
	Message string
	// Line and Column are set for syntax errors.
	Line   int
	Column int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d:%d)", e.Kind, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a monty error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
