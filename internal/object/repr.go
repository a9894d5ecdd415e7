// internal/object/repr.go
package object

import (
	"math"
	"strconv"
	"strings"

	"monty/internal/errors"
)

// classBuiltins are the builtin names that denote types; type() returns
// them and their repr takes the class form.
var classBuiltins = map[string]bool{
	"NoneType": true,
	"bool":     true,
	"int":      true,
	"float":    true,
	"str":      true,
	"bytes":    true,
	"list":     true,
	"tuple":    true,
	"dict":     true,
	"set":      true,
	"range":    true,
}

// Str renders the informal textual form: strings bare, everything else
// like Repr. Cyclic containers short-circuit to [...] / {...}.
func (s *Store) Str(v Value) string { return s.format(v, false, nil) }

// Repr renders the formal textual form with strings quoted.
func (s *Store) Repr(v Value) string { return s.format(v, true, nil) }

func (s *Store) format(v Value, quote bool, seen map[Handle]bool) string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindStr:
		if quote {
			return quoteStr(s.StrVal(v))
		}
		return s.StrVal(v)
	case KindBuiltin:
		if classBuiltins[v.s] || errors.IsExceptionName(v.s) {
			return "<class '" + v.s + "'>"
		}
		return "<built-in function " + v.s + ">"
	case KindBytes:
		return quoteBytes(s.BytesVal(v))
	case KindList, KindTuple:
		if seen[v.h] {
			return "[...]"
		}
		seen = markSeen(seen, v.h)
		defer delete(seen, v.h)
		var sb strings.Builder
		open, close := "[", "]"
		if v.kind == KindTuple {
			open, close = "(", ")"
		}
		sb.WriteString(open)
		elems := s.Elems(v)
		for i, e := range elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.format(e, true, seen))
		}
		if v.kind == KindTuple && len(elems) == 1 {
			sb.WriteString(",")
		}
		sb.WriteString(close)
		return sb.String()
	case KindDict:
		if seen[v.h] {
			return "{...}"
		}
		seen = markSeen(seen, v.h)
		defer delete(seen, v.h)
		var sb strings.Builder
		sb.WriteString("{")
		first := true
		t := s.TableVal(v)
		for i := range t.entries {
			en := &t.entries[i]
			if en.dead {
				continue
			}
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(s.format(en.key, true, seen))
			sb.WriteString(": ")
			sb.WriteString(s.format(en.val, true, seen))
		}
		sb.WriteString("}")
		return sb.String()
	case KindSet:
		t := s.TableVal(v)
		if t.size == 0 {
			return "set()"
		}
		if seen[v.h] {
			return "{...}"
		}
		seen = markSeen(seen, v.h)
		defer delete(seen, v.h)
		var sb strings.Builder
		sb.WriteString("{")
		first := true
		for i := range t.entries {
			en := &t.entries[i]
			if en.dead {
				continue
			}
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(s.format(en.key, true, seen))
		}
		sb.WriteString("}")
		return sb.String()
	case KindRange:
		r := s.cells[v.h].rng
		if r.step == 1 {
			return "range(" + strconv.FormatInt(r.start, 10) + ", " + strconv.FormatInt(r.stop, 10) + ")"
		}
		return "range(" + strconv.FormatInt(r.start, 10) + ", " + strconv.FormatInt(r.stop, 10) +
			", " + strconv.FormatInt(r.step, 10) + ")"
	case KindFunc:
		return "<function " + s.FuncVal(v).Name + ">"
	case KindExternal:
		return "<external function " + s.ExternalVal(v).Name + ">"
	case KindException:
		exc := s.ExceptionVal(v)
		if quote {
			var sb strings.Builder
			sb.WriteString(exc.Kind)
			sb.WriteString("(")
			for i, a := range exc.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(s.format(a, true, seen))
			}
			sb.WriteString(")")
			return sb.String()
		}
		return s.ExceptionMessage(v)
	case KindIterator:
		return "<iterator>"
	case KindBound:
		return "<built-in method " + s.BoundVal(v).Name + ">"
	}
	return "<object>"
}

// ExceptionMessage renders str(exc): the single argument's str form, or
// all args as a tuple, or the empty string.
func (s *Store) ExceptionMessage(v Value) string {
	exc := s.ExceptionVal(v)
	switch len(exc.Args) {
	case 0:
		return ""
	case 1:
		return s.Str(exc.Args[0])
	default:
		var sb strings.Builder
		sb.WriteString("(")
		for i, a := range exc.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.format(a, true, nil))
		}
		sb.WriteString(")")
		return sb.String()
	}
}

func markSeen(seen map[Handle]bool, h Handle) map[Handle]bool {
	if seen == nil {
		seen = make(map[Handle]bool)
	}
	seen[h] = true
	return seen
}

// formatFloat matches the usual shortest-roundtrip form, keeping a
// trailing ".0" on integral floats.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	out := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

func quoteStr(v string) string {
	quote := byte('\'')
	if strings.Contains(v, "'") && !strings.Contains(v, "\"") {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range v {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\\':
			sb.WriteString(`\\`)
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func quoteBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString("b'")
	for _, c := range b {
		switch {
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '\'':
			sb.WriteString(`\'`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			const hex = "0123456789abcdef"
			sb.WriteString(`\x`)
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0xf])
		}
	}
	sb.WriteString("'")
	return sb.String()
}
