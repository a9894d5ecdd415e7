// internal/interp/methods_str.go
package interp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"monty/internal/errors"
	"monty/internal/object"
)

func init() {
	registerMethods(object.KindStr, map[string]methodFn{
		"lower":        strLower,
		"upper":        strUpper,
		"capitalize":   strCapitalize,
		"title":        strTitle,
		"swapcase":     strSwapcase,
		"casefold":     strCasefold,
		"strip":        strStrip,
		"lstrip":       strLstrip,
		"rstrip":       strRstrip,
		"find":         strFind,
		"rfind":        strRfind,
		"index":        strIndexMethod,
		"rindex":       strRindex,
		"count":        strCount,
		"startswith":   strStartswith,
		"endswith":     strEndswith,
		"replace":      strReplace,
		"split":        strSplit,
		"rsplit":       strRsplit,
		"splitlines":   strSplitlines,
		"partition":    strPartition,
		"rpartition":   strRpartition,
		"center":       strCenter,
		"ljust":        strLjust,
		"rjust":        strRjust,
		"zfill":        strZfill,
		"removeprefix": strRemoveprefix,
		"removesuffix": strRemovesuffix,
		"encode":       strEncode,
		"join":         strJoin,
		"isalpha":      strIsalpha,
		"isdigit":      strIsdigit,
		"isalnum":      strIsalnum,
		"isnumeric":    strIsnumeric,
		"isdecimal":    strIsdecimal,
		"isspace":      strIsspace,
		"islower":      strIslower,
		"isupper":      strIsupper,
		"isascii":      strIsascii,
		"isidentifier": strIsidentifier,
		"istitle":      strIstitle,
	})
}

// casefold applies Unicode case folding. A fresh Caser per call keeps
// the transform state private.
func casefold(s string) string {
	return cases.Fold().String(s)
}

func (in *Interp) recvStr(recv object.Value) string {
	return in.store.StrVal(recv)
}

// strResult wraps a method output as a tracked value; outputs of at most
// MaxInlineStr bytes stay immediate.
func (in *Interp) strResult(s string) (object.Value, error) {
	v, err := in.store.NewStr(s)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func (in *Interp) strArgAt(name string, args []object.Value, i int) (string, error) {
	if args[i].Kind() != object.KindStr {
		return "", in.raise(errors.TypeError, "%s() argument must be str, not %s", name, args[i].Kind().TypeName())
	}
	return in.store.StrVal(args[i]), nil
}

// runeBounds resolves optional start/end arguments (accepting None) into
// rune index bounds.
func (in *Interp) runeBounds(name string, args []object.Value, first int, length int) (int, int, error) {
	start, end := 0, length
	if len(args) > first && !args[first].IsNone() {
		i, err := in.indexValue(args[first], name)
		if err != nil {
			return 0, 0, err
		}
		start = clampBound(i, length)
	}
	if len(args) > first+1 && !args[first+1].IsNone() {
		i, err := in.indexValue(args[first+1], name)
		if err != nil {
			return 0, 0, err
		}
		end = clampBound(i, length)
	}
	return start, end, nil
}

// ---- case family ----

func strLower(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("lower", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strResult(strings.ToLower(in.recvStr(recv)))
}

func strUpper(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("upper", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strResult(strings.ToUpper(in.recvStr(recv)))
}

func strCapitalize(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("capitalize", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	if s == "" {
		return in.strResult("")
	}
	r, size := utf8.DecodeRuneInString(s)
	return in.strResult(string(unicode.ToUpper(r)) + strings.ToLower(s[size:]))
}

// strTitle uppercases word-initial letters and lowercases the rest. A
// letter is word-initial when the preceding character is not
// alphanumeric, so an apostrophe still starts a new "word".
func strTitle(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("title", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	var sb strings.Builder
	prevAlnum := false
	for _, r := range in.recvStr(recv) {
		if unicode.IsLetter(r) {
			if prevAlnum {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
		} else {
			sb.WriteRune(r)
		}
		prevAlnum = unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return in.strResult(sb.String())
}

func strSwapcase(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("swapcase", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	var sb strings.Builder
	for _, r := range in.recvStr(recv) {
		switch {
		case unicode.IsUpper(r):
			sb.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r):
			sb.WriteRune(unicode.ToUpper(r))
		default:
			sb.WriteRune(r)
		}
	}
	return in.strResult(sb.String())
}

func strCasefold(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("casefold", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strResult(casefold(in.recvStr(recv)))
}

// ---- strip family ----

func (in *Interp) stripArg(name string, args []object.Value) (string, bool, error) {
	if len(args) == 0 || args[0].IsNone() {
		return "", false, nil
	}
	if args[0].Kind() != object.KindStr {
		return "", false, in.raise(errors.TypeError, "%s arg must be None or str", name)
	}
	return in.store.StrVal(args[0]), true, nil
}

func strStrip(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("strip", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	cut, has, err := in.stripArg("strip", args)
	if err != nil {
		return object.Value{}, err
	}
	if !has {
		return in.strResult(strings.TrimSpace(in.recvStr(recv)))
	}
	return in.strResult(strings.Trim(in.recvStr(recv), cut))
}

func strLstrip(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("lstrip", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	cut, has, err := in.stripArg("lstrip", args)
	if err != nil {
		return object.Value{}, err
	}
	if !has {
		return in.strResult(strings.TrimLeftFunc(in.recvStr(recv), unicode.IsSpace))
	}
	return in.strResult(strings.TrimLeft(in.recvStr(recv), cut))
}

func strRstrip(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rstrip", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	cut, has, err := in.stripArg("rstrip", args)
	if err != nil {
		return object.Value{}, err
	}
	if !has {
		return in.strResult(strings.TrimRightFunc(in.recvStr(recv), unicode.IsSpace))
	}
	return in.strResult(strings.TrimRight(in.recvStr(recv), cut))
}

// ---- find family; indices are in Unicode scalars ----

func (in *Interp) findRunes(name string, recv object.Value, args []object.Value, reverse bool) (int, error) {
	sub, err := in.strArgAt(name, args, 0)
	if err != nil {
		return 0, err
	}
	runes := []rune(in.recvStr(recv))
	start, end, err := in.runeBounds(name, args, 1, len(runes))
	if err != nil {
		return 0, err
	}
	if start > end {
		return -1, nil
	}
	hay := string(runes[start:end])
	var byteIdx int
	if reverse {
		byteIdx = strings.LastIndex(hay, sub)
	} else {
		byteIdx = strings.Index(hay, sub)
	}
	if byteIdx < 0 {
		return -1, nil
	}
	return start + utf8.RuneCountInString(hay[:byteIdx]), nil
}

func strFind(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("find", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	idx, err := in.findRunes("find", recv, args, false)
	if err != nil {
		return object.Value{}, err
	}
	return object.Int(int64(idx)), nil
}

func strRfind(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rfind", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	idx, err := in.findRunes("rfind", recv, args, true)
	if err != nil {
		return object.Value{}, err
	}
	return object.Int(int64(idx)), nil
}

func strIndexMethod(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("index", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	idx, err := in.findRunes("index", recv, args, false)
	if err != nil {
		return object.Value{}, err
	}
	if idx < 0 {
		return object.Value{}, in.raise(errors.ValueError, "substring not found")
	}
	return object.Int(int64(idx)), nil
}

func strRindex(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rindex", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	idx, err := in.findRunes("rindex", recv, args, true)
	if err != nil {
		return object.Value{}, err
	}
	if idx < 0 {
		return object.Value{}, in.raise(errors.ValueError, "substring not found")
	}
	return object.Int(int64(idx)), nil
}

func strCount(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("count", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	sub, err := in.strArgAt("count", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	runes := []rune(in.recvStr(recv))
	start, end, err := in.runeBounds("count", args, 1, len(runes))
	if err != nil {
		return object.Value{}, err
	}
	if start > end {
		return object.Int(0), nil
	}
	hay := string(runes[start:end])
	if sub == "" {
		return object.Int(int64(utf8.RuneCountInString(hay) + 1)), nil
	}
	return object.Int(int64(strings.Count(hay, sub))), nil
}

// ---- startswith / endswith, accepting a tuple of candidates ----

func (in *Interp) affixCheck(name string, recv object.Value, args []object.Value, suffix bool) (bool, error) {
	runes := []rune(in.recvStr(recv))
	start, end, err := in.runeBounds(name, args, 1, len(runes))
	if err != nil {
		return false, err
	}
	if start > end {
		return false, nil
	}
	hay := string(runes[start:end])
	var cands []string
	switch args[0].Kind() {
	case object.KindStr:
		cands = []string{in.store.StrVal(args[0])}
	case object.KindTuple:
		for _, e := range in.store.Elems(args[0]) {
			if e.Kind() != object.KindStr {
				return false, in.raise(errors.TypeError,
					"tuple for %s must only contain str, not %s", name, e.Kind().TypeName())
			}
			cands = append(cands, in.store.StrVal(e))
		}
	default:
		return false, in.raise(errors.TypeError,
			"%s first arg must be str or a tuple of str, not %s", name, args[0].Kind().TypeName())
	}
	for _, c := range cands {
		if suffix && strings.HasSuffix(hay, c) {
			return true, nil
		}
		if !suffix && strings.HasPrefix(hay, c) {
			return true, nil
		}
	}
	return false, nil
}

func strStartswith(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("startswith", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	ok, err := in.affixCheck("startswith", recv, args, false)
	if err != nil {
		return object.Value{}, err
	}
	return object.Bool(ok), nil
}

func strEndswith(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("endswith", args, 1, 3); err != nil {
		return object.Value{}, err
	}
	ok, err := in.affixCheck("endswith", recv, args, true)
	if err != nil {
		return object.Value{}, err
	}
	return object.Bool(ok), nil
}

func strReplace(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("replace", args, 2, 3); err != nil {
		return object.Value{}, err
	}
	old, err := in.strArgAt("replace", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	new, err := in.strArgAt("replace", args, 1)
	if err != nil {
		return object.Value{}, err
	}
	count := -1
	if len(args) == 3 && !args[2].IsNone() {
		i, err := in.indexValue(args[2], "replace")
		if err != nil {
			return object.Value{}, err
		}
		count = int(i)
	}
	return in.strResult(strings.Replace(in.recvStr(recv), old, new, count))
}

// ---- split family ----

func (in *Interp) splitArgs(name string, args []object.Value, kwargs []kwarg) (sep string, hasSep bool, maxsplit int, err error) {
	maxsplit = -1
	sepVal := object.None()
	if len(args) > 0 {
		sepVal = args[0]
	}
	if v, ok := kwargLookup(kwargs, "sep"); ok {
		sepVal = v
	}
	if !sepVal.IsNone() {
		if sepVal.Kind() != object.KindStr {
			return "", false, 0, in.raise(errors.TypeError, "must be str or None, not %s", sepVal.Kind().TypeName())
		}
		sep = in.store.StrVal(sepVal)
		if sep == "" {
			return "", false, 0, in.raise(errors.ValueError, "empty separator")
		}
		hasSep = true
	}
	msVal := object.Value{}
	if len(args) > 1 {
		msVal = args[1]
	}
	if v, ok := kwargLookup(kwargs, "maxsplit"); ok {
		msVal = v
	}
	if msVal.IsValid() && !msVal.IsNone() {
		i, ierr := in.indexValue(msVal, name)
		if ierr != nil {
			return "", false, 0, ierr
		}
		maxsplit = int(i)
	}
	return sep, hasSep, maxsplit, nil
}

func (in *Interp) stringsToList(parts []string) (object.Value, error) {
	elems := make([]object.Value, len(parts))
	for i, p := range parts {
		v, err := in.store.NewStr(p)
		if err != nil {
			return object.Value{}, in.raiseFrom(err)
		}
		elems[i] = in.track(v)
	}
	lv, err := in.store.NewList(elems)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(lv), nil
}

func strSplit(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("split", args, 0, 2); err != nil {
		return object.Value{}, err
	}
	sep, hasSep, maxsplit, err := in.splitArgs("split", args, kwargs)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	if !hasSep {
		return in.stringsToList(whitespaceSplit(s, maxsplit, false))
	}
	var parts []string
	if maxsplit < 0 {
		parts = strings.Split(s, sep)
	} else {
		parts = strings.SplitN(s, sep, maxsplit+1)
	}
	return in.stringsToList(parts)
}

func strRsplit(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rsplit", args, 0, 2); err != nil {
		return object.Value{}, err
	}
	sep, hasSep, maxsplit, err := in.splitArgs("rsplit", args, kwargs)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	if !hasSep {
		return in.stringsToList(whitespaceSplit(s, maxsplit, true))
	}
	parts := strings.Split(s, sep)
	if maxsplit >= 0 && len(parts) > maxsplit+1 {
		// Re-join the head so only the last maxsplit separators split.
		head := strings.Join(parts[:len(parts)-maxsplit], sep)
		parts = append([]string{head}, parts[len(parts)-maxsplit:]...)
	}
	return in.stringsToList(parts)
}

// whitespaceSplit collapses whitespace runs and strips the ends, the
// no-separator behavior of split and rsplit.
func whitespaceSplit(s string, maxsplit int, fromRight bool) []string {
	fields := strings.Fields(s)
	if maxsplit < 0 || len(fields) <= maxsplit+1 {
		return fields
	}
	if !fromRight {
		// Rebuild the tail from the original, keeping interior spacing.
		out := fields[:maxsplit:maxsplit]
		rest := s
		for i := 0; i < maxsplit; i++ {
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
			cut := strings.IndexFunc(rest, unicode.IsSpace)
			rest = rest[cut:]
		}
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		rest = strings.TrimRightFunc(rest, unicode.IsSpace)
		return append(out, rest)
	}
	head := s
	out := make([]string, 0, maxsplit+1)
	tail := fields[len(fields)-maxsplit:]
	for i := 0; i < maxsplit; i++ {
		head = strings.TrimRightFunc(head, unicode.IsSpace)
		cut := strings.LastIndexFunc(head, unicode.IsSpace)
		head = head[:cut+1]
	}
	head = strings.TrimFunc(head, unicode.IsSpace)
	out = append(out, head)
	return append(out, tail...)
}

func strSplitlines(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("splitlines", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	keepends := false
	if len(args) == 1 {
		keepends = in.truthy(args[0])
	}
	if v, ok := kwargLookup(kwargs, "keepends"); ok {
		keepends = in.truthy(v)
	}
	s := in.recvStr(recv)
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\n' || c == '\r' {
			endLen := 1
			if c == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				endLen = 2
			}
			if keepends {
				parts = append(parts, s[start:i+endLen])
			} else {
				parts = append(parts, s[start:i])
			}
			i += endLen
			start = i
			continue
		}
		i++
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return in.stringsToList(parts)
}

func strPartition(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("partition", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	sep, err := in.strArgAt("partition", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	if sep == "" {
		return object.Value{}, in.raise(errors.ValueError, "empty separator")
	}
	s := in.recvStr(recv)
	before, after, found := strings.Cut(s, sep)
	if !found {
		return in.strTriple(s, "", "")
	}
	return in.strTriple(before, sep, after)
}

func strRpartition(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rpartition", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	sep, err := in.strArgAt("rpartition", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	if sep == "" {
		return object.Value{}, in.raise(errors.ValueError, "empty separator")
	}
	s := in.recvStr(recv)
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return in.strTriple("", "", s)
	}
	return in.strTriple(s[:idx], sep, s[idx+len(sep):])
}

func (in *Interp) strTriple(a, b, c string) (object.Value, error) {
	av, err := in.store.NewStr(a)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(av)
	bv, err := in.store.NewStr(b)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(bv)
	cv, err := in.store.NewStr(c)
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	in.track(cv)
	t, err := in.store.NewTuple([]object.Value{av, bv, cv})
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(t), nil
}

// ---- padding ----

func (in *Interp) padArgs(name string, args []object.Value) (int, rune, error) {
	width, err := in.indexValue(args[0], name)
	if err != nil {
		return 0, 0, err
	}
	fill := ' '
	if len(args) == 2 {
		f, serr := in.strArgAt(name, args, 1)
		if serr != nil {
			return 0, 0, serr
		}
		if utf8.RuneCountInString(f) != 1 {
			return 0, 0, in.raise(errors.TypeError, "The fill character must be exactly one character long")
		}
		fill, _ = utf8.DecodeRuneInString(f)
	}
	return int(width), fill, nil
}

func strCenter(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("center", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	width, fill, err := in.padArgs("center", args)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	n := utf8.RuneCountInString(s)
	if n >= width {
		return in.strResult(s)
	}
	total := width - n
	left := total/2 + (total & width & 1)
	return in.strResult(strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), total-left))
}

func strLjust(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("ljust", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	width, fill, err := in.padArgs("ljust", args)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	n := utf8.RuneCountInString(s)
	if n >= width {
		return in.strResult(s)
	}
	return in.strResult(s + strings.Repeat(string(fill), width-n))
}

func strRjust(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("rjust", args, 1, 2); err != nil {
		return object.Value{}, err
	}
	width, fill, err := in.padArgs("rjust", args)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	n := utf8.RuneCountInString(s)
	if n >= width {
		return in.strResult(s)
	}
	return in.strResult(strings.Repeat(string(fill), width-n) + s)
}

// strZfill pads with zeros, keeping a leading sign in front.
func strZfill(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("zfill", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	width, err := in.indexValue(args[0], "zfill")
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	n := utf8.RuneCountInString(s)
	if n >= int(width) {
		return in.strResult(s)
	}
	sign := ""
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign, s = s[:1], s[1:]
	}
	return in.strResult(sign + strings.Repeat("0", int(width)-n) + s)
}

func strRemoveprefix(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("removeprefix", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	prefix, err := in.strArgAt("removeprefix", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	return in.strResult(strings.TrimPrefix(in.recvStr(recv), prefix))
}

func strRemovesuffix(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("removesuffix", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	suffix, err := in.strArgAt("removesuffix", args, 0)
	if err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	if suffix != "" && strings.HasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return in.strResult(s)
}

// strEncode defaults to UTF-8 and accepts the case-insensitive aliases.
func strEncode(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("encode", args, 0, 1); err != nil {
		return object.Value{}, err
	}
	encoding := "utf-8"
	if len(args) == 1 {
		e, err := in.strArgAt("encode", args, 0)
		if err != nil {
			return object.Value{}, err
		}
		encoding = e
	}
	if v, ok := kwargLookup(kwargs, "encoding"); ok {
		if v.Kind() != object.KindStr {
			return object.Value{}, in.raise(errors.TypeError, "encode() argument 'encoding' must be str")
		}
		encoding = in.store.StrVal(v)
	}
	switch casefold(encoding) {
	case "utf-8", "utf8":
	default:
		return object.Value{}, in.raise(errors.ValueError, "unknown encoding: %s", encoding)
	}
	v, err := in.store.NewBytes([]byte(in.recvStr(recv)))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

func strJoin(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("join", args, 1, 1); err != nil {
		return object.Value{}, err
	}
	elems, err := in.collect(args[0])
	if err != nil {
		return object.Value{}, err
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e.Kind() != object.KindStr {
			return object.Value{}, in.raise(errors.TypeError,
				"sequence item %d: expected str instance, %s found", i, e.Kind().TypeName())
		}
		parts[i] = in.store.StrVal(e)
	}
	v, err := in.store.HeapStr(strings.Join(parts, in.recvStr(recv)))
	if err != nil {
		return object.Value{}, in.raiseFrom(err)
	}
	return in.track(v), nil
}

// ---- predicates; empty strings are false for every is* predicate except isascii ----

func (in *Interp) strPredicate(recv object.Value, per func(rune) bool) object.Value {
	s := in.recvStr(recv)
	if s == "" {
		return object.Bool(false)
	}
	for _, r := range s {
		if !per(r) {
			return object.Bool(false)
		}
	}
	return object.Bool(true)
}

func strIsalpha(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isalpha", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, unicode.IsLetter), nil
}

func strIsdigit(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isdigit", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.Is(unicode.No, r)
	}), nil
}

func strIsalnum(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isalnum", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.No, r)
	}), nil
}

func strIsnumeric(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isnumeric", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.No, r)
	}), nil
}

func strIsdecimal(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isdecimal", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, func(r rune) bool {
		return unicode.Is(unicode.Nd, r)
	}), nil
}

func strIsspace(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isspace", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	return in.strPredicate(recv, unicode.IsSpace), nil
}

func strIslower(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("islower", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	hasCased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return object.Bool(false), nil
		}
		if unicode.IsLower(r) {
			hasCased = true
		}
	}
	return object.Bool(hasCased), nil
}

func strIsupper(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isupper", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return object.Bool(false), nil
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			hasCased = true
		}
	}
	return object.Bool(hasCased), nil
}

func strIsascii(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isascii", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	// The empty string is ASCII, unlike the other predicates.
	for _, r := range in.recvStr(recv) {
		if r > 0x7f {
			return object.Bool(false), nil
		}
	}
	return object.Bool(true), nil
}

func strIsidentifier(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("isidentifier", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	if s == "" {
		return object.Bool(false), nil
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return object.Bool(false), nil
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return object.Bool(false), nil
		}
	}
	return object.Bool(true), nil
}

// strIstitle mirrors title(): every letter run must start uppercase after
// a non-alphanumeric boundary and continue lowercase.
func strIstitle(in *Interp, recv object.Value, args []object.Value, kwargs []kwarg) (object.Value, error) {
	if err := in.arity("istitle", args, 0, 0); err != nil {
		return object.Value{}, err
	}
	s := in.recvStr(recv)
	hasCased := false
	prevAlnum := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevAlnum {
				if unicode.IsUpper(r) || unicode.IsTitle(r) {
					return object.Bool(false), nil
				}
			} else {
				if unicode.IsLower(r) {
					return object.Bool(false), nil
				}
				if unicode.IsUpper(r) || unicode.IsTitle(r) {
					hasCased = true
				}
			}
		}
		prevAlnum = unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return object.Bool(hasCased), nil
}
