// internal/object/equal.go
package object

import (
	"hash/fnv"
	"math"
	"strconv"

	"monty/internal/errors"
)

// DeepEquals is structural equality: numeric values compare across
// Bool/Int/Float, containers compare element-wise with an early length
// check, and distinct types are otherwise unequal.
func (s *Store) DeepEquals(a, b Value) (bool, error) {
	if a.IsNumber() && b.IsNumber() {
		if a.kind == KindFloat || b.kind == KindFloat {
			return a.AsFloat64() == b.AsFloat64(), nil
		}
		return a.i == b.i, nil
	}
	if a.kind != b.kind {
		return false, nil
	}
	switch a.kind {
	case KindNone:
		return true, nil
	case KindStr:
		return s.StrVal(a) == s.StrVal(b), nil
	case KindBytes:
		ab, bb := s.BytesVal(a), s.BytesVal(b)
		if len(ab) != len(bb) {
			return false, nil
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false, nil
			}
		}
		return true, nil
	case KindList, KindTuple:
		ae, be := s.Elems(a), s.Elems(b)
		if len(ae) != len(be) {
			return false, nil
		}
		for i := range ae {
			eq, err := s.DeepEquals(ae[i], be[i])
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindDict:
		at, bt := s.TableVal(a), s.TableVal(b)
		if at.size != bt.size {
			return false, nil
		}
		for i := range at.entries {
			en := &at.entries[i]
			if en.dead {
				continue
			}
			bv, ok, err := bt.get(s, en.key)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
			eq, err := s.DeepEquals(en.val, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindSet:
		at, bt := s.TableVal(a), s.TableVal(b)
		if at.size != bt.size {
			return false, nil
		}
		for i := range at.entries {
			en := &at.entries[i]
			if en.dead {
				continue
			}
			_, ok, err := bt.get(s, en.key)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case KindRange:
		ar, br := s.cells[a.h].rng, s.cells[b.h].rng
		// Ranges compare by the sequence they denote.
		if ar.length() != br.length() {
			return false, nil
		}
		if ar.length() == 0 {
			return true, nil
		}
		if ar.start != br.start {
			return false, nil
		}
		return ar.length() == 1 || ar.step == br.step, nil
	default:
		// Functions, externals, exceptions, iterators: identity.
		return a.h == b.h, nil
	}
}

// Hash is defined on immutables, tuples of hashables, bytes and strings.
// Numeric values that compare equal hash equal: ints and bools hash by
// integer value, floats with integral value hash as that integer.
func (s *Store) Hash(v Value) (uint64, error) {
	switch v.kind {
	case KindNone:
		return 0x9e3779b97f4a7c15, nil
	case KindBool, KindInt:
		return hashInt(v.i), nil
	case KindFloat:
		f := v.f
		if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return hashInt(int64(f)), nil
		}
		return hashBytes([]byte(strconv.FormatUint(math.Float64bits(f), 16)), 0x6c62272e07bb0142), nil
	case KindStr:
		return hashBytes([]byte(s.StrVal(v)), 0xcbf29ce484222325), nil
	case KindBytes:
		return hashBytes(s.BytesVal(v), 0x100000001b3), nil
	case KindTuple:
		h := fnv.New64a()
		var buf [8]byte
		for _, e := range s.Elems(v) {
			eh, err := s.Hash(e)
			if err != nil {
				return 0, errors.New(errors.TypeError, "unhashable type: 'tuple'")
			}
			for i := 0; i < 8; i++ {
				buf[i] = byte(eh >> (8 * i))
			}
			h.Write(buf[:])
		}
		return h.Sum64(), nil
	default:
		return 0, unhashable(v.kind)
	}
}

func hashInt(n int64) uint64 {
	x := uint64(n)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return x
}

func hashBytes(b []byte, seed uint64) uint64 {
	h := fnv.New64a()
	var s [8]byte
	for i := 0; i < 8; i++ {
		s[i] = byte(seed >> (8 * i))
	}
	h.Write(s[:])
	h.Write(b)
	return h.Sum64()
}

// Compare orders two values for <, <=, >, >= and sorting. Defined for
// numbers, strings, bytes, and element-wise for lists and tuples.
func (s *Store) Compare(a, b Value) (int, error) {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.AsFloat64(), b.AsFloat64()
		if a.kind != KindFloat && b.kind != KindFloat {
			switch {
			case a.i < b.i:
				return -1, nil
			case a.i > b.i:
				return 1, nil
			}
			return 0, nil
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}
	if a.kind == KindStr && b.kind == KindStr {
		as, bs := s.StrVal(a), s.StrVal(b)
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		}
		return 0, nil
	}
	if a.kind == KindBytes && b.kind == KindBytes {
		ab, bb := s.BytesVal(a), s.BytesVal(b)
		n := len(ab)
		if len(bb) < n {
			n = len(bb)
		}
		for i := 0; i < n; i++ {
			if ab[i] != bb[i] {
				if ab[i] < bb[i] {
					return -1, nil
				}
				return 1, nil
			}
		}
		switch {
		case len(ab) < len(bb):
			return -1, nil
		case len(ab) > len(bb):
			return 1, nil
		}
		return 0, nil
	}
	if (a.kind == KindList && b.kind == KindList) || (a.kind == KindTuple && b.kind == KindTuple) {
		ae, be := s.Elems(a), s.Elems(b)
		n := len(ae)
		if len(be) < n {
			n = len(be)
		}
		for i := 0; i < n; i++ {
			c, err := s.Compare(ae[i], be[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		switch {
		case len(ae) < len(be):
			return -1, nil
		case len(ae) > len(be):
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.New(errors.TypeError, "'<' not supported between instances of '%s' and '%s'",
		a.kind.TypeName(), b.kind.TypeName())
}
