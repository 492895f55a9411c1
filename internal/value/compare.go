package value

import (
	"golang.org/x/text/unicode/norm"
)

// typeWeight orders values of different types.
// The document type order: null < bool < int < string < array < object.
func typeWeight(v Value) int {
	switch v.(type) {
	case nil, Null:
		return 0
	case Bool:
		return 1
	case Int:
		return 2
	case String:
		return 3
	case Array:
		return 4
	case Object:
		return 5
	default:
		return 6
	}
}

// Compare returns -1, 0, or 1 ordering a before, equal to, or after b.
//
// Values of different types order by type weight. Within a type:
//   - bool: false < true
//   - int: numeric order
//   - string: byte order after NFC normalization
//   - array: elementwise, shorter prefix first
//   - object: by sorted key sequence, then by value per key
func Compare(a, b Value) int {
	wa, wb := typeWeight(a), typeWeight(b)
	if wa != wb {
		return cmpInt(wa, wb)
	}

	switch av := a.(type) {
	case nil, Null:
		return 0
	case Bool:
		bv := b.(Bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case Int:
		return cmpInt64(int64(av), int64(b.(Int)))
	case String:
		as := norm.NFC.String(string(av))
		bs := norm.NFC.String(string(b.(String)))
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	case Array:
		bv := b.(Array)
		n := len(av)
		if len(bv) < n {
			n = len(bv)
		}
		for i := 0; i < n; i++ {
			if c := Compare(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(av), len(bv))
	case Object:
		bv := b.(Object)
		ak, bk := av.SortedKeys(), bv.SortedKeys()
		n := len(ak)
		if len(bk) < n {
			n = len(bk)
		}
		for i := 0; i < n; i++ {
			switch {
			case ak[i] < bk[i]:
				return -1
			case ak[i] > bk[i]:
				return 1
			}
			if c := Compare(av[ak[i]], bv[bk[i]]); c != 0 {
				return c
			}
		}
		return cmpInt(len(ak), len(bk))
	default:
		return 0
	}
}

// Equal reports whether a and b compare as the same value.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
