package binding

import (
	"reflect"
	"strconv"
	"strings"
)

// Codec converts between the raw text a widget edits and a typed field value.
type Codec[F any] struct {
	Format func(F) string
	Parse  func(string) (F, error)
}

// Text passes strings through unchanged.
var Text = Codec[string]{
	Format: func(s string) string { return s },
	Parse:  func(s string) (string, error) { return s, nil },
}

// Bool accepts the spellings understood by strconv.ParseBool.
var Bool = Codec[bool]{
	Format: strconv.FormatBool,
	Parse: func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	},
}

// Int parses base-10 signed integers that fit in T.
func Int[T ~int | ~int8 | ~int16 | ~int32 | ~int64]() Codec[T] {
	bits := reflect.TypeFor[T]().Bits()
	return Codec[T]{
		Format: func(v T) string { return strconv.FormatInt(int64(v), 10) },
		Parse: func(s string) (T, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
			if err != nil {
				return 0, err
			}
			return T(n), nil
		},
	}
}

// Uint parses base-10 unsigned integers that fit in T.
func Uint[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64]() Codec[T] {
	bits := reflect.TypeFor[T]().Bits()
	return Codec[T]{
		Format: func(v T) string { return strconv.FormatUint(uint64(v), 10) },
		Parse: func(s string) (T, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
			if err != nil {
				return 0, err
			}
			return T(n), nil
		},
	}
}

// Float parses decimal floating point numbers.
func Float[T ~float32 | ~float64]() Codec[T] {
	bits := reflect.TypeFor[T]().Bits()
	return Codec[T]{
		Format: func(v T) string { return strconv.FormatFloat(float64(v), 'g', -1, bits) },
		Parse: func(s string) (T, error) {
			n, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
			if err != nil {
				return 0, err
			}
			return T(n), nil
		},
	}
}

// List splits raw input on sep, trimming blanks and dropping empty items.
func List(sep string) Codec[[]string] {
	return Codec[[]string]{
		Format: func(items []string) string { return strings.Join(items, sep) },
		Parse: func(s string) ([]string, error) {
			var out []string
			for _, item := range strings.Split(s, sep) {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			return out, nil
		},
	}
}
