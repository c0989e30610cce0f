package binding

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Lens describes how to read and replace one field of M. It holds no data.
type Lens[M, F any] struct {
	name string
	get  func(M) F
	with func(M, F) M
}

// NewLens builds a lens. An empty name or a nil accessor panics: lenses are
// declared once per model type, so a broken one is a programming error.
func NewLens[M, F any](name string, get func(M) F, with func(M, F) M) Lens[M, F] {
	if name == "" {
		panic(fmt.Sprintf("binding: lens over %s has no name", typeName[M]()))
	}
	if get == nil || with == nil {
		panic(fmt.Sprintf("binding: lens %s.%s is missing an accessor", typeName[M](), name))
	}
	return Lens[M, F]{name: name, get: get, with: with}
}

// Name returns the lens path relative to M, e.g. "address.city".
func (l Lens[M, F]) Name() string {
	return l.name
}

// Get projects the field out of m.
func (l Lens[M, F]) Get(m M) F {
	return l.get(m)
}

// With returns m with the field replaced by v. All other fields are preserved.
func (l Lens[M, F]) With(m M, v F) M {
	return l.with(m, v)
}

// Compose focuses inner through outer.
func Compose[M, S, F any](outer Lens[M, S], inner Lens[S, F]) Lens[M, F] {
	return Lens[M, F]{
		name: joinPath(outer.name, inner.name),
		get: func(m M) F {
			return inner.get(outer.get(m))
		},
		with: func(m M, v F) M {
			return outer.with(m, inner.with(outer.get(m), v))
		},
	}
}

// Identity focuses the whole value. Its name is empty, so composing with it
// leaves paths untouched.
func Identity[M any]() Lens[M, M] {
	return Lens[M, M]{
		get:  func(m M) M { return m },
		with: func(_ M, v M) M { return v },
	}
}

// Index focuses element i of a slice. Reads past the end yield the zero
// value; writes past the end grow the slice. Writes never alias the source
// slice.
func Index[E any](i int) Lens[[]E, E] {
	if i < 0 {
		panic(fmt.Sprintf("binding: negative index %d", i))
	}
	return Lens[[]E, E]{
		name: "[" + strconv.Itoa(i) + "]",
		get: func(s []E) E {
			if i >= len(s) {
				var zero E
				return zero
			}
			return s[i]
		},
		with: func(s []E, v E) []E {
			out := slices.Clone(s)
			if i >= len(out) {
				out = append(out, make([]E, i+1-len(out))...)
			}
			out[i] = v
			return out
		},
	}
}

// Deref focuses the value behind a pointer. A nil pointer reads as the zero
// value; writes always allocate a fresh pointer.
func Deref[T any]() Lens[*T, T] {
	return Lens[*T, T]{
		get: func(p *T) T {
			if p == nil {
				var zero T
				return zero
			}
			return *p
		},
		with: func(_ *T, v T) *T {
			return &v
		},
	}
}

func joinPath(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	case strings.HasPrefix(inner, "["):
		return outer + inner
	default:
		return outer + "." + inner
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
