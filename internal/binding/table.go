package binding

import (
	"errors"
	"fmt"
	"strings"
)

// Field is the type-erased form of a lens paired with its codec, used where
// fields are addressed by name (HTTP paths, tool arguments, prompts).
type Field[M any] interface {
	// Name returns the path relative to M.
	Name() string
	// Type returns the Go type of the field value.
	Type() string
	// Format renders the field of m as raw text.
	Format(m M) string
	// Value returns the field of m.
	Value(m M) any
	// Parse returns m with the field replaced by the parsed raw text.
	Parse(m M, raw string) (M, error)
	// Assign returns m with the field replaced by v. A v of the wrong type
	// panics with *MismatchError.
	Assign(m M, v any) M
}

type composite[M any] interface {
	lookup(path string) (Field[M], bool)
	leaves() []string
}

// Table is the static registry of a model's fields, indexed by name.
type Table[M any] struct {
	fields []Field[M]
	index  map[string]int
}

// NewTable builds a table. Empty or duplicate names panic.
func NewTable[M any](fields ...Field[M]) *Table[M] {
	t := &Table[M]{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		name := f.Name()
		if name == "" {
			panic(fmt.Sprintf("binding: %s table has a field without name", typeName[M]()))
		}
		if _, dup := t.index[name]; dup {
			panic(fmt.Sprintf("binding: %s table declares %q twice", typeName[M](), name))
		}
		t.index[name] = len(t.fields)
		t.fields = append(t.fields, f)
	}
	return t
}

// Fields returns the top-level entries in declaration order.
func (t *Table[M]) Fields() []Field[M] {
	return t.fields
}

// Names returns every leaf path in declaration order, descending into groups.
func (t *Table[M]) Names() []string {
	var out []string
	for _, f := range t.fields {
		if g, ok := f.(composite[M]); ok {
			out = append(out, g.leaves()...)
			continue
		}
		out = append(out, f.Name())
	}
	return out
}

// Lookup resolves a dotted path, descending into groups.
func (t *Table[M]) Lookup(path string) (Field[M], bool) {
	if i, ok := t.index[path]; ok {
		return t.fields[i], true
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	i, ok := t.index[head]
	if !ok {
		return nil, false
	}
	g, ok := t.fields[i].(composite[M])
	if !ok {
		return nil, false
	}
	return g.lookup(rest)
}

// FieldOf pairs a lens with the codec used for raw input.
func FieldOf[M, F any](lens Lens[M, F], codec Codec[F]) Field[M] {
	if codec.Format == nil || codec.Parse == nil {
		panic(fmt.Sprintf("binding: field %s.%s has an incomplete codec", typeName[M](), lens.name))
	}
	return leaf[M, F]{lens: lens, codec: codec}
}

// Group exposes a sub-model's table under lens.
func Group[M, S any](lens Lens[M, S], table *Table[S]) Field[M] {
	if table == nil {
		panic(fmt.Sprintf("binding: group %s.%s has no table", typeName[M](), lens.name))
	}
	return group[M, S]{lens: lens, table: table}
}

type leaf[M, F any] struct {
	lens  Lens[M, F]
	codec Codec[F]
}

func (f leaf[M, F]) Name() string      { return f.lens.name }
func (f leaf[M, F]) Type() string      { return typeName[F]() }
func (f leaf[M, F]) Format(m M) string { return f.codec.Format(f.lens.Get(m)) }
func (f leaf[M, F]) Value(m M) any     { return f.lens.Get(m) }

func (f leaf[M, F]) Parse(m M, raw string) (M, error) {
	v, err := f.codec.Parse(raw)
	if err != nil {
		return m, &ParseError{Field: f.lens.name, Raw: raw, Type: typeName[F](), Err: err}
	}
	return f.lens.With(m, v), nil
}

func (f leaf[M, F]) Assign(m M, v any) M {
	typed, ok := v.(F)
	if !ok {
		panic(&MismatchError{Field: f.lens.name, Want: typeName[F](), Got: fmt.Sprintf("%T", v)})
	}
	return f.lens.With(m, typed)
}

type group[M, S any] struct {
	lens  Lens[M, S]
	table *Table[S]
}

func (g group[M, S]) Name() string      { return g.lens.name }
func (g group[M, S]) Type() string      { return typeName[S]() }
func (g group[M, S]) Format(m M) string { return fmt.Sprintf("%+v", g.lens.Get(m)) }
func (g group[M, S]) Value(m M) any     { return g.lens.Get(m) }

func (g group[M, S]) Parse(m M, raw string) (M, error) {
	return m, fmt.Errorf("binding: %s is composite and takes no raw input", g.lens.name)
}

func (g group[M, S]) Assign(m M, v any) M {
	typed, ok := v.(S)
	if !ok {
		panic(&MismatchError{Field: g.lens.name, Want: typeName[S](), Got: fmt.Sprintf("%T", v)})
	}
	return g.lens.With(m, typed)
}

func (g group[M, S]) lookup(path string) (Field[M], bool) {
	inner, ok := g.table.Lookup(path)
	if !ok {
		return nil, false
	}
	return nested[M, S]{outer: g.lens, inner: inner}, true
}

func (g group[M, S]) leaves() []string {
	names := g.table.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = joinPath(g.lens.name, n)
	}
	return out
}

// nested is a field of a sub-model seen from the outer model.
type nested[M, S any] struct {
	outer Lens[M, S]
	inner Field[S]
}

func (n nested[M, S]) Name() string      { return joinPath(n.outer.name, n.inner.Name()) }
func (n nested[M, S]) Type() string      { return n.inner.Type() }
func (n nested[M, S]) Format(m M) string { return n.inner.Format(n.outer.Get(m)) }
func (n nested[M, S]) Value(m M) any     { return n.inner.Value(n.outer.Get(m)) }

func (n nested[M, S]) Parse(m M, raw string) (M, error) {
	s, err := n.inner.Parse(n.outer.Get(m), raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return m, &ParseError{Field: n.Name(), Raw: pe.Raw, Type: pe.Type, Err: pe.Err}
		}
		return m, err
	}
	return n.outer.With(m, s), nil
}

func (n nested[M, S]) Assign(m M, v any) M {
	return n.outer.With(m, n.inner.Assign(n.outer.Get(m), v))
}
