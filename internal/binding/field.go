package binding

import "fmt"

// FieldHandle is a handle addressed by name through the root's field table.
// Like Handle it carries a snapshot and writes through the root.
type FieldHandle[M any] struct {
	root     *Root[M]
	field    Field[M]
	name     string
	raw      string
	value    any
	outcome  Outcome
	version  uint64
	inputErr error
}

// Field materialises the handle for path. Unknown paths, or a root without a
// field table, return ErrUnknownField.
func (r *Root[M]) Field(path string) (FieldHandle[M], error) {
	if r.fields == nil {
		return FieldHandle[M]{}, fmt.Errorf("binding: %s has no field table: %w", r.qualify(""), ErrUnknownField)
	}
	f, ok := r.fields.Lookup(path)
	if !ok {
		return FieldHandle[M]{}, fmt.Errorf("binding: field %q: %w", path, ErrUnknownField)
	}
	return r.fieldHandle(f), nil
}

// Views materialises a handle for every leaf of the field table.
func (r *Root[M]) Views() []FieldHandle[M] {
	if r.fields == nil {
		return nil
	}
	names := r.fields.Names()
	out := make([]FieldHandle[M], 0, len(names))
	for _, name := range names {
		if f, ok := r.fields.Lookup(name); ok {
			out = append(out, r.fieldHandle(f))
		}
	}
	return out
}

func (r *Root[M]) fieldHandle(f Field[M]) FieldHandle[M] {
	m := r.cell.Read()
	return FieldHandle[M]{
		root:     r,
		field:    f,
		name:     joinPath(r.name, f.Name()),
		raw:      f.Format(m),
		value:    f.Value(m),
		outcome:  r.report.Field(f.Name()),
		version:  r.cell.Version(),
		inputErr: r.inputErrs[f.Name()],
	}
}

func (h FieldHandle[M]) Path() string        { return h.field.Name() }
func (h FieldHandle[M]) Name() string        { return h.name }
func (h FieldHandle[M]) Type() string        { return h.field.Type() }
func (h FieldHandle[M]) Raw() string         { return h.raw }
func (h FieldHandle[M]) Value() any          { return h.value }
func (h FieldHandle[M]) Validation() Outcome { return h.outcome }
func (h FieldHandle[M]) Version() uint64     { return h.version }
func (h FieldHandle[M]) InputError() error   { return h.inputErr }

// Stale reports whether the root has committed since the snapshot was taken.
func (h FieldHandle[M]) Stale() bool {
	return h.version != h.root.Version()
}

// Dirty compares the formatted snapshot with the formatted initial value.
func (h FieldHandle[M]) Dirty() bool {
	return h.field.Format(h.root.initial) != h.raw
}

// SetRaw parses raw with the field's codec and commits it.
func (h FieldHandle[M]) SetRaw(raw string) error {
	return h.root.commit(h.field.Name(), func(m M) (M, error) {
		return h.field.Parse(m, raw)
	})
}

// Set commits v. A v of the wrong type panics with *MismatchError.
func (h FieldHandle[M]) Set(v any) error {
	return h.root.commit(h.field.Name(), func(m M) (M, error) {
		return h.field.Assign(m, v), nil
	})
}
