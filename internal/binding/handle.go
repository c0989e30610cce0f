package binding

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Handle is a disposable view of one field: the root it writes to, the lens
// that locates the field, and a snapshot taken when it was materialised.
//
// Snapshots never change. After Set the handle is stale; materialise a new one
// to observe the committed value.
type Handle[M, F any] struct {
	root     *Root[M]
	lens     Lens[M, F]
	name     string
	value    F
	outcome  Outcome
	version  uint64
	inputErr error
}

// Bind materialises a handle for lens against the root's current state.
func Bind[M, F any](r *Root[M], lens Lens[M, F]) Handle[M, F] {
	return materialize(r, lens, joinPath(r.name, lens.name))
}

// Child derives a handle for a field of the value h points at. Writes through
// the child land in the same root.
func Child[M, S, F any](h Handle[M, S], inner Lens[S, F]) Handle[M, F] {
	return materialize(h.root, Compose(h.lens, inner), joinPath(h.name, inner.name))
}

// Item derives a handle for element i of a slice field.
func Item[M, E any](h Handle[M, []E], i int) Handle[M, E] {
	return Child(h, Index[E](i))
}

// Elem derives a handle for the value behind a pointer field. The handle keeps
// the pointer field's path.
func Elem[M, T any](h Handle[M, *T]) Handle[M, T] {
	return Child(h, Deref[T]())
}

// Append commits v appended to the slice field h points at.
func Append[M, E any](h Handle[M, []E], v E) error {
	return h.Update(func(items []E) ([]E, error) {
		out := make([]E, len(items), len(items)+1)
		copy(out, items)
		return append(out, v), nil
	})
}

func materialize[M, F any](r *Root[M], lens Lens[M, F], name string) Handle[M, F] {
	return Handle[M, F]{
		root:     r,
		lens:     lens,
		name:     name,
		value:    lens.Get(r.cell.Read()),
		outcome:  r.report.Field(lens.name),
		version:  r.cell.Version(),
		inputErr: r.inputErrs[lens.name],
	}
}

// Value returns the snapshot value.
func (h Handle[M, F]) Value() F {
	return h.value
}

// Validation returns the snapshot outcome.
func (h Handle[M, F]) Validation() Outcome {
	return h.outcome
}

// Version returns the root version the snapshot was taken at.
func (h Handle[M, F]) Version() uint64 {
	return h.version
}

// Name returns the qualified name, e.g. "profile.address.city".
func (h Handle[M, F]) Name() string {
	return h.name
}

// Path returns the lens path relative to the model, e.g. "address.city".
func (h Handle[M, F]) Path() string {
	return h.lens.name
}

// InputError returns the parse fault recorded for this field when the handle
// was materialised.
func (h Handle[M, F]) InputError() error {
	return h.inputErr
}

// Stale reports whether the root has committed since the snapshot was taken.
func (h Handle[M, F]) Stale() bool {
	return h.version != h.root.Version()
}

// Dirty reports whether the snapshot differs from the field's initial value.
func (h Handle[M, F]) Dirty() bool {
	return !cmp.Equal(h.lens.Get(h.root.initial), h.value, equalOpts...)
}

// Raw formats the snapshot value with codec.
func (h Handle[M, F]) Raw(codec Codec[F]) string {
	return codec.Format(h.value)
}

// Renamed returns a copy whose name, and the names of handles derived from it,
// start at name.
func (h Handle[M, F]) Renamed(name string) Handle[M, F] {
	h.name = name
	return h
}

// Set commits v to the field of the current model. A stale handle still
// writes: the last write wins.
func (h Handle[M, F]) Set(v F) error {
	return h.root.commit(h.lens.name, func(m M) (M, error) {
		return h.lens.With(m, v), nil
	})
}

// Update commits fn applied to the field's current value. An error from fn
// aborts the commit.
func (h Handle[M, F]) Update(fn func(F) (F, error)) error {
	return h.root.commit(h.lens.name, func(m M) (M, error) {
		next, err := fn(h.lens.Get(m))
		if err != nil {
			return m, err
		}
		return h.lens.With(m, next), nil
	})
}

// SetRaw parses raw with codec and commits the result. A parse failure is
// returned as *ParseError and leaves the model untouched.
func (h Handle[M, F]) SetRaw(raw string, codec Codec[F]) error {
	return h.root.commit(h.lens.name, func(m M) (M, error) {
		v, err := codec.Parse(raw)
		if err != nil {
			return m, &ParseError{Field: h.lens.name, Raw: raw, Type: typeName[F](), Err: err}
		}
		return h.lens.With(m, v), nil
	})
}
