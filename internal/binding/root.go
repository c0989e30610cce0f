package binding

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/mohae/deepcopy"
)

// Change describes one committed mutation.
type Change struct {
	Version uint64 `json:"version"`
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
}

// Listener is the host's re-render trigger. It runs synchronously after the
// report has been replaced and before the committing call returns.
type Listener func(Change)

// Option configures a Root.
type Option func(*options)

type options struct {
	name      string
	logger    *slog.Logger
	listeners []Listener
	fields    any
	cloner    any
}

// WithName sets the root name prefixed to every handle name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for commit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithListener registers a listener at construction.
func WithListener(fn Listener) Option {
	return func(o *options) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}

// WithFields attaches the field table used by Root.Field. The table must be
// built for the root's model type.
func WithFields[M any](table *Table[M]) Option {
	return func(o *options) {
		o.fields = table
	}
}

// WithCloner replaces the deep copy used to keep the root's model private.
// Models holding unexported reference-typed state need one, since the default
// copies exported fields only.
func WithCloner[M any](fn func(M) M) Option {
	return func(o *options) {
		o.cloner = fn
	}
}

// Root owns the shared model cell and the latest validation report for one
// form instance.
//
// Root is NOT thread-safe. All calls, including writes through handles, must
// come from the same logical thread.
type Root[M any] struct {
	name      string
	cell      *Cell[M]
	initial   M
	validate  Validator[M]
	report    Report
	fields    *Table[M]
	inputErrs map[string]error
	listeners []*listener
	clone     func(M) M
	logger    *slog.Logger
}

type listener struct {
	fn Listener
}

// New creates a root over initial and computes its first report. A nil
// validator accepts every model.
func New[M any](initial M, validate Validator[M], opts ...Option) *Root[M] {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if validate == nil {
		validate = func(M) Report { return ValidReport() }
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	clone := deepClone[M]
	if o.cloner != nil {
		fn, ok := o.cloner.(func(M) M)
		if !ok {
			panic(&MismatchError{
				Field: "cloner",
				Want:  typeName[func(M) M](),
				Got:   fmt.Sprintf("%T", o.cloner),
			})
		}
		clone = fn
	}

	r := &Root[M]{
		name:      o.name,
		cell:      NewCell(clone(initial)),
		initial:   clone(initial),
		validate:  validate,
		inputErrs: make(map[string]error),
		clone:     clone,
		logger:    o.logger,
	}
	for _, fn := range o.listeners {
		r.listeners = append(r.listeners, &listener{fn: fn})
	}

	if o.fields != nil {
		table, ok := o.fields.(*Table[M])
		if !ok {
			panic(&MismatchError{
				Field: "fields",
				Want:  typeName[*Table[M]](),
				Got:   fmt.Sprintf("%T", o.fields),
			})
		}
		r.fields = table
	}

	r.report = validate(r.cell.Read())
	return r
}

// Name returns the root name.
func (r *Root[M]) Name() string {
	return r.name
}

// Model returns a copy of the current model. Changing it does not touch the
// root; commit through a handle instead.
func (r *Root[M]) Model() M {
	return r.clone(r.cell.Read())
}

// Initial returns a copy of the model dirty state is measured against.
func (r *Root[M]) Initial() M {
	return r.clone(r.initial)
}

// Version returns the number of committed mutations.
func (r *Root[M]) Version() uint64 {
	return r.cell.Version()
}

// Report returns a copy of the report computed for the current model.
func (r *Root[M]) Report() Report {
	out := r.report
	out.Fields = maps.Clone(r.report.Fields)
	return out
}

// Fields returns the attached field table, or nil.
func (r *Root[M]) Fields() *Table[M] {
	return r.fields
}

// InputError returns the last rejected input for path, if the field has not
// been written successfully since.
func (r *Root[M]) InputError(path string) error {
	return r.inputErrs[path]
}

// Validate re-runs the validator over the current model, replaces the report
// and returns the overall flag. It does not commit or notify.
func (r *Root[M]) Validate() bool {
	r.report = r.validate(r.cell.Read())
	return r.report.Valid
}

// AddListener registers fn and returns a function that removes it. Calling
// the function again is a no-op.
func (r *Root[M]) AddListener(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	l := &listener{fn: fn}
	r.listeners = append(r.listeners, l)
	return func() {
		r.listeners = slices.DeleteFunc(r.listeners, func(x *listener) bool { return x == l })
	}
}

// Listeners returns the number of registered listeners.
func (r *Root[M]) Listeners() int {
	return len(r.listeners)
}

// Handle materialises a handle over the whole model. Its snapshot and the
// values it commits are copies.
func (r *Root[M]) Handle() Handle[M, M] {
	return Bind(r, Lens[M, M]{
		get:  r.clone,
		with: func(_ M, v M) M { return r.clone(v) },
	})
}

// Replace commits m as the whole model.
func (r *Root[M]) Replace(m M) error {
	return r.Handle().Set(m)
}

// Reset commits the initial model.
func (r *Root[M]) Reset() error {
	return r.Replace(r.initial)
}

// Rebase makes m the new initial model and commits it.
func (r *Root[M]) Rebase(m M) error {
	r.initial = r.clone(m)
	return r.Replace(m)
}

// commit is the single mutation entry point: cell commit, validation, report
// replacement and notification run as one synchronous step.
func (r *Root[M]) commit(path string, mut Mutator[M]) error {
	version, err := r.cell.Commit(mut)
	if err != nil {
		r.inputErrs[path] = err
		r.logger.Debug("binding: commit rejected",
			slog.String("field", r.qualify(path)),
			slog.String("error", err.Error()))
		return fmt.Errorf("binding: commit %s: %w", r.qualify(path), err)
	}

	r.clearInputErrors(path)
	r.report = r.validate(r.cell.Read())

	change := Change{Version: version, Path: path, Valid: r.report.Valid}
	r.logger.Debug("binding: committed",
		slog.String("field", r.qualify(path)),
		slog.Uint64("version", version),
		slog.Bool("valid", change.Valid))

	// A listener may unsubscribe while being notified.
	for _, l := range slices.Clone(r.listeners) {
		l.fn(change)
	}
	return nil
}

func (r *Root[M]) clearInputErrors(path string) {
	if path == "" {
		clear(r.inputErrs)
		return
	}
	for p := range r.inputErrs {
		if p == path || isDescendant(path, p) {
			delete(r.inputErrs, p)
		}
	}
}

func (r *Root[M]) qualify(path string) string {
	if name := joinPath(r.name, path); name != "" {
		return name
	}
	return typeName[M]()
}

func deepClone[M any](m M) M {
	if c, ok := deepcopy.Copy(m).(M); ok {
		return c
	}
	return m
}
