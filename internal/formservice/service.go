// Package formservice owns the open forms of the host: one binding root per
// form, restored from and persisted to drafts, announced over SSE.
package formservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"

	"github.com/starford/formbind/internal/apperr"
	"github.com/starford/formbind/internal/binding"
	"github.com/starford/formbind/internal/checksum"
	"github.com/starford/formbind/internal/drafts"
	"github.com/starford/formbind/internal/models"
	"github.com/starford/formbind/internal/rules"
	"github.com/starford/formbind/internal/sse"
	"github.com/starford/formbind/internal/storage"
)

const rootName = "profile"

// SeedSource resolves seeds by name.
type SeedSource interface {
	Get(name string) (models.Seed, error)
	List() []models.SeedMetadata
}

// Publisher receives form lifecycle events.
type Publisher interface {
	PublishFormEvent(kind string, event sse.FormEvent)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service coordinates seeds, open forms, drafts and submissions.
//
// Every form has its own mutex; the binding root inside is only touched while
// it is held.
type Service struct {
	seeds  SeedSource
	store  storage.Provider
	drafts drafts.Store
	events Publisher
	logger *slog.Logger

	mu    sync.RWMutex
	forms map[string]*form
}

type form struct {
	mu        sync.Mutex
	id        string
	seed      string
	title     string
	base      uint64
	root      *binding.Root[models.Profile]
	updatedAt time.Time
	closed    bool
}

func (f *form) version() uint64 {
	return f.base + f.root.Version()
}

type nopPublisher struct{}

func (nopPublisher) PublishFormEvent(string, sse.FormEvent) {}

// New creates a form service.
func New(seedSrc SeedSource, store storage.Provider, draftStore drafts.Store, opts ...Option) *Service {
	s := &Service{
		seeds:  seedSrc,
		store:  store,
		drafts: draftStore,
		events: nopPublisher{},
		logger: slog.Default(),
		forms:  make(map[string]*form),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore reopens every persisted draft. A draft whose seed no longer exists
// is restored against its own model.
func (s *Service) Restore(_ context.Context) error {
	rows, err := s.drafts.List()
	if err != nil {
		return err
	}
	for _, row := range rows {
		initial := row.Model
		title := row.Seed
		if seed, err := s.seeds.Get(row.Seed); err == nil {
			initial = cloneModel(seed.Model)
			title = seed.Title
		}

		f := s.newForm(row.ID, row.Seed, title, initial)
		f.base = row.Version
		if !cmp.Equal(initial, row.Model, cmpopts.EquateEmpty()) {
			if err := f.root.Replace(cloneModel(row.Model)); err != nil {
				return fmt.Errorf("formservice: restore %s: %w", row.ID, err)
			}
			f.base = max(row.Version, 1) - 1
		}
		f.updatedAt = row.UpdatedAt
		if f.version() != row.Version {
			s.persist(f)
		}
		s.watch(f)

		s.mu.Lock()
		s.forms[row.ID] = f
		s.mu.Unlock()
		s.logger.Debug("formservice: restored draft", slog.String("form", row.ID), slog.Uint64("version", f.version()))
	}
	return nil
}

// Open starts a new form from the named seed.
func (s *Service) Open(_ context.Context, seedName string) (*FormDetail, error) {
	seed, err := s.seeds.Get(seedName)
	if err != nil {
		return nil, err
	}

	f := s.newForm(uuid.NewString(), seed.Name, seed.Title, cloneModel(seed.Model))
	s.watch(f)

	s.mu.Lock()
	s.forms[f.id] = f
	s.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, apperr.ErrNotFound
	}
	s.persist(f)
	s.publish(sse.KindOpened, f, "")
	s.logger.Info("formservice: opened", slog.String("form", f.id), slog.String("seed", seed.Name))
	return detail(f), nil
}

// Get returns the current state of a form.
func (s *Service) Get(_ context.Context, id string) (*FormDetail, error) {
	f, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	return detail(f), nil
}

// List returns all open forms, most recently updated first.
func (s *Service) List(_ context.Context) []FormListItem {
	s.mu.RLock()
	forms := make([]*form, 0, len(s.forms))
	for _, f := range s.forms {
		forms = append(forms, f)
	}
	s.mu.RUnlock()

	items := make([]FormListItem, 0, len(forms))
	for _, f := range forms {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			continue
		}
		items = append(items, FormListItem{
			ID:        f.id,
			Seed:      f.seed,
			Title:     f.title,
			Version:   f.version(),
			Valid:     f.root.Report().Valid,
			Dirty:     f.root.Handle().Dirty(),
			UpdatedAt: f.updatedAt,
		})
		f.mu.Unlock()
	}
	slices.SortFunc(items, func(a, b FormListItem) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items
}

// Seeds lists the available seeds.
func (s *Service) Seeds(_ context.Context) []models.SeedMetadata {
	return s.seeds.List()
}

// SetField parses raw into the field at path. A non-zero ifVersion must match
// the form's version. Parse faults are returned wrapped in
// apperr.ErrInvalidInput and leave the form unchanged.
func (s *Service) SetField(_ context.Context, id, path, raw string, ifVersion uint64) (*FieldView, error) {
	f, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	if ifVersion != 0 && ifVersion != f.version() {
		return nil, fmt.Errorf("%w: form %s is at version %d", apperr.ErrConflict, id, f.version())
	}

	fh, err := f.root.Field(path)
	if err != nil {
		return nil, err
	}
	if err := fh.SetRaw(raw); err != nil {
		var pe *binding.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("%w: %s: %w", apperr.ErrInvalidInput, path, pe)
		}
		return nil, err
	}

	fh, err = f.root.Field(path)
	if err != nil {
		return nil, err
	}
	view := fieldView(fh)
	return &view, nil
}

// Validate re-runs validation without committing.
func (s *Service) Validate(_ context.Context, id string) (*FormDetail, error) {
	f, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	f.root.Validate()
	return detail(f), nil
}

// Reset restores the form's initial model.
func (s *Service) Reset(_ context.Context, id string) (*FormDetail, error) {
	f, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	if err := f.root.Reset(); err != nil {
		return nil, err
	}
	s.publish(sse.KindReset, f, "")
	return detail(f), nil
}

// Submit validates the form, exports it to submissions/<id>.yaml and makes
// the submitted model the new baseline.
func (s *Service) Submit(_ context.Context, id string) (*Submission, error) {
	f, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	if !f.root.Validate() {
		return nil, fmt.Errorf("%w: invalid fields: %s", apperr.ErrInvalidInput, strings.Join(f.root.Report().Invalid(), ", "))
	}

	model := f.root.Model()
	data, err := yaml.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("formservice: encode submission: %w", err)
	}
	path := "submissions/" + f.id + ".yaml"
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := f.root.Rebase(model); err != nil {
		return nil, err
	}
	s.publish(sse.KindSubmit, f, "")
	s.logger.Info("formservice: submitted", slog.String("form", f.id), slog.String("path", path))

	return &Submission{ID: f.id, Path: path, Version: f.version(), Model: model}, nil
}

// Close discards a form and its draft.
func (s *Service) Close(_ context.Context, id string) error {
	s.mu.Lock()
	f, ok := s.forms[id]
	delete(s.forms, id)
	s.mu.Unlock()
	if !ok {
		return apperr.ErrNotFound
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if err := s.drafts.Delete(id); err != nil {
		return err
	}
	s.publish(sse.KindClosed, f, "")
	return nil
}

// ReloadSeed rebases every pristine form opened from seed onto the seed's new
// model. Edited forms keep their state.
func (s *Service) ReloadSeed(_ context.Context, seed models.Seed) int {
	s.mu.RLock()
	var targets []*form
	for _, f := range s.forms {
		if f.seed == seed.Name {
			targets = append(targets, f)
		}
	}
	s.mu.RUnlock()

	rebased := 0
	for _, f := range targets {
		f.mu.Lock()
		if !f.closed && !f.root.Handle().Dirty() {
			f.title = seed.Title
			if err := f.root.Rebase(cloneModel(seed.Model)); err != nil {
				s.logger.Warn("formservice: rebase failed", slog.String("form", f.id), slog.String("error", err.Error()))
			} else {
				rebased++
				s.publish(sse.KindRebased, f, "")
			}
		}
		f.mu.Unlock()
	}
	return rebased
}

// Fields describes the profile field table.
func (s *Service) Fields() []FieldInfo {
	names := models.ProfileFields.Names()
	out := make([]FieldInfo, 0, len(names))
	for _, name := range names {
		if f, ok := models.ProfileFields.Lookup(name); ok {
			out = append(out, FieldInfo{Path: name, Type: f.Type()})
		}
	}
	return out
}

func (s *Service) lookup(id string) (*form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return f, nil
}

// acquire returns the open form with f.mu held.
func (s *Service) acquire(id string) (*form, error) {
	f, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	return f, nil
}

func (s *Service) newForm(id, seed, title string, initial models.Profile) *form {
	f := &form{id: id, seed: seed, title: title, updatedAt: time.Now().UTC()}
	f.root = binding.New(initial, rules.For[models.Profile](),
		binding.WithName(rootName),
		binding.WithFields(models.ProfileFields),
		binding.WithLogger(s.logger.With(slog.String("form", id))),
	)
	return f
}

// watch persists and announces every commit of f from now on. Commits
// that land after Close are dropped.
func (s *Service) watch(f *form) {
	f.root.AddListener(func(c binding.Change) {
		if f.closed {
			return
		}
		f.updatedAt = time.Now().UTC()
		s.persist(f)
		s.publish(sse.KindChanged, f, c.Path)
	})
}

// persist stores the form's current snapshot. Callers hold f.mu.
func (s *Service) persist(f *form) {
	model := f.root.Model()
	sum, err := checksum.Model(model)
	if err != nil {
		s.logger.Warn("formservice: checksum failed", slog.String("form", f.id), slog.String("error", err.Error()))
	}
	err = s.drafts.Upsert(drafts.Row{
		ID:        f.id,
		Seed:      f.seed,
		Version:   f.version(),
		Model:     model,
		Valid:     f.root.Report().Valid,
		Checksum:  sum,
		UpdatedAt: f.updatedAt,
	})
	if err != nil {
		s.logger.Warn("formservice: persist draft failed", slog.String("form", f.id), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind string, f *form, path string) {
	s.events.PublishFormEvent(kind, sse.FormEvent{
		ID:      f.id,
		Version: f.version(),
		Valid:   f.root.Report().Valid,
		Path:    path,
	})
}

func cloneModel(m models.Profile) models.Profile {
	return deepcopy.Copy(m).(models.Profile)
}
