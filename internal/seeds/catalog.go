package seeds

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/starford/formbind/internal/apperr"
	"github.com/starford/formbind/internal/models"
	"github.com/starford/formbind/internal/storage"
)

// Event kinds reported by Sync and Watch.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventCallback is called after a seed was added, changed or removed.
type EventCallback func(kind string, seed models.Seed)

// Catalog is the in-memory set of parsed seeds. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	seeds map[string]models.Seed
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		seeds: make(map[string]models.Seed),
	}
}

// Get returns the seed called name.
func (c *Catalog) Get(name string) (models.Seed, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.seeds[name]
	if !ok {
		return models.Seed{}, apperr.ErrNotFound
	}
	return s, nil
}

// List returns metadata for every seed, sorted by name.
func (c *Catalog) List() []models.SeedMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.SeedMetadata, 0, len(c.seeds))
	for _, s := range c.seeds {
		out = append(out, models.SeedMetadata{
			Name:      s.Name,
			Title:     s.Title,
			Checksum:  s.Checksum,
			UpdatedAt: s.UpdatedAt,
		})
	}
	slices.SortFunc(out, func(a, b models.SeedMetadata) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// put stores s and reports whether it was new or changed.
func (c *Catalog) put(s models.Seed) (kind string, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.seeds[s.Name]
	if ok && prev.Checksum == s.Checksum {
		return "", false
	}
	c.seeds[s.Name] = s
	if ok {
		return KindUpdated, true
	}
	return KindCreated, true
}

func (c *Catalog) remove(name string) (models.Seed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.seeds[name]
	if ok {
		delete(c.seeds, name)
	}
	return s, ok
}

func (c *Catalog) checksums() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.seeds))
	for name, s := range c.seeds {
		out[name] = s.Checksum
	}
	return out
}

// Sync brings the catalog up to date with the seed files in store:
//   - new or changed files are parsed and stored
//   - seeds whose file disappeared are removed
//
// Files that fail to parse are logged and skipped. cb, when non-nil, receives
// every change.
func Sync(c *Catalog, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	entries, err := store.List("")
	if err != nil {
		return err
	}

	known := c.checksums()
	disk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name := NameOf(e.Path)
		disk[name] = struct{}{}
		if known[name] == e.Checksum {
			continue
		}
		loadFile(c, store, e.Path, logger, cb)
	}

	for name := range known {
		if _, ok := disk[name]; ok {
			continue
		}
		if s, ok := c.remove(name); ok {
			logger.Debug("seeds: removed stale", slog.String("seed", name))
			if cb != nil {
				cb(KindDeleted, s)
			}
		}
	}
	return nil
}

func loadFile(c *Catalog, store storage.Provider, path string, logger *slog.Logger, cb EventCallback) {
	data, err := store.Read(path)
	if err != nil {
		logger.Warn("seeds: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	s, err := Parse(NameOf(path), data)
	if err != nil {
		logger.Warn("seeds: parse failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	s.UpdatedAt = modTime(store, path)

	kind, changed := c.put(s)
	if !changed {
		return
	}
	logger.Debug("seeds: loaded", slog.String("seed", s.Name), slog.String("op", kind))
	if cb != nil {
		cb(kind, s)
	}
}
