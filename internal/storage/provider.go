// Package storage defines the seed directory file-system abstraction.
package storage

import "time"

// Entry describes one seed file.
type Entry struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for seed directory file operations. All paths are
// relative to the root.
type Provider interface {
	// Root returns the absolute directory the provider is rooted at.
	Root() string
	// List returns every YAML file directly inside dir.
	List(dir string) ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
