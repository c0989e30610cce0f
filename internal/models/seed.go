package models

import "time"

// Seed is a form template loaded from the seeds directory.
type Seed struct {
	Name        string    `json:"name" yaml:"-"`
	Title       string    `json:"title,omitempty" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Model       Profile   `json:"model" yaml:"model"`
	Content     []byte    `json:"-" yaml:"-"`
	Checksum    string    `json:"checksum" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// SeedMetadata is a lightweight representation returned by list operations.
type SeedMetadata struct {
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft is the persisted snapshot of an open form.
type Draft struct {
	ID        string    `json:"id"`
	Seed      string    `json:"seed"`
	Version   uint64    `json:"version"`
	Model     Profile   `json:"model"`
	Valid     bool      `json:"valid"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
