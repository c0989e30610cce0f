// Package seeds loads form templates from the seeds directory and keeps them
// in sync with the files on disk.
package seeds

import (
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/formbind/internal/checksum"
	"github.com/starford/formbind/internal/models"
	pkgconfig "github.com/starford/formbind/pkg/config"
)

type document struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Model       models.Profile `yaml:"model"`
}

func (d *document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Length(0, 120)),
		validation.Field(&d.Description, validation.Length(0, 2000)),
	)
}

// Parse decodes a seed document. The model itself is not validated: seeds may
// start out incomplete, that is what the form is for.
func Parse(name string, data []byte) (models.Seed, error) {
	var doc document
	if err := pkgconfig.Decode(data, &doc); err != nil {
		return models.Seed{}, fmt.Errorf("seeds: parse %s: %w", name, err)
	}

	title := doc.Title
	if title == "" {
		title = deriveTitle(name)
	}
	return models.Seed{
		Name:        name,
		Title:       title,
		Description: doc.Description,
		Model:       doc.Model,
		Content:     data,
		Checksum:    checksum.Sum(data),
	}, nil
}

// NameOf maps a seed file path to its seed name.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func deriveTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
