package formservice

import (
	"time"

	"github.com/starford/formbind/internal/binding"
	"github.com/starford/formbind/internal/models"
)

// FieldView is the render state of one field.
type FieldView struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Value   string `json:"value"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Dirty   bool   `json:"dirty"`
	Error   string `json:"error,omitempty"`
}

// FormDetail is the full representation of an open form.
type FormDetail struct {
	ID        string         `json:"id"`
	Seed      string         `json:"seed"`
	Title     string         `json:"title"`
	Version   uint64         `json:"version"`
	Valid     bool           `json:"valid"`
	Model     models.Profile `json:"model"`
	Fields    []FieldView    `json:"fields"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FormListItem is a lightweight item in a list response.
type FormListItem struct {
	ID        string    `json:"id"`
	Seed      string    `json:"seed"`
	Title     string    `json:"title"`
	Version   uint64    `json:"version"`
	Valid     bool      `json:"valid"`
	Dirty     bool      `json:"dirty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Submission is the result of a successful submit.
type Submission struct {
	ID      string         `json:"id"`
	Path    string         `json:"path"`
	Version uint64         `json:"version"`
	Model   models.Profile `json:"model"`
}

// FieldInfo describes one entry of the field table.
type FieldInfo struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

func fieldView(fh binding.FieldHandle[models.Profile]) FieldView {
	outcome := fh.Validation()
	v := FieldView{
		Path:    fh.Path(),
		Name:    fh.Name(),
		Type:    fh.Type(),
		Value:   fh.Raw(),
		Valid:   outcome.Valid,
		Message: outcome.Message,
		Dirty:   fh.Dirty(),
	}
	if err := fh.InputError(); err != nil {
		v.Error = err.Error()
	}
	return v
}

// detail builds the form representation. Callers hold f.mu.
func detail(f *form) *FormDetail {
	handles := f.root.Views()
	fields := make([]FieldView, len(handles))
	for i, fh := range handles {
		fields[i] = fieldView(fh)
	}
	return &FormDetail{
		ID:        f.id,
		Seed:      f.seed,
		Title:     f.title,
		Version:   f.version(),
		Valid:     f.root.Report().Valid,
		Model:     f.root.Model(),
		Fields:    fields,
		UpdatedAt: f.updatedAt,
	}
}
