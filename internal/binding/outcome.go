package binding

import (
	"maps"
	"slices"
	"strings"
)

// Outcome is the validation result for one field.
type Outcome struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Report is the validation result for a whole model. Fields maps field paths to
// their outcome; a path that is absent passed validation.
type Report struct {
	Valid  bool               `json:"valid"`
	Fields map[string]Outcome `json:"fields,omitempty"`
}

// Validator computes a report for a model. It must be pure and synchronous.
type Validator[M any] func(M) Report

// ValidReport is the report of a model without failures.
func ValidReport() Report {
	return Report{Valid: true}
}

// NewReport builds a report from per-path outcomes. The overall flag is false
// when any outcome is invalid.
func NewReport(fields map[string]Outcome) Report {
	r := Report{Valid: true}
	if len(fields) == 0 {
		return r
	}
	r.Fields = maps.Clone(fields)
	for _, o := range fields {
		if !o.Valid {
			r.Valid = false
		}
	}
	return r
}

// Lookup returns the outcome recorded for exactly path.
func (r Report) Lookup(path string) Outcome {
	if o, ok := r.Fields[path]; ok {
		return o
	}
	return Outcome{Valid: true}
}

// Field returns the outcome for path. A composite path without its own entry
// is invalid when any descendant is, carrying the first descendant's message
// in path order.
func (r Report) Field(path string) Outcome {
	if o, ok := r.Fields[path]; ok {
		return o
	}
	if path == "" {
		if r.Valid {
			return Outcome{Valid: true}
		}
		if invalid := r.Invalid(); len(invalid) > 0 {
			return r.Fields[invalid[0]]
		}
		return Outcome{Valid: false}
	}
	for _, p := range r.Invalid() {
		if isDescendant(path, p) {
			return r.Fields[p]
		}
	}
	return Outcome{Valid: true}
}

// Invalid lists the paths with a failed outcome, sorted.
func (r Report) Invalid() []string {
	var out []string
	for p, o := range r.Fields {
		if !o.Valid {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

func isDescendant(parent, path string) bool {
	if !strings.HasPrefix(path, parent) || len(path) == len(parent) {
		return false
	}
	next := path[len(parent)]
	return next == '.' || next == '['
}
