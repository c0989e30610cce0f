// Package rules adapts ozzo-validation results to binding reports.
package rules

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/formbind/internal/binding"
)

// For validates models that carry their own ozzo rules.
func For[M validation.Validatable]() binding.Validator[M] {
	return func(m M) binding.Report {
		return Flatten(m.Validate())
	}
}

// Func wraps a free validation function.
func Func[M any](fn func(M) error) binding.Validator[M] {
	return func(m M) binding.Report {
		return Flatten(fn(m))
	}
}

// Flatten converts a validation error into a report keyed by field path.
// Nested validation.Errors become dotted paths and numeric keys become index
// segments, so "tags" -> "1" is reported as "tags[1]". Any other error,
// including validation.InternalError, is recorded under the root path "".
func Flatten(err error) binding.Report {
	if err == nil {
		return binding.ValidReport()
	}

	fields := make(map[string]binding.Outcome)

	var internal validation.InternalError
	var errs validation.Errors
	switch {
	case errors.As(err, &internal):
		fields[""] = binding.Outcome{Message: internal.InternalError().Error()}
	case errors.As(err, &errs):
		flatten("", errs, fields)
	default:
		fields[""] = binding.Outcome{Message: err.Error()}
	}

	return binding.NewReport(fields)
}

func flatten(prefix string, errs validation.Errors, out map[string]binding.Outcome) {
	for key, err := range errs {
		if err == nil {
			continue
		}
		path := join(prefix, key)

		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(path, nested, out)
			continue
		}
		out[path] = binding.Outcome{Message: err.Error()}
	}
}

func join(prefix, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return prefix + "[" + key + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
