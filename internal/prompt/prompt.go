// Package prompt fills a bound form from the terminal, one question per leaf
// field of the root's field table.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/formbind/internal/binding"
)

// Fill asks for every leaf field of root in table order. Each answer is
// committed through the field's codec as soon as it is entered; a parse fault
// or a failed rule re-asks the question. A field that still fails validation
// because of another field (email with newsletter on) is left for the caller
// to report.
func Fill[M any](ctx context.Context, root *binding.Root[M], driver Driver) error {
	if root.Fields() == nil {
		return fmt.Errorf("prompt: %s: %w", root.Name(), binding.ErrUnknownField)
	}
	for _, fh := range root.Views() {
		if err := ask(ctx, root, fh, driver); err != nil {
			return err
		}
	}
	return nil
}

func ask[M any](ctx context.Context, root *binding.Root[M], fh binding.FieldHandle[M], driver Driver) error {
	path := fh.Path()

	if cur, ok := fh.Value().(bool); ok {
		v, err := driver.Confirm(ctx, ConfirmConfig{Message: path, Default: cur})
		if err != nil {
			return err
		}
		if v != cur {
			return fh.Set(v)
		}
		return nil
	}

	_, err := driver.Input(ctx, InputConfig{
		Message: path,
		Default: fh.Raw(),
		Help:    fh.Type(),
		Validator: func(raw string) error {
			return commit(root, path, raw)
		},
	})
	return err
}

// commit writes raw to path and reports what a user has to fix.
func commit[M any](root *binding.Root[M], path, raw string) error {
	fh, err := root.Field(path)
	if err != nil {
		return err
	}
	if err := fh.SetRaw(raw); err != nil {
		var pe *binding.ParseError
		if errors.As(err, &pe) {
			return pe
		}
		return err
	}
	fh, err = root.Field(path)
	if err != nil {
		return err
	}
	if outcome := fh.Validation(); !outcome.Valid {
		return errors.New(outcome.Message)
	}
	return nil
}
