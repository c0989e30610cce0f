// Package models defines the domain types for formbind.
package models

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/formbind/internal/binding"
)

//go:generate go run ../../cmd/bindgen -type Profile,Address -o profile_bind.go

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Address is the postal address of a profile.
type Address struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city" yaml:"city"`
	Zip    string `json:"zip" yaml:"zip"`
}

// Validate implements validation.Validatable.
func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.City, validation.Required),
		validation.Field(&a.Zip, validation.Match(zipPattern).Error("must be five digits")),
	)
}

// Profile is the model edited by the profile form.
type Profile struct {
	Name       string   `json:"name" yaml:"name"`
	Age        uint8    `json:"age" yaml:"age"`
	Email      string   `json:"email" yaml:"email"`
	Newsletter bool     `json:"newsletter" yaml:"newsletter"`
	Bio        string   `json:"bio" yaml:"bio" bind:"codec=SanitizedText"`
	Tags       []string `json:"tags" yaml:"tags"`
	Address    Address  `json:"address" yaml:"address"`
}

// Validate implements validation.Validatable.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(2, 64)),
		validation.Field(&p.Age, validation.Max(uint8(150))),
		validation.Field(&p.Email,
			validation.When(p.Newsletter, validation.Required.Error("is required for the newsletter")),
			is.EmailFormat,
		),
		validation.Field(&p.Tags, validation.Each(validation.Length(1, 32))),
		validation.Field(&p.Address),
	)
}

var strictPolicy = bluemonday.StrictPolicy()

// SanitizedText strips all markup from free text input.
var SanitizedText = binding.Codec[string]{
	Format: func(s string) string { return s },
	Parse: func(s string) (string, error) {
		return strings.TrimSpace(strictPolicy.Sanitize(s)), nil
	},
}
