package api

import (
	"github.com/starford/formbind/internal/formservice"
	"github.com/starford/formbind/internal/models"
)

// OpenFormRequest is the request body for opening a form.
type OpenFormRequest struct {
	Seed string `json:"seed" example:"alice" validate:"required"`
}

// SetFieldRequest is the request body for writing one field.
type SetFieldRequest struct {
	Value string `json:"value" example:"Alice"`
}

// FormDetail is the full form response type (aliased from the domain layer).
type FormDetail = formservice.FormDetail

// FormListItem is a lightweight item in a list response (aliased from the domain layer).
type FormListItem = formservice.FormListItem

// FieldView is the render state of one field (aliased from the domain layer).
type FieldView = formservice.FieldView

// Submission is returned by a successful submit (aliased from the domain layer).
type Submission = formservice.Submission

// FormListResponse wraps form listings.
type FormListResponse struct {
	Forms []FormListItem `json:"forms" validate:"required"`
	Total int            `json:"total" example:"3" validate:"required"`
}

// SeedListResponse wraps seed listings.
type SeedListResponse struct {
	Seeds []models.SeedMetadata `json:"seeds" validate:"required"`
}

// FieldListResponse describes the field table.
type FieldListResponse struct {
	Fields []formservice.FieldInfo `json:"fields" validate:"required"`
}
