package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/starford/formbind/internal/formservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *formservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *formservice.Service) *Handler {
	return &Handler{svc: svc}
}

// fieldPath extracts the field path after /fields/. Encoded separators from
// generated clients (address%2Ecity) are decoded.
func fieldPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return strings.ReplaceAll(decoded, "/", ".")
}

// ListSeeds handles GET /api/seeds.
//
//	@Summary		List available seeds
//	@Tags			seeds
//	@Produce		json
//	@Success		200	{object}	SeedListResponse
//	@Security		BearerAuth
//	@Router			/seeds [get]
func (h *Handler) ListSeeds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SeedListResponse{Seeds: h.svc.Seeds(r.Context())})
}

// ListFields handles GET /api/fields.
//
//	@Summary		Describe the profile field table
//	@Tags			forms
//	@Produce		json
//	@Success		200	{object}	FieldListResponse
//	@Security		BearerAuth
//	@Router			/fields [get]
func (h *Handler) ListFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FieldListResponse{Fields: h.svc.Fields()})
}

// ListForms handles GET /api/forms.
//
//	@Summary		List open forms
//	@Tags			forms
//	@Produce		json
//	@Success		200	{object}	FormListResponse
//	@Security		BearerAuth
//	@Router			/forms [get]
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	items := h.svc.List(r.Context())
	writeJSON(w, http.StatusOK, FormListResponse{Forms: items, Total: len(items)})
}

// OpenForm handles POST /api/forms.
//
//	@Summary		Open a form from a seed
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenFormRequest	true	"Seed to open"
//	@Success		201		{object}	FormDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms [post]
func (h *Handler) OpenForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OpenFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Seed == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("seed is required"))
		return
	}
	form, err := h.svc.Open(r.Context(), req.Seed)
	if err != nil {
		writeError(w, "open form", err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

// GetForm handles GET /api/forms/{id}.
//
//	@Summary		Get the state of a form
//	@Tags			forms
//	@Produce		json
//	@Param			id	path		string	true	"Form ID"
//	@Success		200	{object}	FormDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id} [get]
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get form", err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// SetField handles PUT /api/forms/{id}/fields/*.
//
//	@Summary		Write the raw value of one field
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Form ID"
//	@Param			path		path		string			true	"Field path, e.g. address.city"
//	@Param			If-Match	header		string			false	"Expected form version"
//	@Param			body		body		SetFieldRequest	true	"Raw value"
//	@Success		200			{object}	FieldView
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id}/fields/{path} [put]
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	path := fieldPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("field path is required"))
		return
	}

	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var ifVersion uint64
	if v := strings.Trim(r.Header.Get("If-Match"), `"`); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("If-Match must be a form version"))
			return
		}
		ifVersion = n
	}

	view, err := h.svc.SetField(r.Context(), chi.URLParam(r, "id"), path, req.Value, ifVersion)
	if err != nil {
		writeError(w, "set field", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ValidateForm handles POST /api/forms/{id}/validate.
//
//	@Summary		Re-run validation without editing
//	@Tags			forms
//	@Produce		json
//	@Param			id	path		string	true	"Form ID"
//	@Success		200	{object}	FormDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id}/validate [post]
func (h *Handler) ValidateForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "validate form", err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// ResetForm handles POST /api/forms/{id}/reset.
//
//	@Summary		Restore the form's initial model
//	@Tags			forms
//	@Produce		json
//	@Param			id	path		string	true	"Form ID"
//	@Success		200	{object}	FormDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id}/reset [post]
func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "reset form", err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// SubmitForm handles POST /api/forms/{id}/submit.
//
//	@Summary		Validate and export a form
//	@Tags			forms
//	@Produce		json
//	@Param			id	path		string	true	"Form ID"
//	@Success		200	{object}	Submission
//	@Failure		404	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id}/submit [post]
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "submit form", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// CloseForm handles DELETE /api/forms/{id}.
//
//	@Summary		Close a form and discard its draft
//	@Tags			forms
//	@Param			id	path	string	true	"Form ID"
//	@Success		204	"Form closed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/forms/{id} [delete]
func (h *Handler) CloseForm(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "close form", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
