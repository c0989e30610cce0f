package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/formbind/internal/formservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *formservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/seeds", h.ListSeeds)
	r.Get("/fields", h.ListFields)

	r.Route("/forms", func(r chi.Router) {
		r.Get("/", h.ListForms)
		r.Post("/", h.OpenForm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Delete("/", h.CloseForm)
			r.Put("/fields/*", h.SetField)
			r.Post("/validate", h.ValidateForm)
			r.Post("/reset", h.ResetForm)
			r.Post("/submit", h.SubmitForm)
		})
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
