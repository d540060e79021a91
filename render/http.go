package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/domfill/fill"
	"github.com/hazyhaar/domfill/rules"
	"github.com/hazyhaar/domfill/selector"
)

const maxBody = 4 << 20

// Routes returns the HTTP API:
//
//	POST   /render
//	GET    /templates
//	GET    /templates/{name}
//	PUT    /templates/{name}
//	DELETE /templates/{name}
//	POST   /templates/{name}/render
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/render", s.handleRender)
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Get("/{name}", s.handleGetTemplate)
		r.Put("/{name}", s.handlePutTemplate)
		r.Delete("/{name}", s.handleDeleteTemplate)
		r.Post("/{name}/render", s.handleRenderTemplate)
	})
	return r
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Service) handleRender(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res, err := s.Render(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	req.Template = chi.URLParam(r, "name")
	res, err := s.Render(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type templateBody struct {
	HTML  string `json:"html"`
	Rules string `json:"rules"`
}

func (s *Service) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if !decode(w, r, &body) {
		return
	}
	t, err := s.PutTemplate(r.Context(), chi.URLParam(r, "name"), body.HTML, body.Rules)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Service) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.Template(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Service) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.Templates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

func (s *Service) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteTemplate(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http: request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		badReq    *ErrBadRequest
		format    *ErrUnknownFormat
		notFound  *ErrTemplateNotFound
		noStore   *ErrNoStore
		invalid   *rules.ErrInvalidRule
		badQuery  *selector.ErrBadQuery
		engine    *selector.ErrUnknownEngine
		detached  *fill.ErrDetachedNode
		hierarchy *fill.ErrHierarchy
		nested    *fill.ErrInvalidReplacement
	)
	switch {
	case errors.As(err, &badReq), errors.As(err, &format), errors.As(err, &invalid),
		errors.As(err, &badQuery), errors.As(err, &engine):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &noStore):
		return http.StatusNotImplemented
	case errors.As(err, &detached), errors.As(err, &hierarchy), errors.As(err, &nested):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
