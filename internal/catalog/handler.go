// AngelaMos | 2026
// handler.go

package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
	"github.com/carterperez-dev/yamdb/internal/middleware"
)

type Handler struct {
	categories *TermService
	genres     *TermService
	titles     *TitleService
	validator  *validator.Validate
}

func NewHandler(categories, genres *TermService, titles *TitleService) *Handler {
	return &Handler{
		categories: categories,
		genres:     genres,
		titles:     titles,
		validator:  core.NewValidator(),
	}
}

// RegisterRoutes mounts the catalog. Reads are public; writes need an
// admin.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(middleware.Require(access.Catalog))

		r.Route("/categories", h.termRoutes(h.categories))
		r.Route("/genres", h.termRoutes(h.genres))

		// Flat routes leave /titles/{titleID}/reviews free for the review
		// router.
		r.Get("/titles", h.ListTitles)
		r.Post("/titles", h.CreateTitle)
		r.Get("/titles/{titleID}", h.GetTitle)
		r.Put("/titles/{titleID}", h.ReplaceTitle)
		r.Patch("/titles/{titleID}", h.UpdateTitle)
		r.Delete("/titles/{titleID}", h.DeleteTitle)
	})
}

func (h *Handler) termRoutes(svc *TermService) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.listTerms(svc))
		r.Post("/", h.createTerm(svc))
		r.Delete("/{slug}", h.deleteTerm(svc))
	}
}

func (h *Handler) listTerms(svc *TermService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := core.ParsePageParams(r)

		terms, total, err := svc.List(r.Context(), r.URL.Query().Get("search"), page)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}

		core.Paginated(w, ToTermResponseList(terms), page.Page, page.PageSize, total)
	}
}

func (h *Handler) createTerm(svc *TermService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTermRequest
		if err := core.DecodeJSON(r, &req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		req.Trim()
		if err := core.ValidateStruct(h.validator, req); err != nil {
			writeError(w, err, svc.Taxonomy().Name)
			return
		}

		term, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, err, svc.Taxonomy().Name)
			return
		}

		core.Created(w, ToTermResponse(*term))
	}
}

func (h *Handler) deleteTerm(svc *TermService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
			writeError(w, err, svc.Taxonomy().Name)
			return
		}

		core.NoContent(w)
	}
}

// ListTitles supports category, genre and name substring filters and an
// exact year.
func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TitleFilter{
		PageParams: core.ParsePageParams(r),
		Category:   q.Get("category"),
		Genre:      q.Get("genre"),
		Name:       q.Get("name"),
	}

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			core.ValidationFailed(w, core.FieldError("year", "enter a number"))
			return
		}
		filter.Year = &year
	}

	titles, total, err := h.titles.List(r.Context(), filter)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToTitleResponseList(titles),
		filter.Page,
		filter.PageSize,
		total,
	)
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	title, err := h.titles.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(title))
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req CreateTitleRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Trim()
	if err := core.ValidateStruct(h.validator, req); err != nil {
		writeError(w, err, "title")
		return
	}

	title, err := h.titles.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.Created(w, ToTitleResponse(title))
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := core.ValidateStruct(h.validator, req); err != nil {
		writeError(w, err, "title")
		return
	}

	title, err := h.titles.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(title))
}

// ReplaceTitle validates the body like a create and overwrites every
// field of the title.
func (h *Handler) ReplaceTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	var req CreateTitleRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Trim()
	if err := core.ValidateStruct(h.validator, req); err != nil {
		writeError(w, err, "title")
		return
	}

	title, err := h.titles.Update(r.Context(), id, req.Replacement())
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(title))
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	if err := h.titles.Delete(r.Context(), id); err != nil {
		writeError(w, err, "title")
		return
	}

	core.NoContent(w)
}

func titleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := core.ParseID(chi.URLParam(r, "titleID"))
	if !ok {
		core.NotFound(w, "title")
	}
	return id, ok
}

func writeError(w http.ResponseWriter, err error, resource string) {
	if verr, ok := core.AsValidationError(err); ok {
		core.ValidationFailed(w, verr)
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, resource)
		return
	}
	core.JSONError(w, err)
}
