// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
	"github.com/carterperez-dev/yamdb/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts reviews and their comments under a title. Every
// route resolves the actor when a token is present; the Content policy
// decides per request.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/titles/{titleID}/reviews", func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/", h.ListReviews)
		r.Post("/", h.CreateReview)
		r.Get("/{reviewID}", h.GetReview)
		r.Put("/{reviewID}", h.ReplaceReview)
		r.Patch("/{reviewID}", h.UpdateReview)
		r.Delete("/{reviewID}", h.DeleteReview)

		r.Route("/{reviewID}/comments", func(r chi.Router) {
			r.Get("/", h.ListComments)
			r.Post("/", h.CreateComment)
			r.Get("/{commentID}", h.GetComment)
			r.Put("/{commentID}", h.ReplaceComment)
			r.Patch("/{commentID}", h.UpdateComment)
			r.Delete("/{commentID}", h.DeleteComment)
		})
	})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	if !middleware.Authorize(w, r, access.Content, access.List, nil) {
		return
	}

	page := core.ParsePageParams(r)
	reviews, total, err := h.service.ListReviews(r.Context(), titleID, page)
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.Paginated(w, ToReviewResponseList(reviews), page.Page, page.PageSize, total)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	if !middleware.Authorize(w, r, access.Content, access.Create, nil) {
		return
	}

	var req CreateReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), titleID, access.FromContext(r.Context()), req)
	if err != nil {
		writeError(w, err, "title")
		return
	}

	core.Created(w, ToReviewResponse(review))
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.loadReview(w, r, access.Retrieve)
	if !ok {
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.loadReview(w, r, access.PartialUpdate)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), review, req)
	if err != nil {
		writeError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

// ReplaceReview requires both text and score.
func (h *Handler) ReplaceReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.loadReview(w, r, access.Update)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), review, UpdateReviewRequest{
		Text:  &req.Text,
		Score: req.Score,
	})
	if err != nil {
		writeError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.loadReview(w, r, access.Destroy)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), review); err != nil {
		writeError(w, err, "review")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	if !middleware.Authorize(w, r, access.Content, access.List, nil) {
		return
	}

	page := core.ParsePageParams(r)
	comments, total, err := h.service.ListComments(r.Context(), titleID, reviewID, page)
	if err != nil {
		writeError(w, err, "review")
		return
	}

	core.Paginated(w, ToCommentResponseList(comments), page.Page, page.PageSize, total)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	if !middleware.Authorize(w, r, access.Content, access.Create, nil) {
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.service.CreateComment(
		r.Context(),
		titleID,
		reviewID,
		access.FromContext(r.Context()),
		req,
	)
	if err != nil {
		writeError(w, err, "review")
		return
	}

	core.Created(w, ToCommentResponse(comment))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadComment(w, r, access.Retrieve)
	if !ok {
		return
	}

	core.OK(w, ToCommentResponse(comment))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	h.writeComment(w, r, access.PartialUpdate)
}

// ReplaceComment is UpdateComment under PUT; a comment has a single
// writable field.
func (h *Handler) ReplaceComment(w http.ResponseWriter, r *http.Request) {
	h.writeComment(w, r, access.Update)
}

func (h *Handler) writeComment(w http.ResponseWriter, r *http.Request, action access.Action) {
	comment, ok := h.loadComment(w, r, action)
	if !ok {
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), comment, req)
	if err != nil {
		writeError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(comment))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadComment(w, r, access.Destroy)
	if !ok {
		return
	}

	if err := h.service.DeleteComment(r.Context(), comment); err != nil {
		writeError(w, err, "comment")
		return
	}

	core.NoContent(w)
}

// loadReview fetches the review named by the path and checks the actor may
// perform action on it.
func (h *Handler) loadReview(
	w http.ResponseWriter,
	r *http.Request,
	action access.Action,
) (*Review, bool) {
	if !authenticatedFor(w, r, action) {
		return nil, false
	}

	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return nil, false
	}

	review, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		writeError(w, err, "review")
		return nil, false
	}

	if !middleware.Authorize(w, r, access.Content, action, review) {
		return nil, false
	}

	return review, true
}

func (h *Handler) loadComment(
	w http.ResponseWriter,
	r *http.Request,
	action access.Action,
) (*Comment, bool) {
	if !authenticatedFor(w, r, action) {
		return nil, false
	}

	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return nil, false
	}

	commentID, ok := pathID(w, r, "commentID", "comment")
	if !ok {
		return nil, false
	}

	comment, err := h.service.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		writeError(w, err, "comment")
		return nil, false
	}

	if !middleware.Authorize(w, r, access.Content, action, comment) {
		return nil, false
	}

	return comment, true
}

// authenticatedFor refuses anonymous writes before any lookup, so a
// missing object never turns a 401 into a 404.
func authenticatedFor(w http.ResponseWriter, r *http.Request, action access.Action) bool {
	if access.FromContext(r.Context()).Authenticated() {
		return true
	}
	return middleware.Authorize(w, r, access.Content, action, nil)
}

// decode reads a request body, ignoring read-only fields such as author
// and pub_date, and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := core.ValidateStruct(h.validator, dst); err != nil {
		writeError(w, err, "")
		return false
	}

	return true
}

func reviewPath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return 0, 0, false
	}

	reviewID, ok := pathID(w, r, "reviewID", "review")
	if !ok {
		return 0, 0, false
	}

	return titleID, reviewID, true
}

func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (int64, bool) {
	id, ok := core.ParseID(chi.URLParam(r, param))
	if !ok {
		core.NotFound(w, resource)
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
	if errors.Is(err, core.ErrUnauthorized) {
		core.Unauthorized(w, "")
		return
	}
	core.JSONError(w, err)
}
