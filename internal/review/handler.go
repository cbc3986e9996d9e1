package review

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/assignments"
	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/pkg/handlers"
	"github.com/fieldscope/verity/pkg/middleware"
	"github.com/fieldscope/verity/pkg/routes"
)

// Handler provides HTTP endpoints for the verification workflow.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// SubmitRequest is the submission payload: the gating form plus feedback.
type SubmitRequest struct {
	Form
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "review"),
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/review",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/next", Handler: h.Next},
			{Method: "POST", Pattern: "/{id}/release", Handler: h.Release},
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit},
			{Method: "GET", Pattern: "/{id}/verification", Handler: h.Find},
			{Method: "GET", Pattern: "/session", Handler: h.Session},
		},
	}
}

// Next claims the next pending response for the calling reviewer. Filters
// arrive in the request body; an empty body claims without filters.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	reviewer, err := middleware.Reviewer(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	var filters assignments.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	grant, err := h.sys.Next(r.Context(), reviewer, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, grant)
}

// Release dismisses the reviewer's lease on the response. Releasing an
// already absent lease still succeeds.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	reviewer, err := middleware.Reviewer(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	if err := h.sys.Release(r.Context(), reviewer, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit records the reviewer's verdict for the response.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	reviewer, err := middleware.Reviewer(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	v, err := h.sys.Submit(r.Context(), reviewer, id, req.Form)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, v)
}

// Find returns the stored verification for a response.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	v, err := h.sys.FindByResponse(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Session reports the calling reviewer's lease session state and countdown.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	reviewer, err := middleware.Reviewer(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Session(reviewer))
}
