package media

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/pkg/handlers"
	"github.com/fieldscope/verity/pkg/routes"
)

// Handler provides HTTP endpoints for resolved playback.
type Handler struct {
	sys       System
	responses responses.System
	logger    *slog.Logger
}

// NewHandler creates a Handler with the given resolver, response system, and logger.
func NewHandler(sys System, resp responses.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:       sys,
		responses: resp,
		logger:    logger.With("handler", "media"),
	}
}

// Routes returns the route group definition for media endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/responses",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/media", Handler: h.Resolve},
		},
	}
}

// Resolve returns the playable audio for a response: a JSON descriptor for
// URL playback, or the recording bytes for fetched call audio.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, responses.ErrInvalidRequest)
		return
	}

	resp, err := h.responses.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, responses.MapHTTPStatus(err), err)
		return
	}

	playback, err := h.sys.Resolve(r.Context(), resp)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if playback.Kind == KindRecording {
		w.Header().Set("Content-Type", playback.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(playback.Data)))
		w.WriteHeader(http.StatusOK)
		w.Write(playback.Data)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, playback)
}
