package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/middleware"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/repository"
	"github.com/makquiz/live-server-go/internal/service"
)

// LiveHandler exposes the live session HTTP contract. Host-only routes sit
// behind the host auth middleware; join, status, cards, answer and events are
// reachable by players without an account.
type LiveHandler struct {
	sessionService *service.SessionService
	registry       *service.RegistryService
	scoring        *service.ScoringService
	query          *service.QueryService
	archive        repository.ArchiveRepository
	auth           *middleware.HostAuthMiddleware
	joinLimiter    func(http.Handler) http.Handler
	answerLimiter  func(http.Handler) http.Handler
}

func NewLiveHandler(
	sessionService *service.SessionService,
	registry *service.RegistryService,
	scoring *service.ScoringService,
	query *service.QueryService,
	archive repository.ArchiveRepository,
	auth *middleware.HostAuthMiddleware,
	joinLimiter func(http.Handler) http.Handler,
	answerLimiter func(http.Handler) http.Handler,
) *LiveHandler {
	return &LiveHandler{
		sessionService: sessionService,
		registry:       registry,
		scoring:        scoring,
		query:          query,
		archive:        archive,
		auth:           auth,
		joinLimiter:    joinLimiter,
		answerLimiter:  answerLimiter,
	}
}

func (h *LiveHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.joinLimiter).Post("/join", h.Join)
	r.Get("/{id}/status", h.GetStatus)
	r.Get("/{id}/cards", h.GetCards)
	r.With(h.answerLimiter).Post("/{id}/answer", h.SubmitAnswer)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Handler)
		r.Post("/create", h.CreateSession)
		r.Get("/archive", h.ListArchive)
		r.Get("/archive/{id}", h.GetArchivedSession)
		r.Get("/{id}/stats", h.GetStats)
		r.Post("/{id}/start", h.Start)
		r.Post("/{id}/review", h.Review)
		r.Post("/{id}/finish", h.Finish)
	})

	return r
}

// POST /live/create
func (h *LiveHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var input service.CreateSessionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	result, err := h.sessionService.CreateSession(r.Context(), hostID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// POST /live/join
func (h *LiveHandler) Join(w http.ResponseWriter, r *http.Request) {
	var input service.JoinInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	result, err := h.registry.Join(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /live/{id}/status
func (h *LiveHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.query.GetStatus(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /live/{id}/stats
func (h *LiveHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := h.requireHost(r, sessionID); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.query.GetStats(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /live/{id}/cards
func (h *LiveHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	// The same endpoint serves host review rendering and player question
	// rendering; only a caller proving host identity sees correct answers
	// before review.
	callerIsHost := false
	if callerID, ok := h.auth.FromRequest(r); ok {
		hostID, err := h.query.HostID(sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		callerIsHost = callerID == hostID
	}

	cards, err := h.query.GetCards(sessionID, callerIsHost)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// POST /live/{id}/answer
func (h *LiveHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var input service.SubmitAnswerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	result, err := h.scoring.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	// Duplicates replay the original result with HTTP success so client
	// retries after a dropped response are safe.
	writeJSON(w, http.StatusOK, result)
}

// POST /live/{id}/start
func (h *LiveHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.Start)
}

// POST /live/{id}/review
func (h *LiveHandler) Review(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.Review)
}

// POST /live/{id}/finish
func (h *LiveHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.Finish)
}

// GET /live/archive
func (h *LiveHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	sessions, err := h.archive.ListByHost(r.Context(), hostID, 50)
	if err != nil {
		log.Error().Err(err).Str("hostId", hostID).Msg("failed to list archived sessions")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// GET /live/archive/{id}
func (h *LiveHandler) GetArchivedSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	hostID := middleware.GetHostID(r.Context())

	// A session archived by another host reads as missing, so session ids
	// cannot be enumerated across hosts.
	sess, err := h.archive.FindByHost(r.Context(), sessionID, hostID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to load archived session")
		writeError(w, apperrors.Database(err))
		return
	}
	if sess == nil {
		writeError(w, apperrors.NotFound("Session"))
		return
	}

	participants, err := h.archive.ListParticipants(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to load archived session")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":      sess,
		"participants": participants,
	})
}

func (h *LiveHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, sessionID, hostID string) (model.Phase, error),
) {
	hostID := middleware.GetHostID(r.Context())

	phase, err := fn(r.Context(), chi.URLParam(r, "id"), hostID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"phase": phase})
}

func (h *LiveHandler) requireHost(r *http.Request, sessionID string) error {
	hostID, err := h.query.HostID(sessionID)
	if err != nil {
		return err
	}
	if middleware.GetHostID(r.Context()) != hostID {
		return apperrors.Forbidden("Only the session host may view stats")
	}
	return nil
}
