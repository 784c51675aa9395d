package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/makquiz/live-server-go/internal/config"
	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/repository"
	"github.com/makquiz/live-server-go/internal/store"
)

const createMaxAttempts = 3

type CreateSessionInput struct {
	DeckID          string       `json:"deckId"`
	MaxParticipants int          `json:"maxParticipants"`
	Cards           []model.Card `json:"cards"`
}

type CreateSessionResult struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

// SessionService creates sessions and drives the phase state machine:
// waiting -> active -> review -> completed, host-only, no skips, no revisits.
type SessionService struct {
	store                  store.Store
	codes                  *CodeGenerator
	archive                repository.ArchiveRepository
	notifier               Notifier
	defaultMaxParticipants int
}

func NewSessionService(
	s store.Store,
	codes *CodeGenerator,
	archive repository.ArchiveRepository,
	notifier Notifier,
	defaultMaxParticipants int,
) *SessionService {
	return &SessionService{
		store:                  s,
		codes:                  codes,
		archive:                archive,
		notifier:               notifier,
		defaultMaxParticipants: defaultMaxParticipants,
	}
}

// CreateSession snapshots the deck's cards into a new waiting session and
// allocates its join code. The snapshot insulates a running session from
// later deck edits.
func (s *SessionService) CreateSession(ctx context.Context, hostID string, input CreateSessionInput) (*CreateSessionResult, error) {
	if input.DeckID == "" {
		return nil, apperrors.MissingRequired("deckId")
	}
	if len(input.Cards) == 0 {
		return nil, apperrors.ContentUnavailable()
	}

	maxParticipants := input.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = s.defaultMaxParticipants
	}
	if maxParticipants > config.MaxParticipantsCap {
		maxParticipants = config.MaxParticipantsCap
	}

	cards := make([]model.Card, len(input.Cards))
	for i, c := range input.Cards {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Kind == "" {
			if len(c.Options) > 0 {
				c.Kind = model.CardKindQuizQuestion
			} else {
				c.Kind = model.CardKindFlashcard
			}
		}
		cards[i] = c
	}

	// Generate and Put can race with a concurrent create drawing the same
	// code; the store's insert is the arbiter, so retry the allocation.
	var lastErr error
	for attempts := 0; attempts < createMaxAttempts; attempts++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, err
		}

		now := time.Now()
		sess := &model.Session{
			ID:              uuid.NewString(),
			Code:            code,
			DeckID:          input.DeckID,
			HostID:          hostID,
			MaxParticipants: maxParticipants,
			Phase:           model.PhaseWaiting,
			Cards:           cards,
			Participants:    make(map[string]*model.Participant),
			CreatedAt:       now,
			LastActivityAt:  now,
		}

		if err := s.store.Put(sess); err != nil {
			lastErr = err
			continue
		}

		log.Info().
			Str("sessionId", sess.ID).
			Str("code", code).
			Str("hostId", hostID).
			Int("cards", len(cards)).
			Msg("live session created")

		return &CreateSessionResult{SessionID: sess.ID, Code: code}, nil
	}

	return nil, apperrors.CodeSpaceExhausted().WithCause(lastErr)
}

// Start moves waiting -> active. Requires at least one participant; an empty
// lobby has nobody to play against.
func (s *SessionService) Start(ctx context.Context, sessionID, hostID string) (model.Phase, error) {
	return s.transition(ctx, sessionID, hostID, model.PhaseWaiting, model.PhaseActive, func(sess *model.Session) error {
		if len(sess.Participants) == 0 {
			return apperrors.InvalidTransition(string(model.PhaseWaiting), string(model.PhaseActive)).
				WithDetails("at least one participant must join before start")
		}
		now := time.Now()
		sess.StartedAt = &now
		return nil
	})
}

// Review moves active -> review. Scoring freezes; the full card set with
// correct answers becomes visible to everyone.
func (s *SessionService) Review(ctx context.Context, sessionID, hostID string) (model.Phase, error) {
	return s.transition(ctx, sessionID, hostID, model.PhaseActive, model.PhaseReview, nil)
}

// Finish moves review -> completed. The session becomes immutable, its join
// code is released for reuse, and the final state is archived.
func (s *SessionService) Finish(ctx context.Context, sessionID, hostID string) (model.Phase, error) {
	phase, err := s.transition(ctx, sessionID, hostID, model.PhaseReview, model.PhaseCompleted, func(sess *model.Session) error {
		now := time.Now()
		sess.CompletedAt = &now
		return nil
	})
	if err != nil {
		return phase, err
	}

	if snapshot, ok := s.store.GetByID(sessionID); ok && s.archive != nil {
		// Archival is best effort: the in-memory state is already final and
		// the session row can be backfilled by the reaper on the next pass.
		if err := s.archive.SaveSession(ctx, snapshot); err != nil {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to archive completed session")
		}
	}

	return phase, nil
}

func (s *SessionService) transition(
	ctx context.Context,
	sessionID, hostID string,
	from, to model.Phase,
	effect func(*model.Session) error,
) (model.Phase, error) {
	snapshot, err := s.store.Mutate(sessionID, func(sess *model.Session) error {
		// Authorization before any phase inspection or mutation.
		if sess.HostID != hostID {
			return apperrors.Forbidden("Only the session host may drive phase transitions")
		}
		if sess.Phase.Terminal() {
			return apperrors.SessionClosed()
		}
		if sess.Phase != from {
			return apperrors.InvalidTransition(string(sess.Phase), string(to))
		}
		if effect != nil {
			if err := effect(sess); err != nil {
				return err
			}
		}
		sess.Phase = to
		sess.LastActivityAt = time.Now()
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("session phase transition")

	if err := s.notifier.PublishPhase(ctx, sessionID, string(to)); err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("failed to publish phase event")
	}

	return snapshot.Phase, nil
}
