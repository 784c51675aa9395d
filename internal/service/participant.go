package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/makquiz/live-server-go/internal/config"
	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/store"
)

type JoinInput struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
}

type JoinResult struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
}

// RegistryService validates and registers joins. Nickname uniqueness is
// case-insensitive per session; the check and the insert happen in one atomic
// mutation so two racing joins with the same nickname cannot both win.
type RegistryService struct {
	store    store.Store
	notifier Notifier
}

func NewRegistryService(s store.Store, notifier Notifier) *RegistryService {
	return &RegistryService{store: s, notifier: notifier}
}

func (s *RegistryService) Join(ctx context.Context, input JoinInput) (*JoinResult, error) {
	code := strings.TrimSpace(input.Code)
	nickname := strings.TrimSpace(input.Nickname)

	if code == "" {
		return nil, apperrors.MissingRequired("code")
	}
	if nickname == "" {
		return nil, apperrors.MissingRequired("nickname")
	}
	if len(nickname) > config.MaxNicknameLength {
		return nil, apperrors.InvalidInput("nickname", "too long")
	}

	// Codes resolve only against non-completed sessions; a completed
	// session's code reads as NOT_FOUND, never SESSION_CLOSED.
	sess, ok := s.store.GetByCode(code)
	if !ok {
		return nil, apperrors.NotFound("Session")
	}

	normalized := model.NormalizeNickname(nickname)
	participantID := uuid.NewString()

	_, err := s.store.Mutate(sess.ID, func(sess *model.Session) error {
		// Late joiners cannot catch up mid-quiz, so the phase gate comes
		// before the capacity check: a started session rejects everyone
		// the same way regardless of headroom.
		if sess.Phase != model.PhaseWaiting {
			return apperrors.SessionAlreadyStarted()
		}
		if len(sess.Participants) >= sess.MaxParticipants {
			return apperrors.SessionFull()
		}
		if sess.ParticipantByNickname(normalized) != nil {
			return apperrors.NicknameTaken(nickname)
		}

		now := time.Now()
		sess.Participants[participantID] = &model.Participant{
			ID:        participantID,
			SessionID: sess.ID,
			Nickname:  nickname,
			Score:     0,
			JoinedAt:  now,
			Answers:   make(map[string]*model.Answer),
		}
		sess.LastActivityAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sessionId", sess.ID).
		Str("participantId", participantID).
		Str("nickname", nickname).
		Msg("participant joined")

	if err := s.notifier.PublishJoin(ctx, sess.ID, nickname); err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID).Msg("failed to publish join event")
	}

	return &JoinResult{SessionID: sess.ID, ParticipantID: participantID}, nil
}
